package main

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const gameAreaSizeX, gameAreaSizeY = 960, 600

const dodgeRollDuration = 450 * time.Millisecond

// renderContext owns every per-view cache: world snapshot, knockback and
// wake state, cluster set, shader, image store. Nothing here is a package
// global, so tests and a second canvas get fully independent state.
type renderContext struct {
	world      *worldState
	events     *pendingEvents
	knockback  *knockbackCache
	wakes      *wakeSystem
	explosions *explosionEngine
	terrain    *terrainRenderer
	clusters   *clusterSet
	water      *waterOverlay
	images     *imageStore

	// feed is the live upstream connection; nil during capture replay.
	feed *feedClient

	// Server-clock sync: the feed stamps serverBaseMs, frames extrapolate.
	serverBaseMs uint64
	serverBaseAt time.Time

	camX, camY float64
	animFrame  int
	start      time.Time

	crouchOverride bool
	rolls          map[EntityID]time.Time
	prevPos        map[EntityID]vec2
	moved          map[EntityID]bool

	hoverID EntityID
	hoverOK bool

	entScratch  []entitySnapshot
	drawScratch []entityDraw
}

func newRenderContext() *renderContext {
	rc := &renderContext{
		world:      newWorldState(),
		events:     &pendingEvents{},
		knockback:  newKnockbackCache(),
		wakes:      newWakeSystem(),
		explosions: newExplosionEngine(),
		terrain:    newTerrainRenderer(defaultAutotileRules),
		images:     newImageStore(),
		start:      time.Now(),
		rolls:      make(map[EntityID]time.Time),
		prevPos:    make(map[EntityID]vec2),
		moved:      make(map[EntityID]bool),
	}
	rc.water = newWaterOverlay(func(err error) {
		addMessage("water effects disabled: GPU shader unavailable")
	})
	rc.clusters = computeClusters(rc.world.foundations, rc.world.walls, rc.world.doors)
	return rc
}

// syncServerClock is queued by the feed whenever the server reports its
// clock. Between reports the client extrapolates with its own monotonic
// clock.
func (rc *renderContext) syncServerClock(ms uint64) {
	rc.serverBaseMs = ms
	rc.serverBaseAt = time.Now()
}

func (rc *renderContext) serverNowMs() uint64 {
	if rc.serverBaseMs == 0 {
		return 0
	}
	return rc.serverBaseMs + uint64(time.Since(rc.serverBaseAt).Milliseconds())
}

func (rc *renderContext) localFlagsFor(e *entitySnapshot) localFlags {
	lf := localFlags{
		Moving:        rc.moved[e.ID],
		DodgeProgress: -1,
		Consumable:    e.Consumable,
	}
	if e.ID == rc.world.localPlayer {
		lf.CrouchOverride = rc.crouchOverride
	}
	if start, ok := rc.rolls[e.ID]; ok {
		lf.DodgeProgress = float64(time.Since(start)) / float64(dodgeRollDuration)
	}
	return lf
}

func (rc *renderContext) observerCluster() int {
	local, ok := rc.world.entities[rc.world.localPlayer]
	if !ok {
		return noCluster
	}
	return rc.clusters.resolveObserverCluster(local.X, local.Y)
}

// startRoll begins a dodge roll for an entity; progress drives the dodge
// sheet column directly so the roll ends on its last frame.
func (rc *renderContext) startRoll(id EntityID, at time.Time) {
	rc.rolls[id] = at
}

type Game struct {
	ctx context.Context
	rc  *renderContext
}

func newGame(ctx context.Context, rc *renderContext) *Game {
	return &Game{ctx: ctx, rc: rc}
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		saveSettings()
		return ebiten.Termination
	}
	rc := g.rc
	now := time.Now()

	// One consistent point-in-time read per frame: row events apply here
	// and nowhere else.
	rc.events.drain(rc.world)
	rc.world.serverTimeMs = rc.serverNowMs()
	rc.knockback.smoothing = smoothMoving

	if rc.world.buildingsDirty {
		rc.clusters = computeClusters(rc.world.foundations, rc.world.walls, rc.world.doors)
		rc.world.buildingsDirty = false
	}

	g.handleInput(now)

	// Movement flags and wake cadence, strictly per entity.
	for id, e := range rc.world.entities {
		pos := vec2{e.X, e.Y}
		prev, seen := rc.prevPos[id]
		rc.moved[id] = seen && pos.dist(prev) >= 0.5
		rc.prevPos[id] = pos

		if e.IsOnWater && !e.isJumping(rc.world.serverTimeMs) && !e.IsDead {
			rc.wakes.update(id, rc.knockback.displayPosition(&e, rc.world.serverTimeMs, now), e.Facing, now)
		} else {
			rc.wakes.release(id)
		}
	}
	for id := range rc.prevPos {
		if _, ok := rc.world.entities[id]; !ok {
			delete(rc.prevPos, id)
			delete(rc.moved, id)
			rc.wakes.release(id)
		}
	}
	for id, start := range rc.rolls {
		if now.Sub(start) >= dodgeRollDuration {
			delete(rc.rolls, id)
		}
	}

	rc.knockback.sweep(rc.world)
	rc.wakes.prune(now)
	rc.explosions.prune(now)

	// Camera follows the local player's displayed position.
	if local, ok := rc.world.entities[rc.world.localPlayer]; ok {
		p := rc.knockback.displayPosition(&local, rc.world.serverTimeMs, now)
		rc.camX = p.X - gameAreaSizeX/2
		rc.camY = p.Y - gameAreaSizeY/2
	}

	cx, cy := ebiten.CursorPosition()
	rc.hoverID, rc.hoverOK = rc.entityAt(float64(cx), float64(cy))

	rc.animFrame++
	return nil
}

func (g *Game) handleInput(now time.Time) {
	rc := g.rc
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		rc.crouchOverride = !rc.crouchOverride
		rc.sendPlayerInput("crouch", struct {
			Enabled bool `json:"enabled"`
		}{rc.crouchOverride})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if _, rolling := rc.rolls[rc.world.localPlayer]; !rolling {
			rc.startRoll(rc.world.localPlayer, now)
			rc.sendPlayerInput("dodge_roll", nil)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		showNametags = !showNametags
		settingsDirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		showTileMasks = !showTileMasks
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	rc := g.rc
	now := time.Now()

	rc.drawTerrain(screen)
	rc.drawWater(screen, now)
	rc.drawWakes(screen, now)
	rc.drawBuildings(screen)
	rc.drawEntities(screen, rc.world.serverTimeMs, now)
	rc.drawExplosions(screen, now)
	drawHUD(screen, rc)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return gameAreaSizeX, gameAreaSizeY
}

func runGame(ctx context.Context, rc *renderContext) error {
	ebiten.SetWindowTitle("gofrost")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	applySettings()
	return ebiten.RunGame(newGame(ctx, rc))
}
