package main

import (
	"sync"
)

// EntityID is the stable opaque identity the server assigns to every
// renderable actor (players, corpses). Visual caches are keyed by it.
type EntityID uint64

type facing uint8

const (
	dirDown facing = iota
	dirUp
	dirLeft
	dirRight
	dirDownLeft
	dirDownRight
	dirUpLeft
	dirUpRight
)

// parseFacing decodes the server's direction strings. Unknown values fall
// back to facing down, the spawn default.
func parseFacing(s string) facing {
	switch s {
	case "up":
		return dirUp
	case "down":
		return dirDown
	case "left":
		return dirLeft
	case "right":
		return dirRight
	case "up_left":
		return dirUpLeft
	case "up_right":
		return dirUpRight
	case "down_left":
		return dirDownLeft
	case "down_right":
		return dirDownRight
	}
	return dirDown
}

// spriteRow maps a facing to one of the 4 sheet rows. Only cardinal art
// exists; diagonals alias to the nearest left/right row on purpose. Do not
// "fix" this by adding rows — the sheets have four.
func (f facing) spriteRow() int {
	switch f {
	case dirDown:
		return 0
	case dirLeft, dirDownLeft, dirUpLeft:
		return 1
	case dirRight, dirDownRight, dirUpRight:
		return 2
	case dirUp:
		return 3
	}
	return 0
}

// angle returns the facing direction as radians, screen coordinates
// (y grows downward).
func (f facing) angle() float64 {
	switch f {
	case dirRight:
		return 0
	case dirDownRight:
		return 0.785398163
	case dirDown:
		return 1.570796327
	case dirDownLeft:
		return 2.356194490
	case dirLeft:
		return 3.141592654
	case dirUpLeft:
		return -2.356194490
	case dirUp:
		return -1.570796327
	case dirUpRight:
		return -0.785398163
	}
	return 0
}

type consumableKind uint8

const (
	consumeNone consumableKind = iota
	consumeDrink
	consumeBandage
)

// entitySnapshot is one row of the server's player/corpse table as the
// subscription layer materializes it. The rendering core only reads these;
// all mutation happens in applyEntityUpsert/Delete between frames.
type entitySnapshot struct {
	ID     EntityID
	Name   string
	X, Y   float64
	Facing facing

	IsDead           bool
	IsKnockedOut     bool
	IsCrouching      bool
	IsSprinting      bool
	IsOnWater        bool
	IsSnorkeling     bool
	IsAimingThrow    bool
	IsInsideBuilding bool
	IsCorpse         bool
	IsNPC            bool
	PvPEnabled       bool

	// Server-assigned, monotonically non-decreasing. 0 means never hit.
	LastHitMs   uint64
	JumpStartMs uint64

	Consumable consumableKind
}

const jumpDurationMs = 500

// isJumping reports whether the entity is mid-jump at the given server time.
// Mirrors the server's is_player_jumping check.
func (e *entitySnapshot) isJumping(serverNowMs uint64) bool {
	if e.JumpStartMs == 0 {
		return false
	}
	return serverNowMs-e.JumpStartMs < jumpDurationMs
}

// worldState holds everything the subscription feed has materialized.
// The feed goroutine never touches it directly: it queues row events and
// the game loop drains them at the top of Update, so a frame always sees a
// consistent point-in-time read.
type worldState struct {
	entities    map[EntityID]entitySnapshot
	tiles       map[tileCoord]tileType
	foundations map[uint64]foundationCell
	walls       map[uint64]wallCell
	doors       map[uint64]doorCell

	serverTimeMs uint64
	localPlayer  EntityID

	// Set whenever the foundation/wall/door collections change; the
	// enclosure resolver recomputes wholesale, never incrementally.
	buildingsDirty bool
}

func newWorldState() *worldState {
	return &worldState{
		entities:    make(map[EntityID]entitySnapshot),
		tiles:       make(map[tileCoord]tileType),
		foundations: make(map[uint64]foundationCell),
		walls:       make(map[uint64]wallCell),
		doors:       make(map[uint64]doorCell),
	}
}

func (w *worldState) applyEntityUpsert(e entitySnapshot) {
	w.entities[e.ID] = e
}

func (w *worldState) applyEntityDelete(id EntityID) {
	delete(w.entities, id)
}

func (w *worldState) applyTile(t tileCoord, typ tileType) {
	w.tiles[t] = typ
}

func (w *worldState) applyFoundation(f foundationCell) {
	w.foundations[f.ID] = f
	w.buildingsDirty = true
}

func (w *worldState) applyFoundationDelete(id uint64) {
	delete(w.foundations, id)
	w.buildingsDirty = true
}

func (w *worldState) applyWall(c wallCell) {
	w.walls[c.ID] = c
	w.buildingsDirty = true
}

func (w *worldState) applyWallDelete(id uint64) {
	delete(w.walls, id)
	w.buildingsDirty = true
}

func (w *worldState) applyDoor(d doorCell) {
	w.doors[d.ID] = d
	w.buildingsDirty = true
}

func (w *worldState) applyDoorDelete(id uint64) {
	delete(w.doors, id)
	w.buildingsDirty = true
}

// captureEntities copies the live entity set for this frame's rendering.
// The slice is sorted later by the drawer; map iteration order is fine here.
func (w *worldState) captureEntities(dst []entitySnapshot) []entitySnapshot {
	dst = dst[:0]
	for _, e := range w.entities {
		dst = append(dst, e)
	}
	return dst
}

// pendingEvents is the hand-off between the feed goroutine and the game
// loop. Only the queue is shared; worldState itself is single-threaded.
type pendingEvents struct {
	mu     sync.Mutex
	events []func(*worldState)
}

func (p *pendingEvents) push(fn func(*worldState)) {
	p.mu.Lock()
	p.events = append(p.events, fn)
	p.mu.Unlock()
}

// drain applies all queued row events to the world. Called once per frame
// from Update before any derived visual work starts.
func (p *pendingEvents) drain(w *worldState) int {
	p.mu.Lock()
	evs := p.events
	p.events = nil
	p.mu.Unlock()
	for _, fn := range evs {
		fn(w)
	}
	return len(evs)
}
