package main

import (
	"math"
	"time"
)

// Hit/knockback reconciliation. When the server applies knockback it snaps
// the authoritative position; replaying that verbatim teleports the sprite.
// Instead we detect the hit from the row's last-hit timestamp and run a
// short linear interpolation from the last-displayed position to the new
// server position. Shake and flash timing runs off the client clock from
// the moment the hit was observed, never off the raw server-client delta,
// so a laggy link cannot produce half-finished or skipped hit feedback.
const (
	// Server hit timestamps can jitter by re-serialization; differences at
	// or below the dead zone are the same hit, not a new one.
	hitDeadZoneMs = 1

	knockbackInterpDuration = 120 * time.Millisecond
	hitShakeDuration        = 300 * time.Millisecond
	hitFlashDuration        = 200 * time.Millisecond

	// A hit that still looks "active" after this long is a missed reset;
	// force-clear rather than shake forever.
	hitStaleAfter = 3 * time.Second

	hitShakeAmplitude = 3.0

	// Optional motion smoothing for ordinary (non-hit) movement: each frame
	// the displayed position closes this fraction of the gap to the server
	// position. Jumps past the pixel guard snap instead of gliding.
	smoothMoveRate  = 0.35
	maxSmoothPixels = 128.0
)

type hitEntry struct {
	displayPos vec2
	lastHitMs  uint64

	interpFrom    vec2
	interpTo      vec2
	interpStart   time.Time
	interpolating bool

	// Client wall-clock time the hit was first observed.
	hitDetectedAt time.Time
	hitActive     bool
}

// knockbackCache holds exactly one entry per visible non-local entity.
// Single writer: the render loop. Entries for entities that die, vanish or
// are locally controlled are evicted by sweep each frame.
type knockbackCache struct {
	entries map[EntityID]*hitEntry

	// smoothing mirrors the smoothMoving setting; refreshed each frame by
	// the game loop so a settings change applies immediately.
	smoothing bool
}

func newKnockbackCache() *knockbackCache {
	return &knockbackCache{entries: make(map[EntityID]*hitEntry)}
}

// displayPosition advances per-entity hit state and returns where the
// entity should be drawn this frame. Never errors; absent snapshot fields
// read as zero and behave as "no hit".
func (c *knockbackCache) displayPosition(e *entitySnapshot, serverNowMs uint64, now time.Time) vec2 {
	serverPos := vec2{e.X, e.Y}
	ent, ok := c.entries[e.ID]
	if !ok {
		// First sight of this entity: adopt the server position without
		// treating any historical hit timestamp as a fresh hit.
		ent = &hitEntry{displayPos: serverPos, lastHitMs: e.LastHitMs}
		c.entries[e.ID] = ent
		return serverPos
	}

	if e.LastHitMs > ent.lastHitMs+hitDeadZoneMs {
		ent.interpFrom = ent.displayPos
		ent.interpTo = serverPos
		ent.interpStart = now
		ent.interpolating = true
		ent.hitDetectedAt = now
		ent.hitActive = true
		ent.lastHitMs = e.LastHitMs
	}

	// Staleness guard, by either clock.
	if ent.hitActive {
		if serverNowMs > ent.lastHitMs && serverNowMs-ent.lastHitMs > uint64(hitStaleAfter.Milliseconds()) {
			ent.hitActive = false
			ent.interpolating = false
		} else if now.Sub(ent.hitDetectedAt) > hitStaleAfter {
			ent.hitActive = false
			ent.interpolating = false
		}
	}

	pos := serverPos
	if ent.interpolating {
		// The interpolation target tracks the authoritative position in
		// case further movement arrives inside the window.
		ent.interpTo = serverPos
		t := float64(now.Sub(ent.interpStart)) / float64(knockbackInterpDuration)
		if t >= 1 {
			ent.interpolating = false
		} else {
			pos = lerpVec(ent.interpFrom, ent.interpTo, t)
		}
	} else if c.smoothing {
		if d := ent.displayPos.dist(serverPos); d > 0 && d <= maxSmoothPixels {
			pos = lerpVec(ent.displayPos, serverPos, smoothMoveRate)
		}
	}
	ent.displayPos = pos
	return pos
}

// shakeOffset returns the screen-space jitter for an entity mid hit-react.
// Deterministic in elapsed time so playback is stable.
func (c *knockbackCache) shakeOffset(id EntityID, now time.Time) vec2 {
	ent, ok := c.entries[id]
	if !ok || !ent.hitActive {
		return vec2{}
	}
	el := now.Sub(ent.hitDetectedAt)
	if el < 0 || el >= hitShakeDuration {
		return vec2{}
	}
	t := float64(el) / float64(hitShakeDuration)
	amp := hitShakeAmplitude * (1 - t)
	s := el.Seconds()
	return vec2{math.Sin(s*73) * amp, math.Cos(s*59) * amp}
}

// flashFactor returns the 0..1 strength of the hit flash tint, 0 when no
// flash is active.
func (c *knockbackCache) flashFactor(id EntityID, now time.Time) float64 {
	ent, ok := c.entries[id]
	if !ok || !ent.hitActive {
		return 0
	}
	el := now.Sub(ent.hitDetectedAt)
	if el < 0 || el >= hitFlashDuration {
		return 0
	}
	return 1 - float64(el)/float64(hitFlashDuration)
}

// sweep evicts entries whose entity is gone, dead, or locally controlled.
// Must run every frame before iteration so stale interpolation can never
// leak into a recycled entity id.
func (c *knockbackCache) sweep(w *worldState) {
	for id := range c.entries {
		e, ok := w.entities[id]
		if !ok || e.IsDead || id == w.localPlayer {
			delete(c.entries, id)
		}
	}
}

func (c *knockbackCache) len() int { return len(c.entries) }
