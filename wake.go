package main

import (
	"math"
	"math/rand"
	"time"
)

// Swimming wake effects. Each swimming entity leaves expanding semi-circular
// disturbances behind it; spacing is randomized per entity so a group of
// swimmers never pulses in lockstep. All cadence state is tracked strictly
// per entity identity — an earlier revision kept a single global movement
// counter and one fast swimmer silenced everyone else's wakes.
const (
	wakeLifetime     = 1200 * time.Millisecond
	wakeMinMoveDist  = 2.0 // px of displacement that counts as movement
	wakeMoveCountMin = 4   // randomized emission threshold range
	wakeMoveCountMax = 9
	wakeIdleInterval = 2 * time.Second
	wakeSecondChance = 0.25
	wakeSecondDelay  = 120 * time.Millisecond
	wakeSecondOffset = 7.0

	wakeInitialRadius = 4.0
	wakeMaxRadius     = 26.0
	wakeThicknessMin  = 1.5
	wakeThicknessMax  = 3.0

	// Fraction of the sprite height where the waterline divider sits.
	waterlineFraction = 0.55
)

type wakeEffect struct {
	Origin    vec2
	Created   time.Time
	Angle     float64 // direction of travel; the semi-circle opens opposite
	Thickness float64
	Gentle    bool // idle ripple, drawn fainter
}

// age returns the 0..1 life fraction, >1 when expired.
func (w *wakeEffect) age(now time.Time) float64 {
	return float64(now.Sub(w.Created)) / float64(wakeLifetime)
}

// radius grows geometrically: slow at birth, accelerating toward the rim.
func (w *wakeEffect) radius(now time.Time) float64 {
	t := clampF(w.age(now), 0, 1)
	return wakeInitialRadius * math.Pow(wakeMaxRadius/wakeInitialRadius, t)
}

// alpha fades linearly to transparent over the lifetime.
func (w *wakeEffect) alpha(now time.Time) float64 {
	return clampF(1-w.age(now), 0, 1)
}

// rimOffset perturbs the wake outline at polar angle theta. Three summed
// sine waves whose amplitude scales with age: a fresh wake is a clean arc,
// an old one is turbulent.
func (w *wakeEffect) rimOffset(theta float64, now time.Time) float64 {
	t := clampF(w.age(now), 0, 1)
	amp := t * w.Thickness * 1.6
	return amp * (math.Sin(theta*3+t*5) + 0.6*math.Sin(theta*7-t*9) + 0.35*math.Sin(theta*11+t*4))
}

// arcTheta returns the polar angle of sample s out of segs along the wake
// outline. The arc body covers the half-circle ahead of the travel
// direction, so the opening trails behind the swimmer.
func (w *wakeEffect) arcTheta(s, segs int) float64 {
	return w.Angle - math.Pi/2 + math.Pi*float64(s)/float64(segs)
}

type wakeTracker struct {
	lastPos       vec2
	seeded        bool
	moveCount     int
	threshold     int
	lastIdleWake  time.Time
	pendingSecond time.Time
	pendingAngle  float64
	rng           *rand.Rand
}

// wakeSystem owns all trackers and the global time-bounded effect list.
// Effects outlive their entity: a swimmer who climbs ashore leaves the
// ripples behind.
type wakeSystem struct {
	trackers map[EntityID]*wakeTracker
	effects  []wakeEffect
}

func newWakeSystem() *wakeSystem {
	return &wakeSystem{trackers: make(map[EntityID]*wakeTracker)}
}

func (s *wakeSystem) tracker(id EntityID, now time.Time) *wakeTracker {
	tr, ok := s.trackers[id]
	if !ok {
		// Per-entity source: one entity's draws never advance another's.
		tr = &wakeTracker{
			rng:          rand.New(rand.NewSource(int64(id)*2654435761 + 1)),
			lastIdleWake: now,
		}
		tr.threshold = wakeMoveCountMin + tr.rng.Intn(wakeMoveCountMax-wakeMoveCountMin+1)
		s.trackers[id] = tr
	}
	return tr
}

// update advances one entity's wake cadence for this frame. Call only while
// the entity is swimming; call release when it leaves the water.
func (s *wakeSystem) update(id EntityID, pos vec2, f facing, now time.Time) {
	tr := s.tracker(id, now)
	if !tr.seeded {
		tr.seeded = true
		tr.lastPos = pos
		return
	}

	if !tr.pendingSecond.IsZero() && !now.Before(tr.pendingSecond) {
		s.emit(pos, tr.pendingAngle, tr, false, now)
		tr.pendingSecond = time.Time{}
	}

	if pos.dist(tr.lastPos) >= wakeMinMoveDist {
		tr.moveCount++
		if tr.moveCount >= tr.threshold {
			ang := f.angle()
			s.emit(pos, ang, tr, false, now)
			tr.moveCount = 0
			tr.threshold = wakeMoveCountMin + tr.rng.Intn(wakeMoveCountMax-wakeMoveCountMin+1)
			if tr.rng.Float64() < wakeSecondChance {
				tr.pendingSecond = now.Add(wakeSecondDelay)
				tr.pendingAngle = ang + (tr.rng.Float64()-0.5)*0.6
			}
		}
		tr.lastIdleWake = now
	} else if now.Sub(tr.lastIdleWake) >= wakeIdleInterval {
		s.emit(pos, tr.rng.Float64()*2*math.Pi, tr, true, now)
		tr.lastIdleWake = now
	}
	tr.lastPos = pos
}

func (s *wakeSystem) emit(pos vec2, angle float64, tr *wakeTracker, gentle bool, now time.Time) {
	th := wakeThicknessMin + tr.rng.Float64()*(wakeThicknessMax-wakeThicknessMin)
	if gentle {
		th *= 0.6
	}
	s.effects = append(s.effects, wakeEffect{
		Origin:    pos,
		Created:   now,
		Angle:     angle,
		Thickness: th,
		Gentle:    gentle,
	})
}

// release drops the cadence tracker for an entity that left the water or
// the world. Already-emitted effects keep playing out.
func (s *wakeSystem) release(id EntityID) {
	delete(s.trackers, id)
}

// prune removes expired effects. Runs every frame.
func (s *wakeSystem) prune(now time.Time) {
	kept := s.effects[:0]
	for _, e := range s.effects {
		if e.age(now) < 1 {
			kept = append(kept, e)
		}
	}
	s.effects = kept
}

// waterlineOffset deforms the waterline divider drawn across a swimming
// sprite: layered sines over world position and time.
func waterlineOffset(worldX, t float64) float64 {
	return 1.2*math.Sin(worldX*0.11+t*2.1) + 0.7*math.Sin(worldX*0.23-t*3.3) + 0.4*math.Sin(worldX*0.41+t*1.2)
}
