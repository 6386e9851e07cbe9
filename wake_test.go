package main

import (
	"math"
	"testing"
	"time"
)

// swimStraight advances one entity in a straight line for n frames and
// returns the number of wakes it emitted.
func swimStraight(s *wakeSystem, id EntityID, start vec2, n int, base time.Time) int {
	before := countWakes(s)
	pos := start
	for i := 0; i < n; i++ {
		now := base.Add(time.Duration(i) * 16 * time.Millisecond)
		s.update(id, pos, dirRight, now)
		pos.X += 3
	}
	return countWakes(s) - before
}

func countWakes(s *wakeSystem) int { return len(s.effects) }

func TestWakePerEntityIsolation(t *testing.T) {
	base := time.Unix(50, 0)

	// Run A alone.
	solo := newWakeSystem()
	aAlone := swimStraight(solo, 1, vec2{0, 0}, 120, base)
	if aAlone == 0 {
		t.Fatalf("entity A emitted no wakes while swimming")
	}

	// Run A with a B that swims a different pattern: A's cadence must not
	// change, because all counters and random draws are per identity.
	both := newWakeSystem()
	posA := vec2{0, 0}
	posB := vec2{500, 500}
	emittedA := 0
	for i := 0; i < 120; i++ {
		now := base.Add(time.Duration(i) * 16 * time.Millisecond)
		beforeTotal := countWakes(both)
		both.update(1, posA, dirRight, now)
		emittedA += countWakes(both) - beforeTotal
		// B only moves on every third frame, a different pattern.
		if i%3 == 0 {
			posB.X += 9
		}
		both.update(2, posB, dirLeft, now)
		posA.X += 3
	}
	if emittedA != aAlone {
		t.Fatalf("entity A wake count changed when B swam alongside: alone=%d together=%d", aAlone, emittedA)
	}
}

func TestWakeIdleEmission(t *testing.T) {
	s := newWakeSystem()
	base := time.Unix(10, 0)
	pos := vec2{100, 100}
	s.update(9, pos, dirDown, base) // seeds tracker
	frames := int(wakeIdleInterval/(16*time.Millisecond)) + 2
	for i := 1; i <= frames; i++ {
		s.update(9, pos, dirDown, base.Add(time.Duration(i)*16*time.Millisecond))
	}
	if countWakes(s) == 0 {
		t.Fatalf("idle swimmer emitted no gentle wake after the idle interval")
	}
	for _, e := range s.effects {
		if !e.Gentle {
			t.Fatalf("idle emission produced a non-gentle wake")
		}
	}
}

func TestWakeExpiryPruning(t *testing.T) {
	s := newWakeSystem()
	base := time.Unix(10, 0)
	tr := s.tracker(1, base)
	s.emit(vec2{0, 0}, 0, tr, false, base)
	s.prune(base.Add(wakeLifetime / 2))
	if countWakes(s) != 1 {
		t.Fatalf("live wake pruned early")
	}
	s.prune(base.Add(wakeLifetime))
	if countWakes(s) != 0 {
		t.Fatalf("expired wake not pruned")
	}
}

func TestWakeRadiusAcceleratesAndFades(t *testing.T) {
	base := time.Unix(10, 0)
	w := wakeEffect{Origin: vec2{0, 0}, Created: base, Thickness: 2}

	early := w.radius(base.Add(wakeLifetime / 4))
	mid := w.radius(base.Add(wakeLifetime / 2))
	late := w.radius(base.Add(3 * wakeLifetime / 4))
	if !(early < mid && mid < late) {
		t.Fatalf("radius not monotonic: %v %v %v", early, mid, late)
	}
	// Geometric growth: the second half grows more than the first.
	if (late - mid) <= (mid - early) {
		t.Fatalf("radius growth not accelerating: first half %v, second half %v", mid-early, late-mid)
	}
	if w.radius(base) < wakeInitialRadius-1e-9 {
		t.Fatalf("initial radius below floor")
	}

	if a := w.alpha(base); a != 1 {
		t.Fatalf("alpha at birth = %v, want 1", a)
	}
	if a := w.alpha(base.Add(wakeLifetime / 2)); a <= 0.49 || a >= 0.51 {
		t.Fatalf("alpha at half life = %v, want ~0.5", a)
	}
	if a := w.alpha(base.Add(wakeLifetime)); a != 0 {
		t.Fatalf("alpha at end of life = %v, want 0", a)
	}
}

func TestWakeRimGrowsTurbulent(t *testing.T) {
	base := time.Unix(10, 0)
	w := wakeEffect{Created: base, Thickness: 2}
	if off := w.rimOffset(1.0, base); off != 0 {
		t.Fatalf("fresh wake rim already distorted: %v", off)
	}
	maxEarly, maxLate := 0.0, 0.0
	for th := 0.0; th < 6.28; th += 0.1 {
		if v := w.rimOffset(th, base.Add(wakeLifetime/4)); v > maxEarly {
			maxEarly = v
		}
		if v := w.rimOffset(th, base.Add(3*wakeLifetime/4)); v > maxLate {
			maxLate = v
		}
	}
	if maxLate <= maxEarly {
		t.Fatalf("rim distortion did not grow over lifetime: early %v late %v", maxEarly, maxLate)
	}
}

func TestWakeArcOpensOppositeTravel(t *testing.T) {
	const segs = 24
	for _, ang := range []float64{0, math.Pi / 2, math.Pi, -math.Pi / 4} {
		w := wakeEffect{Angle: ang}

		// The arc midpoint sits dead ahead of the travel direction.
		mid := w.arcTheta(segs/2, segs)
		if math.Abs(math.Mod(mid-ang, 2*math.Pi)) > 1e-9 {
			t.Fatalf("angle %v: arc midpoint at %v, want travel direction", ang, mid)
		}
		// Every sample stays within a quarter turn of the travel heading,
		// so the opening trails behind the swimmer.
		for s := 0; s <= segs; s++ {
			if math.Cos(w.arcTheta(s, segs)-ang) < -1e-9 {
				t.Fatalf("angle %v: arc sample %d crosses behind the swimmer", ang, s)
			}
		}
	}
}

func TestWakeTrackerRelease(t *testing.T) {
	s := newWakeSystem()
	base := time.Unix(10, 0)
	s.update(4, vec2{0, 0}, dirUp, base)
	if _, ok := s.trackers[4]; !ok {
		t.Fatalf("tracker not created")
	}
	s.release(4)
	if _, ok := s.trackers[4]; ok {
		t.Fatalf("tracker survived release")
	}
}
