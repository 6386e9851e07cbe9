package main

import (
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Explosion effects. All randomness is rolled once at trigger time and
// stored on the effect record; per-frame rendering is a pure function of
// (record, now), so an explosion looks identical when a frame is replayed.

type explosionTier uint8

const (
	// Babushka's Surprise: the common thrown charge.
	tierBabushka explosionTier = iota
	// Matriarch's Wrath: the siege charge.
	tierMatriarch
)

func (t explosionTier) String() string {
	if t == tierMatriarch {
		return "matriarch"
	}
	return "babushka"
}

type explosionTierParams struct {
	visualFloor  float64 // minimum visual radius in px
	visualScale  float64 // visual radius per damage radius
	duration     time.Duration
	debrisCount  int
	smokeCount   int
	flameBursts  int
	ringStrength float32
}

var explosionTiers = [...]explosionTierParams{
	tierBabushka: {
		visualFloor: 180, visualScale: 1.6, duration: 900 * time.Millisecond,
		debrisCount: 18, smokeCount: 10, flameBursts: 5, ringStrength: 0.6,
	},
	tierMatriarch: {
		visualFloor: 280, visualScale: 1.8, duration: 1200 * time.Millisecond,
		debrisCount: 28, smokeCount: 16, flameBursts: 8, ringStrength: 1.0,
	},
}

// Phase windows as fractions of the effect duration. The windows overlap;
// each phase eases inside its own window.
const (
	flashPhaseEnd      = 0.10
	fireballPhaseStart = 0.05
	fireballPhaseEnd   = 0.45
	smokePhaseStart    = 0.30
)

var debrisPalette = [...]color.RGBA{
	{0xff, 0xd9, 0x6b, 0xff},
	{0xff, 0xa6, 0x3c, 0xff},
	{0xe8, 0x6a, 0x2a, 0xff},
	{0x8c, 0x4a, 0x22, 0xff},
	{0x55, 0x50, 0x4c, 0xff},
}

type debrisParticle struct {
	Angle float64
	Speed float64 // px over the full debris window
	Size  float64
	Color color.RGBA
}

type smokePuff struct {
	Angle float64
	Dist  float64 // final offset from origin
	Size  float64
	Drift float64 // upward drift in px over the smoke window
}

type flameBurst struct {
	Angle float64
	Dist  float64 // fraction of the fireball radius
	Scale float64 // burst size as a fraction of the fireball radius
}

type explosionEffect struct {
	Origin       vec2
	Tier         explosionTier
	Start        time.Time
	Duration     time.Duration
	DamageRadius float64
	VisualRadius float64

	Debris []debrisParticle
	Smoke  []smokePuff
	Bursts []flameBurst
}

// progress returns elapsed/duration, unclamped above 1 so callers can
// detect expiry.
func (fx *explosionEffect) progress(now time.Time) float64 {
	if fx.Duration <= 0 {
		return 1
	}
	return now.Sub(fx.Start).Seconds() / fx.Duration.Seconds()
}

func (fx *explosionEffect) active(now time.Time) bool {
	return fx.progress(now) < 1
}

// phaseProgress maps overall progress onto a [lo,hi] window, clamped to
// [0,1].
func phaseProgress(p, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	return clampF((p-lo)/(hi-lo), 0, 1)
}

// flashStrength is the screen-flash intensity: full at detonation, gone by
// the end of the flash window.
func flashStrength(p float64) float64 {
	return 1 - phaseProgress(p, 0, flashPhaseEnd)
}

// fireballRadius grows from zero to the full visual radius across the
// fireball window with an ease-out curve, so the expansion front decelerates
// the way a real blast front does.
func fireballRadius(p, visualRadius float64) float64 {
	return visualRadius * easeOutCubic(phaseProgress(p, fireballPhaseStart, fireballPhaseEnd))
}

// shockwaveRadius leads the fireball slightly and keeps expanding past it.
func shockwaveRadius(p, visualRadius float64) float64 {
	return visualRadius * 1.15 * easeOutCubic(phaseProgress(p, fireballPhaseStart, fireballPhaseEnd*1.2))
}

// smokeProgress covers the trailing window: debris flight, ember fade and
// smoke drift all key off it.
func smokeProgress(p float64) float64 {
	return phaseProgress(p, smokePhaseStart, 1)
}

// explosionEngine owns the active effect list and the trigger-time random
// source. Rendering never touches the source.
type explosionEngine struct {
	effects []*explosionEffect
	rng     *rand.Rand
	now     func() time.Time
}

func newExplosionEngine() *explosionEngine {
	return &explosionEngine{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// trigger creates one explosion record at pos. The visual radius is the
// larger of the tier floor and the scaled damage radius; it is always
// strictly larger than the damage radius itself.
func (e *explosionEngine) trigger(pos vec2, damageRadius float64, tier explosionTier) *explosionEffect {
	if int(tier) >= len(explosionTiers) {
		tier = tierBabushka
	}
	tp := explosionTiers[tier]
	visual := math.Max(tp.visualFloor, damageRadius*tp.visualScale)

	fx := &explosionEffect{
		Origin:       pos,
		Tier:         tier,
		Start:        e.now(),
		Duration:     tp.duration,
		DamageRadius: damageRadius,
		VisualRadius: visual,
		Debris:       make([]debrisParticle, tp.debrisCount),
		Smoke:        make([]smokePuff, tp.smokeCount),
		Bursts:       make([]flameBurst, tp.flameBursts),
	}
	for i := range fx.Debris {
		fx.Debris[i] = debrisParticle{
			Angle: e.rng.Float64() * 2 * math.Pi,
			Speed: visual * (0.6 + e.rng.Float64()*0.8),
			Size:  2 + e.rng.Float64()*4,
			Color: debrisPalette[e.rng.Intn(len(debrisPalette))],
		}
	}
	for i := range fx.Smoke {
		fx.Smoke[i] = smokePuff{
			Angle: e.rng.Float64() * 2 * math.Pi,
			Dist:  visual * (0.2 + e.rng.Float64()*0.5),
			Size:  visual * (0.12 + e.rng.Float64()*0.12),
			Drift: 20 + e.rng.Float64()*40,
		}
	}
	for i := range fx.Bursts {
		fx.Bursts[i] = flameBurst{
			Angle: e.rng.Float64() * 2 * math.Pi,
			Dist:  0.2 + e.rng.Float64()*0.55,
			Scale: 0.18 + e.rng.Float64()*0.22,
		}
	}
	e.effects = append(e.effects, fx)
	return fx
}

// prune drops expired effects. Called once per frame before rendering.
func (e *explosionEngine) prune(now time.Time) {
	kept := e.effects[:0]
	for _, fx := range e.effects {
		if fx.active(now) {
			kept = append(kept, fx)
		}
	}
	for i := len(kept); i < len(e.effects); i++ {
		e.effects[i] = nil
	}
	e.effects = kept
}

func (e *explosionEngine) len() int { return len(e.effects) }

// render draws every active effect in camera space and reports whether any
// remain active.
func (e *explosionEngine) render(dst *ebiten.Image, camX, camY float64, now time.Time) bool {
	anyActive := false
	for _, fx := range e.effects {
		if fx.renderOne(dst, camX, camY, now) {
			anyActive = true
		}
	}
	return anyActive
}

func (fx *explosionEffect) renderOne(dst *ebiten.Image, camX, camY float64, now time.Time) bool {
	p := fx.progress(now)
	if p >= 1 {
		return false
	}
	tp := explosionTiers[fx.Tier]
	cx := float32(fx.Origin.X - camX)
	cy := float32(fx.Origin.Y - camY)

	// Flash: a hot white disc over the whole blast area.
	if f := flashStrength(p); f > 0 {
		a := uint8(200 * f)
		vector.DrawFilledCircle(dst, cx, cy, float32(fx.VisualRadius*0.9), color.RGBA{0xff, 0xff, 0xf0, a}, true)
	}

	// Fireball and shockwave ring.
	if fp := phaseProgress(p, fireballPhaseStart, fireballPhaseEnd); fp > 0 {
		r := fireballRadius(p, fx.VisualRadius)
		fade := 1 - fp*fp
		core := color.RGBA{0xff, uint8(0x90 + 0x60*fade), 0x30, uint8(220 * fade)}
		vector.DrawFilledCircle(dst, cx, cy, float32(r*0.55), core, true)
		for _, b := range fx.Bursts {
			bx := cx + float32(math.Cos(b.Angle)*b.Dist*r)
			by := cy + float32(math.Sin(b.Angle)*b.Dist*r)
			bc := color.RGBA{0xff, 0xb0, 0x40, uint8(180 * fade)}
			vector.DrawFilledCircle(dst, bx, by, float32(b.Scale*r), bc, true)
		}
		ring := shockwaveRadius(p, fx.VisualRadius)
		ringAlpha := uint8(float64(tp.ringStrength) * 140 * (1 - fp))
		vector.StrokeCircle(dst, cx, cy, float32(ring), 3, color.RGBA{0xff, 0xe8, 0xc0, ringAlpha}, true)
	}

	// Smoke, debris and embers.
	if sp := smokeProgress(p); sp > 0 {
		eased := easeOutCubic(sp)
		fade := 1 - sp
		for _, s := range fx.Smoke {
			sx := cx + float32(math.Cos(s.Angle)*s.Dist*eased)
			sy := cy + float32(math.Sin(s.Angle)*s.Dist*eased-s.Drift*sp)
			g := uint8(0x50 + 0x28*fade)
			vector.DrawFilledCircle(dst, sx, sy, float32(s.Size*(0.6+0.4*eased)), color.RGBA{g, g, g, uint8(140 * fade)}, true)
		}
		for _, d := range fx.Debris {
			dx := cx + float32(math.Cos(d.Angle)*d.Speed*eased)
			dy := cy + float32(math.Sin(d.Angle)*d.Speed*eased+30*sp*sp)
			c := d.Color
			c.A = uint8(255 * fade)
			vector.DrawFilledCircle(dst, dx, dy, float32(d.Size*(1-0.5*sp)), c, true)
		}
	}
	return true
}
