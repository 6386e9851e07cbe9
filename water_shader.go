package main

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// GPU water overlay. The shader produces the whole-viewport water pattern
// (voronoi crests, caustic interference, ripple bands) as a function of
// world position and elapsed time; the frame compositor masks it against
// actual water tiles and feathers shorelines. Rendered at quarter scale and
// upscaled — per-pixel CPU tinting was tried first and forced a GPU sync
// every frame.

// waterDownsample is the resolution divisor for the overlay buffer.
const waterDownsample = 4

const waterShaderSrc = `//kage:unit pixels

package main

var Time float
var Camera vec2
var Downsample float
var Intensity float

func hash22(p vec2) vec2 {
	q := vec2(dot(p, vec2(127.1, 311.7)), dot(p, vec2(269.5, 183.3)))
	return fract(sin(q) * 43758.5453)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	world := Camera + dstPos.xy*Downsample

	// Wave-domain distortion: warp the sampling domain before any field
	// so crests and caustics drift instead of scrolling rigidly.
	p := world * 0.02
	p += vec2(sin(p.y*1.7+Time*0.8), cos(p.x*1.3-Time*0.6)) * 0.35

	// Jittered voronoi: nearest and second-nearest of the 4 surrounding
	// jittered cell points. Crests appear where the two distances tie.
	g := floor(p - 0.5)
	d1 := 8.0
	d2 := 8.0
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			cell := g + vec2(float(x), float(y))
			jitter := hash22(cell)
			point := cell + 0.5 + (jitter-0.5)*0.8
			d := length(p - point)
			if d < d1 {
				d2 = d1
				d1 = d
			} else if d < d2 {
				d2 = d
			}
		}
	}
	crest := 1.0 - smoothstep(0.0, 0.18, d2-d1)

	// Two layered caustic interference fields.
	c1 := sin(world.x*0.045+Time*1.1) * sin(world.y*0.05-Time*0.9)
	c2 := sin((world.x+world.y)*0.03+Time*0.7) * sin((world.x-world.y)*0.035+Time*1.3)
	caustic := clamp(c1*c2, 0.0, 1.0)
	caustic *= caustic

	// Ripple bands: thin bright lines sweeping the surface.
	band := sin(world.y*0.12 + sin(world.x*0.05+Time)*2.0 + Time*2.2)
	ripple := smoothstep(0.85, 1.0, band)

	// Cellular shading: darker toward each cell center.
	shade := clamp(d1*0.9, 0.0, 1.0)

	base := vec3(0.16, 0.35, 0.47) * (0.75 + 0.25*shade)
	col := base + vec3(0.25, 0.45, 0.50)*crest + vec3(0.18, 0.30, 0.32)*caustic + vec3(0.20, 0.22, 0.22)*ripple
	a := Intensity * (0.55 + 0.30*crest + 0.25*caustic + 0.20*ripple)
	a = clamp(a, 0.0, 1.0)
	return vec4(col*a, a)
}
`

// waterOverlay owns the shader and the reduced-resolution target. On any
// shader/context failure it degrades to unavailable, notifies the caller
// once, and retries initialization lazily with a small backoff.
type waterOverlay struct {
	shader *ebiten.Shader
	buf    *ebiten.Image

	failed      bool
	notified    bool
	lastAttempt time.Time
	onLost      func(error)
}

func newWaterOverlay(onLost func(error)) *waterOverlay {
	return &waterOverlay{onLost: onLost}
}

// invalidate drops the compiled shader, e.g. on a reported context loss.
// The next render call recompiles.
func (w *waterOverlay) invalidate() {
	w.shader = nil
	w.failed = false
	w.notified = false
}

func (w *waterOverlay) ensureShader(now time.Time) bool {
	if w.shader != nil {
		return true
	}
	if w.failed && now.Sub(w.lastAttempt) < 2*time.Second {
		return false
	}
	w.lastAttempt = now
	sh, err := ebiten.NewShader([]byte(waterShaderSrc))
	if err != nil {
		w.failed = true
		if !w.notified {
			w.notified = true
			logError("water shader unavailable: %v", err)
			if w.onLost != nil {
				w.onLost(err)
			}
		}
		return false
	}
	w.shader = sh
	w.failed = false
	return true
}

func (w *waterOverlay) ensureBuf(bw, bh int) {
	if w.buf == nil || w.buf.Bounds().Dx() != bw || w.buf.Bounds().Dy() != bh {
		w.buf = ebiten.NewImageWithOptions(image.Rect(0, 0, bw, bh), &ebiten.NewImageOptions{Unmanaged: true})
	}
}

// render fills the downsampled buffer with the water pattern for the given
// camera window and returns it. ok is false when the GPU path is
// unavailable; the caller falls back to flat sea tiles.
func (w *waterOverlay) render(camX, camY float64, viewW, viewH int, elapsed float64, intensity float64) (*ebiten.Image, bool) {
	if viewW <= 0 || viewH <= 0 {
		return nil, false
	}
	if !w.ensureShader(time.Now()) {
		return nil, false
	}
	bw := (viewW + waterDownsample - 1) / waterDownsample
	bh := (viewH + waterDownsample - 1) / waterDownsample
	w.ensureBuf(bw, bh)
	w.buf.Clear()

	op := &ebiten.DrawRectShaderOptions{}
	op.Uniforms = map[string]any{
		"Time":       float32(elapsed),
		"Camera":     []float32{float32(camX), float32(camY)},
		"Downsample": float32(waterDownsample),
		"Intensity":  float32(clampF(intensity, 0, 1)),
	}
	w.buf.DrawRectShader(bw, bh, w.shader, op)
	return w.buf, true
}
