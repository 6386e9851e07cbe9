package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestWaterShaderCompiles(t *testing.T) {
	sh, err := ebiten.NewShader([]byte(waterShaderSrc))
	if err != nil {
		t.Fatalf("water shader failed to compile: %v", err)
	}
	sh.Deallocate()
}

func TestWaterOverlayZeroViewport(t *testing.T) {
	w := newWaterOverlay(nil)
	if img, ok := w.render(0, 0, 0, 0, 1.0, 1.0); ok || img != nil {
		t.Fatalf("zero viewport produced an overlay image")
	}
}

func TestWaterOverlayInvalidateResetsFailure(t *testing.T) {
	w := newWaterOverlay(nil)
	w.failed = true
	w.notified = true
	w.invalidate()
	if w.failed || w.notified || w.shader != nil {
		t.Fatalf("invalidate did not reset shader state")
	}
}

func TestWaterOverlayRender(t *testing.T) {
	t.Skip("requires graphical backend")
}
