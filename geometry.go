package main

import "math"

// World measurement constants. These mirror the authoritative server and
// must never drift from it: tiles are 48px and building foundations occupy
// a coarser 96px cell (exactly 2x2 terrain tiles).
const (
	tileSizePx        = 48
	foundationCellPx  = 96
	worldWidthTiles   = 500
	worldHeightTiles  = 500
	worldWidthPx      = worldWidthTiles * tileSizePx
	worldHeightPx     = worldHeightTiles * tileSizePx
	foundationPerTile = foundationCellPx / tileSizePx
)

type vec2 struct {
	X, Y float64
}

func (v vec2) add(o vec2) vec2 { return vec2{v.X + o.X, v.Y + o.Y} }
func (v vec2) sub(o vec2) vec2 { return vec2{v.X - o.X, v.Y - o.Y} }

func (v vec2) dist(o vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// lerpVec interpolates linearly between a and b. t is clamped so callers can
// feed raw elapsed/duration ratios without overshoot.
func lerpVec(a, b vec2, t float64) vec2 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

type tileCoord struct {
	X, Y int
}

type cellCoord struct {
	X, Y int
}

// worldToTile converts a world-pixel position to the terrain tile containing
// it. Uses floor division so negative coordinates land in the right tile.
func worldToTile(x, y float64) tileCoord {
	return tileCoord{
		X: int(math.Floor(x / tileSizePx)),
		Y: int(math.Floor(y / tileSizePx)),
	}
}

// tileOrigin returns the world-pixel top-left corner of a tile.
func tileOrigin(t tileCoord) (float64, float64) {
	return float64(t.X) * tileSizePx, float64(t.Y) * tileSizePx
}

// worldToFoundationCell converts a world-pixel position to the foundation
// cell containing it. The server resolves "is this position inside a
// building" with the exact same division.
func worldToFoundationCell(x, y float64) cellCoord {
	return cellCoord{
		X: int(math.Floor(x / foundationCellPx)),
		Y: int(math.Floor(y / foundationCellPx)),
	}
}

// foundationCellOrigin returns the world-pixel top-left of a foundation cell.
func foundationCellOrigin(c cellCoord) (float64, float64) {
	return float64(c.X) * foundationCellPx, float64(c.Y) * foundationCellPx
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// easeOutCubic starts fast and decelerates; used for expansion curves so
// fireballs and wakes bloom quickly then settle.
func easeOutCubic(t float64) float64 {
	t = clampF(t, 0, 1)
	u := 1 - t
	return 1 - u*u*u
}
