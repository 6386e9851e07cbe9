package main

import (
	"image"
	"image/color"
	"sort"
)

// Procedural autotile terrain. The server only stores a sparse tile-type
// map; every transition sprite (grass-into-sand, snow-into-sea, ...) is
// chosen client-side by sampling the 8 neighbors into a bitmask and looking
// the mask up in a pre-baked table for that ordered tile-type pair.

type tileType uint8

const (
	tileEmpty tileType = iota
	tileGrass
	tileSand
	tileDirt
	tileSea
	tileSnow
	tileRock
)

func (t tileType) String() string {
	switch t {
	case tileGrass:
		return "grass"
	case tileSand:
		return "sand"
	case tileDirt:
		return "dirt"
	case tileSea:
		return "sea"
	case tileSnow:
		return "snow"
	case tileRock:
		return "rock"
	}
	return "empty"
}

// Flat fill colors used when a base texture failed to load. Never a crash,
// never a wrong tileset: worst case the world renders as colored squares.
var tileFallbackColors = map[tileType]color.RGBA{
	tileGrass: {0x4a, 0x7c, 0x3a, 0xff},
	tileSand:  {0xd8, 0xc2, 0x7a, 0xff},
	tileDirt:  {0x7a, 0x5c, 0x3e, 0xff},
	tileSea:   {0x2b, 0x4f, 0x6e, 0xff},
	tileSnow:  {0xe8, 0xee, 0xf2, 0xff},
	tileRock:  {0x6e, 0x6e, 0x72, 0xff},
}

// Neighbor bit layout, clockwise from north.
const (
	maskN  uint8 = 1 << 0
	maskNE uint8 = 1 << 1
	maskE  uint8 = 1 << 2
	maskSE uint8 = 1 << 3
	maskS  uint8 = 1 << 4
	maskSW uint8 = 1 << 5
	maskW  uint8 = 1 << 6
	maskNW uint8 = 1 << 7
)

var neighborOffsets = [8]tileCoord{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// computeAutotileMask samples the 8 neighbors of at and sets a bit for each
// neighbor matching secondary. Pure function of the lookup.
func computeAutotileMask(lookup func(tileCoord) tileType, at tileCoord, secondary tileType) uint8 {
	var mask uint8
	for i, off := range neighborOffsets {
		n := tileCoord{at.X + off.X, at.Y + off.Y}
		if lookup(n) == secondary {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// canonicalMask drops corner bits whose two adjacent cardinals are not both
// set. A corner neighbor only changes the drawn transition when the tile
// already blends on both sides of that corner; canonicalizing collapses the
// 256 raw masks onto the 47 baked sprites.
func canonicalMask(mask uint8) uint8 {
	if mask&maskNE != 0 && (mask&maskN == 0 || mask&maskE == 0) {
		mask &^= maskNE
	}
	if mask&maskSE != 0 && (mask&maskS == 0 || mask&maskE == 0) {
		mask &^= maskSE
	}
	if mask&maskSW != 0 && (mask&maskS == 0 || mask&maskW == 0) {
		mask &^= maskSW
	}
	if mask&maskNW != 0 && (mask&maskN == 0 || mask&maskW == 0) {
		mask &^= maskNW
	}
	return mask
}

// blobIndex maps every canonical mask to its 0..46 sheet index. Built once;
// masks are indexed in ascending order so the table is reproducible from
// the sheet layout alone.
var blobIndex = buildBlobIndex()

func buildBlobIndex() map[uint8]int {
	seen := map[uint8]bool{}
	for m := 0; m < 256; m++ {
		seen[canonicalMask(uint8(m))] = true
	}
	masks := make([]int, 0, len(seen))
	for m := range seen {
		masks = append(masks, int(m))
	}
	sort.Ints(masks)
	idx := make(map[uint8]int, len(masks))
	for i, m := range masks {
		idx[uint8(m)] = i
	}
	return idx
}

// Transition sheets are laid out 8 sprites per row.
const transitionSheetCols = 8

// autotileRule describes one ordered primary/secondary transition pair and
// its baked sheet. Rules are static configuration loaded once at startup.
type autotileRule struct {
	Primary   tileType
	Secondary tileType
	Asset     string
}

// spriteRectForMask resolves a canonical mask to the source rectangle in
// the rule's transition sheet. ok is false for the zero mask (no neighbors
// of the secondary type, nothing to draw).
func (r *autotileRule) spriteRectForMask(mask uint8) (image.Rectangle, bool) {
	mask = canonicalMask(mask)
	if mask == 0 {
		return image.Rectangle{}, false
	}
	idx, ok := blobIndex[mask]
	if !ok {
		return image.Rectangle{}, false
	}
	col := idx % transitionSheetCols
	row := idx / transitionSheetCols
	x0 := col * tileSizePx
	y0 := row * tileSizePx
	return image.Rect(x0, y0, x0+tileSizePx, y0+tileSizePx), true
}

// Default transition pairs for the arctic biome set. Order matters: the
// first rule whose primary matches the tile wins for each secondary.
var defaultAutotileRules = []autotileRule{
	{Primary: tileGrass, Secondary: tileSand, Asset: "transitions/grass_sand"},
	{Primary: tileGrass, Secondary: tileSea, Asset: "transitions/grass_sea"},
	{Primary: tileGrass, Secondary: tileDirt, Asset: "transitions/grass_dirt"},
	{Primary: tileSand, Secondary: tileSea, Asset: "transitions/sand_sea"},
	{Primary: tileSnow, Secondary: tileGrass, Asset: "transitions/snow_grass"},
	{Primary: tileSnow, Secondary: tileSea, Asset: "transitions/snow_sea"},
	{Primary: tileSnow, Secondary: tileRock, Asset: "transitions/snow_rock"},
	{Primary: tileDirt, Secondary: tileRock, Asset: "transitions/dirt_rock"},
}

// terrainRenderer consumes the sparse tile map and the rule set. It keeps
// no per-frame state: mask computation and lookup are pure, so a tile draws
// identically every frame until the map itself changes.
type terrainRenderer struct {
	rules map[tileType][]autotileRule
}

func newTerrainRenderer(rules []autotileRule) *terrainRenderer {
	tr := &terrainRenderer{rules: make(map[tileType][]autotileRule)}
	for _, r := range rules {
		tr.rules[r.Primary] = append(tr.rules[r.Primary], r)
	}
	return tr
}

// tileDraw is one resolved draw decision for a visible tile, produced by
// resolveTile and consumed by the ebiten drawer. Splitting resolution from
// blitting keeps the interesting part testable without a GPU.
type tileDraw struct {
	Coord tileCoord
	Type  tileType

	// Transition overlays to composite over the base, in rule order.
	Overlays []tileOverlay
}

type tileOverlay struct {
	Asset string
	Src   image.Rectangle
	Mask  uint8 // canonical; retained for the debug overlay
}

// resolveTile computes everything needed to draw the tile at tc. Missing
// tile data falls back to grass.
func (tr *terrainRenderer) resolveTile(tiles map[tileCoord]tileType, tc tileCoord) tileDraw {
	typ, ok := tiles[tc]
	if !ok || typ == tileEmpty {
		typ = tileGrass
	}
	td := tileDraw{Coord: tc, Type: typ}
	lookup := func(c tileCoord) tileType {
		t, ok := tiles[c]
		if !ok {
			return tileGrass
		}
		return t
	}
	for _, rule := range tr.rules[typ] {
		mask := canonicalMask(computeAutotileMask(lookup, tc, rule.Secondary))
		if mask == 0 {
			continue
		}
		if rect, ok := rule.spriteRectForMask(mask); ok {
			td.Overlays = append(td.Overlays, tileOverlay{Asset: rule.Asset, Src: rect, Mask: mask})
		}
	}
	return td
}
