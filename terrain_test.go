package main

import "testing"

// fixed 3x3 neighborhood: sand ring north+east of a grass center.
func testTiles() map[tileCoord]tileType {
	tiles := map[tileCoord]tileType{
		{0, 0}: tileGrass,
	}
	tiles[tileCoord{0, -1}] = tileSand  // N
	tiles[tileCoord{1, -1}] = tileSand  // NE
	tiles[tileCoord{1, 0}] = tileSand   // E
	tiles[tileCoord{1, 1}] = tileGrass  // SE
	tiles[tileCoord{0, 1}] = tileGrass  // S
	tiles[tileCoord{-1, 1}] = tileGrass // SW
	tiles[tileCoord{-1, 0}] = tileGrass // W
	tiles[tileCoord{-1, -1}] = tileSand // NW
	return tiles
}

func TestAutotileMaskBits(t *testing.T) {
	tiles := testTiles()
	lookup := func(c tileCoord) tileType { return tiles[c] }
	mask := computeAutotileMask(lookup, tileCoord{0, 0}, tileSand)
	want := maskN | maskNE | maskE | maskNW
	if mask != want {
		t.Fatalf("mask = %08b, want %08b", mask, want)
	}
}

func TestCanonicalMaskDropsLoneCorners(t *testing.T) {
	// NW corner set without W cardinal: corner bit must be dropped.
	mask := maskN | maskNE | maskE | maskNW
	got := canonicalMask(mask)
	want := maskN | maskNE | maskE
	if got != want {
		t.Fatalf("canonicalMask(%08b) = %08b, want %08b", mask, got, want)
	}
	// Fully surrounded stays intact.
	if got := canonicalMask(0xff); got != 0xff {
		t.Fatalf("canonicalMask(ff) = %02x, want ff", got)
	}
	// Corners with both cardinals survive.
	m := maskN | maskE | maskNE
	if got := canonicalMask(m); got != m {
		t.Fatalf("canonicalMask(%08b) = %08b, want unchanged", m, got)
	}
}

func TestBlobIndexCovers47Sprites(t *testing.T) {
	if len(blobIndex) != 47 {
		t.Fatalf("blob index has %d canonical masks, want 47", len(blobIndex))
	}
	seen := map[int]bool{}
	for _, idx := range blobIndex {
		if idx < 0 || idx >= 47 {
			t.Fatalf("blob index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("blob index %d assigned twice", idx)
		}
		seen[idx] = true
	}
}

func TestAutotileDeterminism(t *testing.T) {
	tiles := testTiles()
	tr := newTerrainRenderer(defaultAutotileRules)

	first := tr.resolveTile(tiles, tileCoord{0, 0})
	for i := 0; i < 10; i++ {
		again := tr.resolveTile(tiles, tileCoord{0, 0})
		if len(again.Overlays) != len(first.Overlays) {
			t.Fatalf("overlay count changed between calls: %d vs %d", len(first.Overlays), len(again.Overlays))
		}
		for j := range again.Overlays {
			if again.Overlays[j] != first.Overlays[j] {
				t.Fatalf("overlay %d changed between calls: %+v vs %+v", j, first.Overlays[j], again.Overlays[j])
			}
		}
	}
	if len(first.Overlays) != 1 {
		t.Fatalf("expected one grass/sand transition overlay, got %d", len(first.Overlays))
	}
	if first.Overlays[0].Mask != canonicalMask(maskN|maskNE|maskE|maskNW) {
		t.Fatalf("overlay mask = %08b", first.Overlays[0].Mask)
	}
}

func TestResolveTileMissingDataFallsBackToGrass(t *testing.T) {
	tr := newTerrainRenderer(defaultAutotileRules)
	td := tr.resolveTile(map[tileCoord]tileType{}, tileCoord{5, 5})
	if td.Type != tileGrass {
		t.Fatalf("missing tile resolved to %v, want grass", td.Type)
	}
	if len(td.Overlays) != 0 {
		t.Fatalf("missing tile produced %d overlays in an empty world", len(td.Overlays))
	}
}

func TestSpriteRectWithinSheet(t *testing.T) {
	r := autotileRule{Primary: tileGrass, Secondary: tileSand, Asset: "transitions/grass_sand"}
	for mask := 0; mask < 256; mask++ {
		rect, ok := r.spriteRectForMask(uint8(mask))
		if !ok {
			continue
		}
		if rect.Dx() != tileSizePx || rect.Dy() != tileSizePx {
			t.Fatalf("mask %02x rect %v is not one tile", mask, rect)
		}
		if rect.Min.X < 0 || rect.Min.Y < 0 || rect.Min.X >= transitionSheetCols*tileSizePx {
			t.Fatalf("mask %02x rect %v outside sheet columns", mask, rect)
		}
	}
}
