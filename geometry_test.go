package main

import "testing"

func TestWorldToTileNegative(t *testing.T) {
	cases := []struct {
		x, y  float64
		wantX int
		wantY int
	}{
		{0, 0, 0, 0},
		{47.9, 47.9, 0, 0},
		{48, 0, 1, 0},
		{-0.1, -0.1, -1, -1},
		{-48, -48.1, -1, -2},
		{100.5, 250, 2, 5},
	}
	for _, c := range cases {
		got := worldToTile(c.x, c.y)
		if got.X != c.wantX || got.Y != c.wantY {
			t.Fatalf("worldToTile(%v,%v) = %v, want (%d,%d)", c.x, c.y, got, c.wantX, c.wantY)
		}
	}
}

func TestWorldToFoundationCell(t *testing.T) {
	c := worldToFoundationCell(95.9, 96.0)
	if c.X != 0 || c.Y != 1 {
		t.Fatalf("worldToFoundationCell(95.9,96) = %v, want (0,1)", c)
	}
	c = worldToFoundationCell(-1, -96)
	if c.X != -1 || c.Y != -1 {
		t.Fatalf("worldToFoundationCell(-1,-96) = %v, want (-1,-1)", c)
	}
}

func TestLerpVecClamps(t *testing.T) {
	a := vec2{0, 0}
	b := vec2{10, -10}
	if got := lerpVec(a, b, -0.5); got != a {
		t.Fatalf("lerpVec t<0 = %v, want %v", got, a)
	}
	if got := lerpVec(a, b, 1.5); got != b {
		t.Fatalf("lerpVec t>1 = %v, want %v", got, b)
	}
	mid := lerpVec(a, b, 0.5)
	if mid.X != 5 || mid.Y != -5 {
		t.Fatalf("lerpVec midpoint = %v, want (5,-5)", mid)
	}
}
