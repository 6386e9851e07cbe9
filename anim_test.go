package main

import "testing"

func TestDodgeOverridesSwimAndCrouch(t *testing.T) {
	e := entitySnapshot{
		Facing:      dirDown,
		IsOnWater:   true,
		IsCrouching: true,
	}
	lf := localFlags{Moving: true, DodgeProgress: 0.5}
	vs := resolveVisualState(&e, lf, 0, 1000)
	if vs.Pose != poseDodge {
		t.Fatalf("pose = %v, want dodge", vs.Pose)
	}
	if vs.Frames != 28 {
		t.Fatalf("dodge frame count = %d, want 28", vs.Frames)
	}
}

func TestDodgeColumnFollowsProgress(t *testing.T) {
	e := entitySnapshot{Facing: dirRight}
	for _, c := range []struct {
		progress float64
		wantCol  int
	}{
		{0, 0},
		{0.49, 3},
		{0.99, 6},
		{1.0, 6}, // clamped to the last column
	} {
		vs := resolveVisualState(&e, localFlags{DodgeProgress: c.progress}, 0, 0)
		if vs.Col != c.wantCol {
			t.Fatalf("dodge progress %v col = %d, want %d", c.progress, vs.Col, c.wantCol)
		}
	}
}

func TestSwimOverridesCrouch(t *testing.T) {
	e := entitySnapshot{IsOnWater: true, IsCrouching: true}
	vs := resolveVisualState(&e, localFlags{DodgeProgress: -1}, 0, 1000)
	if vs.Pose != poseSwim {
		t.Fatalf("pose = %v, want swim", vs.Pose)
	}
	if vs.Frames != swimCols*sheetRows {
		t.Fatalf("swim frames = %d, want %d", vs.Frames, swimCols*sheetRows)
	}
}

func TestJumpSuppressesSwim(t *testing.T) {
	e := entitySnapshot{IsOnWater: true, JumpStartMs: 900}
	vs := resolveVisualState(&e, localFlags{Moving: true, DodgeProgress: -1}, 0, 1000)
	if vs.Pose == poseSwim {
		t.Fatalf("mid-jump entity resolved to swim")
	}
	// After the jump window the same entity swims again.
	vs = resolveVisualState(&e, localFlags{Moving: true, DodgeProgress: -1}, 0, 900+jumpDurationMs)
	if vs.Pose != poseSwim {
		t.Fatalf("post-jump pose = %v, want swim", vs.Pose)
	}
}

func TestDeadEntityIsHidden(t *testing.T) {
	e := entitySnapshot{IsDead: true, IsOnWater: true, IsCrouching: true}
	vs := resolveVisualState(&e, localFlags{Moving: true, DodgeProgress: 0.2}, 0, 0)
	if vs.Pose != poseHidden || vs.Sheet != sheetNone {
		t.Fatalf("dead entity resolved to %v on sheet %d", vs.Pose, vs.Sheet)
	}
}

func TestCrouchSkipsFirstColumn(t *testing.T) {
	e := entitySnapshot{IsCrouching: true}
	for frame := 0; frame < 40; frame++ {
		vs := resolveVisualState(&e, localFlags{Moving: true, DodgeProgress: -1}, frame, 0)
		if vs.Pose != poseCrouchWalk {
			t.Fatalf("pose = %v, want crouchWalk", vs.Pose)
		}
		if vs.Col < 1 || vs.Col > crouchCols {
			t.Fatalf("crouch column %d out of range [1,%d]", vs.Col, crouchCols)
		}
	}
	vs := resolveVisualState(&e, localFlags{Moving: false, DodgeProgress: -1}, 0, 0)
	if vs.Pose != poseCrouchIdle || vs.Col != 1 {
		t.Fatalf("crouch idle = %v col %d, want crouchIdle col 1", vs.Pose, vs.Col)
	}
}

func TestSprintVsWalk(t *testing.T) {
	e := entitySnapshot{IsSprinting: true}
	vs := resolveVisualState(&e, localFlags{Moving: true, DodgeProgress: -1}, 0, 0)
	if vs.Pose != poseSprint {
		t.Fatalf("pose = %v, want sprint", vs.Pose)
	}
	e.IsSprinting = false
	vs = resolveVisualState(&e, localFlags{Moving: true, DodgeProgress: -1}, 0, 0)
	if vs.Pose != poseWalk {
		t.Fatalf("pose = %v, want walk", vs.Pose)
	}
	vs = resolveVisualState(&e, localFlags{Moving: false, DodgeProgress: -1}, 0, 0)
	if vs.Pose != poseIdle {
		t.Fatalf("pose = %v, want idle", vs.Pose)
	}
}

func TestDiagonalFacingAliasesToCardinalRow(t *testing.T) {
	for _, c := range []struct {
		f    facing
		want int
	}{
		{dirUpRight, dirRight.spriteRow()},
		{dirDownRight, dirRight.spriteRow()},
		{dirUpLeft, dirLeft.spriteRow()},
		{dirDownLeft, dirLeft.spriteRow()},
	} {
		if got := c.f.spriteRow(); got != c.want {
			t.Fatalf("facing %d row = %d, want %d", c.f, got, c.want)
		}
	}
}
