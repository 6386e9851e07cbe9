package main

// Visual-state resolution for entities. This used to be a chain of if/else
// checks tangled into the drawer; it is now a single pure function over an
// explicit pose enum with a documented total order, so the priority is
// auditable and testable without a GPU.

type pose uint8

// Poses in strict priority order, highest first. resolveVisualState returns
// the first pose whose condition holds; reordering these constants changes
// gameplay-visible behavior and breaks the resolver tests.
const (
	poseHidden pose = iota // dead players render nothing
	poseCorpse
	poseKnockedOut
	poseDodge
	poseDrink
	poseBandage
	poseSwim
	poseCrouchWalk
	poseCrouchIdle
	poseIdle
	poseSprint
	poseWalk
)

func (p pose) String() string {
	switch p {
	case poseHidden:
		return "hidden"
	case poseCorpse:
		return "corpse"
	case poseKnockedOut:
		return "knockedOut"
	case poseDodge:
		return "dodge"
	case poseDrink:
		return "drink"
	case poseBandage:
		return "bandage"
	case poseSwim:
		return "swim"
	case poseCrouchWalk:
		return "crouchWalk"
	case poseCrouchIdle:
		return "crouchIdle"
	case poseIdle:
		return "idle"
	case poseSprint:
		return "sprint"
	case poseWalk:
		return "walk"
	}
	return "unknown"
}

type sheetID uint8

const (
	sheetNone sheetID = iota
	sheetPlayerIdle
	sheetPlayerWalk
	sheetPlayerSprint
	sheetPlayerSwim
	sheetPlayerCrouch
	sheetPlayerDodge
	sheetPlayerKnockout
	sheetPlayerDrink
	sheetPlayerBandage
	sheetCorpse

	sheetCount
)

// String names the sheet's on-disk asset file.
func (s sheetID) String() string {
	switch s {
	case sheetPlayerIdle:
		return "player_idle"
	case sheetPlayerWalk:
		return "player_walk"
	case sheetPlayerSprint:
		return "player_sprint"
	case sheetPlayerSwim:
		return "player_swim"
	case sheetPlayerCrouch:
		return "player_crouch"
	case sheetPlayerDodge:
		return "player_dodge"
	case sheetPlayerKnockout:
		return "player_knockout"
	case sheetPlayerDrink:
		return "player_drink"
	case sheetPlayerBandage:
		return "player_bandage"
	case sheetCorpse:
		return "corpse"
	}
	return "none"
}

// Sheet geometry. Every player sheet carries 4 facing rows; the column
// layout differs per pose. Crouch art starts at column 1 (column 0 on that
// sheet is the stand-to-crouch transition and is skipped).
const (
	idleCols     = 4
	walkCols     = 8
	sprintCols   = 8
	swimCols     = 6
	crouchCols   = 4 // usable columns; sheet column 0 is skipped
	dodgeCols    = 7
	knockoutCols = 2
	drinkCols    = 5
	bandageCols  = 5
	sheetRows    = 4

	idleFrameDiv   = 8 // client frames per animation column
	walkFrameDiv   = 3
	sprintFrameDiv = 2
	swimFrameDiv   = 5
	drinkFrameDiv  = 6
	koFrameDiv     = 16
)

// visualState is the resolved draw selection for one entity this frame.
type visualState struct {
	Pose   pose
	Sheet  sheetID
	Col    int
	Row    int
	Frames int // total frame count across the sheet
	Loop   bool
}

// localFlags are the client-side inputs the snapshot does not carry:
// whether the entity moved this frame, the local crouch override, and
// dodge-roll progress supplied by the roll tracker.
type localFlags struct {
	Moving         bool
	CrouchOverride bool
	// DodgeProgress is the 0..1 fraction through an active dodge roll,
	// or negative when not rolling.
	DodgeProgress float64
	Consumable    consumableKind
}

// resolveVisualState maps a snapshot plus local flags to a sprite
// selection. Pure: same inputs, same output, no cache access.
func resolveVisualState(e *entitySnapshot, lf localFlags, animFrame int, serverNowMs uint64) visualState {
	row := e.Facing.spriteRow()

	if e.IsCorpse {
		return visualState{Pose: poseCorpse, Sheet: sheetCorpse, Col: 0, Row: row, Frames: sheetRows, Loop: false}
	}
	if e.IsDead {
		return visualState{Pose: poseHidden, Sheet: sheetNone}
	}
	if e.IsKnockedOut {
		col := (animFrame / koFrameDiv) % knockoutCols
		return visualState{Pose: poseKnockedOut, Sheet: sheetPlayerKnockout, Col: col, Row: row, Frames: knockoutCols * sheetRows, Loop: true}
	}
	if lf.DodgeProgress >= 0 {
		// Column selected by roll progress, not the animation clock, so
		// the roll lands on its final frame exactly when it ends.
		col := int(lf.DodgeProgress * dodgeCols)
		if col >= dodgeCols {
			col = dodgeCols - 1
		}
		return visualState{Pose: poseDodge, Sheet: sheetPlayerDodge, Col: col, Row: row, Frames: dodgeCols * sheetRows, Loop: false}
	}
	if lf.Consumable == consumeDrink {
		col := (animFrame / drinkFrameDiv) % drinkCols
		return visualState{Pose: poseDrink, Sheet: sheetPlayerDrink, Col: col, Row: row, Frames: drinkCols * sheetRows, Loop: true}
	}
	if lf.Consumable == consumeBandage {
		col := (animFrame / drinkFrameDiv) % bandageCols
		return visualState{Pose: poseBandage, Sheet: sheetPlayerBandage, Col: col, Row: row, Frames: bandageCols * sheetRows, Loop: true}
	}
	// Mid-jump entities over water are airborne, not swimming.
	if e.IsOnWater && !e.isJumping(serverNowMs) {
		col := (animFrame / swimFrameDiv) % swimCols
		return visualState{Pose: poseSwim, Sheet: sheetPlayerSwim, Col: col, Row: row, Frames: swimCols * sheetRows, Loop: true}
	}
	if e.IsCrouching || lf.CrouchOverride {
		p := poseCrouchIdle
		col := 1 // skip sheet column 0
		if lf.Moving {
			p = poseCrouchWalk
			col = 1 + (animFrame/walkFrameDiv)%crouchCols
		}
		return visualState{Pose: p, Sheet: sheetPlayerCrouch, Col: col, Row: row, Frames: crouchCols * sheetRows, Loop: true}
	}
	if !lf.Moving {
		col := (animFrame / idleFrameDiv) % idleCols
		return visualState{Pose: poseIdle, Sheet: sheetPlayerIdle, Col: col, Row: row, Frames: idleCols * sheetRows, Loop: true}
	}
	if e.IsSprinting {
		col := (animFrame / sprintFrameDiv) % sprintCols
		return visualState{Pose: poseSprint, Sheet: sheetPlayerSprint, Col: col, Row: row, Frames: sprintCols * sheetRows, Loop: true}
	}
	col := (animFrame / walkFrameDiv) % walkCols
	return visualState{Pose: poseWalk, Sheet: sheetPlayerWalk, Col: col, Row: row, Frames: walkCols * sheetRows, Loop: true}
}
