package domain

// Stage identifies one state of the calibration wizard. Exactly one stage is
// current at any time; Exit and Failed are terminal.
type Stage string

const (
	// StageCircInit reads any stored circumference points and offers to keep them.
	StageCircInit Stage = "circ_init"
	// StageCircPts collects sphere circumference clicks.
	StageCircPts Stage = "circ_pts"
	// StageIgnrInit reads any stored ignore regions and offers to keep them.
	StageIgnrInit Stage = "ignr_init"
	// StageIgnrPts collects ignore-region polygons.
	StageIgnrPts Stage = "ignr_pts"
	// StageRInit reads any stored transform and offers to keep it.
	StageRInit Stage = "r_init"
	// StageRSlct asks which transform method to use.
	StageRSlct Stage = "r_slct"
	// StageRXY collects reference square corners in the X-Y plane.
	StageRXY Stage = "r_xy"
	// StageRYZ collects reference square corners in the Y-Z plane.
	StageRYZ Stage = "r_yz"
	// StageRXZ collects reference square corners in the X-Z plane.
	StageRXZ Stage = "r_xz"
	// StageRExt records that the transform is supplied externally.
	StageRExt Stage = "r_ext"
	// StageExit is the successful terminal stage.
	StageExit Stage = "exit"
	// StageFailed is the terminal stage entered on a store write failure.
	StageFailed Stage = "failed"
)

// Terminal reports whether the stage ends the session.
func (s Stage) Terminal() bool {
	return s == StageExit || s == StageFailed
}

// CornerStage reports whether the stage collects reference square corners.
func (s Stage) CornerStage() bool {
	return s == StageRXY || s == StageRYZ || s == StageRXZ
}
