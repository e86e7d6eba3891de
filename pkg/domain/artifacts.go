package domain

import (
	"github.com/golang/geo/r3"
)

// Config keys read and written by the wizard. The value shapes are fixed:
// roi_circ is a flat [x y ...] integer list, roi_ignr a list of such lists (one
// per polygon), the corner keys flat 8-integer lists, c2a_r and c2a_t three
// floats each, and c2a_src one of the Method tags below.
const (
	KeySourceFn    = "src_fn"
	KeyVFOV        = "vfov"
	KeyCircRoi     = "roi_circ"
	KeyIgnoreRoi   = "roi_ignr"
	KeyTransform   = "c2a_src"
	KeyRotation    = "c2a_r"
	KeyTranslation = "c2a_t"
	KeyCornersXY   = "c2a_cnrs_xy"
	KeyCornersYZ   = "c2a_cnrs_yz"
	KeyCornersXZ   = "c2a_cnrs_xz"
)

// Method tags which corner convention produced the stored transform. The tag
// value doubles as the store key holding the clicked corners, except for
// MethodExternal which has no corners.
type Method string

const (
	MethodXY       Method = Method(KeyCornersXY)
	MethodYZ       Method = Method(KeyCornersYZ)
	MethodXZ       Method = Method(KeyCornersXZ)
	MethodExternal Method = "ext"
)

// Valid reports whether m is a known method tag.
func (m Method) Valid() bool {
	switch m {
	case MethodXY, MethodYZ, MethodXZ, MethodExternal:
		return true
	}
	return false
}

// CornersKey returns the store key holding the clicked corners for this
// method, or "" for MethodExternal.
func (m Method) CornersKey() string {
	if m == MethodExternal {
		return ""
	}
	return string(m)
}

// Stage returns the corner-collection stage driving this method, or StageRExt
// for MethodExternal.
func (m Method) Stage() Stage {
	switch m {
	case MethodXY:
		return StageRXY
	case MethodYZ:
		return StageRYZ
	case MethodXZ:
		return StageRXZ
	default:
		return StageRExt
	}
}

// Label is the human-readable name shown in the method menu.
func (m Method) Label() string {
	switch m {
	case MethodXY:
		return "X-Y square corners"
	case MethodYZ:
		return "Y-Z square corners"
	case MethodXZ:
		return "X-Z square corners"
	case MethodExternal:
		return "external transform"
	default:
		return string(m)
	}
}

// ReferenceCorners returns the subject-frame corner positions of the unit
// reference square for this method, in the click order documented to the
// operator. MethodExternal returns false.
func (m Method) ReferenceCorners() ([4]r3.Vector, bool) {
	switch m {
	case MethodXY:
		return [4]r3.Vector{
			{X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1},
		}, true
	case MethodYZ:
		return [4]r3.Vector{
			{Y: -1, Z: -1}, {Y: 1, Z: -1}, {Y: 1, Z: 1}, {Y: -1, Z: 1},
		}, true
	case MethodXZ:
		return [4]r3.Vector{
			{X: 1, Z: -1}, {X: -1, Z: -1}, {X: -1, Z: 1}, {X: 1, Z: 1},
		}, true
	}
	return [4]r3.Vector{}, false
}

// MethodForChoice maps a menu selection to its method. Choice 4 is reserved
// and invalid, as is anything outside 1..5.
func MethodForChoice(choice int) (Method, bool) {
	switch choice {
	case 1:
		return MethodXY, true
	case 2:
		return MethodYZ, true
	case 3:
		return MethodXZ, true
	case 5:
		return MethodExternal, true
	}
	return "", false
}
