package domain

import (
	"github.com/aretw0/spherecal/pkg/geom"
)

// Role tells a frontend what a display primitive depicts, so it can choose
// colour and stroke without the core knowing anything about rendering.
type Role string

const (
	RoleCircumference Role = "circumference"
	RoleIgnoreRegion  Role = "ignore_region"
	RoleSquare        Role = "square"
	RoleAxisX         Role = "axis_x"
	RoleAxisY         Role = "axis_y"
	RoleAxisZ         Role = "axis_z"
)

// PaletteSize is the number of distinct point colours frontends are expected
// to provide. Marker palette indices always stay below it.
const PaletteSize = 6

// Marker is one clicked point. PaletteIndex cycles through the frontend's
// point palette; Radius is in pixels, already scaled to the frame size.
type Marker struct {
	Point        geom.Point2D `json:"point"`
	PaletteIndex int          `json:"palette_index"`
	Radius       float64      `json:"radius"`
}

// Polyline is an open or closed run of segments in pixel space.
type Polyline struct {
	Role   Role           `json:"role"`
	Points []geom.Point2D `json:"points"`
	Closed bool           `json:"closed"`
}

// DisplayModel is everything a frontend needs to draw one wizard cycle: the
// stage, the operator instruction, and the overlay primitives in pixel space.
// The backdrop frame is supplied separately at session start and never changes.
type DisplayModel struct {
	Stage       Stage      `json:"stage"`
	Instruction string     `json:"instruction"`
	Notice      string     `json:"notice,omitempty"`
	Markers     []Marker   `json:"markers,omitempty"`
	Polylines   []Polyline `json:"polylines,omitempty"`
}
