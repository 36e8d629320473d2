package gameworld

import (
	"errors"
	"image"
	"math"
)

// Direction names a cardinal drag. Only North and East carry their own
// screen vectors; South and West are derived.
type Direction string

const (
	North Direction = "North"
	South Direction = "South"
	East  Direction = "East"
	West  Direction = "West"
)

// ErrDirectionsUndefined is returned when neither calibrated direction
// vector is available yet.
var ErrDirectionsUndefined = errors.New("direction definitions not available")

// DirectionDefinition is a named screen-space drag vector plus the game
// positions observed at each end during the last calibration. GameStart
// and GameEnd stay nil until a calibration run has filled them in.
type DirectionDefinition struct {
	Name        Direction
	ScreenStart image.Point
	ScreenEnd   image.Point
	GameStart   *Position
	GameEnd     *Position
}

// Defined reports whether the screen vector has been set. A zero-length
// vector is not a usable drag.
func (d DirectionDefinition) Defined() bool {
	return d.ScreenStart != d.ScreenEnd
}

// gameDistance is the absolute wrapped world-unit length of the drag as
// last observed, or 0 when the endpoints are unknown.
func (d DirectionDefinition) gameDistance() float64 {
	if d.GameStart == nil || d.GameEnd == nil {
		return 0
	}
	dx, dy := WrappedDelta(*d.GameStart, *d.GameEnd)
	switch d.Name {
	case East, West:
		return math.Abs(dx)
	default:
		return math.Abs(dy)
	}
}

// DirectionSet holds the two stored directions. South and West are never
// stored: they are the strict algebraic inverses of North and East, so a
// single calibrated segment serves both ways.
type DirectionSet struct {
	North DirectionDefinition
	East  DirectionDefinition
}

// NewDirectionSet builds a set from raw screen vectors, before any game
// endpoints are known.
func NewDirectionSet(northStart, northEnd, eastStart, eastEnd image.Point) *DirectionSet {
	return &DirectionSet{
		North: DirectionDefinition{Name: North, ScreenStart: northStart, ScreenEnd: northEnd},
		East:  DirectionDefinition{Name: East, ScreenStart: eastStart, ScreenEnd: eastEnd},
	}
}

// DragVector resolves the screen start/end points for a cardinal drag.
// South reuses North's segment reversed (end to start), West reuses
// East's; no separately calibrated motion exists for them.
func (s *DirectionSet) DragVector(dir Direction) (from, to image.Point, err error) {
	switch dir {
	case North:
		if !s.North.Defined() {
			return from, to, ErrDirectionsUndefined
		}
		return s.North.ScreenStart, s.North.ScreenEnd, nil
	case South:
		if !s.North.Defined() {
			return from, to, ErrDirectionsUndefined
		}
		return s.North.ScreenEnd, s.North.ScreenStart, nil
	case East:
		if !s.East.Defined() {
			return from, to, ErrDirectionsUndefined
		}
		return s.East.ScreenStart, s.East.ScreenEnd, nil
	case West:
		if !s.East.Defined() {
			return from, to, ErrDirectionsUndefined
		}
		return s.East.ScreenEnd, s.East.ScreenStart, nil
	default:
		return from, to, ErrDirectionsUndefined
	}
}

// DragDistances returns the absolute wrapped game-unit distance covered
// by one East drag and one North drag (reported as South, same segment
// reversed). Fails when both definitions are still incomplete.
func (s *DirectionSet) DragDistances() (east, south float64, err error) {
	east = s.East.gameDistance()
	south = s.North.gameDistance()
	if east == 0 && south == 0 {
		return 0, 0, ErrDirectionsUndefined
	}
	return east, south, nil
}

// GridCells returns how many drag-sized cells cover one full world axis.
// The division must round up: the world spans unit positions 0..999, and
// flooring would silently drop the last partial cell and leave a strip
// of the map unvisited.
func GridCells(dragDistance float64) int {
	if dragDistance <= 0 {
		return 0
	}
	return int(math.Ceil(WorldSize / dragDistance))
}
