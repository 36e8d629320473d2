package gameworld

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// WorldSize is the extent of each world axis. Coordinates live in
// [0, WorldSize) and wrap: position 999 and position 0 are neighbours.
const WorldSize = 1000.0

// halfWorld is the tipping point of the wrapped-delta tie-break.
const halfWorld = WorldSize / 2

// Position is a point in the wrapping game world: kingdom index K plus
// X/Y in [0, 999]. ScreenX/ScreenY record where the coordinate readout
// was observed on screen at read time (0,0 when unknown).
//
// Position is a value type. Updates rebuild a new value instead of
// mutating in place, so holders of an old Position never see a
// half-applied change.
type Position struct {
	K int
	X float64
	Y float64

	ScreenX int
	ScreenY int
}

// InvalidPosition is the zero-information position: no kingdom, no axes.
var InvalidPosition = Position{K: -1, X: -1, Y: -1}

// Valid reports whether all three coordinates were actually observed and
// fall inside the world.
func (p Position) Valid() bool {
	return p.K >= 0 &&
		p.X >= 0 && p.X < WorldSize &&
		p.Y >= 0 && p.Y < WorldSize
}

// Translate returns a new Position moved by (dx, dy) game units, wrapped
// back into [0, WorldSize). K and the screen anchor carry over.
func (p Position) Translate(dx, dy float64) Position {
	return Position{
		K:       p.K,
		X:       WrapCoord(p.X + dx),
		Y:       WrapCoord(p.Y + dy),
		ScreenX: p.ScreenX,
		ScreenY: p.ScreenY,
	}
}

func (p Position) String() string {
	return fmt.Sprintf("K:%d X:%.0f Y:%.0f", p.K, p.X, p.Y)
}

// WrapCoord folds v into [0, WorldSize).
func WrapCoord(v float64) float64 {
	v = math.Mod(v, WorldSize)
	if v < 0 {
		v += WorldSize
	}
	return v
}

// wrappedAxisDelta returns the shortest signed displacement from a to b
// on one wrapping axis. The magnitude never exceeds halfWorld.
//
// A delta of exactly halfWorld is ambiguous (both ways are equally far);
// it deterministically takes the negative branch, i.e. is treated as a
// wrap. Persisted calibration data depends on this tie-break, so it must
// not be changed.
func wrappedAxisDelta(a, b float64) float64 {
	raw := WrapCoord(b - a)
	if raw >= halfWorld {
		raw -= WorldSize
	}
	return raw
}

// WrappedDelta returns the shortest signed displacement from a to b per
// axis. For every pair of valid positions |dx| <= 500, |dy| <= 500 and
// a.Translate(dx, dy) lands on b.
func WrappedDelta(a, b Position) (dx, dy float64) {
	return wrappedAxisDelta(a.X, b.X), wrappedAxisDelta(a.Y, b.Y)
}

// Coordinate readouts arrive as loosely formatted OCR text such as
// "K:32 X:512 Y:768", with arbitrary garbage, misread separators or
// missing fields. Each field is salvaged independently.
var (
	kFieldRe = regexp.MustCompile(`(?i)[K�][:：.\s]*([0-9]{1,4})`)
	xFieldRe = regexp.MustCompile(`(?i)[X×][:：.\s]*([0-9]{1,3})`)
	yFieldRe = regexp.MustCompile(`(?i)[Y¥][:：.\s]*([0-9]{1,3})`)
)

// ParsePositionText extracts a Position from raw OCR text. Fields that
// cannot be recovered stay at their invalid sentinel, so the result is
// Valid only when kingdom and both axes were all readable. The boolean
// reports whether at least one field was recovered.
func ParsePositionText(text string) (Position, bool) {
	pos := InvalidPosition
	any := false

	if m := kFieldRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			pos.K = v
			any = true
		}
	}
	if m := xFieldRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v < WorldSize {
			pos.X = v
			any = true
		}
	}
	if m := yFieldRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v < WorldSize {
			pos.Y = v
			any = true
		}
	}
	return pos, any
}
