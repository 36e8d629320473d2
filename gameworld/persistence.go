package gameworld

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Ratios are the calibration output: screen pixels per game unit along
// each axis.
type Ratios struct {
	X float64
	Y float64
}

// DefaultRatios is the uncalibrated sentinel. It is not a measurement;
// consumers must treat it as "not yet calibrated" and refuse to navigate
// on it.
var DefaultRatios = Ratios{X: 10.0, Y: 10.0}

// Calibrated reports whether the ratios come from an actual measurement.
func (r Ratios) Calibrated() bool {
	return r != DefaultRatios && r.X > 0 && r.Y > 0
}

// State is everything worth keeping between sessions: the ratios and the
// two stored direction definitions with their last observed endpoints.
type State struct {
	Ratios     Ratios
	Directions DirectionSet
}

// NewState returns the uncalibrated startup state.
func NewState() *State {
	return &State{Ratios: DefaultRatios}
}

// On-disk layout. Field names are fixed: existing calibration files must
// keep loading byte-for-byte across versions.

type pointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type positionJSON struct {
	K int     `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type directionJSON struct {
	ScreenStart pointJSON     `json:"screen_start"`
	ScreenEnd   pointJSON     `json:"screen_end"`
	GameStart   *positionJSON `json:"game_start"`
	GameEnd     *positionJSON `json:"game_end"`
}

type stateJSON struct {
	PixelsPerGameUnitX float64        `json:"pixels_per_game_unit_x"`
	PixelsPerGameUnitY float64        `json:"pixels_per_game_unit_y"`
	North              *directionJSON `json:"north"`
	East               *directionJSON `json:"east"`
}

func encodeDirection(d DirectionDefinition) *directionJSON {
	if !d.Defined() {
		return nil
	}
	out := &directionJSON{
		ScreenStart: pointJSON{X: d.ScreenStart.X, Y: d.ScreenStart.Y},
		ScreenEnd:   pointJSON{X: d.ScreenEnd.X, Y: d.ScreenEnd.Y},
	}
	if d.GameStart != nil {
		out.GameStart = &positionJSON{K: d.GameStart.K, X: d.GameStart.X, Y: d.GameStart.Y}
	}
	if d.GameEnd != nil {
		out.GameEnd = &positionJSON{K: d.GameEnd.K, X: d.GameEnd.X, Y: d.GameEnd.Y}
	}
	return out
}

func decodeDirection(name Direction, in *directionJSON) DirectionDefinition {
	d := DirectionDefinition{Name: name}
	if in == nil {
		return d
	}
	d.ScreenStart = image.Pt(in.ScreenStart.X, in.ScreenStart.Y)
	d.ScreenEnd = image.Pt(in.ScreenEnd.X, in.ScreenEnd.Y)
	if in.GameStart != nil {
		p := Position{K: in.GameStart.K, X: in.GameStart.X, Y: in.GameStart.Y}
		d.GameStart = &p
	}
	if in.GameEnd != nil {
		p := Position{K: in.GameEnd.K, X: in.GameEnd.X, Y: in.GameEnd.Y}
		d.GameEnd = &p
	}
	return d
}

// LoadState reads calibration state from path. A missing file is not an
// error: it simply means "uncalibrated" and yields the default state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			gwLog().Info().Str("path", path).Msg("no calibration file, starting uncalibrated")
			return NewState(), nil
		}
		return nil, fmt.Errorf("read calibration file: %w", err)
	}

	var raw stateJSON
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calibration file: %w", err)
	}

	st := &State{
		Ratios: Ratios{X: raw.PixelsPerGameUnitX, Y: raw.PixelsPerGameUnitY},
		Directions: DirectionSet{
			North: decodeDirection(North, raw.North),
			East:  decodeDirection(East, raw.East),
		},
	}
	if st.Ratios.X == 0 && st.Ratios.Y == 0 {
		st.Ratios = DefaultRatios
	}
	gwLog().Info().
		Float64("ppuX", st.Ratios.X).
		Float64("ppuY", st.Ratios.Y).
		Bool("calibrated", st.Ratios.Calibrated()).
		Msg("calibration state loaded")
	return st, nil
}

// SaveState writes the state atomically: marshal, write a temp file in
// the same directory, rename over the target. A failed save leaves any
// previous good file in place.
func SaveState(path string, st *State) error {
	raw := stateJSON{
		PixelsPerGameUnitX: st.Ratios.X,
		PixelsPerGameUnitY: st.Ratios.Y,
		North:              encodeDirection(st.Directions.North),
		East:               encodeDirection(st.Directions.East),
	}

	data, err := sonic.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode calibration state: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create calibration dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write calibration file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace calibration file: %w", err)
	}
	gwLog().Info().Str("path", path).Msg("calibration state saved")
	return nil
}
