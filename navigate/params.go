package navigate

import (
	"fmt"
	"image"

	"github.com/bytedance/sonic"

	"github.com/scoutkit/scout/agent/go-service/gameworld"
)

// decodeParam parses a custom action/recognition param. Some hosts pass
// the JSON object directly, others wrap it in a JSON string; both forms
// are accepted.
func decodeParam(raw string, v interface{}) error {
	if raw == "" || raw == "null" {
		return nil
	}
	if err := sonic.UnmarshalString(raw, v); err == nil {
		return nil
	}
	var inner string
	if err := sonic.UnmarshalString(raw, &inner); err != nil {
		return fmt.Errorf("unparseable param %q: %w", raw, err)
	}
	if err := sonic.UnmarshalString(inner, v); err != nil {
		return fmt.Errorf("unparseable wrapped param %q: %w", inner, err)
	}
	return nil
}

type pointParam struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p pointParam) point() image.Point { return image.Pt(p.X, p.Y) }

type twoPointParams struct {
	Start pointParam `json:"start"`
	End   pointParam `json:"end"`
	Runs  int        `json:"runs"`
}

func (p twoPointParams) validate() error {
	if p.Start == p.End {
		return fmt.Errorf("start and end must differ, both are (%d, %d)", p.Start.X, p.Start.Y)
	}
	return nil
}

type vectorParam struct {
	Start pointParam `json:"start"`
	End   pointParam `json:"end"`
}

type directionsParams struct {
	North vectorParam `json:"north"`
	East  vectorParam `json:"east"`
	Runs  int         `json:"runs"`
}

func (p directionsParams) directionSet() (*gameworld.DirectionSet, error) {
	if p.North.Start == p.North.End {
		return nil, fmt.Errorf("north drag vector is degenerate")
	}
	if p.East.Start == p.East.End {
		return nil, fmt.Errorf("east drag vector is degenerate")
	}
	return gameworld.NewDirectionSet(
		p.North.Start.point(), p.North.End.point(),
		p.East.Start.point(), p.East.End.point(),
	), nil
}

type goToParams struct {
	K int     `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p goToParams) position() gameworld.Position {
	return gameworld.Position{K: p.K, X: p.X, Y: p.Y}
}

type searchParams struct {
	Templates   []string `json:"templates"`
	Pattern     string   `json:"pattern"`
	MaxDistance float64  `json:"max_distance"`
}

func (p *searchParams) applyDefaults(pattern string, maxDistance float64) {
	if p.Pattern == "" {
		p.Pattern = pattern
	}
	if p.MaxDistance <= 0 {
		p.MaxDistance = maxDistance
	}
}
