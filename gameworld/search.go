package gameworld

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"time"
)

// Offset is a candidate displacement from the search origin, in game
// units.
type Offset struct {
	DX float64
	DY float64
}

// PatternKind selects a search pattern generator.
type PatternKind string

const (
	PatternSpiral  PatternKind = "spiral"
	PatternGrid    PatternKind = "grid"
	PatternCircles PatternKind = "circles"
)

// Pattern builds the generator for kind. step is the spacing between
// consecutive samples and maxDistance bounds the covered area; both in
// game units.
func Pattern(kind PatternKind, step, maxDistance float64) (iter.Seq[Offset], error) {
	switch kind {
	case PatternSpiral:
		return SpiralPattern(step, maxDistance), nil
	case PatternGrid:
		return GridPattern(step, maxDistance, false), nil
	case PatternCircles:
		return ExpandingCircles(step, maxDistance), nil
	default:
		return nil, fmt.Errorf("unknown search pattern %q", kind)
	}
}

// SpiralPattern walks axis-aligned rings outward from the origin: arm
// pairs of growing length (1,1,2,2,3,3... steps), classic square spiral.
// The sequence is lazy and terminates once the Chebyshev distance
// reaches maxDistance.
func SpiralPattern(step, maxDistance float64) iter.Seq[Offset] {
	return func(yield func(Offset) bool) {
		if step <= 0 || maxDistance <= 0 {
			return
		}
		x, y := 0.0, 0.0
		if !yield(Offset{0, 0}) {
			return
		}
		// Direction cycle East, South, West, North; arm grows every
		// second turn.
		dirs := [4][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
		arm := 1
		for d := 0; ; d++ {
			dir := dirs[d%4]
			for i := 0; i < arm; i++ {
				x += dir[0] * step
				y += dir[1] * step
				if math.Max(math.Abs(x), math.Abs(y)) >= maxDistance {
					return
				}
				if !yield(Offset{x, y}) {
					return
				}
			}
			if d%2 == 1 {
				arm++
			}
		}
	}
}

// GridPattern is a row-major snake over [-maxDistance, maxDistance]²:
// rows alternate left-to-right and right-to-left so the walk between
// rows stays short. With circular set, corners outside the inscribed
// circle are filtered out.
func GridPattern(step, maxDistance float64, circular bool) iter.Seq[Offset] {
	return func(yield func(Offset) bool) {
		if step <= 0 || maxDistance <= 0 {
			return
		}
		half := int(maxDistance / step)
		row := 0
		for iy := -half; iy <= half; iy++ {
			y := float64(iy) * step
			for ix := -half; ix <= half; ix++ {
				jx := ix
				if row%2 == 1 {
					jx = -ix
				}
				x := float64(jx) * step
				if circular && math.Hypot(x, y) > maxDistance {
					continue
				}
				if !yield(Offset{x, y}) {
					return
				}
			}
			row++
		}
	}
}

// ExpandingCircles samples concentric rings of growing radius. Each ring
// carries a point count proportional to its circumference so arc length
// between neighbours stays near step.
func ExpandingCircles(step, maxDistance float64) iter.Seq[Offset] {
	return func(yield func(Offset) bool) {
		if step <= 0 || maxDistance <= 0 {
			return
		}
		if !yield(Offset{0, 0}) {
			return
		}
		for r := step; r <= maxDistance; r += step {
			count := int(math.Ceil(2 * math.Pi * r / step))
			if count < 8 {
				count = 8
			}
			for i := 0; i < count; i++ {
				a := 2 * math.Pi * float64(i) / float64(count)
				if !yield(Offset{r * math.Cos(a), r * math.Sin(a)}) {
					return
				}
			}
		}
	}
}

// SearchResult describes the first template hit of a search run.
type SearchResult struct {
	Template   string
	ScreenX    int
	ScreenY    int
	Game       Position
	Confidence float64
	Snapshot   string
	Elapsed    time.Duration
	Visited    int
}

// ErrNoMatch is returned when the pattern was exhausted without a hit.
var ErrNoMatch = errors.New("search exhausted without a match")

// Searcher visits candidate positions produced by a pattern generator
// and asks the template matcher about each one. First match wins.
type Searcher struct {
	nav     *Navigator
	coord   *Coordinator
	screen  Screen
	matcher Matcher
	opts    Options

	// SnapshotDir, when set, receives a downscaled capture of the hit.
	SnapshotDir string

	progress ProgressFunc
}

func NewSearcher(nav *Navigator, coord *Coordinator, screen Screen, matcher Matcher, opts Options) *Searcher {
	return &Searcher{nav: nav, coord: coord, screen: screen, matcher: matcher, opts: opts}
}

func (s *Searcher) SetProgress(fn ProgressFunc) { s.progress = fn }

func (s *Searcher) notify(event string, pos Position, detail string) {
	if s.progress != nil {
		s.progress(event, pos, detail)
	}
}

// StepSize derives the pattern spacing from the view footprint: the
// smaller view dimension shrunk by the overlap fraction, so consecutive
// samples overlap and nothing slips between captures.
func (s *Searcher) StepSize() (float64, error) {
	w, h, err := s.coord.ViewFootprint()
	if err != nil {
		return 0, err
	}
	step := math.Min(w, h) * (1 - s.opts.OverlapFraction)
	if step <= 0 {
		return 0, fmt.Errorf("degenerate view footprint %gx%g", w, h)
	}
	return step, nil
}

// SearchTemplates walks the pattern around origin and returns the first
// match. A candidate the navigator cannot reach is logged and skipped;
// the search as a whole fails only on exhaustion (ErrNoMatch) or
// cancellation (ctx.Err()).
func (s *Searcher) SearchTemplates(ctx context.Context, origin Position, templates []string, pattern iter.Seq[Offset]) (*SearchResult, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("search origin %s is not a valid position", origin)
	}
	start := time.Now()
	visited := 0

	for off := range pattern {
		if err := ctx.Err(); err != nil {
			gwLog().Info().Int("visited", visited).Msg("search stopped by request")
			return nil, err
		}

		target := origin.Translate(off.DX, off.DY)
		visited++

		// Skipping the physical move when the candidate is already in
		// view is required: most neighbouring offsets share a screen.
		if !s.coord.IsOnScreen(s.nav.Current(), target, s.opts.ScreenMargin) {
			if !s.nav.MoveTo(ctx, target) {
				if s.nav.State() == NavAborted {
					return nil, context.Canceled
				}
				gwLog().Warn().
					Str("target", target.String()).
					Msg("could not reach candidate, skipping")
				s.notify("search.skip", target, "unreachable")
				continue
			}
		}

		img, err := s.screen.Capture(ctx)
		if err != nil {
			gwLog().Warn().Err(err).Msg("capture failed, skipping candidate")
			s.notify("search.skip", target, "capture failed")
			continue
		}

		matches, err := s.matcher.FindMatches(ctx, templates, img)
		if err != nil {
			gwLog().Warn().Err(err).Msg("template match failed, skipping candidate")
			s.notify("search.skip", target, "match failed")
			continue
		}
		s.notify("search.visit", target, fmt.Sprintf("matches=%d", len(matches)))

		if len(matches) == 0 {
			continue
		}

		m := matches[0]
		res := &SearchResult{
			Template:   m.Template,
			ScreenX:    m.Center.X,
			ScreenY:    m.Center.Y,
			Game:       s.resolveGamePosition(m.Center.X, m.Center.Y),
			Confidence: m.Confidence,
			Elapsed:    time.Since(start),
			Visited:    visited,
		}
		if s.SnapshotDir != "" {
			if path, err := SaveSnapshot(s.SnapshotDir, m.Template, img); err == nil {
				res.Snapshot = path
			} else {
				gwLog().Warn().Err(err).Msg("snapshot save failed")
			}
		}
		gwLog().Info().
			Str("template", m.Template).
			Str("game", res.Game.String()).
			Float64("confidence", m.Confidence).
			Int("visited", visited).
			Msg("search hit")
		s.notify("search.hit", res.Game, m.Template)
		return res, nil
	}

	gwLog().Info().Int("visited", visited).Dur("elapsed", time.Since(start)).Msg("search exhausted")
	return nil, ErrNoMatch
}

// resolveGamePosition maps a screen point back to world units using the
// current position as the view-center anchor. Best effort: without
// calibration it falls back to the anchor itself.
func (s *Searcher) resolveGamePosition(screenX, screenY int) Position {
	cur := s.nav.Current()
	bounds, err := s.screen.Bounds()
	if err != nil || !cur.Valid() {
		return cur
	}
	px := float64(screenX - (bounds.Min.X + bounds.Dx()/2))
	py := float64(screenY - (bounds.Min.Y + bounds.Dy()/2))
	dx, dy, err := s.coord.PixelDeltaToWorld(px, py)
	if err != nil {
		return cur
	}
	pos := cur.Translate(dx, dy)
	pos.ScreenX = screenX
	pos.ScreenY = screenY
	return pos
}
