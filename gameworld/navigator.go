package gameworld

import (
	"context"
	"math"
	"time"
)

// NavState labels where a navigation attempt ended up.
type NavState int

const (
	NavIdle NavState = iota
	NavDragging
	NavSettling
	NavDone
	NavAborted
	NavFailed
)

func (s NavState) String() string {
	switch s {
	case NavIdle:
		return "Idle"
	case NavDragging:
		return "Dragging"
	case NavSettling:
		return "Settling"
	case NavDone:
		return "Done"
	case NavAborted:
		return "Aborted"
	case NavFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ProgressFunc receives navigation/search progress. Implementations must
// not block; the engine calls it inline between steps.
type ProgressFunc func(event string, pos Position, detail string)

// Navigator moves the view to arbitrary world coordinates by issuing
// calibrated cardinal drags and re-reading the OCR coordinate between
// steps. Movement is approximate by design: drag counts are truncated,
// so a residual below one drag distance remains and is not compensated.
type Navigator struct {
	cal  *Calibrator
	drag DragActuator
	set  *DirectionSet
	opts Options

	state    NavState
	current  Position
	progress ProgressFunc

	sleep func(time.Duration)
}

func NewNavigator(cal *Calibrator, drag DragActuator, set *DirectionSet, opts Options) *Navigator {
	return &Navigator{
		cal:     cal,
		drag:    drag,
		set:     set,
		opts:    opts,
		state:   NavIdle,
		current: InvalidPosition,
		sleep:   time.Sleep,
	}
}

// SetProgress installs an optional progress callback.
func (n *Navigator) SetProgress(fn ProgressFunc) { n.progress = fn }

// State returns the outcome of the last navigation attempt.
func (n *Navigator) State() NavState { return n.state }

// Current returns the last OCR-confirmed position.
func (n *Navigator) Current() Position { return n.current }

func (n *Navigator) notify(event, detail string) {
	if n.progress != nil {
		n.progress(event, n.current, detail)
	}
}

// RefreshPosition re-reads the world position with the usual retry
// budget and caches it.
func (n *Navigator) RefreshPosition(ctx context.Context) bool {
	pos, ok := n.cal.readPositionStable(ctx)
	if !ok {
		return false
	}
	n.current = pos
	return true
}

// PerformDrag issues one cardinal drag. South/West resolve to the
// reversed North/East screen vectors via the direction set.
func (n *Navigator) PerformDrag(ctx context.Context, dir Direction) error {
	from, to, err := n.set.DragVector(dir)
	if err != nil {
		return err
	}
	return n.drag.Drag(ctx, from, to, n.opts.DragDuration)
}

// MoveTo walks the view toward target. It computes the wrapped delta
// once, converts it to truncated per-axis drag counts, then drags,
// settles and re-reads position step by step. Returns false on
// cancellation (Aborted), on a drag error or an OCR blackout (Failed),
// or when the planner has no calibrated directions yet.
func (n *Navigator) MoveTo(ctx context.Context, target Position) bool {
	n.state = NavIdle
	if !target.Valid() {
		gwLog().Error().Str("target", target.String()).Msg("refusing to navigate to invalid target")
		n.state = NavFailed
		return false
	}

	eastDist, southDist, err := n.set.DragDistances()
	if err != nil {
		gwLog().Error().Err(err).Msg("navigation requires calibrated directions")
		n.state = NavFailed
		return false
	}

	if ctx.Err() != nil {
		gwLog().Info().Msg("navigation aborted before start")
		n.state = NavAborted
		return false
	}

	if !n.RefreshPosition(ctx) {
		n.state = NavFailed
		return false
	}

	// Only the axes the move actually needs must be calibrated: a
	// due-east target works with just the east vector.
	dx, dy := WrappedDelta(n.current, target)
	if math.Abs(dx) >= n.opts.MinGameMovement && eastDist == 0 {
		gwLog().Error().Float64("dx", dx).Msg("horizontal movement needs an east calibration")
		n.state = NavFailed
		return false
	}
	if math.Abs(dy) >= n.opts.MinGameMovement && southDist == 0 {
		gwLog().Error().Float64("dy", dy).Msg("vertical movement needs a north calibration")
		n.state = NavFailed
		return false
	}

	var dragsX, dragsY int
	if eastDist > 0 {
		dragsX = int(math.Abs(dx) / eastDist)
	}
	if southDist > 0 {
		dragsY = int(math.Abs(dy) / southDist)
	}

	dirX := East
	if dx < 0 {
		dirX = West
	}
	dirY := South
	if dy < 0 {
		dirY = North
	}

	gwLog().Info().
		Str("from", n.current.String()).
		Str("target", target.String()).
		Float64("dx", dx).Float64("dy", dy).
		Int("dragsX", dragsX).Int("dragsY", dragsY).
		Msg("navigation planned")
	n.notify("navigate.start", target.String())

	type leg struct {
		dir   Direction
		count int
	}
	for _, l := range []leg{{dirX, dragsX}, {dirY, dragsY}} {
		for i := 0; i < l.count; i++ {
			if ctx.Err() != nil {
				gwLog().Info().Msg("navigation aborted by stop request")
				n.state = NavAborted
				n.notify("navigate.aborted", "")
				return false
			}

			n.state = NavDragging
			if err := n.PerformDrag(ctx, l.dir); err != nil {
				gwLog().Error().Err(err).Str("direction", string(l.dir)).Msg("drag failed")
				n.state = NavFailed
				n.notify("navigate.failed", err.Error())
				return false
			}

			n.state = NavSettling
			n.sleep(n.opts.SettleDelay)

			if !n.RefreshPosition(ctx) {
				n.state = NavFailed
				n.notify("navigate.failed", "position readout lost")
				return false
			}
			n.notify("navigate.step", string(l.dir))
		}
	}

	resDX, resDY := WrappedDelta(n.current, target)
	gwLog().Debug().
		Float64("residualX", resDX).
		Float64("residualY", resDY).
		Msg("navigation finished with sub-drag residual")

	n.state = NavDone
	n.notify("navigate.done", n.current.String())
	return true
}
