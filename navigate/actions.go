package navigate

import (
	"fmt"
	"time"

	"github.com/MaaXYZ/maa-framework-go/v4"

	"github.com/scoutkit/scout/agent/go-service/gameworld"
	"github.com/scoutkit/scout/agent/go-service/history"
)

// showMessage displays text in the host GUI via a lightweight focus-only
// pipeline node.
func showMessage(mctx *maa.Context, text string) {
	if stopping(mctx) {
		return
	}
	const nodeName = "_SCOUT_FOCUS_"
	pp := maa.NewPipeline()
	pp.AddNode(maa.NewNode(nodeName).
		SetFocus(map[string]any{
			maa.EventNodeAction.Starting(): text,
		}).
		SetPreDelay(0).
		SetPostDelay(0))
	if _, err := mctx.RunTask(nodeName, pp); err != nil {
		navLog().Warn().Err(err).Msg("failed to show message")
	}
}

// ScoutCalibrateTwoPointAction measures pixels-per-game-unit by
// repeating the drag given in its params and averaging the observed
// world displacement.
type ScoutCalibrateTwoPointAction struct{}

func (a *ScoutCalibrateTwoPointAction) Run(mctx *maa.Context, arg *maa.CustomActionArg) bool {
	if stopping(mctx) {
		return true
	}

	var params twoPointParams
	if err := decodeParam(arg.CustomActionParam, &params); err != nil {
		navLog().Error().Err(err).Msg("bad two-point calibration params")
		return false
	}
	if err := params.validate(); err != nil {
		navLog().Error().Err(err).Msg("bad two-point calibration params")
		return false
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	ctx, cancel := stoppingContext(mctx)
	defer cancel()

	opts := current.opts
	if params.Runs > 0 {
		opts.CalibrationRuns = params.Runs
	}
	eng := current.newEngineWith(mctx, opts)
	ratios, ok := eng.cal.CalibrateTwoPoint(ctx, params.Start.point(), params.End.point())
	if !ok {
		showMessage(mctx, "两点标定失败，请保持游戏窗口前台并重试")
		return false
	}

	// Two-point calibration may cover only one axis; keep the other
	// axis's previous value.
	if ratios.X > 0 {
		current.state.Ratios.X = ratios.X
	}
	if ratios.Y > 0 {
		current.state.Ratios.Y = ratios.Y
	}
	current.saveCalibration()
	showMessage(mctx, fmt.Sprintf("标定完成: %.2f px/unit (X), %.2f px/unit (Y)",
		current.state.Ratios.X, current.state.Ratios.Y))
	return true
}

// ScoutCalibrateDirectionsAction calibrates the North and East drag
// vectors with round-trip runs and persists both the ratios and the
// observed direction endpoints.
type ScoutCalibrateDirectionsAction struct{}

func (a *ScoutCalibrateDirectionsAction) Run(mctx *maa.Context, arg *maa.CustomActionArg) bool {
	if stopping(mctx) {
		return true
	}

	var params directionsParams
	if err := decodeParam(arg.CustomActionParam, &params); err != nil {
		navLog().Error().Err(err).Msg("bad direction calibration params")
		return false
	}
	set, err := params.directionSet()
	if err != nil {
		navLog().Error().Err(err).Msg("bad direction calibration params")
		return false
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	ctx, cancel := stoppingContext(mctx)
	defer cancel()

	opts := current.opts
	if params.Runs > 0 {
		opts.CalibrationRuns = params.Runs
	}
	eng := current.newEngineWith(mctx, opts)
	ratios, ok := eng.cal.CalibrateDirections(ctx, set)
	if !ok {
		showMessage(mctx, "方向标定失败，测量结果不稳定，已保留旧标定")
		return false
	}

	current.state.Ratios = ratios
	current.state.Directions = *set
	current.saveCalibration()
	showMessage(mctx, fmt.Sprintf("方向标定完成: %.2f px/unit (X), %.2f px/unit (Y)", ratios.X, ratios.Y))
	return true
}

// ScoutGoToAction navigates the view to the world coordinate in its
// params.
type ScoutGoToAction struct{}

func (a *ScoutGoToAction) Run(mctx *maa.Context, arg *maa.CustomActionArg) bool {
	if stopping(mctx) {
		return true
	}

	var params goToParams
	if err := decodeParam(arg.CustomActionParam, &params); err != nil {
		navLog().Error().Err(err).Msg("bad goto params")
		return false
	}
	target := params.position()

	current.mu.Lock()
	defer current.mu.Unlock()

	ctx, cancel := stoppingContext(mctx)
	defer cancel()

	eng := current.newEngine(mctx)
	if !eng.nav.MoveTo(ctx, target) {
		navLog().Warn().
			Str("target", target.String()).
			Str("state", eng.nav.State().String()).
			Msg("navigation did not complete")
		// A stop request is a normal outcome, not a task failure.
		return eng.nav.State() == gameworld.NavAborted
	}
	navLog().Info().Str("at", eng.nav.Current().String()).Msg("navigation complete")
	return true
}

// ScoutSearchAreaAction walks a search pattern around the current
// position looking for the given templates and records the outcome.
type ScoutSearchAreaAction struct{}

func (a *ScoutSearchAreaAction) Run(mctx *maa.Context, arg *maa.CustomActionArg) bool {
	if stopping(mctx) {
		return true
	}

	var params searchParams
	if err := decodeParam(arg.CustomActionParam, &params); err != nil {
		navLog().Error().Err(err).Msg("bad search params")
		return false
	}
	if len(params.Templates) == 0 {
		navLog().Error().Msg("search needs at least one template")
		return false
	}

	current.mu.Lock()
	defer current.mu.Unlock()
	params.applyDefaults(current.cfg.Search.Pattern, current.cfg.Search.MaxDistance)

	ctx, cancel := stoppingContext(mctx)
	defer cancel()

	eng := current.newEngine(mctx)
	if !eng.nav.RefreshPosition(ctx) {
		navLog().Error().Msg("cannot read the starting position")
		return false
	}
	origin := eng.nav.Current()

	step, err := eng.search.StepSize()
	if err != nil {
		navLog().Error().Err(err).Msg("search requires calibration")
		showMessage(mctx, "搜索需要先完成标定")
		return false
	}

	pattern, err := gameworld.Pattern(gameworld.PatternKind(params.Pattern), step, params.MaxDistance)
	if err != nil {
		navLog().Error().Err(err).Msg("bad search pattern")
		return false
	}

	start := time.Now()
	res, err := eng.search.SearchTemplates(ctx, origin, params.Templates, pattern)
	switch {
	case err == nil:
		showMessage(mctx, fmt.Sprintf("找到 %s: K:%d X:%.0f Y:%.0f", res.Template, res.Game.K, res.Game.X, res.Game.Y))
		a.record(res, params, true, time.Since(start))
		return true
	case err == gameworld.ErrNoMatch:
		showMessage(mctx, "搜索完成，未找到目标")
		a.record(nil, params, false, time.Since(start))
		return true
	case ctx.Err() != nil:
		navLog().Info().Msg("search stopped by request")
		return true
	default:
		navLog().Error().Err(err).Msg("search failed")
		return false
	}
}

// ScoutSnapshotAction captures the game window and writes a downscaled
// snapshot into the configured snapshot directory. Handy for debugging
// OCR regions and template quality from the GUI.
type ScoutSnapshotAction struct{}

func (a *ScoutSnapshotAction) Run(mctx *maa.Context, arg *maa.CustomActionArg) bool {
	if stopping(mctx) {
		return true
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	ctx, cancel := stoppingContext(mctx)
	defer cancel()

	screen := &maaScreen{mctx: mctx}
	img, err := screen.Capture(ctx)
	if err != nil {
		navLog().Error().Err(err).Msg("snapshot capture failed")
		return false
	}
	path, err := gameworld.SaveSnapshot(current.cfg.Search.SnapshotDir, "manual", img)
	if err != nil {
		navLog().Error().Err(err).Msg("snapshot save failed")
		return false
	}
	navLog().Info().Str("path", path).Msg("snapshot saved")
	return true
}

func (a *ScoutSearchAreaAction) record(res *gameworld.SearchResult, params searchParams, found bool, elapsed time.Duration) {
	if current.hist == nil {
		return
	}
	rec := &history.Record{
		Template:   params.Templates[0],
		Found:      found,
		DurationMs: elapsed.Milliseconds(),
	}
	if res != nil {
		rec.Template = res.Template
		rec.Kingdom = res.Game.K
		rec.GameX = res.Game.X
		rec.GameY = res.Game.Y
		rec.ScreenX = res.ScreenX
		rec.ScreenY = res.ScreenY
		rec.Confidence = res.Confidence
		rec.Snapshot = res.Snapshot
		rec.Visited = res.Visited
	}
	if err := current.hist.Append(rec); err != nil {
		navLog().Warn().Err(err).Msg("failed to record search outcome")
	}
}
