package navigate

import (
	"sync"

	"github.com/MaaXYZ/maa-framework-go/v4"

	"github.com/scoutkit/scout/agent/go-service/config"
	"github.com/scoutkit/scout/agent/go-service/gameworld"
	"github.com/scoutkit/scout/agent/go-service/history"
	"github.com/scoutkit/scout/agent/go-service/progress"
)

// session holds everything that outlives a single action run: the
// loaded configuration, the persisted calibration state and the
// optional history store and progress hub.
type session struct {
	mu    sync.Mutex
	cfg   *config.Config
	opts  gameworld.Options
	state *gameworld.State
	hist  *history.Store
	hub   *progress.Hub
}

var current session

// Init wires the long-lived dependencies and loads persisted
// calibration. Must run before the agent server starts; hist and hub
// may be nil when those features are disabled.
func Init(cfg *config.Config, hist *history.Store, hub *progress.Hub) error {
	st, err := gameworld.LoadState(cfg.Calibration.FilePath)
	if err != nil {
		return err
	}

	current.mu.Lock()
	defer current.mu.Unlock()
	current.cfg = cfg
	current.opts = optionsFromConfig(cfg)
	current.state = st
	current.hist = hist
	current.hub = hub

	if st.Ratios.Calibrated() {
		navLog().Info().
			Float64("ppuX", st.Ratios.X).
			Float64("ppuY", st.Ratios.Y).
			Msg("calibration loaded")
	} else {
		navLog().Info().Msg("no calibration on disk, starting uncalibrated")
	}
	return nil
}

func optionsFromConfig(cfg *config.Config) gameworld.Options {
	opts := gameworld.DefaultOptions()
	opts.OCRRetries = cfg.OCR.Retries
	opts.OCRRetryDelay = cfg.OCR.RetryDelay()
	opts.OCRSoftLimit = cfg.OCR.SoftLimit()
	opts.DragDuration = cfg.Drag.Duration()
	opts.SettleDelay = cfg.Drag.SettleDelay()
	opts.CalibrationRuns = cfg.Calibration.Runs
	opts.SoftTolerance = cfg.Calibration.SoftTolerance
	opts.ConsistencyGate = cfg.Calibration.ConsistencyGate
	opts.OverlapFraction = cfg.Search.OverlapFraction
	opts.ScreenMargin = cfg.Search.ScreenMargin
	return opts
}

// engine bundles the per-run gameworld components bound to one maa
// context.
type engine struct {
	cal    *gameworld.Calibrator
	nav    *gameworld.Navigator
	coord  *gameworld.Coordinator
	search *gameworld.Searcher
	screen *maaScreen
}

// newEngine builds the engine for one action run. The session mutex
// serializes runs: the engine mutates shared calibration state and the
// game window is a single exclusive resource anyway.
func (s *session) newEngine(mctx *maa.Context) *engine {
	return s.newEngineWith(mctx, s.opts)
}

// newEngineWith builds the engine with per-run option overrides applied.
func (s *session) newEngineWith(mctx *maa.Context, opts gameworld.Options) *engine {
	reader := &maaReader{mctx: mctx, roi: s.cfg.OCR.Region}
	drag := &maaDrag{mctx: mctx}
	screen := &maaScreen{mctx: mctx}
	matcher := &maaMatcher{mctx: mctx}

	cal := gameworld.NewCalibrator(reader, drag, opts)
	nav := gameworld.NewNavigator(cal, drag, &s.state.Directions, opts)
	coord := gameworld.NewCoordinator(s.state.Ratios, screen)
	search := gameworld.NewSearcher(nav, coord, screen, matcher, opts)
	search.SnapshotDir = s.cfg.Search.SnapshotDir

	if s.hub != nil {
		nav.SetProgress(s.progressFunc("ScoutGoTo"))
		search.SetProgress(s.progressFunc("ScoutSearchArea"))
	}
	return &engine{cal: cal, nav: nav, coord: coord, search: search, screen: screen}
}

func (s *session) progressFunc(task string) gameworld.ProgressFunc {
	hub := s.hub
	return func(event string, pos gameworld.Position, detail string) {
		hub.Publish(progress.Event{
			Task:    task,
			Event:   event,
			Detail:  detail,
			Kingdom: pos.K,
			X:       pos.X,
			Y:       pos.Y,
		})
	}
}

// ocrRegion returns the configured coordinate readout ROI, zero before
// Init has run.
func (s *session) ocrRegion() [4]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return [4]int{}
	}
	return s.cfg.OCR.Region
}

// saveCalibration persists the in-memory state. Callers hold the
// session mutex.
func (s *session) saveCalibration() {
	if err := gameworld.SaveState(s.cfg.Calibration.FilePath, s.state); err != nil {
		navLog().Error().Err(err).Msg("failed to persist calibration")
		return
	}
	navLog().Info().Str("path", s.cfg.Calibration.FilePath).Msg("calibration persisted")
}
