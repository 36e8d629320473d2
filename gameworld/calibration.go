package gameworld

import (
	"context"
	"image"
	"math"
	"time"
)

// Calibrator measures pixels-per-game-unit ratios by performing real
// drags and reading the OCR coordinate feedback. All entry points return
// a boolean outcome: calibration failure is routine (window unfocused,
// OCR noise) and must never take the host down or overwrite a previous
// good calibration.
type Calibrator struct {
	ocr  PositionReader
	drag DragActuator
	opts Options

	// clock is swappable in tests so retry sleeps cost nothing.
	sleep func(time.Duration)
}

func NewCalibrator(ocr PositionReader, drag DragActuator, opts Options) *Calibrator {
	return &Calibrator{ocr: ocr, drag: drag, opts: opts, sleep: time.Sleep}
}

// readPositionOnce performs a single OCR cycle. The soft time limit is
// checked only after the blocking call returns: the underlying OCR call
// has no interruption point, so an overrun can be reported but not
// aborted. This warn-after-the-fact behavior is deliberate.
func (c *Calibrator) readPositionOnce(ctx context.Context) (Position, error) {
	start := time.Now()
	pos, err := c.ocr.ReadPosition(ctx)
	if elapsed := time.Since(start); c.opts.OCRSoftLimit > 0 && elapsed > c.opts.OCRSoftLimit {
		gwLog().Warn().
			Dur("elapsed", elapsed).
			Dur("limit", c.opts.OCRSoftLimit).
			Msg("OCR cycle exceeded soft time limit")
	}
	return pos, err
}

// readPositionStable retries OCR until a valid position comes back or
// the attempt budget is spent.
func (c *Calibrator) readPositionStable(ctx context.Context) (Position, bool) {
	for attempt := 0; attempt < c.opts.OCRRetries; attempt++ {
		if ctx.Err() != nil {
			return InvalidPosition, false
		}
		pos, err := c.readPositionOnce(ctx)
		if err == nil && pos.Valid() {
			return pos, true
		}
		if err != nil {
			gwLog().Debug().Err(err).Int("attempt", attempt).Msg("OCR read failed")
		}
		c.sleep(c.opts.OCRRetryDelay)
	}
	gwLog().Error().Int("attempts", c.opts.OCRRetries).Msg("OCR never stabilized")
	return InvalidPosition, false
}

// CalibrateTwoPoint derives ratios from repeated drags between two user
// supplied screen points. Each trial reads the position, drags, reads
// again and keeps |screenDist| / |wrappedGameDist| per axis; trials where
// the world barely moved on an axis contribute nothing to that axis.
//
// Returns false when any axis with actual screen displacement ends up
// with zero surviving samples.
func (c *Calibrator) CalibrateTwoPoint(ctx context.Context, start, end image.Point) (Ratios, bool) {
	screenDX := math.Abs(float64(end.X - start.X))
	screenDY := math.Abs(float64(end.Y - start.Y))
	if screenDX == 0 && screenDY == 0 {
		gwLog().Error().Msg("two-point calibration needs a nonzero drag vector")
		return Ratios{}, false
	}

	var samplesX, samplesY []float64

	for trial := 0; trial < c.opts.CalibrationRuns; trial++ {
		if ctx.Err() != nil {
			gwLog().Info().Msg("two-point calibration cancelled")
			return Ratios{}, false
		}

		before, ok := c.readPositionStable(ctx)
		if !ok {
			return Ratios{}, false
		}
		if err := c.drag.Drag(ctx, start, end, c.opts.DragDuration); err != nil {
			gwLog().Error().Err(err).Int("trial", trial).Msg("calibration drag failed")
			return Ratios{}, false
		}
		c.sleep(c.opts.SettleDelay)
		after, ok := c.readPositionStable(ctx)
		if !ok {
			return Ratios{}, false
		}

		gameDX, gameDY := WrappedDelta(before, after)
		gwLog().Debug().
			Int("trial", trial).
			Float64("gameDX", gameDX).
			Float64("gameDY", gameDY).
			Msg("two-point trial measured")

		if screenDX > 0 && math.Abs(gameDX) >= c.opts.MinGameMovement {
			samplesX = append(samplesX, screenDX/math.Abs(gameDX))
		}
		if screenDY > 0 && math.Abs(gameDY) >= c.opts.MinGameMovement {
			samplesY = append(samplesY, screenDY/math.Abs(gameDY))
		}
	}

	ratios := Ratios{}
	if screenDX > 0 {
		if len(samplesX) == 0 {
			gwLog().Error().Msg("two-point calibration: no valid X measurements")
			return Ratios{}, false
		}
		ratios.X = mean(samplesX)
	}
	if screenDY > 0 {
		if len(samplesY) == 0 {
			gwLog().Error().Msg("two-point calibration: no valid Y measurements")
			return Ratios{}, false
		}
		ratios.Y = mean(samplesY)
	}
	gwLog().Info().
		Float64("ppuX", ratios.X).
		Float64("ppuY", ratios.Y).
		Int("samplesX", len(samplesX)).
		Int("samplesY", len(samplesY)).
		Msg("two-point calibration complete")
	return ratios, true
}

// CalibrateDirections derives ratios from the North and East direction
// vectors. Each run drags out, reads, drags back (round trip, so the map
// stays put) and yields one sample per axis. A run that deviates more
// than the soft tolerance from the running average logs a warning but is
// kept; the final accept/reject decision is the std/mean consistency
// gate over all runs, which is stricter on purpose.
//
// On success the set's game endpoints are updated from the last run.
func (c *Calibrator) CalibrateDirections(ctx context.Context, set *DirectionSet) (Ratios, bool) {
	if !set.North.Defined() || !set.East.Defined() {
		gwLog().Error().Msg("direction calibration requires both North and East vectors")
		return Ratios{}, false
	}

	eastSamples, ok := c.sampleDirection(ctx, &set.East)
	if !ok {
		return Ratios{}, false
	}
	northSamples, ok := c.sampleDirection(ctx, &set.North)
	if !ok {
		return Ratios{}, false
	}

	meanX, stdX := meanStd(eastSamples)
	meanY, stdY := meanStd(northSamples)

	if !consistent(eastSamples, c.opts.ConsistencyGate) || !consistent(northSamples, c.opts.ConsistencyGate) {
		gwLog().Error().
			Float64("meanX", meanX).Float64("stdX", stdX).
			Float64("meanY", meanY).Float64("stdY", stdY).
			Msg("inconsistent measurements detected, calibration rejected")
		return Ratios{}, false
	}

	gwLog().Info().
		Float64("ppuX", meanX).
		Float64("ppuY", meanY).
		Int("runs", len(eastSamples)).
		Msg("direction calibration complete")
	return Ratios{X: meanX, Y: meanY}, true
}

// sampleDirection runs the round-trip measurement loop for one direction
// and returns the per-run ratio samples along its axis.
func (c *Calibrator) sampleDirection(ctx context.Context, def *DirectionDefinition) ([]float64, bool) {
	from, to := def.ScreenStart, def.ScreenEnd
	screenDist := axisScreenDistance(def.Name, from, to)
	if screenDist == 0 {
		gwLog().Error().Str("direction", string(def.Name)).Msg("degenerate drag vector")
		return nil, false
	}

	var samples []float64
	for run := 0; run < c.opts.CalibrationRuns; run++ {
		if ctx.Err() != nil {
			gwLog().Info().Str("direction", string(def.Name)).Msg("direction calibration cancelled")
			return nil, false
		}

		before, ok := c.readPositionStable(ctx)
		if !ok {
			return nil, false
		}
		if err := c.drag.Drag(ctx, from, to, c.opts.DragDuration); err != nil {
			gwLog().Error().Err(err).Str("direction", string(def.Name)).Msg("calibration drag failed")
			return nil, false
		}
		c.sleep(c.opts.SettleDelay)
		after, ok := c.readPositionStable(ctx)
		if !ok {
			return nil, false
		}

		// Return drag so every run starts from the same spot.
		if err := c.drag.Drag(ctx, to, from, c.opts.DragDuration); err != nil {
			gwLog().Error().Err(err).Str("direction", string(def.Name)).Msg("return drag failed")
			return nil, false
		}
		c.sleep(c.opts.SettleDelay)

		gameDist := axisGameDistance(def.Name, before, after)
		if gameDist < c.opts.MinGameMovement {
			gwLog().Warn().
				Str("direction", string(def.Name)).
				Int("run", run).
				Float64("gameDist", gameDist).
				Msg("no world movement observed, discarding run")
			continue
		}

		sample := screenDist / gameDist
		if len(samples) > 0 {
			avg := mean(samples)
			if dev := math.Abs(sample-avg) / avg; dev > c.opts.SoftTolerance {
				gwLog().Warn().
					Str("direction", string(def.Name)).
					Int("run", run).
					Float64("sample", sample).
					Float64("runningAvg", avg).
					Float64("deviation", dev).
					Msg("sample deviates from running average")
			}
		}
		samples = append(samples, sample)

		// Remember the last observed endpoints for persistence.
		b, a := before, after
		def.GameStart = &b
		def.GameEnd = &a
	}

	if len(samples) == 0 {
		gwLog().Error().Str("direction", string(def.Name)).Msg("no valid measurements survived")
		return nil, false
	}
	return samples, true
}

func axisScreenDistance(dir Direction, from, to image.Point) float64 {
	if dir == East || dir == West {
		return math.Abs(float64(to.X - from.X))
	}
	return math.Abs(float64(to.Y - from.Y))
}

func axisGameDistance(dir Direction, before, after Position) float64 {
	dx, dy := WrappedDelta(before, after)
	if dir == East || dir == West {
		return math.Abs(dx)
	}
	return math.Abs(dy)
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func meanStd(samples []float64) (m, std float64) {
	m = mean(samples)
	if len(samples) < 2 {
		return m, 0
	}
	var sq float64
	for _, s := range samples {
		d := s - m
		sq += d * d
	}
	return m, math.Sqrt(sq / float64(len(samples)))
}

// consistent applies the final acceptance gate: the sample spread must
// stay within gate × mean, otherwise the OCR feed was too noisy to trust.
func consistent(samples []float64, gate float64) bool {
	if len(samples) == 0 {
		return false
	}
	m, std := meanStd(samples)
	if m <= 0 {
		return false
	}
	return std <= gate*m
}
