package gameworld

import "time"

// Options are the timing and tolerance knobs of the engine. They are
// built once at startup (see the config package) and passed in; nothing
// here re-reads configuration at call time.
type Options struct {
	// OCR read loop
	OCRRetries    int           // attempts per logical read
	OCRRetryDelay time.Duration // sleep between attempts
	OCRSoftLimit  time.Duration // per-cycle soft timeout, warn-only

	// Drags
	DragDuration time.Duration // actuator drag duration
	SettleDelay  time.Duration // wait after a drag before re-reading

	// Calibration
	CalibrationRuns int     // trials per calibration
	SoftTolerance   float64 // per-run deviation from running average, warn-only
	ConsistencyGate float64 // std/mean gate that rejects a calibration
	MinGameMovement float64 // game units below which an axis sample is discarded

	// Search
	OverlapFraction float64 // view-footprint overlap between samples
	ScreenMargin    float64 // fraction of the view kept as on-screen safety margin
}

// DefaultOptions returns the stock knobs: heuristic sleeps in the
// 0.1-2s band, three calibration trials, 20% overlap.
func DefaultOptions() Options {
	return Options{
		OCRRetries:      5,
		OCRRetryDelay:   300 * time.Millisecond,
		OCRSoftLimit:    3 * time.Second,
		DragDuration:    500 * time.Millisecond,
		SettleDelay:     500 * time.Millisecond,
		CalibrationRuns: 3,
		SoftTolerance:   0.20,
		ConsistencyGate: 0.10,
		MinGameMovement: 0.5,
		OverlapFraction: 0.20,
		ScreenMargin:    0.10,
	}
}
