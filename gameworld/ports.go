package gameworld

import (
	"context"
	"image"
	"time"
)

// The engine drives the game through four narrow ports. The navigate
// package provides MaaFramework-backed implementations; tests use
// scripted fakes. Every call may fail and every failure is a value,
// never a panic.

// PositionReader reads the current world coordinate from the on-screen
// readout. A single call is one OCR cycle; retry policy lives in the
// engine, not the adapter.
type PositionReader interface {
	ReadPosition(ctx context.Context) (Position, error)
}

// DragActuator performs a mouse drag between two screen points.
type DragActuator interface {
	Drag(ctx context.Context, from, to image.Point, duration time.Duration) error
}

// Screen captures the game window and reports its pixel bounds.
type Screen interface {
	Bounds() (image.Rectangle, error)
	Capture(ctx context.Context) (image.Image, error)
}

// Match is one template hit: center point in screen pixels plus the
// matcher's confidence.
type Match struct {
	Template   string
	Center     image.Point
	Confidence float64
}

// Matcher runs template matching against a capture and returns all hits.
type Matcher interface {
	FindMatches(ctx context.Context, templates []string, img image.Image) ([]Match, error)
}
