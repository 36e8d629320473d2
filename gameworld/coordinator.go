package gameworld

import (
	"fmt"
	"math"
)

// Coordinator converts between screen pixels and wrapping world units
// using the calibrated ratios and the live window bounds. It is the one
// place that knows how big the visible slice of the world is.
type Coordinator struct {
	ratios Ratios
	screen Screen
}

func NewCoordinator(ratios Ratios, screen Screen) *Coordinator {
	return &Coordinator{ratios: ratios, screen: screen}
}

// Ratios returns the calibration currently in effect.
func (c *Coordinator) Ratios() Ratios { return c.ratios }

// SetRatios swaps in a fresh calibration.
func (c *Coordinator) SetRatios(r Ratios) { c.ratios = r }

// WorldDeltaToPixels converts a world-unit displacement into screen
// pixels. Y is not flipped here: the calibrated ratios already absorb
// the game's axis orientation.
func (c *Coordinator) WorldDeltaToPixels(dx, dy float64) (px, py float64) {
	return dx * c.ratios.X, dy * c.ratios.Y
}

// PixelDeltaToWorld converts a pixel displacement into world units.
func (c *Coordinator) PixelDeltaToWorld(px, py float64) (dx, dy float64, err error) {
	if !c.ratios.Calibrated() {
		return 0, 0, fmt.Errorf("pixel conversion requires calibration")
	}
	return px / c.ratios.X, py / c.ratios.Y, nil
}

// ViewFootprint is the size of the visible world slice in game units:
// window pixel dimensions divided by the per-axis ratios.
func (c *Coordinator) ViewFootprint() (w, h float64, err error) {
	if !c.ratios.Calibrated() {
		return 0, 0, fmt.Errorf("view footprint requires calibration")
	}
	bounds, err := c.screen.Bounds()
	if err != nil {
		return 0, 0, fmt.Errorf("window bounds: %w", err)
	}
	return float64(bounds.Dx()) / c.ratios.X, float64(bounds.Dy()) / c.ratios.Y, nil
}

// IsOnScreen reports whether target is visible when the view is centered
// on current, keeping margin (a fraction of the half-view) as a safety
// band so matches near the window edge are not trusted.
func (c *Coordinator) IsOnScreen(current, target Position, margin float64) bool {
	if !current.Valid() || !target.Valid() || current.K != target.K {
		return false
	}
	w, h, err := c.ViewFootprint()
	if err != nil {
		return false
	}
	dx, dy := WrappedDelta(current, target)
	return math.Abs(dx) <= w/2*(1-margin) && math.Abs(dy) <= h/2*(1-margin)
}
