package gameworld

import (
	"context"
	"errors"
	"image"
	"time"
)

// Test doubles for the engine ports. All scripted, no timing, no OS.

type scriptedReader struct {
	seq   []Position
	errs  []error
	calls int
}

func (r *scriptedReader) ReadPosition(ctx context.Context) (Position, error) {
	i := r.calls
	r.calls++
	if i < len(r.errs) && r.errs[i] != nil {
		return InvalidPosition, r.errs[i]
	}
	if len(r.seq) == 0 {
		return InvalidPosition, errors.New("no scripted positions")
	}
	if i >= len(r.seq) {
		// Exhausted scripts repeat the final position: the world does
		// not move on its own.
		return r.seq[len(r.seq)-1], nil
	}
	return r.seq[i], nil
}

type dragRecord struct {
	from, to image.Point
}

type recordingDrag struct {
	drags     []dragRecord
	failAfter int // fail every drag once this many succeeded; -1 = never
}

func newRecordingDrag() *recordingDrag {
	return &recordingDrag{failAfter: -1}
}

func (d *recordingDrag) Drag(ctx context.Context, from, to image.Point, duration time.Duration) error {
	if d.failAfter >= 0 && len(d.drags) >= d.failAfter {
		return errors.New("scripted drag failure")
	}
	d.drags = append(d.drags, dragRecord{from: from, to: to})
	return nil
}

type fakeScreen struct {
	bounds image.Rectangle
	img    image.Image
	err    error
}

func (s *fakeScreen) Bounds() (image.Rectangle, error) {
	if s.err != nil {
		return image.Rectangle{}, s.err
	}
	return s.bounds, nil
}

func (s *fakeScreen) Capture(ctx context.Context) (image.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.img == nil {
		return image.NewRGBA(s.bounds), nil
	}
	return s.img, nil
}

type fakeMatcher struct {
	hitOnCall int // 1-based call number that produces a match; 0 = never
	match     Match
	calls     int
}

func (m *fakeMatcher) FindMatches(ctx context.Context, templates []string, img image.Image) ([]Match, error) {
	m.calls++
	if m.hitOnCall > 0 && m.calls == m.hitOnCall {
		return []Match{m.match}, nil
	}
	return nil, nil
}

// calibratedSet returns a direction set whose North and East drags each
// cover dist game units.
func calibratedSet(dist float64) *DirectionSet {
	set := NewDirectionSet(
		image.Pt(300, 300), image.Pt(300, 100),
		image.Pt(300, 300), image.Pt(500, 300),
	)
	ns := Position{K: 1, X: 100, Y: 100}
	ne := Position{K: 1, X: 100, Y: 100 + dist}
	es := Position{K: 1, X: 100, Y: 100}
	ee := Position{K: 1, X: 100 + dist, Y: 100}
	set.North.GameStart, set.North.GameEnd = &ns, &ne
	set.East.GameStart, set.East.GameEnd = &es, &ee
	return set
}

// quietOpts removes all sleeps and soft limits from the default options.
func quietOpts() Options {
	o := DefaultOptions()
	o.OCRRetryDelay = 0
	o.SettleDelay = 0
	o.DragDuration = 0
	o.OCRSoftLimit = 0
	return o
}

func newTestCalibrator(r PositionReader, d DragActuator, o Options) *Calibrator {
	c := NewCalibrator(r, d, o)
	c.sleep = func(time.Duration) {}
	return c
}

func newTestNavigator(r PositionReader, d DragActuator, set *DirectionSet, o Options) *Navigator {
	n := NewNavigator(newTestCalibrator(r, d, o), d, set, o)
	n.sleep = func(time.Duration) {}
	return n
}
