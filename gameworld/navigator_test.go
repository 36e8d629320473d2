package gameworld

import (
	"context"
	"image"
	"testing"
)

// moveScript produces the OCR reads MoveTo consumes: one before planning
// and one after each drag, walking from start to target in per-drag
// increments.
func moveScript(start Position, dragsEast, dragsSouth int, dist float64) []Position {
	seq := []Position{start}
	cur := start
	for i := 0; i < dragsEast; i++ {
		cur = cur.Translate(dist, 0)
		seq = append(seq, cur)
	}
	for i := 0; i < dragsSouth; i++ {
		cur = cur.Translate(0, dist)
		seq = append(seq, cur)
	}
	return seq
}

func TestMoveTo_PlansTruncatedDragCounts(t *testing.T) {
	set := calibratedSet(10)
	start := Position{K: 1, X: 100, Y: 100}
	// Target 53 east, 27 south: truncation gives 5 east and 2 south
	// drags, the rest is accepted residual.
	target := Position{K: 1, X: 153, Y: 127}

	reader := &scriptedReader{seq: moveScript(start, 5, 2, 10)}
	drag := newRecordingDrag()
	nav := newTestNavigator(reader, drag, set, quietOpts())

	if !nav.MoveTo(context.Background(), target) {
		t.Fatalf("MoveTo failed, state %s", nav.State())
	}
	if nav.State() != NavDone {
		t.Errorf("state = %s, want Done", nav.State())
	}
	if len(drag.drags) != 7 {
		t.Fatalf("expected 7 drags, got %d", len(drag.drags))
	}

	// First five drags go east (the stored vector), the last two south
	// (North's vector reversed).
	eastFrom, eastTo, _ := set.DragVector(East)
	southFrom, southTo, _ := set.DragVector(South)
	for i := 0; i < 5; i++ {
		if drag.drags[i].from != eastFrom || drag.drags[i].to != eastTo {
			t.Errorf("drag %d = %v, want east vector", i, drag.drags[i])
		}
	}
	for i := 5; i < 7; i++ {
		if drag.drags[i].from != southFrom || drag.drags[i].to != southTo {
			t.Errorf("drag %d = %v, want south vector", i, drag.drags[i])
		}
	}
}

func TestMoveTo_WrapShortcutGoesWest(t *testing.T) {
	set := calibratedSet(10)
	start := Position{K: 1, X: 5, Y: 100}
	target := Position{K: 1, X: 975, Y: 100} // 30 units west across the wrap

	seq := []Position{start}
	cur := start
	for i := 0; i < 3; i++ {
		cur = cur.Translate(-10, 0)
		seq = append(seq, cur)
	}
	drag := newRecordingDrag()
	nav := newTestNavigator(&scriptedReader{seq: seq}, drag, set, quietOpts())

	if !nav.MoveTo(context.Background(), target) {
		t.Fatalf("MoveTo failed, state %s", nav.State())
	}
	westFrom, westTo, _ := set.DragVector(West)
	if len(drag.drags) != 3 {
		t.Fatalf("expected 3 drags, got %d", len(drag.drags))
	}
	for i, d := range drag.drags {
		if d.from != westFrom || d.to != westTo {
			t.Errorf("drag %d = %v, want west vector", i, d)
		}
	}
}

func TestMoveTo_AlreadyThere(t *testing.T) {
	set := calibratedSet(10)
	start := Position{K: 1, X: 100, Y: 100}
	drag := newRecordingDrag()
	nav := newTestNavigator(&scriptedReader{seq: []Position{start}}, drag, set, quietOpts())

	// Sub-drag distance away: zero drags planned, immediate success.
	if !nav.MoveTo(context.Background(), Position{K: 1, X: 104, Y: 98}) {
		t.Fatal("MoveTo within residual distance should succeed")
	}
	if len(drag.drags) != 0 {
		t.Errorf("expected no drags, got %d", len(drag.drags))
	}
}

func TestMoveTo_AbortedByCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	set := calibratedSet(10)
	start := Position{K: 1, X: 100, Y: 100}
	nav := newTestNavigator(&scriptedReader{seq: []Position{start}}, newRecordingDrag(), set, quietOpts())

	cancel()
	if nav.MoveTo(ctx, Position{K: 1, X: 200, Y: 100}) {
		t.Fatal("cancelled MoveTo should fail")
	}
	if nav.State() != NavAborted {
		t.Errorf("state = %s, want Aborted", nav.State())
	}
}

func TestMoveTo_DragFailure(t *testing.T) {
	set := calibratedSet(10)
	start := Position{K: 1, X: 100, Y: 100}
	drag := newRecordingDrag()
	drag.failAfter = 2
	nav := newTestNavigator(&scriptedReader{seq: moveScript(start, 2, 0, 10)}, drag, set, quietOpts())

	if nav.MoveTo(context.Background(), Position{K: 1, X: 150, Y: 100}) {
		t.Fatal("MoveTo with failing drags should fail")
	}
	if nav.State() != NavFailed {
		t.Errorf("state = %s, want Failed", nav.State())
	}
}

func TestMoveTo_RequiresCalibration(t *testing.T) {
	var set DirectionSet
	nav := newTestNavigator(&scriptedReader{seq: []Position{{K: 1, X: 1, Y: 1}}}, newRecordingDrag(), &set, quietOpts())
	if nav.MoveTo(context.Background(), Position{K: 1, X: 50, Y: 50}) {
		t.Fatal("MoveTo without calibrated directions should fail")
	}
	if nav.State() != NavFailed {
		t.Errorf("state = %s, want Failed", nav.State())
	}
}

// eastOnlySet calibrates just the East direction; North has no screen
// vector and no game endpoints.
func eastOnlySet(dist float64) *DirectionSet {
	set := NewDirectionSet(
		image.Point{}, image.Point{},
		image.Pt(200, 300), image.Pt(600, 300),
	)
	es := Position{K: 1, X: 100, Y: 100}
	ee := Position{K: 1, X: 100 + dist, Y: 100}
	set.East.GameStart, set.East.GameEnd = &es, &ee
	return set
}

func TestMoveTo_SingleAxisCalibration(t *testing.T) {
	set := eastOnlySet(10)
	start := Position{K: 1, X: 100, Y: 100}

	// A due-east target only needs the east vector.
	drag := newRecordingDrag()
	nav := newTestNavigator(&scriptedReader{seq: moveScript(start, 5, 0, 10)}, drag, set, quietOpts())
	if !nav.MoveTo(context.Background(), Position{K: 1, X: 153, Y: 100}) {
		t.Fatalf("due-east MoveTo failed, state %s", nav.State())
	}
	if len(drag.drags) != 5 {
		t.Errorf("expected 5 east drags, got %d", len(drag.drags))
	}

	// A target needing vertical movement cannot work without North.
	drag = newRecordingDrag()
	nav = newTestNavigator(&scriptedReader{seq: []Position{start}}, drag, set, quietOpts())
	if nav.MoveTo(context.Background(), Position{K: 1, X: 100, Y: 150}) {
		t.Fatal("vertical MoveTo without a north calibration should fail")
	}
	if nav.State() != NavFailed {
		t.Errorf("state = %s, want Failed", nav.State())
	}
	if len(drag.drags) != 0 {
		t.Errorf("expected no drags, got %d", len(drag.drags))
	}
}

func TestMoveTo_RejectsInvalidTarget(t *testing.T) {
	set := calibratedSet(10)
	nav := newTestNavigator(&scriptedReader{seq: []Position{{K: 1, X: 1, Y: 1}}}, newRecordingDrag(), set, quietOpts())
	if nav.MoveTo(context.Background(), InvalidPosition) {
		t.Fatal("invalid target should be rejected")
	}
}
