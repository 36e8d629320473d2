package gameworld

import (
	"image"
	"testing"
)

func TestDragVector_SouthIsReversedNorth(t *testing.T) {
	set := NewDirectionSet(
		image.Pt(100, 400), image.Pt(100, 150), // North: P1 -> P2
		image.Pt(100, 400), image.Pt(420, 400), // East
	)

	from, to, err := set.DragVector(South)
	if err != nil {
		t.Fatalf("DragVector(South) error: %v", err)
	}
	if from != image.Pt(100, 150) || to != image.Pt(100, 400) {
		t.Errorf("South drag = %v -> %v, want exact reverse of North", from, to)
	}

	from, to, err = set.DragVector(West)
	if err != nil {
		t.Fatalf("DragVector(West) error: %v", err)
	}
	if from != image.Pt(420, 400) || to != image.Pt(100, 400) {
		t.Errorf("West drag = %v -> %v, want exact reverse of East", from, to)
	}
}

func TestDragVector_Undefined(t *testing.T) {
	var set DirectionSet
	for _, dir := range []Direction{North, South, East, West} {
		if _, _, err := set.DragVector(dir); err == nil {
			t.Errorf("DragVector(%s) on empty set should fail", dir)
		}
	}
}

func TestDragDistances(t *testing.T) {
	set := calibratedSet(40)
	east, south, err := set.DragDistances()
	if err != nil {
		t.Fatalf("DragDistances error: %v", err)
	}
	if east != 40 || south != 40 {
		t.Errorf("DragDistances = (%v, %v), want (40, 40)", east, south)
	}

	var empty DirectionSet
	if _, _, err := empty.DragDistances(); err == nil {
		t.Error("DragDistances on empty set should fail")
	}
}

func TestDragDistances_WrapsBoundary(t *testing.T) {
	// Endpoints straddling the wrap boundary still measure the short way.
	set := calibratedSet(10)
	es := Position{K: 1, X: 995, Y: 100}
	ee := Position{K: 1, X: 15, Y: 100}
	set.East.GameStart, set.East.GameEnd = &es, &ee

	east, _, err := set.DragDistances()
	if err != nil {
		t.Fatalf("DragDistances error: %v", err)
	}
	if east != 20 {
		t.Errorf("wrapped east distance = %v, want 20", east)
	}
}

func TestGridCells_CeilingDivision(t *testing.T) {
	cases := []struct {
		dist  float64
		cells int
	}{
		{37, 28},   // 1000/37 = 27.03, flooring would leave a strip uncovered
		{50, 20},   // exact divisor must not over-count
		{250, 4},
		{1, 1000},
		{999, 2},
		{1000, 1},
		{1500, 1},
	}
	for _, c := range cases {
		if got := GridCells(c.dist); got != c.cells {
			t.Errorf("GridCells(%v) = %d, want %d", c.dist, got, c.cells)
		}
	}
	if got := GridCells(0); got != 0 {
		t.Errorf("GridCells(0) = %d, want 0", got)
	}
}
