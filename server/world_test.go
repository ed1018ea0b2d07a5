package server

import (
	"math"
	"testing"
)

func TestWrapStaysInRange(t *testing.T) {
	const size = 800.0
	cases := []float64{0, 1, 799.999, 800, 801, -1, -800, -800.5, -1e-300, 1e9, -1e9, math.Nextafter(size, 0)}
	for _, v := range cases {
		got := Wrap(v, size)
		if got < 0 || got >= size {
			t.Errorf("Wrap(%v) = %v, want in [0,%v)", v, got, size)
		}
	}
	if got := Wrap(-1, size); got != 799 {
		t.Errorf("Wrap(-1) = %v, want 799", got)
	}
	if got := Wrap(805, size); got != 5 {
		t.Errorf("Wrap(805) = %v, want 5", got)
	}
}

func TestStepSingleDirection(t *testing.T) {
	var in Intent
	in[DirLeft] = true
	x, y := Step(10, 20, in, 300, 0.1, true, 800, 600)
	if x != 780 || y != 20 {
		t.Fatalf("expected wrap to (780,20), got (%v,%v)", x, y)
	}
}

func TestStepDiagonalNormalization(t *testing.T) {
	var in Intent
	in[DirRight] = true
	in[DirDown] = true

	x, y := Step(100, 100, in, 10, 1, true, 800, 600)
	dist := math.Hypot(x-100, y-100)
	if math.Abs(dist-10) > 1e-9 {
		t.Fatalf("normalized diagonal should travel 10, got %v", dist)
	}

	x, y = Step(100, 100, in, 10, 1, false, 800, 600)
	if x != 110 || y != 110 {
		t.Fatalf("raw diagonal expected (110,110), got (%v,%v)", x, y)
	}
}

func TestStepOpposingDirectionsCancel(t *testing.T) {
	var in Intent
	in[DirUp] = true
	in[DirDown] = true
	x, y := Step(5, 5, in, 500, 1.0/30, true, 800, 600)
	if x != 5 || y != 5 {
		t.Fatalf("opposing intents should cancel, got (%v,%v)", x, y)
	}
}

func TestWorldKeepsIDsUniqueAndOrdered(t *testing.T) {
	w := NewWorld(800, 600)
	for _, id := range []EntityID{5, 2, 9, 7} {
		if !w.Add(&Player{ID: id}) {
			t.Fatalf("Add(%d) failed", id)
		}
	}
	if w.Add(&Player{ID: 2}) {
		t.Fatal("duplicate id accepted")
	}
	if _, ok := w.Remove(9); !ok {
		t.Fatal("Remove(9) failed")
	}
	if _, ok := w.Remove(9); ok {
		t.Fatal("second Remove(9) should report missing")
	}
	var got []EntityID
	w.Each(func(p *Player) { got = append(got, p.ID) })
	want := []EntityID{2, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
