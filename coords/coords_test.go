package coords

import (
	"math"
	"testing"
)

func TestInverseRoundTrip(t *testing.T) {
	matrices := []Matrix{
		Identity(),
		{1.5, 0, 0, 1.5, 0, 0},
		{1.5, 0, 0, -1.5, 12.5, 792},
		{0.96, 0.28, -0.28, 0.96, 100, -40},
		{2, 1, 1, 2, -7, 3},
	}
	points := []Point{
		{0, 0}, {1, 1}, {-12.5, 640}, {612, 792}, {0.001, -0.001},
	}
	for _, m := range matrices {
		inv, err := m.Inverse()
		if err != nil {
			t.Fatalf("Inverse(%v): %v", m, err)
		}
		for _, p := range points {
			q := inv.Transform(m.Transform(p))
			if math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
				t.Errorf("round trip through %v moved %v to %v", m, p, q)
			}
		}
	}
}

func TestInverseSingular(t *testing.T) {
	for _, m := range []Matrix{
		{0, 0, 0, 0, 0, 0},
		{1, 2, 2, 4, 5, 6},
	} {
		if _, err := m.Inverse(); err != ErrSingular {
			t.Errorf("Inverse(%v) err = %v, want ErrSingular", m, err)
		}
	}
}

func TestMultiplyWithInverseIsIdentity(t *testing.T) {
	m := Matrix{1.25, 0, 0, -1.25, 30, 700}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	got := m.Multiply(inv)
	want := Identity()
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("m * m^-1 = %v, want identity", got)
		}
	}
}

func TestTransformComposition(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 2))
	got := m.Transform(Point{3, 4})
	if got.X != 26 || got.Y != 48 {
		t.Fatalf("Transform = %v, want (26, 48)", got)
	}
}
