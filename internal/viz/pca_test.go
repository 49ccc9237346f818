package viz

import (
	"math"
	"testing"
)

func TestProject_NoData(t *testing.T) {
	if _, _, err := Project(nil); err != ErrNoData {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestProject_IdenticalPoints(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{1, 2, 3},
		{1, 2, 3},
	}

	coords, variance, err := Project(vectors)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(coords) != 3 {
		t.Fatalf("expected 3 coordinate rows, got %d", len(coords))
	}
	for i, c := range coords {
		if c != [Components]float64{} {
			t.Errorf("point %d: identical inputs should project to the origin, got %v", i, c)
		}
	}
	if len(variance) != 0 {
		t.Errorf("no variance to explain, got %v", variance)
	}
}

func TestProject_SinglePoint(t *testing.T) {
	coords, variance, err := Project([][]float32{{4, 5, 6, 7}})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(coords) != 1 || coords[0] != ([Components]float64{}) {
		t.Errorf("single point should sit at the origin, got %v", coords)
	}
	if len(variance) != 0 {
		t.Errorf("single point has no variance, got %v", variance)
	}
}

func TestProject_VarianceFractions(t *testing.T) {
	vectors := [][]float32{
		{10, 0, 0.1, 0},
		{-10, 0, -0.1, 0},
		{9, 1, 0, 0.2},
		{-9, -1, 0, -0.2},
		{11, 0.5, 0.1, 0.1},
		{-11, -0.5, -0.1, -0.1},
	}

	_, variance, err := Project(vectors)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(variance) == 0 {
		t.Fatal("expected at least one variance fraction")
	}

	sum := 0.0
	for i, v := range variance {
		if v < 0 || v > 1+1e-9 {
			t.Errorf("fraction %d out of range: %v", i, v)
		}
		if i > 0 && v > variance[i-1]+1e-9 {
			t.Errorf("fractions should be non-increasing: %v", variance)
		}
		sum += v
	}
	if sum > 1+1e-6 {
		t.Errorf("fractions sum above 1: %v", sum)
	}

	// Nearly all spread lies along the first axis.
	if variance[0] < 0.9 {
		t.Errorf("expected first component to dominate, got %v", variance[0])
	}
}

func TestProject_SeparatesClusters(t *testing.T) {
	// Two tight clusters far apart; the first component must split them.
	vectors := [][]float32{
		{0, 0, 0, 0.1},
		{0.1, 0, 0, 0},
		{0, 0.1, 0, 0},
		{10, 10, 10, 10.1},
		{10.1, 10, 10, 10},
		{10, 10.1, 10, 10},
	}

	coords, _, err := Project(vectors)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		for j := 3; j < 6; j++ {
			gap := math.Abs(coords[i][0] - coords[j][0])
			if gap < 1 {
				t.Errorf("points %d and %d not separated on first component: %v vs %v",
					i, j, coords[i][0], coords[j][0])
			}
		}
	}
}
