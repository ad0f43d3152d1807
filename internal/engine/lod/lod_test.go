package lod

import (
	"testing"
)

func testTable() Table {
	t := Table{
		Levels: []Level{
			{MaxRange: 20000, Resolution: 8},
			{MaxRange: 1500, Resolution: 64},
			{MaxRange: 5000, Resolution: 32},
		},
		MinimumResolution: 4,
		HideMeshDistance:  50000,
	}
	t.Sort()
	return t
}

func TestSort(t *testing.T) {
	tbl := testTable()
	if !tbl.Sorted() {
		t.Fatalf("levels not sorted: %v", tbl.Levels)
	}

	want := []float64{1500, 5000, 20000}
	for i, l := range tbl.Levels {
		if l.MaxRange != want[i] {
			t.Errorf("level %d range = %v, want %v", i, l.MaxRange, want[i])
		}
	}
}

func TestSortStable(t *testing.T) {
	tbl := Table{Levels: []Level{
		{MaxRange: 100, Resolution: 1},
		{MaxRange: 50, Resolution: 2},
		{MaxRange: 100, Resolution: 3},
	}}
	tbl.Sort()

	if tbl.Levels[1].Resolution != 1 || tbl.Levels[2].Resolution != 3 {
		t.Errorf("equal ranges reordered: %v", tbl.Levels)
	}
}

func TestResolve(t *testing.T) {
	tbl := testTable()

	tests := []struct {
		rng  float64
		want int
	}{
		{0, 64},
		{1500, 64},
		{1500.1, 32},
		{4999, 32},
		{5000, 32},
		{12000, 8},
		{20000, 8},
		{20001, 4},
		{1e9, 4},
	}

	for _, tc := range tests {
		if got := tbl.Resolve(tc.rng); got != tc.want {
			t.Errorf("Resolve(%v) = %d, want %d", tc.rng, got, tc.want)
		}
	}
}

func TestResolveFloor(t *testing.T) {
	tbl := Table{
		Levels:            []Level{{MaxRange: 1000, Resolution: 2}},
		MinimumResolution: 6,
	}
	if got := tbl.Resolve(10); got != 6 {
		t.Errorf("Resolve() = %d, want floor 6", got)
	}
}

func TestResolveNonIncreasing(t *testing.T) {
	tbl := testTable()

	prev := tbl.Resolve(0)
	for rng := 0.0; rng <= 40000; rng += 250 {
		got := tbl.Resolve(rng)
		if got > prev {
			t.Fatalf("Resolve(%v) = %d increased from %d", rng, got, prev)
		}
		if got < tbl.MinimumResolution {
			t.Fatalf("Resolve(%v) = %d below floor", rng, got)
		}
		prev = got
	}
}

func TestHidden(t *testing.T) {
	tbl := testTable()
	if tbl.Hidden(50000) {
		t.Error("tile exactly at the cutoff should stay visible")
	}
	if !tbl.Hidden(50000.5) {
		t.Error("tile past the cutoff should be hidden")
	}
}

func TestDefaultTable(t *testing.T) {
	tbl := DefaultTable()
	if len(tbl.Levels) != 1 || tbl.Levels[0].MaxRange != DefaultMaxRange {
		t.Errorf("unexpected default levels: %v", tbl.Levels)
	}
	if tbl.Levels[0].SqrRange() != DefaultMaxRange*DefaultMaxRange {
		t.Errorf("SqrRange() = %v", tbl.Levels[0].SqrRange())
	}

	clone := tbl.Clone()
	clone.Levels[0].Resolution = 99
	if tbl.Levels[0].Resolution == 99 {
		t.Error("Clone shares level storage")
	}
}
