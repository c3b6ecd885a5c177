package layout

import (
	"math"
	"testing"
)

func threeColumnRows() []Row {
	var rows []Row
	for y := 0.0; y < 3; y++ {
		rows = append(rows, Row{
			tok("name", 20, y*30, 80, y*30+10),    // cx 50
			tok("qty", 280, y*30, 320, y*30+10),   // cx 300
			tok("amount", 520, y*30, 580, y*30+10), // cx 550
		})
	}
	return rows
}

func TestEstimateColumnsMonotonic(t *testing.T) {
	cols := EstimateColumns(threeColumnRows(), 6)
	if len(cols) == 0 || len(cols) > 6 {
		t.Fatalf("column count out of bounds: %d", len(cols))
	}
	for i := 1; i < len(cols); i++ {
		if cols[i] <= cols[i-1] {
			t.Errorf("column centers not strictly increasing: %v", cols)
		}
	}
	want := []float64{50, 300, 550}
	if len(cols) != len(want) {
		t.Fatalf("expected %d columns, got %v", len(want), cols)
	}
	for i, w := range want {
		if math.Abs(cols[i]-w) > 1 {
			t.Errorf("column %d: got %.1f, want %.1f", i, cols[i], w)
		}
	}
}

func TestEstimateColumnsMaxColsBound(t *testing.T) {
	// One wide row of 10 well-separated tokens.
	var row Row
	for i := 0; i < 10; i++ {
		x := float64(i * 100)
		row = append(row, tok("t", x, 0, x+20, 10))
	}
	cols := EstimateColumns([]Row{row}, 3)
	if len(cols) > 3 {
		t.Errorf("expected at most 3 columns, got %d: %v", len(cols), cols)
	}
	for i := 1; i < len(cols); i++ {
		if cols[i] <= cols[i-1] {
			t.Errorf("column centers not strictly increasing: %v", cols)
		}
	}
}

// TestEstimateColumnsDegenerate drives the fallback path: all tokens share a
// horizontal position, so clustering cannot produce two distinct centers.
func TestEstimateColumnsDegenerate(t *testing.T) {
	rows := []Row{
		{tok("a", 90, 0, 110, 10)},
		{tok("b", 90, 30, 110, 40)},
	}
	cols := EstimateColumns(rows, 6)
	if len(cols) != 1 {
		t.Fatalf("expected a single fallback center, got %v", cols)
	}
	if cols[0] != 100 {
		t.Errorf("expected fallback center 100, got %.1f", cols[0])
	}
}

func TestEstimateColumnsEmpty(t *testing.T) {
	if cols := EstimateColumns(nil, 6); cols != nil {
		t.Errorf("expected nil for empty input, got %v", cols)
	}
}

func TestTargetColumnCountClamped(t *testing.T) {
	cases := []struct {
		lengths []int
		maxCols int
		want    int
	}{
		{[]int{1, 1, 1}, 6, 2},  // median 1 -> 2 after clamp
		{[]int{3, 3, 3}, 6, 4},  // median 3 -> 4
		{[]int{8, 9, 10}, 6, 6}, // clamped to maxCols
	}
	for _, c := range cases {
		if got := targetColumnCount(c.lengths, c.maxCols); got != c.want {
			t.Errorf("targetColumnCount(%v, %d) = %d, want %d", c.lengths, c.maxCols, got, c.want)
		}
	}
}
