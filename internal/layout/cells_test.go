package layout

import "testing"

func TestAssignRowsToColumnsCellCount(t *testing.T) {
	rows := threeColumnRows()
	cols := EstimateColumns(rows, 6)
	structured := AssignRowsToColumns(rows, cols)

	if len(structured) != len(rows) {
		t.Fatalf("expected %d structured rows, got %d", len(rows), len(structured))
	}
	for i, s := range structured {
		if len(s.Cells) != len(cols) {
			t.Errorf("row %d: expected %d cells, got %d", i, len(cols), len(s.Cells))
		}
	}
}

func TestAssignRowsToColumnsContent(t *testing.T) {
	rows := []Row{{
		tok("Blood", 10, 10, 50, 20),   // cx 30
		tok("Test", 60, 10, 100, 20),   // cx 80
		tok("450.00", 480, 10, 520, 20), // cx 500
	}}
	structured := AssignRowsToColumns(rows, []float64{50, 500})

	if got := structured[0].Cells[0]; got != "Blood Test" {
		t.Errorf("cell 0: got %q, want %q", got, "Blood Test")
	}
	if got := structured[0].Cells[1]; got != "450.00" {
		t.Errorf("cell 1: got %q, want %q", got, "450.00")
	}
	if structured[0].RowY != 15 {
		t.Errorf("row y: got %.1f, want 15", structured[0].RowY)
	}
}

// TestAssignRowsToColumnsTieBreak checks that a token equidistant between two
// column centers lands in the lower-index column.
func TestAssignRowsToColumnsTieBreak(t *testing.T) {
	rows := []Row{{tok("mid", 140, 10, 160, 20)}} // cx 150
	structured := AssignRowsToColumns(rows, []float64{100, 200})

	if structured[0].Cells[0] != "mid" {
		t.Errorf("tie should resolve to column 0, got cells %v", structured[0].Cells)
	}
	if structured[0].Cells[1] != "" {
		t.Errorf("column 1 should be empty, got %q", structured[0].Cells[1])
	}
}

func TestAssignRowsToColumnsNoLayout(t *testing.T) {
	rows := []Row{{
		tok("Page", 10, 10, 40, 20),
		tok("1", 50, 10, 60, 20),
		tok("of", 70, 10, 85, 20),
		tok("2", 95, 10, 105, 20),
	}}
	structured := AssignRowsToColumns(rows, nil)

	if len(structured) != 1 || len(structured[0].Cells) != 1 {
		t.Fatalf("expected single-cell fallback, got %+v", structured)
	}
	if structured[0].Cells[0] != "Page 1 of 2" {
		t.Errorf("got %q, want %q", structured[0].Cells[0], "Page 1 of 2")
	}
}
