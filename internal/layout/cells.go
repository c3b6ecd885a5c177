package layout

import (
	"math"
	"strings"
)

// AssignRowsToColumns produces one StructuredRow per row by assigning each
// token to the column whose center is nearest to the token's horizontal
// center (ties go to the lowest column index). Token texts assigned to the
// same column are joined with single spaces in left-to-right order.
//
// With an empty column layout every row collapses to a single cell holding
// the whole row text.
func AssignRowsToColumns(rows []Row, colCenters []float64) []StructuredRow {
	structured := make([]StructuredRow, 0, len(rows))

	if len(colCenters) == 0 {
		for _, r := range rows {
			texts := make([]string, len(r))
			for i, t := range r {
				texts[i] = t.Text
			}
			structured = append(structured, StructuredRow{
				Cells: []string{strings.Join(texts, " ")},
				RowY:  r[0].CenterY(),
			})
		}
		return structured
	}

	for _, r := range rows {
		buckets := make([][]string, len(colCenters))
		for _, t := range r {
			idx := nearestColumn(t.CenterX(), colCenters)
			buckets[idx] = append(buckets[idx], t.Text)
		}
		cells := make([]string, len(colCenters))
		for i, parts := range buckets {
			cells[i] = strings.TrimSpace(strings.Join(parts, " "))
		}
		structured = append(structured, StructuredRow{Cells: cells, RowY: r[0].CenterY()})
	}
	return structured
}

func nearestColumn(cx float64, centers []float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centers {
		if d := math.Abs(cx - c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
