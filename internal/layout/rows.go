package layout

import (
	"math"
	"sort"
)

// DefaultYThresh is the default vertical tolerance (pixels) for grouping
// tokens into the same row.
const DefaultYThresh = 12.0

// GroupTokensIntoRows clusters unordered tokens into horizontal rows. Tokens
// are sorted by vertical center, then walked in order: a token joins the
// current row when its vertical center is within yThresh of the last token
// placed in that row, otherwise it starts a new row. Each emitted row is
// sorted left-to-right.
//
// Every input token lands in exactly one row. Empty input yields no rows.
func GroupTokensIntoRows(tokens []Token, yThresh float64) []Row {
	if len(tokens) == 0 {
		return nil
	}
	if yThresh <= 0 {
		yThresh = DefaultYThresh
	}

	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CenterY() < sorted[j].CenterY()
	})

	var rows []Row
	current := Row{sorted[0]}
	for _, t := range sorted[1:] {
		last := current[len(current)-1]
		if math.Abs(t.CenterY()-last.CenterY()) <= yThresh {
			current = append(current, t)
		} else {
			rows = append(rows, sortRowByX(current))
			current = Row{t}
		}
	}
	rows = append(rows, sortRowByX(current))

	return rows
}

func sortRowByX(r Row) Row {
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].X1 < r[j].X1
	})
	return r
}
