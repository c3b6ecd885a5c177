/**
 * Layout Types - Shared data structures for layout reconstruction
 *
 * Common types used by row grouping, column estimation and cell assignment.
 */

package layout

// Token is a single recognized text string with its bounding box and
// confidence, produced by the recognition collaborator. Coordinates are
// pixels with the origin at the top-left of the page.
type Token struct {
	Text       string
	X1, Y1     float64
	X2, Y2     float64
	Confidence float64
}

// CenterX returns the horizontal center of the token's bounding box.
func (t Token) CenterX() float64 {
	return (t.X1 + t.X2) / 2
}

// CenterY returns the vertical center of the token's bounding box.
func (t Token) CenterY() float64 {
	return (t.Y1 + t.Y2) / 2
}

// Row is a group of tokens judged to lie on the same print line, sorted
// left-to-right by X1.
type Row []Token

// StructuredRow is one table row after column assignment. Cells holds one
// string per inferred column, or a single joined string when no column layout
// could be inferred. RowY is the vertical center of the row's leftmost token.
type StructuredRow struct {
	Cells []string
	RowY  float64
}
