/**
 * Line-Item Extractor
 *
 * Interprets structured table rows into bill line items using positional and
 * numeric heuristics: rightmost numeric cell is the amount, the cell before
 * it is a quantity or a rate, everything before the first numeric cell is the
 * description.
 */

package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/docuflow/billextract-worker/internal/layout"
)

// amountPattern matches monetary values: optional sign, 1-3 leading digits,
// optional thousands groups separated by comma or space, optional 1-2 digit
// decimal fraction.
var amountPattern = regexp.MustCompile(`[-+]?\d{1,3}(?:[,\s]\d{3})*(?:\.\d{1,2})?`)

// quantityMax bounds the quantity-vs-rate guess: a second numeric cell that
// is integer-valued and at most this large reads as a quantity, anything else
// as a rate. Known to misfire on rates below 20 and quantities above it.
const quantityMax = 20

// LineItem is one structured bill entry. Amount, rate and quantity are nil
// when the row did not yield them.
type LineItem struct {
	ItemName     string   `json:"item_name"`
	ItemAmount   *float64 `json:"item_amount"`
	ItemRate     *float64 `json:"item_rate"`
	ItemQuantity *float64 `json:"item_quantity"`
}

// ParseStructuredRow interprets one structured row's cells into a LineItem.
// Returns nil for noise rows: no numeric cell, no parsable amount, or no
// usable description.
func ParseStructuredRow(row layout.StructuredRow) *LineItem {
	cells := row.Cells
	if len(cells) == 0 {
		return nil
	}

	var numericIdx []int
	for i, c := range cells {
		if amountPattern.MatchString(c) {
			numericIdx = append(numericIdx, i)
		}
	}
	if len(numericIdx) == 0 {
		return nil
	}

	amount := parseAmount(cells[numericIdx[len(numericIdx)-1]])

	var rate, qty *float64
	if len(numericIdx) >= 2 {
		if sec := parseAmount(cells[numericIdx[len(numericIdx)-2]]); sec != nil {
			v := *sec
			if math.Abs(v-math.Round(v)) < 1e-6 && v <= quantityMax {
				qty = &v
			} else {
				r := round2(v)
				rate = &r
			}
		}
	}

	name := descriptionBeforeNumeric(cells)
	if name == "" {
		name = joinNonNumeric(cells)
	}
	if name == "" {
		name = cells[0]
	}
	if name == "" || amount == nil {
		return nil
	}

	a := round2(*amount)
	return &LineItem{
		ItemName:     name,
		ItemAmount:   &a,
		ItemRate:     rate,
		ItemQuantity: qty,
	}
}

// parseAmount strips thousands separators and converts the cell to a float.
// When direct conversion fails it falls back to the last amount-pattern match
// inside the cell. Returns nil when nothing parses.
func parseAmount(s string) *float64 {
	if s == "" {
		return nil
	}
	cleaned := strings.TrimSpace(stripSeparators(s))
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return &v
	}
	matches := amountPattern.FindAllString(s, -1)
	if len(matches) > 0 {
		last := stripSeparators(matches[len(matches)-1])
		if v, err := strconv.ParseFloat(last, 64); err == nil {
			return &v
		}
	}
	return nil
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), " ", "")
}

// descriptionBeforeNumeric joins the non-empty cells strictly before the
// first numeric cell.
func descriptionBeforeNumeric(cells []string) string {
	var parts []string
	for _, c := range cells {
		if amountPattern.MatchString(c) {
			break
		}
		if strings.TrimSpace(c) != "" {
			parts = append(parts, c)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func joinNonNumeric(cells []string) string {
	var parts []string
	for _, c := range cells {
		if c != "" && !amountPattern.MatchString(c) {
			parts = append(parts, c)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
