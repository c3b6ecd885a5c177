package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// totalPattern finds a printed invoice total: one of the known labels
// followed by optional whitespace/colon and a numeric value.
var totalPattern = regexp.MustCompile(`(?i)(final\s*total|grand\s*total|total\s*payable|net\s*amount)[\s:]*([0-9.,]+)`)

// TotalsReport compares the extracted sum against the printed invoice total.
// InvoiceTotal and Diff are nil together when no printed total was found.
type TotalsReport struct {
	SumExtracted float64  `json:"sum_extracted"`
	InvoiceTotal *float64 `json:"invoice_total"`
	Diff         *float64 `json:"diff"`
}

// ReconcileTotals sums the merged item amounts (nil counted as zero) and
// scans the per-page text blobs, in page order, for a printed total. The
// first parsable match wins; scanning stops once one is found.
func ReconcileTotals(items []MergedLineItem, pageTexts []string) TotalsReport {
	var sum float64
	for _, it := range items {
		sum += amountOrZero(it.LineItem)
	}
	report := TotalsReport{SumExtracted: round2(sum)}

	for _, text := range pageTexts {
		if text == "" {
			continue
		}
		for _, m := range totalPattern.FindAllStringSubmatch(text, -1) {
			raw := strings.TrimSpace(strings.ReplaceAll(m[2], ",", ""))
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			total := round2(v)
			diff := round2(total - report.SumExtracted)
			report.InvoiceTotal = &total
			report.Diff = &diff
			return report
		}
	}
	return report
}
