package extract

import "testing"

func mergedItem(name string, amount float64) MergedLineItem {
	return MergedLineItem{LineItem: item(name, amount), Count: 1}
}

func TestReconcileTotalsFound(t *testing.T) {
	items := []MergedLineItem{
		mergedItem("Surgery Charges", 8000.00),
		mergedItem("Medicines", 250.00),
	}
	pages := []string{
		"City Hospital\nBill Detail",
		"Grand Total: 8,250.00\nThank you",
	}
	report := ReconcileTotals(items, pages)

	if report.SumExtracted != 8250.00 {
		t.Errorf("sum: got %.2f, want 8250.00", report.SumExtracted)
	}
	checkFloat(t, "invoice total", report.InvoiceTotal, 8250.00)
	checkFloat(t, "diff", report.Diff, 0)
}

func TestReconcileTotalsNotFound(t *testing.T) {
	report := ReconcileTotals([]MergedLineItem{mergedItem("A", 100)}, []string{"no totals here"})
	if report.InvoiceTotal != nil || report.Diff != nil {
		t.Errorf("expected nil invoice total and diff, got %+v", report)
	}
	if report.SumExtracted != 100 {
		t.Errorf("sum: got %.2f, want 100", report.SumExtracted)
	}
}

func TestReconcileTotalsFirstMatchWins(t *testing.T) {
	pages := []string{
		"Net Amount 1200.00",
		"Grand Total: 9999.00",
	}
	report := ReconcileTotals(nil, pages)
	checkFloat(t, "invoice total", report.InvoiceTotal, 1200.00)
	checkFloat(t, "diff", report.Diff, 1200.00)
}

func TestReconcileTotalsLabelVariants(t *testing.T) {
	for _, text := range []string{
		"FINAL TOTAL 500.00",
		"grand   total : 500.00",
		"Total Payable:500.00",
		"Net Amount  500.00",
	} {
		report := ReconcileTotals(nil, []string{text})
		if report.InvoiceTotal == nil {
			t.Errorf("label variant %q did not match", text)
			continue
		}
		if *report.InvoiceTotal != 500.00 {
			t.Errorf("label variant %q: got %.2f, want 500.00", text, *report.InvoiceTotal)
		}
	}
}

func TestReconcileTotalsDeficit(t *testing.T) {
	items := []MergedLineItem{mergedItem("Room Rent", 3000.00)}
	report := ReconcileTotals(items, []string{"Total Payable: 3500.00"})
	checkFloat(t, "diff", report.Diff, 500.00)
}
