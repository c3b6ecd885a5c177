package rasterize

import (
	"context"
	"testing"
)

func TestPagesNonPDFPassthrough(t *testing.T) {
	r := NewPopplerRasterizer()

	for _, path := range []string{"/scans/bill.png", "/scans/bill.JPG"} {
		pages, err := r.Pages(context.Background(), path, t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if len(pages) != 1 || pages[0] != path {
			t.Errorf("image input must pass through as one page, got %v", pages)
		}
	}
}

func TestNewPopplerRasterizerDefaults(t *testing.T) {
	r := NewPopplerRasterizer()
	if r.DPI != 300 {
		t.Errorf("default DPI: got %d", r.DPI)
	}
	if r.PdftoppmPath != "pdftoppm" {
		t.Errorf("default binary: got %q", r.PdftoppmPath)
	}
}
