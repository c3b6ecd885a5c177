/**
 * Page Rasterization
 *
 * Converts multi-page PDFs into per-page PNG images via poppler's pdftoppm.
 * Non-PDF inputs are assumed to already be page images and pass through as a
 * single page.
 */

package rasterize

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Rasterizer renders a document into one image file per page, in page order.
type Rasterizer interface {
	Pages(ctx context.Context, docPath, outDir string) ([]string, error)
}

// PopplerRasterizer shells out to pdftoppm.
type PopplerRasterizer struct {
	DPI          int
	PdftoppmPath string
}

func NewPopplerRasterizer() *PopplerRasterizer {
	return &PopplerRasterizer{DPI: 300, PdftoppmPath: "pdftoppm"}
}

// Pages renders docPath into PNGs under outDir and returns their paths in
// page order. pdftoppm zero-pads page numbers, so a lexical sort of the
// produced files is page order.
func (p *PopplerRasterizer) Pages(ctx context.Context, docPath, outDir string) ([]string, error) {
	if !strings.EqualFold(filepath.Ext(docPath), ".pdf") {
		return []string{docPath}, nil
	}

	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, p.PdftoppmPath, "-png", "-r", fmt.Sprint(p.DPI), docPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", docPath)
	}
	sort.Strings(pages)
	return pages, nil
}
