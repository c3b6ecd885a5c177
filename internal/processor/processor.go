/**
 * Bill Processor for the bill extraction worker
 *
 * Orchestrates the extraction pipeline:
 * - Input resolution (URL download or local path)
 * - Page rasterization (pdftoppm at 300 DPI)
 * - Per-page OCR with image enhancement
 * - Layout reconstruction (rows, columns, cells)
 * - Line-item parsing, cross-page dedup, totals reconciliation
 */

package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/docuflow/billextract-worker/internal/errors"
	"github.com/docuflow/billextract-worker/internal/extract"
	"github.com/docuflow/billextract-worker/internal/fetch"
	"github.com/docuflow/billextract-worker/internal/layout"
	"github.com/docuflow/billextract-worker/internal/rasterize"
	"github.com/docuflow/billextract-worker/internal/recognize"
	"github.com/docuflow/billextract-worker/internal/storage"
)

// pageTypeBillDetail is the only page classification emitted today. Pages
// are labelled uniformly; summary-page detection has not been needed.
const pageTypeBillDetail = "Bill Detail"

// PageLineItems holds the items found on a single page
type PageLineItems struct {
	PageNo    string             `json:"page_no"`
	PageType  string             `json:"page_type"`
	BillItems []extract.LineItem `json:"bill_items"`
}

// DocumentExtraction is the complete extraction result for one document
type DocumentExtraction struct {
	PagewiseLineItems []PageLineItems          `json:"pagewise_line_items"`
	FinalLineItems    []extract.MergedLineItem `json:"final_line_items"`
	TotalItemCount    int                      `json:"total_item_count"`
	Totals            extract.TotalsReport     `json:"totals"`
}

// ExtractOptions tunes the layout and dedup heuristics
type ExtractOptions struct {
	YThresh       float64
	MaxCols       int
	NameThreshold int
	AmountTol     float64
}

func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		YThresh:       layout.DefaultYThresh,
		MaxCols:       layout.DefaultMaxCols,
		NameThreshold: extract.DefaultNameThreshold,
		AmountTol:     extract.DefaultAmountTol,
	}
}

// BillProcessorInterface defines the interface for bill processing
type BillProcessorInterface interface {
	ProcessDocument(ctx context.Context, req *ProcessRequest) (*ProcessResult, error)
	UpdateJobStatus(ctx context.Context, jobID string, status string, metadata map[string]interface{}) error
}

// ProcessorConfig holds processor configuration
type ProcessorConfig struct {
	Recognizer  recognize.Recognizer
	Rasterizer  rasterize.Rasterizer
	Store       *storage.PostgresStore // nil disables persistence
	PageWorkers int
	Options     ExtractOptions
	TempDir     string
}

// ProcessRequest represents a bill extraction request
type ProcessRequest struct {
	JobID    string
	UserID   string
	Document string
	Metadata map[string]interface{}
}

// ProcessResult represents the extraction result
type ProcessResult struct {
	Extraction       *DocumentExtraction
	PagesProcessed   int
	ProcessingTimeMs int64
}

// BillProcessor handles bill extraction
type BillProcessor struct {
	config ProcessorConfig
}

// NewBillProcessor creates a new bill processor
func NewBillProcessor(cfg ProcessorConfig) (*BillProcessor, error) {
	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if cfg.Rasterizer == nil {
		return nil, fmt.Errorf("rasterizer is required")
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = 4
	}
	if cfg.Options == (ExtractOptions{}) {
		cfg.Options = DefaultExtractOptions()
	}
	return &BillProcessor{config: cfg}, nil
}

// ProcessDocument runs the complete extraction pipeline for one document
func (p *BillProcessor) ProcessDocument(ctx context.Context, req *ProcessRequest) (*ProcessResult, error) {
	startTime := time.Now()
	log.Printf("[Job %s] Starting bill extraction pipeline", req.JobID)

	workDir, err := os.MkdirTemp(p.config.TempDir, "billextract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Step 1: Resolve input
	log.Printf("[Job %s] Step 1: Resolving document %s", req.JobID, req.Document)
	docPath, err := fetch.Resolve(ctx, req.Document, workDir)
	if err != nil {
		return nil, err
	}

	// Step 2: Rasterize pages
	log.Printf("[Job %s] Step 2: Rasterizing pages", req.JobID)
	pages, err := p.config.Rasterizer.Pages(ctx, docPath, workDir)
	if err != nil {
		return nil, apperrors.NewRasterizeError(req.JobID, err)
	}
	log.Printf("[Job %s] Rasterized %d pages", req.JobID, len(pages))

	// Step 3: OCR and layout reconstruction, pages in parallel
	log.Printf("[Job %s] Step 3: Extracting line items from %d pages", req.JobID, len(pages))
	pageResults := p.extractPages(ctx, req.JobID, pages)

	pagewise := make([]PageLineItems, len(pageResults))
	pageTexts := make([]string, len(pageResults))
	var allItems []extract.LineItem
	for i, pr := range pageResults {
		items := pr.items
		if items == nil {
			items = []extract.LineItem{}
		}
		pagewise[i] = PageLineItems{
			PageNo:    strconv.Itoa(i + 1),
			PageType:  pageTypeBillDetail,
			BillItems: items,
		}
		pageTexts[i] = pr.text
		allItems = append(allItems, items...)
	}

	// Step 4: Dedup across pages
	log.Printf("[Job %s] Step 4: Deduplicating %d items", req.JobID, len(allItems))
	final := extract.DedupeItems(allItems, p.config.Options.NameThreshold, p.config.Options.AmountTol)

	// Step 5: Reconcile against the printed total
	totals := extract.ReconcileTotals(final, pageTexts)
	if totals.InvoiceTotal != nil {
		log.Printf("[Job %s] Totals: extracted=%.2f invoice=%.2f diff=%.2f",
			req.JobID, totals.SumExtracted, *totals.InvoiceTotal, *totals.Diff)
	} else {
		log.Printf("[Job %s] Totals: extracted=%.2f (no printed total found)",
			req.JobID, totals.SumExtracted)
	}

	extraction := &DocumentExtraction{
		PagewiseLineItems: pagewise,
		FinalLineItems:    final,
		TotalItemCount:    len(final),
		Totals:            totals,
	}

	// Step 6: Persist result (optional)
	if p.config.Store != nil {
		log.Printf("[Job %s] Step 6: Persisting extraction", req.JobID)
		_, err := p.config.Store.SaveExtraction(ctx, &storage.ExtractionRecord{
			JobID:        req.JobID,
			ItemCount:    extraction.TotalItemCount,
			SumExtracted: totals.SumExtracted,
			Result:       extraction,
		})
		if err != nil {
			return nil, apperrors.NewStorageFailedError(req.JobID, err)
		}
	}

	elapsed := time.Since(startTime).Milliseconds()
	log.Printf("[Job %s] Extraction complete: pages=%d, items=%d, duration=%dms",
		req.JobID, len(pages), extraction.TotalItemCount, elapsed)

	return &ProcessResult{
		Extraction:       extraction,
		PagesProcessed:   len(pages),
		ProcessingTimeMs: elapsed,
	}, nil
}

// UpdateJobStatus updates job status in the database. No-op without a store.
func (p *BillProcessor) UpdateJobStatus(ctx context.Context, jobID string, status string, metadata map[string]interface{}) error {
	if p.config.Store == nil {
		return nil
	}

	update := &storage.JobUpdate{
		JobID:    jobID,
		Status:   status,
		Metadata: metadata,
	}
	if metadata != nil {
		if processingTime, ok := metadata["processingTimeMs"].(int64); ok {
			update.ProcessingTimeMs = processingTime
		}
		if errorCode, ok := metadata["errorCode"].(string); ok {
			update.ErrorCode = errorCode
		}
		if errorMsg, ok := metadata["error"].(string); ok {
			if update.ErrorCode == "" {
				update.ErrorCode = "PROCESSING_ERROR"
			}
			update.ErrorMessage = errorMsg
		}
	}
	return p.config.Store.UpdateJobStatus(ctx, update)
}

type pageResult struct {
	items []extract.LineItem
	text  string
}

// extractPages runs OCR and extraction for every page with a bounded worker
// pool. Results are indexed by page so the output keeps page order, which
// downstream dedup and totals scanning depend on.
func (p *BillProcessor) extractPages(ctx context.Context, jobID string, pages []string) []pageResult {
	results := make([]pageResult, len(pages))

	workers := p.config.PageWorkers
	if workers > len(pages) {
		workers = len(pages)
	}

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = p.extractPage(ctx, jobID, j.idx+1, j.path)
			}
		}()
	}
	for i, path := range pages {
		jobs <- job{idx: i, path: path}
	}
	close(jobs)
	wg.Wait()

	return results
}

// extractPage processes one page image. Page-level failures degrade to an
// empty page rather than failing the document.
func (p *BillProcessor) extractPage(ctx context.Context, jobID string, pageNo int, path string) pageResult {
	image, err := recognize.EnhanceImageForOCR(path)
	if err != nil {
		log.Printf("[Job %s] Page %d: enhancement failed (%v), using raw image", jobID, pageNo, err)
		image, err = os.ReadFile(path)
		if err != nil {
			log.Printf("[Job %s] Page %d: unreadable image: %v", jobID, pageNo, err)
			return pageResult{}
		}
	}

	tokens, err := p.config.Recognizer.Recognize(ctx, image)
	if err != nil {
		if errors.Is(err, recognize.ErrNoTokens) {
			log.Printf("[Job %s] Page %d: no text recognized", jobID, pageNo)
		} else {
			recErr := apperrors.NewRecognitionFailedError(jobID, pageNo, err)
			log.Printf("[Job %s] %v", jobID, recErr)
		}
		return pageResult{}
	}

	return pageResult{
		items: ExtractLineItems(tokens, p.config.Options),
		text:  pageTextBlob(tokens),
	}
}

// ExtractLineItems reconstructs the table layout from positioned tokens and
// parses every structured row into a line item.
func ExtractLineItems(tokens []layout.Token, opts ExtractOptions) []extract.LineItem {
	rows := layout.GroupTokensIntoRows(tokens, opts.YThresh)
	cols := layout.EstimateColumns(rows, opts.MaxCols)
	structured := layout.AssignRowsToColumns(rows, cols)

	var items []extract.LineItem
	for _, row := range structured {
		if item := extract.ParseStructuredRow(row); item != nil {
			items = append(items, *item)
		}
	}
	return items
}

// pageTextBlob joins token texts in top-to-bottom order for totals scanning.
func pageTextBlob(tokens []layout.Token) string {
	sorted := make([]layout.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y1 < sorted[j].Y1
	})

	texts := make([]string, len(sorted))
	for i, t := range sorted {
		texts[i] = t.Text
	}
	return strings.Join(texts, "\n")
}
