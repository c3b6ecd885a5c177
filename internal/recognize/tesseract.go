/**
 * Tesseract Recognizer
 *
 * Word-level OCR via gosseract. A single long-lived client is reused across
 * pages; the underlying API handle is not safe for concurrent use, so calls
 * are serialized with a mutex.
 */

package recognize

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/docuflow/billextract-worker/internal/layout"
)

// TesseractRecognizer runs word-level OCR against a shared gosseract client.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates a recognizer for the given language
// ("eng" when empty). Fails fast when the language data is unavailable.
func NewTesseractRecognizer(language string) (*TesseractRecognizer, error) {
	if language == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language %q: %w", language, err)
	}
	log.Printf("Tesseract recognizer initialized (language: %s)", language)
	return &TesseractRecognizer{client: client}, nil
}

// Recognize extracts word tokens with bounding boxes from a page image.
// Returns ErrNoTokens when the page yields no non-empty words.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) ([]layout.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to load page image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get word boxes: %w", err)
	}

	tokens := make([]layout.Token, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, layout.Token{
			Text:       word,
			X1:         float64(box.Box.Min.X),
			Y1:         float64(box.Box.Min.Y),
			X2:         float64(box.Box.Max.X),
			Y2:         float64(box.Box.Max.Y),
			Confidence: box.Confidence / 100,
		})
	}
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}
	return tokens, nil
}

func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}
