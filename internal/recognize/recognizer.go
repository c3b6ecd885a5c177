/**
 * Text Recognition Interface
 *
 * Abstracts the OCR engine behind a small interface so the page pipeline can
 * be tested without Tesseract installed.
 */

package recognize

import (
	"context"
	"errors"

	"github.com/docuflow/billextract-worker/internal/layout"
)

// ErrNoTokens indicates the engine ran successfully but found no text on the
// page. Callers treat this as an empty page, not a failure.
var ErrNoTokens = errors.New("no text recognized on page")

// Recognizer extracts positioned word tokens from a page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]layout.Token, error)
	Close() error
}
