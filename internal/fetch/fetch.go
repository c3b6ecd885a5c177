/**
 * Input Resolution
 *
 * Jobs reference documents either by URL or by a path already on local disk.
 * Remote documents are downloaded into the job's temp directory with retries;
 * local paths are validated and passed through.
 */

package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/docuflow/billextract-worker/internal/errors"
)

const maxDocumentSize = 100 << 20 // 100MB

var (
	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 32 * time.Second
)

// Resolve turns a document reference into a readable local path. URLs are
// downloaded into destDir; anything else is treated as a local path and
// stat-checked.
func Resolve(ctx context.Context, document, destDir string) (string, error) {
	if strings.HasPrefix(document, "http://") || strings.HasPrefix(document, "https://") {
		return download(ctx, document, destDir)
	}

	info, err := os.Stat(document)
	if err != nil {
		return "", apperrors.NewInputResolutionError(document, err)
	}
	if info.IsDir() {
		return "", apperrors.NewInputResolutionError(document, fmt.Errorf("path is a directory"))
	}
	return document, nil
}

func download(ctx context.Context, url, destDir string) (string, error) {
	dest := filepath.Join(destDir, filepath.Base(strings.SplitN(url, "?", 2)[0]))
	if filepath.Ext(dest) == "" {
		dest += ".pdf"
	}

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := attemptDownload(ctx, url, dest); err != nil {
			lastErr = err
			log.Printf("Download attempt %d/%d failed for %s: %v", attempt, maxRetries, url, err)
			if attempt == maxRetries {
				break
			}
			select {
			case <-ctx.Done():
				return "", apperrors.NewInputResolutionError(url, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		return dest, nil
	}
	return "", apperrors.NewInputResolutionError(url, lastErr)
}

func attemptDownload(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return err
	}
	if n > maxDocumentSize {
		return fmt.Errorf("document exceeds %d byte limit", maxDocumentSize)
	}
	return nil
}
