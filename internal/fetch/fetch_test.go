package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/docuflow/billextract-worker/internal/errors"
)

func shrinkBackoff(t *testing.T) {
	t.Helper()
	origInitial, origMax := initialBackoff, maxBackoff
	initialBackoff, maxBackoff = time.Millisecond, 4*time.Millisecond
	t.Cleanup(func() {
		initialBackoff, maxBackoff = origInitial, origMax
	})
}

func TestResolveLocalPath(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "bill.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(context.Background(), doc, dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != doc {
		t.Errorf("local path must pass through: got %q", got)
	}
}

func TestResolveMissingPath(t *testing.T) {
	_, err := Resolve(context.Background(), "/nonexistent/bill.pdf", t.TempDir())
	if err == nil {
		t.Fatal("expected an error")
	}
	var extErr *apperrors.ExtractionError
	if !errors.As(err, &extErr) || extErr.Code != apperrors.ErrorInputResolutionFailed {
		t.Errorf("expected INPUT_RESOLUTION_FAILED, got %v", err)
	}
}

func TestResolveDirectoryRejected(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(context.Background(), dir, dir); err == nil {
		t.Error("directories must not resolve as documents")
	}
}

func TestResolveDownloadRetriesThenSucceeds(t *testing.T) {
	shrinkBackoff(t)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	got, err := Resolve(context.Background(), srv.URL+"/bill.pdf", dir)
	if err != nil {
		t.Fatal(err)
	}
	if hits != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("downloaded content: got %q", data)
	}
}

// TestResolveDownloadExhaustsRetries checks that a persistently failing
// source fails after exactly maxRetries attempts and returns promptly,
// with no backoff wait after the final attempt.
func TestResolveDownloadExhaustsRetries(t *testing.T) {
	shrinkBackoff(t)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	start := time.Now()
	_, err := Resolve(context.Background(), srv.URL+"/bill.pdf", t.TempDir())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected an error")
	}
	var extErr *apperrors.ExtractionError
	if !errors.As(err, &extErr) || extErr.Code != apperrors.ErrorInputResolutionFailed {
		t.Errorf("expected INPUT_RESOLUTION_FAILED, got %v", err)
	}
	if hits != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, hits)
	}
	// Waits between the 5 attempts sum to 1+2+4+4 = 11ms; anything near a
	// full extra maxBackoff indicates a sleep after the last attempt.
	if elapsed > time.Second {
		t.Errorf("retry loop took %v, suggesting a wait after the final attempt", elapsed)
	}
}
