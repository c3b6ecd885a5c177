package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.QueueName != "billextract:jobs" {
		t.Errorf("queue name: got %q", cfg.QueueName)
	}
	if cfg.WorkerConcurrency != 5 {
		t.Errorf("concurrency: got %d", cfg.WorkerConcurrency)
	}
	if cfg.RowYThresh != 12 {
		t.Errorf("row threshold: got %.1f", cfg.RowYThresh)
	}
	if cfg.DedupeNameThreshold != 85 {
		t.Errorf("name threshold: got %d", cfg.DedupeNameThreshold)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PAGE_WORKERS", "8")
	t.Setenv("DEDUPE_AMOUNT_TOL", "2.5")
	t.Setenv("TESSERACT_LANG", "eng+hin")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.PageWorkers != 8 {
		t.Errorf("page workers: got %d", cfg.PageWorkers)
	}
	if cfg.DedupeAmountTol != 2.5 {
		t.Errorf("amount tolerance: got %.2f", cfg.DedupeAmountTol)
	}
	if cfg.TesseractLang != "eng+hin" {
		t.Errorf("language: got %q", cfg.TesseractLang)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "0")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected validation error for zero concurrency")
	}
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("BAD_INT", "not-a-number")
	if got := getEnvAsIntOrDefault("BAD_INT", 7); got != 7 {
		t.Errorf("bad int should fall back: got %d", got)
	}
	t.Setenv("BAD_FLOAT", "nope")
	if got := getEnvAsFloatOrDefault("BAD_FLOAT", 1.5); got != 1.5 {
		t.Errorf("bad float should fall back: got %.1f", got)
	}
}
