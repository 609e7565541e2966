package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"risk-insight/config"
	"risk-insight/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger(t.TempDir(), "pipeline_test.log")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func testReportConfig() *config.ReportConfig {
	return &config.ReportConfig{
		Vaults: config.VaultGroups{
			Bluechip: []config.Vault{{Name: "Core USDC", Chain: "ethereum", QueryID: 1}},
			LongTail: []config.Vault{{Name: "Frontier ALT", Chain: "base", QueryID: 2}},
		},
		ChainColors: map[string]string{"ethereum": "#627EEA", "base": "#0052FF"},
	}
}

func TestRunSampleToPDF(t *testing.T) {
	outDir := t.TempDir()
	var steps []string
	result, err := Run(Request{Sample: true, Format: "pdf"}, testReportConfig(), outDir, testLogger(t), func(msg string) {
		steps = append(steps, msg)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	info, err := os.Stat(result.Path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() != result.Size || result.Size == 0 {
		t.Errorf("size mismatch: result=%d stat=%d", result.Size, info.Size())
	}
	if !strings.HasSuffix(result.Path, ".pdf") {
		t.Errorf("path = %s, want .pdf", result.Path)
	}
	if len(steps) < 3 {
		t.Errorf("expected progress steps, got %v", steps)
	}
}

func TestRunSelectsVaults(t *testing.T) {
	outDir := t.TempDir()
	result, err := Run(Request{
		Sample: true,
		Format: "html",
		Vaults: []string{"Core USDC"},
	}, testReportConfig(), outDir, testLogger(t), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	html := string(raw)
	if !strings.Contains(html, "Bluechip Vaults") {
		t.Error("selected vault section missing")
	}
	if strings.Contains(html, "Long-Tail Vaults") {
		t.Error("unselected vault group should not appear")
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	if _, err := Run(Request{Sample: true, Format: "docx"}, testReportConfig(), t.TempDir(), testLogger(t), nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunWithoutKeyFailsBeforeWork(t *testing.T) {
	outDir := t.TempDir()
	_, err := Run(Request{Sample: false, APIKey: "", Format: "pdf"}, testReportConfig(), outDir, testLogger(t), nil)
	if err == nil {
		t.Fatal("expected missing key error")
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("no artifacts should be written, found %d", len(entries))
	}
}

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	got := DefaultOutputPath("output", "pdf", now)
	want := filepath.Join("output", "lending_risk_report_2025-06-02.pdf")
	if got != want {
		t.Errorf("DefaultOutputPath = %s, want %s", got, want)
	}
}
