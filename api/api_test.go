package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/worker"
)

func testSetup(t *testing.T) (*config.Config, *config.ReportConfig, *worker.Pool, *logging.Logger) {
	t.Helper()
	logger, err := logging.NewLogger(t.TempDir(), "api_test.log")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	cfg := &config.Config{}
	cfg.Auth.Enabled = false
	cfg.Server.OutputDir = t.TempDir()
	cfg.Workers = 1

	rcfg := &config.ReportConfig{
		Vaults: config.VaultGroups{
			Bluechip: []config.Vault{{Name: "Core USDC", Chain: "ethereum", QueryID: 1}},
		},
		ChainColors: map[string]string{"ethereum": "#627EEA"},
	}

	pool := worker.StartReportWorkers(1, cfg, rcfg, "", nil, logger)
	return cfg, rcfg, pool, logger
}

func submitSampleJob(t *testing.T, cfg *config.Config, pool *worker.Pool, logger *logging.Logger, format string) string {
	t.Helper()
	handler := ReportGenerateHandler(cfg, pool, logger)
	body, _ := json.Marshal(map[string]interface{}{
		"use_sample": true,
		"format":     format,
	})
	req := httptest.NewRequest("POST", "/api/reports/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("generate response: %v", err)
	}
	id := resp["id"]
	if len(id) != 8 {
		t.Fatalf("job id = %q, want 8 characters", id)
	}
	return id
}

func waitForJob(t *testing.T, pool *worker.Pool, id string) worker.Job {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := pool.Store().Get(id)
		if ok && job.Status != worker.StatusRunning {
			return job
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return worker.Job{}
}

func TestGenerateStatusDownloadRoundTrip(t *testing.T) {
	cfg, _, pool, logger := testSetup(t)

	id := submitSampleJob(t, cfg, pool, logger, "html")
	job := waitForJob(t, pool, id)
	if job.Status != worker.StatusDone {
		t.Fatalf("job status = %s, error = %s", job.Status, job.Error)
	}
	if job.Filename == "" || job.Size == 0 {
		t.Fatalf("job missing file info: %+v", job)
	}

	statusHandler := ReportStatusHandler(cfg, pool)
	req := httptest.NewRequest("GET", "/api/reports/status?id="+id, nil)
	rec := httptest.NewRecorder()
	statusHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var statusResp worker.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &statusResp); err != nil {
		t.Fatalf("status response: %v", err)
	}
	if statusResp.Status != worker.StatusDone {
		t.Errorf("status = %s, want done", statusResp.Status)
	}

	dlHandler := DownloadReportHandler(cfg, pool, logger)
	req = httptest.NewRequest("GET", "/api/reports/download?id="+id+"&type=html", nil)
	rec = httptest.NewRecorder()
	dlHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("download code = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("download content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("download body is empty")
	}
}

func TestStatusUnknownJob(t *testing.T) {
	cfg, _, pool, _ := testSetup(t)
	handler := ReportStatusHandler(cfg, pool)
	req := httptest.NewRequest("GET", "/api/reports/status?id=deadbeef", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response: %v", err)
	}
	if resp["status"] != "unknown" {
		t.Errorf("status = %q, want unknown", resp["status"])
	}
}

func TestGenerateRejectsBadFormat(t *testing.T) {
	cfg, _, pool, logger := testSetup(t)
	handler := ReportGenerateHandler(cfg, pool, logger)
	body := bytes.NewReader([]byte(`{"use_sample": true, "format": "docx"}`))
	req := httptest.NewRequest("POST", "/api/reports/generate", body)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rec.Code)
	}
}

func TestGenerateRejectsGet(t *testing.T) {
	cfg, _, pool, logger := testSetup(t)
	handler := ReportGenerateHandler(cfg, pool, logger)
	req := httptest.NewRequest("GET", "/api/reports/generate", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", rec.Code)
	}
}

func TestDownloadWrongType(t *testing.T) {
	cfg, _, pool, logger := testSetup(t)
	id := submitSampleJob(t, cfg, pool, logger, "html")
	job := waitForJob(t, pool, id)
	if job.Status != worker.StatusDone {
		t.Fatalf("job status = %s, error = %s", job.Status, job.Error)
	}

	handler := DownloadReportHandler(cfg, pool, logger)
	req := httptest.NewRequest("GET", "/api/reports/download?id="+id+"&type=pdf", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400 for mismatched type", rec.Code)
	}
}

func TestVaultsHandler(t *testing.T) {
	cfg, rcfg, _, logger := testSetup(t)
	handler := VaultsHandler(cfg, rcfg, logger)
	req := httptest.NewRequest("GET", "/api/vaults", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var resp map[string][]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response: %v", err)
	}
	if len(resp["bluechip"]) != 1 || resp["bluechip"][0]["name"] != "Core USDC" {
		t.Errorf("bluechip vaults = %+v", resp["bluechip"])
	}
}

func TestRequireUserWithAuthEnabled(t *testing.T) {
	cfg, _, pool, _ := testSetup(t)
	cfg.Auth.Enabled = true
	cfg.JWT.Secret = "test_secret"

	handler := ReportStatusHandler(cfg, pool)
	req := httptest.NewRequest("GET", "/api/reports/status?id=deadbeef", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401 without a token", rec.Code)
	}
}
