package worker

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"risk-insight/config"
	"risk-insight/logging"
	"risk-insight/store"
)

func testPool(t *testing.T, history *store.History) *Pool {
	t.Helper()
	logger, err := logging.NewLogger(t.TempDir(), "worker_test.log")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	cfg := &config.Config{}
	cfg.Server.OutputDir = t.TempDir()
	rcfg := &config.ReportConfig{
		Vaults: config.VaultGroups{
			Bluechip: []config.Vault{{Name: "Core USDC", Chain: "ethereum", QueryID: 1}},
		},
	}
	return StartReportWorkers(2, cfg, rcfg, "", history, logger)
}

func waitJob(t *testing.T, p *Pool, id string) Job {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := p.Store().Get(id)
		if ok && job.Status != StatusRunning {
			return job
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return Job{}
}

func TestSubmitSampleJobCompletes(t *testing.T) {
	h, err := store.OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer h.Close()

	p := testPool(t, h)
	id, err := p.Submit(Request{Sample: true, Format: "html", Owner: "alice"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(id) != 8 {
		t.Errorf("id = %q, want 8 characters", id)
	}

	job := waitJob(t, p, id)
	if job.Status != StatusDone {
		t.Fatalf("status = %s, error = %s", job.Status, job.Error)
	}
	if job.Filename == "" || job.Size == 0 || job.Path == "" {
		t.Errorf("job missing file info: %+v", job)
	}

	entries, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id || entries[0].Status != "done" {
		t.Errorf("history entries = %+v", entries)
	}
}

func TestSameDayJobsWriteDistinctFiles(t *testing.T) {
	// Deux jobs du même jour et du même format ne doivent pas
	// partager le même artefact, sinon un téléchargement peut servir
	// le rapport d'un autre job.
	p := testPool(t, nil)
	first, err := p.Submit(Request{Sample: true, Format: "html", Owner: "alice"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second, err := p.Submit(Request{Sample: true, Format: "html", Owner: "bob"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	a := waitJob(t, p, first)
	b := waitJob(t, p, second)
	if a.Status != StatusDone || b.Status != StatusDone {
		t.Fatalf("statuses = %s / %s", a.Status, b.Status)
	}
	if a.Path == b.Path {
		t.Fatalf("both jobs wrote %s", a.Path)
	}
	if !strings.Contains(a.Filename, first) || !strings.Contains(b.Filename, second) {
		t.Errorf("filenames %s / %s should carry their job ids", a.Filename, b.Filename)
	}
}

func TestJobFailureIsRecorded(t *testing.T) {
	p := testPool(t, nil)
	// No API key and not sample: the pipeline must fail before any work.
	id, err := p.Submit(Request{Sample: false, Format: "pdf", Owner: "bob"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	job := waitJob(t, p, id)
	if job.Status != StatusError {
		t.Fatalf("status = %s, want error", job.Status)
	}
	if job.Error == "" {
		t.Error("error message missing")
	}
}

func TestSubmitDefaultsToPDF(t *testing.T) {
	p := testPool(t, nil)
	id, err := p.Submit(Request{Sample: true, Owner: "carol"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	job := waitJob(t, p, id)
	if job.Status != StatusDone {
		t.Fatalf("status = %s, error = %s", job.Status, job.Error)
	}
	if filepath.Ext(job.Filename) != ".pdf" {
		t.Errorf("filename = %s, want .pdf", job.Filename)
	}
}

func TestStoreWholesaleReplace(t *testing.T) {
	s := NewStore()
	s.Set(Job{ID: "abc", Status: StatusRunning, Message: "Queued"})
	s.SetMessage("abc", "Fetching data")
	job, ok := s.Get("abc")
	if !ok || job.Message != "Fetching data" {
		t.Errorf("job = %+v", job)
	}
	s.Set(Job{ID: "abc", Status: StatusDone})
	job, _ = s.Get("abc")
	if job.Status != StatusDone || job.Message != "" {
		t.Errorf("Set should replace the whole value: %+v", job)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get should report missing ids")
	}
}
