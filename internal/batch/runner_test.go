package batch

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/config"
	"site_analyzer/internal/history"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	return config.Config{
		BaseURL:     baseURL,
		OutputDir:   t.TempDir(),
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		WorkerCount: 1,
		QueueSize:   8,
	}
}

func waitForJob(t *testing.T, r *Runner, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job, ok := r.Job(id); ok && job.Status != StatusQueued && job.Status != StatusRunning {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return Job{}
}

func TestRunnerProcessesAddress(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 batch"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"address": "350 S 400 E, Salt Lake City, UT",
			"latitude": 40.760, "longitude": -111.880,
			"elevation_min": 1280.0, "elevation_max": 1310.5, "elevation_avg": 1295.2,
			"slope_analysis": {
				"elevation_change_meters": 30.5,
				"slope_classification": "Moderate",
				"buildability_assessment": "Buildable with grading"
			},
			"access_score": 7.5,
			"report_pdf": "` + payload + `"
		}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	st, err := history.Open(cfg.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	runner := NewRunner(cfg, analyzer.New(cfg.BaseURL, 0), st)
	runner.Start(context.Background())
	defer runner.Stop()

	job, err := runner.Enqueue("350 S 400 E, Salt Lake City, UT", "inbox-1.txt")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	done := waitForJob(t, runner, job.ID)
	if done.Status != StatusSucceeded {
		t.Fatalf("expected success, got %s (%s)", done.Status, done.Error)
	}
	if done.ReportPath == "" {
		t.Fatal("expected a report path")
	}
	if filepath.Base(done.ReportPath) != job.ID+"-site-analysis-report.pdf" {
		t.Fatalf("unexpected report name %q", filepath.Base(done.ReportPath))
	}
	if _, err := os.Stat(done.ReportPath); err != nil {
		t.Fatalf("report file missing: %v", err)
	}

	entries, err := st.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
}

func TestRunnerRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "bad address"}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	runner := NewRunner(cfg, analyzer.New(cfg.BaseURL, 0), nil)
	runner.Start(context.Background())
	defer runner.Stop()

	job, err := runner.Enqueue("nowhere", "")
	if err != nil {
		t.Fatal(err)
	}
	done := waitForJob(t, runner, job.ID)
	if done.Status != StatusFailed {
		t.Fatalf("expected failure, got %s", done.Status)
	}
	if done.Error != "bad address" {
		t.Fatalf("unexpected error %q", done.Error)
	}
}

func TestEnqueueQueueFull(t *testing.T) {
	cfg := testConfig(t, "http://localhost:0")
	cfg.QueueSize = 1
	cfg.WorkerCount = 0
	runner := NewRunner(cfg, analyzer.New(cfg.BaseURL, 0), nil)
	// no Start: nothing drains the queue

	if _, err := runner.Enqueue("a", ""); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := runner.Enqueue("b", ""); err == nil {
		t.Fatal("expected queue full error")
	}
}
