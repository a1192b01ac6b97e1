package session

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"site_analyzer/internal/analyzer"
)

func successBody(address, payload string) string {
	return `{
		"address": "` + address + `",
		"latitude": 40.760,
		"longitude": -111.880,
		"elevation_min": 1280.0,
		"elevation_max": 1310.5,
		"elevation_avg": 1295.2,
		"slope_analysis": {
			"elevation_change_meters": 30.5,
			"slope_classification": "Moderate",
			"buildability_assessment": "Buildable with grading"
		},
		"access_score": 7.5,
		"report_pdf": "` + payload + `"
	}`
}

func TestSubmitSuccess(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 report"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(successBody("350 S 400 E, Salt Lake City, UT", payload)))
	}))
	defer srv.Close()

	sess := New(analyzer.New(srv.URL, 0))
	result, err := sess.Submit(context.Background(), "350 S 400 E, Salt Lake City, UT")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sess.Pending() {
		t.Fatal("pending flag not cleared after success")
	}
	if sess.Result() != result {
		t.Fatal("result not stored")
	}
	if sess.ErrorMessage() != "" {
		t.Fatalf("unexpected error message %q", sess.ErrorMessage())
	}
	if !sess.HasReport() {
		t.Fatal("report payload not stored")
	}
}

func TestSubmitErrorClearsPendingAndSetsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "bad address"}`))
	}))
	defer srv.Close()

	sess := New(analyzer.New(srv.URL, 0))
	_, err := sess.Submit(context.Background(), "nowhere")
	if err == nil {
		t.Fatal("expected error")
	}
	if sess.Pending() {
		t.Fatal("pending flag not cleared after failure")
	}
	if sess.ErrorMessage() != "bad address" {
		t.Fatalf("expected %q, got %q", "bad address", sess.ErrorMessage())
	}
	if sess.Result() != nil {
		t.Fatal("result should be suppressed on failure")
	}
}

func TestSubmitValidationSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call")
	}))
	defer srv.Close()

	sess := New(analyzer.New(srv.URL, 0))
	_, err := sess.Submit(context.Background(), "   ")
	var validation *analyzer.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if sess.ErrorMessage() != "address required" {
		t.Fatalf("unexpected message %q", sess.ErrorMessage())
	}
	if sess.Pending() {
		t.Fatal("pending flag not cleared")
	}
}

func TestTransportFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sess := New(analyzer.New(srv.URL, 0))
	_, err := sess.Submit(context.Background(), "somewhere")
	var transport *analyzer.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if sess.ErrorMessage() == "" {
		t.Fatal("expected a displayed message")
	}
}

func TestDownloadWithoutReport(t *testing.T) {
	sess := New(analyzer.New("http://localhost:0", 0))
	dir := t.TempDir()
	_, err := sess.DownloadReport(dir)
	var noReport *NoReportError
	if !errors.As(err, &noReport) {
		t.Fatalf("expected NoReportError, got %v", err)
	}
	if noReport.Error() != "No report available to download" {
		t.Fatalf("unexpected message %q", noReport.Error())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no file side effect, found %d entries", len(entries))
	}
}

func TestDownloadWritesFixedFilename(t *testing.T) {
	original := []byte("%PDF-1.4 full report body")
	payload := base64.StdEncoding.EncodeToString(original)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(successBody("350 S 400 E, Salt Lake City, UT", payload)))
	}))
	defer srv.Close()

	sess := New(analyzer.New(srv.URL, 0))
	if _, err := sess.Submit(context.Background(), "350 S 400 E"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	dir := t.TempDir()
	path, err := sess.DownloadReport(dir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if filepath.Base(path) != "site-analysis-report.pdf" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Fatal("downloaded bytes differ from original")
	}
}

func TestLastResolvedSubmissionWins(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 second"))
	var address string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(successBody(address, payload)))
	}))
	defer srv.Close()

	sess := New(analyzer.New(srv.URL, 0))
	address = "first place"
	if _, err := sess.Submit(context.Background(), "first place"); err != nil {
		t.Fatal(err)
	}
	address = "second place"
	if _, err := sess.Submit(context.Background(), "second place"); err != nil {
		t.Fatal(err)
	}
	if got := sess.Result().Address; got != "second place" {
		t.Fatalf("expected latest result to win, got %q", got)
	}
}
