// Package session owns the mutable display state of the analysis client:
// the current result, the current error message, the pending flag, and the
// transient report payload slot. State lives only in memory for the life of
// the session and is never persisted.
package session

import (
	"context"
	"fmt"
	"sync"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/metrics"
	"site_analyzer/internal/report"
)

// NoReportError is returned when a download is requested with no stored
// report payload. It is a recoverable, user-visible condition.
type NoReportError struct{}

func (*NoReportError) Error() string { return "No report available to download" }

// Session wraps an analyzer client with explicit display state. The mutex
// exists because HTTP handlers may drive a session from concurrent
// goroutines; submissions are not mutually excluded, and the most recently
// resolved one fully overwrites the displayed state.
type Session struct {
	client *analyzer.Client

	mu      sync.Mutex
	pending bool
	result  *analyzer.AnalysisResult
	errMsg  string
	payload string // base64 report from the last successful analysis
}

func New(client *analyzer.Client) *Session {
	return &Session{client: client}
}

// Submit runs one analysis and applies the outcome to the session state.
// The pending flag clears on every exit path.
func (s *Session) Submit(ctx context.Context, address string) (*analyzer.AnalysisResult, error) {
	s.begin()
	result, err := s.client.Analyze(ctx, address)
	return s.resolve(result, err)
}

// begin enters the pending state, suppressing any previous result or error.
func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = true
	s.result = nil
	s.errMsg = ""
}

// resolve applies a submission outcome. A success replaces both the result
// and the stored report payload; a failure leaves the previous payload
// intact and records the display message.
func (s *Session) resolve(result *analyzer.AnalysisResult, err error) (*analyzer.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if err != nil {
		s.errMsg = analyzer.UserMessage(err)
		metrics.IncAnalysisFailed()
		return nil, err
	}
	s.result = result
	s.payload = result.ReportPDF
	metrics.IncAnalysisSucceeded()
	return result, nil
}

// Pending reports whether a submission is currently in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Result returns the currently displayed result, or nil.
func (s *Session) Result() *analyzer.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ErrorMessage returns the currently displayed error message, or "".
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// HasReport reports whether a report payload is held for download.
func (s *Session) HasReport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload != ""
}

// Report decodes the stored payload into PDF bytes. With no stored payload
// it fails with NoReportError and has no side effect.
func (s *Session) Report() ([]byte, error) {
	s.mu.Lock()
	payload := s.payload
	s.mu.Unlock()
	if payload == "" {
		return nil, &NoReportError{}
	}
	data, err := report.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return data, nil
}

// DownloadReport writes the stored report into dir as site-analysis-report.pdf
// and returns the written path.
func (s *Session) DownloadReport(dir string) (string, error) {
	data, err := s.Report()
	if err != nil {
		return "", err
	}
	path, err := report.Save(dir, data)
	if err != nil {
		return "", err
	}
	metrics.IncReportSaved()
	return path, nil
}
