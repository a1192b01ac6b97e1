// Package httpapi serves the local user-facing surface: the embedded page
// and the JSON endpoints it calls.
package httpapi

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"site_analyzer/internal/analyzer"
	"site_analyzer/internal/config"
	"site_analyzer/internal/history"
	"site_analyzer/internal/logger"
	"site_analyzer/internal/metrics"
	"site_analyzer/internal/render"
	"site_analyzer/internal/report"
	"site_analyzer/internal/session"
)

//go:embed static
var staticFiles embed.FS

// Router builds HTTP handlers for /api and /ops.
type Router struct {
	cfg   config.Config
	sess  *session.Session
	store *history.Store
}

func NewRouter(cfg config.Config, sess *session.Session, store *history.Store) *Router {
	return &Router{cfg: cfg, sess: sess, store: store}
}

// Handler wires all routes plus the embedded page.
func (r *Router) Handler() http.Handler {
	m := mux.NewRouter()
	m.HandleFunc("/api/analyze", r.analyze).Methods(http.MethodPost)
	m.HandleFunc("/api/report", r.reportDownload).Methods(http.MethodGet)
	m.HandleFunc("/api/history", r.history).Methods(http.MethodGet)
	m.HandleFunc("/ops/health", r.health).Methods(http.MethodGet)
	m.HandleFunc("/ops/metrics", r.metrics).Methods(http.MethodGet)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err == nil {
		m.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
	}
	return m
}

type analyzeBody struct {
	Address string `json:"address"`
}

// analyzeResponse carries the formatted display fields for the page.
type analyzeResponse struct {
	render.Fields
	ReportAvailable bool `json:"report_available"`
}

func (r *Router) analyze(w http.ResponseWriter, req *http.Request) {
	var body analyzeBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "address required")
		return
	}

	result, err := r.sess.Submit(req.Context(), body.Address)
	if err != nil {
		respondError(w, statusFor(err), analyzer.UserMessage(err))
		return
	}

	r.record(req, result)
	respondJSON(w, http.StatusOK, analyzeResponse{
		Fields:          render.FieldsFrom(result),
		ReportAvailable: r.sess.HasReport(),
	})
}

// record appends a history row for a successful analysis. History is an
// audit log; failures here do not affect the response.
func (r *Router) record(req *http.Request, result *analyzer.AnalysisResult) {
	if r.store == nil {
		return
	}
	var size int64
	if data, err := r.sess.Report(); err == nil {
		size = int64(len(data))
	}
	if err := r.store.Record(req.Context(), history.EntryFrom(result, size)); err != nil {
		logger.Log.WithError(err).Warn("record history")
	}
}

func (r *Router) reportDownload(w http.ResponseWriter, req *http.Request) {
	data, err := r.sess.Report()
	if err != nil {
		var noReport *session.NoReportError
		if errors.As(err, &noReport) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	if _, err := w.Write(data); err != nil {
		logger.Log.WithError(err).Warn("write report")
	}
}

func (r *Router) history(w http.ResponseWriter, req *http.Request) {
	if r.store == nil {
		respondJSON(w, http.StatusOK, []history.Entry{})
		return
	}
	entries, err := r.store.Recent(req.Context(), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if r.store != nil {
		if err := r.store.Health(req.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) metrics(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, metrics.Snapshot())
}

// statusFor maps the error taxonomy onto response codes: bad input is the
// caller's fault, everything upstream is a gateway problem.
func statusFor(err error) int {
	var validation *analyzer.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Warn("write json")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
