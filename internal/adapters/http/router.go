package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/certextract/internal/config"
	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/ports"
	"github.com/kirillkom/certextract/internal/observability/metrics"
)

// ExportOpener reads back a spreadsheet stored by a previous conversion.
type ExportOpener interface {
	OpenExport(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// Services are the inbound ports served over HTTP. Importer and Ingestor
// may be nil when persistence or the queue is disabled.
type Services struct {
	Converter ports.BatchConverter
	Exports   ExportOpener
	Importer  ports.SpreadsheetImporter
	Ingestor  ports.DocumentIngestor
	Documents ports.DocumentReader
}

type Router struct {
	cfg      config.Config
	services Services
	logger   *slog.Logger
	metrics  *metrics.HTTPServerMetrics
	service  string
}

type RouterOption func(*Router)

func WithLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics, service string) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
		rt.service = service
	}
}

func NewRouter(cfg config.Config, services Services, opts ...RouterOption) *Router {
	rt := &Router{
		cfg:      cfg,
		services: services,
		logger:   slog.Default(),
		service:  "certextract-api",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/convert", rt.convert)
	api.HandleFunc("GET /v1/exports/{id}", rt.downloadExport)
	api.HandleFunc("POST /v1/imports", rt.importSpreadsheet)
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)

	var limited http.Handler = api
	limited = backpressureMiddleware(limited, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond, rt.onRejected)
	limited = rateLimitMiddleware(limited, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onRejected)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/", limited)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) onRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(rt.service, reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.services.Ingestor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "asynchronous ingestion is disabled"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxFileSize()+multipartOverhead)

	expected, ok := parseFormatField(r.FormValue("format"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown format"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if fileHeader.Size > rt.maxFileSize() {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds the maximum allowed size"})
		return
	}

	doc, err := rt.services.Ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		expected,
		file,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if rt.services.Documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "document store is disabled"})
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.services.Documents.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) maxFileSize() int64 {
	if rt.cfg.MaxFileSizeBytes > 0 {
		return rt.cfg.MaxFileSizeBytes
	}
	return 5 << 20
}

// parseFormatField accepts an empty value as "no expectation".
func parseFormatField(raw string) (domain.DocumentFormat, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", true
	}
	format, ok := domain.ParseFormat(raw)
	if !ok || !format.Known() {
		return "", false
	}
	return format, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
