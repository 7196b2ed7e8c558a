package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/naming"
	"github.com/kirillkom/certextract/internal/core/usecase"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

type failureView struct {
	File      string `json:"file"`
	Error     string `json:"error"`
	ErrorHTML string `json:"error_html"`
}

// resultView is one successful record. Patterns is only present when the
// caller asked for them and the format provides a table.
type resultView struct {
	File     string                     `json:"file"`
	Format   domain.DocumentFormat      `json:"format"`
	Fields   domain.ExtractedRecord     `json:"fields"`
	Title    string                     `json:"title,omitempty"`
	Patterns map[string]string          `json:"patterns,omitempty"`
	Warnings []domain.ValidationWarning `json:"warnings,omitempty"`
}

type conversionView struct {
	Done      bool          `json:"done"`
	Total     int           `json:"total"`
	Successes int           `json:"successes"`
	Results   []resultView  `json:"results"`
	Failures  []failureView `json:"failures"`
	Message   string        `json:"message,omitempty"`
	FileName  string        `json:"file_name,omitempty"`
	ExportID  string        `json:"export_id,omitempty"`
	ExportURL string        `json:"export_url,omitempty"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// convert runs a batch conversion. With Accept: text/event-stream the
// progress is streamed and the spreadsheet is left for /v1/exports;
// otherwise the spreadsheet is the response body.
func (rt *Router) convert(w http.ResponseWriter, r *http.Request) {
	req, err := rt.readConvertRequest(w, r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(rt.service, len(req.Files))
	}

	if wantsEventStream(r) {
		rt.convertStream(w, r, req)
		return
	}

	conv, err := rt.services.Converter.Convert(r.Context(), req, nil)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if conv.Spreadsheet == nil {
		writeJSON(w, http.StatusUnprocessableEntity, newConversionView(conv))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", naming.ContentDisposition(conv.FileName))
	w.Header().Set("X-Conversion-Succeeded", strconv.Itoa(len(conv.Batch.Successes())))
	w.Header().Set("X-Conversion-Failed", strconv.Itoa(len(conv.Batch.Failures())))
	if conv.ExportID != "" {
		w.Header().Set("X-Export-Id", conv.ExportID)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(conv.Spreadsheet)
}

func (rt *Router) convertStream(w http.ResponseWriter, r *http.Request, req domain.ConvertRequest) {
	stream, err := newEventStream(w)
	if err != nil {
		writeJSON(w, http.StatusNotAcceptable, map[string]string{"error": err.Error()})
		return
	}

	conv, err := rt.services.Converter.Convert(r.Context(), req, func(event domain.ProgressEvent) {
		if event.Error != "" {
			_ = stream.send(progressView{ProgressEvent: event, ErrorHTML: HighlightMismatch(event.Error)})
			return
		}
		_ = stream.send(progressView{ProgressEvent: event})
	})
	if err != nil {
		_ = stream.send(map[string]any{"done": true, "error": err.Error()})
		return
	}
	_ = stream.send(newConversionView(conv))
}

type progressView struct {
	domain.ProgressEvent
	ErrorHTML string `json:"error_html,omitempty"`
}

func newConversionView(conv *domain.Conversion) conversionView {
	failures := conv.Batch.Failures()
	successes := conv.Batch.Successes()
	view := conversionView{
		Done:      true,
		Total:     len(conv.Batch.Outcomes),
		Successes: len(successes),
		Results:   make([]resultView, 0, len(successes)),
		Failures:  make([]failureView, 0, len(failures)),
		Message:   conv.Message,
		FileName:  conv.FileName,
		ExportID:  conv.ExportID,
		ElapsedMS: conv.Batch.Elapsed.Milliseconds(),
	}
	if conv.ExportID != "" {
		view.ExportURL = "/v1/exports/" + conv.ExportID
	}
	for _, o := range successes {
		view.Results = append(view.Results, resultView{
			File:     o.FileName,
			Format:   o.Result.Format,
			Fields:   o.Result.Fields,
			Title:    o.Result.Title,
			Patterns: o.Result.Patterns,
			Warnings: o.Result.Warnings,
		})
	}
	for _, f := range failures {
		view.Failures = append(view.Failures, failureView{
			File:      f.FileName,
			Error:     f.Error,
			ErrorHTML: HighlightMismatch(f.Error),
		})
	}
	return view
}

func (rt *Router) readConvertRequest(w http.ResponseWriter, r *http.Request) (domain.ConvertRequest, error) {
	maxFiles := rt.cfg.MaxBatchFiles
	if maxFiles <= 0 {
		maxFiles = 100
	}
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*rt.maxFileSize()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ConvertRequest{}, err
		}
		return domain.ConvertRequest{}, domain.WrapError(domain.ErrInvalidInput, "parse multipart", err)
	}

	expected, ok := parseFormatField(r.FormValue("format"))
	if !ok {
		return domain.ConvertRequest{}, domain.WrapError(domain.ErrInvalidInput, "parse format", fmt.Errorf("unknown format %q", r.FormValue("format")))
	}

	headers := r.MultipartForm.File["pdf"]
	if len(headers) == 0 {
		return domain.ConvertRequest{}, domain.WrapError(domain.ErrInvalidInput, "convert", errors.New("multipart field 'pdf' is required"))
	}
	if len(headers) > maxFiles {
		return domain.ConvertRequest{}, domain.WrapError(domain.ErrInvalidInput, "convert", fmt.Errorf("at most %d files per request", maxFiles))
	}

	files := make([]domain.SourceFile, 0, len(headers))
	for _, fh := range headers {
		file, err := readPart(fh)
		if err != nil {
			return domain.ConvertRequest{}, err
		}
		if err := usecase.ValidateSourceFile(file, rt.maxFileSize()); err != nil {
			return domain.ConvertRequest{}, err
		}
		files = append(files, file)
	}

	return domain.ConvertRequest{
		Files:          files,
		ExpectedFormat: expected,
		WantPatterns:   formBool(r, "patterns"),
		IncludeStats:   formBool(r, "stats"),
		StorageHeaders: formBool(r, "storage_headers"),
	}, nil
}

func readPart(fh *multipart.FileHeader) (domain.SourceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("open part %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("read part %s: %w", fh.Filename, err)
	}
	return domain.SourceFile{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(key)))
	return err == nil && v
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// HighlightMismatch escapes an error message for HTML display and
// emphasises the detected format of a mismatch error.
func HighlightMismatch(message string) string {
	idx := strings.Index(message, domain.MismatchMarker)
	if idx < 0 {
		return html.EscapeString(message)
	}
	head := message[:idx+len(domain.MismatchMarker)]
	tail := strings.TrimSpace(message[idx+len(domain.MismatchMarker):])
	return html.EscapeString(head) + ` <strong class="text-danger">` + html.EscapeString(tail) + `</strong>`
}

func (rt *Router) downloadExport(w http.ResponseWriter, r *http.Request) {
	if rt.services.Exports == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "exports are disabled"})
		return
	}
	rc, name, err := rt.services.Exports.OpenExport(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", naming.ContentDisposition(name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func (rt *Router) importSpreadsheet(w http.ResponseWriter, r *http.Request) {
	if rt.services.Importer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "persistence is disabled"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 4*rt.maxFileSize()+multipartOverhead)

	format, ok := parseFormatField(r.FormValue("format"))
	if !ok || format == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a known format is required"})
		return
	}
	file, _, err := r.FormFile("excel")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'excel' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	res, err := rt.services.Importer.Import(r.Context(), format, data)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("Datos ingresados correctamente en %s.", res.Table),
		"table":    res.Table,
		"inserted": res.Inserted,
	})
}

type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming is not supported by response writer")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &eventStream{w: w, flusher: flusher}, nil
}

func (s *eventStream) send(payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", raw); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
