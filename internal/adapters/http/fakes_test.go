package httpadapter

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/kirillkom/certextract/internal/config"
	"github.com/kirillkom/certextract/internal/core/domain"
)

type ingestFake struct {
	err      error
	expected domain.DocumentFormat
}

func (f *ingestFake) Upload(_ context.Context, filename, mimeType string, expected domain.DocumentFormat, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}
	f.expected = expected

	now := time.Now().UTC()
	return &domain.Document{
		ID:             "doc-1",
		Filename:       filename,
		MimeType:       mimeType,
		StoragePath:    "doc-1_" + filename,
		ExpectedFormat: expected,
		Status:         domain.StatusUploaded,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "crt.pdf", MimeType: "application/pdf", StoragePath: "x", Status: domain.StatusReady}, nil
}

// converterFake replays scripted progress events and returns conv.
type converterFake struct {
	conv   *domain.Conversion
	events []domain.ProgressEvent
	err    error
	got    domain.ConvertRequest
}

func (f *converterFake) Convert(_ context.Context, req domain.ConvertRequest, onProgress func(domain.ProgressEvent)) (*domain.Conversion, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if onProgress != nil {
		for _, e := range f.events {
			onProgress(e)
		}
	}
	return f.conv, nil
}

type exportsFake struct {
	body string
}

func (f exportsFake) OpenExport(_ context.Context, id string) (io.ReadCloser, string, error) {
	if id != "known.xlsx" {
		return nil, "", domain.WrapError(domain.ErrDocumentNotFound, "open export", errors.New(id))
	}
	return io.NopCloser(strings.NewReader(f.body)), "Certificado de Revision Tecnica (CRT).xlsx", nil
}

type importerFake struct {
	err    error
	format domain.DocumentFormat
}

func (f *importerFake) Import(_ context.Context, format domain.DocumentFormat, data []byte) (*domain.ImportResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.format = format
	return &domain.ImportResult{Format: format, Table: "permiso_circulacion", Inserted: 2}, nil
}

func testConfig() config.Config {
	return config.Config{MaxFileSizeBytes: 1 << 20, MaxBatchFiles: 3}
}
