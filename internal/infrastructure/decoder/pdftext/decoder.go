package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/certextract/internal/core/ports"
)

const headerWindow = 1024

var (
	ErrNotPDF    = errors.New("content has no PDF header")
	ErrEncrypted = errors.New("encrypted PDF documents are not supported")

	disableConfigDir sync.Once
)

type Options struct {
	// Preflight parses the document structure with pdfcpu before text
	// extraction so malformed files fail fast with a descriptive error.
	Preflight bool
	// Fallback handles content without a PDF header. Nil rejects it.
	Fallback ports.TextDecoder
	Logger   *slog.Logger
}

// Decoder extracts the text layer of a PDF, page by page in page order.
type Decoder struct {
	preflight bool
	fallback  ports.TextDecoder
	logger    *slog.Logger
}

func NewDecoder(opts Options) *Decoder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Preflight {
		disableConfigDir.Do(api.DisableConfigDir)
	}
	return &Decoder{
		preflight: opts.Preflight,
		fallback:  opts.Fallback,
		logger:    logger,
	}
}

func (d *Decoder) Decode(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !hasPDFHeader(data) {
		if d.fallback != nil {
			return d.fallback.Decode(ctx, data)
		}
		return "", ErrNotPDF
	}

	if d.preflight {
		pages, err := inspect(data)
		if err != nil {
			return "", err
		}
		d.logger.Debug("pdf_preflight", "pages", pages, "bytes", len(data))
	}

	return extractText(ctx, data)
}

func hasPDFHeader(data []byte) bool {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, []byte("%PDF-"))
}

// inspect reads the cross reference table and page tree.
func inspect(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	if pdfCtx.Encrypt != nil {
		return 0, ErrEncrypted
	}
	return pdfCtx.PageCount, nil
}

func extractText(ctx context.Context, data []byte) (text string, err error) {
	// The content stream interpreter panics on some malformed operators.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text extraction panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}
	return strings.TrimSpace(sb.String()), nil
}
