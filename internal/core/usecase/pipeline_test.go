package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// decoderFake treats the file bytes as the decoded text unless an error is
// registered for them.
type decoderFake struct {
	errs map[string]error
}

func (f *decoderFake) Decode(_ context.Context, data []byte) (string, error) {
	if err, ok := f.errs[string(data)]; ok {
		return "", err
	}
	return string(data), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	homologationDoc = "CERTIFICADO DE HOMOLOGACIÓN INDIVIDUAL REEMPLAZA\nFECHA DE EMISIÓN 01/01/2025\nNº CORRELATIVO ABC-123\nPATENTE ABC123"
	techReviewDoc   = "FECHA REVISIÓN: 12 MAYO 2023\nPLANTA: ABC-123\nPLACA PATENTE XYZ789 ELECTR\nVÁLIDO HASTA: MAYO 2024"
	insuranceDoc    = "SEGURO OBLIGATORIO\nINSCRIPCION R.V.M.: AB12-3\nRUT: 97.006.000-6\nRIGE DESDE: 01-03-2024\nHASTA: 31-03-2025\nPOLIZA N° 77\nPRIMA: 8990"
	permitDoc       = "PERMISO DE CIRCULACIÓN\nPlaca Única: ABCD12\nFecha emisión: 01/03/2024\nFecha Vencimiento: 31/03/2024"
)

func TestPipelineProcessHomologation(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	res, err := uc.Process(context.Background(), domain.SourceFile{Name: "a.pdf", Data: []byte(homologationDoc)}, domain.ProcessOptions{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Format != domain.FormatHomologation {
		t.Fatalf("unexpected format %s", res.Format)
	}
	if res.Fields[domain.FieldEmissionDate] != "01/01/2025" ||
		res.Fields[domain.FieldCorrelativeNumber] != "ABC-123" ||
		res.Fields[domain.FieldPlateNumber] != "ABC123" {
		t.Fatalf("unexpected fields %#v", res.Fields)
	}
	if res.Title != "INDIVIDUAL" {
		t.Fatalf("unexpected title %q", res.Title)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected soft warnings for the missing fields")
	}
}

func TestPipelineExpectedFormatMismatch(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	_, err := uc.Process(
		context.Background(),
		domain.SourceFile{Name: "cert.pdf", Data: []byte(homologationDoc)},
		domain.ProcessOptions{ExpectedFormat: domain.FormatInsurance},
	)
	var mismatch *domain.FormatMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected FormatMismatchError, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "INSURANCE") || !strings.Contains(msg, "HOMOLOGATION") || !strings.Contains(msg, domain.MismatchMarker) {
		t.Fatalf("mismatch message must name both formats: %q", msg)
	}
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format kind")
	}
}

func TestPipelineUnknownFormat(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	_, err := uc.Process(context.Background(), domain.SourceFile{Name: "x.pdf", Data: []byte("factura electrónica")}, domain.ProcessOptions{})
	var unidentified *domain.UnidentifiedFormatError
	if !errors.As(err, &unidentified) {
		t.Fatalf("expected UnidentifiedFormatError, got %v", err)
	}
}

func TestPipelineUnknownWithExpectedIsMismatch(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	_, err := uc.Process(
		context.Background(),
		domain.SourceFile{Name: "x.pdf", Data: []byte("factura electrónica")},
		domain.ProcessOptions{ExpectedFormat: domain.FormatTechReview},
	)
	var mismatch *domain.FormatMismatchError
	if !errors.As(err, &mismatch) || mismatch.Detected != domain.FormatUnknown {
		t.Fatalf("expected mismatch against UNKNOWN, got %v", err)
	}
}

func TestPipelineDecodeErrors(t *testing.T) {
	decoder := &decoderFake{errs: map[string]error{"broken": errors.New("malformed xref")}}
	uc := NewPipelineUseCase(decoder, discardLogger(), nil)

	for _, data := range []string{"broken", "  \n\t "} {
		_, err := uc.Process(context.Background(), domain.SourceFile{Name: "scan.pdf", Data: []byte(data)}, domain.ProcessOptions{})
		var decodeErr *domain.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected DecodeError for %q, got %v", data, err)
		}
		if decodeErr.FileName != "scan.pdf" {
			t.Fatalf("unexpected file name %q", decodeErr.FileName)
		}
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Process(ctx, domain.SourceFile{Name: "a.pdf", Data: []byte(permitDoc)}, domain.ProcessOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestPipelineStrictValidationListsEveryField(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), []domain.DocumentFormat{domain.FormatTechReview})

	doc := "FECHA REVISIÓN: 12 MAYO 2023 PLANTA: ABC-123"
	_, err := uc.Process(context.Background(), domain.SourceFile{Name: "crt.pdf", Data: []byte(doc)}, domain.ProcessOptions{})
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Warnings) != 2 {
		t.Fatalf("expected plate and valid-until failures, got %#v", validationErr.Warnings)
	}
	if !strings.Contains(err.Error(), domain.FieldPlateNumber) || !strings.Contains(err.Error(), domain.FieldValidUntil) {
		t.Fatalf("message must enumerate failing fields: %q", err.Error())
	}
}

func TestPipelineSoftValidationKeepsRecord(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	res, err := uc.Process(context.Background(), domain.SourceFile{Name: "soap.pdf", Data: []byte(insuranceDoc)}, domain.ProcessOptions{ExpectedFormat: domain.FormatInsurance})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Fields[domain.FieldTaxID] != "97006000-6" {
		t.Fatalf("unexpected tax id %q", res.Fields[domain.FieldTaxID])
	}
	if res.Fields[domain.FieldUnderCode] != domain.AbsentValue {
		t.Fatalf("expected absent marker, got %q", res.Fields[domain.FieldUnderCode])
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Field != domain.FieldUnderCode {
		t.Fatalf("expected a single missing-field warning, got %#v", res.Warnings)
	}
}

func TestPipelinePermitPatternsOnRequest(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	res, err := uc.Process(context.Background(), domain.SourceFile{Name: "p.pdf", Data: []byte(permitDoc)}, domain.ProcessOptions{WantPatterns: true})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if res.Fields[domain.FieldFullPayment] != domain.NotApplicable {
		t.Fatalf("expected not applicable full payment, got %q", res.Fields[domain.FieldFullPayment])
	}
	if len(res.Patterns) == 0 {
		t.Fatalf("expected pattern table")
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("not applicable values must pass validation, got %#v", res.Warnings)
	}
}

func TestPipelineClassify(t *testing.T) {
	uc := NewPipelineUseCase(&decoderFake{}, discardLogger(), nil)

	cases := map[string]domain.DocumentFormat{
		insuranceDoc:          domain.FormatInsurance,
		permitDoc:             domain.FormatCirculationPermit,
		"factura electrónica": domain.FormatUnknown,
	}
	for text, want := range cases {
		got, err := uc.Classify(context.Background(), domain.SourceFile{Name: "a.pdf", Data: []byte(text)})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got != want {
			t.Fatalf("Classify(%q) = %s, want %s", text[:10], got, want)
		}
	}

	_, err := uc.Classify(context.Background(), domain.SourceFile{Name: "empty.pdf", Data: []byte(" ")})
	var decodeErr *domain.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
