package naming

import (
	"testing"

	"github.com/kirillkom/certextract/internal/core/domain"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "Certificado de Homologación: Prueba 2025", want: "Certificado de Homologacion_ Prueba 2025"},
		{in: "Seguro Obligatorio (SOAP)", want: "Seguro Obligatorio (SOAP)"},
		{in: "  JUAN PÉREZ A ", want: "JUAN PEREZ"},
		{in: "a/b\\c*d", want: "a_b_c_d"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIsFixedPoint(t *testing.T) {
	inputs := []string{
		"Certificado de Revisión Técnica (CRT)",
		"Ñandú: ¿qué? A A",
		"résumé\t A",
		"x A",
		"__--..()",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestBaseName(t *testing.T) {
	titled := domain.Outcome{FileName: "a.pdf", Result: &domain.DocumentResult{Title: "INDIVIDUAL"}}
	untitled := domain.Outcome{FileName: "b.pdf", Result: &domain.DocumentResult{}}

	if got := BaseName(domain.FormatHomologation, []domain.Outcome{titled}); got != "INDIVIDUAL" {
		t.Fatalf("expected title, got %q", got)
	}
	if got := BaseName(domain.FormatHomologation, []domain.Outcome{titled, untitled}); got != "Certificado de Homologación" {
		t.Fatalf("expected consolidated name, got %q", got)
	}
	if got := BaseName(domain.FormatUnknown, nil); got != "Consolidado" {
		t.Fatalf("expected default name, got %q", got)
	}
}

func TestSpreadsheetFileName(t *testing.T) {
	if got := SpreadsheetFileName("Permiso de Circulación"); got != "Permiso de Circulacion.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
	if got := SpreadsheetFileName("???"); got != "___.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
}
