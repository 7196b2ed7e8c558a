package extraction

import (
	"testing"

	"github.com/kirillkom/certextract/internal/core/domain"
)

func TestClassifyRules(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.DocumentFormat
	}{
		{name: "homologation", text: "certificado de homologación individual", want: domain.FormatHomologation},
		{name: "tech review by owner", text: "CERTIFICADO DE REVISIÓN TÉCNICA NOMBRE DEL PROPIETARIO JUAN", want: domain.FormatTechReview},
		{name: "tech review by plant", text: "FECHA REVISIÓN: 12 MAYO 2023 PLANTA: AB-1", want: domain.FormatTechReview},
		{name: "tech review needs both markers", text: "CERTIFICADO DE REVISIÓN TÉCNICA", want: domain.FormatUnknown},
		{name: "insurance soap", text: "seguro soap 2024", want: domain.FormatInsurance},
		{name: "insurance rvm", text: "INSCRIPCION R.V.M: AB12", want: domain.FormatInsurance},
		{name: "insurance poliza", text: "POLIZA N° 1", want: domain.FormatInsurance},
		{name: "permit", text: "Permiso de Circulación 2024 Placa Única: AB12", want: domain.FormatCirculationPermit},
		{name: "permit without plate", text: "Permiso de Circulación 2024", want: domain.FormatUnknown},
		{name: "empty", text: "", want: domain.FormatUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Fatalf("Classify() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyHomologationWinsOverInsurance(t *testing.T) {
	text := "CERTIFICADO DE HOMOLOGACIÓN SEGURO OBLIGATORIO SOAP POLIZA N° 5 FECHA REVISIÓN PLANTA:"
	if got := Classify(text); got != domain.FormatHomologation {
		t.Fatalf("expected homologation priority, got %s", got)
	}
}

func TestClassifyTechReviewWinsOverInsurance(t *testing.T) {
	text := "FECHA REVISIÓN: 1 ENERO 2024 PLANTA: X-1 POLIZA"
	if got := Classify(text); got != domain.FormatTechReview {
		t.Fatalf("expected tech review priority, got %s", got)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	text := Normalize("SEGURO OBLIGATORIO\nRUT: 97.006.000-6")
	first := Classify(text)
	if second := Classify(text); second != first {
		t.Fatalf("classification changed between calls: %s then %s", first, second)
	}
}
