package extraction

import (
	"reflect"
	"testing"

	"github.com/kirillkom/certextract/internal/core/domain"
)

func TestCheckReportsMissingAndMismatchInRuleOrder(t *testing.T) {
	def := mustLookup(t, domain.FormatTechReview)
	record := domain.ExtractedRecord{
		domain.FieldReviewDate:  "12 MAYO 2023",
		domain.FieldPlant:       "",
		domain.FieldPlateNumber: "XY-789",
		domain.FieldValidUntil:  "MAYO 2024",
	}
	before := record.Clone()

	warnings := Check(def, record)
	want := []domain.ValidationWarning{
		{Field: domain.FieldPlant, Kind: domain.WarningMissing},
		{Field: domain.FieldPlateNumber, Kind: domain.WarningMismatch, Value: "XY-789"},
	}
	if !reflect.DeepEqual(warnings, want) {
		t.Fatalf("unexpected warnings: %#v", warnings)
	}
	if !reflect.DeepEqual(record, before) {
		t.Fatalf("record was mutated: %#v", record)
	}
}

func TestCheckTreatsAbsentMarkerAsMissing(t *testing.T) {
	def := mustLookup(t, domain.FormatInsurance)
	out := def.Extract("SEGURO OBLIGATORIO RUT: 97.006.000-6", false)

	warnings := Check(def, out.Fields)
	if len(warnings) != len(def.Rules)-1 {
		t.Fatalf("expected every field but TaxId to be missing, got %#v", warnings)
	}
	for _, w := range warnings {
		if w.Kind != domain.WarningMissing {
			t.Fatalf("expected missing warning, got %#v", w)
		}
		if w.Field == domain.FieldTaxID {
			t.Fatalf("TaxId must validate")
		}
	}
}

func TestCheckPermitNotApplicableAlwaysPasses(t *testing.T) {
	def := mustLookup(t, domain.FormatCirculationPermit)
	record := domain.ExtractedRecord{}
	for _, key := range def.Schema.Keys() {
		record[key] = domain.NotApplicable
	}
	if warnings := Check(def, record); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %#v", warnings)
	}

	record[domain.FieldPermitValue] = "45.000"
	warnings := Check(def, record)
	if len(warnings) != 1 || warnings[0].Field != domain.FieldPermitValue {
		t.Fatalf("expected permit value mismatch, got %#v", warnings)
	}
}

func TestCheckPermitIgnoresCase(t *testing.T) {
	def := mustLookup(t, domain.FormatCirculationPermit)
	out := def.Extract("PERMISO DE CIRCULACIÓN Placa Única: abcd12 Codigo SII: xy123", false)
	if out.Fields[domain.FieldUniquePlate] != "abcd12" || out.Fields[domain.FieldSIICode] != "xy123" {
		t.Fatalf("unexpected extraction %#v", out.Fields)
	}

	for _, w := range Check(def, out.Fields) {
		if w.Field == domain.FieldUniquePlate || w.Field == domain.FieldSIICode {
			t.Fatalf("lowercase value flagged: %#v", w)
		}
	}
}

func TestDefaultPoliciesAreSoft(t *testing.T) {
	for _, f := range domain.KnownFormats {
		if def := mustLookup(t, f); def.Policy != PolicySoft {
			t.Fatalf("expected soft policy for %s, got %s", f, def.Policy)
		}
	}
}
