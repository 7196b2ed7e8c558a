package coerce

import (
	"testing"
	"time"

	"github.com/kirillkom/certextract/internal/core/domain"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{in: "05/MAR/2024", want: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{in: "15/ene/2025", want: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{in: "DEC/2025", want: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{in: "20240131", want: time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)},
		{in: "31/03/2025", want: time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{in: "01-03-2024", want: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{in: "MAYO 2024", want: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{in: "12 Mayo 2023", want: time.Date(2023, time.May, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if !ok || !got.Equal(tc.want) {
			t.Fatalf("ParseDate(%q) = %v ok=%v, want %v", tc.in, got, ok, tc.want)
		}
	}
}

func TestParseDateRejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"", "No aplica", "31/02/2024", "XYZ/2024", "2024-13-01", "20241340"} {
		if got, ok := ParseDate(in); ok {
			t.Fatalf("ParseDate(%q) = %v, expected failure", in, got)
		}
	}
}

func TestNumbersDefaultToZero(t *testing.T) {
	if Int("45000") != 45000 || Int("12abc") != 12 || Int("No aplica") != 0 || Int("") != 0 {
		t.Fatalf("unexpected int coercion")
	}
	if Float("8.990") != 8.99 || Float("abc") != 0 || Float(".5") != 0.5 {
		t.Fatalf("unexpected float coercion")
	}
}

func TestBit(t *testing.T) {
	for in, want := range map[string]bool{"X": true, "x": true, " 1 ": true, "No aplica": false, "0": false, "": false} {
		if got := Bit(in); got != want {
			t.Fatalf("Bit(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRowFromRecord(t *testing.T) {
	schema, _ := domain.Schema(domain.FormatCirculationPermit)
	row := RowFromRecord(schema, domain.ExtractedRecord{
		domain.FieldUniquePlate:         "ABCD12",
		domain.FieldSIICode:             domain.NotApplicable,
		domain.FieldPermitValue:         "45000",
		domain.FieldFullPayment:         domain.NotApplicable,
		domain.FieldInstallment1Payment: "X",
		domain.FieldInstallment2Payment: domain.NotApplicable,
		domain.FieldTotalDue:            "22500",
		domain.FieldIssueDate:           "01/03/2024",
		domain.FieldDueDate:             "No aplica",
		domain.FieldPaymentMethod:       "WEBPAY",
	})

	if len(row.Columns) != len(schema.Fields) || row.Columns[0] != "PlacaUnica" {
		t.Fatalf("unexpected columns %v", row.Columns)
	}
	if row.Values[2] != int64(45000) {
		t.Fatalf("unexpected permit value %#v", row.Values[2])
	}
	if row.Values[3] != false || row.Values[4] != true {
		t.Fatalf("unexpected bits %#v %#v", row.Values[3], row.Values[4])
	}
	if row.Values[8] != nil {
		t.Fatalf("expected NULL due date, got %#v", row.Values[8])
	}
	if _, ok := row.Values[7].(time.Time); !ok {
		t.Fatalf("expected parsed issue date, got %#v", row.Values[7])
	}
}

func TestValueBlanksAbsentMarker(t *testing.T) {
	if got := Value(domain.ColumnText, domain.AbsentValue); got != "" {
		t.Fatalf("expected empty text, got %#v", got)
	}
	if got := Value(domain.ColumnFloat, domain.AbsentValue); got != float64(0) {
		t.Fatalf("expected zero premium, got %#v", got)
	}
}
