package extraction

import (
	"regexp"

	"github.com/kirillkom/certextract/internal/core/domain"
)

var permitPatterns = map[string]*regexp.Regexp{
	domain.FieldUniquePlate:         mustPattern(`Placa\s+Única\s*[:\-]?\s*([A-Z0-9\-]+)`),
	domain.FieldSIICode:             mustPattern(`Codigo\s+SII\s*[:\-]?\s*([A-Z0-9]+)`),
	domain.FieldPermitValue:         mustPattern(`Valor\s+Permiso\s*[:\-]?\s*(\d+)`),
	domain.FieldFullPayment:         mustPattern(`Pago\s+total\s*[:\-]?\s*(X)?`),
	domain.FieldInstallment1Payment: mustPattern(`Pago\s+cuota\s+1\s*[:\-]?\s*(X)?`),
	domain.FieldInstallment2Payment: mustPattern(`Pago\s+cuota\s+2\s*[:\-]?\s*(X)?`),
	domain.FieldTotalDue:            mustPattern(`Total\s+a\s+pagar\s*[:\-]?\s*(\d+)`),
	domain.FieldIssueDate:           mustPattern(`Fecha\s+emisi[oó]n\s*[:\-]?\s*(\d{2}/\d{2}/\d{4})`),
	domain.FieldDueDate:             mustPattern(`Fecha\s+Vencimiento\s*[:\-]?\s*(\d{2}/\d{2}/\d{4})`),
	domain.FieldPaymentMethod:       mustPattern(`Forma\s+de\s+Pago\s*[:\-]?\s*(\w+)`),
}

func extractPermit(text string, wantPatterns bool) Extraction {
	schema, _ := domain.Schema(domain.FormatCirculationPermit)
	fields := make(domain.ExtractedRecord, len(schema.Fields))
	for _, key := range schema.Keys() {
		value := searchOr(text, permitPatterns[key], "")
		if value == "" {
			value = domain.NotApplicable
		}
		fields[key] = value
	}

	out := Extraction{Fields: fields}
	if wantPatterns {
		out.Patterns = make(map[string]string, len(permitPatterns))
		for key, pattern := range permitPatterns {
			out.Patterns[key] = pattern.String()
		}
	}
	return out
}
