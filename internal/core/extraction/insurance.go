package extraction

import (
	"regexp"
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
)

var insurancePatterns = map[string]*regexp.Regexp{
	domain.FieldRVMRegistration: mustPattern(`INSCRIPCION\s*R\s*\.?\s*V\s*\.?\s*M\s*\.?\s*:\s*([A-Z0-9\-]+)`),
	domain.FieldUnderCode:       mustPattern(`Bajo\s+el\s+c[óo]digo\s*[:\-]?\s*([A-Z0-9\-]+)`),
	domain.FieldEffectiveFrom:   mustPattern(`RIGE\s+DESDE\s*[:\-]?\s*(\d{2}[-/]\d{2}[-/]\d{4})`),
	domain.FieldEffectiveUntil:  mustPattern(`HAST(?:\s*A)?\s*[:\-]?\s*(\d{2}[-/]\d{2}[-/]\d{4}|[A-Z]+\s+\d{4})`),
	domain.FieldPolicyNumber:    mustPattern(`POLI[ZS]A\s*N[°º]?\s*[:\-]?\s*([A-Z0-9\-]+)`),
	domain.FieldPremium:         mustPattern(`PRIMA\s*[:\-]?\s*([\d.]+)`),
}

var insuranceTaxID = mustPattern(`RUT\s*[:\-]?\s*((?:\d{1,3}(?:\.\d{3})+)|\d{7,8})\s*-\s*([0-9K])`)

func extractInsurance(text string, _ bool) Extraction {
	schema, _ := domain.Schema(domain.FormatInsurance)
	fields := make(domain.ExtractedRecord, len(schema.Fields))
	for _, key := range schema.Keys() {
		if key == domain.FieldTaxID {
			fields[key] = extractTaxID(text)
			continue
		}
		fields[key] = searchOr(text, insurancePatterns[key], "")
	}

	for key, value := range fields {
		if value == "" {
			fields[key] = domain.AbsentValue
		}
	}
	return Extraction{Fields: fields}
}

// extractTaxID joins the numeric body and check character as digits-check.
func extractTaxID(text string) string {
	m := insuranceTaxID.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	body := strings.NewReplacer(".", "", " ", "").Replace(m[1])
	return body + "-" + strings.ToUpper(m[2])
}
