package extraction

import (
	"regexp"
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
)

var homologationPatterns = map[string]*regexp.Regexp{
	domain.FieldEmissionDate:        mustPattern(`FECHA DE EMISIÓN\s+([0-9A-Z/]+)`),
	domain.FieldCorrelativeNumber:   mustPattern(`N[°º]\s*CORRELATIVO\s+([A-Z0-9\-]+)`),
	domain.FieldTechnicalReportCode: mustPattern(`CÓDIGO DE INFORME TÉCNICO\s+([A-Z0-9\-]+)`),
	domain.FieldPlateNumber:         mustPattern(`PATENTE\s+([A-Z0-9\-]+)`),
	domain.FieldValidUntil:          mustPattern(`VÁLIDO HASTA\s+([0-9A-Z/]+)`),
	domain.FieldVehicleType:         mustPattern(`TIPO DE VEHÍCULO\s+([A-ZÑ]+)`),
	domain.FieldBrand:               mustPattern(`MARCA\s+([A-Z]+)`),
	domain.FieldYear:                mustPattern(`AÑO\s+([0-9]{4})`),
	domain.FieldModel:               mustPattern(`MODELO\s+(.+?)[ \t]+COLOR`),
	// RE2 has no lookahead: the terminator is consumed instead of asserted,
	// the captured group is the same.
	domain.FieldColor:        mustPattern(`COLOR\s+([A-Z\s()0-9.\-]+?)(?:\s+VIN\b|$)`),
	domain.FieldVIN:          mustPattern(`VIN\s+([A-Z0-9]+)`),
	domain.FieldEngineNumber: mustPattern(`N[°º]\s*MOTOR\s+([A-Z0-9]+(?:\s+[A-Z0-9]+)?)`),
	domain.FieldSignedBy:     mustPattern(`Firmado por:\s+(.+?)(?:\s+AUDITORÍA|\r?\n|$)`),
}

var (
	homologationTitle  = mustPattern(`CERTIFICADO DE HOMOLOGACIÓN\s+(.*?)\s+REEMPLAZA`)
	engineNoiseSuffix  = mustPattern(`\s+(C|El)$`)
	embeddedSignerDate = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

func extractHomologation(text string, _ bool) Extraction {
	schema, _ := domain.Schema(domain.FormatHomologation)
	fields := make(domain.ExtractedRecord, len(schema.Fields))
	for _, key := range schema.Keys() {
		fields[key] = searchOr(text, homologationPatterns[key], "")
	}

	fields[domain.FieldEngineNumber] = engineNoiseSuffix.ReplaceAllString(fields[domain.FieldEngineNumber], "")
	fields[domain.FieldSignedBy] = cleanSigner(fields[domain.FieldSignedBy])

	title, _ := Search(text, homologationTitle)
	return Extraction{Fields: fields, Title: title}
}

// cleanSigner cuts the signer line at the first date glued to it.
func cleanSigner(signer string) string {
	if loc := embeddedSignerDate.FindStringIndex(signer); loc != nil {
		signer = signer[:loc[0]]
	}
	return strings.TrimSpace(signer)
}
