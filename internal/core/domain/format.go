package domain

import "strings"

// DocumentFormat identifies one of the fixed certificate families.
type DocumentFormat string

const (
	FormatHomologation      DocumentFormat = "HOMOLOGATION"
	FormatTechReview        DocumentFormat = "TECH_REVIEW"
	FormatInsurance         DocumentFormat = "INSURANCE"
	FormatCirculationPermit DocumentFormat = "CIRCULATION_PERMIT"
	FormatUnknown           DocumentFormat = "UNKNOWN"
)

// KnownFormats lists every extractable format in classifier priority order.
var KnownFormats = []DocumentFormat{
	FormatHomologation,
	FormatTechReview,
	FormatInsurance,
	FormatCirculationPermit,
}

var legacyFormatNames = map[string]DocumentFormat{
	"CERTIFICADO_DE_HOMOLOGACION": FormatHomologation,
	"CRT":                         FormatTechReview,
	"SOAP":                        FormatInsurance,
	"PERMISO_CIRCULACION":         FormatCirculationPermit,
}

// ParseFormat accepts canonical identifiers and the legacy upload-form values.
func ParseFormat(raw string) (DocumentFormat, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	for _, f := range KnownFormats {
		if string(f) == key {
			return f, true
		}
	}
	if f, ok := legacyFormatNames[key]; ok {
		return f, true
	}
	return "", false
}

func (f DocumentFormat) Known() bool {
	switch f {
	case FormatHomologation, FormatTechReview, FormatInsurance, FormatCirculationPermit:
		return true
	default:
		return false
	}
}

// DisplayName is the human label used in messages and logs.
func (f DocumentFormat) DisplayName() string {
	switch f {
	case FormatHomologation:
		return "Certificado de Homologación"
	case FormatTechReview:
		return "Certificado de Revisión Técnica"
	case FormatInsurance:
		return "Seguro Obligatorio"
	case FormatCirculationPermit:
		return "Permiso de Circulación"
	default:
		return "Formato desconocido"
	}
}

// ConsolidatedName is the spreadsheet base name used when a batch has no
// single titled result.
func (f DocumentFormat) ConsolidatedName() string {
	switch f {
	case FormatHomologation:
		return "Certificado de Homologación"
	case FormatTechReview:
		return "Certificado de Revisión Técnica (CRT)"
	case FormatInsurance:
		return "Seguro Obligatorio (SOAP)"
	case FormatCirculationPermit:
		return "Permiso de Circulación"
	default:
		return "Consolidado"
	}
}

// NoSuccessMessage is reported when a batch finishes without a single
// successful document for the expected format.
func NoSuccessMessage(expected DocumentFormat) string {
	switch expected {
	case FormatHomologation:
		return "no document could be processed as a homologation certificate; check that the files are homologation certificates"
	case FormatTechReview:
		return "no document could be processed as a technical review certificate (CRT); check that the files are CRT documents"
	case FormatInsurance:
		return "no document could be processed as a compulsory insurance certificate (SOAP); check that the files are SOAP documents"
	case FormatCirculationPermit:
		return "no document could be processed as a circulation permit; check that the files are circulation permits"
	default:
		return "no document could be processed; check the selected format and the uploaded files"
	}
}
