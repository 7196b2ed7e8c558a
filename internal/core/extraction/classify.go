package extraction

import (
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
)

type classifierRule struct {
	format  domain.DocumentFormat
	matches func(upper string) bool
}

func containsAll(upper string, markers ...string) bool {
	for _, m := range markers {
		if !strings.Contains(upper, m) {
			return false
		}
	}
	return true
}

func containsAny(upper string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// Rules are evaluated in order; the first match wins.
var classifierRules = []classifierRule{
	{
		format: domain.FormatHomologation,
		matches: func(upper string) bool {
			return strings.Contains(upper, "CERTIFICADO DE HOMOLOGACIÓN")
		},
	},
	{
		format: domain.FormatTechReview,
		matches: func(upper string) bool {
			return containsAll(upper, "CERTIFICADO DE REVISIÓN TÉCNICA", "NOMBRE DEL PROPIETARIO") ||
				containsAll(upper, "FECHA REVISIÓN", "PLANTA:")
		},
	},
	{
		format: domain.FormatInsurance,
		matches: func(upper string) bool {
			return containsAny(upper, "SEGURO OBLIGATORIO", "SOAP", "INSCRIPCION R.V.M", "POLIZA")
		},
	},
	{
		format: domain.FormatCirculationPermit,
		matches: func(upper string) bool {
			return containsAll(upper, "PERMISO DE CIRCULACIÓN", "PLACA")
		},
	},
}

// Classify assigns a format from marker phrases. It never fails; text that
// matches no rule is FormatUnknown.
func Classify(text string) domain.DocumentFormat {
	upper := strings.ToUpper(text)
	for _, rule := range classifierRules {
		if rule.matches(upper) {
			return rule.format
		}
	}
	return domain.FormatUnknown
}
