package extraction

import (
	"strings"

	"github.com/kirillkom/certextract/internal/core/domain"
)

var (
	techReviewDate  = mustPattern(`FECHA REVISIÓN:\s*(\d{1,2}\s+[A-ZÁÉÍÓÚÑ]+\s+\d{4})`)
	techReviewPlant = mustPattern(`PLANTA:\s*([A-Z0-9-]+)`)
	techReviewPlate = mustPattern(`PLACA PATENTE\s+((?:[A-Z0-9ÁÉÍÓÚÑ\-]+\s*){1,3})`)

	// Some layouts repeat the review-date label (and value) right after
	// VÁLIDO HASTA before printing the month and year.
	techReviewValidUntilEmbedded = mustPattern(`VÁLIDO HASTA\s*FECHA REVISIÓN:\s*(?:\d{1,2}\s+[A-ZÁÉÍÓÚÑ]+\s+\d{4}\s+)?([A-ZÁÉÍÓÚÑ]+\s+\d{4})`)
	techReviewValidUntilDirect   = mustPattern(`VÁLIDO HASTA\s*:?\s*([A-ZÁÉÍÓÚÑ]+\s+\d{4})`)
)

var plateNoiseTokens = []string{"FIRMA", "ELECTR"}

func extractTechReview(text string, _ bool) Extraction {
	validUntil, ok := Search(text, techReviewValidUntilEmbedded)
	if !ok {
		validUntil = searchOr(text, techReviewValidUntilDirect, "")
	}

	return Extraction{Fields: domain.ExtractedRecord{
		domain.FieldReviewDate:  searchOr(text, techReviewDate, ""),
		domain.FieldPlant:       searchOr(text, techReviewPlant, ""),
		domain.FieldPlateNumber: cleanPlate(searchOr(text, techReviewPlate, "")),
		domain.FieldValidUntil:  validUntil,
	}}
}

// cleanPlate keeps the first token that is not part of the electronic
// signature caption printed next to the plate.
func cleanPlate(raw string) string {
	for _, token := range strings.Fields(raw) {
		upper := strings.ToUpper(token)
		noisy := false
		for _, noise := range plateNoiseTokens {
			if strings.Contains(upper, noise) {
				noisy = true
				break
			}
		}
		if !noisy {
			return token
		}
	}
	return ""
}
