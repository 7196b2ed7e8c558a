package extraction

import (
	"fmt"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// Extraction is the raw output of a format extractor. Patterns is only set
// for formats that expose their pattern table and only when requested.
type Extraction struct {
	Fields   domain.ExtractedRecord
	Title    string
	Patterns map[string]string
}

// Definition bundles everything the pipeline needs for one format.
type Definition struct {
	Format  domain.DocumentFormat
	Schema  domain.FormatSchema
	Extract func(text string, wantPatterns bool) Extraction
	Rules   []Rule
	Policy  Policy
	// AlwaysValid short-circuits validation for sentinel values.
	AlwaysValid func(value string) bool
}

// Lookup returns the definition of a known format.
func Lookup(f domain.DocumentFormat) (Definition, error) {
	schema, ok := domain.Schema(f)
	if !ok {
		return Definition{}, domain.WrapError(domain.ErrUnsupportedFormat, "lookup format", fmt.Errorf("format %q", f))
	}

	switch f {
	case domain.FormatHomologation:
		return Definition{Format: f, Schema: schema, Extract: extractHomologation, Rules: homologationRules, Policy: PolicySoft}, nil
	case domain.FormatTechReview:
		return Definition{Format: f, Schema: schema, Extract: extractTechReview, Rules: techReviewRules, Policy: PolicySoft}, nil
	case domain.FormatInsurance:
		return Definition{Format: f, Schema: schema, Extract: extractInsurance, Rules: insuranceRules, Policy: PolicySoft}, nil
	case domain.FormatCirculationPermit:
		return Definition{
			Format:      f,
			Schema:      schema,
			Extract:     extractPermit,
			Rules:       permitRules,
			Policy:      PolicySoft,
			AlwaysValid: notApplicable,
		}, nil
	default:
		return Definition{}, domain.WrapError(domain.ErrUnsupportedFormat, "lookup format", fmt.Errorf("format %q", f))
	}
}
