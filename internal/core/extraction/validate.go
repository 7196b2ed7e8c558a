package extraction

import (
	"regexp"

	"github.com/kirillkom/certextract/internal/core/domain"
)

// Policy decides what happens to a record with validation warnings.
type Policy int

const (
	// PolicySoft logs warnings and keeps the record.
	PolicySoft Policy = iota
	// PolicyStrict rejects the record with a ValidationError.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "soft"
}

// Rule is the expected shape of one field value.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
}

var homologationRules = []Rule{
	{Field: domain.FieldEmissionDate, Pattern: regexp.MustCompile(`^\d{1,2}/[A-Z]{3}/\d{4}$`)},
	{Field: domain.FieldCorrelativeNumber, Pattern: regexp.MustCompile(`^[A-Z0-9\-]+$`)},
	{Field: domain.FieldTechnicalReportCode, Pattern: regexp.MustCompile(`^[A-Z0-9\-]+$`)},
	{Field: domain.FieldPlateNumber, Pattern: regexp.MustCompile(`^[A-Z0-9\-]+$`)},
	{Field: domain.FieldValidUntil, Pattern: regexp.MustCompile(`^[A-Z]{3}/\d{4}$`)},
	{Field: domain.FieldVehicleType, Pattern: regexp.MustCompile(`^[A-ZÑ]+$`)},
	{Field: domain.FieldBrand, Pattern: regexp.MustCompile(`^[A-Z]+$`)},
	{Field: domain.FieldYear, Pattern: regexp.MustCompile(`^\d{4}$`)},
	{Field: domain.FieldModel, Pattern: regexp.MustCompile(`^.+$`)},
	{Field: domain.FieldColor, Pattern: regexp.MustCompile(`^[A-Z\s()0-9.\-]+\.?$`)},
	{Field: domain.FieldVIN, Pattern: regexp.MustCompile(`^[A-Z0-9]+$`)},
	{Field: domain.FieldEngineNumber, Pattern: regexp.MustCompile(`^[A-Z0-9 ]+(?:\s*[A-Za-z]+)?$`)},
	{Field: domain.FieldSignedBy, Pattern: regexp.MustCompile(`^.+$`)},
}

var techReviewRules = []Rule{
	{Field: domain.FieldReviewDate, Pattern: regexp.MustCompile(`^\d{1,2}\s+[A-ZÁÉÍÓÚÑ]+\s+\d{4}$`)},
	{Field: domain.FieldPlant, Pattern: regexp.MustCompile(`^.+$`)},
	{Field: domain.FieldPlateNumber, Pattern: regexp.MustCompile(`^[A-Z0-9]+$`)},
	{Field: domain.FieldValidUntil, Pattern: regexp.MustCompile(`(?i)^[A-ZÁÉÍÓÚÑ\s]+[0-9]{4}$`)},
}

const insuranceDate = `\d{2}[-/]\d{2}[-/]\d{4}`

var insuranceRules = []Rule{
	{Field: domain.FieldRVMRegistration, Pattern: regexp.MustCompile(`^[A-Z0-9]+(?:-[A-Z0-9]+)*$`)},
	{Field: domain.FieldUnderCode, Pattern: regexp.MustCompile(`^[A-Z0-9\-]+$`)},
	{Field: domain.FieldTaxID, Pattern: regexp.MustCompile(`^(?:\d{7,8}|\d{1,3}(?:\.\d{3})+)-[0-9kK]$`)},
	{Field: domain.FieldEffectiveFrom, Pattern: regexp.MustCompile(`^` + insuranceDate + `$`)},
	{Field: domain.FieldEffectiveUntil, Pattern: regexp.MustCompile(`(?i)^(?:` + insuranceDate + `|[A-Z]+\s+\d{4})$`)},
	{Field: domain.FieldPolicyNumber, Pattern: regexp.MustCompile(`^[A-Z0-9\-]+$`)},
	{Field: domain.FieldPremium, Pattern: regexp.MustCompile(`^[\d.]+$`)},
}

var permitRules = []Rule{
	{Field: domain.FieldUniquePlate, Pattern: regexp.MustCompile(`(?i)^[A-Z0-9\-]+$`)},
	{Field: domain.FieldSIICode, Pattern: regexp.MustCompile(`(?i)^[A-Z0-9]+$`)},
	{Field: domain.FieldPermitValue, Pattern: regexp.MustCompile(`(?i)^\d+$`)},
	{Field: domain.FieldFullPayment, Pattern: regexp.MustCompile(`(?i)^X$`)},
	{Field: domain.FieldInstallment1Payment, Pattern: regexp.MustCompile(`(?i)^X$`)},
	{Field: domain.FieldInstallment2Payment, Pattern: regexp.MustCompile(`(?i)^X$`)},
	{Field: domain.FieldTotalDue, Pattern: regexp.MustCompile(`(?i)^\d+$`)},
	{Field: domain.FieldIssueDate, Pattern: regexp.MustCompile(`(?i)^\d{2}/\d{2}/\d{4}$`)},
	{Field: domain.FieldDueDate, Pattern: regexp.MustCompile(`(?i)^\d{2}/\d{2}/\d{4}$`)},
	{Field: domain.FieldPaymentMethod, Pattern: regexp.MustCompile(`(?i)^\w+$`)},
}

func notApplicable(value string) bool {
	return value == domain.NotApplicable
}

// Check returns every missing or malformed field of record, in rule order.
// The record is never modified.
func Check(def Definition, record domain.ExtractedRecord) []domain.ValidationWarning {
	var warnings []domain.ValidationWarning
	for _, rule := range def.Rules {
		value, ok := record[rule.Field]
		if def.AlwaysValid != nil && ok && def.AlwaysValid(value) {
			continue
		}
		if !ok || value == "" || value == domain.AbsentValue {
			warnings = append(warnings, domain.ValidationWarning{Field: rule.Field, Kind: domain.WarningMissing})
			continue
		}
		if !rule.Pattern.MatchString(value) {
			warnings = append(warnings, domain.ValidationWarning{Field: rule.Field, Kind: domain.WarningMismatch, Value: value})
		}
	}
	return warnings
}
