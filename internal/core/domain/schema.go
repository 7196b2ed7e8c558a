package domain

// ColumnType is the storage type a field is coerced to before insertion.
type ColumnType string

const (
	ColumnDate  ColumnType = "date"
	ColumnInt   ColumnType = "int"
	ColumnFloat ColumnType = "float"
	ColumnBit   ColumnType = "bit"
	ColumnText  ColumnType = "text"
)

// FieldSpec describes one extracted field and where it lands in storage.
type FieldSpec struct {
	Key      string
	Label    string
	Column   string
	Type     ColumnType
	Required bool
}

// FormatSchema is the fixed field layout and storage table of a format.
type FormatSchema struct {
	Format DocumentFormat
	Table  string
	Fields []FieldSpec
}

// Keys returns field keys in extraction order.
func (s FormatSchema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// ColumnFor maps a field key to its storage column name.
func (s FormatSchema) ColumnFor(key string) (string, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Column, true
		}
	}
	return "", false
}

func (s FormatSchema) RequiredColumns() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Column)
		}
	}
	return out
}

const (
	FieldEmissionDate        = "EmissionDate"
	FieldCorrelativeNumber   = "CorrelativeNumber"
	FieldTechnicalReportCode = "TechnicalReportCode"
	FieldPlateNumber         = "PlateNumber"
	FieldValidUntil          = "ValidUntil"
	FieldVehicleType         = "VehicleType"
	FieldBrand               = "Brand"
	FieldYear                = "Year"
	FieldModel               = "Model"
	FieldColor               = "Color"
	FieldVIN                 = "VIN"
	FieldEngineNumber        = "EngineNumber"
	FieldSignedBy            = "SignedBy"

	FieldReviewDate = "ReviewDate"
	FieldPlant      = "Plant"

	FieldRVMRegistration = "RVMRegistration"
	FieldUnderCode       = "UnderCode"
	FieldTaxID           = "TaxId"
	FieldEffectiveFrom   = "EffectiveFrom"
	FieldEffectiveUntil  = "EffectiveUntil"
	FieldPolicyNumber    = "PolicyNumber"
	FieldPremium         = "Premium"

	FieldUniquePlate         = "UniquePlate"
	FieldSIICode             = "SIICode"
	FieldPermitValue         = "PermitValue"
	FieldFullPayment         = "FullPayment"
	FieldInstallment1Payment = "Installment1Payment"
	FieldInstallment2Payment = "Installment2Payment"
	FieldTotalDue            = "TotalDue"
	FieldIssueDate           = "IssueDate"
	FieldDueDate             = "DueDate"
	FieldPaymentMethod       = "PaymentMethod"
)

var schemas = map[DocumentFormat]FormatSchema{
	FormatHomologation: {
		Format: FormatHomologation,
		Table:  "certificado_homologacion",
		Fields: []FieldSpec{
			{Key: FieldEmissionDate, Label: "Fecha de Emisión", Column: "FechaDeEmision", Type: ColumnDate, Required: true},
			{Key: FieldCorrelativeNumber, Label: "Nº Correlativo", Column: "NumeroCorrelativo", Type: ColumnText, Required: true},
			{Key: FieldTechnicalReportCode, Label: "Código Informe Técnico", Column: "CodigoInformeTecnico", Type: ColumnText, Required: true},
			{Key: FieldPlateNumber, Label: "Patente", Column: "Patente", Type: ColumnText, Required: true},
			{Key: FieldValidUntil, Label: "Válido Hasta", Column: "ValidoHasta", Type: ColumnDate, Required: true},
			{Key: FieldVehicleType, Label: "Tipo de Vehículo", Column: "TipoDeVehiculo", Type: ColumnText},
			{Key: FieldBrand, Label: "Marca", Column: "Marca", Type: ColumnText},
			{Key: FieldYear, Label: "Año", Column: "Ano", Type: ColumnInt},
			{Key: FieldModel, Label: "Modelo", Column: "Modelo", Type: ColumnText},
			{Key: FieldColor, Label: "Color", Column: "Color", Type: ColumnText},
			{Key: FieldVIN, Label: "VIN", Column: "VIN", Type: ColumnText},
			{Key: FieldEngineNumber, Label: "Nº Motor", Column: "NumeroMotor", Type: ColumnText},
			{Key: FieldSignedBy, Label: "Firmado por", Column: "FirmadoPor", Type: ColumnText},
		},
	},
	FormatTechReview: {
		Format: FormatTechReview,
		Table:  "certificado_revision_tecnica",
		Fields: []FieldSpec{
			{Key: FieldReviewDate, Label: "Fecha de Revisión", Column: "FechaRevision", Type: ColumnDate, Required: true},
			{Key: FieldPlant, Label: "Planta", Column: "Planta", Type: ColumnText, Required: true},
			{Key: FieldPlateNumber, Label: "Placa Patente", Column: "PlacaPatente", Type: ColumnText, Required: true},
			{Key: FieldValidUntil, Label: "Válido Hasta", Column: "ValidoHasta", Type: ColumnDate, Required: true},
		},
	},
	FormatInsurance: {
		Format: FormatInsurance,
		Table:  "seguro_obligatorio_soap",
		Fields: []FieldSpec{
			{Key: FieldRVMRegistration, Label: "INSCRIPCION R.V.M", Column: "InscripcionRVM", Type: ColumnText, Required: true},
			{Key: FieldUnderCode, Label: "Bajo el codigo", Column: "BajoElCodigo", Type: ColumnText},
			{Key: FieldTaxID, Label: "RUT", Column: "RUT", Type: ColumnText, Required: true},
			{Key: FieldEffectiveFrom, Label: "RIGE DESDE", Column: "RigeDesde", Type: ColumnDate, Required: true},
			{Key: FieldEffectiveUntil, Label: "HASTA", Column: "Hasta", Type: ColumnDate, Required: true},
			{Key: FieldPolicyNumber, Label: "POLIZA N°", Column: "PolizaN", Type: ColumnText},
			{Key: FieldPremium, Label: "PRIMA", Column: "Prima", Type: ColumnFloat},
		},
	},
	FormatCirculationPermit: {
		Format: FormatCirculationPermit,
		Table:  "permiso_circulacion",
		Fields: []FieldSpec{
			{Key: FieldUniquePlate, Label: "Placa Única", Column: "PlacaUnica", Type: ColumnText, Required: true},
			{Key: FieldSIICode, Label: "Código SII", Column: "CodigoSII", Type: ColumnText},
			{Key: FieldPermitValue, Label: "Valor Permiso", Column: "ValorPermiso", Type: ColumnInt},
			{Key: FieldFullPayment, Label: "Pago total", Column: "PagoTotal", Type: ColumnBit},
			{Key: FieldInstallment1Payment, Label: "Pago Cuota 1", Column: "PagoCuota1", Type: ColumnBit},
			{Key: FieldInstallment2Payment, Label: "Pago Cuota 2", Column: "PagoCuota2", Type: ColumnBit},
			{Key: FieldTotalDue, Label: "Total a pagar", Column: "TotalAPagar", Type: ColumnInt},
			{Key: FieldIssueDate, Label: "Fecha de emisión", Column: "FechaEmision", Type: ColumnDate, Required: true},
			{Key: FieldDueDate, Label: "Fecha de vencimiento", Column: "FechaVencimiento", Type: ColumnDate, Required: true},
			{Key: FieldPaymentMethod, Label: "Forma de Pago", Column: "FormaDePago", Type: ColumnText},
		},
	},
}

// Schema returns the static layout of a known format.
func Schema(f DocumentFormat) (FormatSchema, bool) {
	s, ok := schemas[f]
	return s, ok
}
