package domain

// ProcessOptions tune a single pipeline run. An empty ExpectedFormat
// disables the mismatch check.
type ProcessOptions struct {
	ExpectedFormat DocumentFormat
	WantPatterns   bool
}

// ConvertRequest is a batch conversion to a consolidated spreadsheet.
type ConvertRequest struct {
	Files          []SourceFile
	ExpectedFormat DocumentFormat
	WantPatterns   bool
	IncludeStats   bool
	// StorageHeaders renames columns to the storage schema so the
	// spreadsheet can be imported back.
	StorageHeaders bool
}

// Conversion is the outcome of a batch conversion.
type Conversion struct {
	Batch       BatchResult `json:"batch"`
	Message     string      `json:"message,omitempty"`
	FileName    string      `json:"file_name,omitempty"`
	ExportID    string      `json:"export_id,omitempty"`
	Spreadsheet []byte      `json:"-"`
}
