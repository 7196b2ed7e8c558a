package domain

// SourceFileColumn is the first spreadsheet column, naming the input file.
const SourceFileColumn = "Nombre PDF"

// Workbook is the tabular content handed to a spreadsheet sink.
type Workbook struct {
	Headers []string
	Rows    [][]string
	Stats   *WorkbookStats
}

// WorkbookStats is the optional summary sheet.
type WorkbookStats struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []FailureReport
}

// ImportResult summarises a spreadsheet-to-database import.
type ImportResult struct {
	Format   DocumentFormat `json:"format"`
	Table    string         `json:"table"`
	Inserted int            `json:"inserted"`
}
