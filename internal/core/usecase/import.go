package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/certextract/internal/core/coerce"
	"github.com/kirillkom/certextract/internal/core/domain"
	"github.com/kirillkom/certextract/internal/core/ports"
)

// ImportUseCase loads a consolidated spreadsheet into the format's table.
type ImportUseCase struct {
	reader ports.SpreadsheetReader
	store  ports.RecordStore
	logger *slog.Logger
}

func NewImportUseCase(reader ports.SpreadsheetReader, store ports.RecordStore, logger *slog.Logger) *ImportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportUseCase{reader: reader, store: store, logger: logger}
}

// Import accepts headers as storage column names or display labels. Every
// required column must be present and at least one data row must follow
// the header.
func (uc *ImportUseCase) Import(ctx context.Context, format domain.DocumentFormat, data []byte) (*domain.ImportResult, error) {
	schema, ok := domain.Schema(format)
	if !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "import spreadsheet", fmt.Errorf("format %q", format))
	}

	rows, err := uc.reader.ReadRows(ctx, data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read spreadsheet", err)
	}
	if len(rows) < 2 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import spreadsheet", errors.New("spreadsheet does not contain enough rows"))
	}

	columns, err := mapHeaders(schema, rows[0])
	if err != nil {
		return nil, err
	}

	typed := make([]coerce.Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		values := make(map[string]string, len(columns))
		for idx, column := range columns {
			if idx < len(cells) {
				values[column] = strings.TrimSpace(cells[idx])
			}
		}
		typed = append(typed, coerce.RowFromColumns(schema, values))
	}
	if len(typed) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import spreadsheet", errors.New("spreadsheet does not contain enough rows"))
	}

	inserted, err := uc.store.InsertRows(ctx, schema, typed)
	if err != nil {
		return nil, fmt.Errorf("insert rows: %w", err)
	}

	uc.logger.Info("spreadsheet_imported", "format", format, "table", schema.Table, "rows", inserted)
	return &domain.ImportResult{Format: format, Table: schema.Table, Inserted: inserted}, nil
}

// mapHeaders returns header index -> storage column for recognised headers.
func mapHeaders(schema domain.FormatSchema, header []string) (map[int]string, error) {
	byName := make(map[string]string, len(schema.Fields)*2)
	for _, f := range schema.Fields {
		byName[strings.ToLower(f.Column)] = f.Column
		byName[strings.ToLower(f.Label)] = f.Column
	}

	columns := make(map[int]string, len(header))
	found := make(map[string]bool, len(header))
	for idx, h := range header {
		if column, ok := byName[strings.ToLower(strings.TrimSpace(h))]; ok {
			columns[idx] = column
			found[column] = true
		}
	}

	var missing []string
	for _, column := range schema.RequiredColumns() {
		if !found[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"import spreadsheet",
			fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")),
		)
	}
	return columns, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
