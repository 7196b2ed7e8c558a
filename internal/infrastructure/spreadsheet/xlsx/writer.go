package xlsx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html"

	"github.com/kirillkom/certextract/internal/core/domain"
)

const (
	DataSheet  = "Datos"
	StatsSheet = "Estadisticas"

	widthFactor = 1.2
	minWidth    = 10.0

	successFill = "C6EFCE"
	failureFill = "FFC7CE"
)

var ErrEmptyWorkbook = errors.New("no se encontraron datos para generar el Excel")

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the data sheet and, when book.Stats is set, the statistics
// sheet. A workbook without rows is only written if it carries statistics.
func (w *Writer) Write(ctx context.Context, book domain.Workbook) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(book.Rows) == 0 && book.Stats == nil {
		return nil, ErrEmptyWorkbook
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return nil, fmt.Errorf("rename data sheet: %w", err)
	}
	if err := writeData(f, book); err != nil {
		return nil, err
	}
	if book.Stats != nil {
		if err := writeStats(f, *book.Stats); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeData(f *excelize.File, book domain.Workbook) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for col, header := range book.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(DataSheet, cell, header); err != nil {
			return fmt.Errorf("write header %q: %w", header, err)
		}
	}
	if len(book.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(book.Headers), 1)
		_ = f.SetCellStyle(DataSheet, "A1", last, headerStyle)
	}

	for r, row := range book.Rows {
		for col := range book.Headers {
			value := ""
			if col < len(row) {
				value = row[col]
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if err := f.SetCellStr(DataSheet, cell, value); err != nil {
				return fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	for col, width := range columnWidths(book.Headers, book.Rows) {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(DataSheet, name, name, width); err != nil {
			return fmt.Errorf("set width %s: %w", name, err)
		}
	}
	return nil
}

// columnWidths sizes each column to its longest value times widthFactor,
// never below minWidth.
func columnWidths(headers []string, rows [][]string) []float64 {
	widths := make([]float64, len(headers))
	for col, header := range headers {
		longest := utf8.RuneCountInString(header)
		for _, row := range rows {
			if col < len(row) {
				if n := utf8.RuneCountInString(row[col]); n > longest {
					longest = n
				}
			}
		}
		widths[col] = max(float64(longest)*widthFactor, minWidth)
	}
	return widths
}

func writeStats(f *excelize.File, stats domain.WorkbookStats) error {
	if _, err := f.NewSheet(StatsSheet); err != nil {
		return fmt.Errorf("create stats sheet: %w", err)
	}

	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("create title style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create bold style: %w", err)
	}
	success, err := fillStyle(f, successFill)
	if err != nil {
		return err
	}
	failure, err := fillStyle(f, failureFill)
	if err != nil {
		return err
	}

	cells := []struct {
		cell  string
		value any
		style int
	}{
		{"A1", "Estadísticas de Conversión", title},
		{"A3", "Total de archivos", bold},
		{"B3", stats.Total, 0},
		{"A4", "Convertidos exitosamente", bold},
		{"B4", stats.Succeeded, success},
		{"A5", "Fallidos", bold},
		{"B5", stats.Failed, failure},
		{"A7", "Archivos Fallidos", title},
		{"A8", "Nombre Archivo", bold},
		{"B8", "Error", bold},
	}
	for _, c := range cells {
		if err := f.SetCellValue(StatsSheet, c.cell, c.value); err != nil {
			return fmt.Errorf("write %s: %w", c.cell, err)
		}
		if c.style != 0 {
			_ = f.SetCellStyle(StatsSheet, c.cell, c.cell, c.style)
		}
	}
	_ = f.MergeCell(StatsSheet, "A1", "B1")

	for i, failed := range stats.Failures {
		row := 9 + i
		_ = f.SetCellStr(StatsSheet, fmt.Sprintf("A%d", row), failed.FileName)
		_ = f.SetCellStr(StatsSheet, fmt.Sprintf("B%d", row), StripMarkup(failed.Error))
	}

	_ = f.SetColWidth(StatsSheet, "A", "A", 40)
	_ = f.SetColWidth(StatsSheet, "B", "B", 80)
	return nil
}

func fillStyle(f *excelize.File, color string) (int, error) {
	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return 0, fmt.Errorf("create fill style %s: %w", color, err)
	}
	return id, nil
}

// StripMarkup returns the text content of an HTML fragment.
func StripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(tokenizer.Text())
		}
	}
}
