package coerce

import (
	"github.com/kirillkom/certextract/internal/core/domain"
)

// Row is one typed insert, values ordered like the schema columns.
type Row struct {
	Columns []string
	Values  []any
}

// RowFromColumns coerces values keyed by storage column name. Missing
// columns coerce like empty strings; unparseable dates become NULL.
func RowFromColumns(schema domain.FormatSchema, values map[string]string) Row {
	row := Row{
		Columns: make([]string, 0, len(schema.Fields)),
		Values:  make([]any, 0, len(schema.Fields)),
	}
	for _, field := range schema.Fields {
		row.Columns = append(row.Columns, field.Column)
		row.Values = append(row.Values, Value(field.Type, values[field.Column]))
	}
	return row
}

// RowFromRecord coerces an extracted record keyed by field key.
func RowFromRecord(schema domain.FormatSchema, record domain.ExtractedRecord) Row {
	byColumn := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		byColumn[field.Column] = record[field.Key]
	}
	return RowFromColumns(schema, byColumn)
}

// Value converts one raw string to the Go value stored for typ.
func Value(typ domain.ColumnType, raw string) any {
	if raw == domain.AbsentValue {
		raw = ""
	}
	switch typ {
	case domain.ColumnDate:
		t, ok := ParseDate(raw)
		if !ok {
			return nil
		}
		return t
	case domain.ColumnInt:
		return Int(raw)
	case domain.ColumnFloat:
		return Float(raw)
	case domain.ColumnBit:
		return Bit(raw)
	default:
		return raw
	}
}
