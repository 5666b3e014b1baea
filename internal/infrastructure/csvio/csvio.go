// Package csvio converts collections to and from comma-separated files.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slog"

	"assistant/internal/domain/record"
)

// ExportError reports a failed export; the destination may be missing or partial.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ImportError reports a failed import. Line is 0 for file-level failures.
type ImportError struct {
	Path string
	Line int
	Err  error
}

func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("import %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

var ErrMissingColumn = errors.New("missing column")

// Bridge logs export and import failures on behalf of its callers.
type Bridge struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Bridge {
	return &Bridge{log: log.With("component", "csv_bridge")}
}

// Export writes a header of fields followed by one row per record.
// Every value is resolved before the file is created, so an unknown field
// leaves the destination untouched.
func Export[T any, P record.Entity[T]](b *Bridge, path string, records []T, fields []string) error {
	if err := export[T, P](path, records, fields); err != nil {
		b.log.Error("ошибка при экспорте данных", "path", path, "error", err)
		return err
	}
	b.log.Info("данные экспортированы", "path", path, "records", len(records))
	return nil
}

func export[T any, P record.Entity[T]](path string, records []T, fields []string) error {
	if len(fields) == 0 {
		return &ExportError{Path: path, Err: errors.New("no fields to export")}
	}
	var probe T
	for _, f := range fields {
		if _, err := P(&probe).Field(f); err != nil {
			return &ExportError{Path: path, Err: err}
		}
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, fields)
	for i := range records {
		rec := P(&records[i])
		row := make([]string, len(fields))
		for j, f := range fields {
			v, err := rec.Field(f)
			if err != nil {
				return &ExportError{Path: path, Err: fmt.Errorf("record %d: %w", rec.GetID(), err)}
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		file.Close()
		return &ExportError{Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// Import reads a header-delimited file and builds one record per data row
// from the listed fields. Extra columns are ignored and the id column is
// never applied. Any failure aborts the import: the result is then an empty
// slice together with the error.
func Import[T any, P record.Entity[T]](b *Bridge, path string, fields []string, newRecord func() T) ([]T, error) {
	records, err := importFile[T, P](path, fields, newRecord)
	if err != nil {
		b.log.Error("ошибка при импорте данных", "path", path, "error", err)
		return []T{}, err
	}
	b.log.Info("данные импортированы", "path", path, "records", len(records))
	return records, nil
}

func importFile[T any, P record.Entity[T]](path string, fields []string, newRecord func() T) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ImportError{Path: path, Err: errors.New("empty file, header row expected")}
	}
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	index := make([]int, len(fields))
	for i, f := range fields {
		col, ok := columns[f]
		if !ok {
			return nil, &ImportError{Path: path, Line: 1, Err: fmt.Errorf("%w: %s", ErrMissingColumn, f)}
		}
		index[i] = col
	}

	records := []T{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ImportError{Path: path, Err: err}
		}
		line, _ := r.FieldPos(0)

		rec := newRecord()
		for i, f := range fields {
			if f == record.FieldID {
				continue
			}
			if err := P(&rec).SetField(f, row[index[i]]); err != nil {
				return nil, &ImportError{Path: path, Line: line, Err: err}
			}
		}
		P(&rec).SetID(0)
		records = append(records, rec)
	}

	return records, nil
}
