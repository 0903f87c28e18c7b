package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
)

// parseTables decodes the small GTFS tables the catalog needs. stop_times.txt
// is read separately, one row at a time.
func parseTables(r *zip.Reader, logger *slog.Logger) (*Feed, error) {
	feed := &Feed{}

	var err error
	for _, f := range r.File {
		switch f.Name {
		case "routes.txt":
			feed.Routes, err = readAll[Route](f)
		case "stops.txt":
			feed.Stops, err = readAll[Stop](f)
		case "trips.txt":
			feed.Trips, err = readAll[Trip](f)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
		}
	}

	logger.Info("GTFS tables parsed",
		"routes", len(feed.Routes),
		"stops", len(feed.Stops),
		"trips", len(feed.Trips),
	)
	return feed, nil
}

// table reads rows of a GTFS CSV file into T, matching header names
// against T's `csv` struct tags. Unknown columns are ignored.
type table[T any] struct {
	rc      io.ReadCloser
	reader  *csv.Reader
	columns []column
}

// column maps a CSV position to a struct field.
type column struct {
	csvIndex   int
	fieldIndex int
}

func openTable[T any](f *zip.File) (*table[T], error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	reader := csv.NewReader(rc)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\xef\xbb\xbf")
	}

	return &table[T]{rc: rc, reader: reader, columns: columnsFor[T](header)}, nil
}

// Next returns the next row, or io.EOF after the last one.
func (t *table[T]) Next() (T, error) {
	var row T
	record, err := t.reader.Read()
	if err != nil {
		return row, err
	}
	v := reflect.ValueOf(&row).Elem()
	for _, c := range t.columns {
		if c.csvIndex < len(record) {
			v.Field(c.fieldIndex).SetString(strings.TrimSpace(record[c.csvIndex]))
		}
	}
	return row, nil
}

func (t *table[T]) Close() error {
	return t.rc.Close()
}

// each calls fn for every row of f.
func each[T any](f *zip.File, fn func(T)) error {
	t, err := openTable[T](f)
	if err != nil {
		return err
	}
	defer t.Close()

	for {
		row, err := t.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		fn(row)
	}
}

func readAll[T any](f *zip.File) ([]T, error) {
	var rows []T
	err := each(f, func(row T) { rows = append(rows, row) })
	return rows, err
}

func columnsFor[T any](header []string) []column {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	byTag := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("csv"); tag != "" {
			byTag[tag] = i
		}
	}

	var cols []column
	for i, name := range header {
		if field, ok := byTag[strings.TrimSpace(name)]; ok {
			cols = append(cols, column{csvIndex: i, fieldIndex: field})
		}
	}
	return cols
}
