package tabular

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tsawler/textmetrics"
)

// ReadReport loads rows from a report previously written as xlsx, csv or
// json. The failed flag survives only in json reports.
func ReadReport(path string) ([]textmetrics.Row, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	return DecodeReport(f, format)
}

// DecodeReport reads rows in the given format from r.
func DecodeReport(r io.Reader, format Format) ([]textmetrics.Row, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case JSON:
		var rows []textmetrics.Row
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		return rows, nil
	case XLSX:
		records, err = xlsxRecords(r)
	case CSV:
		records, err = csvRecords(r)
	default:
		return nil, fmt.Errorf("cannot read %s reports", format)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromRecords(records)
}

func rowsFromRecords(records [][]string) ([]textmetrics.Row, error) {
	if len(records) == 0 {
		return nil, nil
	}
	idx := columnIndex(records[0])
	cols := make([]int, len(textmetrics.Columns))
	for i, name := range textmetrics.Columns {
		c, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("report has no %q column", name)
		}
		cols[i] = c
	}

	rows := make([]textmetrics.Row, 0, len(records)-1)
	for n, record := range records[1:] {
		values := make([]float64, 0, len(cols)-2)
		for _, c := range cols[2:] {
			s := cell(record, c)
			if s == "" {
				values = append(values, 0)
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %q: %w", n+2, s, err)
			}
			values = append(values, v)
		}
		fv, err := textmetrics.FeatureVectorFromValues(values)
		if err != nil {
			return nil, err
		}
		rows = append(rows, textmetrics.Row{
			ID:       cell(record, cols[0]),
			URL:      cell(record, cols[1]),
			Features: fv,
		})
	}
	return rows, nil
}
