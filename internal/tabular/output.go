package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/textmetrics"
)

// SheetName is the worksheet that reports are written to.
const SheetName = "Sheet1"

// WriteFile writes rows to path. An empty format is derived from the
// extension of path.
func WriteFile(path string, format Format, rows []textmetrics.Row) error {
	if format == "" {
		var err error
		if format, err = FormatOf(path); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := Write(f, format, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

// Write renders rows in the given format.
func Write(w io.Writer, format Format, rows []textmetrics.Row) error {
	switch format {
	case XLSX:
		return WriteXLSX(w, rows)
	case CSV:
		return WriteCSV(w, rows)
	case JSON:
		return WriteJSON(w, rows)
	case Table:
		return WriteTable(w, rows)
	}
	return fmt.Errorf("cannot write %s reports", format)
}

// cells returns the report columns of r. Count columns stay integers so
// spreadsheets show them without a fraction.
func cells(r textmetrics.Row) []interface{} {
	out := make([]interface{}, 0, len(textmetrics.Columns))
	out = append(out, r.ID, r.URL)
	for i, v := range r.Features.Values() {
		if textmetrics.IntegerColumn(i) {
			out = append(out, int(v))
		} else {
			out = append(out, v)
		}
	}
	return out
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// WriteXLSX writes a workbook with the column headers on the first row of
// Sheet1 and one row per article below.
func WriteXLSX(w io.Writer, rows []textmetrics.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(textmetrics.Columns))
	for i, c := range textmetrics.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := cells(r)
		if err := f.SetSheetRow(SheetName, addr, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes a header row followed by one record per article.
func WriteCSV(w io.Writer, rows []textmetrics.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(textmetrics.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		values := cells(r)
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []textmetrics.Row) error {
	if rows == nil {
		rows = []textmetrics.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return nil
}

// WriteTable renders rows as an aligned plain-text table.
func WriteTable(w io.Writer, rows []textmetrics.Row) error {
	table := newTable(w, textmetrics.Columns)
	alignments := make([]int, len(textmetrics.Columns))
	for i := range alignments {
		alignments[i] = tablewriter.ALIGN_RIGHT
	}
	alignments[0], alignments[1] = tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT
	table.SetColumnAlignment(alignments)

	for _, r := range rows {
		record := make([]string, 0, len(textmetrics.Columns))
		for i, v := range cells(r) {
			if f, ok := v.(float64); ok && i > 1 {
				record = append(record, strconv.FormatFloat(f, 'f', 2, 64))
				continue
			}
			record = append(record, formatCell(v))
		}
		table.Append(record)
	}
	table.Render()
	return nil
}

// WriteSummary renders per-column statistics as a table.
func WriteSummary(w io.Writer, summaries []textmetrics.FieldSummary) {
	table := newTable(w, []string{"Metric", "Mean", "Std Dev", "Min", "Median", "Max"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	num := func(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }
	for _, s := range summaries {
		table.Append([]string{s.Field, num(s.Mean), num(s.StdDev), num(s.Min), num(s.Median), num(s.Max)})
	}
	table.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}
