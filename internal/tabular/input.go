package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/xuri/excelize/v2"
)

// Header names of the input columns.
const (
	IDColumn  = "URL_ID"
	URLColumn = "URL"
)

// Input is one article to analyze.
type Input struct {
	ID  string
	URL string
}

// ReadInputs loads the article list at source: an .xlsx or .csv file with
// URL_ID and URL columns, or the URL of an RSS or Atom feed.
func ReadInputs(ctx context.Context, source string) ([]Input, error) {
	format, err := FormatOf(source)
	if err != nil {
		return nil, err
	}

	if format == Feed {
		fp := gofeed.NewParser()
		feed, err := fp.ParseURLWithContext(source, ctx)
		if err != nil {
			return nil, fmt.Errorf("parse feed: %w", err)
		}
		return feedInputs(feed), nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	switch format {
	case XLSX:
		return ReadXLSX(f)
	case CSV:
		return ReadCSV(f)
	}
	return nil, fmt.Errorf("cannot read inputs from %s files", format)
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]Input, error) {
	records, err := xlsxRecords(r)
	if err != nil {
		return nil, err
	}
	return inputsFromRecords(records)
}

// ReadCSV reads comma separated records with a header row.
func ReadCSV(r io.Reader) ([]Input, error) {
	records, err := csvRecords(r)
	if err != nil {
		return nil, err
	}
	return inputsFromRecords(records)
}

// ReadFeed parses an RSS or Atom document. Each item with a link becomes an
// input identified by its GUID, or by its position when it has none.
func ReadFeed(r io.Reader) ([]Input, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feedInputs(feed), nil
}

func feedInputs(feed *gofeed.Feed) []Input {
	var inputs []Input
	for i, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		id := strings.TrimSpace(item.GUID)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		inputs = append(inputs, Input{ID: id, URL: item.Link})
	}
	return inputs
}

func xlsxRecords(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func csvRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// columnIndex maps trimmed, upper-cased header names to their position.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func inputsFromRecords(records [][]string) ([]Input, error) {
	if len(records) == 0 {
		return nil, errors.New("input has no header row")
	}
	idx := columnIndex(records[0])
	idCol, ok := idx[IDColumn]
	if !ok {
		return nil, fmt.Errorf("input has no %s column", IDColumn)
	}
	urlCol, ok := idx[URLColumn]
	if !ok {
		return nil, fmt.Errorf("input has no %s column", URLColumn)
	}

	var inputs []Input
	for _, record := range records[1:] {
		in := Input{ID: cell(record, idCol), URL: cell(record, urlCol)}
		if in.ID == "" && in.URL == "" {
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
