// Package tabular reads article lists and writes analysis reports as
// spreadsheets, delimited text, JSON or terminal tables.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a file layout.
type Format string

const (
	XLSX  Format = "xlsx"
	CSV   Format = "csv"
	JSON  Format = "json"
	Table Format = "table"
	Feed  Format = "feed"
)

// FormatOf picks the format of path by its extension. http and https
// locations are treated as RSS or Atom feeds.
func FormatOf(path string) (Format, error) {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return Feed, nil
	}
	switch filepath.Ext(lower) {
	case ".xlsx":
		return XLSX, nil
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	case ".txt":
		return Table, nil
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

// ParseFormat parses a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case XLSX, CSV, JSON, Table:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}
