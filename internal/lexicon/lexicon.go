// Package lexicon reads the stopword and sentiment word lists from disk.
package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/config"
)

// Load reads every list named by cfg and builds the lexicon bundle.
func Load(cfg config.LexiconConfig) (*textmetrics.Lexicon, error) {
	stopwords, err := LoadStopwordFiles(cfg.StopwordDir, cfg.StopwordFiles, cfg.Normalize)
	if err != nil {
		return nil, err
	}

	positive, err := LoadWordList(cfg.Positive, cfg.PositiveEncoding)
	if err != nil {
		return nil, fmt.Errorf("load positive words: %w", err)
	}

	negative, err := LoadWordList(cfg.Negative, cfg.NegativeEncoding)
	if err != nil {
		return nil, fmt.Errorf("load negative words: %w", err)
	}

	english, ok := textmetrics.EnglishStopwords(cfg.English)
	if !ok {
		return nil, fmt.Errorf("unknown english stopword source %q", cfg.English)
	}

	return textmetrics.NewLexicon(textmetrics.LexiconSources{
		Stopwords:        stopwords,
		Positive:         positive,
		Negative:         negative,
		EnglishStopwords: english,
	}), nil
}

// LoadStopwordFiles returns the union of the stripped, non-empty lines of
// each file in dir. A file may be listed more than once.
//
// With normalize set, anything after a '|' is dropped and words are
// lowercased, which suits the upper-case published lists whose lines carry
// "| comment" tails.
func LoadStopwordFiles(dir string, files []string, normalize bool) ([]string, error) {
	seen := make(map[string]bool)
	var words []string

	for _, name := range files {
		path := filepath.Join(dir, name)
		lines, err := readLines(path, "utf-8")
		if err != nil {
			return nil, fmt.Errorf("load stopwords %s: %w", name, err)
		}
		for _, line := range lines {
			w := strings.TrimSpace(line)
			if normalize {
				if idx := strings.Index(w, "|"); idx >= 0 {
					w = w[:idx]
				}
				w = strings.ToLower(strings.TrimSpace(w))
			}
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			words = append(words, w)
		}
	}

	return words, nil
}

// LoadWordList returns the non-empty lines of the file at path, decoded
// from encoding ("utf-8" or "iso-8859-1"). Lines are kept as written.
func LoadWordList(path, encoding string) ([]string, error) {
	lines, err := readLines(path, encoding)
	if err != nil {
		return nil, err
	}

	words := lines[:0]
	for _, line := range lines {
		if line != "" {
			words = append(words, line)
		}
	}
	return words, nil
}

func readLines(path, encoding string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r, err := decoder(f, encoding)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "latin-1", "latin1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", encoding)
}
