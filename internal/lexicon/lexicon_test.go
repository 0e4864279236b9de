package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tsawler/textmetrics/internal/config"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadStopwordFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("  alpha \nbeta\n\n"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("beta\r\ngamma\r\n"))

	got, err := LoadStopwordFiles(dir, []string{"a.txt", "a.txt", "b.txt"}, false)
	if err != nil {
		t.Fatalf("LoadStopwordFiles() error: %v", err)
	}
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadStopwordFiles() = %q, want %q", got, want)
	}
}

func TestLoadStopwordFilesNormalize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "names.txt"), []byte("SMITH | Surnames from 1990 census\nJONES\n"))

	raw, err := LoadStopwordFiles(dir, []string{"names.txt"}, false)
	if err != nil {
		t.Fatalf("LoadStopwordFiles() error: %v", err)
	}
	if raw[0] != "SMITH | Surnames from 1990 census" {
		t.Errorf("Without normalize lines must be kept, got %q", raw[0])
	}

	norm, err := LoadStopwordFiles(dir, []string{"names.txt"}, true)
	if err != nil {
		t.Fatalf("LoadStopwordFiles() error: %v", err)
	}
	if !reflect.DeepEqual(norm, []string{"smith", "jones"}) {
		t.Errorf("Normalized = %q", norm)
	}
}

func TestLoadStopwordFilesMissing(t *testing.T) {
	if _, err := LoadStopwordFiles(t.TempDir(), []string{"absent.txt"}, false); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestLoadWordListEncodings(t *testing.T) {
	dir := t.TempDir()
	utf8Path := filepath.Join(dir, "positive.txt")
	latinPath := filepath.Join(dir, "negative.txt")
	writeFile(t, utf8Path, []byte("good\n\nnaïve \n"))
	// "naïve" with ï as the single ISO-8859-1 byte 0xEF.
	writeFile(t, latinPath, []byte("bad\nna\xefve\n"))

	pos, err := LoadWordList(utf8Path, "utf-8")
	if err != nil {
		t.Fatalf("LoadWordList(utf-8) error: %v", err)
	}
	if !reflect.DeepEqual(pos, []string{"good", "naïve "}) {
		t.Errorf("utf-8 words = %q", pos)
	}

	neg, err := LoadWordList(latinPath, "ISO-8859-1")
	if err != nil {
		t.Fatalf("LoadWordList(iso-8859-1) error: %v", err)
	}
	if !reflect.DeepEqual(neg, []string{"bad", "naïve"}) {
		t.Errorf("iso-8859-1 words = %q", neg)
	}

	if _, err := LoadWordList(utf8Path, "ebcdic"); err == nil {
		t.Error("Expected an error for an unsupported encoding")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stop", "generic.txt"), []byte("is\nwhere\n"))
	writeFile(t, filepath.Join(dir, "positive.txt"), []byte("good\n"))
	writeFile(t, filepath.Join(dir, "negative.txt"), []byte("bad\n"))

	cfg := config.LexiconConfig{
		StopwordDir:      filepath.Join(dir, "stop"),
		StopwordFiles:    []string{"generic.txt"},
		Positive:         filepath.Join(dir, "positive.txt"),
		PositiveEncoding: "utf-8",
		Negative:         filepath.Join(dir, "negative.txt"),
		NegativeEncoding: "iso-8859-1",
		English:          "nltk",
	}

	lex, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !lex.Stopwords.Has("where") || !lex.Positive.Has("good") || !lex.Negative.Has("bad") {
		t.Error("Load() lost words")
	}
	if !lex.EnglishStopwords.Has("the") || lex.Stopwords.Has("the") {
		t.Error("English and domain stopwords must stay separate")
	}

	cfg.English = "spacy"
	if _, err := Load(cfg); err == nil {
		t.Error("Expected an error for an unknown english source")
	}
}
