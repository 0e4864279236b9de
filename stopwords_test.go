package textmetrics

import "testing"

func TestNLTKEnglishStopwords(t *testing.T) {
	words := NLTKEnglishStopwords()
	if len(words) != 179 {
		t.Errorf("Expected 179 stopwords, got %d", len(words))
	}

	set := NewWordSet(words...)
	for _, w := range []string{"the", "it", "me", "don't", "off"} {
		if !set.Has(w) {
			t.Errorf("Expected %q to be a stopword", w)
		}
	}

	words[0] = "mutated"
	if NLTKEnglishStopwords()[0] != "i" {
		t.Error("NLTKEnglishStopwords must return a copy")
	}
}

func TestBbaletEnglishStopwords(t *testing.T) {
	words := BbaletEnglishStopwords()
	if len(words) == 0 {
		t.Fatal("Expected the bbalet list to share words with NLTK")
	}

	nltk := NewWordSet(NLTKEnglishStopwords()...)
	for _, w := range words {
		if !nltk.Has(w) {
			t.Errorf("%q is not a candidate word", w)
		}
	}
}

func TestEnglishStopwords(t *testing.T) {
	tests := []struct {
		source string
		ok     bool
	}{
		{"", true},
		{"nltk", true},
		{"NLTK", true},
		{"bbalet", true},
		{"spacy", false},
	}

	for _, tt := range tests {
		words, ok := EnglishStopwords(tt.source)
		if ok != tt.ok {
			t.Errorf("EnglishStopwords(%q) ok = %v, want %v", tt.source, ok, tt.ok)
		}
		if ok && len(words) == 0 {
			t.Errorf("EnglishStopwords(%q) returned no words", tt.source)
		}
	}
}
