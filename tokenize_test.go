package textmetrics

import (
	"reflect"
	"strings"
	"testing"
)

func tokenTexts(tokens []*Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
		desc     string
	}{
		{"Hello world. Is it me? Yes!", []string{"Hello world", " Is it me", " Yes", ""}, "Trailing empty segment kept"},
		{"", []string{""}, "Empty text is one sentence"},
		{"no delimiters here", []string{"no delimiters here"}, "Single sentence"},
		{"Wait... what", []string{"Wait", "", "", " what"}, "Consecutive delimiters"},
		{".start", []string{"", "start"}, "Leading delimiter"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := SplitSentences(tt.text)
			texts := make([]string, len(got))
			for i, s := range got {
				texts[i] = s.Text
				if tt.text[s.Start:s.End] != s.Text {
					t.Errorf("Sentence %d offsets [%d:%d] do not match %q", i, s.Start, s.End, s.Text)
				}
			}
			if !reflect.DeepEqual(texts, tt.expected) {
				t.Errorf("Text: %q\nExpected: %q\nGot: %q", tt.text, tt.expected, texts)
			}
		})
	}
}

func TestWordTokens(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
	}{
		{"Hello, world!", []string{"Hello", "world"}},
		{"it's 2024_q1", []string{"it", "s", "2024_q1"}},
		{"café naïve", []string{"café", "naïve"}},
		{"  ...  ", []string{}},
	}

	for _, tt := range tests {
		got := WordTokens(tt.text)
		texts := make([]string, len(got))
		for i, tok := range got {
			texts[i] = tok.Text
		}
		if !reflect.DeepEqual(texts, tt.expected) {
			t.Errorf("WordTokens(%q) = %q, want %q", tt.text, texts, tt.expected)
		}
	}
}

func TestIsAlpha(t *testing.T) {
	tests := map[string]bool{
		"word":  true,
		"Éclat": true,
		"":      false,
		"n't":   false,
		"abc1":  false,
		".":     false,
	}
	for in, want := range tests {
		if got := IsAlpha(in); got != want {
			t.Errorf("IsAlpha(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIterTokenizer(t *testing.T) {
	tokenizer := NewIterTokenizer()

	tests := []struct {
		text     string
		expected []string
		desc     string
	}{
		{"Hello, world!", []string{"Hello", ",", "world", "!"}, "Trailing punctuation"},
		{"They'll go, don't worry.", []string{"They", "'ll", "go", ",", "do", "n't", "worry", "."}, "Contractions"},
		{"I cannot pay $100 (today).", []string{"I", "can", "not", "pay", "$", "100", "(", "today", ")", "."}, "Compounds and prefixes"},
		{"The U.S. economy grew :-)", []string{"The", "U.S.", "economy", "grew", ":-)"}, "Abbreviations and emoticons"},
		{"Mr. Smith", []string{"Mr.", "Smith"}, "Title abbreviation"},
		{"growth,profit and loss;gain", []string{"growth", ",", "profit", "and", "loss", ";", "gain"}, "Infix punctuation"},
		{"R&D at 12:30 cost 1,000 units", []string{"R", "&", "D", "at", "12:30", "cost", "1,000", "units"}, "Digit-guarded infixes"},
		{"ratio:high a@b", []string{"ratio", ":", "high", "a", "@", "b"}, "Colon and at sign"},
		{"", nil, "Empty text"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := tokenTexts(tokenizer.Tokenize(tt.text))
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Text: %q\nExpected: %q\nGot: %q", tt.text, tt.expected, got)
			}
		})
	}
}

func TestIterTokenizerOffsets(t *testing.T) {
	text := "Hello, world!"
	tokens := NewIterTokenizer().Tokenize(text)
	for _, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("Token %q has offsets [%d:%d] covering %q", tok.Text, tok.Start, tok.End, text[tok.Start:tok.End])
		}
	}
}

func TestIterTokenizerSanitizer(t *testing.T) {
	text := "It’s fine"

	curly := tokenTexts(NewIterTokenizer(UsingSanitizer(strings.NewReplacer())).Tokenize(text))
	if !reflect.DeepEqual(curly, []string{"It", "’", "s", "fine"}) {
		t.Errorf("Identity sanitizer: got %q", curly)
	}

	plain := tokenTexts(NewIterTokenizer().Tokenize(text))
	if !reflect.DeepEqual(plain, []string{"It", "'s", "fine"}) {
		t.Errorf("Default sanitizer: got %q", plain)
	}
}

func TestIterTokenizerOptions(t *testing.T) {
	tokenizer := NewIterTokenizer(
		UsingCompounds(map[string]int{}),
		UsingIsUnsplittable(func(s string) bool { return s == "(keep)" }),
	)

	got := tokenTexts(tokenizer.Tokenize("cannot (keep)"))
	expected := []string{"cannot", "(keep)"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected: %q\nGot: %q", expected, got)
	}
}

func TestNaturalTokenizer(t *testing.T) {
	tokenizer, err := DefaultTokenizer()
	if err != nil {
		t.Fatalf("DefaultTokenizer() error: %v", err)
	}

	text := "Hello world. Is it me? Yes!"
	got := tokenTexts(tokenizer.Tokenize(text))
	expected := []string{"Hello", "world", ".", "Is", "it", "me", "?", "Yes", "!"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected: %q\nGot: %q", expected, got)
	}

	for _, tok := range tokenizer.Tokenize(text) {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("Token %q has offsets [%d:%d]", tok.Text, tok.Start, tok.End)
		}
	}

	quoted := "The company’s “great” growth."
	got = tokenTexts(tokenizer.Tokenize(quoted))
	expected = []string{"The", "company", "’", "s", "“", "great", "”", "growth", "."}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Curly quotes\nExpected: %q\nGot: %q", expected, got)
	}
	for _, tok := range tokenizer.Tokenize(quoted) {
		if quoted[tok.Start:tok.End] != tok.Text {
			t.Errorf("Token %q has offsets [%d:%d]", tok.Text, tok.Start, tok.End)
		}
	}

	if n := len(tokenizer.Tokenize("")); n != 0 {
		t.Errorf("Empty text: expected no tokens, got %d", n)
	}
}

func TestNaturalTokenizerSentences(t *testing.T) {
	tokenizer, err := NewNaturalTokenizer()
	if err != nil {
		t.Fatalf("NewNaturalTokenizer() error: %v", err)
	}

	text := "The sun rose. Birds sang loudly."
	sentences := tokenizer.Sentences(text)
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	for _, s := range sentences {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("Sentence %q has offsets [%d:%d]", s.Text, s.Start, s.End)
		}
	}
}
