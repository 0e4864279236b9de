package textmetrics

import (
	"sort"
	"strings"
)

// WordSet is an immutable set of words. The zero value is an empty set.
type WordSet struct {
	words map[string]struct{}
}

// NewWordSet builds a set from words. Duplicates collapse; the input slice is
// not retained.
func NewWordSet(words ...string) WordSet {
	set := WordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		set.words[w] = struct{}{}
	}
	return set
}

// Has reports whether w is in the set, compared exactly.
func (s WordSet) Has(w string) bool {
	_, found := s.words[w]
	return found
}

// Len returns the number of distinct words.
func (s WordSet) Len() int {
	return len(s.words)
}

// Words returns the members in sorted order.
func (s WordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ContainedIn reports whether w occurs as a substring of any member.
func (s WordSet) ContainedIn(w string) bool {
	for member := range s.words {
		if strings.Contains(member, w) {
			return true
		}
	}
	return false
}

// LexiconSources are the raw word lists a Lexicon is built from.
type LexiconSources struct {
	Stopwords        []string // Domain stopword list (the union of every stopword file)
	Positive         []string
	Negative         []string
	EnglishStopwords []string // nil selects NLTKEnglishStopwords
}

// Lexicon bundles the word sets consulted while scoring. It is built once
// per run and never modified afterwards, so it is safe to share between
// goroutines.
type Lexicon struct {
	Stopwords        WordSet
	Positive         WordSet
	Negative         WordSet
	EnglishStopwords WordSet
}

// NewLexicon copies src into a Lexicon.
func NewLexicon(src LexiconSources) *Lexicon {
	english := src.EnglishStopwords
	if english == nil {
		english = NLTKEnglishStopwords()
	}
	return &Lexicon{
		Stopwords:        NewWordSet(src.Stopwords...),
		Positive:         NewWordSet(src.Positive...),
		Negative:         NewWordSet(src.Negative...),
		EnglishStopwords: NewWordSet(english...),
	}
}
