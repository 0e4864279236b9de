package textmetrics

import (
	"fmt"
	"strings"
)

// StopwordMatch selects how polarity scoring drops stopwords.
type StopwordMatch int

const (
	// ExactMatch drops a token whose lowercase form is a stopword.
	ExactMatch StopwordMatch = iota
	// SubstringMatch drops a token whose lowercase form occurs inside any
	// stopword, so "he" is dropped because of "where".
	SubstringMatch
)

func (m StopwordMatch) String() string {
	switch m {
	case ExactMatch:
		return "exact"
	case SubstringMatch:
		return "substring"
	}
	return fmt.Sprintf("StopwordMatch(%d)", int(m))
}

// ParseStopwordMatch converts "exact" or "substring" to a StopwordMatch.
func ParseStopwordMatch(s string) (StopwordMatch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return ExactMatch, nil
	case "substring":
		return SubstringMatch, nil
	}
	return ExactMatch, fmt.Errorf("unknown stopword match %q", s)
}

// PolarityCounts are the lexicon hits of a text.
type PolarityCounts struct {
	Positive int // Tokens found in the positive list
	Negative int // Tokens found in the negative list; always <= 0
}

// ScorePolarity counts the positive and negative lexicon words in text.
//
// Newlines become spaces, the whole text is tokenized with tok, and tokens
// whose lowercase form is a domain stopword are dropped. Each remaining
// token is looked up as written: a positive hit wins over a negative one.
// The negative count is returned negated.
func ScorePolarity(text string, tok Tokenizer, lex *Lexicon, match StopwordMatch) PolarityCounts {
	var counts PolarityCounts

	text = strings.ReplaceAll(text, "\n", " ")
	for _, t := range tok.Tokenize(text) {
		if isStopword(strings.ToLower(t.Text), lex.Stopwords, match) {
			continue
		}
		if lex.Positive.Has(t.Text) {
			counts.Positive++
		} else if lex.Negative.Has(t.Text) {
			counts.Negative++
		}
	}

	counts.Negative *= -1
	return counts
}

func isStopword(lower string, stopwords WordSet, match StopwordMatch) bool {
	if match == SubstringMatch {
		return stopwords.ContainedIn(lower)
	}
	return stopwords.Has(lower)
}

// Polarity returns (positive - negative) / (positive + negative + 1e-6),
// with negative taken as stored (non-positive).
func (pc PolarityCounts) Polarity() float64 {
	pos, neg := float64(pc.Positive), float64(pc.Negative)
	return (pos - neg) / ((pos + neg) + epsilon)
}

// Subjectivity returns (positive + negative) / (wordCount + 1e-6), with
// negative taken as stored (non-positive).
func (pc PolarityCounts) Subjectivity(wordCount int) float64 {
	pos, neg := float64(pc.Positive), float64(pc.Negative)
	return (pos + neg) / (float64(wordCount) + epsilon)
}
