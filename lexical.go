package textmetrics

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var pronounRE = regexp.MustCompile(`(?i)\b(?:I|we|my|ours|us)\b`)

// LexicalCounts are the stopword-filtered word statistics of a text.
type LexicalCounts struct {
	WordCount    int // Alphabetic tokens outside the English stopword set
	Syllables    int // Sum of EstimateSyllables over the counted tokens
	ComplexWords int // Counted tokens with more than two syllables
}

// ScoreLexical tokenizes each sentence with tok and counts the alphabetic
// tokens that are not English stopwords. Stopword membership is tested on
// the token as written, so a capitalized "The" is counted.
func ScoreLexical(sentences []Sentence, tok Tokenizer, english WordSet) LexicalCounts {
	var counts LexicalCounts
	for _, sent := range sentences {
		for _, t := range tok.Tokenize(sent.Text) {
			if !IsAlpha(t.Text) || english.Has(t.Text) {
				continue
			}
			counts.WordCount++
			counts.Syllables += EstimateSyllables(t.Text)
			if IsComplex(t.Text) {
				counts.ComplexWords++
			}
		}
	}
	return counts
}

// CountPersonalPronouns counts the whole-word, case-insensitive occurrences
// of "I", "we", "my" and "ours". "us" is matched but never counted, so the
// country abbreviation "US" is not mistaken for a pronoun.
func CountPersonalPronouns(text string) int {
	count := 0
	for _, m := range pronounRE.FindAllString(text, -1) {
		if strings.ToLower(m) != "us" {
			count++
		}
	}
	return count
}

// WordStats holds the alphanumeric-run statistics of a text.
type WordStats struct {
	Words      int // Word tokens in the whole text
	Characters int // Total characters across those tokens
}

// CountWords returns the number of word tokens in text and their total
// length in characters.
func CountWords(text string) WordStats {
	var stats WordStats
	for _, w := range WordTokens(text) {
		stats.Words++
		stats.Characters += utf8.RuneCountInString(w.Text)
	}
	return stats
}

// CountSentenceWords sums the word tokens of each sentence.
func CountSentenceWords(sentences []Sentence) int {
	total := 0
	for _, sent := range sentences {
		total += len(WordTokens(sent.Text))
	}
	return total
}
