package textmetrics

import "strings"

// EstimateSyllables approximates the syllable count of an English word by
// counting its vowels.
//
// A trailing "es" is removed first, then a trailing "ed" (checked against the
// already shortened word). Only ASCII vowels count and the result is never
// below 1.
func EstimateSyllables(word string) int {
	word = strings.TrimSuffix(word, "es")
	word = strings.TrimSuffix(word, "ed")

	count := 0
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			count++
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

// IsComplex reports whether a word has more than two estimated syllables.
func IsComplex(word string) bool {
	return EstimateSyllables(word) > 2
}
