package textmetrics

import (
	"fmt"
	"math"
)

// A Token represents an individual token of text such as a word or punctuation
// symbol.
type Token struct {
	Text  string // The token's actual content.
	Start int    // Start position in the tokenized text
	End   int    // End position in the tokenized text
}

// A Sentence represents a segmented portion of text.
type Sentence struct {
	Text  string // The sentence's text.
	Start int    // Start position in original text
	End   int    // End position in original text
}

// String returns the text content of the sentence
func (s Sentence) String() string {
	return s.Text
}

// An Article is the unit of input: an identifier plus the raw text body.
//
// Err is set when the body could not be obtained; such an article still
// produces a row, with every metric set to zero.
type Article struct {
	ID   string
	URL  string
	Text string
	Err  error
}

// Available reports whether the article carries a usable text body.
func (a Article) Available() bool {
	return a.Err == nil
}

// FeatureVector holds the readability and sentiment metrics of one article.
// Field order is fixed and matches Columns (after URL_ID and URL).
type FeatureVector struct {
	PositiveScore       int     `json:"positive_score"`
	NegativeScore       int     `json:"negative_score"` // Non-positive: the negated count
	PolarityScore       float64 `json:"polarity_score"`
	SubjectivityScore   float64 `json:"subjectivity_score"`
	AvgSentenceLength   float64 `json:"average_sentence_length"`
	PercentComplexWords float64 `json:"percentage_complex_words"`
	FogIndex            float64 `json:"fog_index"`
	AvgWordsPerSentence float64 `json:"average_words_per_sentence"`
	ComplexWordCount    int     `json:"complex_word_count"`
	WordCount           int     `json:"word_count"`
	SyllablesPerWord    float64 `json:"average_syllables_per_word"`
	PersonalPronouns    int     `json:"personal_pronoun_count"`
	AvgWordLength       float64 `json:"average_word_length"`
}

// Values returns the metrics in column order.
func (fv FeatureVector) Values() []float64 {
	return []float64{
		float64(fv.PositiveScore),
		float64(fv.NegativeScore),
		fv.PolarityScore,
		fv.SubjectivityScore,
		fv.AvgSentenceLength,
		fv.PercentComplexWords,
		fv.FogIndex,
		fv.AvgWordsPerSentence,
		float64(fv.ComplexWordCount),
		float64(fv.WordCount),
		fv.SyllablesPerWord,
		float64(fv.PersonalPronouns),
		fv.AvgWordLength,
	}
}

// Zero returns the feature vector emitted for articles whose text is
// unavailable.
func Zero() FeatureVector {
	return FeatureVector{}
}

// A Row is one line of the report: the article identity and its metrics.
type Row struct {
	ID       string        `json:"url_id"`
	URL      string        `json:"url"`
	Features FeatureVector `json:"features"`
	Failed   bool          `json:"failed,omitempty"`
}

// Columns are the report headers, in output order.
var Columns = []string{
	"URL_ID",
	"URL",
	"POSITIVE SCORE",
	"NEGATIVE SCORE",
	"POLARITY SCORE",
	"SUBJECTIVITY SCORE",
	"AVG SENTENCE LENGTH",
	"PERCENTAGE OF COMPLEX WORDS",
	"FOG INDEX",
	"AVG NUMBER OF WORDS PER SENTENCE",
	"COMPLEX WORD COUNT",
	"WORD COUNT",
	"SYLLABLE PER WORD",
	"PERSONAL PRONOUNS",
	"AVG WORD LENGTH",
}

// MetricColumns returns the headers of the numeric columns only.
func MetricColumns() []string {
	return Columns[2:]
}

// IntegerColumn reports whether the metric at index i (into
// FeatureVector.Values) is an integer count.
func IntegerColumn(i int) bool {
	switch i {
	case 0, 1, 8, 9, 11:
		return true
	}
	return false
}

// FeatureVectorFromValues is the inverse of FeatureVector.Values. Integer
// columns are rounded to the nearest whole number.
func FeatureVectorFromValues(v []float64) (FeatureVector, error) {
	if len(v) != len(MetricColumns()) {
		return FeatureVector{}, fmt.Errorf("feature vector needs %d values, got %d", len(MetricColumns()), len(v))
	}
	count := func(f float64) int { return int(math.Round(f)) }
	return FeatureVector{
		PositiveScore:       count(v[0]),
		NegativeScore:       count(v[1]),
		PolarityScore:       v[2],
		SubjectivityScore:   v[3],
		AvgSentenceLength:   v[4],
		PercentComplexWords: v[5],
		FogIndex:            v[6],
		AvgWordsPerSentence: v[7],
		ComplexWordCount:    count(v[8]),
		WordCount:           count(v[9]),
		SyllablesPerWord:    v[10],
		PersonalPronouns:    count(v[11]),
		AvgWordLength:       v[12],
	}, nil
}
