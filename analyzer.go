package textmetrics

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// epsilon keeps the sentiment ratios finite when their denominator is zero.
const epsilon = 1e-6

// An AnalyzerOpt represents a setting that changes how articles are scored.
//
// For example, it might reproduce the substring stopword rule:
//
//	a, err := textmetrics.NewAnalyzer(lex, textmetrics.WithStopwordMatch(textmetrics.SubstringMatch))
type AnalyzerOpt func(opts *AnalyzerOpts)

// AnalyzerOpts controls the scoring process:
type AnalyzerOpts struct {
	Tokenizer     Tokenizer     // Natural-language tokenizer; nil selects DefaultTokenizer
	StopwordMatch StopwordMatch // How polarity scoring drops domain stopwords
	Workers       int           // Concurrent articles in AnalyzeAll
}

// UsingTokenizer specifies the Tokenizer used for lexical and polarity
// scoring.
func UsingTokenizer(tok Tokenizer) AnalyzerOpt {
	return func(opts *AnalyzerOpts) {
		opts.Tokenizer = tok
	}
}

// WithStopwordMatch sets the stopword rule used by polarity scoring.
func WithStopwordMatch(match StopwordMatch) AnalyzerOpt {
	return func(opts *AnalyzerOpts) {
		opts.StopwordMatch = match
	}
}

// WithWorkers bounds the number of articles AnalyzeAll scores at once.
// Values below 1 are ignored.
func WithWorkers(n int) AnalyzerOpt {
	return func(opts *AnalyzerOpts) {
		if n > 0 {
			opts.Workers = n
		}
	}
}

// An Analyzer turns article text into a FeatureVector. It holds no mutable
// state and may be shared between goroutines.
type Analyzer struct {
	lexicon *Lexicon
	opts    AnalyzerOpts
}

// NewAnalyzer creates an Analyzer scoring against lex.
func NewAnalyzer(lex *Lexicon, opts ...AnalyzerOpt) (*Analyzer, error) {
	if lex == nil {
		return nil, errors.New("nil lexicon")
	}

	base := AnalyzerOpts{Workers: runtime.NumCPU()}
	for _, applyOpt := range opts {
		applyOpt(&base)
	}

	if base.Tokenizer == nil {
		tok, err := DefaultTokenizer()
		if err != nil {
			return nil, fmt.Errorf("create analyzer: %w", err)
		}
		base.Tokenizer = tok
	}

	return &Analyzer{lexicon: lex, opts: base}, nil
}

// Analyze computes the feature vector of text.
func (a *Analyzer) Analyze(text string) FeatureVector {
	sentences := SplitSentences(text)
	sentenceCount := float64(len(sentences))

	lexical := ScoreLexical(sentences, a.opts.Tokenizer, a.lexicon.EnglishStopwords)
	polarity := ScorePolarity(text, a.opts.Tokenizer, a.lexicon, a.opts.StopwordMatch)
	words := CountWords(text)
	rawWords := CountSentenceWords(sentences)

	wordCount := float64(lexical.WordCount)
	avgSentenceLength := ratio(wordCount, sentenceCount)
	percentComplex := ratio(float64(lexical.ComplexWords), wordCount) * 100

	return FeatureVector{
		PositiveScore:       polarity.Positive,
		NegativeScore:       polarity.Negative,
		PolarityScore:       polarity.Polarity(),
		SubjectivityScore:   polarity.Subjectivity(lexical.WordCount),
		AvgSentenceLength:   avgSentenceLength,
		PercentComplexWords: percentComplex,
		FogIndex:            0.4 * (avgSentenceLength + percentComplex),
		AvgWordsPerSentence: ratio(float64(rawWords), sentenceCount),
		ComplexWordCount:    lexical.ComplexWords,
		WordCount:           lexical.WordCount,
		SyllablesPerWord:    ratio(float64(lexical.Syllables), wordCount),
		PersonalPronouns:    CountPersonalPronouns(text),
		AvgWordLength:       ratio(float64(words.Characters), float64(words.Words)),
	}
}

// AnalyzeArticle scores one article. An article without text yields a row
// of zeros marked Failed.
func (a *Analyzer) AnalyzeArticle(art Article) Row {
	row := Row{ID: art.ID, URL: art.URL}
	if !art.Available() {
		row.Features = Zero()
		row.Failed = true
		return row
	}
	row.Features = a.Analyze(art.Text)
	return row
}

// AnalyzeAll scores every article and returns one row per article, in input
// order. Articles are scored concurrently, up to the configured worker
// count. The only error is ctx's.
func (a *Analyzer) AnalyzeAll(ctx context.Context, articles []Article) ([]Row, error) {
	rows := make([]Row, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, art := range articles {
		i, art := i, art
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = a.AnalyzeArticle(art)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze articles: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze articles: %w", err)
	}
	return rows, nil
}

// ratio divides n by d, substituting epsilon for a zero denominator.
func ratio(n, d float64) float64 {
	if d == 0 {
		return n / epsilon
	}
	return n / d
}
