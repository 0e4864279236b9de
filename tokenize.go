package textmetrics

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	sentences "gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// sentenceDelimiters are the characters SplitSentences breaks on.
var sentenceDelimiters = regexp.MustCompile(`[.!?]`)

// wordRE matches a maximal run of word characters.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// SplitSentences splits text on every '.', '!' and '?'.
//
// Empty segments (leading, trailing or between consecutive delimiters) are
// kept, so "Hello world. Is it me? Yes!" yields four sentences, the last one
// empty. The result is never empty: text without delimiters is one sentence.
func SplitSentences(text string) []Sentence {
	bounds := sentenceDelimiters.FindAllStringIndex(text, -1)
	out := make([]Sentence, 0, len(bounds)+1)

	start := 0
	for _, b := range bounds {
		out = append(out, Sentence{Text: text[start:b[0]], Start: start, End: b[0]})
		start = b[1]
	}
	return append(out, Sentence{Text: text[start:], Start: start, End: len(text)})
}

// WordTokens returns the maximal runs of letters, digits and underscores in
// text.
func WordTokens(text string) []Token {
	locs := wordRE.FindAllStringIndex(text, -1)
	tokens := make([]Token, len(locs))
	for i, loc := range locs {
		tokens[i] = Token{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}
	}
	return tokens
}

// IsAlpha reports whether s is non-empty and made only of letters.
func IsAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

type TokenTester func(string) bool

// Tokenizer splits text into word and punctuation tokens.
type Tokenizer interface {
	Tokenize(string) []*Token
}

// iterTokenizer splits a sentence into words.
type iterTokenizer struct {
	specialRE      *regexp.Regexp
	sanitizer      *strings.Replacer
	contractions   []string
	splitCases     []string
	suffixes       []string
	prefixes       []string
	compounds      map[string]int
	emoticons      map[string]int
	infixes        string
	guardedInfixes string
	isUnsplittable TokenTester
}

type TokenizerOptFunc func(*iterTokenizer)

// UsingIsUnsplittable gives a function that tests whether a token is splittable or not.
func UsingIsUnsplittable(x TokenTester) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.isUnsplittable = x
	}
}

// Use the provided special regex for unsplittable tokens.
func UsingSpecialRE(x *regexp.Regexp) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.specialRE = x
	}
}

// Use the provided sanitizer.
func UsingSanitizer(x *strings.Replacer) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.sanitizer = x
	}
}

// Use the provided suffixes.
func UsingSuffixes(x []string) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.suffixes = x
	}
}

// Use the provided prefixes.
func UsingPrefixes(x []string) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.prefixes = x
	}
}

// Use the provided map of emoticons.
func UsingEmoticons(x map[string]int) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.emoticons = x
	}
}

// Use the provided contractions.
func UsingContractions(x []string) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.contractions = x
	}
}

// Use the provided splitCases.
func UsingSplitCases(x []string) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.splitCases = x
	}
}

// UsingCompounds sets the whole words that split at a fixed byte offset,
// e.g. "cannot" -> [can, not].
func UsingCompounds(x map[string]int) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.compounds = x
	}
}

// UsingInfixes sets the punctuation split out from inside a word. Runes in
// always are split everywhere; runes in guarded only when the next rune is
// not a digit, so "1,000" and "12:30" stay whole.
func UsingInfixes(always, guarded string) TokenizerOptFunc {
	return func(tokenizer *iterTokenizer) {
		tokenizer.infixes = always
		tokenizer.guardedInfixes = guarded
	}
}

// Constructor for default iterTokenizer
func NewIterTokenizer(opts ...TokenizerOptFunc) *iterTokenizer {
	tok := new(iterTokenizer)

	// Set default parameters
	tok.contractions = contractions
	tok.compounds = compounds
	tok.emoticons = emoticons
	tok.infixes = infixes
	tok.guardedInfixes = guardedInfixes
	tok.isUnsplittable = func(_ string) bool { return false }
	tok.prefixes = prefixes
	tok.sanitizer = sanitizer
	tok.specialRE = internalRE
	tok.suffixes = suffixes

	// Apply options if provided
	for _, applyOpt := range opts {
		applyOpt(tok)
	}

	tok.splitCases = append(tok.splitCases, tok.contractions...)

	return tok
}

func (t *iterTokenizer) addToken(s string, start int, toks []*Token) []*Token {
	if strings.TrimSpace(s) != "" {
		toks = append(toks, &Token{Text: s, Start: start, End: start + len(s)})
	}
	return toks
}

func (t *iterTokenizer) isSpecial(token string) bool {
	_, found := t.emoticons[token]
	return found || t.specialRE.MatchString(token) || t.isUnsplittable(token)
}

func (t *iterTokenizer) doSplit(token string, offset int) []*Token {
	tokens := []*Token{}
	suffs := []*Token{}

	last := 0
	for token != "" && utf8.RuneCountInString(token) != last {
		if t.isSpecial(token) {
			// We've found a special case (e.g., an emoticon) -- so, we add it as a token without
			// any further processing.
			tokens = t.addToken(token, offset, tokens)
			break
		}
		last = utf8.RuneCountInString(token)
		lower := strings.ToLower(token)
		if idx, found := t.compounds[lower]; found && idx < len(token) {
			// cannot -> [can, not].
			tokens = t.addToken(token[:idx], offset, tokens)
			offset += idx
			token = token[idx:]
		} else if hasAnyPrefix(token, t.prefixes) {
			// Remove prefixes -- e.g., $100 -> [$, 100].
			tokens = t.addToken(string(token[0]), offset, tokens)
			offset++
			token = token[1:]
		} else if idx := hasAnyIndex(lower, t.splitCases); idx > -1 {
			// Handle "they'll", "I'll", "Don't", "won't".
			//
			// they'll -> [they, 'll].
			// don't -> [do, n't].
			tokens = t.addToken(token[:idx], offset, tokens)
			offset += idx
			token = token[idx:]
		} else if hasAnySuffix(token, t.suffixes) {
			// Remove suffixes -- e.g., Well) -> [Well, )].
			end := offset + len(token) - 1
			suffs = append([]*Token{{Text: string(token[len(token)-1]), Start: end, End: end + 1}}, suffs...)
			token = token[:len(token)-1]
		} else {
			tokens = t.addToken(token, offset, tokens)
		}
	}

	return append(tokens, suffs...)
}

// Tokenize splits a sentence into a slice of words.
//
// Token positions refer to the sanitized text.
func (t *iterTokenizer) Tokenize(text string) []*Token {
	var tokens []*Token

	clean := t.sanitizer.Replace(text)
	cache := map[string][]*Token{}

	start := -1
	for index, r := range clean {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, t.splitSpan(clean[start:index], start, cache)...)
				start = -1
			}
			continue
		}
		if start < 0 {
			start = index
		}
	}
	if start >= 0 {
		tokens = append(tokens, t.splitSpan(clean[start:], start, cache)...)
	}

	return tokens
}

func (t *iterTokenizer) splitSpan(span string, offset int, cache map[string][]*Token) []*Token {
	toks, found := cache[span]
	if !found {
		toks = t.splitInfixes(span)
		cache[span] = toks
	}
	out := make([]*Token, len(toks))
	for i, tok := range toks {
		out[i] = &Token{Text: tok.Text, Start: offset + tok.Start, End: offset + tok.End}
	}
	return out
}

// splitInfixes cuts span around infix punctuation and splits each remaining
// piece with doSplit. Special tokens such as emoticons are kept whole.
func (t *iterTokenizer) splitInfixes(span string) []*Token {
	if t.isSpecial(span) {
		return t.addToken(span, 0, nil)
	}

	var toks []*Token
	start := 0
	for i, r := range span {
		if !t.isInfix(span, i, r) {
			continue
		}
		if start < i {
			toks = append(toks, t.doSplit(span[start:i], start)...)
		}
		toks = t.addToken(string(r), i, toks)
		start = i + utf8.RuneLen(r)
	}
	if start < len(span) {
		toks = append(toks, t.doSplit(span[start:], start)...)
	}
	return toks
}

func (t *iterTokenizer) isInfix(span string, i int, r rune) bool {
	if strings.ContainsRune(t.infixes, r) {
		return true
	}
	if !strings.ContainsRune(t.guardedInfixes, r) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(span[i+utf8.RuneLen(r):])
	return !unicode.IsDigit(next)
}

// NaturalTokenizer is the general English word tokenizer: text is first
// segmented into sentences with a punkt model, then each sentence is split
// into words and punctuation.
type NaturalTokenizer struct {
	segmenter *sentences.DefaultSentenceTokenizer
	words     *iterTokenizer
}

// NewNaturalTokenizer loads the English punkt model. Options are applied to
// the word splitter. The input is not sanitized, so token offsets point into
// the original text; curly quotes are split out as infixes instead.
func NewNaturalTokenizer(opts ...TokenizerOptFunc) (*NaturalTokenizer, error) {
	segmenter, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	opts = append([]TokenizerOptFunc{UsingSanitizer(strings.NewReplacer())}, opts...)
	return &NaturalTokenizer{segmenter: segmenter, words: NewIterTokenizer(opts...)}, nil
}

// Sentences returns the punkt segmentation of text.
func (nt *NaturalTokenizer) Sentences(text string) []Sentence {
	var out []Sentence
	cursor := 0
	for _, s := range nt.segmenter.Tokenize(text) {
		start := cursor
		if idx := strings.Index(text[cursor:], s.Text); idx >= 0 {
			start = cursor + idx
			cursor = start + len(s.Text)
		}
		out = append(out, Sentence{Text: s.Text, Start: start, End: start + len(s.Text)})
	}
	return out
}

// Tokenize splits text into word and punctuation tokens.
func (nt *NaturalTokenizer) Tokenize(text string) []*Token {
	var tokens []*Token
	for _, sent := range nt.Sentences(text) {
		for _, tok := range nt.words.Tokenize(sent.Text) {
			tok.Start += sent.Start
			tok.End += sent.Start
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

var (
	defaultTokenizerOnce sync.Once
	defaultTokenizer     *NaturalTokenizer
	defaultTokenizerErr  error
)

// DefaultTokenizer returns a shared NaturalTokenizer. The punkt model is
// loaded once per process; the tokenizer holds no mutable state.
func DefaultTokenizer() (*NaturalTokenizer, error) {
	defaultTokenizerOnce.Do(func() {
		defaultTokenizer, defaultTokenizerErr = NewNaturalTokenizer()
	})
	return defaultTokenizer, defaultTokenizerErr
}

func hasAnyPrefix(s string, prefixes []string) bool {
	n := len(s)
	for _, prefix := range prefixes {
		if n > len(prefix) && strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	n := len(s)
	for _, suffix := range suffixes {
		if n > len(suffix) && strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// hasAnyIndex returns the position of the first split case found strictly
// inside s, or -1.
func hasAnyIndex(s string, cases []string) int {
	for _, c := range cases {
		if idx := strings.Index(s, c); idx > 0 {
			return idx
		}
	}
	return -1
}

var internalRE = regexp.MustCompile(`^(?:[A-Za-z]\.){2,}$|^[A-Z][a-z]{1,2}\.$`)
var sanitizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"&rsquo;", "'")
var contractions = []string{"'ll", "'s", "'re", "'m", "'ve", "'d", "n't"}
var compounds = map[string]int{
	"cannot": 3,
	"gimme":  3,
	"gonna":  3,
	"gotta":  3,
	"lemme":  3,
	"wanna":  3,
	"d'ye":   1,
	"more'n": 4,
	"'tis":   2,
	"'twas":  2,
}
var suffixes = []string{",", ")", `"`, "]", "}", ">", "!", ";", ".", "?", ":", "'", "%", "&", "@", "#", "*"}
var infixes = ";@#$%&“”‘’„«»"
var guardedInfixes = ",:"
var prefixes = []string{"$", "(", `"`, "[", "{", "<", "#", "@", "&", "*"}
var emoticons = map[string]int{
	"(-8":         1,
	"(-;":         1,
	"(-_-)":       1,
	"(._.)":       1,
	"(:":          1,
	"(=":          1,
	"(o:":         1,
	"(¬_¬)":       1,
	"(ಠ_ಠ)":       1,
	"(╯°□°）╯︵┻━┻": 1,
	"-__-":        1,
	"8-)":         1,
	"8-D":         1,
	"8D":          1,
	":(":          1,
	":((":         1,
	":(((":        1,
	":()":         1,
	":)))":        1,
	":-)":         1,
	":-))":        1,
	":-)))":       1,
	":-*":         1,
	":-/":         1,
	":-X":         1,
	":-]":         1,
	":-o":         1,
	":-p":         1,
	":-x":         1,
	":-|":         1,
	":-}":         1,
	":0":          1,
	":3":          1,
	":P":          1,
	":]":          1,
	":`(":         1,
	":`)":         1,
	":`-(":        1,
	":o":          1,
	":o)":         1,
	"=(":          1,
	"=)":          1,
	"=D":          1,
	"=|":          1,
	"@_@":         1,
	"O.o":         1,
	"O_o":         1,
	"V_V":         1,
	"XDD":         1,
	"[-:":         1,
	"^___^":       1,
	"o_0":         1,
	"o_O":         1,
	"o_o":         1,
	"v_v":         1,
	"xD":          1,
	"xDD":         1,
	"¯\\(ツ)/¯":    1,
}
