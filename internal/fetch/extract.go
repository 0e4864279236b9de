package fetch

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// ExtractOptions select the parts of a page that make up the article.
type ExtractOptions struct {
	TitleSelector   string // Default "h1"
	ContentSelector string // Default ".td-post-content"
	Readability     bool
}

// Page is the extracted article.
type Page struct {
	Title string
	Text  string // Title followed directly by the body text
}

// Extract pulls the article out of an HTML page.
//
// The title is the text of the first TitleSelector match and the body the
// text of the first ContentSelector match; the article text is the two
// joined without a separator. When the content selector matches nothing and
// opts.Readability is set, the readability algorithm locates the article
// instead. Otherwise ErrNoContent is returned.
func Extract(pageURL string, body []byte, opts ExtractOptions) (Page, error) {
	titleSel := opts.TitleSelector
	if titleSel == "" {
		titleSel = "h1"
	}
	contentSel := opts.ContentSelector
	if contentSel == "" {
		contentSel = ".td-post-content"
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse document: %w", err)
	}

	title := doc.Find(titleSel).First().Text()
	content := doc.Find(contentSel).First()
	if content.Length() > 0 {
		return Page{Title: title, Text: title + content.Text()}, nil
	}

	if !opts.Readability {
		return Page{}, ErrNoContent
	}
	return extractReadable(pageURL, body)
}

func extractReadable(pageURL string, body []byte) (Page, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return Page{}, fmt.Errorf("readability: %w", err)
	}

	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(article.Content))
	if strings.TrimSpace(text) == "" {
		return Page{}, ErrNoContent
	}

	title := strings.TrimSpace(article.Title)
	return Page{Title: title, Text: title + text}, nil
}

// DetectLanguage returns the ISO 639-1 code of the dominant language of
// text and whether the detection is reliable. Empty text yields "".
func DetectLanguage(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391(), info.IsReliable()
}
