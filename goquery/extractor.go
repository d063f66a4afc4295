// Package goquery provides Question discovery and record extraction on top
// of goquery documents.
package goquery

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ccqa"
	ccqahtml "github.com/fwojciec/ccqa/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Compile-time interface verification.
var _ ccqa.Extractor = (*Extractor)(nil)

// headerBoundary separates the captured protocol headers from the payload.
const headerBoundary = "\r\n\r\n"

// ParseFunc builds a document from a payload.
type ParseFunc func(r io.Reader) (*goquery.Document, error)

// Extractor implements ccqa.Extractor. It is safe for concurrent use; every
// call builds and discards its own document.
type Extractor struct {
	parse ParseFunc
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithParser replaces the document parser.
// Defaults to goquery.NewDocumentFromReader.
func WithParser(parse ParseFunc) ExtractorOption {
	return func(e *Extractor) {
		e.parse = parse
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{parse: goquery.NewDocumentFromReader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the minified Question markup of rec.
func (e *Extractor) Extract(rec *ccqa.RawRecord) (*ccqa.Page, error) {
	body := decode(rec.Body)

	// Most captures carry no Question markup; skip them before parsing.
	if !strings.Contains(body, ccqa.QuestionType) {
		return nil, ccqa.Errorf(ccqa.ENOMATCH, "no question vocabulary in body")
	}

	_, content, ok := strings.Cut(body, headerBoundary)
	if !ok {
		return nil, ccqa.Errorf(ccqa.EMALFORMED, "no header boundary in body")
	}

	doc, err := e.parse(strings.NewReader(content))
	if err != nil {
		return nil, ccqa.Errorf(ccqa.EMALFORMED, "failed to parse HTML: %v", err)
	}

	language, ok := FindLanguage(doc)
	if !ok {
		language = ccqa.LanguageUnknown
	}

	questions := FindQuestions(doc)
	if len(questions) == 0 {
		return nil, ccqa.Errorf(ccqa.ENOMATCH, "no question element")
	}

	var b strings.Builder
	for _, q := range questions {
		markup, err := ccqahtml.Minify(q)
		if err != nil {
			return nil, ccqa.Errorf(ccqa.EINTERNAL, "failed to render question: %v", err)
		}
		b.WriteString(markup)
	}

	return &ccqa.Page{
		MHTML:     b.String(),
		Language:  language,
		URI:       rec.Header.Get(ccqa.HeaderTargetURI),
		IPAddress: rec.Header.Get(ccqa.HeaderIPAddress),
	}, nil
}

// decode converts body to UTF-8, replacing invalid sequences.
func decode(body []byte) string {
	s, _, err := transform.String(runes.ReplaceIllFormed(), string(body))
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD")
	}
	return s
}
