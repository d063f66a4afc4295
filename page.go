package ccqa

import "context"

// QuestionType is the itemtype that marks a Question subtree.
const QuestionType = "https://schema.org/Question"

// LanguageUnknown is reported when a page declares no language.
const LanguageUnknown = "-"

// Page is the minified Question markup extracted from one archived page.
type Page struct {
	MHTML     string `json:"mhtml"`
	Language  string `json:"language"`
	URI       string `json:"uri"`
	IPAddress string `json:"ip_address"`
}

// Extractor turns a raw archive record into a Page.
type Extractor interface {
	// Extract returns the Page for rec. Records that carry no Question
	// markup return ENOMATCH; captures without a header/body boundary
	// return EMALFORMED. A returned Page may have empty markup.
	Extract(rec *RawRecord) (*Page, error)
}

// PageWriter persists the final page collection.
type PageWriter interface {
	WritePages(ctx context.Context, pages []*Page) error
}

// MultiPageWriter returns a PageWriter that writes to each writer in order,
// stopping at the first error.
func MultiPageWriter(writers ...PageWriter) PageWriter {
	return multiPageWriter(writers)
}

type multiPageWriter []PageWriter

func (m multiPageWriter) WritePages(ctx context.Context, pages []*Page) error {
	for _, w := range m {
		if err := w.WritePages(ctx, pages); err != nil {
			return err
		}
	}
	return nil
}
