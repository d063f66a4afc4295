package mock

import "github.com/fwojciec/ccqa"

var _ ccqa.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of ccqa.Extractor.
type Extractor struct {
	ExtractFn func(rec *ccqa.RawRecord) (*ccqa.Page, error)
}

func (e *Extractor) Extract(rec *ccqa.RawRecord) (*ccqa.Page, error) {
	return e.ExtractFn(rec)
}
