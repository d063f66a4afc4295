package mock

import (
	"context"

	"github.com/fwojciec/ccqa"
)

var _ ccqa.PageWriter = (*PageWriter)(nil)

// PageWriter is a mock implementation of ccqa.PageWriter.
type PageWriter struct {
	WritePagesFn func(ctx context.Context, pages []*ccqa.Page) error
}

func (w *PageWriter) WritePages(ctx context.Context, pages []*ccqa.Page) error {
	return w.WritePagesFn(ctx, pages)
}
