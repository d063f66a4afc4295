package mock

import (
	"context"

	"github.com/fwojciec/ccqa"
)

var _ ccqa.ArchiveReader = (*ArchiveReader)(nil)

// ArchiveReader is a mock implementation of ccqa.ArchiveReader.
type ArchiveReader struct {
	ReadArchiveFn func(ctx context.Context, path string) (*ccqa.Archive, error)
}

func (r *ArchiveReader) ReadArchive(ctx context.Context, path string) (*ccqa.Archive, error) {
	return r.ReadArchiveFn(ctx, path)
}
