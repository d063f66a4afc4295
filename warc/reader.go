// Package warc loads web-archive records from WARC files, either plain or
// compressed, using github.com/slyrz/warc.
package warc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/ccqa"
	"github.com/slyrz/warc"
)

// Compile-time interface verification.
var _ ccqa.ArchiveReader = (*ArchiveReader)(nil)

const (
	// DefaultMaxBodySize bounds the bytes kept for a single record.
	DefaultMaxBodySize = 64 << 20

	// maxConsecutiveErrors ends reading when the stream stops yielding records.
	maxConsecutiveErrors = 8
)

// ArchiveReader implements ccqa.ArchiveReader for WARC files on disk.
type ArchiveReader struct {
	maxBodySize int64
}

// ArchiveReaderOption configures an ArchiveReader.
type ArchiveReaderOption func(*ArchiveReader)

// WithMaxBodySize sets the largest record body that is kept. Larger records
// are skipped. Defaults to DefaultMaxBodySize.
func WithMaxBodySize(n int64) ArchiveReaderOption {
	return func(a *ArchiveReader) {
		a.maxBodySize = n
	}
}

// NewArchiveReader creates a new ArchiveReader.
func NewArchiveReader(opts ...ArchiveReaderOption) *ArchiveReader {
	a := &ArchiveReader{maxBodySize: DefaultMaxBodySize}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ReadArchive decodes every record in the file at path. Records that fail to
// decode are counted in Archive.Skipped; reading stops early only when the
// stream itself is exhausted or unreadable.
func (a *ArchiveReader) ReadArchive(ctx context.Context, path string) (*ccqa.Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	r, err := warc.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive stream: %w", err)
	}
	defer r.Close()

	archive := &ccqa.Archive{}
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.ReadRecord()
		if err == io.EOF {
			return archive, nil
		} else if err != nil {
			archive.Skipped++
			failures++
			if errors.Is(err, io.ErrUnexpectedEOF) || failures >= maxConsecutiveErrors {
				return archive, nil
			}
			continue
		}
		failures = 0

		raw, err := a.convert(rec)
		if err != nil {
			archive.Skipped++
			continue
		}
		archive.Records = append(archive.Records, raw)
	}
}

// convert copies rec into a RawRecord. The content is always drained so the
// next record starts at the right offset.
func (a *ArchiveReader) convert(rec *warc.Record) (*ccqa.RawRecord, error) {
	defer io.Copy(io.Discard, rec.Content)

	body, err := io.ReadAll(io.LimitReader(rec.Content, a.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read record body: %w", err)
	}
	if int64(len(body)) > a.maxBodySize {
		return nil, ccqa.Errorf(ccqa.EMALFORMED, "record body exceeds %d bytes", a.maxBodySize)
	}

	header := ccqa.Header{}
	for name, value := range rec.Header {
		header.Set(name, value)
	}
	return &ccqa.RawRecord{Header: header, Body: body}, nil
}
