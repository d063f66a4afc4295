package warc_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/ccqa"
	"github.com/fwojciec/ccqa/warc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record renders one WARC record with the given extra header lines.
func record(recType, uri, body string, extra ...string) string {
	var b strings.Builder
	b.WriteString("WARC/1.0\r\n")
	fmt.Fprintf(&b, "WARC-Type: %s\r\n", recType)
	fmt.Fprintf(&b, "WARC-Target-URI: %s\r\n", uri)
	for _, h := range extra {
		b.WriteString(h + "\r\n")
	}
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(body))
	b.WriteString(body)
	b.WriteString("\r\n\r\n")
	return b.String()
}

// writeGzip writes records as a gzip file with one member per record.
func writeGzip(t *testing.T, records ...string) string {
	t.Helper()

	var buf bytes.Buffer
	for _, r := range records {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(r))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}
	path := filepath.Join(t.TempDir(), "in.warc.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writePlain(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "in.warc")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestArchiveReader_ReadArchive(t *testing.T) {
	t.Parallel()

	t.Run("reads plain records with headers and bodies", func(t *testing.T) {
		t.Parallel()

		path := writePlain(t, record("warcinfo", "", "software: test")+
			record("response", "https://example.com/q/1", "HTTP/1.1 200 OK\r\n\r\n<html></html>", "WARC-IP-Address: 192.0.2.1"))

		archive, err := warc.NewArchiveReader().ReadArchive(context.Background(), path)

		require.NoError(t, err)
		require.Len(t, archive.Records, 2)
		assert.Equal(t, 0, archive.Skipped)
		assert.Equal(t, "warcinfo", archive.Records[0].Type())
		assert.Equal(t, "response", archive.Records[1].Type())
		assert.Equal(t, "https://example.com/q/1", archive.Records[1].Header.Get(ccqa.HeaderTargetURI))
		assert.Equal(t, "192.0.2.1", archive.Records[1].Header.Get(ccqa.HeaderIPAddress))
		assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n<html></html>", string(archive.Records[1].Body))
	})

	t.Run("reads gzip members transparently", func(t *testing.T) {
		t.Parallel()

		path := writeGzip(t,
			record("response", "https://example.com/a", "A"),
			record("response", "https://example.com/b", "BB"),
		)

		archive, err := warc.NewArchiveReader().ReadArchive(context.Background(), path)

		require.NoError(t, err)
		require.Len(t, archive.Records, 2)
		assert.Equal(t, "A", string(archive.Records[0].Body))
		assert.Equal(t, "BB", string(archive.Records[1].Body))
	})

	t.Run("reads bodies containing blank lines and version strings", func(t *testing.T) {
		t.Parallel()

		body := "line\r\n\r\nWARC/1.0\r\nnot a record"
		path := writePlain(t, record("resource", "urn:x", body))

		archive, err := warc.NewArchiveReader().ReadArchive(context.Background(), path)

		require.NoError(t, err)
		require.Len(t, archive.Records, 1)
		assert.Equal(t, body, string(archive.Records[0].Body))
	})

	t.Run("skips records larger than the body limit and keeps reading", func(t *testing.T) {
		t.Parallel()

		path := writePlain(t, record("response", "https://example.com/big", "0123456789")+
			record("response", "https://example.com/small", "ok"))

		archive, err := warc.NewArchiveReader(warc.WithMaxBodySize(4)).ReadArchive(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, 1, archive.Skipped)
		require.Len(t, archive.Records, 1)
		assert.Equal(t, "https://example.com/small", archive.Records[0].Header.Get(ccqa.HeaderTargetURI))
	})

	t.Run("survives a content length beyond the data", func(t *testing.T) {
		t.Parallel()

		path := writePlain(t, "WARC/1.0\r\nWARC-Type: response\r\nContent-Length: 9223372036854775807\r\n\r\nshort")

		var archive *ccqa.Archive
		var err error
		require.NotPanics(t, func() {
			archive, err = warc.NewArchiveReader().ReadArchive(context.Background(), path)
		})

		require.NoError(t, err)
		assert.Equal(t, 1, len(archive.Records)+archive.Skipped)
		for _, rec := range archive.Records {
			assert.LessOrEqual(t, len(rec.Body), len("short"))
		}
	})

	t.Run("fails when the archive cannot be opened", func(t *testing.T) {
		t.Parallel()

		_, err := warc.NewArchiveReader().ReadArchive(context.Background(), filepath.Join(t.TempDir(), "missing.warc"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("stops on a cancelled context", func(t *testing.T) {
		t.Parallel()

		path := writePlain(t, record("response", "u", "A"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := warc.NewArchiveReader().ReadArchive(ctx, path)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
