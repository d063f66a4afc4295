package ccqa

import (
	"context"
	"strings"
)

// WARC header names read by the extractor.
const (
	HeaderType      = "WARC-Type"
	HeaderTargetURI = "WARC-Target-URI"
	HeaderIPAddress = "WARC-IP-Address"
)

// Header maps archive record header names to values.
// Names are matched case-insensitively.
type Header map[string]string

// Get returns the value for name, or "" if absent.
func (h Header) Get(name string) string {
	return h[strings.ToLower(name)]
}

// Set stores value under name, replacing any existing value.
func (h Header) Set(name, value string) {
	h[strings.ToLower(name)] = value
}

// RawRecord is one captured transaction inside a web archive.
type RawRecord struct {
	Header Header
	Body   []byte // protocol headers, blank line, payload
}

// Type returns the record's WARC-Type, e.g. "response".
func (r *RawRecord) Type() string {
	return r.Header.Get(HeaderType)
}

// Archive holds every record decoded from one archive file.
type Archive struct {
	Records []*RawRecord

	// Skipped counts records that could not be decoded.
	Skipped int
}

// ArchiveReader loads the records of an archive file.
type ArchiveReader interface {
	// ReadArchive decodes all records at path.
	// Records that fail to decode are counted in Archive.Skipped.
	// Returns an error only when the archive cannot be read at all.
	ReadArchive(ctx context.Context, path string) (*Archive, error)
}
