// Package bloom provides duplicate URI detection using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter records the URIs seen so far. A Bloom filter answers for URIs
// that were never added; positive answers are confirmed against an exact
// set, so no distinct URI is reported as seen.
type Filter struct {
	f     *bloom.BloomFilter
	exact map[string]struct{}
}

// NewFilter creates a new Filter sized for n expected URIs with the given
// false positive rate for the Bloom stage.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{
		f:     bloom.NewWithEstimates(n, fpRate),
		exact: make(map[string]struct{}, n),
	}
}

// Seen reports whether uri was added before and adds it.
func (f *Filter) Seen(uri string) bool {
	maybe := f.f.TestAndAddString(uri)
	if maybe {
		if _, ok := f.exact[uri]; ok {
			return true
		}
	}
	f.exact[uri] = struct{}{}
	return false
}
