// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tree

import (
	"github.com/gobao/bao/pkg/bao"
)

// SlicePolicy configures how slice requests outside the committed
// content are resolved. The zero value is the permissive reference
// behavior: requests past the content end are clamped and a zero count
// is rounded up to one byte.
type SlicePolicy struct {
	// Strict rejects requests reaching beyond the content end with
	// bao.ErrOutOfBounds instead of clamping them.
	Strict bool
	// LiteralZeroCount keeps a zero-byte request at zero emitted bytes
	// instead of rounding it up to one. The extracted node set is
	// unaffected: a slice always contains at least one chunk, only the
	// decoder output width changes.
	LiteralZeroCount bool
}

// ResolveSlice resolves a slice request of count bytes at start against
// content of n bytes under the given policy. It returns the span of
// bytes the slice decoder emits and the covered span used for node
// selection, which is widened so that at least one chunk is always
// included: a zero-length request selects the chunk holding its start
// offset, and a request starting at or past the content end selects the
// final chunk.
func ResolveSlice(n, start, count uint64, p SlicePolicy) (emit, covered Span, err error) {
	if count == 0 && !p.LiteralZeroCount {
		count = 1
	}
	if p.Strict {
		if start > n || count > n-start {
			return Span{}, Span{}, bao.ErrOutOfBounds
		}
	}
	s := start
	if s > n {
		s = n
	}
	e := s + count
	if e < s || e > n { // clamp, also on uint64 wrap
		e = n
	}
	emit = Span{Start: s, End: e}

	if n == 0 {
		return emit, Span{}, nil
	}
	cs, ce := s, e
	if cs >= n {
		cs = n - 1 // request past the end selects the final chunk
	}
	if ce <= cs {
		ce = cs + 1
	}
	return emit, Span{Start: cs, End: ce}, nil
}

// SliceIncludes reports whether a slice covering the given request
// contains the node span. The single chunk of empty content is always
// included.
func SliceIncludes(n uint64, node, covered Span) bool {
	if n == 0 {
		return true
	}
	return node.Overlaps(covered)
}
