// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tree implements the layout of the bao hash tree as pure
// functions over byte ranges. Every component of the system derives the
// tree shape from this package and never re-derives it independently,
// so that hashing, encoding, decoding and slicing always agree on the
// same tree for the same content length.
//
// The shape rule: a range of at most ChunkSize bytes is a single chunk.
// A longer range splits at the largest power of two multiple of
// ChunkSize strictly less than its length, so the left subtree is
// always a perfect tree over whole chunks and the right subtree holds
// the remainder.
package tree

import (
	"math"
	"math/bits"

	"github.com/gobao/bao/pkg/bao"
)

// SplitPoint returns the length of the left subtree for a range of n
// bytes. It is defined for n > ChunkSize and returns the largest power
// of two multiple of ChunkSize strictly less than n.
func SplitPoint(n uint64) uint64 {
	full := (n - 1) / bao.ChunkSize // at least 1 for n > ChunkSize
	return (uint64(1) << (bits.Len64(full) - 1)) * bao.ChunkSize
}

// Chunks returns the number of chunks covering n content bytes. The
// empty input counts as a single zero-length chunk.
func Chunks(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	return 1 + (n-1)/bao.ChunkSize
}

// Parents returns the number of parent nodes in the tree over n content
// bytes. A tree of c chunks has exactly c-1 parents.
func Parents(n uint64) uint64 {
	return Chunks(n) - 1
}

// Depth returns the height of the tree over n content bytes. It never
// exceeds bao.MaxDepth.
func Depth(n uint64) int {
	c := Chunks(n)
	return bits.Len64(c - 1)
}

// Span is a half-open byte range [Start, End) of the logical content.
type Span struct {
	Start uint64
	End   uint64
}

// NewSpan returns the span covering the whole content of n bytes.
func NewSpan(n uint64) Span {
	return Span{Start: 0, End: n}
}

// Length returns the number of bytes the span covers.
func (s Span) Length() uint64 {
	return s.End - s.Start
}

// IsChunk reports whether the span is a single leaf of the tree.
func (s Span) IsChunk() bool {
	return s.Length() <= bao.ChunkSize
}

// ChunkIndex returns the left-to-right position of the chunk starting
// the span. Chunks always begin at ChunkSize boundaries, so the index
// is derivable from the start offset alone.
func (s Span) ChunkIndex() uint64 {
	return s.Start / bao.ChunkSize
}

// Counter returns the per-chunk hashing counter for the chunk starting
// the span. Counters are assigned left to right and wrap at 2^32.
func (s Span) Counter() uint32 {
	return uint32(s.ChunkIndex())
}

// Split returns the left and right child spans of a parent span. It
// must only be called when IsChunk is false. The right child is always
// at least one byte.
func (s Span) Split() (Span, Span) {
	at := s.Start + SplitPoint(s.Length())
	return Span{Start: s.Start, End: at}, Span{Start: at, End: s.End}
}

// Overlaps reports whether two half-open spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether the content offset lies within the span.
func (s Span) Contains(off uint64) bool {
	return off >= s.Start && off < s.End
}

// FinalChunk returns the span of the last chunk of n content bytes.
// For n = 0 this is the single empty chunk.
func FinalChunk(n uint64) Span {
	return Span{Start: (Chunks(n) - 1) * bao.ChunkSize, End: n}
}

// EncodedSize returns the total size of the encoding of n content
// bytes, including the length header. The outboard variant omits the
// chunk payload. ErrLengthOverflow is returned if the size does not fit
// an uint64.
func EncodedSize(n uint64, outboard bool) (uint64, error) {
	nodes := Parents(n) * bao.ParentSize
	size := uint64(bao.SpanSize) + nodes
	if outboard {
		return size, nil
	}
	if n > math.MaxUint64-size {
		return 0, bao.ErrLengthOverflow
	}
	return size + n, nil
}

// SubtreeEncodedSize returns the number of encoded bytes occupied by
// the subtree covering the span, excluding the length header. This is
// the distance a decoder fast-forwards when skipping the subtree.
func SubtreeEncodedSize(s Span, outboard bool) uint64 {
	n := s.Length()
	nodes := Parents(n) * bao.ParentSize
	if outboard {
		return nodes
	}
	return nodes + n
}
