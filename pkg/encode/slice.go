// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/tree"
)

// Extract copies the minimal sub-encoding proving the requested byte
// range out of a combined encoding: the length header and, in
// pre-order, every node whose span overlaps the resolved request. The
// result always contains at least one chunk and is decodable
// sequentially, without seeking. Extraction itself verifies nothing,
// authentication happens on the decoding side.
func Extract(enc io.ReadSeeker, w io.Writer, start, count uint64, policy tree.SlicePolicy) error {
	var hdr [bao.SpanSize]byte
	if _, err := io.ReadFull(enc, hdr[:]); err != nil {
		return fmt.Errorf("extract: read length header: %w", truncated(err))
	}
	n := binary.LittleEndian.Uint64(hdr[:])
	if _, err := tree.EncodedSize(n, false); err != nil {
		return err
	}
	_, covered, err := tree.ResolveSlice(n, start, count, policy)
	if err != nil {
		return err
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("extract: write header: %w", err)
	}

	stack := []tree.Span{tree.NewSpan(n)}
	for len(stack) > 0 {
		span := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !tree.SliceIncludes(n, span, covered) {
			if err := skip(enc, tree.SubtreeEncodedSize(span, false)); err != nil {
				return err
			}
			continue
		}
		if span.IsChunk() {
			if err := copyN(w, enc, span.Length()); err != nil {
				return fmt.Errorf("extract: chunk %d: %w", span.ChunkIndex(), err)
			}
			continue
		}
		if err := copyN(w, enc, bao.ParentSize); err != nil {
			return fmt.Errorf("extract: parent node at %d: %w", span.Start, err)
		}
		left, right := span.Split()
		stack = append(stack, right, left)
	}
	return nil
}

func copyN(w io.Writer, r io.Reader, n uint64) error {
	if _, err := io.CopyN(w, r, int64(n)); err != nil {
		return truncated(err)
	}
	return nil
}

func skip(enc io.Seeker, n uint64) error {
	if n == 0 {
		return nil
	}
	if _, err := enc.Seek(int64(n), io.SeekCurrent); err != nil {
		return fmt.Errorf("extract: seek: %w", err)
	}
	return nil
}

// truncated maps end-of-stream conditions to the truncation error.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return bao.ErrTruncated
	}
	return err
}
