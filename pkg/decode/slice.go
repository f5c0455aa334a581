// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/logging"
	"github.com/gobao/bao/pkg/primitive"
	"github.com/gobao/bao/pkg/tree"
)

// SliceDecoder decodes a slice produced for the same request
// parameters, sequentially and without seeking: subtrees the extractor
// omitted are simply never expected on the stream. It runs the same
// verification as Decoder and emits only the bytes of the requested
// range.
type SliceDecoder struct {
	r      io.Reader
	comp   primitive.Compressor
	logger logging.Logger

	root   [bao.HashSize]byte
	start  uint64
	count  uint64
	policy tree.SlicePolicy

	started bool
	n       uint64
	emit    tree.Span // byte range handed to the caller
	covered tree.Span // chunk selection range

	stack    []frame
	chunk    []byte
	chunkOff int
	err      error
}

// NewSliceDecoder creates a session over a slice stream for the given
// request. Request resolution follows the policy, which must match the
// extraction side only in the strictness of its bounds: the node set of
// a slice is independent of the zero-count policy.
func NewSliceDecoder(r io.Reader, root bao.Root, start, count uint64, policy tree.SlicePolicy, opts ...Option) *SliceDecoder {
	o := applyOptions(opts)
	d := &SliceDecoder{
		r:      r,
		comp:   o.compressor,
		logger: o.logger,
		start:  start,
		count:  count,
		policy: policy,
	}
	copy(d.root[:], root.Bytes())
	return d
}

func (d *SliceDecoder) startSession() error {
	var hdr [bao.SpanSize]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return fmt.Errorf("read length header: %w", truncated(err))
	}
	d.n = binary.LittleEndian.Uint64(hdr[:])
	if _, err := tree.EncodedSize(d.n, false); err != nil {
		return err
	}
	var err error
	d.emit, d.covered, err = tree.ResolveSlice(d.n, d.start, d.count, d.policy)
	if err != nil {
		return err
	}
	d.stack = append(d.stack[:0], frame{exp: d.root, span: tree.NewSpan(d.n), root: true})
	d.started = true
	d.logger.Tracef("decode: slice start, claimed length %d, emit [%d,%d)", d.n, d.emit.Start, d.emit.End)
	return nil
}

// Read emits the authenticated bytes of the requested range.
func (d *SliceDecoder) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if !d.started {
		if err := d.startSession(); err != nil {
			d.err = err
			return 0, err
		}
	}
	for {
		if d.chunkOff < len(d.chunk) {
			n := copy(p, d.chunk[d.chunkOff:])
			d.chunkOff += n
			return n, nil
		}
		if len(d.stack) == 0 {
			return 0, io.EOF
		}
		if err := d.step(); err != nil {
			d.err = err
			return 0, err
		}
	}
}

// step handles the top frame: frames outside the covered range were
// omitted by the extractor and are popped without consuming stream
// bytes, all others are validated exactly like in Decoder.
func (d *SliceDecoder) step() error {
	f := d.stack[len(d.stack)-1]
	if !tree.SliceIncludes(d.n, f.span, d.covered) {
		d.stack = d.stack[:len(d.stack)-1]
		return nil
	}
	if f.span.IsChunk() {
		return d.stepChunk(f)
	}
	var buf [bao.ParentSize]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return fmt.Errorf("read parent node at %d: %w", f.span.Start, truncated(err))
	}
	left, right, err := verifyParent(d.comp, buf[:], f.exp, f.root)
	if err != nil {
		return err
	}
	ls, rs := f.span.Split()
	d.stack = d.stack[:len(d.stack)-1]
	d.stack = append(d.stack, frame{exp: right, span: rs})
	d.stack = append(d.stack, frame{exp: left, span: ls})
	return nil
}

// stepChunk validates a chunk present on the slice stream and trims the
// readable bytes to the requested range.
func (d *SliceDecoder) stepChunk(f frame) error {
	length := f.span.Length()
	if cap(d.chunk) < int(length) {
		d.chunk = make([]byte, length)
	}
	d.chunk = d.chunk[:length]
	if length > 0 {
		if _, err := io.ReadFull(d.r, d.chunk); err != nil {
			return fmt.Errorf("read chunk %d: %w", f.span.ChunkIndex(), truncated(err))
		}
	}
	if err := verifyChunk(d.comp, d.chunk, f.span, f.exp, f.root); err != nil {
		return err
	}
	d.stack = d.stack[:len(d.stack)-1]

	// Trim to the intersection of the chunk with the emitted range.
	lo, hi := f.span.Start, f.span.End
	if d.emit.Start > lo {
		lo = d.emit.Start
	}
	if d.emit.End < hi {
		hi = d.emit.End
	}
	if lo >= hi {
		d.chunk = d.chunk[:0]
		d.chunkOff = 0
		return nil
	}
	d.chunk = d.chunk[lo-f.span.Start : hi-f.span.Start]
	d.chunkOff = 0
	return nil
}
