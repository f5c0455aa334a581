// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode implements the verifying side of the bao encoding: a
// sequential state machine that re-derives the expected tree shape from
// the length header, validates every node hash against the externally
// supplied root fingerprint and emits authenticated content bytes.
//
// A decoder session owns its cursor and verification stack exclusively
// and is not internally parallel; any number of independent sessions
// may run concurrently over different streams. A validation failure
// poisons the session: every later call returns the same error and no
// byte past the failure point may be trusted.
package decode

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/logging"
	"github.com/gobao/bao/pkg/primitive"
	"github.com/gobao/bao/pkg/tree"
)

// frame is one entry of the verification stack: a subtree that still
// has to be validated, the hash it must validate against, and whether
// it is the topmost node of the tree. The stack replaces call-stack
// recursion so a session can suspend and resume at any node boundary.
type frame struct {
	exp  [bao.HashSize]byte
	span tree.Span
	root bool
}

// Option configures a decoder session.
type Option func(*options)

type options struct {
	compressor primitive.Compressor
	logger     logging.Logger
}

// WithCompressor selects the compression primitive. It must match the
// one the encoding was produced with.
func WithCompressor(c primitive.Compressor) Option {
	return func(o *options) { o.compressor = c }
}

// WithLogger attaches a logger for trace-level traversal events.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) options {
	o := options{
		compressor: primitive.NewBlake2s(),
		logger:     logging.NewNoop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decoder reads a combined or outboard encoding and emits authenticated
// content bytes. It implements io.Reader, and io.Seeker when the
// underlying stream (and, for outboard decoding, the content stream)
// supports seeking.
type Decoder struct {
	r        io.Reader // node stream: combined encoding or outboard tree
	content  io.Reader // chunk payload source, outboard only
	outboard bool

	comp    primitive.Compressor
	logger  logging.Logger
	metrics metrics

	root    [bao.HashSize]byte
	started bool
	n       uint64 // claimed content length, trusted only node by node

	stack      []frame
	chunk      []byte // bytes of the last validated chunk
	chunkStart uint64 // content offset of chunk[0]
	chunkOff   int    // read cursor within chunk
	lpos       uint64 // logical content position of the next byte
	contentPos uint64 // next outboard content stream offset
	atEnd      bool

	finalValidated bool // the last chunk on the traversal path checked out
	err            error
}

// NewDecoder creates a session over a combined encoding. The root
// fingerprint is the trust anchor and is never part of the stream.
func NewDecoder(r io.Reader, root bao.Root, opts ...Option) *Decoder {
	o := applyOptions(opts)
	d := &Decoder{
		r:       r,
		comp:    o.compressor,
		logger:  o.logger,
		metrics: newMetrics(),
	}
	copy(d.root[:], root.Bytes())
	return d
}

// NewOutboardDecoder creates a session over an outboard encoding, with
// chunk payload bytes supplied by the separate content stream.
func NewOutboardDecoder(outboard, content io.Reader, root bao.Root, opts ...Option) *Decoder {
	d := NewDecoder(outboard, root, opts...)
	d.content = content
	d.outboard = true
	return d
}

// start consumes the length header and seeds the verification stack
// with the root frame. The claimed length is rejected before traversal
// if its encoded size cannot be represented.
func (d *Decoder) start() error {
	var hdr [bao.SpanSize]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return fmt.Errorf("read length header: %w", truncated(err))
	}
	d.n = binary.LittleEndian.Uint64(hdr[:])
	if _, err := tree.EncodedSize(d.n, d.outboard); err != nil {
		return err
	}
	d.stack = append(d.stack[:0], frame{exp: d.root, span: tree.NewSpan(d.n), root: true})
	d.started = true
	d.logger.Tracef("decode: start, claimed length %d", d.n)
	return nil
}

// Read emits authenticated content bytes. It returns io.EOF only after
// the final chunk of the claimed length has been validated.
func (d *Decoder) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if !d.started {
		if err := d.start(); err != nil {
			return 0, d.fail(err)
		}
	}
	for {
		if d.chunkOff < len(d.chunk) {
			n := copy(p, d.chunk[d.chunkOff:])
			d.chunkOff += n
			d.lpos += uint64(n)
			d.metrics.BytesEmitted.Add(float64(n))
			return n, nil
		}
		if d.atEnd || len(d.stack) == 0 {
			return 0, io.EOF
		}
		if err := d.step(); err != nil {
			return 0, d.fail(err)
		}
	}
}

// step validates the node at the top of the stack: a parent splits into
// its two children, a chunk becomes readable content.
func (d *Decoder) step() error {
	f := d.stack[len(d.stack)-1]
	if f.span.IsChunk() {
		return d.stepChunk(f, 0)
	}
	var buf [bao.ParentSize]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return fmt.Errorf("read parent node at %d: %w", f.span.Start, truncated(err))
	}
	left, right, err := verifyParent(d.comp, buf[:], f.exp, f.root)
	if err != nil {
		d.metrics.HashMismatches.Inc()
		return err
	}
	ls, rs := f.span.Split()
	d.stack = d.stack[:len(d.stack)-1]
	d.stack = append(d.stack, frame{exp: right, span: rs})
	d.stack = append(d.stack, frame{exp: left, span: ls})
	return nil
}

// stepChunk reads and validates the chunk frame and makes its bytes
// readable from the given offset within the chunk.
func (d *Decoder) stepChunk(f frame, skip uint64) error {
	length := f.span.Length()
	if cap(d.chunk) < int(length) {
		d.chunk = make([]byte, length)
	}
	d.chunk = d.chunk[:length]

	src := d.r
	if d.outboard {
		if d.contentPos != f.span.Start {
			cs, ok := d.content.(io.Seeker)
			if !ok {
				return bao.ErrNotSeekable
			}
			if _, err := cs.Seek(int64(f.span.Start), io.SeekStart); err != nil {
				return fmt.Errorf("seek content to %d: %w", f.span.Start, err)
			}
			d.contentPos = f.span.Start
		}
		src = d.content
	}
	if length > 0 {
		if _, err := io.ReadFull(src, d.chunk); err != nil {
			return fmt.Errorf("read chunk %d: %w", f.span.ChunkIndex(), truncated(err))
		}
	}
	if d.outboard {
		d.contentPos = f.span.End
	}
	if err := verifyChunk(d.comp, d.chunk, f.span, f.exp, f.root); err != nil {
		d.metrics.HashMismatches.Inc()
		return err
	}
	d.metrics.ChunksVerified.Inc()
	d.stack = d.stack[:len(d.stack)-1]
	d.chunkStart = f.span.Start
	d.chunkOff = int(skip)
	d.lpos = f.span.Start + skip
	if f.span.End == d.n {
		d.finalValidated = true
	}
	return nil
}

// Seek repositions the read cursor. Whole subtrees between the current
// position and the target are skipped with layout arithmetic, without
// reading or hashing them. An end-relative seek first validates the
// final chunk: the claimed length is never revealed, not even as a seek
// base, before the tree's right edge has been authenticated.
func (d *Decoder) Seek(offset int64, whence int) (int64, error) {
	if d.err != nil {
		return 0, d.err
	}
	if !d.started {
		if err := d.start(); err != nil {
			return 0, d.fail(err)
		}
	}
	var target uint64
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, bao.ErrOffset
		}
		target = uint64(offset)
	case io.SeekCurrent:
		if offset < 0 && uint64(-offset) > d.lpos {
			return 0, bao.ErrOffset
		}
		target = d.lpos + uint64(offset)
	case io.SeekEnd:
		if err := d.ensureFinalValidated(); err != nil {
			return 0, d.failSeek(err)
		}
		if offset < 0 && uint64(-offset) > d.n {
			return 0, bao.ErrOffset
		}
		target = d.n + uint64(offset)
	default:
		return 0, bao.ErrWhence
	}
	d.metrics.Seeks.Inc()
	if err := d.seekTo(target); err != nil {
		return 0, d.failSeek(err)
	}
	return int64(target), nil
}

// Length returns the authenticated content length. It validates the
// final chunk first, so a decoder over a tampered length header fails
// here instead of reporting the forged value.
func (d *Decoder) Length() (int64, error) {
	if d.err != nil {
		return 0, d.err
	}
	if !d.started {
		if err := d.start(); err != nil {
			return 0, d.fail(err)
		}
	}
	if !d.finalValidated {
		restore := d.lpos
		if err := d.ensureFinalValidated(); err != nil {
			return 0, d.failSeek(err)
		}
		if err := d.seekTo(restore); err != nil {
			return 0, d.failSeek(err)
		}
	}
	return int64(d.n), nil
}

// ensureFinalValidated authenticates the path to the final chunk. It
// moves the cursor.
func (d *Decoder) ensureFinalValidated() error {
	if d.finalValidated {
		return nil
	}
	if d.n == 0 {
		// The empty tree has no offset to descend to: validate the
		// single empty chunk directly.
		return d.step()
	}
	return d.descendTo(d.n - 1)
}

// seekTo positions the logical cursor at target. Positions at or past
// the content end are only reachable once the final chunk has been
// validated.
func (d *Decoder) seekTo(target uint64) error {
	if target >= d.n {
		if err := d.ensureFinalValidated(); err != nil {
			return err
		}
		d.stack = d.stack[:0]
		d.chunk = d.chunk[:0]
		d.chunkOff = 0
		d.atEnd = true
		d.lpos = target
		return nil
	}
	return d.descendTo(target)
}

// descendTo walks the tree down to the chunk holding the target offset,
// validating every node on the path and skipping the encoded bytes of
// every subtree that does not contain it. A target left of the current
// coverage resets the stack to the root frame.
func (d *Decoder) descendTo(target uint64) error {
	// The target may lie in the chunk that is already validated.
	if target >= d.chunkStart && target < d.chunkStart+uint64(len(d.chunk)) {
		d.chunkOff = int(target - d.chunkStart)
		d.lpos = target
		d.atEnd = false
		return nil
	}
	if len(d.stack) == 0 || target < d.stack[len(d.stack)-1].span.Start {
		if err := d.reset(); err != nil {
			return err
		}
	}
	d.atEnd = false
	for {
		f := d.stack[len(d.stack)-1]
		if f.span.Contains(target) {
			if f.span.IsChunk() {
				return d.stepChunk(f, target-f.span.Start)
			}
			if err := d.step(); err != nil {
				return err
			}
			continue
		}
		// Subtree strictly before the target: fast-forward past its
		// encoded bytes without reading or hashing.
		if err := d.skip(tree.SubtreeEncodedSize(f.span, d.outboard)); err != nil {
			return err
		}
		d.stack = d.stack[:len(d.stack)-1]
	}
}

// reset rewinds the session to the root frame, right after the header.
func (d *Decoder) reset() error {
	rs, ok := d.r.(io.Seeker)
	if !ok {
		return bao.ErrNotSeekable
	}
	if _, err := rs.Seek(bao.SpanSize, io.SeekStart); err != nil {
		return fmt.Errorf("seek encoding: %w", err)
	}
	d.stack = append(d.stack[:0], frame{exp: d.root, span: tree.NewSpan(d.n), root: true})
	d.chunk = d.chunk[:0]
	d.chunkStart = 0
	d.chunkOff = 0
	d.metrics.Resets.Inc()
	return nil
}

// skip fast-forwards the node stream by n encoded bytes.
func (d *Decoder) skip(n uint64) error {
	if n == 0 {
		return nil
	}
	rs, ok := d.r.(io.Seeker)
	if !ok {
		return bao.ErrNotSeekable
	}
	if _, err := rs.Seek(int64(n), io.SeekCurrent); err != nil {
		return fmt.Errorf("seek encoding: %w", err)
	}
	return nil
}

// fail poisons the session. io.EOF is never a failure.
func (d *Decoder) fail(err error) error {
	d.err = err
	return err
}

// failSeek poisons the session unless the error only states that the
// underlying stream cannot seek, which leaves the session intact.
func (d *Decoder) failSeek(err error) error {
	if errors.Is(err, bao.ErrNotSeekable) {
		return err
	}
	return d.fail(err)
}

// verifyParent checks a 64-byte parent value against the expected hash
// and returns the child hashes it carries.
func verifyParent(c primitive.Compressor, value []byte, exp [bao.HashSize]byte, root bool) (left, right [bao.HashSize]byte, err error) {
	got, err := c.Compress(value, primitive.Params{
		Level: primitive.Interior,
		Final: root,
	})
	if err != nil {
		return left, right, err
	}
	if subtle.ConstantTimeCompare(got[:], exp[:]) != 1 {
		return left, right, bao.ErrHashMismatch
	}
	copy(left[:], value[:bao.HashSize])
	copy(right[:], value[bao.HashSize:])
	return left, right, nil
}

// verifyChunk checks chunk bytes against the expected hash using the
// layout-implied counter and finalization parameters.
func verifyChunk(c primitive.Compressor, data []byte, span tree.Span, exp [bao.HashSize]byte, root bool) error {
	got, err := c.Compress(data, primitive.Params{
		Level:   primitive.Leaf,
		Counter: span.Counter(),
		Final:   root,
	})
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(got[:], exp[:]) != 1 {
		return bao.ErrHashMismatch
	}
	return nil
}

// truncated maps end-of-stream conditions of io.ReadFull to the
// truncation error. A short read is never accepted as success.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return bao.ErrTruncated
	}
	return err
}
