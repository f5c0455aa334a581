// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encode serializes the hash tree of an input into the bao
// wire formats: the 8-byte little-endian length header followed by the
// tree in pre-order, parent values before the subtrees they commit to
// and chunk payload bytes at the leaves. The outboard variant carries
// the same parent values at the same positions but leaves the payload
// bytes in the original input.
package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/hasher"
	"github.com/gobao/bao/pkg/primitive"
	"github.com/gobao/bao/pkg/tree"
)

// Conf configures an Encoder. The zero value selects the BLAKE2s
// compressor.
type Conf struct {
	// Compressor is the node hashing primitive.
	Compressor primitive.Compressor
}

// Encoder serializes inputs. It holds no per-input state and is safe
// for concurrent use.
type Encoder struct {
	comp primitive.Compressor
}

// New creates an Encoder, filling unset configuration with defaults.
func New(conf Conf) *Encoder {
	if conf.Compressor == nil {
		conf.Compressor = primitive.NewBlake2s()
	}
	return &Encoder{comp: conf.Compressor}
}

// Encode writes the combined encoding of n bytes read from r and
// returns the root fingerprint.
func (e *Encoder) Encode(r io.ReaderAt, n int64, w io.Writer) (bao.Root, error) {
	return e.encode(r, n, w, false)
}

// EncodeOutboard writes the outboard encoding of n bytes read from r
// and returns the root fingerprint.
func (e *Encoder) EncodeOutboard(r io.ReaderAt, n int64, w io.Writer) (bao.Root, error) {
	return e.encode(r, n, w, true)
}

// session carries the per-input state of one encoding: the pre-order
// table of parent values built in the hashing pass and replayed in the
// writing pass, and a chunk buffer shared by both.
type session struct {
	comp  primitive.Compressor
	r     io.ReaderAt
	nodes [][bao.ParentSize]byte
	buf   [bao.ChunkSize]byte
}

func (e *Encoder) encode(r io.ReaderAt, n int64, w io.Writer, outboard bool) (bao.Root, error) {
	if n < 0 {
		return bao.ZeroRoot, fmt.Errorf("encode: negative length %d", n)
	}
	s := &session{
		comp:  e.comp,
		r:     r,
		nodes: make([][bao.ParentSize]byte, tree.Parents(uint64(n))),
	}
	span := tree.NewSpan(uint64(n))
	rootHash, err := s.fill(span, true, 0)
	if err != nil {
		return bao.ZeroRoot, err
	}
	var hdr [bao.SpanSize]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(n))
	if _, err := w.Write(hdr[:]); err != nil {
		return bao.ZeroRoot, fmt.Errorf("encode: write header: %w", err)
	}
	if err := s.emit(span, 0, w, outboard); err != nil {
		return bao.ZeroRoot, err
	}
	return bao.NewRoot(rootHash[:])
}

// fill computes the hash of the subtree at the given pre-order parent
// position, recording every parent value on the way. Only the path of
// the recursion is resident, the table grows by one 64-byte entry per
// parent.
func (s *session) fill(span tree.Span, root bool, pos uint64) ([bao.HashSize]byte, error) {
	if span.IsChunk() {
		data, err := s.readChunk(span)
		if err != nil {
			return [bao.HashSize]byte{}, err
		}
		return hasher.ChunkHash(s.comp, data, span.ChunkIndex(), root)
	}
	left, right := span.Split()
	lh, err := s.fill(left, false, pos+1)
	if err != nil {
		return [bao.HashSize]byte{}, err
	}
	rh, err := s.fill(right, false, pos+1+tree.Parents(left.Length()))
	if err != nil {
		return [bao.HashSize]byte{}, err
	}
	copy(s.nodes[pos][:bao.HashSize], lh[:])
	copy(s.nodes[pos][bao.HashSize:], rh[:])
	return hasher.ParentHash(s.comp, lh, rh, root)
}

// emit writes the subtree at the given pre-order parent position:
// parent value first, then the left and right subtrees, payload bytes
// at the leaves unless outboard.
func (s *session) emit(span tree.Span, pos uint64, w io.Writer, outboard bool) error {
	if span.IsChunk() {
		if outboard {
			return nil
		}
		data, err := s.readChunk(span)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("encode: write chunk %d: %w", span.ChunkIndex(), err)
		}
		return nil
	}
	if _, err := w.Write(s.nodes[pos][:]); err != nil {
		return fmt.Errorf("encode: write parent node at %d: %w", span.Start, err)
	}
	left, right := span.Split()
	if err := s.emit(left, pos+1, w, outboard); err != nil {
		return err
	}
	return s.emit(right, pos+1+tree.Parents(left.Length()), w, outboard)
}

func (s *session) readChunk(span tree.Span) ([]byte, error) {
	data := s.buf[:span.Length()]
	if len(data) == 0 {
		return data, nil
	}
	if _, err := s.r.ReadAt(data, int64(span.Start)); err != nil {
		return nil, fmt.Errorf("encode: read input at %d: %w", span.Start, err)
	}
	return data, nil
}

// Encode writes the combined encoding of n bytes read from r with the
// default configuration.
func Encode(r io.ReaderAt, n int64, w io.Writer) (bao.Root, error) {
	return New(Conf{}).Encode(r, n, w)
}

// EncodeOutboard writes the outboard encoding of n bytes read from r
// with the default configuration.
func EncodeOutboard(r io.ReaderAt, n int64, w io.Writer) (bao.Root, error) {
	return New(Conf{}).EncodeOutboard(r, n, w)
}

// EncodeBytes writes the combined encoding of data with the default
// configuration.
func EncodeBytes(data []byte, w io.Writer) (bao.Root, error) {
	return Encode(bytes.NewReader(data), int64(len(data)), w)
}
