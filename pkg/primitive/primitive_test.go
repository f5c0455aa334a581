// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package primitive_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/primitive"
)

// Pinned outputs of the BLAKE2s parameterization. The values for the
// 8193-byte all-zero tree are fixed literals: any change to the
// parameter block mapping shows up here bit for bit.
func TestBlake2sPinnedVectors(t *testing.T) {
	c := primitive.NewBlake2s()
	zeros := make([]byte, bao.ChunkSize)

	for _, tc := range []struct {
		name  string
		block []byte
		p     primitive.Params
		want  string
	}{
		{
			name:  "empty root chunk",
			block: nil,
			p:     primitive.Params{Level: primitive.Leaf, Counter: 0, Final: true},
			want:  "99fa3a0ee4b435ff17157e205f091cac3938e82335e9684446e513ea1c3b698a",
		},
		{
			name:  "zero chunk 0",
			block: zeros,
			p:     primitive.Params{Level: primitive.Leaf, Counter: 0},
			want:  "8a2f91d3a705da3efca550d55b2d48745cff30ed4f2a8e07306a5dcb00eac628",
		},
		{
			name:  "zero chunk 1",
			block: zeros,
			p:     primitive.Params{Level: primitive.Leaf, Counter: 1},
			want:  "f20b0ffbe9bb8ca084a29500f81947c791cd43d45c4a81cfdd1da6eec35a5071",
		},
		{
			name:  "one byte chunk 2",
			block: []byte{0},
			p:     primitive.Params{Level: primitive.Leaf, Counter: 2},
			want:  "73912819f3e48dbaeea7c24078e27ab3b8ffefa304be78dfdc06f4c74a945412",
		},
		{
			name:  "root chunk of 4096 zeros",
			block: zeros,
			p:     primitive.Params{Level: primitive.Leaf, Counter: 0, Final: true},
			want:  "930f49df68777515ba0891aa7ece3918070517c1ae65ad8b39ec7108d96ebce6",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Compress(tc.block, tc.p)
			if err != nil {
				t.Fatal(err)
			}
			if hex.EncodeToString(got[:]) != tc.want {
				t.Fatalf("got %x, want %s", got, tc.want)
			}
		})
	}
}

func TestBlake2sParentVectors(t *testing.T) {
	c := primitive.NewBlake2s()

	c0 := mustHex(t, "8a2f91d3a705da3efca550d55b2d48745cff30ed4f2a8e07306a5dcb00eac628")
	c1 := mustHex(t, "f20b0ffbe9bb8ca084a29500f81947c791cd43d45c4a81cfdd1da6eec35a5071")
	c2 := mustHex(t, "73912819f3e48dbaeea7c24078e27ab3b8ffefa304be78dfdc06f4c74a945412")

	p1, err := c.Compress(append(append([]byte{}, c0...), c1...), primitive.Params{Level: primitive.Interior})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := hex.EncodeToString(p1[:]), "054a259e2c0dc4abf02fc98ee6af41f95e0a02d45ffff99a5f72e7f65c26c499"; got != want {
		t.Fatalf("interior parent: got %s, want %s", got, want)
	}

	root, err := c.Compress(append(p1[:], c2...), primitive.Params{Level: primitive.Interior, Final: true})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := hex.EncodeToString(root[:]), "dc0b33f1d2c67cef63515c99c3cce89cde24196cda1c66bd47227d7afa5ac83c"; got != want {
		t.Fatalf("root parent: got %s, want %s", got, want)
	}
}

// Leaves, interior nodes and the root marker must never collide: the
// same block under different parameters yields different hashes.
func TestDomainSeparation(t *testing.T) {
	c := primitive.NewBlake2s()
	block := make([]byte, bao.ParentSize)

	params := []primitive.Params{
		{Level: primitive.Leaf, Counter: 0},
		{Level: primitive.Leaf, Counter: 0, Final: true},
		{Level: primitive.Leaf, Counter: 1},
		{Level: primitive.Interior},
		{Level: primitive.Interior, Final: true},
	}
	seen := make(map[[bao.HashSize]byte]int)
	for i, p := range params {
		h, err := c.Compress(block, p)
		if err != nil {
			t.Fatal(err)
		}
		if j, ok := seen[h]; ok {
			t.Fatalf("params %d and %d collide: %x", i, j, h)
		}
		seen[h] = i
	}
}

// Batching is a throughput knob, never a hashing parameter.
func TestCompressBatchMatchesCompress(t *testing.T) {
	c := primitive.NewBlake2s()
	blocks := [][]byte{
		make([]byte, bao.ChunkSize),
		bytes.Repeat([]byte{7}, 100),
		nil,
	}
	params := []primitive.Params{
		{Level: primitive.Leaf, Counter: 0},
		{Level: primitive.Leaf, Counter: 1},
		{Level: primitive.Leaf, Counter: 2},
	}
	batched, err := primitive.CompressAll(c, blocks, params)
	if err != nil {
		t.Fatal(err)
	}
	for i := range blocks {
		single, err := c.Compress(blocks[i], params[i])
		if err != nil {
			t.Fatal(err)
		}
		if single != batched[i] {
			t.Fatalf("block %d: batch %x, single %x", i, batched[i], single)
		}
	}
}

// CompressAll must prefer the batch entry point when the compressor
// provides one.
func TestCompressAllDispatch(t *testing.T) {
	c := &countingCompressor{inner: primitive.NewBlake2s()}
	blocks := [][]byte{{1}, {2}}
	params := []primitive.Params{
		{Level: primitive.Leaf, Counter: 0},
		{Level: primitive.Leaf, Counter: 1},
	}
	if _, err := primitive.CompressAll(c, blocks, params); err != nil {
		t.Fatal(err)
	}
	if c.batchCalls != 1 {
		t.Fatalf("batch calls: got %d, want 1", c.batchCalls)
	}
	if c.singleCalls != 0 {
		t.Fatalf("single calls: got %d, want 0", c.singleCalls)
	}
}

type countingCompressor struct {
	inner       primitive.Compressor
	singleCalls int
	batchCalls  int
}

func (c *countingCompressor) Compress(block []byte, p primitive.Params) ([bao.HashSize]byte, error) {
	c.singleCalls++
	return c.inner.Compress(block, p)
}

func (c *countingCompressor) CompressBatch(blocks [][]byte, params []primitive.Params) ([][bao.HashSize]byte, error) {
	c.batchCalls++
	out := make([][bao.HashSize]byte, len(blocks))
	for i := range blocks {
		h, err := c.inner.Compress(blocks[i], params[i])
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
