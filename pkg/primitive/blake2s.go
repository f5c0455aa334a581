// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package primitive

import (
	"github.com/dchest/blake2s"

	"github.com/gobao/bao/pkg/bao"
)

// blake2sCompressor maps the node parameters onto the BLAKE2s tree
// hashing parameter block: fanout 2, maximum depth 64, leaf size
// ChunkSize and inner hash size HashSize. Chunks are hashed at node
// depth 0 with the counter as node offset, parent values at node depth
// 1 with offset 0, and the finalization marker sets the last-node flag.
type blake2sCompressor struct{}

// NewBlake2s returns the default tree-mode BLAKE2s compressor.
func NewBlake2s() Compressor {
	return blake2sCompressor{}
}

func (blake2sCompressor) Compress(block []byte, p Params) ([bao.HashSize]byte, error) {
	var out [bao.HashSize]byte
	t := blake2s.Tree{
		Fanout:        2,
		MaxDepth:      64,
		LeafSize:      bao.ChunkSize,
		InnerHashSize: bao.HashSize,
		IsLastNode:    p.Final,
	}
	if p.Level == Leaf {
		t.NodeOffset = uint64(p.Counter)
	} else {
		t.NodeDepth = 1
	}
	h, err := blake2s.New(&blake2s.Config{
		Size: bao.HashSize,
		Tree: &t,
	})
	if err != nil {
		return out, err
	}
	if _, err := h.Write(block); err != nil {
		return out, err
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// CompressBatch hashes the blocks one by one. BLAKE2s has no
// multi-instance entry point, the method exists so batched callers take
// a single code path for every compressor.
func (c blake2sCompressor) CompressBatch(blocks [][]byte, params []Params) ([][bao.HashSize]byte, error) {
	out := make([][bao.HashSize]byte, len(blocks))
	for i, b := range blocks {
		h, err := c.Compress(b, params[i])
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}
