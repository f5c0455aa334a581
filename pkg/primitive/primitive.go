// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package primitive defines the contract of the fixed-size compression
// function underlying the tree hash, together with the default BLAKE2s
// implementation. The parameters domain-separate chunks from parent
// nodes and the root node from every other node, so structurally
// different positions in the tree can never produce colliding inputs to
// the underlying function.
package primitive

import (
	"github.com/gobao/bao/pkg/bao"
)

// Level distinguishes leaf blocks from interior node blocks.
type Level uint8

const (
	// Leaf marks a chunk of content bytes.
	Leaf Level = iota
	// Interior marks a parent node value of two concatenated child
	// hashes.
	Interior
)

// Params carry the domain separation parameters of one compression.
type Params struct {
	// Level of the node being hashed.
	Level Level
	// Counter is the left-to-right chunk index, wrapped at 2^32. It is
	// always zero for interior nodes.
	Counter uint32
	// Final is set only on the single topmost node of a tree.
	Final bool
}

// Compressor is the collaborator computing a single node hash. It must
// be a pure deterministic function of the block and parameters, free of
// cached state, so one instance is safely shared by concurrent
// sessions.
type Compressor interface {
	Compress(block []byte, p Params) ([bao.HashSize]byte, error)
}

// BatchCompressor is implemented by compressors that can hash several
// independent blocks in one invocation. Batching affects throughput
// only: the outputs must be identical to per-block Compress calls.
type BatchCompressor interface {
	Compressor
	CompressBatch(blocks [][]byte, params []Params) ([][bao.HashSize]byte, error)
}

// CompressAll hashes every block with its parameters, using the batch
// entry point when the compressor provides one.
func CompressAll(c Compressor, blocks [][]byte, params []Params) ([][bao.HashSize]byte, error) {
	if bc, ok := c.(BatchCompressor); ok {
		return bc.CompressBatch(blocks, params)
	}
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
