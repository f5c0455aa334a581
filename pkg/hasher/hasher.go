// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hasher computes the root fingerprint of arbitrary content by
// driving the tree layout and the compression primitive. Hashing is a
// pure fork/join computation: large subtrees are hashed concurrently
// over disjoint ranges of the read-only input and joined into their
// parent hash, and sibling chunks within one worker are submitted to
// the primitive in batches. Neither concurrency nor batch width is a
// hashing parameter, the fingerprint is identical for every
// configuration.
package hasher

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/primitive"
	"github.com/gobao/bao/pkg/tree"
)

const (
	// DefaultMinParallelSize is the subtree byte length at which the
	// left and right subtrees are hashed concurrently.
	DefaultMinParallelSize = 1 << 20
	// DefaultBatchWidth is the number of sibling chunks hashed in one
	// batched primitive invocation.
	DefaultBatchWidth = 8
)

// ChunkHash computes the hash of one chunk of content bytes at the
// given left-to-right chunk index. The root flag is set only when the
// chunk is the single topmost node of the tree.
func ChunkHash(c primitive.Compressor, data []byte, index uint64, root bool) ([bao.HashSize]byte, error) {
	return c.Compress(data, primitive.Params{
		Level:   primitive.Leaf,
		Counter: uint32(index),
		Final:   root,
	})
}

// ParentHash computes the hash of a parent node from its two child
// hashes. The root flag is set only on the topmost node of the tree.
func ParentHash(c primitive.Compressor, left, right [bao.HashSize]byte, root bool) ([bao.HashSize]byte, error) {
	var block [bao.ParentSize]byte
	copy(block[:bao.HashSize], left[:])
	copy(block[bao.HashSize:], right[:])
	return c.Compress(block[:], primitive.Params{
		Level: primitive.Interior,
		Final: root,
	})
}

// Conf configures a Hasher. The zero value selects the BLAKE2s
// compressor and the default parallelism and batching parameters.
type Conf struct {
	// Compressor is the node hashing primitive.
	Compressor primitive.Compressor
	// MinParallelSize is the subtree byte length at and above which the
	// two child subtrees are hashed by concurrent workers. Set it above
	// the input length to force a single worker.
	MinParallelSize uint64
	// BatchWidth is the maximum number of sibling chunks submitted to
	// the primitive in one batch.
	BatchWidth int
}

// Hasher computes root fingerprints. It holds no per-input state and is
// safe for concurrent use.
type Hasher struct {
	conf    Conf
	metrics metrics
}

// New creates a Hasher, filling unset configuration with defaults.
func New(conf Conf) *Hasher {
	if conf.Compressor == nil {
		conf.Compressor = primitive.NewBlake2s()
	}
	if conf.MinParallelSize == 0 {
		conf.MinParallelSize = DefaultMinParallelSize
	}
	if conf.BatchWidth <= 0 {
		conf.BatchWidth = DefaultBatchWidth
	}
	return &Hasher{
		conf:    conf,
		metrics: newMetrics(),
	}
}

// Sum returns the root fingerprint of the data.
func (h *Hasher) Sum(data []byte) (bao.Root, error) {
	return h.SumContext(context.Background(), bytes.NewReader(data), int64(len(data)))
}

// SumReader returns the root fingerprint of n bytes read from r.
func (h *Hasher) SumReader(r io.ReaderAt, n int64) (bao.Root, error) {
	return h.SumContext(context.Background(), r, n)
}

// SumContext returns the root fingerprint of n bytes read from r. The
// computation aborts on context cancellation; a partially joined result
// is never returned.
func (h *Hasher) SumContext(ctx context.Context, r io.ReaderAt, n int64) (bao.Root, error) {
	if n < 0 {
		return bao.ZeroRoot, fmt.Errorf("hash: negative length %d", n)
	}
	root, err := h.subtree(ctx, r, tree.NewSpan(uint64(n)), true)
	if err != nil {
		return bao.ZeroRoot, err
	}
	h.metrics.BytesHashed.Add(float64(n))
	return bao.NewRoot(root[:])
}

// subtree hashes the content span. Subtrees under batchBytes are hashed
// as one run of leaves, larger ones recurse on the layout split,
// forking into concurrent workers above the parallelism threshold.
func (h *Hasher) subtree(ctx context.Context, r io.ReaderAt, span tree.Span, root bool) ([bao.HashSize]byte, error) {
	if err := ctx.Err(); err != nil {
		return [bao.HashSize]byte{}, err
	}
	if span.Length() <= uint64(h.conf.BatchWidth)*bao.ChunkSize {
		return h.leafRange(r, span, root)
	}
	left, right := span.Split()

	var lh, rh [bao.HashSize]byte
	if span.Length() >= h.conf.MinParallelSize {
		h.metrics.Forks.Inc()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			lh, err = h.subtree(gctx, r, left, false)
			return err
		})
		g.Go(func() (err error) {
			rh, err = h.subtree(gctx, r, right, false)
			return err
		})
		if err := g.Wait(); err != nil {
			return [bao.HashSize]byte{}, err
		}
	} else {
		var err error
		if lh, err = h.subtree(ctx, r, left, false); err != nil {
			return [bao.HashSize]byte{}, err
		}
		if rh, err = h.subtree(ctx, r, right, false); err != nil {
			return [bao.HashSize]byte{}, err
		}
	}
	return ParentHash(h.conf.Compressor, lh, rh, root)
}

// leafRange hashes a run of sibling chunks in one batched primitive
// invocation and reduces them to the subtree hash.
func (h *Hasher) leafRange(r io.ReaderAt, span tree.Span, root bool) ([bao.HashSize]byte, error) {
	buf := make([]byte, span.Length())
	if len(buf) > 0 {
		if _, err := r.ReadAt(buf, int64(span.Start)); err != nil {
			return [bao.HashSize]byte{}, fmt.Errorf("hash: read input at %d: %w", span.Start, err)
		}
	}
	count := tree.Chunks(span.Length())
	blocks := make([][]byte, count)
	params := make([]primitive.Params, count)
	for i := uint64(0); i < count; i++ {
		lo := i * bao.ChunkSize
		hi := lo + bao.ChunkSize
		if hi > span.Length() {
			hi = span.Length()
		}
		blocks[i] = buf[lo:hi]
		params[i] = primitive.Params{
			Level:   primitive.Leaf,
			Counter: uint32(span.ChunkIndex() + i),
			Final:   root && count == 1,
		}
	}
	hashes, err := primitive.CompressAll(h.conf.Compressor, blocks, params)
	if err != nil {
		return [bao.HashSize]byte{}, err
	}
	h.metrics.Batches.Inc()
	return h.reduce(hashes, span, root)
}

// reduce combines precomputed chunk hashes into the subtree hash along
// the layout split.
func (h *Hasher) reduce(hashes [][bao.HashSize]byte, span tree.Span, root bool) ([bao.HashSize]byte, error) {
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	left, right := span.Split()
	split := left.Length() / bao.ChunkSize
	lh, err := h.reduce(hashes[:split], left, false)
	if err != nil {
		return [bao.HashSize]byte{}, err
	}
	rh, err := h.reduce(hashes[split:], right, false)
	if err != nil {
		return [bao.HashSize]byte{}, err
	}
	return ParentHash(h.conf.Compressor, lh, rh, root)
}

// Sum is a convenience returning the root fingerprint of data with the
// default configuration.
func Sum(data []byte) (bao.Root, error) {
	return New(Conf{}).Sum(data)
}
