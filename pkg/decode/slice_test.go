// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/decode"
	"github.com/gobao/bao/pkg/encode"
	"github.com/gobao/bao/pkg/tree"
)

func extractSlice(t *testing.T, data []byte, start, count uint64, policy tree.SlicePolicy) ([]byte, bao.Root) {
	t.Helper()
	var combined bytes.Buffer
	root, err := encode.EncodeBytes(data, &combined)
	if err != nil {
		t.Fatal(err)
	}
	var slice bytes.Buffer
	if err := encode.Extract(bytes.NewReader(combined.Bytes()), &slice, start, count, policy); err != nil {
		t.Fatal(err)
	}
	return slice.Bytes(), root
}

// The middle-chunk slice of 8193 zero bytes decodes to exactly the 4096
// requested zeros, against the well-known root of that input.
func TestSliceWorkedExample(t *testing.T) {
	data := make([]byte, 8193)
	slice, root := extractSlice(t, data, 4096, 4096, tree.SlicePolicy{})

	if got, want := root.String(), "dc0b33f1d2c67cef63515c99c3cce89cde24196cda1c66bd47227d7afa5ac83c"; got != want {
		t.Fatalf("root %s, want %s", got, want)
	}

	// Header, two parent nodes, one chunk: the other two chunks and
	// their subtree structure are omitted.
	if got, want := len(slice), bao.SpanSize+2*bao.ParentSize+bao.ChunkSize; got != want {
		t.Fatalf("slice size %d, want %d", got, want)
	}

	out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 4096, 4096, tree.SlicePolicy{}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data[4096:8192]) {
		t.Fatal("decoded slice bytes differ from input range")
	}
}

// Slices over arbitrary ranges round-trip to the corresponding input
// bytes.
func TestSliceRoundTrip(t *testing.T) {
	data := testData(t, 70000)

	for _, r := range []struct{ start, count uint64 }{
		{0, 70000},
		{0, 1},
		{0, 4096},
		{1, 4096},
		{4095, 2},
		{4096, 4096},
		{8192, 1},
		{12345, 23456},
		{65536, 4464},
		{69999, 1},
	} {
		t.Run(fmt.Sprintf("%d_%d", r.start, r.count), func(t *testing.T) {
			slice, root := extractSlice(t, data, r.start, r.count, tree.SlicePolicy{})
			out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, r.start, r.count, tree.SlicePolicy{}))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(out, data[r.start:r.start+r.count]) {
				t.Fatal("decoded slice bytes differ from input range")
			}
		})
	}
}

// The whole-content slice is byte-identical to the combined encoding.
func TestSliceFullRangeIsCombined(t *testing.T) {
	data := testData(t, 20000)
	var combined bytes.Buffer
	root, err := encode.EncodeBytes(data, &combined)
	if err != nil {
		t.Fatal(err)
	}
	var slice bytes.Buffer
	if err := encode.Extract(bytes.NewReader(combined.Bytes()), &slice, 0, 20000, tree.SlicePolicy{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(slice.Bytes(), combined.Bytes()) {
		t.Fatal("full-range slice differs from the combined encoding")
	}

	out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice.Bytes()), root, 0, 20000, tree.SlicePolicy{}))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("decoded slice bytes differ from input")
	}
}

func TestSlicePolicies(t *testing.T) {
	data := testData(t, 10000)

	t.Run("past_end_emits_nothing", func(t *testing.T) {
		// The permissive request clamps to zero emitted bytes but the
		// slice still proves the final chunk.
		slice, root := extractSlice(t, data, 10005, 10, tree.SlicePolicy{})
		out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 10005, 10, tree.SlicePolicy{}))
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 0 {
			t.Fatalf("emitted %d bytes", len(out))
		}
	})

	t.Run("zero_count_rounds_up", func(t *testing.T) {
		slice, root := extractSlice(t, data, 5000, 0, tree.SlicePolicy{})
		out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 5000, 0, tree.SlicePolicy{}))
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0] != data[5000] {
			t.Fatalf("got %x, want the byte at 5000", out)
		}
	})

	t.Run("literal_zero_count", func(t *testing.T) {
		policy := tree.SlicePolicy{LiteralZeroCount: true}
		slice, root := extractSlice(t, data, 5000, 0, policy)
		// The node set is the same as for a one-byte request: the
		// chunk holding the start offset is still carried.
		other, _ := extractSlice(t, data, 5000, 0, tree.SlicePolicy{})
		if !bytes.Equal(slice, other) {
			t.Fatal("zero-count policy changed the extracted node set")
		}
		out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 5000, 0, policy))
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 0 {
			t.Fatalf("emitted %d bytes", len(out))
		}
	})

	t.Run("strict_rejects_out_of_bounds", func(t *testing.T) {
		policy := tree.SlicePolicy{Strict: true}
		var combined bytes.Buffer
		root, err := encode.EncodeBytes(data, &combined)
		if err != nil {
			t.Fatal(err)
		}
		var slice bytes.Buffer
		err = encode.Extract(bytes.NewReader(combined.Bytes()), &slice, 5000, 6000, policy)
		if !errors.Is(err, bao.ErrOutOfBounds) {
			t.Fatalf("extract: got %v, want %v", err, bao.ErrOutOfBounds)
		}

		// A permissively extracted slice fails strict decoding at
		// request resolution, before any bytes are emitted.
		permissive, _ := extractSlice(t, data, 5000, 6000, tree.SlicePolicy{})
		out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(permissive), root, 5000, 6000, policy))
		if !errors.Is(err, bao.ErrOutOfBounds) {
			t.Fatalf("decode: got %v, want %v", err, bao.ErrOutOfBounds)
		}
		if len(out) != 0 {
			t.Fatalf("emitted %d bytes", len(out))
		}
	})

	t.Run("strict_exact_end", func(t *testing.T) {
		policy := tree.SlicePolicy{Strict: true}
		slice, root := extractSlice(t, data, 9000, 1000, policy)
		out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 9000, 1000, policy))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out, data[9000:]) {
			t.Fatal("decoded slice bytes differ from input range")
		}
	})
}

// Even the slice of empty content carries a validatable empty chunk.
func TestSliceEmptyInput(t *testing.T) {
	slice, root := extractSlice(t, nil, 0, 10, tree.SlicePolicy{})
	if len(slice) != bao.SpanSize {
		t.Fatalf("slice size %d, want header only", len(slice))
	}

	out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 0, 10, tree.SlicePolicy{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("emitted %d bytes", len(out))
	}

	bad := bao.MustParseHexRoot("0000000000000000000000000000000000000000000000000000000000000000")
	_, err = io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), bad, 0, 10, tree.SlicePolicy{}))
	if !errors.Is(err, bao.ErrHashMismatch) {
		t.Fatalf("got %v, want %v", err, bao.ErrHashMismatch)
	}
}

// Any bit flip in the slice stream fails the decode before the
// corrupted bytes are emitted.
func TestSliceTamperDetection(t *testing.T) {
	data := testData(t, 8193)
	slice, root := extractSlice(t, data, 4096, 4096, tree.SlicePolicy{})

	for i := bao.SpanSize; i < len(slice); i++ {
		corrupt := append([]byte{}, slice...)
		corrupt[i] ^= 0x01
		out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(corrupt), root, 4096, 4096, tree.SlicePolicy{}))
		if !errors.Is(err, bao.ErrHashMismatch) {
			t.Fatalf("flip at %d: got %v, want %v", i, err, bao.ErrHashMismatch)
		}
		if !bytes.Equal(out, data[4096:4096+uint64(len(out))]) {
			t.Fatalf("flip at %d: corrupted bytes were emitted", i)
		}
	}
}

// A slice only proves the range it was extracted for: decoding it with
// different request parameters fails instead of serving wrong bytes.
func TestSliceRequestMismatch(t *testing.T) {
	data := testData(t, 70000)
	slice, root := extractSlice(t, data, 4096, 4096, tree.SlicePolicy{})

	out, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice), root, 40000, 100, tree.SlicePolicy{}))
	if err == nil {
		t.Fatal("decode with a mismatched request succeeded")
	}
	if len(out) != 0 {
		t.Fatalf("emitted %d bytes", len(out))
	}
}

// A truncated slice fails with a truncation error.
func TestSliceTruncated(t *testing.T) {
	data := testData(t, 8193)
	slice, root := extractSlice(t, data, 4096, 4096, tree.SlicePolicy{})

	for _, cut := range []int{0, 4, bao.SpanSize, bao.SpanSize + 64, len(slice) - 1} {
		_, err := io.ReadAll(decode.NewSliceDecoder(bytes.NewReader(slice[:cut]), root, 4096, 4096, tree.SlicePolicy{}))
		if !errors.Is(err, bao.ErrTruncated) {
			t.Fatalf("cut at %d: got %v, want %v", cut, err, bao.ErrTruncated)
		}
	}
}
