// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bao contains the most basic and general concepts of the bao
// verified streaming format: the sizes that define the tree geometry,
// the Root fingerprint type and the sentinel errors shared by the
// encoder and decoder packages.
package bao

import (
	"bytes"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const (
	// ChunkSize is the maximum number of content bytes hashed into a
	// single leaf of the tree.
	ChunkSize = 4096
	// HashSize is the size of a node hash and of the root fingerprint.
	HashSize = 32
	// ParentSize is the size of an encoded parent node value, the
	// concatenation of its two child hashes.
	ParentSize = 2 * HashSize
	// SpanSize is the size of the little-endian length header that
	// prefixes every encoding.
	SpanSize = 8
	// MaxDepth is the maximum height of the tree. 2^52 chunks of
	// ChunkSize bytes cover the full uint64 length range.
	MaxDepth = 52
)

// Root is the fingerprint committing to the full content of an input.
// It is an opaque 32-byte value, compared for equality only, and is
// supplied to decoders out-of-band as the trust anchor. It is never
// part of an encoded stream.
type Root struct {
	b [HashSize]byte
}

// NewRoot constructs a Root from a byte slice of exactly HashSize bytes.
func NewRoot(b []byte) (Root, error) {
	var r Root
	if len(b) != HashSize {
		return r, fmt.Errorf("root fingerprint must be %d bytes, got %d", HashSize, len(b))
	}
	copy(r.b[:], b)
	return r, nil
}

// ParseHexRoot returns a Root from a hex-encoded string representation.
func ParseHexRoot(s string) (Root, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Root{}, err
	}
	return NewRoot(b)
}

// MustParseHexRoot returns a Root from a hex-encoded string
// representation, and panics if there is a parse error.
func MustParseHexRoot(s string) Root {
	r, err := ParseHexRoot(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns a hex-encoded representation of the Root.
func (r Root) String() string {
	return hex.EncodeToString(r.b[:])
}

// Equal returns true if two roots are identical. The comparison runs in
// constant time.
func (r Root) Equal(o Root) bool {
	return subtle.ConstantTimeCompare(r.b[:], o.b[:]) == 1
}

// IsZero returns true if the Root is not set to any value.
func (r Root) IsZero() bool {
	return bytes.Equal(r.b[:], make([]byte, HashSize))
}

// Bytes returns the bytes representation of the Root.
func (r Root) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, r.b[:])
	return b
}

// UnmarshalJSON sets Root to a value from a JSON-encoded representation.
func (r *Root) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r, err = ParseHexRoot(s)
	return err
}

// MarshalJSON returns a JSON-encoded representation of Root.
func (r Root) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// ZeroRoot is the root fingerprint that has no value.
var ZeroRoot = Root{}
