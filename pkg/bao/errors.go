// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bao

import "errors"

var (
	// ErrHashMismatch is returned when a recomputed node hash disagrees
	// with the expected hash. It is fatal: no byte read from the session
	// past the failure point may be trusted.
	ErrHashMismatch = errors.New("bao: hash mismatch")

	// ErrTruncated is returned when the underlying stream ends before
	// the bytes required by the current node are available.
	ErrTruncated = errors.New("bao: truncated input")

	// ErrLengthOverflow is returned when a length header implies an
	// encoded size that does not fit the supported range. It is
	// rejected before traversal begins.
	ErrLengthOverflow = errors.New("bao: length overflow")

	// ErrOutOfBounds is returned by slice operations with strict bounds
	// checking when the requested range reaches past the content end.
	ErrOutOfBounds = errors.New("bao: slice out of bounds")

	// ErrNotSeekable is returned when a seek is requested on a decoder
	// whose underlying stream does not support seeking.
	ErrNotSeekable = errors.New("bao: stream is not seekable")

	// ErrWhence is returned on an invalid seek whence value.
	ErrWhence = errors.New("bao: seek: invalid whence")

	// ErrOffset is returned on a seek to a negative offset.
	ErrOffset = errors.New("bao: seek: invalid offset")
)
