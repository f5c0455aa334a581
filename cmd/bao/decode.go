// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/ethersphere/langos"
	"github.com/spf13/cobra"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/decode"
)

// The size of the lookahead buffer used when reading the encoded file.
// It influences read-ahead I/O on the encoding, not verification.
const lookaheadBufferSize = 8 * 32 * bao.ChunkSize

var (
	decodeOutboard string // flag variable, content file for an outboard encoding
	decodeOutfile  string // flag variable, output file instead of standard output
	decodeOffset   uint64 // flag variable, start emitting at this content offset
	decodeCount    int64  // flag variable, limit of emitted bytes
)

// Decode is the underlying procedure for the CLI command
func Decode(cmd *cobra.Command, args []string) (err error) {
	logger, err = setLogger(cmd, verbosity)
	if err != nil {
		return err
	}

	root, err := bao.ParseHexRoot(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	encoded := langos.NewBufferedLangos(f, lookaheadBufferSize)

	var d *decode.Decoder
	if decodeOutboard != "" {
		content, err := os.Open(decodeOutboard)
		if err != nil {
			return err
		}
		defer content.Close()
		logger.Debugf("decoding outboard %s with content %s", args[1], decodeOutboard)
		d = decode.NewOutboardDecoder(encoded, content, root, decode.WithLogger(logger))
	} else {
		logger.Debugf("decoding %s", args[1])
		d = decode.NewDecoder(encoded, root, decode.WithLogger(logger))
	}

	if decodeOffset > 0 {
		if _, err := d.Seek(int64(decodeOffset), io.SeekStart); err != nil {
			return err
		}
	}
	var src io.Reader = d
	if decodeCount >= 0 {
		src = io.LimitReader(d, decodeCount)
	}

	out := cmd.OutOrStdout()
	if decodeOutfile != "" {
		outf, err := os.Create(decodeOutfile)
		if err != nil {
			return err
		}
		defer outf.Close()
		out = outf
	}

	written, err := io.Copy(out, src)
	if err != nil {
		return err
	}
	logger.Infof("decoded %d verified bytes", written)
	return nil
}

func decodeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "decode <root> <encoded>",
		Args:  cobra.ExactArgs(2),
		Short: "Verify a bao encoding and emit its content",
		Long: `Decodes the encoded file against the given hex root hash and writes the
verified content to standard output or to --output.

Every emitted byte has been authenticated against the root: any
modification, reordering or truncation of the encoding fails the command
before unverified bytes are written. With --outboard the encoded file
holds only the tree and the content bytes are read from the given file.

--offset seeks into the content without reading the skipped encoding
bytes; --count limits how many bytes are emitted.`,
		RunE:         Decode,
		SilenceUsage: true,
	}
	c.Flags().StringVar(&decodeOutboard, "outboard", "", "content file for an outboard encoding")
	c.Flags().StringVarP(&decodeOutfile, "output", "o", "", "write content to given file instead of standard output")
	c.Flags().Uint64Var(&decodeOffset, "offset", 0, "start emitting at this content offset")
	c.Flags().Int64VarP(&decodeCount, "count", "c", -1, "emit at most this many bytes, -1 means all")
	return c
}
