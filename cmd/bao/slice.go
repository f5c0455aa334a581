// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gobao/bao/pkg/bao"
	"github.com/gobao/bao/pkg/decode"
	"github.com/gobao/bao/pkg/encode"
	"github.com/gobao/bao/pkg/tree"
)

var (
	sliceDecode  bool   // flag variable, decode a slice instead of extracting one
	sliceOutfile string // flag variable, output file instead of standard output
	sliceStrict  bool   // flag variable, reject requests past the content end
	sliceLiteral bool   // flag variable, keep a zero count at zero emitted bytes
)

// Slice is the underlying procedure for the CLI command
func Slice(cmd *cobra.Command, args []string) (err error) {
	logger, err = setLogger(cmd, verbosity)
	if err != nil {
		return err
	}
	policy := tree.SlicePolicy{
		Strict:           sliceStrict,
		LiteralZeroCount: sliceLiteral,
	}

	out := cmd.OutOrStdout()
	if sliceOutfile != "" {
		outf, err := os.Create(sliceOutfile)
		if err != nil {
			return err
		}
		defer outf.Close()
		out = outf
	}

	if !sliceDecode {
		if len(args) != 3 {
			return errors.New("expected arguments: <encoded> <start> <count>")
		}
		start, err := parseUint(args[1], "start")
		if err != nil {
			return err
		}
		count, err := parseUint(args[2], "count")
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		logger.Debugf("extracting slice [%d,+%d) from %s", start, count, args[0])
		return encode.Extract(f, out, start, count, policy)
	}

	if len(args) != 4 {
		return errors.New("expected arguments: <root> <slicefile> <start> <count>")
	}
	root, err := bao.ParseHexRoot(args[0])
	if err != nil {
		return err
	}
	start, err := parseUint(args[2], "start")
	if err != nil {
		return err
	}
	count, err := parseUint(args[3], "count")
	if err != nil {
		return err
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	logger.Debugf("decoding slice [%d,+%d) from %s", start, count, args[1])
	d := decode.NewSliceDecoder(f, root, start, count, policy, decode.WithLogger(logger))
	written, err := io.Copy(out, d)
	if err != nil {
		return err
	}
	logger.Infof("decoded %d verified bytes", written)
	return nil
}

func sliceCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "slice <encoded> <start> <count>",
		Args:  cobra.RangeArgs(3, 4),
		Short: "Extract or decode a bao slice",
		Long: `Extracts the minimal verifiable sub-encoding proving count content bytes
at offset start from a combined encoding, writing it to standard output
or to --output.

With --decode the arguments are <root> <slicefile> <start> <count>: the
slice produced for the same request is verified against the root and the
requested bytes are emitted.

A slice always carries at least one chunk of proof, even for an empty
request. With --strict, requests reaching past the content end are
rejected instead of clamped.`,
		RunE:         Slice,
		SilenceUsage: true,
	}
	c.Flags().BoolVar(&sliceDecode, "decode", false, "decode a slice instead of extracting one")
	c.Flags().StringVarP(&sliceOutfile, "output", "o", "", "write output to given file instead of standard output")
	c.Flags().BoolVar(&sliceStrict, "strict", false, "reject requests past the content end")
	c.Flags().BoolVar(&sliceLiteral, "literal-zero-count", false, "a zero count emits zero bytes instead of one")
	return c
}
