// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gobao/bao/pkg/encode"
)

var encodeOutboard bool // flag variable, omits content bytes from the output

// Encode is the underlying procedure for the CLI command
func Encode(cmd *cobra.Command, args []string) (err error) {
	logger, err = setLogger(cmd, verbosity)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	logger.Debugf("encoding %d bytes from %s (outboard=%v)", info.Size(), args[0], encodeOutboard)
	e := encode.New(encode.Conf{})
	encodeFn := e.Encode
	if encodeOutboard {
		encodeFn = e.EncodeOutboard
	}
	root, err := encodeFn(f, info.Size(), out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// output the resulting root fingerprint
	cmd.Println(root)
	return nil
}

func encodeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "encode <datafile> <outfile>",
		Args:  cobra.ExactArgs(2),
		Short: "Produce a bao encoding of a file",
		Long: `Encodes datafile into outfile and prints the hex root hash.

The combined encoding interleaves the verification tree with the content
and is what the decode command consumes. With --outboard only the tree is
written and the original file must be supplied separately when decoding.`,
		RunE:         Encode,
		SilenceUsage: true,
	}
	c.Flags().BoolVar(&encodeOutboard, "outboard", false, "write the tree only, without content bytes")
	return c
}
