// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/gobao/bao/pkg/hasher"
)

var hashSingle bool // flag variable, disables concurrent subtree workers

// Hash is the underlying procedure for the CLI command
func Hash(cmd *cobra.Command, args []string) (err error) {
	logger, err = setLogger(cmd, verbosity)
	if err != nil {
		return err
	}

	var conf hasher.Conf
	if hashSingle {
		conf.MinParallelSize = math.MaxUint64
	}
	h := hasher.New(conf)

	// if one arg is set, this is the input file
	// if not, we are reading from standard input
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		logger.Debugf("hashing %d bytes from file %s", info.Size(), args[0])
		root, err := h.SumContext(context.Background(), f, info.Size())
		if err != nil {
			return err
		}
		cmd.Println(root)
		return nil
	}

	// standard input has no length up front, buffer it
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	logger.Debugf("hashing %d bytes from standard input", len(data))
	root, err := h.Sum(data)
	if err != nil {
		return err
	}
	cmd.Println(root)
	return nil
}

func hashCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "hash [datafile]",
		Args:  cobra.RangeArgs(0, 1),
		Short: "Compute the bao root hash of data",
		Long: `Computes the bao tree hash of the input and prints the hex root.

If datafile is not given, data is read from standard input. The root of a
file hashed here matches the root printed when encoding the same file.`,
		RunE:         Hash,
		SilenceUsage: true,
	}
	c.Flags().BoolVar(&hashSingle, "single", false, "hash with a single worker, no concurrent subtrees")
	return c
}
