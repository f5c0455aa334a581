// Copyright 2026 The Bao Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gobao/bao"
	"github.com/gobao/bao/pkg/logging"
)

var (
	verbosity string // flag variable, debug level
	logger    logging.Logger
)

// setLogger creates the command logger from the verbosity flag.
func setLogger(cmd *cobra.Command, v string) (logging.Logger, error) {
	silent := false
	var level logrus.Level
	switch v {
	case "0", "silent":
		silent = true
	case "1", "error":
		level = logrus.ErrorLevel
	case "2", "warn":
		level = logrus.WarnLevel
	case "3", "info":
		level = logrus.InfoLevel
	case "4", "debug":
		level = logrus.DebugLevel
	case "5", "trace":
		level = logrus.TraceLevel
	default:
		return nil, fmt.Errorf("unknown verbosity level %q", v)
	}
	if silent {
		return logging.New(io.Discard, 0), nil
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}

// parseUint parses a command line argument as an unsigned decimal.
func parseUint(arg, name string) (uint64, error) {
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return v, nil
}

func main() {
	c := &cobra.Command{
		Use:   "bao",
		Short: "Verified streaming with the bao tree hash",
		Long: `Computes bao tree hashes and produces and verifies bao encodings.

The root hash printed by the hash and encode commands is the trust anchor
for all verification: decode and slice decoding authenticate every byte
they emit against it and fail on the first modified, reordered or
truncated node.`,
		Version:       bao.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	c.PersistentFlags().StringVar(&verbosity, "verbosity", "0", "log verbosity level 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace")

	c.AddCommand(
		hashCmd(),
		encodeCmd(),
		decodeCmd(),
		sliceCmd(),
	)

	c.SetOutput(c.OutOrStdout())
	if err := c.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
