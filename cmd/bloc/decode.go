// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/data"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
)

func decodeCmdUsage(flags *flag.FlagSet) {
	fmt.Fprint(os.Stderr, `usage: bloc decode [-o output] [flags] [input]

Command decode reads a BLoC table from input (default: the standard
input), substitutes its references, and writes the resulting BLC
term to output.

The flags are:
`)
	flags.PrintDefaults()
	os.Exit(2)
}

func decodeCmd(args []string) {
	var (
		flags    = flag.NewFlagSet("bloc decode", flag.ExitOnError)
		output   = flags.String("o", "-", "output path")
		bits     = flags.Bool("bits", false, "write bit-packed rather than textual BLC")
		maxDepth = flags.Int("max-depth", 0, "maximum nesting depth of decoded terms (default 65536)")
	)
	flags.Usage = func() { decodeCmdUsage(flags) }
	must.Nil(flags.Parse(args))
	input := "-"
	switch flags.NArg() {
	case 0:
	case 1:
		input = flags.Arg(0)
	default:
		flags.Usage()
	}
	must.Nil(decode(context.Background(), input, *output, config{bits: *bits, maxDepth: *maxDepth}))
}

// decode converts the BLoC table in input to a plain BLC term,
// written to output.
func decode(ctx context.Context, input, output string, c config) error {
	table, err := readTable(ctx, input, false, c)
	if err != nil {
		return err
	}
	t, err := table.Expand(c.options()...)
	if err != nil {
		return err
	}
	p, err := formatTerm(t, c.bits)
	if err != nil {
		return err
	}
	log.Printf("%s: %d entries, expanded to %s", input, table.Len(), data.Size(len(p)))
	return writeFile(ctx, output, p)
}
