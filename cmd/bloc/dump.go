// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/must"
	"github.com/grailbio/bloc/stats"
)

func dumpCmdUsage(flags *flag.FlagSet) {
	fmt.Fprint(os.Stderr, `usage: bloc dump [-blc] [flags] [input]

Command dump prints the table of a BLoC stream, one entry per line:
the entry's position, the reference index that addresses it, and
the entry in De Bruijn notation. Abstractions are printed as [body],
applications as (left right), variables by their index, and
references as <index>. With -blc, the input is a BLC term, which is
deduplicated first.

The flags are:
`)
	flags.PrintDefaults()
	os.Exit(2)
}

func dumpCmd(args []string) {
	var (
		flags   = flag.NewFlagSet("bloc dump", flag.ExitOnError)
		output  = flags.String("o", "-", "output path")
		fromBLC = flags.Bool("blc", false, "read a BLC term rather than a BLoC table")
		pflags  = addPipelineFlags(flags)
	)
	flags.Usage = func() { dumpCmdUsage(flags) }
	must.Nil(flags.Parse(args))
	input := "-"
	switch flags.NArg() {
	case 0:
	case 1:
		input = flags.Arg(0)
	default:
		flags.Usage()
	}
	st := stats.NewMap()
	must.Nil(dump(context.Background(), input, *output, *fromBLC, pflags.config(st)))
	pflags.report(st)
}

// dump writes the listing of the table read from input to output.
func dump(ctx context.Context, input, output string, fromBLC bool, c config) error {
	table, err := readTable(ctx, input, fromBLC, c)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := table.Dump(&b); err != nil {
		return err
	}
	return writeFile(ctx, output, b.Bytes())
}
