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
	"github.com/grailbio/bloc"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/bloc/term"
)

// config parameterizes the conversions performed by the commands.
type config struct {
	// bits selects bit-packed rather than textual BLC.
	bits     bool
	minSize  uint64
	maxDepth int
	stats    *stats.Map
}

func (c config) options() []bloc.Option {
	opts := []bloc.Option{bloc.MinSize(c.minSize), bloc.Stats(c.stats)}
	if c.maxDepth > 0 {
		opts = append(opts, bloc.MaxDepth(c.maxDepth))
	}
	return opts
}

// pipelineFlags holds the flags shared by the commands that read
// plain BLC terms.
type pipelineFlags struct {
	bits     *bool
	minSize  *uint64
	maxDepth *int
	stats    *bool
}

func addPipelineFlags(flags *flag.FlagSet) *pipelineFlags {
	return &pipelineFlags{
		bits:     flags.Bool("bits", false, "read and write bit-packed rather than textual BLC"),
		minSize:  flags.Uint64("min-size", bloc.DefaultMinSize, "minimum estimated size of extracted subterms"),
		maxDepth: flags.Int("max-depth", bloc.DefaultMaxDepth, "maximum nesting depth of decoded terms"),
		stats:    flags.Bool("stats", false, "log deduplication statistics"),
	}
}

func (f *pipelineFlags) config(st *stats.Map) config {
	return config{bits: *f.bits, minSize: *f.minSize, maxDepth: *f.maxDepth, stats: st}
}

func (f *pipelineFlags) report(st *stats.Map) {
	if *f.stats {
		log.Printf("stats: %s", st.Snapshot())
	}
}

func encodeCmdUsage(flags *flag.FlagSet) {
	fmt.Fprint(os.Stderr, `usage: bloc encode [-o output] [flags] [input]

Command encode reads a BLC term from input (default: the standard
input), factors out its repeated subterms, and writes the resulting
BLoC table to output.

The flags are:
`)
	flags.PrintDefaults()
	os.Exit(2)
}

func encodeCmd(args []string) {
	var (
		flags  = flag.NewFlagSet("bloc encode", flag.ExitOnError)
		output = flags.String("o", "-", "output path")
		pflags = addPipelineFlags(flags)
	)
	flags.Usage = func() { encodeCmdUsage(flags) }
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
	must.Nil(encode(context.Background(), input, *output, pflags.config(st)))
	pflags.report(st)
}

// encode converts the BLC term in input to a BLoC table, written to
// output.
func encode(ctx context.Context, input, output string, c config) error {
	table, err := readTable(ctx, input, true, c)
	if err != nil {
		return err
	}
	p, err := table.MarshalBinary()
	if err != nil {
		return err
	}
	log.Printf("%s: %d entries, %s", input, table.Len(), data.Size(len(p)))
	return writeFile(ctx, output, p)
}

// readTable reads a table from input. If fromBLC is set, the input
// is a plain BLC term, which is deduplicated; otherwise it is a BLoC
// stream.
func readTable(ctx context.Context, input string, fromBLC bool, c config) (*bloc.Table, error) {
	if !fromBLC {
		p, err := readFile(ctx, input)
		if err != nil {
			return nil, err
		}
		return bloc.Unmarshal(p, c.options()...)
	}
	t, err := readTerm(ctx, input, c.bits, c.maxDepth)
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("%s: read term with %d nodes", input, term.Size(t))
	return bloc.Deduplicate(t, c.options()...)
}
