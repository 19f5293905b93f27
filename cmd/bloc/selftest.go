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
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/bloc"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/bloc/term"
	"golang.org/x/sync/errgroup"
)

func testCmdUsage(flags *flag.FlagSet) {
	fmt.Fprint(os.Stderr, `usage: bloc test [flags] [inputs]

Command test checks that each BLC term in inputs (default: the
standard input) survives a round trip: the term is encoded as a
BLoC table, decoded, and expanded, and the result is compared with
the original term. The inputs are checked concurrently. Test exits
with a nonzero status if any round trip fails.

The flags are:
`)
	flags.PrintDefaults()
	os.Exit(2)
}

func testCmd(args []string) {
	var (
		flags  = flag.NewFlagSet("bloc test", flag.ExitOnError)
		pflags = addPipelineFlags(flags)
	)
	flags.Usage = func() { testCmdUsage(flags) }
	must.Nil(flags.Parse(args))
	inputs := flags.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	st := stats.NewMap()
	must.Nil(roundTripAll(context.Background(), inputs, pflags.config(st)))
	pflags.report(st)
}

// roundTripAll checks each input concurrently, returning the first
// failure.
func roundTripAll(ctx context.Context, inputs []string, c config) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			return roundTrip(ctx, input, c)
		})
	}
	return g.Wait()
}

// roundTrip encodes and decodes the BLC term in input and checks
// that the result is identical to it.
func roundTrip(ctx context.Context, input string, c config) error {
	t, err := readTerm(ctx, input, c.bits, c.maxDepth)
	if err != nil {
		return err
	}
	table, err := bloc.Deduplicate(t, c.options()...)
	if err != nil {
		return errors.E(input, err)
	}
	p, err := table.MarshalBinary()
	if err != nil {
		return errors.E(input, err)
	}
	decoded, err := bloc.Unmarshal(p, c.options()...)
	if err != nil {
		return errors.E(input, err)
	}
	expanded, err := decoded.Expand(c.options()...)
	if err != nil {
		return errors.E(input, err)
	}
	if !term.Equal(t, expanded) {
		return errors.E(errors.Integrity, fmt.Sprintf("%s: round trip mismatch", input))
	}
	log.Printf("%s: ok (%d nodes, %d entries, %s)", input, term.Size(t), table.Len(), data.Size(len(p)))
	return nil
}
