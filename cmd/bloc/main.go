// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Command bloc converts Binary Lambda Calculus terms to and from the
// deduplicated BLoC table format.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
)

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func usage() {
	fmt.Fprintf(os.Stderr, `Bloc converts Binary Lambda Calculus (BLC) terms to and from BLoC,
a compacted format that stores repeated subterms once.

Usage:

	bloc <command> [arguments]

The commands are:

	encode      convert a BLC term to BLoC
	decode      convert a BLoC table to a BLC term
	dump        print the table of a BLoC stream or a BLC term
	test        check that BLC terms survive a round trip through BLoC

Paths may be local files, "-" for the standard input or output, or
s3://bucket/key URLs. Run "bloc <command> -help" for the flags of
each command; logging flags precede the command.
`)
	os.Exit(2)
}

func main() {
	log.AddFlags()
	log.SetFlags(0)
	log.SetPrefix("bloc: ")
	must.Func = log.Fatal
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	default:
		fmt.Fprintln(os.Stderr, "unknown command", cmd)
		flag.Usage()
	case "encode":
		encodeCmd(args)
	case "decode":
		decodeCmd(args)
	case "dump":
		dumpCmd(args)
	case "test":
		testCmd(args)
	}
}
