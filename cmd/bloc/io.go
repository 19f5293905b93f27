// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/grailbio/base/data"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bloc/blc"
	"github.com/grailbio/bloc/term"
)

// readFile returns the contents of path; "-" denotes the standard
// input.
func readFile(ctx context.Context, path string) ([]byte, error) {
	if path == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	p, err := ioutil.ReadAll(f.Reader(ctx))
	if err != nil {
		f.Close(ctx)
		return nil, errors.E(fmt.Sprintf("read %s", path), err)
	}
	if err := f.Close(ctx); err != nil {
		return nil, err
	}
	log.Debug.Printf("read %s from %s", data.Size(len(p)), path)
	return p, nil
}

// writeFile replaces the contents of path with p; "-" denotes the
// standard output.
func writeFile(ctx context.Context, path string, p []byte) (err error) {
	if path == "-" {
		_, err = os.Stdout.Write(p)
		return err
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(ctx); err == nil {
			err = cerr
		}
	}()
	if _, err = f.Writer(ctx).Write(p); err != nil {
		return errors.E(fmt.Sprintf("write %s", path), err)
	}
	log.Debug.Printf("wrote %s to %s", data.Size(len(p)), path)
	return nil
}

// readTerm reads a plain BLC term from path, in its bit-packed form
// if bits is set, and as text otherwise.
func readTerm(ctx context.Context, path string, bits bool, maxDepth int) (*term.Term, error) {
	p, err := readFile(ctx, path)
	if err != nil {
		return nil, err
	}
	var t *term.Term
	if bits {
		t, err = blc.Unmarshal(p, maxDepth)
	} else {
		t, err = blc.ParseText(p, maxDepth)
	}
	if err != nil {
		return nil, errors.E(path, err)
	}
	return t, nil
}

// formatTerm returns the plain BLC form of t: bit-packed if bits is
// set, and newline-terminated text otherwise.
func formatTerm(t *term.Term, bits bool) ([]byte, error) {
	if bits {
		return blc.Marshal(t)
	}
	p, err := blc.FormatText(t)
	if err != nil {
		return nil, err
	}
	return append(p, '\n'), nil
}
