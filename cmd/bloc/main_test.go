// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const omegaBLC = "010001101000011010\n"

func writeTemp(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func readTemp(t *testing.T, path string) []byte {
	t.Helper()
	p, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return p
}

func TestEncodeDecode(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	var (
		input   = writeTemp(t, dir, "omega.blc", omegaBLC)
		encoded = filepath.Join(dir, "omega.bloc")
		decoded = filepath.Join(dir, "omega.out")
		st      = stats.NewMap()
		c       = config{minSize: 4, stats: st}
	)
	assert.NoError(t, encode(ctx, input, encoded, c))
	want := []byte("BLoC\x02\x00\x15\x00\x4c\x00\x60\x00")
	if got := readTemp(t, encoded); !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
	expect.EQ(t, st.Int("references").Get(), int64(2))

	assert.NoError(t, decode(ctx, encoded, decoded, c))
	expect.EQ(t, string(readTemp(t, decoded)), omegaBLC)

	// Bit-packed output.
	c.bits = true
	assert.NoError(t, decode(ctx, encoded, decoded, c))
	expect.EQ(t, readTemp(t, decoded), []byte{0x46, 0x86, 0x80})
}

func TestIdentity(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	var (
		input   = writeTemp(t, dir, "id.blc", "0010")
		encoded = filepath.Join(dir, "id.bloc")
		decoded = filepath.Join(dir, "id.out")
		c       = config{minSize: 10}
	)
	assert.NoError(t, encode(ctx, input, encoded, c))
	expect.EQ(t, readTemp(t, encoded), []byte("BLoC\x01\x00\x20"))
	assert.NoError(t, decode(ctx, encoded, decoded, c))
	expect.EQ(t, string(readTemp(t, decoded)), "0010\n")
}

func TestDump(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	var (
		input   = writeTemp(t, dir, "omega.blc", omegaBLC)
		encoded = filepath.Join(dir, "omega.bloc")
		out     = filepath.Join(dir, "dump")
		c       = config{minSize: 4}
	)
	const want = "0  <0>  [(0 0)]\n1  top  (<0> <0>)\n"
	assert.NoError(t, dump(ctx, input, out, true, c))
	expect.EQ(t, string(readTemp(t, out)), want)

	assert.NoError(t, encode(ctx, input, encoded, c))
	assert.NoError(t, dump(ctx, encoded, out, false, c))
	expect.EQ(t, string(readTemp(t, out)), want)

	// A BLC term is not a BLoC stream.
	err := dump(ctx, input, out, false, c)
	expect.True(t, errors.Is(errors.Invalid, err), "got %v", err)
}

func TestRoundTripAll(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inputs := []string{
		writeTemp(t, dir, "omega.blc", omegaBLC),
		writeTemp(t, dir, "id.blc", "0010\n"),
		writeTemp(t, dir, "church.blc", "000001110011100111010\n"),
	}
	st := stats.NewMap()
	assert.NoError(t, roundTripAll(context.Background(), inputs, config{minSize: 4, stats: st}))
	expect.True(t, st.Int("nodes").Get() > 0)

	inputs = append(inputs, writeTemp(t, dir, "bad.blc", "0012\n"))
	err := roundTripAll(context.Background(), inputs, config{minSize: 4})
	expect.True(t, errors.Is(errors.Integrity, err), "got %v", err)

	err = roundTripAll(context.Background(), []string{filepath.Join(dir, "missing.blc")}, config{})
	expect.NotNil(t, err)
}
