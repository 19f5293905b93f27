// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package blc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bloc/bloctest"
	"github.com/grailbio/bloc/term"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestIdentity(t *testing.T) {
	id, err := ParseText([]byte("0010"), 0)
	assert.NoError(t, err)
	if got, want := id, term.Abstraction(term.Variable(0)); !term.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	text, err := FormatText(id)
	assert.NoError(t, err)
	expect.EQ(t, string(text), "0010")
}

func TestParseText(t *testing.T) {
	for _, c := range []struct {
		text string
		want *term.Term
	}{
		{"0010\n", term.Abstraction(term.Variable(0))},
		{"  01 0010 0010 ", term.Application(term.Abstraction(term.Variable(0)), term.Abstraction(term.Variable(0)))},
		{"00 00 1110", term.Abstraction(term.Abstraction(term.Variable(2)))},
		{"00011010", bloctest.Omega().Left},
		{"010001101000011010", bloctest.Omega()},
	} {
		got, err := ParseText([]byte(c.text), 0)
		if err != nil {
			t.Errorf("%q: %v", c.text, err)
			continue
		}
		if !term.Equal(got, c.want) {
			t.Errorf("%q: got %v, want %v", c.text, got, c.want)
		}
	}
}

func TestParseTextErrors(t *testing.T) {
	for _, text := range []string{
		"",
		"00",
		"01001",
		"0020",
		"0010 1",
		"0x10",
	} {
		_, err := ParseText([]byte(text), 0)
		if err == nil {
			t.Errorf("%q: expected error", text)
			continue
		}
		if !errors.Is(errors.Integrity, err) {
			t.Errorf("%q: got %v, want integrity error", text, err)
		}
	}
}

func TestDepthLimit(t *testing.T) {
	text := strings.Repeat("00", 100) + "10"
	_, err := ParseText([]byte(text), 50)
	if !errors.Is(errors.OOM, err) {
		t.Errorf("got %v, want depth error", err)
	}
	x, err := ParseText([]byte(text), 101)
	assert.NoError(t, err)
	p, err := Marshal(x)
	assert.NoError(t, err)
	_, err = Unmarshal(p, 50)
	if !errors.Is(errors.OOM, err) {
		t.Errorf("got %v, want depth error", err)
	}
	_, err = Unmarshal(p, 101)
	assert.NoError(t, err)
}

func TestMarshal(t *testing.T) {
	// 01 00 01 10 10 00 01 10 10 -> 0100 0110 1000 0110 10(00 0000)
	p, err := Marshal(bloctest.Omega())
	assert.NoError(t, err)
	if got, want := p, []byte{0x46, 0x86, 0x80}; !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
	_, err = Marshal(term.Application(term.Reference(0), term.Variable(0)))
	if !errors.Is(errors.Invalid, err) {
		t.Errorf("got %v, want invalid error", err)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	for _, p := range [][]byte{
		nil,
		{0x46, 0x86},       // truncated
		{0x46, 0x86, 0x81}, // dirty padding
		{0x46, 0x86, 0x80, 0x00},
	} {
		if _, err := Unmarshal(p, 0); !errors.Is(errors.Integrity, err) {
			t.Errorf("%x: got %v, want integrity error", p, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for i, x := range bloctest.Terms(42, 16, 200) {
		text, err := FormatText(x)
		assert.NoError(t, err)
		y, err := ParseText(text, 0)
		assert.NoError(t, err)
		if !term.Equal(x, y) {
			t.Fatalf("text round trip %d: got %v, want %v", i, y, x)
		}
		p, err := Marshal(x)
		assert.NoError(t, err)
		if got, want := len(p), (len(text)+7)/8; got != want {
			t.Errorf("term %d: got %d bytes, want %d", i, got, want)
		}
		z, err := Unmarshal(p, 0)
		assert.NoError(t, err)
		if !term.Equal(x, z) {
			t.Fatalf("bit round trip %d: got %v, want %v", i, z, x)
		}
	}
}
