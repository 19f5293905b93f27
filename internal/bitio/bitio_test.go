// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bitio

import (
	"bytes"
	"io"
	"testing"
)

func TestWriter(t *testing.T) {
	var w Writer
	w.WriteBits(0x5, 3) // 101
	w.WriteOnes(2)      // 11
	w.WriteBit(false)   // 0
	w.Align()
	w.WriteBits(0xabcd, 16)
	w.WriteBit(true)
	if got, want := w.Len(), uint(25); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := w.Bytes(), []byte{0xb8, 0xab, 0xcd, 0x80}; !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestReader(t *testing.T) {
	r := NewReader([]byte{0xb8, 0xab, 0xcd, 0x80})
	v, err := r.ReadBits(3)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := v, uint64(5); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if !r.Align() {
		t.Error("expected clean alignment")
	}
	if got, want := r.Offset(), 1; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	v, err = r.ReadBits(16)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := v, uint64(0xabcd); got != want {
		t.Errorf("got %x, want %x", got, want)
	}
	bit, err := r.ReadBit()
	if err != nil || !bit {
		t.Fatalf("got %v, %v", bit, err)
	}
	if got, want := r.Remaining(), uint(7); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := r.ReadBits(8); err != io.ErrUnexpectedEOF {
		t.Errorf("got %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func TestReaderDirtyAlign(t *testing.T) {
	r := NewReader([]byte{0x81})
	if _, err := r.ReadBit(); err != nil {
		t.Fatal(err)
	}
	if r.Align() {
		t.Error("expected dirty alignment")
	}
}
