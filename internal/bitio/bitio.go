// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bitio provides MSB-first bit-level writers and readers
// over byte buffers.
package bitio

import "io"

// Writer accumulates bits, most significant bit first.
type Writer struct {
	buf   []byte
	nbits uint
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(bit bool) {
	off := w.nbits % 8
	if off == 0 {
		w.buf = append(w.buf, 0)
	}
	if bit {
		w.buf[len(w.buf)-1] |= 0x80 >> off
	}
	w.nbits++
}

// WriteBits appends the n low-order bits of v, most significant
// first.
func (w *Writer) WriteBits(v uint64, n uint) {
	for i := n; i > 0; i-- {
		w.WriteBit(v&(1<<(i-1)) != 0)
	}
}

// WriteOnes appends n one bits.
func (w *Writer) WriteOnes(n uint64) {
	for ; n > 0; n-- {
		w.WriteBit(true)
	}
}

// Align pads the stream with zero bits to the next byte boundary.
func (w *Writer) Align() {
	w.nbits = uint(len(w.buf)) * 8
}

// Len returns the number of bits written.
func (w *Writer) Len() uint { return w.nbits }

// Bytes returns the written bits; a partial final byte is padded
// with zeros.
func (w *Writer) Bytes() []byte { return w.buf }

// Reader reads bits, most significant bit first.
type Reader struct {
	buf []byte
	pos uint
}

// NewReader returns a Reader over p.
func NewReader(p []byte) *Reader {
	return &Reader{buf: p}
}

// ReadBit returns the next bit. It returns io.ErrUnexpectedEOF when
// the buffer is exhausted.
func (r *Reader) ReadBit() (bool, error) {
	if r.pos >= uint(len(r.buf))*8 {
		return false, io.ErrUnexpectedEOF
	}
	bit := r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0
	r.pos++
	return bit, nil
}

// ReadBits reads n bits (n <= 64) into the low-order bits of the
// returned value.
func (r *Reader) ReadBits(n uint) (uint64, error) {
	var v uint64
	for i := uint(0); i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v, nil
}

// Align skips to the next byte boundary and reports whether the
// skipped bits were all zero.
func (r *Reader) Align() bool {
	clean := true
	for r.pos%8 != 0 {
		if r.buf[r.pos/8]&(0x80>>(r.pos%8)) != 0 {
			clean = false
		}
		r.pos++
	}
	return clean
}

// Offset returns the number of bytes consumed, counting a partially
// read byte.
func (r *Reader) Offset() int { return int((r.pos + 7) / 8) }

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() uint { return uint(len(r.buf))*8 - r.pos }
