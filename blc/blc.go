// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package blc implements the classical Binary Lambda Calculus
// encoding of closed terms:
//
//	abstraction   00 <body>
//	application   01 <left> <right>
//	variable n    1^(n+1) 0
//
// Terms are exchanged either as ASCII text of '0' and '1' symbols, or
// bit-packed, most significant bit first, with the final byte padded
// with zeros. Plain BLC has no table, so terms containing references
// cannot be encoded.
package blc

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bloc/internal/bitio"
	"github.com/grailbio/bloc/term"
)

// DefaultMaxDepth is the nesting ceiling used by the decoders when
// none is given.
const DefaultMaxDepth = 1 << 16

func depthError(max int) error {
	return errors.E(errors.OOM, fmt.Sprintf("blc: term nesting exceeds %d", max))
}

// ParseText parses a term from its textual BLC form. Whitespace
// between constructs is ignored; any other symbol is an error, as is
// anything but whitespace following the term. Terms nested more
// than maxDepth deep are rejected; maxDepth <= 0 selects
// DefaultMaxDepth.
func ParseText(p []byte, maxDepth int) (*term.Term, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	s := &textParser{p: p, max: maxDepth}
	t, err := s.parse(1)
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if s.pos != len(s.p) {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("blc: trailing data at offset %d", s.pos))
	}
	return t, nil
}

type textParser struct {
	p   []byte
	pos int
	max int
}

func (s *textParser) skipSpace() {
	for s.pos < len(s.p) {
		switch s.p[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *textParser) next() (byte, error) {
	if s.pos >= len(s.p) {
		return 0, errors.E(errors.Integrity, "blc: unexpected end of input")
	}
	c := s.p[s.pos]
	if c != '0' && c != '1' {
		return 0, errors.E(errors.Integrity, fmt.Sprintf("blc: invalid symbol %q at offset %d", c, s.pos))
	}
	s.pos++
	return c, nil
}

func (s *textParser) parse(depth int) (*term.Term, error) {
	if depth > s.max {
		return nil, depthError(s.max)
	}
	s.skipSpace()
	c, err := s.next()
	if err != nil {
		return nil, err
	}
	if c == '1' {
		var n uint64
		for {
			if c, err = s.next(); err != nil {
				return nil, err
			}
			if c == '0' {
				return term.Variable(n), nil
			}
			n++
		}
	}
	if c, err = s.next(); err != nil {
		return nil, err
	}
	if c == '0' {
		body, err := s.parse(depth + 1)
		if err != nil {
			return nil, err
		}
		return term.Abstraction(body), nil
	}
	left, err := s.parse(depth + 1)
	if err != nil {
		return nil, err
	}
	right, err := s.parse(depth + 1)
	if err != nil {
		return nil, err
	}
	return term.Application(left, right), nil
}

// FormatText returns the textual BLC form of t.
func FormatText(t *term.Term) ([]byte, error) {
	var text []byte
	err := encode(t, func(bit bool, n uint64) {
		c := byte('0')
		if bit {
			c = '1'
		}
		for ; n > 0; n-- {
			text = append(text, c)
		}
	})
	return text, err
}

// Marshal returns the bit-packed BLC form of t.
func Marshal(t *term.Term) ([]byte, error) {
	var w bitio.Writer
	if err := Write(&w, t); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Write appends the bit-packed BLC form of t to w.
func Write(w *bitio.Writer, t *term.Term) error {
	return encode(t, func(bit bool, n uint64) {
		if bit {
			w.WriteOnes(n)
			return
		}
		for ; n > 0; n-- {
			w.WriteBit(false)
		}
	})
}

// encode emits t as runs of n equal bits, in preorder.
func encode(t *term.Term, emit func(bit bool, n uint64)) error {
	stack := []*term.Term{t}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t == nil {
			return errors.E(errors.Invalid, "blc: nil subterm")
		}
		switch t.Kind {
		case term.Abs:
			emit(false, 2)
			stack = append(stack, t.Body)
		case term.App:
			emit(false, 1)
			emit(true, 1)
			stack = append(stack, t.Right, t.Left)
		case term.Var:
			emit(true, t.Index+1)
			emit(false, 1)
		case term.Ref:
			return errors.E(errors.Invalid, fmt.Sprintf("blc: reference <%d> in plain term", t.Index))
		default:
			return errors.E(errors.Invalid, fmt.Sprintf("blc: invalid term %s", t.Kind))
		}
	}
	return nil
}

// Unmarshal decodes a bit-packed BLC term. The bits following the
// term must be the zero padding of its final byte. Terms nested more
// than maxDepth deep are rejected; maxDepth <= 0 selects
// DefaultMaxDepth.
func Unmarshal(p []byte, maxDepth int) (*term.Term, error) {
	r := bitio.NewReader(p)
	t, err := Read(r, maxDepth)
	if err != nil {
		return nil, err
	}
	if !r.Align() || r.Remaining() != 0 {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("blc: trailing data after %d bytes", r.Offset()))
	}
	return t, nil
}

// Read decodes a single bit-packed BLC term from r.
func Read(r *bitio.Reader, maxDepth int) (*term.Term, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return read(r, 1, maxDepth)
}

func read(r *bitio.Reader, depth, max int) (*term.Term, error) {
	if depth > max {
		return nil, depthError(max)
	}
	bit, err := r.ReadBit()
	if err != nil {
		return nil, truncated(err)
	}
	if bit {
		var n uint64
		for {
			if bit, err = r.ReadBit(); err != nil {
				return nil, truncated(err)
			}
			if !bit {
				return term.Variable(n), nil
			}
			n++
		}
	}
	if bit, err = r.ReadBit(); err != nil {
		return nil, truncated(err)
	}
	if !bit {
		body, err := read(r, depth+1, max)
		if err != nil {
			return nil, err
		}
		return term.Abstraction(body), nil
	}
	left, err := read(r, depth+1, max)
	if err != nil {
		return nil, err
	}
	right, err := read(r, depth+1, max)
	if err != nil {
		return nil, err
	}
	return term.Application(left, right), nil
}

func truncated(err error) error {
	return errors.E(errors.Integrity, "blc: truncated term", err)
}
