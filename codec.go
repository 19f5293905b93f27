// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bloc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bloc/internal/bitio"
	"github.com/grailbio/bloc/term"
)

const (
	// Magic identifies BLoC streams.
	Magic = "BLoC"
	// MaxEntries is the maximum number of entries in an encoded
	// table.
	MaxEntries = math.MaxUint16

	headerSize = len(Magic) + 2
)

// refWidths are the index widths selected by a reference's width
// selector.
var refWidths = [...]uint{8, 16, 32, 64}

// refWidth returns the selector of the narrowest width that
// represents i.
func refWidth(i uint64) uint64 {
	switch {
	case i <= math.MaxUint8:
		return 0
	case i <= math.MaxUint16:
		return 1
	case i <= math.MaxUint32:
		return 2
	default:
		return 3
	}
}

// MarshalBinary encodes the table as a BLoC stream. It fails if the
// table is empty or has more than MaxEntries entries, or if any
// reference falls outside of the table.
func (t *Table) MarshalBinary() ([]byte, error) {
	n := len(t.Entries)
	switch {
	case n == 0:
		return nil, errors.E(errors.Invalid, "bloc: empty table")
	case n > MaxEntries:
		return nil, errors.E(errors.NotSupported, fmt.Sprintf("bloc: %d entries exceed the maximum of %d", n, MaxEntries))
	}
	var w bitio.Writer
	for row, e := range t.Entries {
		if err := writeEntry(&w, e, uint64(n-1)); err != nil {
			return nil, errors.E(fmt.Sprintf("bloc: entry %d", row), err)
		}
		w.Align()
	}
	p := make([]byte, headerSize, headerSize+len(w.Bytes()))
	copy(p, Magic)
	binary.LittleEndian.PutUint16(p[len(Magic):], uint16(n))
	return append(p, w.Bytes()...), nil
}

// writeEntry writes the encoding of e to w. References must be
// smaller than nref.
func writeEntry(w *bitio.Writer, e *term.Term, nref uint64) error {
	stack := []*term.Term{e}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t == nil {
			return errors.E(errors.Invalid, "bloc: nil subterm")
		}
		switch t.Kind {
		case term.Abs:
			w.WriteBits(0, 2)
			stack = append(stack, t.Body)
		case term.App:
			w.WriteBits(2, 3)
			stack = append(stack, t.Right, t.Left)
		case term.Var:
			w.WriteOnes(t.Index + 1)
			w.WriteBit(false)
		case term.Ref:
			if t.Index >= nref {
				return rangeError(t.Index, int(nref)+1)
			}
			sel := refWidth(t.Index)
			w.WriteBits(3, 3)
			w.WriteBits(sel, 2)
			w.WriteBits(t.Index, refWidths[sel])
		default:
			return errors.E(errors.Invalid, fmt.Sprintf("bloc: invalid term %s", t.Kind))
		}
	}
	return nil
}

// UnmarshalBinary decodes a BLoC stream into t with the default
// options.
func (t *Table) UnmarshalBinary(p []byte) error {
	u, err := Unmarshal(p)
	if err != nil {
		return err
	}
	*t = *u
	return nil
}

// Unmarshal decodes a BLoC stream. The stream must contain exactly
// the entries announced by its header, each padded with zero bits to
// a byte boundary. References are left unresolved, but each is
// checked to address an entry of the table.
func Unmarshal(p []byte, opts ...Option) (*Table, error) {
	o := makeOptions(opts)
	if len(p) < headerSize {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bloc: short header (%d bytes)", len(p)))
	}
	if string(p[:len(Magic)]) != Magic {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("bloc: bad magic %q", p[:len(Magic)]))
	}
	n := int(binary.LittleEndian.Uint16(p[len(Magic):]))
	if n == 0 {
		return nil, errors.E(errors.Invalid, "bloc: empty table")
	}
	d := decoder{r: bitio.NewReader(p[headerSize:]), nref: uint64(n - 1), max: o.maxDepth}
	t := &Table{Entries: make([]*term.Term, n)}
	for row := range t.Entries {
		e, err := d.decode(1)
		if err != nil {
			return nil, errors.E(fmt.Sprintf("bloc: entry %d", row), err)
		}
		if !d.r.Align() {
			return nil, errors.E(errors.Integrity, fmt.Sprintf("bloc: entry %d: nonzero padding", row))
		}
		t.Entries[row] = e
	}
	if d.r.Remaining() != 0 {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("bloc: %d trailing bytes after %d entries", d.r.Remaining()/8, n))
	}
	return t, nil
}

type decoder struct {
	r    *bitio.Reader
	nref uint64
	max  int
}

func (d *decoder) bit() (bool, error) {
	bit, err := d.r.ReadBit()
	if err != nil {
		return false, errors.E(errors.Integrity, "truncated entry", err)
	}
	return bit, nil
}

func (d *decoder) decode(depth int) (*term.Term, error) {
	if depth > d.max {
		return nil, errors.E(errors.OOM, fmt.Sprintf("term nesting exceeds %d", d.max))
	}
	bit, err := d.bit()
	if err != nil {
		return nil, err
	}
	if bit {
		var n uint64
		for {
			if bit, err = d.bit(); err != nil {
				return nil, err
			}
			if !bit {
				return term.Variable(n), nil
			}
			n++
		}
	}
	if bit, err = d.bit(); err != nil {
		return nil, err
	}
	if !bit {
		body, err := d.decode(depth + 1)
		if err != nil {
			return nil, err
		}
		return term.Abstraction(body), nil
	}
	if bit, err = d.bit(); err != nil {
		return nil, err
	}
	if bit {
		sel, err := d.r.ReadBits(2)
		if err != nil {
			return nil, errors.E(errors.Integrity, "truncated reference", err)
		}
		i, err := d.r.ReadBits(refWidths[sel])
		if err != nil {
			return nil, errors.E(errors.Integrity, "truncated reference", err)
		}
		if i >= d.nref {
			return nil, rangeError(i, int(d.nref)+1)
		}
		return term.Reference(i), nil
	}
	left, err := d.decode(depth + 1)
	if err != nil {
		return nil, err
	}
	right, err := d.decode(depth + 1)
	if err != nil {
		return nil, err
	}
	return term.Application(left, right), nil
}
