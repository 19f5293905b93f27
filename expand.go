// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bloc

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bloc/term"
)

// Expand substitutes every reference in the table's top-level entry,
// recursively, and returns the resulting plain term. Each entry is
// expanded once; all references to an entry share its expansion, so
// the returned term may share subterms, though it is never cyclic.
// Expand fails if a reference falls outside of the table, if the
// entries refer to each other cyclically, or if the expanded term
// nests more deeply than the configured maximum depth.
func (t *Table) Expand(opts ...Option) (*term.Term, error) {
	o := makeOptions(opts)
	if len(t.Entries) == 0 {
		return nil, errors.E(errors.Invalid, "bloc: empty table")
	}
	x := expander{
		table:  t,
		max:    o.maxDepth,
		memo:   make([]*term.Term, len(t.Entries)),
		height: make([]int, len(t.Entries)),
		active: make([]bool, len(t.Entries)),
	}
	e, _, err := x.expand(t.Top(), 1)
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("expanded %d entries", len(t.Entries))
	return e, nil
}

type expander struct {
	table *Table
	max   int
	// memo and height hold the expansion of each entry, and its
	// nesting depth, once computed.
	memo   []*term.Term
	height []int
	// active marks the entries being expanded.
	active []bool
}

func (x *expander) depthError() error {
	return errors.E(errors.OOM, fmt.Sprintf("bloc: expanded term nesting exceeds %d", x.max))
}

// expand expands e, which is placed at the provided depth of the
// expanded term, and returns the expansion together with its height.
func (x *expander) expand(e *term.Term, depth int) (*term.Term, int, error) {
	if depth > x.max {
		return nil, 0, x.depthError()
	}
	if e == nil {
		return nil, 0, errors.E(errors.Invalid, "bloc: nil subterm")
	}
	switch e.Kind {
	case term.Abs:
		body, h, err := x.expand(e.Body, depth+1)
		if err != nil {
			return nil, 0, err
		}
		return term.Abstraction(body), h + 1, nil
	case term.App:
		left, hl, err := x.expand(e.Left, depth+1)
		if err != nil {
			return nil, 0, err
		}
		right, hr, err := x.expand(e.Right, depth+1)
		if err != nil {
			return nil, 0, err
		}
		if hr > hl {
			hl = hr
		}
		return term.Application(left, right), hl + 1, nil
	case term.Var:
		return term.Variable(e.Index), 1, nil
	case term.Ref:
		return x.resolve(e.Index, depth)
	default:
		return nil, 0, errors.E(errors.Invalid, fmt.Sprintf("bloc: invalid term %s", e.Kind))
	}
}

// resolve returns the expansion of the entry addressed by index i,
// placed at the provided depth.
func (x *expander) resolve(i uint64, depth int) (*term.Term, int, error) {
	row, err := x.table.row(i)
	if err != nil {
		return nil, 0, err
	}
	if e := x.memo[row]; e != nil {
		if depth+x.height[row]-1 > x.max {
			return nil, 0, x.depthError()
		}
		return e, x.height[row], nil
	}
	if x.active[row] {
		return nil, 0, errors.E(errors.Integrity, fmt.Sprintf("bloc: cyclic reference <%d>", i))
	}
	x.active[row] = true
	e, h, err := x.expand(x.table.Entries[row], depth)
	x.active[row] = false
	if err != nil {
		return nil, 0, err
	}
	x.memo[row], x.height[row] = e, h
	return e, h, nil
}
