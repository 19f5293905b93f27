// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bloc

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bloc/blc"
	"github.com/grailbio/bloc/dedup"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/bloc/term"
)

const (
	// DefaultMinSize is the default minimum estimated size of a
	// subterm eligible for extraction.
	DefaultMinSize = 10
	// DefaultMaxDepth is the default nesting ceiling for decoding and
	// expansion.
	DefaultMaxDepth = blc.DefaultMaxDepth
)

type options struct {
	minSize  uint64
	maxDepth int
	stats    *stats.Map
}

func makeOptions(opts []Option) options {
	o := options{minSize: DefaultMinSize, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// An Option is a configuration parameter for Deduplicate, Unmarshal,
// and Table.Expand.
type Option func(o *options)

// MinSize configures the minimum estimated size of subterms that are
// eligible for extraction. An abstraction is estimated at its body's
// size plus 2, an application at its children's sizes plus 3, and a
// variable at its index.
func MinSize(n uint64) Option {
	return func(o *options) {
		o.minSize = n
	}
}

// MaxDepth configures the maximum nesting depth of decoded and
// expanded terms.
func MaxDepth(n int) Option {
	if n <= 0 {
		panic("bloc.MaxDepth: n <= 0")
	}
	return func(o *options) {
		o.maxDepth = n
	}
}

// Stats configures a map into which pipeline counters are recorded.
func Stats(m *stats.Map) Option {
	return func(o *options) {
		o.stats = m
	}
}

// A Table is a sequence of entries, the last of which is the
// top-level term. Entries other than the top-level term are
// addressed by references: reference i names the entry i places
// before the top-level entry.
type Table struct {
	Entries []*term.Term
}

// Deduplicate factors the repeated subterms of t into a table. The
// table contains an entry for every extracted subterm that the
// top-level term depends on, ordered so that the most frequently
// referenced entries have the smallest indices. A term without
// eligible repetitions yields a table with t as its only entry.
func Deduplicate(t *term.Term, opts ...Option) (*Table, error) {
	o := makeOptions(opts)
	d, err := dedup.Deduplicate(t, o.minSize, o.stats)
	if err != nil {
		return nil, err
	}
	table := &Table{Entries: d.Terms()}
	log.Debug.Printf("deduplicated term into %d entries", len(table.Entries))
	return table, nil
}

// Len returns the number of entries in the table, including the
// top-level entry.
func (t *Table) Len() int { return len(t.Entries) }

// Top returns the table's top-level entry.
func (t *Table) Top() *term.Term {
	if len(t.Entries) == 0 {
		return nil
	}
	return t.Entries[len(t.Entries)-1]
}

// Lookup returns the entry addressed by reference index i.
func (t *Table) Lookup(i uint64) (*term.Term, error) {
	row, err := t.row(i)
	if err != nil {
		return nil, err
	}
	return t.Entries[row], nil
}

// row returns the position of the entry addressed by index i.
func (t *Table) row(i uint64) (int, error) {
	n := uint64(len(t.Entries))
	if n == 0 || i >= n-1 {
		return 0, rangeError(i, len(t.Entries))
	}
	return int(n - 2 - i), nil
}

func rangeError(i uint64, n int) error {
	return errors.E(errors.NotExist, fmt.Sprintf("bloc: reference <%d> outside of table with %d entries", i, n))
}

// Dump writes a human-readable listing of the table to w: one line
// per entry, giving its position, the index that addresses it (or
// "top" for the top-level entry), and the entry in De Bruijn
// notation.
func (t *Table) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for row, e := range t.Entries {
		index := "top"
		if row < len(t.Entries)-1 {
			index = fmt.Sprintf("<%d>", len(t.Entries)-2-row)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row, index, e)
	}
	return tw.Flush()
}
