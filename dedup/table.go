// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package dedup factors repeated subterms of a lambda term out into
// a table of shared entries.
//
// The pipeline has three stages. Build annotates a term with merkle
// hashes and size estimates, collecting subtrees that share a hash
// into candidate groups. Merge greedily extracts the largest repeated
// groups into canonical entries and rewrites their occurrences into
// references. Optimize ranks the extracted entries by how often they
// are referenced and assigns the most popular ones the smallest
// table indices.
//
// All nodes live in a single Arena and are addressed by NodeID, so an
// occurrence and its canonical entry can share a subtree while the
// occurrence is rewritten into a reference.
package dedup

import (
	"github.com/grailbio/base/must"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/bloc/term"
)

// A Table is the result of a merge: a blueprint (the deduplicated
// top-level term) and the canonical entries it references.
type Table struct {
	arena     *Arena
	blueprint NodeID
	// entries holds the canonical entries in extraction order.
	entries []NodeID
	byHash  map[uint64]NodeID
	// slots holds the entries addressed by each table index, once
	// the table is optimized.
	slots     []NodeID
	optimized bool
}

// Deduplicate runs the full pipeline on t: it builds the annotated
// tree, merges subtrees of estimated size at least minSize, and
// optimizes the table's indices.
func Deduplicate(t *term.Term, minSize uint64, st *stats.Map) (*Table, error) {
	a := new(Arena)
	root, groups, err := Build(a, t, minSize, st)
	if err != nil {
		return nil, err
	}
	table := Merge(a, root, groups, st)
	Optimize(table, st)
	return table, nil
}

// Arena returns the arena holding the table's nodes.
func (t *Table) Arena() *Arena { return t.arena }

// Blueprint returns the root of the deduplicated top-level term.
func (t *Table) Blueprint() NodeID { return t.blueprint }

// Entries returns the blueprint followed by the canonical entries in
// the order in which they were extracted.
func (t *Table) Entries() []NodeID {
	return append([]NodeID{t.blueprint}, t.entries...)
}

// Lookup returns the canonical entry with the provided hash.
func (t *Table) Lookup(hash uint64) (NodeID, bool) {
	id, ok := t.byHash[hash]
	return id, ok
}

// Slot returns the entry addressed by table index i.
func (t *Table) Slot(i int) NodeID {
	must.Truef(t.optimized, "dedup: table is not optimized")
	return t.slots[i]
}

// NumSlots returns the number of indexed entries.
func (t *Table) NumSlots() int {
	must.Truef(t.optimized, "dedup: table is not optimized")
	return len(t.slots)
}

// Layout returns the table's rows in stream order: the indexed
// entries from the highest index down to index 0, followed by the
// blueprint. Index i thus addresses row NumSlots()-1-i, counting back
// from the row preceding the blueprint.
func (t *Table) Layout() []NodeID {
	must.Truef(t.optimized, "dedup: table is not optimized")
	rows := make([]NodeID, 0, len(t.slots)+1)
	for i := len(t.slots) - 1; i >= 0; i-- {
		rows = append(rows, t.slots[i])
	}
	return append(rows, t.blueprint)
}

// Terms returns the table's rows, in stream order, as terms whose
// references carry table indices.
func (t *Table) Terms() []*term.Term {
	rows := t.Layout()
	terms := make([]*term.Term, len(rows))
	for i, id := range rows {
		terms[i] = t.arena.Term(id)
	}
	return terms
}
