// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/bloc/term"
	"github.com/grailbio/bloc/termhash"
)

// Groups maps content hashes to the nodes that share them: the
// candidates for deduplication. Groups are kept in the order in
// which their hashes were first seen.
type Groups struct {
	lists map[uint64][]NodeID
	order []uint64
}

func newGroups() *Groups {
	return &Groups{lists: make(map[uint64][]NodeID)}
}

func (g *Groups) add(hash uint64, id NodeID) {
	list, ok := g.lists[hash]
	if !ok {
		g.order = append(g.order, hash)
	}
	g.lists[hash] = append(list, id)
}

// Len returns the number of groups.
func (g *Groups) Len() int { return len(g.order) }

// Hashes returns the hashes of all groups, in first-seen order.
func (g *Groups) Hashes() []uint64 { return g.order }

// Lookup returns the nodes that have the provided hash, in
// postorder.
func (g *Groups) Lookup(hash uint64) []NodeID { return g.lists[hash] }

// Build adds the annotated tree of t to the arena and returns its
// root together with the candidate groups: every node whose
// estimated size is at least minSize, grouped by hash. Smaller nodes
// (and all variables) are hashed but never become candidates.
//
// Build fails only if t is not a plain term: references and nil
// subterms are rejected.
func Build(a *Arena, t *term.Term, minSize uint64, st *stats.Map) (NodeID, *Groups, error) {
	log.Debug.Printf("building the merkle tree and deduplication set")
	var (
		groups  = newGroups()
		results []NodeID
		nodes   = st.Int("nodes")
		cands   = st.Int("candidates")
	)
	type frame struct {
		t    *term.Term
		done bool
	}
	stack := []frame{{t: t}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.t == nil {
			return None, nil, errors.E(errors.Invalid, "dedup: nil subterm")
		}
		if !f.done {
			switch f.t.Kind {
			case term.Abs:
				stack = append(stack, frame{f.t, true}, frame{t: f.t.Body})
				continue
			case term.App:
				stack = append(stack, frame{f.t, true}, frame{t: f.t.Right}, frame{t: f.t.Left})
				continue
			case term.Var:
			default:
				return None, nil, errors.E(errors.Invalid, fmt.Sprintf("dedup: cannot build %s node", f.t.Kind))
			}
		}
		n := Node{Kind: f.t.Kind, Left: None, Right: None, DupCount: 1}
		switch f.t.Kind {
		case term.Abs:
			body := results[len(results)-1]
			results = results[:len(results)-1]
			n.Left = body
			n.Hash = termhash.Node(byte(term.Abs), a.nodes[body].Hash)
			n.Size = a.nodes[body].Size + 2
		case term.App:
			left, right := results[len(results)-2], results[len(results)-1]
			results = results[:len(results)-2]
			n.Left, n.Right = left, right
			n.Hash = termhash.Node(byte(term.App), a.nodes[left].Hash, a.nodes[right].Hash)
			n.Size = a.nodes[left].Size + a.nodes[right].Size + 3
		case term.Var:
			n.Index = f.t.Index
			n.Hash = termhash.Leaf(byte(term.Var), f.t.Index)
			n.Size = f.t.Index
		}
		id := a.alloc(n)
		nodes.Incr()
		if n.Kind != term.Var && n.Size >= minSize {
			groups.add(n.Hash, id)
			cands.Incr()
		}
		results = append(results, id)
	}
	st.Int("groups").Add(int64(groups.Len()))
	return results[0], groups, nil
}
