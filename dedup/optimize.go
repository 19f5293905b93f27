// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/bloc/pqueue"
	"github.com/grailbio/bloc/stats"
	"github.com/grailbio/bloc/term"
)

// tracker counts the references to a canonical entry.
type tracker struct {
	hash  uint64
	entry NodeID
	count uint64
}

// Optimize assigns table indices to the entries of t. Entries are
// ranked by the number of references to them that will be written:
// references are counted from the blueprint, and the body of each
// referenced entry is counted exactly once, so that references
// nested in entries are accounted for. The most referenced entry gets
// index 0, the cheapest to encode. Entries that are never referenced
// get no index and are left out of the table. Every reference is then
// rewritten to carry its entry's index.
//
// Optimize is idempotent: optimizing an optimized table assigns the
// same indices again.
func Optimize(t *Table, st *stats.Map) {
	a := t.arena
	log.Debug.Printf("counting references")
	var (
		trackers = make(map[uint64]*tracker)
		order    []*tracker
		stack    = []NodeID{t.blueprint}
	)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &a.nodes[id]
		if n.Kind == term.Ref {
			tr := trackers[n.Target]
			if tr == nil {
				entry, ok := t.byHash[n.Target]
				must.Truef(ok, "dedup: referred entry %x not found", n.Target)
				tr = &tracker{hash: n.Target, entry: entry}
				trackers[n.Target] = tr
				order = append(order, tr)
				stack = append(stack, entry)
			}
			tr.count++
			continue
		}
		stack = pushChildren(a, stack, id)
	}

	q := pqueue.New(func(tr *tracker) uint64 { return tr.count }, nil)
	for _, tr := range order {
		q.Insert(tr)
	}
	slots := make(map[uint64]uint64, len(order))
	t.slots = t.slots[:0]
	for {
		tr, ok := q.Pop()
		if !ok {
			break
		}
		slots[tr.hash] = uint64(len(t.slots))
		t.slots = append(t.slots, tr.entry)
	}
	t.optimized = true
	st.Int("entries").Add(int64(len(t.slots)))
	st.Int("entries.unreachable").Add(int64(len(t.entries) - len(t.slots)))

	log.Debug.Printf("assigning %d table indices", len(t.slots))
	stack = append(stack[:0], t.blueprint)
	stack = append(stack, t.slots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &a.nodes[id]
		if n.Kind == term.Ref {
			n.Index = slots[n.Target]
			continue
		}
		stack = pushChildren(a, stack, id)
	}
}

// pushChildren pushes the children of id so that the left child is
// popped first.
func pushChildren(a *Arena, stack []NodeID, id NodeID) []NodeID {
	left, right := a.children(id)
	if right != None {
		stack = append(stack, right)
	}
	if left != None {
		stack = append(stack, left)
	}
	return stack
}
