// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/must"
	"github.com/grailbio/bloc/pqueue"
	"github.com/grailbio/bloc/stats"
)

// Merge greedily extracts repeated subtrees of the tree rooted at
// root into canonical entries and rewrites their occurrences into
// references. Candidate groups are considered largest first: the
// largest is the root itself, which becomes the table's blueprint.
// Every further group that occurs more than once, and that is not
// already covered by an extraction with at least as many
// occurrences, is cloned into a canonical entry, and all of its
// occurrences are invalidated. Finally, each invalidated occurrence
// is resolved into a reference to its entry's hash; Optimize later
// assigns the references their table indices.
func Merge(a *Arena, root NodeID, groups *Groups, st *stats.Map) *Table {
	t := &Table{
		arena:     a,
		blueprint: root,
		byHash:    map[uint64]NodeID{a.nodes[root].Hash: root},
	}
	if groups.Len() == 0 {
		log.Debug.Printf("term not suitable for deduplication, emitting directly")
		return t
	}

	log.Debug.Printf("constructing priority queue of %d candidate groups", groups.Len())
	q := pqueue.New(func(list []NodeID) uint64 { return a.nodes[list[0]].Size }, nil)
	for _, h := range groups.order {
		q.Insert(groups.lists[h])
	}
	longest, _ := q.Pop()
	must.Truef(longest[0] == root, "dedup: largest candidate %d is not the root %d", longest[0], root)

	log.Debug.Printf("iterating priority queue, invalidating duplicates")
	var (
		invalidated []NodeID
		unique      = st.Int("skipped.unique")
		covered     = st.Int("skipped.covered")
	)
	for {
		list, ok := q.Pop()
		if !ok {
			break
		}
		count := len(list)
		if count <= 1 {
			unique.Incr()
			continue
		}
		head := a.nodes[list[0]]
		if head.State != Validated && head.DupCount >= count {
			covered.Incr()
			continue
		}
		// Clone the root so that the entry is not itself replaced by
		// a reference to itself.
		entry := a.cloneRoot(list[0])
		a.nodes[entry].State = Invalidated
		t.byHash[head.Hash] = entry
		t.entries = append(t.entries, entry)
		for _, id := range list {
			a.invalidate(id, count)
			a.nodes[id].Target = head.Hash
			a.nodes[id].HasTarget = true
			invalidated = append(invalidated, id)
		}
	}
	st.Int("extracted").Add(int64(len(t.entries)))

	log.Debug.Printf("replacing %d invalidated trees with references", len(invalidated))
	for _, id := range invalidated {
		a.resolve(id)
	}
	st.Int("references").Add(int64(len(invalidated)))
	return t
}
