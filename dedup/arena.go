// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"

	"github.com/grailbio/bloc/term"
)

// NodeID addresses a node in an Arena. IDs are stable for the
// lifetime of the arena.
type NodeID int32

// None is the NodeID of a missing child.
const None NodeID = -1

// State is the merge state of a node.
type State uint8

const (
	// Validated nodes are live, unmodified parts of the tree.
	Validated State = iota
	// Invalidated nodes lie within an extracted subtree. Nodes that
	// are themselves occurrences of an extracted subtree also carry
	// the hash of their canonical entry, and are turned into
	// references when the merge is finalized.
	Invalidated
	// Resolved nodes have been replaced by a reference.
	Resolved
)

func (s State) String() string {
	switch s {
	case Validated:
		return "validated"
	case Invalidated:
		return "invalidated"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", s)
	}
}

// A Node is an annotated term node.
type Node struct {
	Kind term.Kind
	// Hash is the merkle hash of the subtree rooted at the node.
	Hash uint64
	// Size is the estimated encoded size of the subtree: an
	// abstraction costs its body plus 2, an application its children
	// plus 3, and a variable its De Bruijn index.
	Size uint64
	State State
	// DupCount is the occurrence count of the extraction that last
	// invalidated the node.
	DupCount int
	// Target is the hash of the canonical entry that the node is to
	// reference, if HasTarget is set. It is kept once the node is
	// resolved.
	Target    uint64
	HasTarget bool
	// Left is the body of an abstraction or the function of an
	// application; Right is the argument of an application.
	Left, Right NodeID
	// Index is a variable's De Bruijn index or a reference's table
	// index. Resolved references hold their target hash until the
	// table is optimized.
	Index uint64
}

// An Arena holds the nodes of a tree and of its canonical entries.
// Nodes refer to their children by NodeID, so a subtree may be shared
// between an occurrence and its canonical entry without either owning
// it; turning an occurrence into a reference merely detaches its
// children.
type Arena struct {
	nodes []Node
}

// Len returns the number of nodes allocated in the arena.
func (a *Arena) Len() int { return len(a.nodes) }

// Node returns a copy of the node with the provided ID.
func (a *Arena) Node(id NodeID) Node { return a.nodes[id] }

func (a *Arena) alloc(n Node) NodeID {
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

// cloneRoot allocates a copy of node id that shares its children.
func (a *Arena) cloneRoot(id NodeID) NodeID {
	n := a.nodes[id]
	n.HasTarget = false
	n.Target = 0
	return a.alloc(n)
}

// invalidate marks id and its subtree as invalidated by an extraction
// with the provided occurrence count.
func (a *Arena) invalidate(id NodeID, count int) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &a.nodes[id]
		n.State = Invalidated
		n.DupCount = count
		switch n.Kind {
		case term.Abs:
			stack = append(stack, n.Left)
		case term.App:
			stack = append(stack, n.Left, n.Right)
		}
	}
}

// resolve turns the invalidated occurrence id into a reference to
// its target.
func (a *Arena) resolve(id NodeID) {
	n := &a.nodes[id]
	n.Kind = term.Ref
	n.Left, n.Right = None, None
	n.Index = n.Target
	n.State = Resolved
}

// children returns the children of id; missing children are None.
func (a *Arena) children(id NodeID) (left, right NodeID) {
	n := &a.nodes[id]
	switch n.Kind {
	case term.Abs:
		return n.Left, None
	case term.App:
		return n.Left, n.Right
	default:
		return None, None
	}
}

// Term returns the subtree rooted at id as a term.
func (a *Arena) Term(id NodeID) *term.Term {
	type frame struct {
		id  NodeID
		dst **term.Term
	}
	var root *term.Term
	stack := []frame{{id, &root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &a.nodes[f.id]
		t := &term.Term{Kind: n.Kind}
		*f.dst = t
		switch n.Kind {
		case term.Abs:
			stack = append(stack, frame{n.Left, &t.Body})
		case term.App:
			stack = append(stack, frame{n.Right, &t.Right}, frame{n.Left, &t.Left})
		default:
			t.Index = n.Index
		}
	}
	return root
}
