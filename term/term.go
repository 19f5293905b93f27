// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package term defines the syntax tree of lambda terms written with
// De Bruijn indices, as read from and written to BLC and BLoC streams.
package term

import (
	"fmt"
	"strings"
)

// Kind is the type of a term node.
type Kind uint8

const (
	// Abs is an abstraction; its body is stored in Body.
	Abs Kind = iota + 1
	// App is an application of Left to Right.
	App
	// Var is a variable; Index is its De Bruijn index.
	Var
	// Ref is a back-reference into a BLoC table; Index is the
	// reference index.
	Ref
)

func (k Kind) String() string {
	switch k {
	case Abs:
		return "abs"
	case App:
		return "app"
	case Var:
		return "var"
	case Ref:
		return "ref"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// A Term is a node in a lambda term. Terms are exclusively owned
// trees: a node is never reachable through more than one parent.
type Term struct {
	Kind Kind
	// Body is the body of an abstraction.
	Body *Term
	// Left and Right are the function and argument of an application.
	Left, Right *Term
	// Index is the De Bruijn index of a variable or the table index
	// of a reference.
	Index uint64
}

// Abstraction returns a new abstraction with the provided body.
func Abstraction(body *Term) *Term {
	return &Term{Kind: Abs, Body: body}
}

// Application returns a new application of left to right.
func Application(left, right *Term) *Term {
	return &Term{Kind: App, Left: left, Right: right}
}

// Variable returns a new variable with De Bruijn index i.
func Variable(i uint64) *Term {
	return &Term{Kind: Var, Index: i}
}

// Reference returns a new table reference with index i.
func Reference(i uint64) *Term {
	return &Term{Kind: Ref, Index: i}
}

// Children returns the term's immediate subterms, left to right.
func (t *Term) Children() []*Term {
	switch t.Kind {
	case Abs:
		return []*Term{t.Body}
	case App:
		return []*Term{t.Left, t.Right}
	default:
		return nil
	}
}

// Equal tells whether a and b are structurally identical.
func Equal(a, b *Term) bool {
	type pair struct{ a, b *Term }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		if p.a.Kind != p.b.Kind {
			return false
		}
		switch p.a.Kind {
		case Abs:
			stack = append(stack, pair{p.a.Body, p.b.Body})
		case App:
			stack = append(stack, pair{p.a.Right, p.b.Right}, pair{p.a.Left, p.b.Left})
		default:
			if p.a.Index != p.b.Index {
				return false
			}
		}
	}
	return true
}

// Size returns the number of nodes in t.
func Size(t *Term) int {
	var n int
	Walk(t, func(*Term, int) { n++ })
	return n
}

// Depth returns the nesting depth of t; a leaf has depth 1.
func Depth(t *Term) int {
	var max int
	Walk(t, func(_ *Term, depth int) {
		if depth > max {
			max = depth
		}
	})
	return max
}

// Walk calls fn for each node of t in preorder, together with the
// node's depth (the root has depth 1). Walk uses an explicit stack,
// so arbitrarily deep terms may be walked.
func Walk(t *Term, fn func(t *Term, depth int)) {
	type frame struct {
		t     *Term
		depth int
	}
	stack := []frame{{t, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.t == nil {
			continue
		}
		fn(f.t, f.depth)
		switch f.t.Kind {
		case Abs:
			stack = append(stack, frame{f.t.Body, f.depth + 1})
		case App:
			stack = append(stack, frame{f.t.Right, f.depth + 1}, frame{f.t.Left, f.depth + 1})
		}
	}
}

// String renders t in De Bruijn notation: abstractions are written
// as [body], applications as (left right), variables by their
// index, and references as <index>.
func (t *Term) String() string {
	var b strings.Builder
	// Closing brackets are pushed as sentinel frames.
	type frame struct {
		t   *Term
		tok string
	}
	stack := []frame{{t: t}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.t == nil {
			b.WriteString(f.tok)
			continue
		}
		switch f.t.Kind {
		case Abs:
			b.WriteByte('[')
			stack = append(stack, frame{tok: "]"}, frame{t: f.t.Body})
		case App:
			b.WriteByte('(')
			stack = append(stack, frame{tok: ")"}, frame{t: f.t.Right}, frame{tok: " "}, frame{t: f.t.Left})
		case Var:
			fmt.Fprint(&b, f.t.Index)
		case Ref:
			fmt.Fprintf(&b, "<%d>", f.t.Index)
		default:
			fmt.Fprintf(&b, "?%d", f.t.Kind)
		}
	}
	return b.String()
}
