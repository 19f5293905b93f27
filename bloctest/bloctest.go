// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bloctest provides utilities for testing code that
// manipulates lambda terms.
package bloctest

import (
	"math/rand"

	fuzz "github.com/google/gofuzz"
	"github.com/grailbio/bloc/term"
)

// Fuzzer returns a fuzzer, seeded with seed, that populates
// term.Term values with random closed terms nested at most
// maxDepth+1 deep. Variables only refer to enclosing binders. Earlier
// closed subterms are reused often enough that generated terms
// contain repeated subexpressions.
func Fuzzer(seed int64, maxDepth int) *fuzz.Fuzzer {
	type pooled struct {
		t     *term.Term
		depth int
	}
	var (
		depth, binders int
		pool           []pooled
	)
	fill := func(t *term.Term, c fuzz.Continue) {
		depth++
		defer func() { depth-- }()
		if len(pool) > 0 && c.Intn(4) == 0 {
			// Repeat an earlier closed subterm if it fits.
			if p := pool[c.Intn(len(pool))]; depth-1+p.depth <= maxDepth {
				*t = *Clone(p.t)
				return
			}
		}
		switch {
		case binders == 0 && depth >= maxDepth:
			*t = *term.Abstraction(term.Variable(0))
		case depth >= maxDepth || binders > 0 && c.Intn(5) == 0:
			*t = *term.Variable(uint64(c.Intn(binders)))
		case binders == 0 || c.RandBool():
			t.Kind = term.Abs
			t.Body = new(term.Term)
			binders++
			c.Fuzz(t.Body)
			binders--
			if binders == 0 {
				pool = append(pool, pooled{Clone(t), term.Depth(t)})
			}
		default:
			t.Kind = term.App
			t.Left, t.Right = new(term.Term), new(term.Term)
			c.Fuzz(t.Left)
			c.Fuzz(t.Right)
		}
	}
	return fuzz.New().NilChance(0).RandSource(rand.NewSource(seed)).Funcs(fill)
}

// Terms returns n random closed terms produced by Fuzzer.
func Terms(seed int64, maxDepth, n int) []*term.Term {
	fz := Fuzzer(seed, maxDepth)
	terms := make([]*term.Term, n)
	for i := range terms {
		terms[i] = new(term.Term)
		fz.Fuzz(terms[i])
	}
	return terms
}

// Clone returns a deep copy of t.
func Clone(t *term.Term) *term.Term {
	if t == nil {
		return nil
	}
	c := *t
	switch t.Kind {
	case term.Abs:
		c.Body = Clone(t.Body)
	case term.App:
		c.Left, c.Right = Clone(t.Left), Clone(t.Right)
	}
	return &c
}

// Omega returns the self-application term ([(0 0)] [(0 0)]).
func Omega() *term.Term {
	return term.Application(
		term.Abstraction(term.Application(term.Variable(0), term.Variable(0))),
		term.Abstraction(term.Application(term.Variable(0), term.Variable(0))))
}

// Repeat returns a term that applies n copies of body to each other,
// left-associated: (((body body) body) ...).
func Repeat(body *term.Term, n int) *term.Term {
	t := Clone(body)
	for i := 1; i < n; i++ {
		t = term.Application(t, Clone(body))
	}
	return t
}

// Closed tells whether every variable in t refers to an enclosing
// abstraction of t.
func Closed(t *term.Term) bool {
	type frame struct {
		t       *term.Term
		binders uint64
	}
	stack := []frame{{t, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch f.t.Kind {
		case term.Abs:
			stack = append(stack, frame{f.t.Body, f.binders + 1})
		case term.App:
			stack = append(stack, frame{f.t.Left, f.binders}, frame{f.t.Right, f.binders})
		case term.Var:
			if f.t.Index >= f.binders {
				return false
			}
		default:
			return false
		}
	}
	return true
}
