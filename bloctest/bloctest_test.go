// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bloctest

import (
	"testing"

	"github.com/grailbio/bloc/term"
	"github.com/grailbio/testutil/expect"
)

func TestFuzzer(t *testing.T) {
	const maxDepth = 12
	for i, x := range Terms(1, maxDepth, 200) {
		if !Closed(x) {
			t.Errorf("term %d is not closed: %v", i, x)
		}
		if d := term.Depth(x); d > maxDepth+1 {
			t.Errorf("term %d: depth %d exceeds %d", i, d, maxDepth+1)
		}
	}
}

func TestFuzzerDeterministic(t *testing.T) {
	a, b := Terms(7, 10, 20), Terms(7, 10, 20)
	for i := range a {
		expect.True(t, term.Equal(a[i], b[i]), "term %d", i)
	}
}

func TestClosed(t *testing.T) {
	expect.True(t, Closed(term.Abstraction(term.Variable(0))))
	expect.False(t, Closed(term.Abstraction(term.Variable(1))))
	expect.False(t, Closed(term.Variable(0)))
	expect.True(t, Closed(Omega()))
	expect.True(t, term.Equal(Repeat(Omega(), 1), Omega()))
}
