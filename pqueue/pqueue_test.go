// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package pqueue

import (
	"sort"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func identity(x uint64) uint64 { return x }

func TestQueue(t *testing.T) {
	const N = 1000
	fz := fuzz.New()
	fz.NilChance(0)
	fz.NumElements(N, N)
	var vals []uint64
	fz.Fuzz(&vals)
	for i := range vals {
		vals[i] %= 100
	}

	q := New(identity, nil)
	for _, v := range vals {
		q.Insert(v)
	}
	assert.EQ(t, q.Len(), N)
	sort.Slice(vals, func(i, j int) bool { return vals[i] > vals[j] })
	for i, want := range vals {
		top, ok := q.Peek()
		assert.True(t, ok)
		got, ok := q.Pop()
		assert.True(t, ok)
		if got != want || top != want {
			t.Fatalf("pop %d: got %v (peek %v), want %v", i, got, top, want)
		}
	}
	_, ok := q.Pop()
	expect.False(t, ok)
	expect.EQ(t, q.Len(), 0)
}

func TestQueueEmpty(t *testing.T) {
	q := New(identity, nil)
	if _, ok := q.Pop(); ok {
		t.Error("pop from empty queue")
	}
	if _, ok := q.Peek(); ok {
		t.Error("peek into empty queue")
	}
}

type item struct {
	pri uint64
	pos int
}

func TestQueuePositions(t *testing.T) {
	q := New(func(it *item) uint64 { return it.pri },
		func(it *item, pos int) { it.pos = pos })
	items := make([]*item, 64)
	for i := range items {
		items[i] = &item{pri: uint64(i*37) % 64}
		q.Insert(items[i])
	}
	check := func() {
		t.Helper()
		for i, e := range q.h.list {
			if e.val.pos != i {
				t.Fatalf("item at %d reports position %d", i, e.val.pos)
			}
		}
	}
	check()
	// Remove an arbitrary element by its reported position.
	victim := items[10]
	removed := q.Remove(victim.pos)
	assert.True(t, removed == victim)
	expect.EQ(t, victim.pos, -1)
	check()
	last := uint64(1 << 63)
	for q.Len() > 0 {
		it, _ := q.Pop()
		expect.EQ(t, it.pos, -1)
		if it.pri > last {
			t.Fatalf("priority %d popped after %d", it.pri, last)
		}
		last = it.pri
		check()
	}
}

func TestQueueDeterministic(t *testing.T) {
	type tagged struct{ pri, tag uint64 }
	run := func() []uint64 {
		q := New(func(x tagged) uint64 { return x.pri }, nil)
		for i := uint64(0); i < 100; i++ {
			q.Insert(tagged{i % 3, i})
		}
		var tags []uint64
		for q.Len() > 0 {
			x, _ := q.Pop()
			tags = append(tags, x.tag)
		}
		return tags
	}
	expect.EQ(t, run(), run())
}

func BenchmarkQueue(b *testing.B) {
	const N = 1 << 16
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q := New(identity, nil)
		for j := uint64(0); j < N; j++ {
			q.Insert(j * 2654435761 % N)
		}
		for q.Len() > 0 {
			q.Pop()
		}
	}
}
