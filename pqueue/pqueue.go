// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package pqueue implements a priority queue of opaque elements
// ordered by an extracted unsigned priority. The element with the
// highest priority is popped first.
package pqueue

import "container/heap"

// Queue is a binary max-heap of elements of type T. Elements with
// equal priority are popped in an unspecified, but deterministic,
// order: the same sequence of operations always yields the same
// sequence of pops. A Queue is not safe for concurrent use.
type Queue[T any] struct {
	h elems[T]
}

// New returns a new queue that orders its elements by the priority
// returned by pri. If setPos is non-nil, it is called with an element
// and its current heap position whenever the element is placed, and
// with position -1 when the element is popped.
func New[T any](pri func(T) uint64, setPos func(T, int)) *Queue[T] {
	return &Queue[T]{h: elems[T]{pri: pri, setPos: setPos}}
}

// Insert adds x to the queue in O(log n) time.
func (q *Queue[T]) Insert(x T) {
	heap.Push(&q.h, elem[T]{val: x, pri: q.h.pri(x)})
}

// Pop removes and returns the element with the highest priority.
// Pop returns false if the queue is empty.
func (q *Queue[T]) Pop() (x T, ok bool) {
	if len(q.h.list) == 0 {
		return x, false
	}
	e := heap.Pop(&q.h).(elem[T])
	return e.val, true
}

// Peek returns the element with the highest priority without
// removing it.
func (q *Queue[T]) Peek() (x T, ok bool) {
	if len(q.h.list) == 0 {
		return x, false
	}
	return q.h.list[0].val, true
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int { return len(q.h.list) }

// Remove removes the element at heap position pos, as last reported
// to the position callback, and returns it.
func (q *Queue[T]) Remove(pos int) T {
	return heap.Remove(&q.h, pos).(elem[T]).val
}

// elem caches an element's priority so that pri is evaluated once
// per insertion.
type elem[T any] struct {
	val T
	pri uint64
}

// elems implements heap.Interface.
type elems[T any] struct {
	list   []elem[T]
	pri    func(T) uint64
	setPos func(T, int)
}

func (h *elems[T]) Len() int           { return len(h.list) }
func (h *elems[T]) Less(i, j int) bool { return h.list[i].pri > h.list[j].pri }
func (h *elems[T]) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
	if h.setPos != nil {
		h.setPos(h.list[i].val, i)
		h.setPos(h.list[j].val, j)
	}
}

func (h *elems[T]) Push(x interface{}) {
	e := x.(elem[T])
	h.list = append(h.list, e)
	if h.setPos != nil {
		h.setPos(e.val, len(h.list)-1)
	}
}

func (h *elems[T]) Pop() interface{} {
	n := len(h.list)
	e := h.list[n-1]
	var zero elem[T]
	h.list[n-1] = zero
	h.list = h.list[:n-1]
	if h.setPos != nil {
		h.setPos(e.val, -1)
	}
	return e
}
