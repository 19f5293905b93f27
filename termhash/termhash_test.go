// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package termhash

import (
	"math/bits"
	"testing"

	fuzz "github.com/google/gofuzz"
)

func TestSumDeterministic(t *testing.T) {
	fz := fuzz.New()
	fz.NilChance(0)
	for i := 0; i < 100; i++ {
		var (
			data []byte
			seed uint64
		)
		fz.Fuzz(&data)
		fz.Fuzz(&seed)
		if got, want := Sum(data, seed), Sum(append([]byte(nil), data...), seed); got != want {
			t.Fatalf("got %x, want %x", got, want)
		}
	}
}

func TestAvalanche(t *testing.T) {
	const N = 2000
	fz := fuzz.New()
	var flipped int
	for i := 0; i < N; i++ {
		var seed uint64
		fz.Fuzz(&seed)
		data := []byte{byte(i), byte(i >> 8), 7}
		a := Sum(data, seed)
		// Flip one bit of the seed and one bit of the data.
		b := Sum(data, seed^(1<<uint(i%64)))
		data[i%3] ^= 1 << uint(i%8)
		c := Sum(data, seed)
		flipped += bits.OnesCount64(a^b) + bits.OnesCount64(a^c)
	}
	mean := float64(flipped) / (2 * N)
	if mean < 28 || mean > 36 {
		t.Errorf("mean flipped bits %.2f, want about 32", mean)
	}
}

func TestNode(t *testing.T) {
	l, r := Leaf(3, 0), Leaf(3, 1)
	if l == r {
		t.Fatal("distinct leaves collide")
	}
	if Node(2, l, r) == Node(2, r, l) {
		t.Error("child order does not affect hash")
	}
	if Node(1, l) == Node(2, l) {
		t.Error("tag does not affect hash")
	}
	if got, want := Node(2, l, r), Node(2, Leaf(3, 0), Leaf(3, 1)); got != want {
		t.Errorf("got %x, want %x", got, want)
	}
}
