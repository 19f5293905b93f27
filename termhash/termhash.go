// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package termhash computes the content hashes used to identify
// repeated subterms. Hashes are 64-bit murmur3 digests; they are
// deterministic and avalanching but carry no cryptographic strength.
//
// Subterms are considered duplicates when their hashes are equal.
// Structural equality is never checked: a 64-bit collision between
// two different subterms would merge them. The birthday bound makes
// this negligible for terms of realistic size, and it is accepted
// as part of the format's design.
package termhash

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Sum returns the 64-bit hash of data, seeded with seed.
func Sum(data []byte, seed uint64) uint64 {
	h := murmur3.New64()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	// Writes to a hash never fail.
	_, _ = h.Write(buf[:])
	_, _ = h.Write(data)
	return h.Sum64()
}

// Leaf returns the hash of a childless node with the provided type
// tag and payload, such as a variable's De Bruijn index.
func Leaf(tag byte, payload uint64) uint64 {
	return Sum([]byte{tag}, payload)
}

// Node returns the merkle hash of an inner node with the provided
// type tag and child hashes. The tag is hashed with the first child
// hash as seed, and each further child hash seeds the hash of the
// running digest, left to right.
func Node(tag byte, first uint64, rest ...uint64) uint64 {
	h := Sum([]byte{tag}, first)
	var buf [8]byte
	for _, c := range rest {
		binary.LittleEndian.PutUint64(buf[:], h)
		h = Sum(buf[:], c)
	}
	return h
}
