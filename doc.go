// Copyright 2023 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
	Package bloc converts Binary Lambda Calculus (BLC) terms into BLoC,
	a compacted, table-based variant of BLC in which repeated
	subexpressions are stored once and referred to by index, and back.

	Deduplicate factors the repeated subterms of a term out into a
	Table: a sequence of entries, the last of which is the top-level
	term. Entries refer to other entries through references. A
	reference with index i addresses the entry i places before the
	top-level entry, so that index 0 names the entry immediately
	preceding it. Indices are assigned by popularity: the most
	frequently referenced entries receive the smallest indices, which
	have the shortest encodings.

	A BLoC stream consists of a header followed by the table's
	entries:

		"BLoC"            4-byte magic
		count             2-byte little-endian entry count
		entry...          count entries, each padded to a byte boundary

	Each entry is encoded, most significant bit first, as follows:

		abstraction       00 <body>
		application       010 <left> <right>
		variable n        1^(n+1) 0
		reference i       011 <width> <i>

	The width selector is 2 bits wide and selects an index width of
	8, 16, 32, or 64 bits (00 to 11); the narrowest width that can
	represent the index is used.

	Table.MarshalBinary and Unmarshal convert tables to and from BLoC
	streams; Table.Expand substitutes all references, recovering the
	original term. Plain BLC is handled by package blc.

	Errors returned by this package carry a kind from
	github.com/grailbio/base/errors: errors.Invalid for malformed
	headers, errors.Integrity for corrupt or truncated entries,
	errors.NotExist for references outside of the table, errors.OOM
	for terms that nest deeper than the configured maximum, and
	errors.NotSupported for tables that exceed the format's limits.
*/
package bloc
