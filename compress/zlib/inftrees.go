// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

// code is one decoding table entry.
//
// op encodes the entry kind:
//
//	0           literal, val is the byte
//	1..15       link to a sub-table of op bits at offset val
//	16|n        length or distance base val with n extra bits
//	16|128      deflate64 length base with 16 extra bits
//	32|64       end of block
//	64          invalid code
//
// bits is the number of bits the entry consumes.
type code struct {
	op   uint8
	bits uint8
	val  uint16
}

// extraBits returns the number of extra bits of a length or distance base.
func (c code) extraBits() uint {
	return uint(c.op&15) | uint(c.op&128)>>3
}

type codeType int

const (
	codesType codeType = iota // bit length codes
	lensType                  // literal/length codes
	distsType                 // distance codes
)

// Maximum table sizes for a complete code of each kind with the root
// table sizes used by the decoder (9 bits for lengths, 6 for distances).
const (
	enoughLens    = 852
	enoughDists   = 592
	enoughDists64 = 594 // 32 distance symbols
	enough        = enoughLens + enoughDists64
)

const maxBits = 15

var (
	lbase = [31]uint16{ // length codes 257..285 base
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258, 0, 0}
	lext = [31]uint8{ // length codes 257..285 extra
		16, 16, 16, 16, 16, 16, 16, 16, 17, 17, 17, 17, 18, 18, 18, 18,
		19, 19, 19, 19, 20, 20, 20, 20, 21, 21, 21, 21, 16, 64, 64}
	dbase = [32]uint16{ // distance codes 0..29 base
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
		8193, 12289, 16385, 24577, 0, 0}
	dext = [32]uint8{ // distance codes 0..29 extra
		16, 16, 16, 16, 17, 17, 18, 18, 19, 19, 20, 20, 21, 21, 22, 22,
		23, 23, 24, 24, 25, 25, 26, 26, 27, 27,
		28, 28, 29, 29, 64, 64}

	// deflate64 redefines length code 285 and adds distance codes 30, 31.
	lbase64 = func() [31]uint16 { b := lbase; b[28] = 3; return b }()
	lext64  = func() [31]uint8 { e := lext; e[28] = 16 | 128; return e }()
	dbase64 = func() [32]uint16 { b := dbase; b[30], b[31] = 32769, 49153; return b }()
	dext64  = func() [32]uint8 { e := dext; e[30], e[31] = 16+14, 16+14; return e }()
)

// inflateTable builds a decoding table for the code lengths in lens into
// table. bits is the requested root table size. It returns the number of
// table entries used and the actual root size, or ok == false if the
// lengths do not describe a valid code.
//
// An incomplete code is accepted only for a single-length-1 literal/length
// or distance code; such tables get invalid entries for the missing codes.
// An empty code yields a table of two invalid entries.
func inflateTable(typ codeType, lens []uint16, table []code, bits int, work []uint16, d64 bool) (used, root int, ok bool) {
	var count, offs [maxBits + 1]int
	for _, l := range lens {
		count[l]++
	}

	root = bits
	maxLen := maxBits
	for ; maxLen >= 1; maxLen-- {
		if count[maxLen] != 0 {
			break
		}
	}
	if root > maxLen {
		root = maxLen
	}
	if maxLen == 0 {
		// no symbols to code at all; fail on the first decode
		table[0] = code{op: 64, bits: 1}
		table[1] = code{op: 64, bits: 1}
		return 2, 1, true
	}
	minLen := 1
	for ; minLen < maxLen; minLen++ {
		if count[minLen] != 0 {
			break
		}
	}
	if root < minLen {
		root = minLen
	}

	// check for an over-subscribed or incomplete set of lengths
	left := 1
	for l := 1; l <= maxBits; l++ {
		left <<= 1
		left -= count[l]
		if left < 0 {
			return 0, 0, false
		}
	}
	if left > 0 && (typ == codesType || maxLen != 1) {
		return 0, 0, false
	}

	// sort symbols by length, by symbol order within each length
	offs[1] = 0
	for l := 1; l < maxBits; l++ {
		offs[l+1] = offs[l] + count[l]
	}
	for sym, l := range lens {
		if l != 0 {
			work[offs[l]] = uint16(sym)
			offs[l]++
		}
	}

	var base []uint16
	var extra []uint8
	var match int
	switch typ {
	case codesType:
		match = 20 // all symbols are literals
	case lensType:
		base, extra = lbase[:], lext[:]
		if d64 {
			base, extra = lbase64[:], lext64[:]
		}
		match = 257
	default:
		base, extra = dbase[:], dext[:]
		if d64 {
			base, extra = dbase64[:], dext64[:]
		}
		match = 0
	}
	limit := len(table)
	switch {
	case typ == lensType:
		limit = enoughLens
	case typ == distsType && d64:
		limit = enoughDists64
	case typ == distsType:
		limit = enoughDists
	}

	// Walk the codes in canonical order, filling the root table and
	// starting a sub-table whenever a code is longer than root.
	huff := 0   // current code, bit reversed
	sym := 0    // index in work
	l := minLen // current code length
	next := 0   // start of the current table in table
	curr := root
	drop := 0 // bits dropped for the sub-table
	low := -1 // low root bits of the current sub-table
	used = 1 << root
	mask := used - 1

	if used > limit {
		return 0, 0, false
	}

	for {
		here := code{bits: uint8(l - drop)}
		switch w := int(work[sym]); {
		case w+1 < match:
			here.val = uint16(w)
		case w >= match:
			here.op = extra[w-match]
			here.val = base[w-match]
		default:
			here.op = 32 + 64 // end of block
		}

		// replicate the entry for all indices sharing the low bits
		incr := 1 << (l - drop)
		fill := 1 << curr
		size := fill
		for {
			fill -= incr
			table[next+huff>>drop+fill] = here
			if fill == 0 {
				break
			}
		}

		// increment the bit-reversed code
		incr = 1 << (l - 1)
		for huff&incr != 0 {
			incr >>= 1
		}
		if incr != 0 {
			huff &= incr - 1
			huff += incr
		} else {
			huff = 0
		}

		sym++
		count[l]--
		if count[l] == 0 {
			if l == maxLen {
				break
			}
			l = int(lens[work[sym]])
		}

		// create a new sub-table if needed
		if l > root && huff&mask != low {
			if drop == 0 {
				drop = root
			}
			next += size

			// size the sub-table to cover the remaining codes with
			// this prefix
			curr = l - drop
			left = 1 << curr
			for curr+drop < maxLen {
				left -= count[curr+drop]
				if left <= 0 {
					break
				}
				curr++
				left <<= 1
			}

			used += 1 << curr
			if used > limit {
				return 0, 0, false
			}

			low = huff & mask
			table[low] = code{op: uint8(curr), bits: uint8(root), val: uint16(next)}
		}
	}

	// An incomplete code has at most one remaining entry, of length 1.
	if huff != 0 {
		table[next+huff] = code{op: 64, bits: uint8(l - drop)}
	}
	return used, root, true
}

// Fixed decoding tables. Each arena holds the literal/length table at 0
// and the distance table at fixedDistOffset.
const (
	fixedLenBits    = 9
	fixedDistBits   = 5
	fixedDistOffset = 1 << fixedLenBits
)

var (
	fixedCodes   = buildFixed(false)
	fixedCodes64 = buildFixed(true)
)

func buildFixed(d64 bool) []code {
	var lens [320]uint16
	var work [288]uint16
	n := 0
	for ; n < 144; n++ {
		lens[n] = 8
	}
	for ; n < 256; n++ {
		lens[n] = 9
	}
	for ; n < 280; n++ {
		lens[n] = 7
	}
	for ; n < 288; n++ {
		lens[n] = 8
	}
	table := make([]code, fixedDistOffset+1<<fixedDistBits)
	inflateTable(lensType, lens[:288], table, fixedLenBits, work[:], d64)

	for n = 0; n < 32; n++ {
		lens[n] = 5
	}
	inflateTable(distsType, lens[:32], table[fixedDistOffset:], fixedDistBits, work[:], d64)
	return table
}
