// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

// DEFLATE alphabet sizes and limits.
const (
	MaxBits     = 15  // longest literal/length or distance code
	MaxBLBits   = 7   // longest bit length code
	LengthCodes = 29  // length codes, not counting the special END_BLOCK
	Literals    = 256 // literal bytes 0..255
	LCodes      = Literals + 1 + LengthCodes
	DCodes      = 30
	BLCodes     = 19
	HeapSize    = 2*LCodes + 1
	EndBlock    = 256

	MinMatch = 3
	MaxMatch = 258

	// Bit length codes used to transmit tree shapes.
	Rep3To6     = 16 // repeat previous length 3-6 times (2 extra bits)
	RepZ3To10   = 17 // repeat zero length 3-10 times (3 extra bits)
	RepZ11To138 = 18 // repeat zero length 11-138 times (7 extra bits)

	// DistCodeLen is the size of the distance code lookup: the first 256
	// entries map distances 0..255, the last 256 map the top bits (dist>>7).
	DistCodeLen = 512
)

// Extra bits per length, distance and bit length code.
var (
	ExtraLBits  = [LengthCodes]uint8{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0}
	ExtraDBits  = [DCodes]uint8{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13}
	ExtraBLBits = [BLCodes]uint8{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 3, 7}
)

// BLOrder is the order in which bit length code lengths are transmitted.
var BLOrder = [BLCodes]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// Node is one entry of a Huffman tree under construction. Leaves occupy
// the first elems slots; internal nodes follow.
type Node struct {
	Freq uint16 // frequency count
	Code uint16 // bit string, reversed for LSB-first output
	Dad  uint16 // parent node in the tree
	Len  uint16 // length of the bit string
}

// StaticTree describes the fixed side of a tree: its fixed code (nil for the
// bit length tree), extra bits, and limits.
type StaticTree struct {
	Tree      []Node
	ExtraBits []uint8
	ExtraBase int // first symbol with extra bits
	Elems     int // number of symbols
	MaxLength int // longest allowed code
}

// Tables holds the fixed code trees and the symbol mapping tables. It is
// built once and never modified afterwards.
type Tables struct {
	LTree      [LCodes + 2]Node
	DTree      [DCodes]Node
	DistCode   [DistCodeLen]uint8
	LengthCode [MaxMatch - MinMatch + 1]uint8
	BaseLength [LengthCodes]uint16
	BaseDist   [DCodes]uint16

	LDesc  StaticTree
	DDesc  StaticTree
	BLDesc StaticTree
}

// Fixed is the shared static table set.
var Fixed = newTables()

func newTables() *Tables {
	t := &Tables{}

	length := 0
	code := 0
	for ; code < LengthCodes-1; code++ {
		t.BaseLength[code] = uint16(length)
		for n := 0; n < 1<<ExtraLBits[code]; n++ {
			t.LengthCode[length] = uint8(code)
			length++
		}
	}
	// length 258 has its own code; overwrite the last entry
	t.LengthCode[length-1] = uint8(code)

	dist := 0
	for code = 0; code < 16; code++ {
		t.BaseDist[code] = uint16(dist)
		for n := 0; n < 1<<ExtraDBits[code]; n++ {
			t.DistCode[dist] = uint8(code)
			dist++
		}
	}
	dist >>= 7
	for ; code < DCodes; code++ {
		t.BaseDist[code] = uint16(dist << 7)
		for n := 0; n < 1<<(ExtraDBits[code]-7); n++ {
			t.DistCode[256+dist] = uint8(code)
			dist++
		}
	}

	var blCount [MaxBits + 1]uint16
	n := 0
	for ; n <= 143; n++ {
		t.LTree[n].Len = 8
	}
	blCount[8] += 144
	for ; n <= 255; n++ {
		t.LTree[n].Len = 9
	}
	blCount[9] += 112
	for ; n <= 279; n++ {
		t.LTree[n].Len = 7
	}
	blCount[7] += 24
	for ; n <= 287; n++ {
		t.LTree[n].Len = 8
	}
	blCount[8] += 8
	GenCodes(t.LTree[:], LCodes+1, &blCount)

	for n := 0; n < DCodes; n++ {
		t.DTree[n].Len = 5
		t.DTree[n].Code = Reverse(uint16(n), 5)
	}

	t.LDesc = StaticTree{Tree: t.LTree[:], ExtraBits: ExtraLBits[:], ExtraBase: Literals + 1, Elems: LCodes, MaxLength: MaxBits}
	t.DDesc = StaticTree{Tree: t.DTree[:], ExtraBits: ExtraDBits[:], ExtraBase: 0, Elems: DCodes, MaxLength: MaxBits}
	t.BLDesc = StaticTree{Tree: nil, ExtraBits: ExtraBLBits[:], ExtraBase: 0, Elems: BLCodes, MaxLength: MaxBLBits}
	return t
}

// DCode maps a distance minus one to its distance code.
func (t *Tables) DCode(dist int) int {
	if dist < 256 {
		return int(t.DistCode[dist])
	}
	return int(t.DistCode[256+(dist>>7)])
}
