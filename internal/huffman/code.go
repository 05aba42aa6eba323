// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import "math/bits"

// Reverse returns the low n bits of code in reversed order.
func Reverse(code uint16, n int) uint16 {
	return bits.Reverse16(code) >> (16 - n)
}

// GenCodes assigns canonical codes to tree[0..maxCode] from their lengths
// and the number of codes of each length. The codes are stored reversed,
// ready for LSB-first output.
func GenCodes(tree []Node, maxCode int, blCount *[MaxBits + 1]uint16) {
	var nextCode [MaxBits + 1]uint16
	code := uint16(0)
	for n := 1; n <= MaxBits; n++ {
		code = (code + blCount[n-1]) << 1
		nextCode[n] = code
	}
	for n := 0; n <= maxCode; n++ {
		l := int(tree[n].Len)
		if l == 0 {
			continue
		}
		tree[n].Code = Reverse(nextCode[l], l)
		nextCode[l]++
	}
}
