// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import "github.com/intel/fastzlib/internal/huffman"

var fixed = huffman.Fixed

// trInit sets up the tree descriptors for a new stream.
func (s *deflateState) trInit() {
	s.lDesc = huffman.Tree{Dyn: s.dynLtree[:], Stat: &fixed.LDesc}
	s.dDesc = huffman.Tree{Dyn: s.dynDtree[:], Stat: &fixed.DDesc}
	s.blDesc = huffman.Tree{Dyn: s.blTree[:], Stat: &fixed.BLDesc}

	s.biBuf = 0
	s.biValid = 0
	s.biUsed = 0

	s.initBlock()
}

func (s *deflateState) initBlock() {
	for n := 0; n < huffman.LCodes; n++ {
		s.dynLtree[n].Freq = 0
	}
	for n := 0; n < huffman.DCodes; n++ {
		s.dynDtree[n].Freq = 0
	}
	for n := 0; n < huffman.BLCodes; n++ {
		s.blTree[n].Freq = 0
	}
	s.dynLtree[huffman.EndBlock].Freq = 1
	s.trees.OptLen = 0
	s.trees.StaticLen = 0
	s.symNext = 0
	s.matches = 0
}

// tallyLit records a literal and reports whether the block is full.
func (s *deflateState) tallyLit(c byte) bool {
	i := s.symBuf + s.symNext
	s.pendingBuf[i] = 0
	s.pendingBuf[i+1] = 0
	s.pendingBuf[i+2] = c
	s.symNext += 3
	s.dynLtree[c].Freq++
	return s.symNext == s.symEnd
}

// tallyDist records a match of length lc+minMatch at distance dist and
// reports whether the block is full.
func (s *deflateState) tallyDist(dist, lc int) bool {
	i := s.symBuf + s.symNext
	s.pendingBuf[i] = byte(dist)
	s.pendingBuf[i+1] = byte(dist >> 8)
	s.pendingBuf[i+2] = byte(lc)
	s.symNext += 3
	s.matches++
	dist--
	s.dynLtree[int(fixed.LengthCode[lc])+huffman.Literals+1].Freq++
	s.dynDtree[fixed.DCode(dist)].Freq++
	return s.symNext == s.symEnd
}

func (s *deflateState) sendCode(c int, tree []huffman.Node) {
	s.sendBits(int(tree[c].Code), int(tree[c].Len))
}

// scanTree gathers the bit length code frequencies needed to send tree.
func (s *deflateState) scanTree(tree []huffman.Node, maxCode int) {
	prevLen := -1
	nextLen := int(tree[0].Len)
	count := 0
	maxCount, minCount := 7, 4
	if nextLen == 0 {
		maxCount, minCount = 138, 3
	}
	tree[maxCode+1].Len = 0xffff // guard

	for n := 0; n <= maxCode; n++ {
		curLen := nextLen
		nextLen = int(tree[n+1].Len)
		count++
		if count < maxCount && curLen == nextLen {
			continue
		}
		switch {
		case count < minCount:
			s.blTree[curLen].Freq += uint16(count)
		case curLen != 0:
			if curLen != prevLen {
				s.blTree[curLen].Freq++
			}
			s.blTree[huffman.Rep3To6].Freq++
		case count <= 10:
			s.blTree[huffman.RepZ3To10].Freq++
		default:
			s.blTree[huffman.RepZ11To138].Freq++
		}
		count = 0
		prevLen = curLen
		switch {
		case nextLen == 0:
			maxCount, minCount = 138, 3
		case curLen == nextLen:
			maxCount, minCount = 6, 3
		default:
			maxCount, minCount = 7, 4
		}
	}
}

// sendTree sends tree in compressed form using the bit length codes. The
// guard set by scanTree is still in place.
func (s *deflateState) sendTree(tree []huffman.Node, maxCode int) {
	prevLen := -1
	nextLen := int(tree[0].Len)
	count := 0
	maxCount, minCount := 7, 4
	if nextLen == 0 {
		maxCount, minCount = 138, 3
	}

	for n := 0; n <= maxCode; n++ {
		curLen := nextLen
		nextLen = int(tree[n+1].Len)
		count++
		if count < maxCount && curLen == nextLen {
			continue
		}
		switch {
		case count < minCount:
			for ; count != 0; count-- {
				s.sendCode(curLen, s.blTree[:])
			}
		case curLen != 0:
			if curLen != prevLen {
				s.sendCode(curLen, s.blTree[:])
				count--
			}
			s.sendCode(huffman.Rep3To6, s.blTree[:])
			s.sendBits(count-3, 2)
		case count <= 10:
			s.sendCode(huffman.RepZ3To10, s.blTree[:])
			s.sendBits(count-3, 3)
		default:
			s.sendCode(huffman.RepZ11To138, s.blTree[:])
			s.sendBits(count-11, 7)
		}
		count = 0
		prevLen = curLen
		switch {
		case nextLen == 0:
			maxCount, minCount = 138, 3
		case curLen == nextLen:
			maxCount, minCount = 6, 3
		default:
			maxCount, minCount = 7, 4
		}
	}
}

// buildBLTree builds the bit length tree for the current literal and
// distance trees and returns the index in BLOrder of the last bit length
// code to send.
func (s *deflateState) buildBLTree() int {
	s.scanTree(s.dynLtree[:], s.lDesc.MaxCode)
	s.scanTree(s.dynDtree[:], s.dDesc.MaxCode)

	s.trees.Build(&s.blDesc)

	// At least 4 bit length codes are always sent.
	maxBLIndex := huffman.BLCodes - 1
	for ; maxBLIndex >= 3; maxBLIndex-- {
		if s.blTree[huffman.BLOrder[maxBLIndex]].Len != 0 {
			break
		}
	}
	s.trees.OptLen += 3*(maxBLIndex+1) + 5 + 5 + 4
	return maxBLIndex
}

func (s *deflateState) sendAllTrees(lcodes, dcodes, blcodes int) {
	s.sendBits(lcodes-257, 5)
	s.sendBits(dcodes-1, 5)
	s.sendBits(blcodes-4, 4)
	for rank := 0; rank < blcodes; rank++ {
		s.sendBits(int(s.blTree[huffman.BLOrder[rank]].Len), 3)
	}
	s.sendTree(s.dynLtree[:], lcodes-1)
	s.sendTree(s.dynDtree[:], dcodes-1)
}

// trStoredBlock sends a stored block holding the first storedLen bytes of
// buf.
func (s *deflateState) trStoredBlock(buf []byte, storedLen int, last bool) {
	s.sendBits(storedBlock<<1+b2i(last), 3)
	s.biWindup()
	s.putShort(storedLen)
	s.putShort(^storedLen)
	if storedLen != 0 {
		copy(s.pendingBuf[s.pending:], buf[:storedLen])
	}
	s.pending += storedLen
}

func (s *deflateState) trFlushBits() {
	s.biFlush()
}

// trAlign sends an empty static block so the receiver gets all the data
// sent so far.
func (s *deflateState) trAlign() {
	s.sendBits(staticTrees<<1, 3)
	s.sendCode(huffman.EndBlock, fixed.LTree[:])
	s.biFlush()
}

// compressBlock sends the symbols of the block with the given trees.
func (s *deflateState) compressBlock(ltree, dtree []huffman.Node) {
	buf := s.pendingBuf[s.symBuf:]
	for sx := 0; sx < s.symNext; sx += 3 {
		dist := int(buf[sx]) | int(buf[sx+1])<<8
		lc := int(buf[sx+2])
		if dist == 0 {
			s.sendCode(lc, ltree) // literal byte
			continue
		}
		code := int(fixed.LengthCode[lc])
		s.sendCode(code+huffman.Literals+1, ltree)
		if extra := int(huffman.ExtraLBits[code]); extra != 0 {
			s.sendBits(lc-int(fixed.BaseLength[code]), extra)
		}
		dist--
		code = fixed.DCode(dist)
		s.sendCode(code, dtree)
		if extra := int(huffman.ExtraDBits[code]); extra != 0 {
			s.sendBits(dist-int(fixed.BaseDist[code]), extra)
		}
	}
	s.sendCode(huffman.EndBlock, ltree)
}

// detectDataType classifies the block as Text if it has no bytes from the
// block list (0..6, 14..25, 28..31) and at least one printable or
// whitelisted control byte, and as Binary otherwise.
func (s *deflateState) detectDataType() int {
	blockMask := uint32(0xf3ffc07f)
	for n := 0; n <= 31; n, blockMask = n+1, blockMask>>1 {
		if blockMask&1 != 0 && s.dynLtree[n].Freq != 0 {
			return Binary
		}
	}
	if s.dynLtree[9].Freq != 0 || s.dynLtree[10].Freq != 0 || s.dynLtree[13].Freq != 0 {
		return Text
	}
	for n := 32; n < huffman.Literals; n++ {
		if s.dynLtree[n].Freq != 0 {
			return Text
		}
	}
	return Binary
}

// trFlushBlock determines the best encoding for the current block, stored,
// fixed or dynamic, and writes it out. buf is nil when the block data is no
// longer in the window, which rules out a stored block.
func (s *deflateState) trFlushBlock(buf []byte, storedLen int, last bool) {
	var optLenb, staticLenb int
	maxBLIndex := 0

	if s.level > 0 {
		if s.strm.DataType == Unknown {
			s.strm.DataType = s.detectDataType()
		}
		s.trees.Build(&s.lDesc)
		s.trees.Build(&s.dDesc)
		maxBLIndex = s.buildBLTree()

		optLenb = (s.trees.OptLen + 3 + 7) >> 3
		staticLenb = (s.trees.StaticLen + 3 + 7) >> 3
		if staticLenb <= optLenb || s.strategy == Fixed {
			optLenb = staticLenb
		}
	} else {
		optLenb = storedLen + 5
		staticLenb = optLenb // force a stored block
	}

	switch {
	case storedLen+4 <= optLenb && buf != nil:
		// 4: two words for the lengths
		s.trStoredBlock(buf, storedLen, last)
	case staticLenb == optLenb:
		s.sendBits(staticTrees<<1+b2i(last), 3)
		s.compressBlock(fixed.LTree[:], fixed.DTree[:])
	default:
		s.sendBits(dynTrees<<1+b2i(last), 3)
		s.sendAllTrees(s.lDesc.MaxCode+1, s.dDesc.MaxCode+1, maxBLIndex+1)
		s.compressBlock(s.dynLtree[:], s.dynDtree[:])
	}
	s.initBlock()
	if last {
		s.biWindup()
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
