// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import "github.com/intel/fastzlib/internal/checksum"

func (s *deflateState) updateHash(h uint32, c byte) uint32 {
	return ((h << s.hashShift) ^ uint32(c)) & s.hashMask
}

// insertString inserts the string at str into the dictionary and returns
// the previous head of its hash chain. The hash of the first minMatch-1
// bytes must already be in insH.
func (s *deflateState) insertString(str int) int {
	s.insH = s.updateHash(s.insH, s.window[str+minMatch-1])
	m := s.head[s.insH]
	s.prev[str&s.wMask] = m
	s.head[s.insH] = uint16(str)
	return int(m)
}

func (s *deflateState) clearHash() {
	clear(s.head)
}

// slideHash rebases the hash chains after the window moved down by wSize.
// Entries that fall out of the window become 0.
func (s *deflateState) slideHash() {
	wsize := uint16(s.wSize)
	for i, m := range s.head {
		if m >= wsize {
			s.head[i] = m - wsize
		} else {
			s.head[i] = 0
		}
	}
	for i, m := range s.prev {
		if m >= wsize {
			s.prev[i] = m - wsize
		} else {
			s.prev[i] = 0
		}
	}
}

// readBuf moves up to len(buf) input bytes into buf, updating the running
// checksum and the input counters.
func (z *Stream) readBuf(buf []byte) int {
	n := z.AvailIn
	if n > len(buf) {
		n = len(buf)
	}
	if n == 0 {
		return 0
	}
	z.AvailIn -= n
	p := z.In[z.NextIn : z.NextIn+n]
	copy(buf, p)
	switch z.dstate.wrap {
	case 1:
		z.Adler = checksum.Adler32(z.Adler, buf[:n])
	case 2:
		z.Adler = checksum.CRC32(z.Adler, buf[:n])
	}
	z.NextIn += n
	z.TotalIn += int64(n)
	return n
}

// fillWindow reads new input when the lookahead runs short, sliding the
// window down first once strstart reaches the upper half. On return,
// lookahead is at least minLookahead unless the input is exhausted.
func (s *deflateState) fillWindow() {
	z := s.strm
	wsize := s.wSize

	for {
		more := s.windowSize - s.lookahead - s.strstart

		if s.strstart >= wsize+s.maxDist() {
			copy(s.window[:wsize], s.window[wsize:wsize+wsize-more])
			s.matchStart -= wsize
			s.strstart -= wsize
			s.blockStart -= wsize
			if s.insert > s.strstart {
				s.insert = s.strstart
			}
			s.slideHash()
			more += wsize
		}
		if z.AvailIn == 0 {
			break
		}

		// more is at least 2 here: the window holds 2*wSize bytes and at
		// most wSize+maxDist of them are in use.
		start := s.strstart + s.lookahead
		n := z.readBuf(s.window[start : start+more])
		s.lookahead += n

		// Initialize the hash with the bytes that precede the insertion
		// point.
		if s.lookahead+s.insert >= minMatch {
			str := s.strstart - s.insert
			s.insH = uint32(s.window[str])
			s.insH = s.updateHash(s.insH, s.window[str+1])
			for s.insert != 0 {
				s.insH = s.updateHash(s.insH, s.window[str+minMatch-1])
				s.prev[str&s.wMask] = s.head[s.insH]
				s.head[s.insH] = uint16(str)
				str++
				s.insert--
				if s.lookahead+s.insert < minMatch {
					break
				}
			}
		}
		if s.lookahead >= minLookahead || z.AvailIn == 0 {
			break
		}
	}

	// Zero winInit bytes past the data so the match finder never compares
	// against bytes left over from a previous stream.
	if s.highWater < s.windowSize {
		curr := s.strstart + s.lookahead
		if s.highWater < curr {
			n := s.windowSize - curr
			if n > winInit {
				n = winInit
			}
			clear(s.window[curr : curr+n])
			s.highWater = curr + n
		} else if s.highWater < curr+winInit {
			n := curr + winInit - s.highWater
			if n > s.windowSize-s.highWater {
				n = s.windowSize - s.highWater
			}
			clear(s.window[s.highWater : s.highWater+n])
			s.highWater += n
		}
	}
}

// longestMatch follows the hash chain from curMatch and returns the
// length of the longest match at strstart, setting matchStart. Matches no
// longer than prevLength are ignored, and the result never exceeds
// lookahead.
func (s *deflateState) longestMatch(curMatch int) int {
	chainLength := s.maxChainLength
	win := s.window
	scan := s.strstart
	bestLen := s.prevLength
	niceMatch := s.niceMatch
	limit := 0
	if s.strstart > s.maxDist() {
		limit = s.strstart - s.maxDist()
	}
	prev := s.prev
	wmask := s.wMask

	maxCompare := maxMatch
	if maxCompare > s.lookahead {
		maxCompare = s.lookahead
	}
	scanEnd1 := win[scan+bestLen-1]
	scanEnd := win[scan+bestLen]

	// Do not waste too much time if we already have a good match.
	if s.prevLength >= s.goodMatch {
		chainLength >>= 2
	}
	if niceMatch > s.lookahead {
		niceMatch = s.lookahead
	}

	for {
		match := curMatch
		// Check the bytes most likely to differ first.
		if win[match+bestLen] == scanEnd && win[match+bestLen-1] == scanEnd1 &&
			win[match] == win[scan] && win[match+1] == win[scan+1] {
			n := 2
			for n < maxCompare && win[scan+n] == win[match+n] {
				n++
			}
			if n > bestLen {
				s.matchStart = curMatch
				bestLen = n
				if n >= niceMatch {
					break
				}
				scanEnd1 = win[scan+bestLen-1]
				scanEnd = win[scan+bestLen]
			}
		}
		curMatch = int(prev[curMatch&wmask])
		if curMatch <= limit {
			break
		}
		chainLength--
		if chainLength == 0 {
			break
		}
	}

	if bestLen <= s.lookahead {
		return bestLen
	}
	return s.lookahead
}
