// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

type compressFunc func(s *deflateState, flush Flush) blockState

type funcKind int

const (
	kindStored funcKind = iota
	kindFast
	kindSlow
)

// config holds the match finder parameters of one compression level.
type config struct {
	goodLength int // reduce lazy search above this match length
	maxLazy    int // do not perform lazy search above this match length
	niceLength int // quit search above this match length
	maxChain   int
	kind       funcKind
	fn         compressFunc
}

var configTable = [10]config{
	{0, 0, 0, 0, kindStored, deflateStored}, // store only
	{4, 4, 8, 4, kindFast, deflateFast},     // max speed, no lazy matches
	{4, 5, 16, 8, kindFast, deflateFast},
	{4, 6, 32, 32, kindFast, deflateFast},
	{4, 4, 16, 16, kindSlow, deflateSlow}, // lazy matches
	{8, 16, 32, 32, kindSlow, deflateSlow},
	{8, 16, 128, 128, kindSlow, deflateSlow},
	{8, 32, 128, 256, kindSlow, deflateSlow},
	{32, 128, 258, 1024, kindSlow, deflateSlow},
	{32, 258, 258, 4096, kindSlow, deflateSlow}, // max compression
}

// flushBlockOnly ends the current block and pushes the output toward Out.
func (s *deflateState) flushBlockOnly(last bool) {
	var buf []byte
	if s.blockStart >= 0 {
		buf = s.window[s.blockStart:]
	}
	s.trFlushBlock(buf, s.strstart-s.blockStart, last)
	s.blockStart = s.strstart
	s.strm.flushPending()
}

// flushBlock is flushBlockOnly followed by the out-of-space check of the
// strategies. It returns false if the caller has to return st.
func (s *deflateState) flushBlock(last bool) (blockState, bool) {
	s.flushBlockOnly(last)
	if s.strm.AvailOut == 0 {
		if last {
			return finishStarted, false
		}
		return needMore, false
	}
	return 0, true
}

// deflateStored copies the input to stored blocks without compression,
// writing directly into Out when it can. It stops at the end of the input
// or the output, and emits at most one partial block per call unless a
// flush is requested.
func deflateStored(s *deflateState, flush Flush) blockState {
	z := s.strm

	// Smallest worthy block: the pending buffer limits a block built in
	// it, and the window limits the history it is copied from.
	minBlock := s.pendingBufSize - 5
	if minBlock > s.wSize {
		minBlock = s.wSize
	}

	// Copy as many maximum-size stored blocks as possible straight from
	// the window and the input to the output.
	last := false
	used := z.AvailIn
	for {
		n := maxStored
		have := (s.biValid + 42) >> 3 // header bytes
		if z.AvailOut < have {
			break
		}
		have = z.AvailOut - have
		left := s.strstart - s.blockStart
		if n > left+z.AvailIn {
			n = left + z.AvailIn
		}
		if n > have {
			n = have
		}

		// Stop at a short block unless flushing, the block reaches the
		// end of the input, or the block is empty and this is not the
		// finish.
		if n < minBlock && ((n == 0 && flush != Finish) || flush == NoFlush || n != left+z.AvailIn) {
			break
		}

		last = flush == Finish && n == left+z.AvailIn
		s.trStoredBlock(nil, 0, last)

		// Patch the stored length into the header.
		s.pendingBuf[s.pending-4] = byte(n)
		s.pendingBuf[s.pending-3] = byte(n >> 8)
		s.pendingBuf[s.pending-2] = ^byte(n)
		s.pendingBuf[s.pending-1] = ^byte(n >> 8)

		z.flushPending()

		// Window bytes first.
		if left != 0 {
			if left > n {
				left = n
			}
			copy(z.Out[z.NextOut:], s.window[s.blockStart:s.blockStart+left])
			z.NextOut += left
			z.AvailOut -= left
			z.TotalOut += int64(left)
			s.blockStart += left
			n -= left
		}
		// Then input bytes.
		if n != 0 {
			z.readBuf(z.Out[z.NextOut : z.NextOut+n])
			z.NextOut += n
			z.AvailOut -= n
			z.TotalOut += int64(n)
		}
		if last {
			break
		}
	}

	// Keep the last wSize bytes of the data copied directly as history,
	// noting in matches that the window slid (1) or was replaced (2).
	used -= z.AvailIn
	if used != 0 {
		if used >= s.wSize {
			s.matches = 2
			copy(s.window[:s.wSize], z.In[z.NextIn-s.wSize:z.NextIn])
			s.strstart = s.wSize
			s.insert = s.strstart
		} else {
			if s.windowSize-s.strstart <= used {
				s.strstart -= s.wSize
				copy(s.window[:s.strstart], s.window[s.wSize:s.wSize+s.strstart])
				if s.matches < 2 {
					s.matches++
				}
				if s.insert > s.strstart {
					s.insert = s.strstart
				}
			}
			copy(s.window[s.strstart:], z.In[z.NextIn-used:z.NextIn])
			s.strstart += used
			s.insert += min(used, s.wSize-s.insert)
		}
		s.blockStart = s.strstart
	}
	if s.highWater < s.strstart {
		s.highWater = s.strstart
	}

	if last {
		s.biUsed = 8
		return finishDone
	}

	// Nothing left to do on a flush with no pending data.
	if flush != NoFlush && flush != Finish && z.AvailIn == 0 && s.strstart == s.blockStart {
		return blockDone
	}

	// Fill the window with any remaining input.
	have := s.windowSize - s.strstart
	if z.AvailIn > have && s.blockStart >= s.wSize {
		// slide the window down
		s.blockStart -= s.wSize
		s.strstart -= s.wSize
		copy(s.window[:s.strstart], s.window[s.wSize:s.wSize+s.strstart])
		if s.matches < 2 {
			s.matches++
		}
		have += s.wSize
		if s.insert > s.strstart {
			s.insert = s.strstart
		}
	}
	if have > z.AvailIn {
		have = z.AvailIn
	}
	if have != 0 {
		z.readBuf(s.window[s.strstart : s.strstart+have])
		s.strstart += have
		s.insert += min(have, s.wSize-s.insert)
	}
	if s.highWater < s.strstart {
		s.highWater = s.strstart
	}

	// Emit a stored block from the window if it is big enough, or if
	// flushing and all the input is in the window.
	have = (s.biValid + 42) >> 3
	have = min(s.pendingBufSize-have, maxStored)
	minBlock = min(have, s.wSize)
	left := s.strstart - s.blockStart
	if left >= minBlock || ((left != 0 || flush == Finish) && flush != NoFlush && z.AvailIn == 0 && left <= have) {
		n := min(left, have)
		last = flush == Finish && z.AvailIn == 0 && n == left
		s.trStoredBlock(s.window[s.blockStart:], n, last)
		s.blockStart += n
		z.flushPending()
	}

	if last {
		s.biUsed = 8
		return finishStarted
	}
	return needMore
}

// deflateFast compresses without lazy matching: a match is taken as soon
// as it is found, and new strings are inserted in the dictionary only for
// short matches.
func deflateFast(s *deflateState, flush Flush) blockState {
	for {
		// Keep minLookahead bytes ahead so a match can always reach
		// maxMatch and the next match can start.
		if s.lookahead < minLookahead {
			s.fillWindow()
			if s.lookahead < minLookahead && flush == NoFlush {
				return needMore
			}
			if s.lookahead == 0 {
				break
			}
		}

		hashHead := 0
		if s.lookahead >= minMatch {
			hashHead = s.insertString(s.strstart)
		}

		// Find the longest match, discarding those <= prevLength. At this
		// point prevLength is always minMatch-1.
		if hashHead != 0 && s.strstart-hashHead <= s.maxDist() {
			s.matchLength = s.longestMatch(hashHead)
		}

		var bflush bool
		if s.matchLength >= minMatch {
			bflush = s.tallyDist(s.strstart-s.matchStart, s.matchLength-minMatch)
			s.lookahead -= s.matchLength

			// Insert new strings in the hash table only if the match
			// length is not too large.
			if s.matchLength <= s.maxLazyMatch && s.lookahead >= minMatch {
				s.matchLength-- // string at strstart already in the table
				for {
					s.strstart++
					s.insertString(s.strstart)
					s.matchLength--
					if s.matchLength == 0 {
						break
					}
				}
				s.strstart++
			} else {
				s.strstart += s.matchLength
				s.matchLength = 0
				s.insH = uint32(s.window[s.strstart])
				s.insH = s.updateHash(s.insH, s.window[s.strstart+1])
				// If lookahead < minMatch, insH is garbage, but it does
				// not matter since it is recomputed at the next call.
			}
		} else {
			// No match, output a literal byte.
			bflush = s.tallyLit(s.window[s.strstart])
			s.lookahead--
			s.strstart++
		}
		if bflush {
			if st, ok := s.flushBlock(false); !ok {
				return st
			}
		}
	}

	s.insert = min(s.strstart, minMatch-1)
	if flush == Finish {
		if st, ok := s.flushBlock(true); !ok {
			return st
		}
		return finishDone
	}
	if s.symNext != 0 {
		if st, ok := s.flushBlock(false); !ok {
			return st
		}
	}
	return blockDone
}

// deflateSlow is the lazy evaluation variant: a match is only taken if the
// match starting at the next byte is not longer.
func deflateSlow(s *deflateState, flush Flush) blockState {
	z := s.strm
	for {
		if s.lookahead < minLookahead {
			s.fillWindow()
			if s.lookahead < minLookahead && flush == NoFlush {
				return needMore
			}
			if s.lookahead == 0 {
				break
			}
		}

		hashHead := 0
		if s.lookahead >= minMatch {
			hashHead = s.insertString(s.strstart)
		}

		// Find the longest match, discarding those <= prevLength.
		s.prevLength = s.matchLength
		s.prevMatch = s.matchStart
		s.matchLength = minMatch - 1

		if hashHead != 0 && s.prevLength < s.maxLazyMatch && s.strstart-hashHead <= s.maxDist() {
			s.matchLength = s.longestMatch(hashHead)

			if s.matchLength <= 5 && (s.strategy == Filtered ||
				(s.matchLength == minMatch && s.strstart-s.matchStart > tooFar)) {
				// A short match is not worth its distance; forget it.
				s.matchLength = minMatch - 1
			}
		}

		// If there was a match at the previous step and the current match
		// is not better, output the previous match.
		if s.prevLength >= minMatch && s.matchLength <= s.prevLength {
			maxInsert := s.strstart + s.lookahead - minMatch

			bflush := s.tallyDist(s.strstart-1-s.prevMatch, s.prevLength-minMatch)

			// Insert the strings of the match in the hash table. The
			// strings at strstart-1 and strstart are already in it.
			s.lookahead -= s.prevLength - 1
			s.prevLength -= 2
			for {
				s.strstart++
				if s.strstart <= maxInsert {
					s.insertString(s.strstart)
				}
				s.prevLength--
				if s.prevLength == 0 {
					break
				}
			}
			s.matchAvailable = false
			s.matchLength = minMatch - 1
			s.strstart++

			if bflush {
				if st, ok := s.flushBlock(false); !ok {
					return st
				}
			}
		} else if s.matchAvailable {
			// No better match: output the previous single literal and
			// truncate the previous match if it was longer.
			if s.tallyLit(s.window[s.strstart-1]) {
				s.flushBlockOnly(false)
			}
			s.strstart++
			s.lookahead--
			if z.AvailOut == 0 {
				return needMore
			}
		} else {
			// No previous match to compare with, wait for the next step.
			s.matchAvailable = true
			s.strstart++
			s.lookahead--
		}
	}
	if s.matchAvailable {
		s.tallyLit(s.window[s.strstart-1])
		s.matchAvailable = false
	}
	s.insert = min(s.strstart, minMatch-1)
	if flush == Finish {
		if st, ok := s.flushBlock(true); !ok {
			return st
		}
		return finishDone
	}
	if s.symNext != 0 {
		if st, ok := s.flushBlock(false); !ok {
			return st
		}
	}
	return blockDone
}

// tooFar is the distance above which a minimum length match is dropped.
const tooFar = 4096

// deflateRLE only looks for runs of the previous byte, so it needs no
// hash table.
func deflateRLE(s *deflateState, flush Flush) blockState {
	win := s.window
	for {
		// Keep maxMatch+1 bytes ahead for the longest run, plus one.
		if s.lookahead <= maxMatch {
			s.fillWindow()
			if s.lookahead <= maxMatch && flush == NoFlush {
				return needMore
			}
			if s.lookahead == 0 {
				break
			}
		}

		// See how many times the previous byte repeats.
		s.matchLength = 0
		if s.lookahead >= minMatch && s.strstart > 0 {
			scan := s.strstart - 1
			c := win[scan]
			if c == win[scan+1] && c == win[scan+2] && c == win[scan+3] {
				strend := s.strstart + maxMatch
				scan += 3
				for {
					scan++
					if win[scan] != c || scan >= strend {
						break
					}
				}
				s.matchLength = maxMatch - (strend - scan)
				if s.matchLength > s.lookahead {
					s.matchLength = s.lookahead
				}
			}
		}

		var bflush bool
		if s.matchLength >= minMatch {
			bflush = s.tallyDist(1, s.matchLength-minMatch)
			s.lookahead -= s.matchLength
			s.strstart += s.matchLength
			s.matchLength = 0
		} else {
			bflush = s.tallyLit(win[s.strstart])
			s.lookahead--
			s.strstart++
		}
		if bflush {
			if st, ok := s.flushBlock(false); !ok {
				return st
			}
		}
	}
	s.insert = 0
	if flush == Finish {
		if st, ok := s.flushBlock(true); !ok {
			return st
		}
		return finishDone
	}
	if s.symNext != 0 {
		if st, ok := s.flushBlock(false); !ok {
			return st
		}
	}
	return blockDone
}

// deflateHuff emits literals only and never builds a hash table.
func deflateHuff(s *deflateState, flush Flush) blockState {
	for {
		if s.lookahead == 0 {
			s.fillWindow()
			if s.lookahead == 0 {
				if flush == NoFlush {
					return needMore
				}
				break
			}
		}

		s.matchLength = 0
		bflush := s.tallyLit(s.window[s.strstart])
		s.lookahead--
		s.strstart++
		if bflush {
			if st, ok := s.flushBlock(false); !ok {
				return st
			}
		}
	}
	s.insert = 0
	if flush == Finish {
		if st, ok := s.flushBlock(true); !ok {
			return st
		}
		return finishDone
	}
	if s.symNext != 0 {
		if st, ok := s.flushBlock(false); !ok {
			return st
		}
	}
	return blockDone
}
