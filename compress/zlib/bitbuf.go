// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

func (s *deflateState) putByte(c byte) {
	s.pendingBuf[s.pending] = c
	s.pending++
}

// putShort writes w LSB first.
func (s *deflateState) putShort(w int) {
	s.pendingBuf[s.pending] = byte(w)
	s.pendingBuf[s.pending+1] = byte(w >> 8)
	s.pending += 2
}

// putShortMSB writes w MSB first, as in the zlib header and trailer.
func (s *deflateState) putShortMSB(w int) {
	s.pendingBuf[s.pending] = byte(w >> 8)
	s.pendingBuf[s.pending+1] = byte(w)
	s.pending += 2
}

// sendBits appends the low length bits of value, LSB first. length is at
// most 16.
func (s *deflateState) sendBits(value, length int) {
	if s.biValid > bufSize-length {
		s.biBuf |= uint16(value << s.biValid)
		s.putShort(int(s.biBuf))
		s.biBuf = uint16(value >> (bufSize - s.biValid))
		s.biValid += length - bufSize
	} else {
		s.biBuf |= uint16(value << s.biValid)
		s.biValid += length
	}
}

// biFlush writes out whole bytes, keeping at most 7 bits in the buffer.
func (s *deflateState) biFlush() {
	if s.biValid == 16 {
		s.putShort(int(s.biBuf))
		s.biBuf = 0
		s.biValid = 0
	} else if s.biValid >= 8 {
		s.putByte(byte(s.biBuf))
		s.biBuf >>= 8
		s.biValid -= 8
	}
}

// biWindup writes out all remaining bits, padding the last byte with
// zeros, and records how many bits of it were used.
func (s *deflateState) biWindup() {
	if s.biValid > 8 {
		s.putShort(int(s.biBuf))
	} else if s.biValid > 0 {
		s.putByte(byte(s.biBuf))
	}
	s.biUsed = ((s.biValid - 1) & 7) + 1
	s.biBuf = 0
	s.biValid = 0
}
