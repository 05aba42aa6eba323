// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import "github.com/intel/fastzlib/internal/checksum"

// InflateSetDictionary provides the preset dictionary after Inflate
// returned NeedDict, or at any time for a raw stream. For zlib streams the
// dictionary must match the id in the header.
func (z *Stream) InflateSetDictionary(dict []byte) Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	if s.wrap != 0 && s.mode != modeDict {
		return StreamError
	}
	if s.mode == modeDict {
		if checksum.Adler32(1, dict) != s.check {
			return DataError
		}
	}
	s.updateWindow(dict, len(dict))
	s.havedict = true
	return OK
}

// InflateGetDictionary copies the sliding window, oldest byte first, into
// dict and returns its length. dict may be nil to query the length only.
func (z *Stream) InflateGetDictionary(dict []byte) (int, Status) {
	if z.inflateStateCheck() {
		return 0, StreamError
	}
	s := z.istate
	if s.whave != 0 && dict != nil {
		n := copy(dict, s.window[s.wnext:s.whave])
		copy(dict[n:], s.window[:s.wnext])
	}
	return s.whave, OK
}

// InflateGetHeader requests that the gzip header be stored into head as
// it is decoded. head.Done is 0 until the header has been read completely.
func (z *Stream) InflateGetHeader(head *GzipHeader) Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	if s.wrap&2 == 0 {
		return StreamError
	}
	s.head = head
	head.Done = 0
	return OK
}

// syncSearch scans p for the 00 00 ff ff pattern that ends an empty stored
// block. got is the number of pattern bytes matched so far; it returns the
// updated count and the number of bytes consumed.
func syncSearch(got int, p []byte) (int, int) {
	next := 0
	for next < len(p) && got < 4 {
		want := byte(0)
		if got >= 2 {
			want = 0xff
		}
		switch {
		case p[next] == want:
			got++
		case p[next] != 0:
			got = 0
		default:
			got = 4 - got
		}
		next++
	}
	return got, next
}

// InflateSync skips input until a full flush point and prepares to resume
// decoding the following block. It returns OK when a point was found,
// DataError if the input ran out first, and BufError if there was no input.
// TotalIn counts the skipped bytes; the window is discarded.
func (z *Stream) InflateSync() Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	if z.AvailIn == 0 && s.bits < 8 {
		return BufError
	}

	// if first time, start the search in the bit buffer
	if s.mode != modeSync {
		s.mode = modeSync
		s.hold >>= s.bits & 7
		s.bits -= s.bits & 7
		var buf [8]byte
		n := 0
		for s.bits >= 8 {
			buf[n] = byte(s.hold)
			n++
			s.hold >>= 8
			s.bits -= 8
		}
		s.have, _ = syncSearch(0, buf[:n])
	}

	// search the available input
	got, n := syncSearch(s.have, z.In[z.NextIn:z.NextIn+z.AvailIn])
	s.have = got
	z.AvailIn -= n
	z.NextIn += n
	z.TotalIn += int64(n)

	if s.have != 4 {
		return DataError
	}
	if s.flags == -1 {
		s.wrap = 0 // no header seen yet, decode as raw
	} else {
		s.wrap &^= 4 // the check value cannot be verified any more
	}
	flags := s.flags
	in, out := z.TotalIn, z.TotalOut
	z.InflateReset()
	z.TotalIn, z.TotalOut = in, out
	s.flags = flags
	s.mode = modeType
	return OK
}

// InflateSyncPoint reports whether the decoder sits at the end of a
// stored block header with no pending bits, which is where a SyncFlush or
// FullFlush leaves it.
func (z *Stream) InflateSyncPoint() bool {
	if z.inflateStateCheck() {
		return false
	}
	s := z.istate
	return s.mode == modeStored && s.bits == 0
}

// InflateCopy sets dest to a complete, independent copy of z's
// decompression stream.
func (z *Stream) InflateCopy(dest *Stream) Status {
	if z.inflateStateCheck() || dest == nil {
		return StreamError
	}
	ss := z.istate
	*dest = *z

	ds := new(inflateState)
	*ds = *ss
	ds.strm = dest
	if ss.window != nil {
		ds.window = append([]byte(nil), ss.window...)
	}
	dest.istate = ds
	dest.dstate = nil
	return OK
}

// InflatePrime inserts bits into the input bit buffer, as if they preceded
// the next input byte. A negative bits clears the buffer.
func (z *Stream) InflatePrime(bits, value int) Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	if bits < 0 {
		s.hold = 0
		s.bits = 0
		return OK
	}
	if bits > 16 || s.bits+uint(bits) > 32 {
		return StreamError
	}
	v := uint64(value) & (1<<uint(bits) - 1)
	s.hold += v << s.bits
	s.bits += uint(bits)
	return OK
}

// InflateUndermine allows (subvert true) distances reaching before the
// start of the window, which then read as zeros.
func (z *Stream) InflateUndermine(subvert bool) Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	z.istate.sane = !subvert
	return OK
}

// InflateValidate enables or disables verification of the trailer check
// value. It has no effect on raw streams.
func (z *Stream) InflateValidate(check bool) Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	if check && s.wrap != 0 {
		s.wrap |= 4
	} else {
		s.wrap &^= 4
	}
	return OK
}

// InflateMark returns the decoder position for random access indexes. The
// upper bits hold the number of bits back from the next input byte to the
// start of the code being decoded, or -1 between codes; the low 16 bits
// hold the bytes still to copy from a stored block or match. It returns
// -65536 on an invalid stream.
func (z *Stream) InflateMark() int64 {
	if z.inflateStateCheck() {
		return -(1 << 16)
	}
	s := z.istate
	var n int
	switch s.mode {
	case modeCopy:
		n = s.length
	case modeMatch:
		n = s.was - s.length
	}
	return int64(s.back)<<16 + int64(n)
}

// InflateCodesUsed returns the number of decoding table entries in use
// for the current dynamic block.
func (z *Stream) InflateCodesUsed() int {
	if z.inflateStateCheck() {
		return -1
	}
	return z.istate.next
}
