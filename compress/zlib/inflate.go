// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import (
	"math/bits"

	"github.com/intel/fastzlib/internal/checksum"
)

// inflateMode is the position of the decoder in the stream. The order
// matters: comparisons against modeCheck and modeBad select the window
// update rules.
type inflateMode int

const (
	modeHead     inflateMode = iota // waiting for magic header
	modeFlags                       // gzip: flags, method
	modeTime                        // gzip: modification time
	modeOS                          // gzip: extra flags and operating system
	modeExLen                       // gzip: extra field length
	modeExtra                       // gzip: extra field
	modeName                        // gzip: file name
	modeComment                     // gzip: comment
	modeHCRC                        // gzip: header crc
	modeDictID                      // zlib: dictionary id
	modeDict                        // waiting for InflateSetDictionary
	modeType                        // waiting for a block header
	modeTypeDo                      // block header, no stop at Block
	modeStored                      // stored block lengths
	modeCopyStart                   // stored block, stop here on Trees
	modeCopy                        // stored block data
	modeTable                       // dynamic block table lengths
	modeLenLens                     // code lengths for the code length code
	modeCodeLens                    // literal/length and distance code lengths
	modeLenStart                    // about to decode, stop here on Trees
	modeLen                         // literal/length code
	modeLenExt                      // length extra bits
	modeDist                        // distance code
	modeDistExt                     // distance extra bits
	modeMatch                       // copying a match
	modeLit                         // writing a literal
	modeCheck                       // trailer check value
	modeLength                      // gzip: trailer length
	modeDone                        // finished
	modeBad                         // data error, stays here
	modeSync                        // looking for a sync point
)

// order of the code length code lengths
var lensOrder = [19]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

type inflateState struct {
	strm     *Stream
	mode     inflateMode
	last     bool   // processing the last block
	wrap     int    // bit 0 zlib, bit 1 gzip, bit 2 check the trailer
	havedict bool   // dictionary provided
	flags    int    // gzip header flags, 0 for zlib, -1 if no header yet
	check    uint32 // running check value
	total    int64  // bytes output so far
	head     *GzipHeader
	d64      bool // deflate64: 64K window, extended length and distance codes

	// sliding window, allocated on first use
	wbits  int
	wsize  int
	whave  int // valid bytes in the window
	wnext  int // window write index
	window []byte

	// bit accumulator
	hold uint64
	bits uint

	length int // literal or match length, or stored bytes to copy
	offset int // distance back to copy from
	extra  uint

	// Decoding tables. lencode and distcode index the fixed arena if
	// fixed is set and codes otherwise.
	fixed    bool
	lencode  int
	distcode int
	lenbits  uint
	distbits uint

	// dynamic table building
	ncode int
	nlen  int
	ndist int
	have  int
	next  int // first unused entry in codes
	lens  [320]uint16
	work  [288]uint16
	codes [enough]code

	sane bool // reject distances that reach before the window
	back int  // bits back of the last unprocessed length/literal, -1 between codes
	was  int  // initial length of the match
}

// table returns the arena the current codes live in.
func (s *inflateState) table() []code {
	if !s.fixed {
		return s.codes[:]
	}
	if s.d64 {
		return fixedCodes64
	}
	return fixedCodes
}

func (s *inflateState) fixedTables() {
	s.fixed = true
	s.lencode = 0
	s.lenbits = fixedLenBits
	s.distcode = fixedDistOffset
	s.distbits = fixedDistBits
}

func (s *inflateState) updateCheck(check uint32, p []byte) uint32 {
	if s.flags != 0 {
		return checksum.CRC32(check, p)
	}
	return checksum.Adler32(check, p)
}

// crcHold adds the low n bytes of hold to the header crc.
func crcHold(crc uint32, hold uint64, n int) uint32 {
	var b [4]byte
	for i := 0; i < n; i++ {
		b[i] = byte(hold >> (8 * i))
	}
	return checksum.CRC32(crc, b[:n])
}

func (z *Stream) inflateStateCheck() bool {
	if z == nil {
		return true
	}
	s := z.istate
	return s == nil || s.strm != z || s.mode < modeHead || s.mode > modeSync
}

// InflateResetKeep restarts decoding without discarding the window.
func (z *Stream) InflateResetKeep() Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	z.TotalIn, z.TotalOut, s.total = 0, 0, 0
	z.Msg = ""
	if s.wrap != 0 {
		z.Adler = uint32(s.wrap & 1)
	}
	s.mode = modeHead
	s.last = false
	s.havedict = false
	s.flags = -1
	s.head = nil
	s.hold = 0
	s.bits = 0
	s.fixed = false
	s.lencode, s.distcode, s.next = 0, 0, 0
	s.sane = true
	s.back = -1
	return OK
}

// InflateReset restarts decoding with an empty window, keeping the
// window size and wrapper.
func (z *Stream) InflateReset() Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	s.wsize = 0
	s.whave = 0
	s.wnext = 0
	return z.InflateResetKeep()
}

// InflateReset2 restarts decoding with a new windowBits, as accepted by
// InflateInit2.
func (z *Stream) InflateReset2(windowBits int) Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate

	var wrap int
	if s.d64 {
		// deflate64 is raw only, with a fixed 64K window
		if windowBits != -Deflate64WBits {
			return StreamError
		}
		windowBits = Deflate64WBits
	} else {
		if windowBits < 0 {
			if windowBits < -MaxWBits {
				return StreamError
			}
			wrap = 0
			windowBits = -windowBits
		} else {
			wrap = windowBits>>4 + 5
			if windowBits < 48 {
				windowBits &= 15
			}
		}
		if windowBits != 0 && (windowBits < 8 || windowBits > MaxWBits) {
			return StreamError
		}
	}
	if s.window != nil && s.wbits != windowBits {
		s.window = nil
	}

	s.wrap = wrap
	s.wbits = windowBits
	return z.InflateReset()
}

// InflateInit initializes z for decompressing a zlib stream.
func (z *Stream) InflateInit() Status {
	return z.InflateInit2(MaxWBits)
}

// InflateInit2 initializes z for decompression.
//
// windowBits 8..15 expects a zlib stream with at most that window, 0 takes
// the window size from the zlib header, -8..-15 selects raw deflate, adding
// 16 selects gzip and adding 32 detects zlib or gzip automatically.
func (z *Stream) InflateInit2(windowBits int) Status {
	return z.inflateInit(windowBits, false)
}

// InflateInit64 initializes z for decompressing raw deflate64 data.
func (z *Stream) InflateInit64() Status {
	return z.inflateInit(-Deflate64WBits, true)
}

func (z *Stream) inflateInit(windowBits int, d64 bool) Status {
	if z == nil {
		return StreamError
	}
	z.Msg = ""
	s := &inflateState{strm: z, d64: d64}
	z.istate = s
	z.dstate = nil
	s.mode = modeHead // lets InflateReset2 pass the state check
	if ret := z.InflateReset2(windowBits); ret != OK {
		z.istate = nil
		return ret
	}
	return OK
}

// InflateEnd releases the decompression state.
func (z *Stream) InflateEnd() Status {
	if z.inflateStateCheck() {
		return StreamError
	}
	s := z.istate
	s.window = nil
	s.head = nil
	s.strm = nil
	z.istate = nil
	return OK
}

// updateWindow copies the last n bytes of end into the sliding window,
// allocating it on first use.
func (s *inflateState) updateWindow(end []byte, n int) {
	if s.window == nil {
		s.window = make([]byte, 1<<s.wbits)
	}
	if s.wsize == 0 {
		s.wsize = 1 << s.wbits
		s.wnext = 0
		s.whave = 0
	}

	if n >= s.wsize {
		copy(s.window, end[len(end)-s.wsize:])
		s.wnext = 0
		s.whave = s.wsize
		return
	}
	dist := s.wsize - s.wnext
	if dist > n {
		dist = n
	}
	copy(s.window[s.wnext:], end[len(end)-n:len(end)-n+dist])
	n -= dist
	if n != 0 {
		copy(s.window, end[len(end)-n:])
		s.wnext = n
		s.whave = s.wsize
	} else {
		s.wnext += dist
		if s.wnext == s.wsize {
			s.wnext = 0
		}
		if s.whave < s.wsize {
			s.whave += dist
		}
	}
}

// Inflate decompresses as much data as possible and stops when the input
// is exhausted or the output is full.
//
// flush may be NoFlush, SyncFlush or Finish, which all decode as far as
// possible, Block, which stops at the next block boundary, or Trees, which
// also stops right after a block header.
//
// It returns StreamEnd at the end of the stream and its check value, OK if
// progress was made, NeedDict if a preset dictionary is required, DataError
// for corrupt input (with Msg set), and BufError if no progress was
// possible or if Finish was given and the stream did not complete.
func (z *Stream) Inflate(flush Flush) Status {
	if z.inflateStateCheck() || !z.buffersValid() || flush < 0 || flush > Trees {
		return StreamError
	}
	s := z.istate
	if s.mode == modeType {
		s.mode = modeTypeDo // skip the Block stop
	}

	in, next, have := z.In, z.NextIn, z.AvailIn
	out, put, left := z.Out, z.NextOut, z.AvailOut
	hold, nbits := s.hold, s.bits
	inStart, outStart := have, left
	ret := OK

	pullByte := func() bool {
		if have == 0 {
			return false
		}
		have--
		hold += uint64(in[next]) << nbits
		next++
		nbits += 8
		return true
	}
	needBits := func(n uint) bool {
		for nbits < n {
			if !pullByte() {
				return false
			}
		}
		return true
	}
	dropBits := func(n uint) {
		hold >>= n
		nbits -= n
	}
	getBits := func(n uint) int {
		return int(hold & (1<<n - 1))
	}
	restore := func() {
		z.NextOut, z.AvailOut = put, left
		z.NextIn, z.AvailIn = next, have
		s.hold, s.bits = hold, nbits
	}
	load := func() {
		put, left = z.NextOut, z.AvailOut
		next, have = z.NextIn, z.AvailIn
		hold, nbits = s.hold, s.bits
	}
	bad := func(msg string) {
		z.Msg = msg
		s.mode = modeBad
	}

loop:
	for {
		switch s.mode {
		case modeHead:
			if s.wrap == 0 {
				s.mode = modeTypeDo
				continue
			}
			if !needBits(16) {
				break loop
			}
			if s.wrap&2 != 0 && hold == 0x8b1f { // gzip header
				if s.wbits == 0 {
					s.wbits = MaxWBits
				}
				s.check = crcHold(checksum.CRC32(0, nil), hold, 2)
				hold, nbits = 0, 0
				s.mode = modeFlags
				continue
			}
			if s.head != nil {
				s.head.Done = -1
			}
			if s.wrap&1 == 0 || (getBits(8)<<8+int(hold>>8))%31 != 0 {
				bad("incorrect header check")
				continue
			}
			if getBits(4) != Deflated {
				bad("unknown compression method")
				continue
			}
			dropBits(4)
			n := getBits(4) + 8
			if s.wbits == 0 {
				s.wbits = n
			}
			if n > MaxWBits || n > s.wbits {
				bad("invalid window size")
				continue
			}
			s.flags = 0 // zlib header
			s.check = checksum.Adler32(1, nil)
			z.Adler = s.check
			if hold&0x200 != 0 {
				s.mode = modeDictID
			} else {
				s.mode = modeType
			}
			hold, nbits = 0, 0

		case modeFlags:
			if !needBits(16) {
				break loop
			}
			s.flags = int(hold & 0xffff)
			if s.flags&0xff != Deflated {
				bad("unknown compression method")
				continue
			}
			if s.flags&0xe000 != 0 {
				bad("unknown header flags set")
				continue
			}
			if s.head != nil {
				s.head.Text = (hold>>8)&1 != 0
			}
			if s.flags&0x0200 != 0 && s.wrap&4 != 0 {
				s.check = crcHold(s.check, hold, 2)
			}
			hold, nbits = 0, 0
			s.mode = modeTime

		case modeTime:
			if !needBits(32) {
				break loop
			}
			if s.head != nil {
				s.head.Time = uint32(hold)
			}
			if s.flags&0x0200 != 0 && s.wrap&4 != 0 {
				s.check = crcHold(s.check, hold, 4)
			}
			hold, nbits = 0, 0
			s.mode = modeOS

		case modeOS:
			if !needBits(16) {
				break loop
			}
			if s.head != nil {
				s.head.XFlags = int(hold & 0xff)
				s.head.OS = int(hold>>8) & 0xff
			}
			if s.flags&0x0200 != 0 && s.wrap&4 != 0 {
				s.check = crcHold(s.check, hold, 2)
			}
			hold, nbits = 0, 0
			s.mode = modeExLen

		case modeExLen:
			if s.flags&0x0400 != 0 {
				if !needBits(16) {
					break loop
				}
				s.length = int(hold & 0xffff)
				if s.head != nil {
					s.head.ExtraLen = s.length
				}
				if s.flags&0x0200 != 0 && s.wrap&4 != 0 {
					s.check = crcHold(s.check, hold, 2)
				}
				hold, nbits = 0, 0
			} else if s.head != nil {
				s.head.Extra = nil
			}
			s.mode = modeExtra

		case modeExtra:
			if s.flags&0x0400 != 0 {
				n := min(s.length, have)
				if n != 0 {
					if h := s.head; h != nil && h.Extra != nil {
						off := h.ExtraLen - s.length
						limit := min(h.ExtraMax, len(h.Extra))
						if off < limit {
							copy(h.Extra[off:limit], in[next:next+n])
						}
					}
					if s.flags&0x0200 != 0 && s.wrap&4 != 0 {
						s.check = checksum.CRC32(s.check, in[next:next+n])
					}
					have -= n
					next += n
					s.length -= n
				}
				if s.length != 0 {
					break loop
				}
			}
			s.length = 0
			s.mode = modeName

		case modeName:
			if s.flags&0x0800 != 0 {
				if !s.headerField(in[next:next+have], &have, &next, fieldName) {
					break loop
				}
			} else if s.head != nil {
				s.head.Name = nil
			}
			s.length = 0
			s.mode = modeComment

		case modeComment:
			if s.flags&0x1000 != 0 {
				if !s.headerField(in[next:next+have], &have, &next, fieldComment) {
					break loop
				}
			} else if s.head != nil {
				s.head.Comment = nil
			}
			s.mode = modeHCRC

		case modeHCRC:
			if s.flags&0x0200 != 0 {
				if !needBits(16) {
					break loop
				}
				if s.wrap&4 != 0 && uint32(hold) != s.check&0xffff {
					bad("header crc mismatch")
					continue
				}
				hold, nbits = 0, 0
			}
			if s.head != nil {
				s.head.HCRC = (s.flags>>9)&1 != 0
				s.head.Done = 1
			}
			s.check = checksum.CRC32(0, nil)
			z.Adler = s.check
			s.mode = modeType

		case modeDictID:
			if !needBits(32) {
				break loop
			}
			s.check = bits.ReverseBytes32(uint32(hold))
			z.Adler = s.check
			hold, nbits = 0, 0
			s.mode = modeDict

		case modeDict:
			if !s.havedict {
				restore()
				return NeedDict
			}
			s.check = checksum.Adler32(1, nil)
			z.Adler = s.check
			s.mode = modeType

		case modeType:
			if flush == Block || flush == Trees {
				break loop
			}
			fallthrough
		case modeTypeDo:
			if s.last {
				dropBits(nbits & 7)
				s.mode = modeCheck
				continue
			}
			if !needBits(3) {
				break loop
			}
			s.last = getBits(1) != 0
			dropBits(1)
			switch getBits(2) {
			case 0:
				s.mode = modeStored
			case 1:
				s.fixedTables()
				s.mode = modeLenStart
				if flush == Trees {
					dropBits(2)
					break loop
				}
			case 2:
				s.mode = modeTable
			case 3:
				bad("invalid block type")
			}
			dropBits(2)

		case modeStored:
			dropBits(nbits & 7) // go to byte boundary
			if !needBits(32) {
				break loop
			}
			if hold&0xffff != (hold>>16)&0xffff^0xffff {
				bad("invalid stored block lengths")
				continue
			}
			s.length = int(hold & 0xffff)
			hold, nbits = 0, 0
			s.mode = modeCopyStart
			if flush == Trees {
				break loop
			}

		case modeCopyStart:
			s.mode = modeCopy

		case modeCopy:
			if n := s.length; n != 0 {
				n = min(n, have, left)
				if n == 0 {
					break loop
				}
				copy(out[put:put+n], in[next:next+n])
				have -= n
				next += n
				left -= n
				put += n
				s.length -= n
				continue
			}
			s.mode = modeType

		case modeTable:
			if !needBits(14) {
				break loop
			}
			s.nlen = getBits(5) + 257
			dropBits(5)
			s.ndist = getBits(5) + 1
			dropBits(5)
			s.ncode = getBits(4) + 4
			dropBits(4)
			maxDist := 30
			if s.d64 {
				maxDist = 32
			}
			if s.nlen > 286 || s.ndist > maxDist {
				bad("too many length or distance symbols")
				continue
			}
			s.have = 0
			s.mode = modeLenLens

		case modeLenLens:
			for s.have < s.ncode {
				if !needBits(3) {
					break loop
				}
				s.lens[lensOrder[s.have]] = uint16(getBits(3))
				s.have++
				dropBits(3)
			}
			for s.have < 19 {
				s.lens[lensOrder[s.have]] = 0
				s.have++
			}
			s.fixed = false
			s.next = 0
			s.lencode = 0
			used, root, ok := inflateTable(codesType, s.lens[:19], s.codes[:], 7, s.work[:], s.d64)
			if !ok {
				bad("invalid code lengths set")
				continue
			}
			s.next = used
			s.lenbits = uint(root)
			s.have = 0
			s.mode = modeCodeLens

		case modeCodeLens:
			for s.have < s.nlen+s.ndist {
				var here code
				for {
					here = s.codes[s.lencode+getBits(s.lenbits)]
					if uint(here.bits) <= nbits {
						break
					}
					if !pullByte() {
						break loop
					}
				}
				if here.val < 16 {
					dropBits(uint(here.bits))
					s.lens[s.have] = here.val
					s.have++
					continue
				}
				var l uint16
				var n int
				switch here.val {
				case 16:
					if !needBits(uint(here.bits) + 2) {
						break loop
					}
					dropBits(uint(here.bits))
					if s.have == 0 {
						bad("invalid bit length repeat")
						continue loop
					}
					l = s.lens[s.have-1]
					n = 3 + getBits(2)
					dropBits(2)
				case 17:
					if !needBits(uint(here.bits) + 3) {
						break loop
					}
					dropBits(uint(here.bits))
					n = 3 + getBits(3)
					dropBits(3)
				default:
					if !needBits(uint(here.bits) + 7) {
						break loop
					}
					dropBits(uint(here.bits))
					n = 11 + getBits(7)
					dropBits(7)
				}
				if s.have+n > s.nlen+s.ndist {
					bad("invalid bit length repeat")
					continue loop
				}
				for ; n > 0; n-- {
					s.lens[s.have] = l
					s.have++
				}
			}

			// the end-of-block code must be present
			if s.lens[256] == 0 {
				bad("invalid code -- missing end-of-block")
				continue
			}

			s.next = 0
			s.lencode = 0
			used, root, ok := inflateTable(lensType, s.lens[:s.nlen], s.codes[:], 9, s.work[:], s.d64)
			if !ok {
				bad("invalid literal/lengths set")
				continue
			}
			s.lenbits = uint(root)
			s.next = used
			s.distcode = s.next
			used, root, ok = inflateTable(distsType, s.lens[s.nlen:s.nlen+s.ndist], s.codes[s.next:], 6, s.work[:], s.d64)
			if !ok {
				bad("invalid distances set")
				continue
			}
			s.distbits = uint(root)
			s.next += used
			s.mode = modeLenStart
			if flush == Trees {
				break loop
			}

		case modeLenStart:
			s.mode = modeLen

		case modeLen:
			if have >= 6 && left >= 258 && !s.d64 {
				restore()
				z.inflateFast(outStart)
				load()
				if s.mode == modeType {
					s.back = -1
				}
				continue
			}
			s.back = 0
			tab := s.table()
			var here code
			for {
				here = tab[s.lencode+getBits(s.lenbits)]
				if uint(here.bits) <= nbits {
					break
				}
				if !pullByte() {
					break loop
				}
			}
			if here.op != 0 && here.op&0xf0 == 0 {
				last := here
				for {
					here = tab[s.lencode+int(last.val)+getBits(uint(last.bits)+uint(last.op))>>last.bits]
					if uint(last.bits)+uint(here.bits) <= nbits {
						break
					}
					if !pullByte() {
						break loop
					}
				}
				dropBits(uint(last.bits))
				s.back += int(last.bits)
			}
			dropBits(uint(here.bits))
			s.back += int(here.bits)
			s.length = int(here.val)
			switch {
			case here.op == 0:
				s.mode = modeLit
			case here.op&32 != 0:
				s.back = -1
				s.mode = modeType
			case here.op&64 != 0:
				bad("invalid literal/length code")
			default:
				s.extra = here.extraBits()
				s.mode = modeLenExt
			}

		case modeLenExt:
			if s.extra != 0 {
				if !needBits(s.extra) {
					break loop
				}
				s.length += getBits(s.extra)
				dropBits(s.extra)
				s.back += int(s.extra)
			}
			s.was = s.length
			s.mode = modeDist

		case modeDist:
			tab := s.table()
			var here code
			for {
				here = tab[s.distcode+getBits(s.distbits)]
				if uint(here.bits) <= nbits {
					break
				}
				if !pullByte() {
					break loop
				}
			}
			if here.op&0xf0 == 0 {
				last := here
				for {
					here = tab[s.distcode+int(last.val)+getBits(uint(last.bits)+uint(last.op))>>last.bits]
					if uint(last.bits)+uint(here.bits) <= nbits {
						break
					}
					if !pullByte() {
						break loop
					}
				}
				dropBits(uint(last.bits))
				s.back += int(last.bits)
			}
			dropBits(uint(here.bits))
			s.back += int(here.bits)
			if here.op&64 != 0 {
				bad("invalid distance code")
				continue
			}
			s.offset = int(here.val)
			s.extra = here.extraBits()
			s.mode = modeDistExt

		case modeDistExt:
			if s.extra != 0 {
				if !needBits(s.extra) {
					break loop
				}
				s.offset += getBits(s.extra)
				dropBits(s.extra)
				s.back += int(s.extra)
			}
			s.mode = modeMatch

		case modeMatch:
			if left == 0 {
				break loop
			}
			var n int
			if produced := outStart - left; s.offset > produced {
				// copy from the window
				n = s.offset - produced
				if n > s.whave {
					if s.sane {
						bad("invalid distance too far back")
						continue
					}
					// bytes before the window read as zeros
					n -= s.whave
					n = min(n, s.length, left)
					left -= n
					s.length -= n
					clear(out[put : put+n])
					put += n
					if s.length == 0 {
						s.mode = modeLen
					}
					continue
				}
				var from int
				if n > s.wnext {
					n -= s.wnext
					from = s.wsize - n
				} else {
					from = s.wnext - n
				}
				n = min(n, s.length, left)
				copy(out[put:put+n], s.window[from:from+n])
				put += n
			} else {
				// copy from the output, possibly overlapping
				from := put - s.offset
				n = min(s.length, left)
				for i := 0; i < n; i++ {
					out[put] = out[from]
					put++
					from++
				}
			}
			left -= n
			s.length -= n
			if s.length == 0 {
				s.mode = modeLen
			}

		case modeLit:
			if left == 0 {
				break loop
			}
			out[put] = byte(s.length)
			put++
			left--
			s.mode = modeLen

		case modeCheck:
			if s.wrap != 0 {
				if !needBits(32) {
					break loop
				}
				n := outStart - left
				z.TotalOut += int64(n)
				s.total += int64(n)
				if s.wrap&4 != 0 && n != 0 {
					s.check = s.updateCheck(s.check, out[put-n:put])
					z.Adler = s.check
				}
				outStart = left
				want := uint32(hold)
				if s.flags == 0 {
					want = bits.ReverseBytes32(want)
				}
				if s.wrap&4 != 0 && want != s.check {
					bad("incorrect data check")
					continue
				}
				hold, nbits = 0, 0
			}
			s.mode = modeLength

		case modeLength:
			if s.wrap != 0 && s.flags != 0 {
				if !needBits(32) {
					break loop
				}
				if s.wrap&4 != 0 && uint32(hold) != uint32(s.total) {
					bad("incorrect length check")
					continue
				}
				hold, nbits = 0, 0
			}
			s.mode = modeDone

		case modeDone:
			ret = StreamEnd
			break loop

		case modeBad:
			ret = DataError
			break loop

		default:
			return StreamError
		}
	}

	// Return from Inflate, updating the totals and the check value. The
	// window is updated even past a stream end so that InflateGetDictionary
	// sees the output, unless the stream ended with Finish.
	restore()
	if s.wsize != 0 || (outStart != z.AvailOut && s.mode < modeBad &&
		(s.mode < modeCheck || flush != Finish)) {
		s.updateWindow(z.Out[:z.NextOut], outStart-z.AvailOut)
	}
	inUsed := inStart - z.AvailIn
	outUsed := outStart - z.AvailOut
	z.TotalIn += int64(inUsed)
	z.TotalOut += int64(outUsed)
	s.total += int64(outUsed)
	if s.wrap&4 != 0 && outUsed != 0 {
		s.check = s.updateCheck(s.check, z.Out[z.NextOut-outUsed:z.NextOut])
		z.Adler = s.check
	}
	z.DataType = int(s.bits)
	if s.last {
		z.DataType += 64
	}
	if s.mode == modeType {
		z.DataType += 128
	}
	if s.mode == modeLenStart || s.mode == modeCopyStart {
		z.DataType += 256
	}
	if ((inUsed == 0 && outUsed == 0) || flush == Finish) && ret == OK {
		ret = BufError
	}
	return ret
}

const (
	fieldName = iota
	fieldComment
)

// headerField consumes a NUL-terminated gzip header field from p, storing
// what fits into the header. It returns false if p ended before the NUL.
func (s *inflateState) headerField(p []byte, have, next *int, which int) bool {
	if len(p) == 0 {
		return false
	}
	var dst []byte
	if h := s.head; h != nil {
		if which == fieldName && h.Name != nil {
			dst = h.Name[:min(h.NameMax, len(h.Name))]
		} else if which == fieldComment && h.Comment != nil {
			dst = h.Comment[:min(h.CommMax, len(h.Comment))]
		}
	}
	n := 0
	var c byte
	for {
		c = p[n]
		n++
		if s.length < len(dst) {
			dst[s.length] = c
			s.length++
		}
		if c == 0 || n == len(p) {
			break
		}
	}
	if s.flags&0x0200 != 0 && s.wrap&4 != 0 {
		s.check = checksum.CRC32(s.check, p[:n])
	}
	*have -= n
	*next += n
	return c == 0
}
