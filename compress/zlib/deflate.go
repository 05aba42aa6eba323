// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

import (
	"github.com/intel/fastzlib/internal/checksum"
	"github.com/intel/fastzlib/internal/huffman"
)

const (
	minMatch     = huffman.MinMatch
	maxMatch     = huffman.MaxMatch
	minLookahead = maxMatch + minMatch + 1
	winInit      = maxMatch // bytes zeroed past the data in the window
	maxStored    = 65535    // largest stored block payload

	presetDict = 0x20 // zlib FLG bit: a dictionary id follows
	osCode     = 255  // gzip OS byte: unknown

	bufSize = 16 // width of the bit accumulator
)

// Deflate header states.
const (
	initState    = 42
	gzipState    = 57
	extraState   = 69
	nameState    = 73
	commentState = 91
	hcrcState    = 103
	busyState    = 113
	finishState  = 666
)

// Block types.
const (
	storedBlock = 0
	staticTrees = 1
	dynTrees    = 2
)

// blockState is the outcome of one run of a compression strategy.
type blockState int

const (
	needMore      blockState = iota // block not completed, need more input or more output
	blockDone                       // block flush performed
	finishStarted                   // finish started, need only more output at next deflate
	finishDone                      // finish done, accept no more input or output
)

type deflateState struct {
	strm   *Stream
	status int

	pendingBuf     []byte // output still pending; also holds the symbol buffer
	pendingBufSize int
	pendingOut     int // next pending byte to output
	pending        int // number of bytes in the pending buffer

	wrap      int // 0 raw, 1 zlib, 2 gzip; negated once the trailer is written
	gzhead    *GzipHeader
	gzindex   int // position in the current gzip header field
	method    int
	lastFlush int // value of flush of the previous deflate call, -2 before the first

	wSize int // LZ77 window size
	wBits int
	wMask int

	// window holds 2*wSize bytes: the history and the lookahead. Matches
	// never reach into bytes that have not been read yet.
	window     []byte
	windowSize int

	// prev links the positions with the same hash within the window;
	// head holds the most recent position for each hash.
	prev []uint16
	head []uint16

	insH      uint32 // hash of the string to be inserted
	hashSize  int
	hashBits  int
	hashMask  uint32
	hashShift uint

	blockStart int // window position of the current block, may go negative

	matchLength    int
	prevMatch      int
	matchAvailable bool
	strstart       int
	matchStart     int
	lookahead      int

	prevLength     int // best match length at the previous step
	maxChainLength int
	maxLazyMatch   int // insert new strings only below this length (fast levels)

	level    int
	strategy Strategy

	goodMatch int
	niceMatch int

	dynLtree [huffman.HeapSize]huffman.Node
	dynDtree [2*huffman.DCodes + 1]huffman.Node
	blTree   [2*huffman.BLCodes + 1]huffman.Node

	lDesc  huffman.Tree
	dDesc  huffman.Tree
	blDesc huffman.Tree

	trees huffman.Builder

	symBuf     int // offset of the symbol buffer in pendingBuf
	litBufsize int
	symNext    int
	symEnd     int

	matches int // number of string matches in the current block
	insert  int // bytes at the end of the window left to insert in the hash

	biBuf   uint16 // bits not yet written to the pending buffer
	biValid int
	biUsed  int // bits used in the last written byte

	highWater int // end of the initialized part of the window
}

func (s *deflateState) maxDist() int {
	return s.wSize - minLookahead
}

// deflateStateCheck reports whether z lacks a usable deflate state.
func (z *Stream) deflateStateCheck() bool {
	if z == nil {
		return true
	}
	s := z.dstate
	if s == nil || s.strm != z {
		return true
	}
	switch s.status {
	case initState, gzipState, extraState, nameState, commentState, hcrcState, busyState, finishState:
		return false
	}
	return true
}

// DeflateInit initializes z for compression at the given level with the
// zlib container and default parameters.
func (z *Stream) DeflateInit(level int) Status {
	return z.DeflateInit2(level, Deflated, MaxWBits, DefMemLevel, DefaultStrategy)
}

// DeflateInit2 initializes z for compression. windowBits is 8..15 for
// zlib, -8..-15 for raw deflate and 24..31 for gzip. memLevel 1..9 sizes
// the hash table and the symbol buffer.
func (z *Stream) DeflateInit2(level, method, windowBits, memLevel int, strategy Strategy) Status {
	if z == nil {
		return StreamError
	}
	z.Msg = ""
	wrap := 1
	if level == DefaultCompression {
		level = 6
	}
	if windowBits < 0 {
		wrap = 0
		if windowBits < -MaxWBits {
			return StreamError
		}
		windowBits = -windowBits
	} else if windowBits > MaxWBits {
		wrap = 2
		windowBits -= 16
	}
	if memLevel < 1 || memLevel > MaxMemLevel || method != Deflated ||
		windowBits < 8 || windowBits > MaxWBits || level < 0 || level > 9 ||
		strategy < 0 || strategy > Fixed || (windowBits == 8 && wrap != 1) {
		return StreamError
	}
	if windowBits == 8 {
		windowBits = 9 // a 256-byte window is not supported
	}

	s := &deflateState{strm: z}
	z.dstate = s
	z.istate = nil
	s.status = initState

	s.wrap = wrap
	s.wBits = windowBits
	s.wSize = 1 << s.wBits
	s.wMask = s.wSize - 1

	s.hashBits = memLevel + 7
	s.hashSize = 1 << s.hashBits
	s.hashMask = uint32(s.hashSize - 1)
	s.hashShift = uint((s.hashBits + minMatch - 1) / minMatch)

	s.window = make([]byte, 2*s.wSize)
	s.prev = make([]uint16, s.wSize)
	s.head = make([]uint16, s.hashSize)
	s.highWater = 0

	// 16K symbols by default. The pending buffer is shared: the first
	// quarter takes compressed output while the rest stores the symbols of
	// the current block, three bytes each. Output can never overrun the
	// symbols it is produced from.
	s.litBufsize = 1 << (memLevel + 6)
	s.pendingBuf = make([]byte, s.litBufsize*4)
	s.pendingBufSize = s.litBufsize * 4
	s.symBuf = s.litBufsize
	s.symEnd = (s.litBufsize - 1) * 3

	s.level = level
	s.strategy = strategy
	s.method = method

	return z.DeflateReset()
}

// DeflateSetDictionary primes the compression window with dict. For zlib
// streams it must be called before the first Deflate; it is not allowed for
// gzip streams.
func (z *Stream) DeflateSetDictionary(dict []byte) Status {
	if z.deflateStateCheck() || dict == nil {
		return StreamError
	}
	s := z.dstate
	wrap := s.wrap
	if wrap == 2 || (wrap == 1 && s.status != initState) || s.lookahead != 0 {
		return StreamError
	}

	// the dictionary id is the Adler-32 of the dictionary
	if wrap == 1 {
		z.Adler = checksum.Adler32(z.Adler, dict)
	}
	s.wrap = 0 // avoid computing the checksum of the dictionary bytes

	if len(dict) >= s.wSize {
		if wrap == 0 {
			s.clearHash()
			s.strstart = 0
			s.blockStart = 0
			s.insert = 0
		}
		dict = dict[len(dict)-s.wSize:]
	}

	// feed the dictionary through the window and the hash chains
	in, next, avail, total := z.In, z.NextIn, z.AvailIn, z.TotalIn
	z.In, z.NextIn, z.AvailIn = dict, 0, len(dict)
	s.fillWindow()
	for s.lookahead >= minMatch {
		str := s.strstart
		n := s.lookahead - (minMatch - 1)
		for ; n > 0; n-- {
			s.insH = s.updateHash(s.insH, s.window[str+minMatch-1])
			s.prev[str&s.wMask] = s.head[s.insH]
			s.head[s.insH] = uint16(str)
			str++
		}
		s.strstart = str
		s.lookahead = minMatch - 1
		s.fillWindow()
	}
	s.strstart += s.lookahead
	s.blockStart = s.strstart
	s.insert = s.lookahead
	s.lookahead = 0
	s.matchLength = minMatch - 1
	s.prevLength = minMatch - 1
	s.matchAvailable = false
	z.In, z.NextIn, z.AvailIn, z.TotalIn = in, next, avail, total
	s.wrap = wrap
	return OK
}

// DeflateGetDictionary copies up to a window of the most recent
// uncompressed data into dict and returns the number of bytes it holds.
func (z *Stream) DeflateGetDictionary(dict []byte) (int, Status) {
	if z.deflateStateCheck() {
		return 0, StreamError
	}
	s := z.dstate
	n := s.strstart + s.lookahead
	if n > s.wSize {
		n = s.wSize
	}
	if dict != nil && n != 0 {
		end := s.strstart + s.lookahead
		copy(dict, s.window[end-n:end])
	}
	return n, OK
}

// DeflateResetKeep restarts the stream without touching the window
// contents or the compression parameters.
func (z *Stream) DeflateResetKeep() Status {
	if z.deflateStateCheck() {
		return StreamError
	}
	z.TotalIn, z.TotalOut = 0, 0
	z.Msg = ""
	z.DataType = Unknown

	s := z.dstate
	s.pending = 0
	s.pendingOut = 0
	if s.wrap < 0 {
		s.wrap = -s.wrap // was made negative by Deflate(Finish)
	}
	if s.wrap == 2 {
		s.status = gzipState
		z.Adler = checksum.CRC32(0, nil)
	} else {
		s.status = initState
		z.Adler = checksum.Adler32(1, nil)
	}
	s.lastFlush = -2

	s.trInit()
	return OK
}

// DeflateReset is equivalent to DeflateEnd followed by DeflateInit2 with
// the same parameters, without reallocating.
func (z *Stream) DeflateReset() Status {
	ret := z.DeflateResetKeep()
	if ret == OK {
		z.dstate.lmInit()
	}
	return ret
}

// DeflateSetHeader provides the gzip header written by the first Deflate
// call. The header must stay valid until it has been written.
func (z *Stream) DeflateSetHeader(head *GzipHeader) Status {
	if z.deflateStateCheck() || z.dstate.wrap != 2 {
		return StreamError
	}
	z.dstate.gzhead = head
	return OK
}

// DeflatePending returns the number of bytes and bits of output that have
// been generated but not yet delivered to Out.
func (z *Stream) DeflatePending() (pending, bits int, ret Status) {
	if z.deflateStateCheck() {
		return 0, 0, StreamError
	}
	s := z.dstate
	return s.pending, s.biValid, OK
}

// DeflateUsed returns the number of bits used in the last byte of the most
// recently completed stored or final block.
func (z *Stream) DeflateUsed() (int, Status) {
	if z.deflateStateCheck() {
		return 0, StreamError
	}
	return z.dstate.biUsed, OK
}

// DeflatePrime inserts the low bits of value into the output ahead of the
// next compressed data. bits must be at most 16.
func (z *Stream) DeflatePrime(bits, value int) Status {
	if z.deflateStateCheck() {
		return StreamError
	}
	s := z.dstate
	if bits < 0 || bits > bufSize || s.symBuf < s.pendingOut+(bufSize+7)>>3 {
		return BufError
	}
	for {
		put := bufSize - s.biValid
		if put > bits {
			put = bits
		}
		s.biBuf |= uint16((value & (1<<put - 1)) << s.biValid)
		s.biValid += put
		s.trFlushBits()
		value >>= put
		bits -= put
		if bits == 0 {
			break
		}
	}
	return OK
}

// DeflateParams changes the level and strategy mid-stream. If the change
// selects a different compression function, the data so far is first
// flushed as with Deflate(Block).
func (z *Stream) DeflateParams(level int, strategy Strategy) Status {
	if z.deflateStateCheck() {
		return StreamError
	}
	s := z.dstate
	if level == DefaultCompression {
		level = 6
	}
	if level < 0 || level > 9 || strategy < 0 || strategy > Fixed {
		return StreamError
	}
	fn := configTable[s.level].kind

	if (strategy != s.strategy || fn != configTable[level].kind) && s.lastFlush != -2 {
		// flush the last buffer
		if err := z.Deflate(Block); err == StreamError {
			return err
		}
		if z.AvailIn != 0 || s.strstart-s.blockStart+s.lookahead != 0 {
			return BufError
		}
	}
	if s.level != level {
		if s.level == 0 && s.matches != 0 {
			if s.matches == 1 {
				s.slideHash()
			} else {
				s.clearHash()
			}
			s.matches = 0
		}
		s.level = level
		s.configure()
	}
	s.strategy = strategy
	return OK
}

// DeflateTune overrides the match finder parameters of the current level.
func (z *Stream) DeflateTune(goodLength, maxLazy, niceLength, maxChain int) Status {
	if z.deflateStateCheck() {
		return StreamError
	}
	s := z.dstate
	s.goodMatch = goodLength
	s.maxLazyMatch = maxLazy
	s.niceMatch = niceLength
	s.maxChainLength = maxChain
	return OK
}

// DeflateBound returns an upper bound on the compressed size of sourceLen
// bytes compressed in one call with Finish, for the stream's parameters.
// On an uninitialized stream it returns a bound valid for any parameters.
func (z *Stream) DeflateBound(sourceLen int) int {
	fixedLen := sourceLen + sourceLen>>3 + sourceLen>>8 + sourceLen>>9 + 4
	storeLen := sourceLen + sourceLen>>5 + sourceLen>>7 + sourceLen>>11 + 7

	if z.deflateStateCheck() {
		if fixedLen > storeLen {
			return fixedLen + 18
		}
		return storeLen + 18
	}

	s := z.dstate
	wrapLen := 0
	wrap := s.wrap
	if wrap < 0 {
		wrap = -wrap
	}
	switch wrap {
	case 0:
	case 1:
		wrapLen = 6
		if s.strstart != 0 {
			wrapLen += 4
		}
	case 2:
		wrapLen = 18
		if h := s.gzhead; h != nil {
			if h.Extra != nil {
				wrapLen += 2 + len(h.extraField())
			}
			if h.Name != nil {
				wrapLen += fieldLen(h.Name) + 1
			}
			if h.Comment != nil {
				wrapLen += fieldLen(h.Comment) + 1
			}
			if h.HCRC {
				wrapLen += 2
			}
		}
	default:
		wrapLen = 18
	}

	if s.wBits != 15 || s.hashBits != 8+7 {
		if s.wBits <= s.hashBits && s.level != 0 {
			return fixedLen + wrapLen
		}
		return storeLen + wrapLen
	}
	return sourceLen + sourceLen>>12 + sourceLen>>14 + sourceLen>>25 + 13 - 6 + wrapLen
}

// extraField returns the part of Extra announced by ExtraLen.
func (h *GzipHeader) extraField() []byte {
	n := h.ExtraLen & 0xffff
	if n > len(h.Extra) {
		n = len(h.Extra)
	}
	return h.Extra[:n]
}

// flushPending copies as much pending output as fits into Out.
func (z *Stream) flushPending() {
	s := z.dstate
	s.trFlushBits()
	n := s.pending
	if n > z.AvailOut {
		n = z.AvailOut
	}
	if n == 0 {
		return
	}
	copy(z.Out[z.NextOut:z.NextOut+n], s.pendingBuf[s.pendingOut:s.pendingOut+n])
	z.NextOut += n
	s.pendingOut += n
	z.TotalOut += int64(n)
	z.AvailOut -= n
	s.pending -= n
	if s.pending == 0 {
		s.pendingOut = 0
	}
}

// hcrcUpdate adds the header bytes written since beg to the header CRC.
func (s *deflateState) hcrcUpdate(beg int) {
	if s.gzhead != nil && s.gzhead.HCRC && s.pending > beg {
		s.strm.Adler = checksum.CRC32(s.strm.Adler, s.pendingBuf[beg:s.pending])
	}
}

// rank orders flush values so that Block sits between NoFlush and
// PartialFlush.
func rank(f int) int {
	r := f * 2
	if f > 4 {
		r -= 9
	}
	return r
}

// Deflate compresses as much data as possible and stops when the input
// is exhausted or the output is full. See Flush for the flush modes.
//
// It returns OK if progress was made, StreamEnd once all input has been
// consumed and all output produced with Finish, BufError if no progress
// was possible and StreamError if the stream state is inconsistent.
func (z *Stream) Deflate(flush Flush) Status {
	if z.deflateStateCheck() || flush > Block || flush < 0 {
		return StreamError
	}
	s := z.dstate
	if !z.buffersValid() || (s.status == finishState && flush != Finish) {
		return z.errReturn(StreamError)
	}
	if z.AvailOut == 0 {
		return z.errReturn(BufError)
	}

	oldFlush := s.lastFlush
	s.lastFlush = int(flush)

	// Flush as much pending output as possible.
	if s.pending != 0 {
		z.flushPending()
		if z.AvailOut == 0 {
			// Avoid a BufError on the next call with the same flush.
			s.lastFlush = -1
			return OK
		}
	} else if z.AvailIn == 0 && rank(int(flush)) <= rank(oldFlush) && flush != Finish {
		// Repeated flushes without new input make no progress.
		return z.errReturn(BufError)
	}

	// User must not provide more input after the first Finish.
	if s.status == finishState && z.AvailIn != 0 {
		return z.errReturn(BufError)
	}

	if s.status == initState && s.wrap == 0 {
		s.status = busyState
	}
	if s.status == initState {
		// zlib header
		header := (Deflated + (s.wBits-8)<<4) << 8
		levelFlags := 3
		switch {
		case s.strategy >= HuffmanOnly || s.level < 2:
			levelFlags = 0
		case s.level < 6:
			levelFlags = 1
		case s.level == 6:
			levelFlags = 2
		}
		header |= levelFlags << 6
		if s.strstart != 0 {
			header |= presetDict
		}
		header += 31 - header%31
		s.putShortMSB(header)

		if s.strstart != 0 {
			s.putShortMSB(int(z.Adler >> 16))
			s.putShortMSB(int(z.Adler & 0xffff))
		}
		z.Adler = checksum.Adler32(1, nil)
		s.status = busyState

		z.flushPending()
		if s.pending != 0 {
			s.lastFlush = -1
			return OK
		}
	}
	if s.status == gzipState {
		z.Adler = checksum.CRC32(0, nil)
		s.putByte(31)
		s.putByte(139)
		s.putByte(8)
		if s.gzhead == nil {
			s.putByte(0)
			s.putByte(0)
			s.putByte(0)
			s.putByte(0)
			s.putByte(0)
			s.putByte(s.xfl())
			s.putByte(osCode)
			s.status = busyState

			z.flushPending()
			if s.pending != 0 {
				s.lastFlush = -1
				return OK
			}
		} else {
			h := s.gzhead
			var flags byte
			if h.Text {
				flags |= 1
			}
			if h.HCRC {
				flags |= 2
			}
			if h.Extra != nil {
				flags |= 4
			}
			if h.Name != nil {
				flags |= 8
			}
			if h.Comment != nil {
				flags |= 16
			}
			s.putByte(flags)
			s.putByte(byte(h.Time))
			s.putByte(byte(h.Time >> 8))
			s.putByte(byte(h.Time >> 16))
			s.putByte(byte(h.Time >> 24))
			s.putByte(s.xfl())
			s.putByte(byte(h.OS))
			if h.Extra != nil {
				n := len(h.extraField())
				s.putByte(byte(n))
				s.putByte(byte(n >> 8))
			}
			if h.HCRC {
				z.Adler = checksum.CRC32(z.Adler, s.pendingBuf[:s.pending])
			}
			s.gzindex = 0
			s.status = extraState
		}
	}
	if s.status == extraState {
		if h := s.gzhead; h != nil && h.Extra != nil {
			extra := h.extraField()
			beg := s.pending
			left := len(extra) - s.gzindex
			for s.pending+left > s.pendingBufSize {
				n := s.pendingBufSize - s.pending
				copy(s.pendingBuf[s.pending:], extra[s.gzindex:s.gzindex+n])
				s.pending = s.pendingBufSize
				s.hcrcUpdate(beg)
				s.gzindex += n
				z.flushPending()
				if s.pending != 0 {
					s.lastFlush = -1
					return OK
				}
				beg = 0
				left -= n
			}
			copy(s.pendingBuf[s.pending:], extra[s.gzindex:s.gzindex+left])
			s.pending += left
			s.hcrcUpdate(beg)
			s.gzindex = 0
		}
		s.status = nameState
	}
	if s.status == nameState {
		if h := s.gzhead; h != nil && h.Name != nil {
			if !z.deflateField(h.Name) {
				return OK
			}
		}
		s.status = commentState
	}
	if s.status == commentState {
		if h := s.gzhead; h != nil && h.Comment != nil {
			if !z.deflateField(h.Comment) {
				return OK
			}
		}
		s.status = hcrcState
	}
	if s.status == hcrcState {
		if h := s.gzhead; h != nil && h.HCRC {
			if s.pending+2 > s.pendingBufSize {
				z.flushPending()
				if s.pending != 0 {
					s.lastFlush = -1
					return OK
				}
			}
			s.putByte(byte(z.Adler))
			s.putByte(byte(z.Adler >> 8))
			z.Adler = checksum.CRC32(0, nil)
		}
		s.status = busyState

		// Compression must start with an empty pending buffer.
		z.flushPending()
		if s.pending != 0 {
			s.lastFlush = -1
			return OK
		}
	}

	// Start a new block or continue the current one.
	if z.AvailIn != 0 || s.lookahead != 0 || (flush != NoFlush && s.status != finishState) {
		var bstate blockState
		switch {
		case s.level == 0:
			bstate = deflateStored(s, flush)
		case s.strategy == HuffmanOnly:
			bstate = deflateHuff(s, flush)
		case s.strategy == RLE:
			bstate = deflateRLE(s, flush)
		default:
			bstate = configTable[s.level].fn(s, flush)
		}

		if bstate == finishStarted || bstate == finishDone {
			s.status = finishState
		}
		if bstate == needMore || bstate == finishStarted {
			if z.AvailOut == 0 {
				s.lastFlush = -1
			}
			// If flush != NoFlush and AvailOut == 0, the next call of
			// Deflate should use the same flush parameter to make sure
			// the flush is complete.
			return OK
		}
		if bstate == blockDone {
			if flush == PartialFlush {
				s.trAlign()
			} else if flush != Block {
				// FullFlush or SyncFlush: an empty stored block marks
				// the byte boundary.
				s.trStoredBlock(nil, 0, false)
				if flush == FullFlush {
					s.clearHash() // forget history
					if s.lookahead == 0 {
						s.strstart = 0
						s.blockStart = 0
						s.insert = 0
					}
				}
			}
			z.flushPending()
			if z.AvailOut == 0 {
				s.lastFlush = -1
				return OK
			}
		}
	}

	if flush != Finish {
		return OK
	}
	if s.wrap <= 0 {
		return StreamEnd
	}

	// Write the trailer.
	if s.wrap == 2 {
		s.putByte(byte(z.Adler))
		s.putByte(byte(z.Adler >> 8))
		s.putByte(byte(z.Adler >> 16))
		s.putByte(byte(z.Adler >> 24))
		s.putByte(byte(z.TotalIn))
		s.putByte(byte(z.TotalIn >> 8))
		s.putByte(byte(z.TotalIn >> 16))
		s.putByte(byte(z.TotalIn >> 24))
	} else {
		s.putShortMSB(int(z.Adler >> 16))
		s.putShortMSB(int(z.Adler & 0xffff))
	}
	z.flushPending()
	// If AvailOut is zero, the caller calls again to flush the rest.
	if s.wrap > 0 {
		s.wrap = -s.wrap // write the trailer only once
	}
	if s.pending != 0 {
		return OK
	}
	return StreamEnd
}

// deflateField writes a NUL-terminated gzip header field, resuming at
// gzindex. It returns false if the output filled up first.
func (z *Stream) deflateField(field []byte) bool {
	s := z.dstate
	field = field[:fieldLen(field)]
	beg := s.pending
	for {
		if s.pending == s.pendingBufSize {
			s.hcrcUpdate(beg)
			z.flushPending()
			if s.pending != 0 {
				s.lastFlush = -1
				return false
			}
			beg = 0
		}
		if s.gzindex == len(field) {
			s.putByte(0)
			break
		}
		s.putByte(field[s.gzindex])
		s.gzindex++
	}
	s.hcrcUpdate(beg)
	s.gzindex = 0
	return true
}

// xfl returns the gzip XFL byte for the compression settings.
func (s *deflateState) xfl() byte {
	switch {
	case s.level == 9:
		return 2
	case s.strategy >= HuffmanOnly || s.level < 2:
		return 4
	}
	return 0
}

// DeflateEnd releases the compression state. It returns DataError if the
// stream was freed before all output was produced.
func (z *Stream) DeflateEnd() Status {
	if z.deflateStateCheck() {
		return StreamError
	}
	s := z.dstate
	status := s.status
	s.window = nil
	s.prev = nil
	s.head = nil
	s.pendingBuf = nil
	s.gzhead = nil
	s.strm = nil
	z.dstate = nil
	if status == busyState {
		return DataError
	}
	return OK
}

// DeflateCopy sets dest to a complete, independent copy of z's
// compression stream. Input and output buffers are shared.
func (z *Stream) DeflateCopy(dest *Stream) Status {
	if z.deflateStateCheck() || dest == nil {
		return StreamError
	}
	ss := z.dstate
	*dest = *z

	ds := new(deflateState)
	*ds = *ss
	ds.strm = dest
	ds.window = append([]byte(nil), ss.window...)
	ds.prev = append([]uint16(nil), ss.prev...)
	ds.head = append([]uint16(nil), ss.head...)
	ds.pendingBuf = append([]byte(nil), ss.pendingBuf...)
	ds.lDesc.Dyn = ds.dynLtree[:]
	ds.dDesc.Dyn = ds.dynDtree[:]
	ds.blDesc.Dyn = ds.blTree[:]

	dest.dstate = ds
	dest.istate = nil
	return OK
}

// lmInit initializes the longest match routines for a new stream.
func (s *deflateState) lmInit() {
	s.windowSize = 2 * s.wSize
	s.clearHash()
	s.configure()

	s.strstart = 0
	s.blockStart = 0
	s.lookahead = 0
	s.insert = 0
	s.matchLength = minMatch - 1
	s.prevLength = minMatch - 1
	s.matchAvailable = false
	s.insH = 0
}

// configure loads the match finder parameters of the current level.
func (s *deflateState) configure() {
	c := &configTable[s.level]
	s.maxLazyMatch = c.maxLazy
	s.goodMatch = c.goodLength
	s.niceMatch = c.niceLength
	s.maxChainLength = c.maxChain
}
