// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

// inflateFast decodes literals and matches until fewer than 6 input bytes
// or 258 output bytes remain, or until the end of the block. It may only be
// called in modeLen with at least 6 bytes of input and 258 bytes of output.
// start is AvailOut at the start of the current Inflate call, which bounds
// distances reaching into the output of this call.
//
// With at least 6 input bytes, one length/distance pair can always be
// decoded without checking for the end of the input: the bit accumulator
// is refilled two bytes at a time and holds at most 7 bits on entry. The
// unused whole bytes are returned to the input on exit.
func (z *Stream) inflateFast(start int) {
	s := z.istate

	in := z.In
	first := z.NextIn
	next := first
	last := next + z.AvailIn - 5 // have enough input while next < last
	out := z.Out
	put := z.NextOut
	beg := put - (start - z.AvailOut) // start of this call's output
	end := put + z.AvailOut - 257     // room for a maximum match while put < end

	wsize, whave, wnext := s.wsize, s.whave, s.wnext
	window := s.window
	hold, nbits := s.hold, s.bits
	tab := s.table()
	lcode := tab[s.lencode:]
	dcode := tab[s.distcode:]
	lmask := uint64(1)<<s.lenbits - 1
	dmask := uint64(1)<<s.distbits - 1

	refill := func() {
		hold += uint64(in[next]) << nbits
		next++
		nbits += 8
	}

loop:
	for {
		if nbits < 15 {
			refill()
			refill()
		}
		here := lcode[hold&lmask]
		for {
			op := uint(here.bits)
			hold >>= op
			nbits -= op
			op = uint(here.op)
			if op == 0 || op&(16|32|64) != 0 {
				break
			}
			// second level length code
			here = lcode[uint64(here.val)+hold&(1<<op-1)]
		}

		op := uint(here.op)
		switch {
		case op == 0:
			out[put] = byte(here.val)
			put++

		case op&16 != 0:
			length := int(here.val)
			if op &= 15; op != 0 {
				if nbits < op {
					refill()
				}
				length += int(hold & (1<<op - 1))
				hold >>= op
				nbits -= op
			}
			if nbits < 15 {
				refill()
				refill()
			}
			here = dcode[hold&dmask]
			for {
				op = uint(here.bits)
				hold >>= op
				nbits -= op
				op = uint(here.op)
				if op&(16|64) != 0 {
					break
				}
				// second level distance code
				here = dcode[uint64(here.val)+hold&(1<<op-1)]
			}
			if op&16 == 0 {
				z.Msg = "invalid distance code"
				s.mode = modeBad
				break loop
			}

			dist := int(here.val)
			op &= 15
			if nbits < op {
				refill()
				if nbits < op {
					refill()
				}
			}
			dist += int(hold & (1<<op - 1))
			hold >>= op
			nbits -= op

			if avail := put - beg; dist > avail {
				// the match reaches back into the window
				back := dist - avail
				if back > whave {
					if s.sane {
						z.Msg = "invalid distance too far back"
						s.mode = modeBad
						break loop
					}
					// bytes before the window read as zeros
					zeros := min(back-whave, length)
					clear(out[put : put+zeros])
					put += zeros
					length -= zeros
					back -= zeros
				}
				if length > 0 && back > 0 {
					switch {
					case wnext == 0:
						// very common case
						from := wsize - back
						n := min(back, length)
						put += copy(out[put:put+n], window[from:from+n])
						length -= n
					case wnext < back:
						// wrap around the window
						from := wsize + wnext - back
						n := min(back-wnext, length)
						put += copy(out[put:put+n], window[from:from+n])
						length -= n
						if length > 0 {
							n = min(wnext, length)
							put += copy(out[put:put+n], window[:n])
							length -= n
						}
					default:
						// contiguous in the window
						from := wnext - back
						n := min(back, length)
						put += copy(out[put:put+n], window[from:from+n])
						length -= n
					}
				}
			}
			// the rest comes from the output
			from := put - dist
			switch {
			case length == 0:
			case dist >= length:
				put += copy(out[put:put+length], out[from:from+length])
			default:
				for ; length > 0; length-- {
					out[put] = out[from]
					put++
					from++
				}
			}

		case op&32 != 0:
			// end of block
			s.mode = modeType
			break loop

		default:
			z.Msg = "invalid literal/length code"
			s.mode = modeBad
			break loop
		}

		if next >= last || put >= end {
			break
		}
	}

	// return unused whole bytes read by this call
	n := min(nbits>>3, uint(next-first))
	next -= int(n)
	nbits -= n << 3
	hold &= 1<<nbits - 1

	z.NextIn = next
	z.AvailIn = last + 5 - next
	z.NextOut = put
	z.AvailOut = end + 257 - put
	s.hold = hold
	s.bits = nbits
}
