// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

// Package checksum provides the rolling Adler-32 and CRC-32 checksums used by
// the zlib and gzip containers. Both take the running value and return the
// updated one, so a stream can carry the accumulator across calls.
package checksum

import "hash/crc32"

const (
	adlerBase = 65521 // largest prime smaller than 65536
	adlerNMax = 5552  // largest n with 255n(n+1)/2 + (n+1)(base-1) <= 2^32-1
)

// Adler32 updates a running Adler-32 checksum with p. The initial value is 1.
func Adler32(adler uint32, p []byte) uint32 {
	s1, s2 := adler&0xffff, adler>>16
	for len(p) > 0 {
		n := len(p)
		if n > adlerNMax {
			n = adlerNMax
		}
		q := p[:n]
		for len(q) >= 4 {
			s1 += uint32(q[0])
			s2 += s1
			s1 += uint32(q[1])
			s2 += s1
			s1 += uint32(q[2])
			s2 += s1
			s1 += uint32(q[3])
			s2 += s1
			q = q[4:]
		}
		for _, c := range q {
			s1 += uint32(c)
			s2 += s1
		}
		s1 %= adlerBase
		s2 %= adlerBase
		p = p[n:]
	}
	return s2<<16 | s1
}

// CRC32 updates a running CRC-32 (IEEE) checksum with p. The initial value is 0.
func CRC32(crc uint32, p []byte) uint32 {
	return crc32.Update(crc, crc32.IEEETable, p)
}
