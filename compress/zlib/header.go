// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package zlib

// GzipHeader carries the gzip header fields. The byte slices belong to the
// caller.
//
// When compressing, Extra (its first ExtraLen bytes), Name and Comment are
// written if non-nil. Name and Comment end at their first NUL byte, or at the
// end of the slice; a terminating NUL is always written.
//
// When decompressing, the header is filled in as it is parsed. At most
// ExtraMax extra bytes are stored into Extra, and at most NameMax and CommMax
// bytes (including the NUL) into Name and Comment. Longer fields are
// truncated without error. Fields absent from the stream are set to nil.
type GzipHeader struct {
	Text   bool   // the data is probably text
	Time   uint32 // modification time
	XFlags int    // extra flags, not used when compressing
	OS     int    // operating system
	HCRC   bool   // a header CRC is or was present

	Extra    []byte
	ExtraLen int // length of the extra field
	ExtraMax int // space in Extra when decompressing

	Name    []byte
	NameMax int

	Comment []byte
	CommMax int

	// Done is 0 while the header is being read, 1 once it has been read
	// completely, and -1 if the stream turned out to be zlib.
	Done int
}

// fieldLen returns the number of bytes of a NUL-terminated field, without
// the terminator.
func fieldLen(p []byte) int {
	for i, c := range p {
		if c == 0 {
			return i
		}
	}
	return len(p)
}
