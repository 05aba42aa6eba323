// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package checksum

import (
	"hash/adler32"
	"hash/crc32"
	"math/rand"
	"testing"
)

func TestAdler32(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, size := range []int{0, 1, 3, 4, 5, 100, adlerNMax - 1, adlerNMax, adlerNMax + 1, 3 * adlerNMax, 1 << 20} {
		data := make([]byte, size)
		rnd.Read(data)
		for i := range data[:size/2] {
			data[i] = 0xff
		}
		if got, want := Adler32(1, data), adler32.Checksum(data); got != want {
			t.Fatalf("size %d: got %08x want %08x", size, got, want)
		}
		// split updates must agree with a single pass
		half := size / 3
		if got, want := Adler32(Adler32(1, data[:half]), data[half:]), adler32.Checksum(data); got != want {
			t.Fatalf("size %d split: got %08x want %08x", size, got, want)
		}
	}
}

func TestCRC32(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	if got := CRC32(0, data); got != 0x414fa339 {
		t.Fatalf("got %08x", got)
	}
	if got, want := CRC32(CRC32(0, data[:10]), data[10:]), crc32.ChecksumIEEE(data); got != want {
		t.Fatalf("got %08x want %08x", got, want)
	}
}

func BenchmarkAdler32(b *testing.B) {
	data := make([]byte, 64*1024)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Adler32(1, data)
	}
}
