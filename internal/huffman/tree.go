// Copyright (c) 2024, Intel Corporation.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

// Tree is a dynamic tree together with its static description.
type Tree struct {
	Dyn     []Node
	MaxCode int // largest symbol with non-zero frequency
	Stat    *StaticTree
}

const smallest = 1 // heap index of the least frequent node

// Builder carries the scratch space for building trees. A builder must be
// reused across blocks to avoid allocations.
type Builder struct {
	BLCount [MaxBits + 1]uint16

	heap    [2*LCodes + 1]int // heap[0] is unused
	heapLen int
	heapMax int // heap[heapMax:] holds the sorted nodes
	depth   [2*LCodes + 1]uint8

	OptLen    int // bit length of the block with optimal trees
	StaticLen int // bit length of the block with static trees
}

func (b *Builder) smaller(tree []Node, n, m int) bool {
	return tree[n].Freq < tree[m].Freq ||
		(tree[n].Freq == tree[m].Freq && b.depth[n] <= b.depth[m])
}

// pqdownheap restores the heap property by moving down from node k.
func (b *Builder) pqdownheap(tree []Node, k int) {
	v := b.heap[k]
	j := k << 1
	for j <= b.heapLen {
		if j < b.heapLen && b.smaller(tree, b.heap[j+1], b.heap[j]) {
			j++
		}
		if b.smaller(tree, v, b.heap[j]) {
			break
		}
		b.heap[k] = b.heap[j]
		k = j
		j <<= 1
	}
	b.heap[k] = v
}

func (b *Builder) pqremove(tree []Node) int {
	top := b.heap[smallest]
	b.heap[smallest] = b.heap[b.heapLen]
	b.heapLen--
	b.pqdownheap(tree, smallest)
	return top
}

// Build constructs the Huffman tree for t from its frequencies, sets the
// code lengths and codes, and updates OptLen and StaticLen. t.MaxCode is
// set to the largest code with a non-zero frequency.
func (b *Builder) Build(t *Tree) {
	tree := t.Dyn
	stree := t.Stat.Tree
	elems := t.Stat.Elems
	maxCode := -1

	b.heapLen = 0
	b.heapMax = HeapSize
	for n := 0; n < elems; n++ {
		if tree[n].Freq != 0 {
			b.heapLen++
			b.heap[b.heapLen] = n
			maxCode = n
			b.depth[n] = 0
		} else {
			tree[n].Len = 0
		}
	}

	// The pkzip format requires at least one distance code and at least
	// one bit per code, so force two codes of non-zero frequency.
	for b.heapLen < 2 {
		node := 0
		if maxCode < 2 {
			maxCode++
			node = maxCode
		}
		b.heapLen++
		b.heap[b.heapLen] = node
		tree[node].Freq = 1
		b.depth[node] = 0
		b.OptLen--
		if stree != nil {
			b.StaticLen -= int(stree[node].Len)
		}
	}
	t.MaxCode = maxCode

	for n := b.heapLen / 2; n >= 1; n-- {
		b.pqdownheap(tree, n)
	}

	node := elems
	for {
		n := b.pqremove(tree)
		m := b.heap[smallest]

		b.heapMax--
		b.heap[b.heapMax] = n
		b.heapMax--
		b.heap[b.heapMax] = m

		tree[node].Freq = tree[n].Freq + tree[m].Freq
		d := b.depth[n]
		if b.depth[m] > d {
			d = b.depth[m]
		}
		b.depth[node] = d + 1
		tree[n].Dad = uint16(node)
		tree[m].Dad = uint16(node)

		b.heap[smallest] = node
		node++
		b.pqdownheap(tree, smallest)
		if b.heapLen < 2 {
			break
		}
	}
	b.heapMax--
	b.heap[b.heapMax] = b.heap[smallest]

	b.genBitlen(t)
	GenCodes(tree, maxCode, &b.BLCount)
}

// genBitlen computes the code lengths of t from the parent links, capping
// them at the static description's maximum length.
func (b *Builder) genBitlen(t *Tree) {
	tree := t.Dyn
	maxCode := t.MaxCode
	stree := t.Stat.Tree
	extra := t.Stat.ExtraBits
	base := t.Stat.ExtraBase
	maxLength := t.Stat.MaxLength

	for i := range b.BLCount {
		b.BLCount[i] = 0
	}

	// The root has length zero; every other node is one deeper than its
	// parent. The heap tail is ordered so that parents come first.
	tree[b.heap[b.heapMax]].Len = 0

	overflow := 0
	h := b.heapMax + 1
	for ; h < HeapSize; h++ {
		n := b.heap[h]
		bits := int(tree[tree[n].Dad].Len) + 1
		if bits > maxLength {
			bits = maxLength
			overflow++
		}
		tree[n].Len = uint16(bits)
		if n > maxCode {
			continue // not a leaf
		}
		b.BLCount[bits]++
		xbits := 0
		if n >= base {
			xbits = int(extra[n-base])
		}
		f := int(tree[n].Freq)
		b.OptLen += f * (bits + xbits)
		if stree != nil {
			b.StaticLen += f * (int(stree[n].Len) + xbits)
		}
	}
	if overflow == 0 {
		return
	}

	// Find the first bit length that could increase and move a leaf from
	// it down to make room for the overflowed leaves.
	for overflow > 0 {
		bits := maxLength - 1
		for b.BLCount[bits] == 0 {
			bits--
		}
		b.BLCount[bits]--
		b.BLCount[bits+1] += 2
		b.BLCount[maxLength]--
		overflow -= 2
	}

	// Reassign lengths by walking the leaves in frequency order.
	for bits := maxLength; bits != 0; bits-- {
		n := int(b.BLCount[bits])
		for n != 0 {
			h--
			m := b.heap[h]
			if m > maxCode {
				continue
			}
			if int(tree[m].Len) != bits {
				b.OptLen += (bits - int(tree[m].Len)) * int(tree[m].Freq)
				tree[m].Len = uint16(bits)
			}
			n--
		}
	}
}
