// This file is part of ejasm - https://github.com/mystor/ejasm
//
// Copyright 2016 Michael Layzell
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var errUnderflow = errors.New("data stack underflow")

// heap is the managed arena backing the malloc and free builtins.
// Addresses at or above the program size land here, biased by base, so
// that programs see a single flat address space with no collision between
// image and heap.
type heap struct {
	base  Word
	arena []byte
	live  map[Word]Word // arena offset -> block size
	holes []hole
}

type hole struct {
	off, size Word
}

// alloc reserves n bytes and returns the biased address of the block.
// Freed blocks are reused first fit; otherwise the arena grows.
func (h *heap) alloc(n Word) (Word, error) {
	if n < 0 {
		return 0, errors.Errorf("malloc: negative size %d", n)
	}
	if h.live == nil {
		h.live = make(map[Word]Word)
	}
	for k, f := range h.holes {
		if f.size < n {
			continue
		}
		h.holes = append(h.holes[:k], h.holes[k+1:]...)
		if f.size > n {
			h.holes = append(h.holes, hole{f.off + n, f.size - n})
		}
		h.live[f.off] = n
		return h.base + f.off, nil
	}
	off := Word(len(h.arena))
	h.arena = append(h.arena, make([]byte, n)...)
	h.live[off] = n
	return h.base + off, nil
}

// release returns the block at the biased address addr to the free list.
func (h *heap) release(addr Word) error {
	off := addr - h.base
	n, ok := h.live[off]
	if !ok {
		return errors.Errorf("free: %#x is not an allocated address", int64(addr))
	}
	delete(h.live, off)
	h.holes = append(h.holes, hole{off, n})
	return nil
}

// mem returns the n bytes starting at addr, routed to program space or
// the heap: addresses in [0, S) index the image directly, addresses at or
// above S index the heap arena at addr-S. Ranges may not straddle the two
// spaces.
func (i *Instance) mem(addr, n Word) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative memory range length %d", n)
	}
	if s := Word(len(i.image)); addr >= 0 && addr < s {
		if addr+n > s {
			return nil, errors.Errorf("range [%#x,%#x) crosses the end of program space", int64(addr), int64(addr+n))
		}
		return i.image[addr : addr+n], nil
	}
	off := addr - i.heap.base
	if off < 0 || off+n > Word(len(i.heap.arena)) {
		return nil, errors.Errorf("address %#x outside program and heap space", int64(addr))
	}
	return i.heap.arena[off : off+n], nil
}

func (i *Instance) loadWord(addr Word) (Word, error) {
	b, err := i.mem(addr, WordBytes)
	if err != nil {
		return 0, err
	}
	return Word(binary.LittleEndian.Uint64(b)), nil
}

func (i *Instance) storeWord(addr, v Word) error {
	b, err := i.mem(addr, WordBytes)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, uint64(v))
	return nil
}

// loadByte sign-extends the byte at addr to a full word.
func (i *Instance) loadByte(addr Word) (Word, error) {
	b, err := i.mem(addr, 1)
	if err != nil {
		return 0, err
	}
	return Word(int8(b[0])), nil
}

// storeByte writes the low 8 bits of v at addr.
func (i *Instance) storeByte(addr, v Word) error {
	b, err := i.mem(addr, 1)
	if err != nil {
		return err
	}
	b[0] = byte(v)
	return nil
}
