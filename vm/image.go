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
	"os"

	"github.com/pkg/errors"
)

// WordBytes is the size in bytes of one machine word in an image.
const WordBytes = 8

// Image is a program image: a flat stream of little-endian 64-bit words
// with no header, no sections and no symbol table. Execution starts at
// byte offset 0. Labels are erased at assembly time; only their resolved
// values survive.
type Image []byte

// Word returns the word stored at byte offset off.
func (m Image) Word(off Word) Word {
	return Word(binary.LittleEndian.Uint64(m[off:]))
}

// SetWord stores v at byte offset off.
func (m Image) SetWord(off, v Word) {
	binary.LittleEndian.PutUint64(m[off:], uint64(v))
}

// Load reads a program image from fileName.
func Load(fileName string) (Image, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	if len(b)%WordBytes != 0 {
		return nil, errors.Errorf("%v: image size %d is not a whole number of words", fileName, len(b))
	}
	return Image(b), nil
}
