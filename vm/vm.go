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
	"io"
	"os"

	"github.com/pkg/errors"
)

// Option configures an Instance at creation time.
type Option func(i *Instance) error

// Input sets the reader backing the read builtin. The default is
// os.Stdin.
func Input(r io.Reader) Option {
	return func(i *Instance) error { i.input = r; return nil }
}

// Output sets the writer backing the write builtin. The default is
// os.Stdout.
func Output(w io.Writer) Option {
	return func(i *Instance) error { i.output = w; return nil }
}

// DataSize presizes the data stack to hold size words before it has to
// grow. The stack itself is unbounded.
func DataSize(size int) Option {
	return func(i *Instance) error {
		if size < 0 {
			return errors.Errorf("invalid data stack size %d", size)
		}
		i.data = make([]Word, 0, size)
		return nil
	}
}

// Instance is a single virtual machine: a program image, an instruction
// pointer, a data stack and a heap. Instances are not safe for concurrent
// use; execution is strictly sequential.
type Instance struct {
	ip       Word
	image    Image
	data     []Word
	heap     heap
	input    io.Reader
	output   io.Writer
	insCount int64
}

// New creates a VM instance over the given program image. The image is
// owned by the instance for its lifetime and is writable by the running
// program; self-modifying images are permitted.
func New(image Image, opts ...Option) (*Instance, error) {
	i := &Instance{
		image:  image,
		input:  os.Stdin,
		output: os.Stdout,
	}
	i.heap.base = Word(len(image))
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	if i.data == nil {
		i.data = make([]Word, 0, 1024)
	}
	return i, nil
}

// Push pushes v on top of the data stack.
func (i *Instance) Push(v Word) {
	i.data = append(i.data, v)
}

// Pop pops the value on top of the data stack and returns it. Popping an
// empty stack panics; Run recovers the panic into an error.
func (i *Instance) Pop() Word {
	sp := len(i.data) - 1
	if sp < 0 {
		panic(errUnderflow)
	}
	v := i.data[sp]
	i.data = i.data[:sp]
	return v
}

// pop2 pops the top two stack entries: a is the top, b the entry below it.
func (i *Instance) pop2() (a, b Word) {
	a = i.Pop()
	b = i.Pop()
	return a, b
}

// Data returns the data stack, bottom first. Value changes are reflected
// in the instance's stack; use Push and Pop to add or remove values.
func (i *Instance) Data() []Word {
	return i.data
}

// Depth returns the data stack depth.
func (i *Instance) Depth() int {
	return len(i.data)
}

// IP returns the current instruction pointer.
func (i *Instance) IP() Word {
	return i.ip
}

// ProgramSize returns the size S of program space in bytes. Addresses in
// [0, S) map into the image; addresses at or above S map into the heap.
func (i *Instance) ProgramSize() Word {
	return Word(len(i.image))
}

// InstructionCount returns the number of words fetched so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}
