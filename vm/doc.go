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

// Package vm implements the ejasm virtual machine: a stack machine over
// 64-bit words executing the raw little-endian images produced by the
// assembler.
//
// The machine fetches one word at a time. A word with its least
// significant bit clear is a push: its upper 63 bits are pushed on the
// data stack as a signed value. A word with the bit set is dispatched
// against the opcode table; all opcode values are odd, so the tag bit
// alone classifies every word and no prefix or operand bytes exist in
// the stream.
//
// Memory is a single flat address space split in two. Addresses in
// [0, S), where S is the image size, read and write the image itself -
// programs are free to modify their own code. Addresses at or above S
// are heap addresses: malloc returns them, biased by S, from an arena
// owned by the instance, and free releases them. The two spaces never
// collide.
//
// Binary operations take their left operand from below the top of the
// stack, so
//
//	push(7) push(2) sub
//
// leaves 5. The exit opcode stops the machine and yields its operand as
// the process exit status; Run returns it.
//
// The read and write builtins perform synchronous, raw byte I/O on the
// instance's input and output, which default to the standard streams and
// can be redirected with the Input and Output options.
package vm
