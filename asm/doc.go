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

// Package asm assembles textual ejasm programs into the raw word images
// executed by the vm package, and disassembles such images back to text.
//
// Input is plain ASCII split at whitespace (space, tab, CR, LF). The
// grammar is tiny:
//
//	program   := (token ws)*
//	token     := label | instr | literal
//	label     := ident ':'
//	instr     := ident | push '(' inner ')'
//	inner     := literal | ident | push '(' inner ')'
//	literal   := '-'? [0-9]+
//	ident     := [A-Za-z]+
//
// Identifiers name either an opcode from the shared table or a
// user-defined label; the two live in one namespace and a label may not
// reuse an opcode mnemonic. Literals are decimal only, and comments are
// not supported.
//
// Labels:
//
// A label is defined by suffixing an identifier with a colon and takes
// the current output offset as its value, padded up to the next word
// boundary. Forward references are fine - every reference is emitted as
// a placeholder and patched once the whole program has been scanned:
//
//	push(end) jmp
//	push(1) exit
//	end: push(0) exit
//
// Labels may not be defined inside a push expression, and no symbol may
// be defined twice.
//
// Push expressions:
//
// push is the only instruction with a payload. push(x) emits a single
// word holding x shifted left one bit, which the VM recognizes by its
// clear low bit and pushes back as x. The form nests: each enclosing
// push( shifts the inner token one additional bit, so push(push(5))
// emits 5 shifted twice. A bare label reference compiles to the label's
// raw offset in the instruction slot - the VM would fetch and execute
// that word - so code that wants a label's address as data must write
// push(label).
//
// Bare literals are emitted verbatim into the instruction stream. This
// is the escape hatch for hand-encoding words and reserving data cells:
//
//	buf: 0
//
// reserves one zeroed word at buf.
//
// All errors are fatal. Assemble reports them with the source line and
// column of the offending token.
package asm
