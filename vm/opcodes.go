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

// Word is the machine word. Every value in the system - instructions,
// immediates, addresses and stack entries - is a signed 64-bit Word.
//
// The least significant bit of an image word tags its kind: an opcode word
// has the bit set, a push word has it clear and carries its immediate in
// the upper 63 bits. All opcode values below are odd, so the tag bit alone
// classifies every word.
type Word int64

// IsInst reports whether w decodes as an instruction rather than a push.
func (w Word) IsInst() bool { return w&1 == 1 }

// Imm returns the immediate carried by a push word.
func (w Word) Imm() Word { return w >> 1 }

// Pushed returns the push word encoding of v.
func Pushed(v Word) Word { return v << 1 }

// Virtual machine opcodes.
const (
	// memory
	OpLoad      Word = 0x01
	OpStore     Word = 0x03
	OpExit      Word = 0x05
	OpLoadByte  Word = 0x07
	OpStoreByte Word = 0x09

	// basic math
	OpAdd    Word = 0x11
	OpSub    Word = 0x13
	OpMul    Word = 0x15
	OpDiv    Word = 0x17
	OpMod    Word = 0x19
	OpNegate Word = 0x1B

	// stack operations
	OpDup  Word = 0x21
	OpSwap Word = 0x23
	OpPop  Word = 0x25

	// bitwise operations
	OpBand Word = 0x31
	OpBor  Word = 0x33
	OpBnot Word = 0x35
	OpXor  Word = 0x37

	// bit-shifts
	OpShr Word = 0x39
	OpShl Word = 0x3B
	OpSar Word = 0x3D
	OpSal Word = 0x3F

	// boolean operations
	OpAnd Word = 0x41
	OpOr  Word = 0x43
	OpNot Word = 0x45

	// comparison operations
	OpEq  Word = 0x47
	OpNe  Word = 0x49
	OpGt  Word = 0x4B
	OpLt  Word = 0x4D
	OpGte Word = 0x4F
	OpLte Word = 0x51

	// control flow operations
	OpJmp  Word = 0x61
	OpJmpz Word = 0x63

	// built in operations
	OpMalloc Word = 0xA1
	OpFree   Word = 0xA3
	OpWrite  Word = 0xA5
	OpRead   Word = 0xA7
	OpMemcpy Word = 0xA9
)

// Opcodes is the authoritative mnemonic table shared by the assembler and
// the interpreter. The assembler seeds its symbol table from it and the
// VM derives opcode names from it; neither keeps a copy of its own.
var Opcodes = [...]struct {
	Name string
	Code Word
}{
	{"load", OpLoad},
	{"store", OpStore},
	{"exit", OpExit},
	{"loadbyte", OpLoadByte},
	{"storebyte", OpStoreByte},
	{"add", OpAdd},
	{"sub", OpSub},
	{"mul", OpMul},
	{"div", OpDiv},
	{"mod", OpMod},
	{"negate", OpNegate},
	{"dup", OpDup},
	{"swap", OpSwap},
	{"pop", OpPop},
	{"band", OpBand},
	{"bor", OpBor},
	{"bnot", OpBnot},
	{"xor", OpXor},
	{"shr", OpShr},
	{"shl", OpShl},
	{"sar", OpSar},
	{"sal", OpSal},
	{"and", OpAnd},
	{"or", OpOr},
	{"not", OpNot},
	{"eq", OpEq},
	{"ne", OpNe},
	{"gt", OpGt},
	{"lt", OpLt},
	{"gte", OpGte},
	{"lte", OpLte},
	{"jmp", OpJmp},
	{"jmpz", OpJmpz},
	{"malloc", OpMalloc},
	{"free", OpFree},
	{"write", OpWrite},
	{"read", OpRead},
	{"memcpy", OpMemcpy},
}

var opcodeNames = make(map[Word]string, len(Opcodes))

func init() {
	for _, e := range Opcodes {
		opcodeNames[e.Code] = e.Name
	}
}

// Name returns the mnemonic for an opcode word, or the empty string if the
// word is not a known opcode.
func Name(code Word) string {
	return opcodeNames[code]
}
