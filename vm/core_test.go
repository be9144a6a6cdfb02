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

package vm_test

import (
	"bytes"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mystor/ejasm/asm"
	"github.com/mystor/ejasm/vm"
)

func assemble(src string) vm.Image {
	GinkgoHelper()
	img, err := asm.Assemble("test", strings.NewReader(src))
	Expect(err).NotTo(HaveOccurred())
	return img
}

// runProgram assembles src, runs it and returns the exit status.
func runProgram(src string, opts ...vm.Option) vm.Word {
	GinkgoHelper()
	i, err := vm.New(assemble(src), opts...)
	Expect(err).NotTo(HaveOccurred())
	status, err := i.Run()
	Expect(err).NotTo(HaveOccurred())
	return status
}

// failProgram assembles src, runs it and returns the runtime error.
func failProgram(src string) error {
	GinkgoHelper()
	i, err := vm.New(assemble(src))
	Expect(err).NotTo(HaveOccurred())
	_, err = i.Run()
	Expect(err).To(HaveOccurred())
	return err
}

var _ = Describe("Run", func() {
	Describe("push words and exit", func() {
		It("exits with the pushed status", func() {
			Expect(runProgram("push(42) exit")).To(Equal(vm.Word(42)))
		})

		It("pushes negative immediates", func() {
			Expect(runProgram("push(-1) exit")).To(Equal(vm.Word(-1)))
		})
	})

	Describe("arithmetic", func() {
		It("computes (2+3)-1", func() {
			Expect(runProgram("push(2) push(3) add push(1) sub exit")).To(Equal(vm.Word(4)))
		})

		It("subtracts the top from the value below it", func() {
			Expect(runProgram("push(1) push(8) sub exit")).To(Equal(vm.Word(-7)))
		})

		It("multiplies", func() {
			Expect(runProgram("push(-6) push(7) mul exit")).To(Equal(vm.Word(-42)))
		})

		It("divides truncating toward zero", func() {
			Expect(runProgram("push(7) push(2) div exit")).To(Equal(vm.Word(3)))
			Expect(runProgram("push(-7) push(2) div exit")).To(Equal(vm.Word(-3)))
		})

		It("takes the remainder", func() {
			Expect(runProgram("push(-7) push(2) mod exit")).To(Equal(vm.Word(-1)))
		})

		It("negates twice back to the original", func() {
			Expect(runProgram("push(5) negate negate exit")).To(Equal(vm.Word(5)))
			Expect(runProgram("push(5) negate exit")).To(Equal(vm.Word(-5)))
		})
	})

	Describe("stack operations", func() {
		It("duplicates the top", func() {
			Expect(runProgram("push(7) dup add exit")).To(Equal(vm.Word(14)))
		})

		It("swaps the top two entries", func() {
			Expect(runProgram("push(1) push(8) swap sub exit")).To(Equal(vm.Word(7)))
		})

		It("pops the top", func() {
			Expect(runProgram("push(3) push(9) pop exit")).To(Equal(vm.Word(3)))
		})

		It("leaves the stack alone across dup pop", func() {
			i, err := vm.New(assemble("push(5) dup pop push(0) exit"))
			Expect(err).NotTo(HaveOccurred())
			_, err = i.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(i.Data()).To(Equal([]vm.Word{5}))
		})
	})

	Describe("bitwise operations", func() {
		It("ands, ors and xors", func() {
			Expect(runProgram("push(12) push(10) band exit")).To(Equal(vm.Word(8)))
			Expect(runProgram("push(12) push(10) bor exit")).To(Equal(vm.Word(14)))
			Expect(runProgram("push(12) push(10) xor exit")).To(Equal(vm.Word(6)))
		})

		It("complements twice back to the original", func() {
			Expect(runProgram("push(0) bnot exit")).To(Equal(vm.Word(-1)))
			Expect(runProgram("push(77) bnot bnot exit")).To(Equal(vm.Word(77)))
		})
	})

	Describe("shifts", func() {
		It("shifts left", func() {
			Expect(runProgram("push(3) push(2) shl exit")).To(Equal(vm.Word(12)))
			Expect(runProgram("push(3) push(2) sal exit")).To(Equal(vm.Word(12)))
		})

		It("shifts right logically", func() {
			Expect(runProgram("push(-1) push(1) shr exit")).To(Equal(vm.Word(math.MaxInt64)))
		})

		It("shifts right arithmetically", func() {
			Expect(runProgram("push(-8) push(1) sar exit")).To(Equal(vm.Word(-4)))
			Expect(runProgram("push(-1) push(1) sar exit")).To(Equal(vm.Word(-1)))
		})
	})

	Describe("boolean operations", func() {
		It("treats nonzero as true", func() {
			Expect(runProgram("push(5) push(-3) and exit")).To(Equal(vm.Word(1)))
			Expect(runProgram("push(5) push(0) and exit")).To(Equal(vm.Word(0)))
			Expect(runProgram("push(0) push(-3) or exit")).To(Equal(vm.Word(1)))
			Expect(runProgram("push(0) push(0) or exit")).To(Equal(vm.Word(0)))
		})

		It("inverts truth", func() {
			Expect(runProgram("push(0) not exit")).To(Equal(vm.Word(1)))
			Expect(runProgram("push(9) not exit")).To(Equal(vm.Word(0)))
		})
	})

	Describe("comparisons", func() {
		It("compares signed", func() {
			Expect(runProgram("push(-1) push(1) lt exit")).To(Equal(vm.Word(1)))
			Expect(runProgram("push(-1) push(1) gt exit")).To(Equal(vm.Word(0)))
			Expect(runProgram("push(4) push(4) eq exit")).To(Equal(vm.Word(1)))
			Expect(runProgram("push(4) push(4) ne exit")).To(Equal(vm.Word(0)))
			Expect(runProgram("push(4) push(4) gte exit")).To(Equal(vm.Word(1)))
			Expect(runProgram("push(4) push(5) lte exit")).To(Equal(vm.Word(1)))
		})
	})

	Describe("control flow", func() {
		It("jumps forward over dead code", func() {
			Expect(runProgram("push(end) jmp push(1) exit end: push(0) exit")).To(Equal(vm.Word(0)))
		})

		It("fetches the next word at the jump target", func() {
			Expect(runProgram("push(skip) jmp push(1) exit skip: push(2) exit")).To(Equal(vm.Word(2)))
		})

		It("jmpz branches when the condition is nonzero", func() {
			Expect(runProgram("push(1) push(yes) jmpz push(9) exit yes: push(7) exit")).To(Equal(vm.Word(7)))
		})

		It("jmpz falls through when the condition is zero", func() {
			Expect(runProgram("push(0) push(yes) jmpz push(9) exit yes: push(7) exit")).To(Equal(vm.Word(9)))
		})

		It("loops until the counter runs out", func() {
			Expect(runProgram("push(10) again: push(1) sub dup push(again) jmpz exit")).To(Equal(vm.Word(0)))
		})
	})

	Describe("memory", func() {
		It("stores and loads in program space", func() {
			Expect(runProgram("push(data) push(123) store push(data) load exit data: 0")).To(Equal(vm.Word(123)))
		})

		It("sign-extends loadbyte", func() {
			Expect(runProgram("push(data) push(255) storebyte push(data) loadbyte exit data: 0")).To(Equal(vm.Word(-1)))
		})

		It("truncates storebyte to the low 8 bits", func() {
			Expect(runProgram("push(data) push(300) storebyte push(data) loadbyte exit data: 0")).To(Equal(vm.Word(44)))
		})

		It("copies bytes with memcpy", func() {
			Expect(runProgram("push(dst) push(src) push(8) memcpy push(dst) load exit src: 999 dst: 0")).To(Equal(vm.Word(999)))
		})
	})

	Describe("heap", func() {
		It("round-trips a word through a malloc'd block", func() {
			Expect(runProgram("push(8) malloc dup push(4660) store load exit")).To(Equal(vm.Word(4660)))
		})

		It("returns addresses beyond program space", func() {
			i, err := vm.New(assemble("push(8) malloc exit"))
			Expect(err).NotTo(HaveOccurred())
			status, err := i.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(BeNumerically(">=", i.ProgramSize()))
		})

		It("frees a block and keeps running", func() {
			Expect(runProgram("push(8) malloc free push(0) exit")).To(Equal(vm.Word(0)))
		})

		It("reuses a freed block", func() {
			src := "push(8) malloc dup free push(8) malloc eq exit"
			Expect(runProgram(src)).To(Equal(vm.Word(1)))
		})
	})

	Describe("input and output", func() {
		It("writes raw bytes to the output", func() {
			out := &bytes.Buffer{}
			// the word at msg spells "hello" in little-endian order
			status := runProgram("push(msg) push(5) write push(0) exit msg: 478560413032",
				vm.Output(out))
			Expect(status).To(Equal(vm.Word(0)))
			Expect(out.String()).To(Equal("hello"))
		})

		It("reads raw bytes from the input", func() {
			status := runProgram("push(buf) push(2) read push(buf) loadbyte exit buf: 0",
				vm.Input(strings.NewReader("AB")))
			Expect(status).To(Equal(vm.Word(65)))
		})
	})

	Describe("runtime errors", func() {
		It("rejects division by zero", func() {
			Expect(failProgram("push(1) push(0) div exit").Error()).To(ContainSubstring("division by zero"))
			Expect(failProgram("push(1) push(0) mod exit").Error()).To(ContainSubstring("division by zero"))
		})

		It("rejects unknown opcodes", func() {
			Expect(failProgram("11 exit").Error()).To(ContainSubstring("unrecognized command"))
		})

		It("detects stack underflow", func() {
			Expect(failProgram("add exit").Error()).To(ContainSubstring("data stack underflow"))
		})

		It("stops when the instruction pointer leaves program space", func() {
			Expect(failProgram("push(0)").Error()).To(ContainSubstring("instruction pointer"))
		})

		It("rejects freeing an address that was never allocated", func() {
			Expect(failProgram("push(0) free exit").Error()).To(ContainSubstring("not an allocated address"))
		})

		It("rejects loads outside program and heap space", func() {
			Expect(failProgram("push(-1) load exit").Error()).To(ContainSubstring("outside program and heap space"))
		})
	})

	Describe("statistics", func() {
		It("counts fetched words", func() {
			i, err := vm.New(assemble("push(1) exit"))
			Expect(err).NotTo(HaveOccurred())
			_, err = i.Run()
			Expect(err).NotTo(HaveOccurred())
			Expect(i.InstructionCount()).To(Equal(int64(2)))
		})
	})
})
