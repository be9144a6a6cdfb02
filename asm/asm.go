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

package asm

import (
	"fmt"
	"io"
	"strings"
	"text/scanner"

	"github.com/mystor/ejasm/vm"
)

// ErrAsm encapsulates errors generated by the assembler. Each entry
// carries the source position (file, line and column) of the offending
// token.
type ErrAsm []struct {
	Pos scanner.Position
	Msg string
}

func (e ErrAsm) Error() string {
	l := make([]string, 0, len(e))
	for _, err := range e {
		l = append(l, fmt.Sprintf("%s: %s", err.Pos, err.Msg))
	}
	return strings.Join(l, "\n")
}

// Assemble compiles assembly read from the supplied io.Reader and returns
// the resulting image and error if any.
//
// The name parameter is used only in error messages to name the source of
// the error. If the io.Reader is a file, name should be the file name.
func Assemble(name string, r io.Reader) (vm.Image, error) {
	return newParser().Parse(name, r)
}

// Disassemble writes a listing of img to w, one word per line. Opcode
// words render as their mnemonic, push words as push(value), and odd
// words that match no opcode as raw data.
func Disassemble(img vm.Image, w io.Writer) error {
	for off := vm.Word(0); off+vm.WordBytes <= vm.Word(len(img)); off += vm.WordBytes {
		wd := img.Word(off)
		var err error
		switch {
		case !wd.IsInst():
			_, err = fmt.Fprintf(w, "%06x: push(%d)\n", int64(off), int64(wd.Imm()))
		case vm.Name(wd) != "":
			_, err = fmt.Fprintf(w, "%06x: %s\n", int64(off), vm.Name(wd))
		default:
			_, err = fmt.Fprintf(w, "%06x: .word %d\n", int64(off), int64(wd))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
