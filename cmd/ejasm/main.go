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

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mystor/ejasm/asm"
	"github.com/mystor/ejasm/internal/ejio"
)

// outFile is a flag value that rejects being set twice; specifying more
// than one output file is an error, not a silent override.
type outFile struct {
	name string
	set  bool
}

func (o *outFile) String() string { return o.name }
func (o *outFile) Type() string   { return "filename" }

func (o *outFile) Set(s string) error {
	if o.set {
		return errors.New("you can only specify one output file")
	}
	o.name = s
	o.set = true
	return nil
}

var (
	output = outFile{name: "-"}
	dump   bool
)

func assemble(args []string) error {
	inName := "-"
	if len(args) == 1 {
		inName = args[0]
	}

	var in io.Reader = os.Stdin
	name := "stdin"
	if inName != "-" {
		f, err := os.Open(inName)
		if err != nil {
			return err
		}
		defer f.Close()
		in = bufio.NewReader(f)
		name = inName
	}

	img, err := asm.Assemble(name, in)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if output.name != "-" {
		f, err := os.Create(output.name)
		if err != nil {
			return err
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		defer bw.Flush()
		out = bw
	}
	w := ejio.NewErrWriter(out)
	w.Write(img)
	if w.Err != nil {
		return w.Err
	}

	if dump {
		return asm.Disassemble(img, os.Stderr)
	}
	return nil
}

func main() {
	cmd := &cobra.Command{
		Use:   "ejasm [INPUT]",
		Short: "Assemble an ejasm program into a bytecode image",
		Long: `ejasm assembles a textual program into the raw word image executed by
ejvm. INPUT of "-" (the default) reads from standard input; likewise the
image is written to standard output unless -o names a file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return assemble(args)
		},
	}
	cmd.Flags().VarP(&output, "output", "o", "write the image to `filename` instead of standard output")
	cmd.Flags().BoolVar(&dump, "dump", false, "write a disassembly listing to standard error")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
