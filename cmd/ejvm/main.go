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
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mystor/ejasm/vm"
)

var (
	debug bool
	stats bool
)

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
	if i != nil {
		fmt.Fprintf(os.Stderr, "ip: %v, stack: %v\n", i.IP(), i.Data())
	}
	os.Exit(1)
}

func run(fileName string) {
	img, err := vm.Load(fileName)
	if err != nil {
		atExit(nil, err)
	}

	stdout := bufio.NewWriter(os.Stdout)
	i, err := vm.New(img,
		vm.Input(bufio.NewReader(os.Stdin)),
		vm.Output(stdout))
	if err != nil {
		atExit(nil, err)
	}

	start := time.Now()
	status, err := i.Run()
	stdout.Flush()
	if stats {
		delta := time.Since(start)
		fmt.Fprintf(os.Stderr, "Executed %d instructions in %v (%.3f MHz).\n", i.InstructionCount(), delta,
			float64(i.InstructionCount())/float64(delta)*float64(time.Second)/1e6)
	}
	atExit(i, err)
	os.Exit(int(status))
}

func main() {
	cmd := &cobra.Command{
		Use:   "ejvm PROGRAM",
		Short: "Run an ejasm bytecode image",
		Long: `ejvm loads the image in PROGRAM and executes it from offset 0. The
process exits with the status the program supplies to exit; any abnormal
termination exits non-zero.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			run(args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug diagnostics")
	cmd.Flags().BoolVar(&stats, "stats", false, "print performance statistics upon exit")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
