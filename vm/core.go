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

	"github.com/pkg/errors"
)

func truth(b bool) Word {
	if b {
		return 1
	}
	return 0
}

// fail rewinds the instruction pointer onto the offending instruction and
// returns the error.
func (i *Instance) fail(err error) (Word, error) {
	i.ip -= WordBytes
	return 0, err
}

// Run starts the fetch-decode-execute loop at the current instruction
// pointer and runs until the program executes exit or a runtime error
// occurs. It returns the status the program supplied to exit.
//
// If an error occurs, the instruction pointer is left on the instruction
// that triggered it.
func (i *Instance) Run() (status Word, err error) {
	defer func() {
		if e := recover(); e != nil {
			re, ok := e.(error)
			if !ok {
				panic(e)
			}
			i.ip -= WordBytes
			err = errors.Wrapf(re, "recovered error @ip=%d/%d, stack %d", int64(i.ip), len(i.image), len(i.data))
		}
	}()
	for {
		if i.ip < 0 || i.ip+WordBytes > Word(len(i.image)) {
			return 0, errors.Errorf("instruction pointer %d outside program space", int64(i.ip))
		}
		inst := i.image.Word(i.ip)
		i.ip += WordBytes
		i.insCount++

		if !inst.IsInst() {
			i.Push(inst.Imm())
			continue
		}

		switch inst {
		case OpLoad:
			v, err := i.loadWord(i.Pop())
			if err != nil {
				return i.fail(err)
			}
			i.Push(v)
		case OpStore:
			v, addr := i.pop2()
			if err := i.storeWord(addr, v); err != nil {
				return i.fail(err)
			}
		case OpLoadByte:
			v, err := i.loadByte(i.Pop())
			if err != nil {
				return i.fail(err)
			}
			i.Push(v)
		case OpStoreByte:
			v, addr := i.pop2()
			if err := i.storeByte(addr, v); err != nil {
				return i.fail(err)
			}
		case OpExit:
			return i.Pop(), nil

		case OpAdd:
			a, b := i.pop2()
			i.Push(b + a)
		case OpSub:
			a, b := i.pop2()
			i.Push(b - a)
		case OpMul:
			a, b := i.pop2()
			i.Push(b * a)
		case OpDiv:
			a, b := i.pop2()
			if a == 0 {
				return i.fail(errors.New("division by zero"))
			}
			i.Push(b / a)
		case OpMod:
			a, b := i.pop2()
			if a == 0 {
				return i.fail(errors.New("division by zero"))
			}
			i.Push(b % a)
		case OpNegate:
			i.Push(-i.Pop())

		case OpDup:
			v := i.Pop()
			i.Push(v)
			i.Push(v)
		case OpSwap:
			a, b := i.pop2()
			i.Push(a)
			i.Push(b)
		case OpPop:
			i.Pop()

		case OpBand:
			a, b := i.pop2()
			i.Push(b & a)
		case OpBor:
			a, b := i.pop2()
			i.Push(b | a)
		case OpBnot:
			i.Push(^i.Pop())
		case OpXor:
			a, b := i.pop2()
			i.Push(b ^ a)

		case OpShr:
			a, b := i.pop2()
			i.Push(Word(uint64(b) >> uint64(a)))
		case OpShl:
			a, b := i.pop2()
			i.Push(Word(uint64(b) << uint64(a)))
		case OpSar:
			a, b := i.pop2()
			i.Push(b >> uint64(a))
		case OpSal:
			a, b := i.pop2()
			i.Push(b << uint64(a))

		case OpAnd:
			a, b := i.pop2()
			i.Push(truth(b != 0 && a != 0))
		case OpOr:
			a, b := i.pop2()
			i.Push(truth(b != 0 || a != 0))
		case OpNot:
			i.Push(truth(i.Pop() == 0))

		case OpEq:
			a, b := i.pop2()
			i.Push(truth(b == a))
		case OpNe:
			a, b := i.pop2()
			i.Push(truth(b != a))
		case OpGt:
			a, b := i.pop2()
			i.Push(truth(b > a))
		case OpLt:
			a, b := i.pop2()
			i.Push(truth(b < a))
		case OpGte:
			a, b := i.pop2()
			i.Push(truth(b >= a))
		case OpLte:
			a, b := i.pop2()
			i.Push(truth(b <= a))

		case OpJmp:
			i.ip = i.Pop()
		case OpJmpz:
			// branches when the condition below the target is nonzero;
			// the mnemonic is historical
			target, cond := i.pop2()
			if cond != 0 {
				i.ip = target
			}

		case OpMalloc:
			addr, err := i.heap.alloc(i.Pop())
			if err != nil {
				return i.fail(err)
			}
			i.Push(addr)
		case OpFree:
			if err := i.heap.release(i.Pop()); err != nil {
				return i.fail(err)
			}
		case OpWrite:
			length, addr := i.pop2()
			b, err := i.mem(addr, length)
			if err != nil {
				return i.fail(err)
			}
			if _, err := i.output.Write(b); err != nil {
				return i.fail(errors.Wrap(err, "write failed"))
			}
		case OpRead:
			length, addr := i.pop2()
			b, err := i.mem(addr, length)
			if err != nil {
				return i.fail(err)
			}
			if _, err := io.ReadFull(i.input, b); err != nil {
				return i.fail(errors.Wrap(err, "read failed"))
			}
		case OpMemcpy:
			length := i.Pop()
			src, dst := i.pop2()
			sb, err := i.mem(src, length)
			if err != nil {
				return i.fail(err)
			}
			db, err := i.mem(dst, length)
			if err != nil {
				return i.fail(err)
			}
			copy(db, sb)

		default:
			return i.fail(errors.Errorf("unrecognized command %#x", int64(inst)))
		}
	}
}
