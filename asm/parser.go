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
	"encoding/binary"
	"io"
	"strconv"
	"text/scanner"

	"github.com/mystor/ejasm/vm"
)

const maxErrors = 10

// site records where a symbol was referenced: the position in the source
// stream and the byte offset of the instruction slot awaiting the value.
// The slot itself holds the push nesting depth at the reference until
// resolution overwrites it.
type site struct {
	pos    scanner.Position
	offset vm.Word
}

// parser provides the parsing and compiling. Symbol references are
// emitted as placeholders during the single scan and patched in a second
// phase once every label is known, so forward references cost nothing.
type parser struct {
	s     scanner.Scanner
	out   []byte
	depth int

	defined map[string]vm.Word
	pending map[string][]site
	order   []string // pending keys in first-use order

	havePeek bool
	peekTok  rune
	peekTxt  string
	peekPos  scanner.Position

	errs ErrAsm
}

func newParser() *parser {
	p := &parser{
		defined: make(map[string]vm.Word, len(vm.Opcodes)),
		pending: make(map[string][]site),
	}
	for _, e := range vm.Opcodes {
		p.defined[e.Name] = e.Code
	}
	return p
}

// helper to build ErrAsm items.
func asmError(pos scanner.Position, msg string) struct {
	Pos scanner.Position
	Msg string
} {
	return struct {
		Pos scanner.Position
		Msg string
	}{pos, msg}
}

func (p *parser) errorf(pos scanner.Position, msg string) {
	p.errs = append(p.errs, asmError(pos, msg))
}

// abort returns true if the parser should stop due to too many errors.
func (p *parser) abort() bool { return len(p.errs) >= maxErrors }

// next returns the next token, honoring a single token of pushback.
func (p *parser) next() (rune, string, scanner.Position) {
	if p.havePeek {
		p.havePeek = false
		return p.peekTok, p.peekTxt, p.peekPos
	}
	tok := p.s.Scan()
	pos := p.s.Position
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	return tok, p.s.TokenText(), pos
}

func (p *parser) pushBack(tok rune, txt string, pos scanner.Position) {
	p.peekTok, p.peekTxt, p.peekPos, p.havePeek = tok, txt, pos, true
}

func (p *parser) offset() vm.Word {
	return vm.Word(len(p.out))
}

func (p *parser) emitWord(w vm.Word) {
	var b [vm.WordBytes]byte
	binary.LittleEndian.PutUint64(b[:], uint64(w))
	p.out = append(p.out, b[:]...)
}

// align pads the output with zero bytes up to the next word boundary.
// Label values are always word aligned.
func (p *parser) align() {
	for len(p.out)%vm.WordBytes != 0 {
		p.out = append(p.out, 0)
	}
}

// parseInt converts a scanned integer token. Only decimal literals are
// part of the grammar; anything else the scanner accepted is rejected
// here.
func (p *parser) parseInt(txt string, pos scanner.Position) (vm.Word, bool) {
	for _, c := range txt {
		if c < '0' || c > '9' {
			p.errorf(pos, "malformed number "+txt)
			return 0, false
		}
	}
	n, err := strconv.ParseInt(txt, 10, 64)
	if err != nil {
		p.errorf(pos, "number "+txt+" out of range")
		return 0, false
	}
	return vm.Word(n), true
}

// ident handles a scanned identifier: a label definition, the opening of
// a push expression, or a symbol reference. Returns whether a push was
// opened (in which case the caller must not close out parens yet) and
// whether parsing may continue.
func (p *parser) ident(id string, pos scanner.Position) (openedPush, ok bool) {
	tok, txt, npos := p.next()
	switch {
	case tok == ':':
		if p.depth > 0 {
			p.errorf(pos, "labels cannot be defined inside a push expression")
			return false, false
		}
		if _, exists := p.defined[id]; exists {
			p.errorf(pos, "symbol "+id+" already defined")
			return false, false
		}
		p.align()
		p.defined[id] = p.offset()
		return false, true
	case id == "push":
		if tok != '(' {
			p.errorf(pos, "the push instruction takes an argument (like push(5))")
			return false, false
		}
		p.depth++
		return true, true
	default:
		p.pushBack(tok, txt, npos)
		p.align()
		if _, seen := p.pending[id]; !seen {
			p.order = append(p.order, id)
		}
		p.pending[id] = append(p.pending[id], site{pos, p.offset()})
		// the slot carries the depth until resolution
		p.emitWord(vm.Word(p.depth))
		return false, true
	}
}

// closePushes consumes the closing brackets of every currently open push
// expression. The grammar admits exactly one token per push level, so all
// enclosing levels close immediately after that token.
func (p *parser) closePushes() bool {
	for p.depth > 0 {
		tok, _, pos := p.next()
		switch tok {
		case ')':
			p.depth--
		case scanner.EOF:
			p.errorf(pos, "unexpected end of file inside push expression")
			return false
		default:
			p.errorf(pos, "expected closing bracket for push expression")
			return false
		}
	}
	return true
}

// resolve patches every pending reference with its symbol value, shifted
// by the depth recorded in the slot.
func (p *parser) resolve() {
	img := vm.Image(p.out)
	for _, id := range p.order {
		if p.abort() {
			return
		}
		sites := p.pending[id]
		value, ok := p.defined[id]
		if !ok {
			p.errorf(sites[0].pos, "undeclared symbol "+id)
			continue
		}
		for _, s := range sites {
			depth := img.Word(s.offset)
			img.SetWord(s.offset, value<<depth)
		}
	}
}

// Parse does the parsing and compiling. Returns the compiled image and
// any error that occurred. If not nil, the returned error can safely be
// cast to an ErrAsm value.
func (p *parser) Parse(name string, r io.Reader) (vm.Image, error) {
	p.s.Init(r)
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts
	p.s.IsIdentRune = func(ch rune, i int) bool {
		return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
	}
	p.s.Filename = name
	p.s.Error = func(s *scanner.Scanner, msg string) {
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.errs = append(p.errs, asmError(pos, msg))
	}

scan:
	for {
		tok, txt, pos := p.next()
		if len(p.errs) > 0 {
			break scan
		}
		switch tok {
		case scanner.EOF:
			if p.depth > 0 {
				p.errorf(pos, "unexpected end of file inside push expression")
			}
			break scan
		case scanner.Ident:
			opened, ok := p.ident(txt, pos)
			if !ok {
				break scan
			}
			if opened {
				continue
			}
		case scanner.Int:
			n, ok := p.parseInt(txt, pos)
			if !ok {
				break scan
			}
			p.emitWord(n << p.depth)
		case '-':
			ntok, ntxt, npos := p.next()
			if ntok != scanner.Int {
				p.errorf(pos, "expected number after -")
				break scan
			}
			n, ok := p.parseInt(ntxt, npos)
			if !ok {
				break scan
			}
			p.emitWord(-n << p.depth)
		default:
			p.errorf(pos, "unrecognised token "+scanner.TokenString(tok))
			break scan
		}
		if !p.closePushes() {
			break scan
		}
	}

	if len(p.errs) == 0 {
		p.resolve()
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return vm.Image(p.out), nil
}
