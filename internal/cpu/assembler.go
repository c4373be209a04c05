// Package cpu implements the Hack CPU interpreter and its companion
// assembler (spec.md §4.1): A/D/PC registers, A- and C-instruction
// execution, and a two-pass ".asm" to ROM-word compiler.
//
// Grounded on Corewar's asm/parser package: the lexer is the same
// stateFn scanner as internal/vmcode's (itself modeled on
// asm/parser/lex.go), and the assembler's "label pass, then encode"
// split mirrors asm/parser/progam.go's Program.Encode two-pass shape —
// here labels must all be known before encoding (Hack assembly has no
// forward-reference ambiguity to re-resolve, unlike Corewar's).
package cpu

import (
	"strconv"
	"strings"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/word"
)

var predefinedSymbols = map[string]int{
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5, "R6": 6, "R7": 7,
	"R8": 8, "R9": 9, "R10": 10, "R11": 11, "R12": 12, "R13": 13, "R14": 14, "R15": 15,
	"SCREEN": 16384, "KBD": 24576,
}

var compTable = map[string]int{
	"0": 0b0101010, "1": 0b0111111, "-1": 0b0111010,
	"D": 0b0001100, "A": 0b0110000, "!D": 0b0001101, "!A": 0b0110001,
	"-D": 0b0001111, "-A": 0b0110011, "D+1": 0b0011111, "A+1": 0b0110111,
	"D-1": 0b0001110, "A-1": 0b0110010, "D+A": 0b0000010, "D-A": 0b0010011,
	"A-D": 0b0000111, "D&A": 0b0000000, "D|A": 0b0010101,
	"M": 0b1110000, "!M": 0b1110001, "-M": 0b1110011, "M+1": 0b1110111,
	"M-1": 0b1110010, "D+M": 0b1000010, "D-M": 0b1010011, "M-D": 0b1000111,
	"D&M": 0b1000000, "D|M": 0b1010101,
}

var jumpTable = map[string]int{
	"": 0b000, "JGT": 0b001, "JEQ": 0b010, "JGE": 0b011,
	"JLT": 0b100, "JNE": 0b101, "JLE": 0b110, "JMP": 0b111,
}

func destBits(dest string) int {
	bits := 0
	if strings.ContainsRune(dest, 'A') {
		bits |= 0b100
	}
	if strings.ContainsRune(dest, 'D') {
		bits |= 0b010
	}
	if strings.ContainsRune(dest, 'M') {
		bits |= 0b001
	}
	return bits
}

// aInstr is one parsed "@xxx" line, not yet resolved to an address.
type aInstr struct {
	symbol string // non-empty if xxx wasn't a literal number.
	value  int    // literal value, valid only when symbol == "".
}

// cInstr is one parsed "dest=comp;jump" line.
type cInstr struct {
	dest, comp, jump string
}

type asmLine struct {
	isC      bool
	a        aInstr
	c        cInstr
	file     string
	line     int
}

// Assemble compiles Hack assembly source into ROM words (spec.md §4.1).
func Assemble(name, src string) ([]word.Word, error) {
	lines, labels, err := scan(name, src)
	if err != nil {
		return nil, err
	}

	rom := make([]word.Word, 0, len(lines))
	variables := map[string]int{}
	nextVar := 16

	for _, ln := range lines {
		if ln.isC {
			d := destBits(ln.c.dest)
			c, ok := compTable[ln.c.comp]
			if !ok {
				return nil, &AssembleError{File: ln.file, Line: ln.line, Msg: "unknown computation " + ln.c.comp}
			}
			j, ok := jumpTable[ln.c.jump]
			if !ok {
				return nil, &AssembleError{File: ln.file, Line: ln.line, Msg: "unknown jump " + ln.c.jump}
			}
			rom = append(rom, word.Word(0b1110000000000000|c<<6|d<<3|j))
			continue
		}

		addr := ln.a.value
		if ln.a.symbol != "" {
			sym := ln.a.symbol
			if v, ok := predefinedSymbols[sym]; ok {
				addr = v
			} else if v, ok := labels[sym]; ok {
				addr = v
			} else if v, ok := variables[sym]; ok {
				addr = v
			} else {
				variables[sym] = nextVar
				addr = nextVar
				nextVar++
			}
		}
		if addr < 0 || addr > int(word.MaxWord) {
			return nil, &AssembleError{File: ln.file, Line: ln.line, Msg: "address out of range"}
		}
		rom = append(rom, word.Word(addr))
	}

	return rom, nil
}

// scan runs the lexer over src, splitting it into asmLines and
// recording (LABEL) addresses — the first of the two passes.
func scan(name, src string) ([]asmLine, map[string]int, error) {
	l := newLexer(name, src)
	labels := map[string]int{}
	var lines []asmLine
	romIdx := 0

	for {
		toks, err := tokenizeLine(l)
		if err != nil {
			return nil, nil, err
		}
		if toks == nil {
			break
		}
		line, isLabel, labelName, err := parseLine(name, toks)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case isLabel:
			labels[labelName] = romIdx
		case line != nil:
			lines = append(lines, *line)
			romIdx++
		}
	}
	return lines, labels, nil
}

// tokenizeLine collects one source line's tokens (skipping comments and
// blank lines), or returns nil at end of input. A character the lexer
// does not accept is returned as an AssembleError.
func tokenizeLine(l *lexer) ([]item, error) {
	var toks []item
	for {
		it := l.nextItem()
		switch it.typ {
		case itemError:
			return nil, &AssembleError{File: l.name, Line: it.line, Msg: it.val}
		case itemEOF:
			if len(toks) == 0 {
				return nil, nil
			}
			return toks, nil
		case itemComment:
			continue
		case itemNewline:
			if len(toks) == 0 {
				continue
			}
			return toks, nil
		default:
			toks = append(toks, it)
		}
	}
}

func parseLine(name string, toks []item) (*asmLine, bool, string, error) {
	errAt := func(msg string) error {
		return &AssembleError{File: name, Line: toks[0].line, Msg: msg}
	}

	if toks[0].typ == itemLParen {
		if len(toks) != 3 || toks[1].typ != itemIdentifier || toks[2].typ != itemRParen {
			return nil, false, "", errAt("malformed label")
		}
		return nil, true, toks[1].val, nil
	}

	if toks[0].typ == itemAt {
		if len(toks) != 2 || (toks[1].typ != itemIdentifier && toks[1].typ != itemNumber) {
			return nil, false, "", errAt("malformed A-instruction")
		}
		a := aInstr{}
		if toks[1].typ == itemNumber {
			v, err := strconv.Atoi(toks[1].val)
			if err != nil {
				return nil, false, "", errAt("invalid constant")
			}
			a.value = v
		} else {
			a.symbol = toks[1].val
		}
		return &asmLine{isC: false, a: a, file: name, line: toks[0].line}, false, "", nil
	}

	// C-instruction: [dest=]comp[;jump]
	var dest, comp, jump string
	idx := 0
	eq := indexOfType(toks, itemEquals)
	if eq >= 0 {
		dest = joinVals(toks[:eq])
		idx = eq + 1
	}
	semi := indexOfType(toks[idx:], itemSemicolon)
	if semi >= 0 {
		comp = joinVals(toks[idx : idx+semi])
		jump = joinVals(toks[idx+semi+1:])
	} else {
		comp = joinVals(toks[idx:])
	}
	if comp == "" {
		return nil, false, "", errAt("missing computation")
	}
	return &asmLine{isC: true, c: cInstr{dest: dest, comp: comp, jump: jump}, file: name, line: toks[0].line}, false, "", nil
}

func indexOfType(toks []item, t itemType) int {
	for i, tok := range toks {
		if tok.typ == t {
			return i
		}
	}
	return -1
}

func joinVals(toks []item) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.val)
	}
	return sb.String()
}

// AssembleError is a file:line-located assembly failure (spec.md §7).
type AssembleError struct {
	File string
	Line int
	Msg  string
}

func (e *AssembleError) Error() string {
	return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Msg
}

func (e *AssembleError) Unwrap() error { return errs.ErrParse }
