package vmcode

import (
	"strconv"
)

// SourceFile is one ".vm" file to parse, in the order files should be
// loaded (spec.md §4.2: static bases are assigned in parse order).
type SourceFile struct {
	Name string
	Data string
}

type pendingJump struct {
	instrIndex int
	function   string
	label      string
}

type parseState struct {
	prog     *Program
	file     string
	function string
	// labels maps function name -> label name -> resolved instruction index.
	labels map[string]map[string]int
	jumps  []pendingJump
	// maxStatic tracks the highest `static i` index seen in the current file.
	maxStatic int
	sawStatic bool
}

// Parse lexes and parses a set of .vm files into one linked Program.
// Forward goto/if-goto references are resolved in a second pass once
// the whole file set's label tables are complete (spec.md §4.2), and
// label tables are kept per-function, never global (spec.md §9).
func Parse(files []SourceFile) (*Program, error) {
	p := newProgram()
	st := &parseState{prog: p, labels: map[string]map[string]int{}}

	for _, f := range files {
		st.file = f.Name
		st.function = ""
		st.maxStatic = -1
		st.sawStatic = false
		if err := st.parseFile(f); err != nil {
			return nil, err
		}
		count := 0
		if st.sawStatic {
			count = st.maxStatic + 1
		}
		p.staticCounts[f.Name] = count
		p.staticOrder = append(p.staticOrder, f.Name)
	}

	for _, j := range st.jumps {
		table := st.labels[j.function]
		idx, ok := table[j.label]
		if !ok {
			return nil, &ParseError{File: p.Instructions[j.instrIndex].File, Line: p.Instructions[j.instrIndex].Line,
				Msg: "label " + j.label + " not found within function " + j.function}
		}
		p.Instructions[j.instrIndex].TargetIndex = idx
	}

	if err := p.finalizeStatics(); err != nil {
		return nil, err
	}

	return p, nil
}

func (st *parseState) labelTable() map[string]int {
	t, ok := st.labels[st.function]
	if !ok {
		t = map[string]int{}
		st.labels[st.function] = t
	}
	return t
}

func (st *parseState) parseFile(f SourceFile) error {
	lines, err := tokenizeLines(f.Name, f.Data)
	if err != nil {
		return err
	}
	for _, ln := range lines {
		if err := st.parseLine(f.Name, ln); err != nil {
			return err
		}
	}
	return nil
}

type tokLine struct {
	tokens []item
	line   int
	offset int
}

// tokenizeLines groups the lexer's flat token stream into one slice of
// tokens per non-empty source line.
func tokenizeLines(name, data string) ([]tokLine, error) {
	l := newLexer(name, data)
	var lines []tokLine
	var cur []item
	for {
		it := l.nextItem()
		switch it.typ {
		case itemError:
			return nil, &ParseError{File: name, Line: it.line, Msg: it.val}
		case itemComment:
			continue
		case itemNewline:
			if len(cur) > 0 {
				lines = append(lines, tokLine{tokens: cur, line: cur[0].line, offset: int(cur[0].pos)})
				cur = nil
			}
		case itemEOF:
			if len(cur) > 0 {
				lines = append(lines, tokLine{tokens: cur, line: cur[0].line, offset: int(cur[0].pos)})
			}
			return lines, nil
		default:
			cur = append(cur, it)
		}
	}
}

var segmentNames = map[string]Segment{
	"constant": SegConstant,
	"argument": SegArgument,
	"local":    SegLocal,
	"this":     SegThis,
	"that":     SegThat,
	"pointer":  SegPointer,
	"temp":     SegTemp,
	"static":   SegStatic,
}

func (st *parseState) parseLine(file string, ln tokLine) error {
	perr := func(msg string) error {
		return &ParseError{File: file, Line: ln.line, Msg: msg}
	}

	head := ln.tokens[0].val
	args := ln.tokens[1:]

	emit := func(ins Instruction) {
		ins.File = file
		ins.Function = st.function
		ins.Offset = ln.offset
		ins.Line = ln.line
		st.prog.Instructions = append(st.prog.Instructions, ins)
	}

	switch head {
	case "push", "pop":
		if len(args) != 2 {
			return perr(head + ": expected 2 arguments")
		}
		seg, ok := segmentNames[args[0].val]
		if !ok {
			return perr("unknown segment " + args[0].val)
		}
		idx, err := strconv.Atoi(args[1].val)
		if err != nil {
			return perr("invalid index " + args[1].val)
		}
		if head == "push" && seg == SegConstant {
			if idx < 0 || idx > maxConstant {
				return perr("push constant value out of range")
			}
		}
		if seg == SegStatic && idx > st.maxStatic {
			st.maxStatic, st.sawStatic = idx, true
		}
		op := OpPush
		if head == "pop" {
			op = OpPop
		}
		emit(Instruction{Op: op, Segment: seg, Index: idx})

	case "add", "sub", "and", "or", "not", "neg", "eq", "gt", "lt":
		if len(args) != 0 {
			return perr(head + ": expected 0 arguments")
		}
		emit(Instruction{Op: arithOp(head)})

	case "label":
		if len(args) != 1 {
			return perr("label: expected 1 argument")
		}
		st.labelTable()[args[0].val] = len(st.prog.Instructions)

	case "goto", "if-goto":
		if len(args) != 1 {
			return perr(head + ": expected 1 argument")
		}
		op := OpGoto
		if head == "if-goto" {
			op = OpIfGoto
		}
		emit(Instruction{Op: op, Target: args[0].val})
		st.jumps = append(st.jumps, pendingJump{
			instrIndex: len(st.prog.Instructions) - 1,
			function:   st.function,
			label:      args[0].val,
		})

	case "function":
		if len(args) != 2 {
			return perr("function: expected 2 arguments")
		}
		n, err := strconv.Atoi(args[1].val)
		if err != nil {
			return perr("invalid local count " + args[1].val)
		}
		name := args[0].val
		if _, dup := st.prog.Functions[name]; dup {
			return perr("duplicate function definition " + name)
		}
		st.function = name
		idx := len(st.prog.Instructions)
		emit(Instruction{Op: OpFunction, Index: n, Target: name})
		st.prog.Functions[name] = &FunctionInfo{Name: name, File: file, NLocals: n, EntryIndex: idx}

	case "call":
		if len(args) != 2 {
			return perr("call: expected 2 arguments")
		}
		n, err := strconv.Atoi(args[1].val)
		if err != nil {
			return perr("invalid argument count " + args[1].val)
		}
		emit(Instruction{Op: OpCall, Target: args[0].val, Index: n})

	case "return":
		if len(args) != 0 {
			return perr("return: expected 0 arguments")
		}
		emit(Instruction{Op: OpReturn})

	default:
		return perr("unknown opcode " + head)
	}
	return nil
}

func arithOp(name string) Op {
	switch name {
	case "add":
		return OpAdd
	case "sub":
		return OpSub
	case "and":
		return OpAnd
	case "or":
		return OpOr
	case "not":
		return OpNot
	case "neg":
		return OpNeg
	case "eq":
		return OpEq
	case "gt":
		return OpGt
	case "lt":
		return OpLt
	default:
		panic("unreachable")
	}
}
