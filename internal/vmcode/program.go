// Package vmcode implements the VM bytecode parser of spec.md §4.2: a
// lexer plus a two-pass parser that turns a set of ".vm" source files
// into the flat, labeled, numerically indexed instruction stream of
// spec.md §3.3, complete with a per-function label table, a function
// table, a per-file static-segment map, and per-instruction debug
// metadata.
//
// Grounded on Corewar's asm/parser package: the lexer in lexer.go
// is lex.go's stateFn scanner with the token set cut down to this
// grammar, and the two-pass label resolution here mirrors
// asm/parser/progam.go's Program.Encode(), which encodes once, and
// only re-encodes if a label was still missing the first time.
package vmcode

import "go.n2tcore.dev/emu/internal/word"

// Op is a VM bytecode opcode (spec.md §3.3).
type Op int

const (
	OpPush Op = iota
	OpPop
	OpAdd
	OpSub
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpEq
	OpGt
	OpLt
	OpLabel // Compile-time marker only; never appears in the final instruction stream.
	OpGoto
	OpIfGoto
	OpFunction
	OpCall
	OpReturn
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	case OpNeg:
		return "neg"
	case OpEq:
		return "eq"
	case OpGt:
		return "gt"
	case OpLt:
		return "lt"
	case OpLabel:
		return "label"
	case OpGoto:
		return "goto"
	case OpIfGoto:
		return "if-goto"
	case OpFunction:
		return "function"
	case OpCall:
		return "call"
	case OpReturn:
		return "return"
	default:
		return "unknown"
	}
}

// Segment names a push/pop memory segment (spec.md §3.3).
type Segment int

const (
	SegConstant Segment = iota
	SegArgument
	SegLocal
	SegThis
	SegThat
	SegPointer
	SegTemp
	SegStatic
)

func (s Segment) String() string {
	switch s {
	case SegConstant:
		return "constant"
	case SegArgument:
		return "argument"
	case SegLocal:
		return "local"
	case SegThis:
		return "this"
	case SegThat:
		return "that"
	case SegPointer:
		return "pointer"
	case SegTemp:
		return "temp"
	case SegStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Instruction is one entry of the flat, runtime instruction stream.
// Labels never appear here: they are resolved at parse time into
// TargetIndex on the goto/if-goto instructions that reference them.
type Instruction struct {
	Op      Op
	Segment Segment // push/pop only.
	Index   int     // push/pop segment index; function's n_locals; call's n_args.
	Target  string  // goto/if-goto/call's textual target name.

	// TargetIndex is the resolved instruction index for goto/if-goto,
	// filled in by the parser's second pass.
	TargetIndex int

	// Debug metadata (spec.md §3.3).
	File     string
	Function string
	Offset   int
	Line     int
}

// FunctionInfo describes one function known to the parsed program.
// EntryIndex points at the "function F n" instruction itself: per
// spec.md §4.4, that instruction's own effect (pushing n_locals zeros)
// is what completes a freshly-called frame.
type FunctionInfo struct {
	Name       string
	File       string
	NLocals    int
	EntryIndex int
}

// Program is the parsed, linkable form of a set of .vm files.
type Program struct {
	Instructions []Instruction
	Functions    map[string]*FunctionInfo

	// StaticBases maps a source file name to the first RAM address its
	// `static` segment owns (spec.md §4.2).
	StaticBases map[string]int

	staticCounts      map[string]int // file -> count, in file-parse order.
	staticOrder       []string
	totalStaticWords  int
}

const maxConstant = int(word.MaxWord)
const maxStaticWords = 240
const staticRegionStart = 16

func newProgram() *Program {
	return &Program{
		Functions:    map[string]*FunctionInfo{},
		StaticBases:  map[string]int{},
		staticCounts: map[string]int{},
	}
}

// finalizeStatics assigns StaticBases in file-parse order once every
// file's static count is known (spec.md §4.2: "static_base[F] = 16 +
// sum(prior file static counts)").
func (p *Program) finalizeStatics() error {
	base := staticRegionStart
	total := 0
	for _, f := range p.staticOrder {
		p.StaticBases[f] = base
		count := p.staticCounts[f]
		base += count
		total += count
	}
	p.totalStaticWords = total
	if total > maxStaticWords {
		return &ParseError{Msg: "total static segment usage exceeds 240 words"}
	}
	return nil
}
