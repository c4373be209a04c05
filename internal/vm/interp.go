// Package vm implements the VM bytecode interpreter of spec.md §4.3-4.5:
// a dispatch loop over a parsed vmcode.Program, the call/return frame
// protocol, and the resumable built-in standard library bridge.
//
// Grounded on Corewar's vm/vm.go: the same "one exported struct, one
// Step method, a dispatch table keyed by opcode" shape, adapted from
// Corewar's per-process instruction buffer to the Hack VM's single
// shared instruction stream and stack.
package vm

import (
	"fmt"

	"go.n2tcore.dev/emu/display"
	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

// Fixed RAM addresses for the pointer registers and temp segment
// (spec.md §3.1).
const (
	AddrSP   = 0
	AddrLCL  = 1
	AddrARG  = 2
	AddrTHIS = 3
	AddrTHAT = 4
	AddrTemp = 5

	StackStart = 256
	StackEnd   = 2047
	TempCount  = 8

	// sentinelRet marks a return address pushed on behalf of a built-in's
	// CallVM (spec.md §4.5): a value no real instruction index ever takes.
	sentinelRet = -1
)

// Function is a resolved call target: either a VM function (plain
// bytecode) or a built-in routine (spec.md §4.4, §4.5).
type Function struct {
	Builtin Routine // nil for a VM function.
	VM      *vmcode.FunctionInfo
}

// Interp runs one parsed Program against one Memory.
type Interp struct {
	Mem   *mem.Memory
	Prog  *vmcode.Program
	Funcs map[string]*Function

	PC        int
	Mode      Mode
	FrameDepth int
	Halted    bool

	contStack []*Frame

	// Events is an optional, non-blocking sink for driver-facing
	// notifications (spec.md §5): a KindHalt event when the program
	// halts and a KindError event carrying Sys.error's code. Grounded on Corewar's vm/message.go
	// Message channel, deliberately made non-blocking here (§5's
	// "the core must never block on a slow or absent driver").
	Events chan display.Event
}

// Mode tracks whether the dispatcher is executing plain VM bytecode or
// ticking a suspended built-in (spec.md §4.5).
type Mode int

const (
	ModeVM Mode = iota
	ModeBuiltin
)

// New builds an Interp ready to run prog against m. Callers still need
// to set SP/LCL/etc. and PC (or push an initial Frame) before Stepping;
// a loader normally does this (spec.md §6).
func New(m *mem.Memory, prog *vmcode.Program, funcs map[string]*Function) *Interp {
	return &Interp{Mem: m, Prog: prog, Funcs: funcs}
}

// Emit sends ev on Events without ever blocking the interpreter,
// dropping the oldest buffered event if the channel is full. Built-ins
// (Sys.halt, Sys.error) use this to notify a driver across package
// boundaries.
func (i *Interp) Emit(ev display.Event) {
	i.emit(ev)
}

func (i *Interp) emit(ev display.Event) {
	if i.Events == nil {
		return
	}
	select {
	case i.Events <- ev:
	default:
		select {
		case <-i.Events:
		default:
		}
		select {
		case i.Events <- ev:
		default:
		}
	}
}

// StartVM positions the interpreter at a VM function's entry, with
// FrameDepth 0 so that function's own `return` halts the program
// (spec.md §8 "run until the outermost return").
func (i *Interp) StartVM(fn string) error {
	f, ok := i.Prog.Functions[fn]
	if !ok {
		return fmt.Errorf("start function %q: %w", fn, errs.ErrLink)
	}
	i.PC = f.EntryIndex
	i.Mode = ModeVM
	return nil
}

// StartRaw positions the interpreter at instruction index 0 with no
// function-table lookup at all, for a program that declares no function
// anywhere (spec.md §8's bare push/pop/arithmetic scenarios): there is
// no name to resolve, so this bypasses StartVM's lookup entirely rather
// than routing through it with an empty name.
func (i *Interp) StartRaw() {
	i.PC = 0
	i.Mode = ModeVM
}

// StartBuiltin positions the interpreter at a built-in entry point
// (the loader starts the built-in Sys.init this way). The entry frame
// has no VM caller, so the program halts when its routine returns.
func (i *Interp) StartBuiltin(fn string, args ...word.Word) error {
	f, ok := i.Funcs[fn]
	if !ok || f.Builtin == nil {
		return fmt.Errorf("start builtin %q: %w", fn, errs.ErrLink)
	}
	i.Mode = ModeBuiltin
	i.contStack = append(i.contStack, &Frame{Name: fn, Routine: f.Builtin, Args: args, CallerPC: -1})
	return nil
}

// Step advances the interpreter by exactly one instruction (VM mode) or
// one built-in tick (builtin mode), per spec.md §5's single-threaded,
// cooperative scheduling model.
func (i *Interp) Step() error {
	if i.Halted {
		return nil
	}
	if i.Mode == ModeBuiltin {
		return i.stepBuiltin()
	}
	return i.stepVM()
}

// StepTimes calls Step up to n times, stopping early once Halted.
func (i *Interp) StepTimes(n int) error {
	for j := 0; j < n && !i.Halted; j++ {
		if err := i.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interp) sp() word.Addr   { return word.Addr(i.Mem.MustRead(AddrSP)) }
func (i *Interp) setSP(v word.Addr) { i.Mem.MustWrite(AddrSP, word.Word(v)) }

func (i *Interp) push(v word.Word) error {
	sp := i.sp()
	if sp > StackEnd {
		return fmt.Errorf("push at sp=%d: %w", sp, errs.ErrStackOverflow)
	}
	i.Mem.MustWrite(sp, v)
	i.setSP(sp + 1)
	return nil
}

func (i *Interp) pop() (word.Word, error) {
	sp := i.sp()
	if sp <= StackStart {
		return 0, fmt.Errorf("pop at sp=%d: %w", sp, errs.ErrStackUnderflow)
	}
	sp--
	v := i.Mem.MustRead(sp)
	i.setSP(sp)
	return v, nil
}

func (i *Interp) stepVM() error {
	if i.PC < 0 || i.PC >= len(i.Prog.Instructions) {
		return errs.ErrNoInstructions
	}
	ins := i.Prog.Instructions[i.PC]
	switch ins.Op {
	case vmcode.OpPush:
		return i.execPush(ins)
	case vmcode.OpPop:
		return i.execPop(ins)
	case vmcode.OpAdd, vmcode.OpSub, vmcode.OpAnd, vmcode.OpOr,
		vmcode.OpEq, vmcode.OpGt, vmcode.OpLt:
		return i.execBinary(ins)
	case vmcode.OpNot, vmcode.OpNeg:
		return i.execUnary(ins)
	case vmcode.OpGoto:
		i.PC = ins.TargetIndex
		return nil
	case vmcode.OpIfGoto:
		return i.execIfGoto(ins)
	case vmcode.OpFunction:
		return i.execFunction(ins)
	case vmcode.OpCall:
		return i.execCall(ins)
	case vmcode.OpReturn:
		return i.execReturn()
	default:
		return fmt.Errorf("unhandled opcode %s: %w", ins.Op, errs.ErrParse)
	}
}

func (i *Interp) execIfGoto(ins vmcode.Instruction) error {
	v, err := i.pop()
	if err != nil {
		return err
	}
	if word.Truthy(v) {
		i.PC = ins.TargetIndex
		return nil
	}
	i.PC++
	return nil
}

// execFunction implements the "function F n_locals" instruction itself:
// pushing n_locals zeros onto the stack is what actually completes a
// freshly-built call frame (spec.md §4.4 step 5).
func (i *Interp) execFunction(ins vmcode.Instruction) error {
	for j := 0; j < ins.Index; j++ {
		if err := i.push(0); err != nil {
			return err
		}
	}
	i.PC++
	return nil
}
