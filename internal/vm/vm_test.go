package vm

import (
	"errors"
	"testing"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

func mustParse(t *testing.T, name, src string) *vmcode.Program {
	t.Helper()
	prog, err := vmcode.Parse([]vmcode.SourceFile{{Name: name, Data: src}})
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return prog
}

func newInterp(prog *vmcode.Program) *Interp {
	m := mem.New()
	funcs := map[string]*Function{}
	for name, fi := range prog.Functions {
		funcs[name] = &Function{VM: fi}
	}
	return New(m, prog, funcs)
}

func runToHalt(t *testing.T, i *Interp, maxSteps int) {
	t.Helper()
	for n := 0; n < maxSteps; n++ {
		if i.Halted {
			return
		}
		if err := i.Step(); err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
	}
	t.Fatalf("did not halt within %d steps", maxSteps)
}

// TestSumOneToThree is scenario 1 of spec.md §8: a push/pop/add/if-goto
// loop, run from a preset SP/LCL until its outermost return, expecting
// the running counter and accumulated sum to land at fixed offsets.
func TestSumOneToThree(t *testing.T) {
	src := `
function Main.sumToFour 2
push constant 1
pop local 0
push constant 0
pop local 1
label LOOP
push local 0
push constant 4
lt
if-goto BODY
goto END
label BODY
push local 1
push local 0
add
pop local 1
push local 0
push constant 1
add
pop local 0
goto LOOP
label END
push local 1
return
`
	prog := mustParse(t, "main.vm", src)
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, 256)
	i.Mem.MustWrite(AddrLCL, 300)
	if err := i.StartVM("Main.sumToFour"); err != nil {
		t.Fatalf("StartVM: %v", err)
	}
	runToHalt(t, i, 10000)

	if got := i.Mem.MustRead(300); got != 4 {
		t.Errorf("local0 (counter) = %d, want 4", got)
	}
	if got := i.Mem.MustRead(301); got != 6 {
		t.Errorf("local1 (sum) = %d, want 6", got)
	}
}

// TestBasicStackArithmetic exercises push/eq/gt/and/not without any
// function wrapper.
func TestBasicStackArithmetic(t *testing.T) {
	src := `
push constant 17
push constant 17
eq
push constant 5
push constant 3
gt
and
not
`
	prog := mustParse(t, "arith.vm", src)
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, 256)
	i.Mode = ModeVM
	for n := 0; n < len(prog.Instructions); n++ {
		if err := i.Step(); err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
	}
	if sp := i.Mem.MustRead(AddrSP); sp != 257 {
		t.Fatalf("sp = %d, want 257", sp)
	}
	top := i.Mem.MustRead(256)
	// eq(17,17)=-1 (true); gt(5,3)=-1 (true); and(-1,-1)=-1; not(-1)=0.
	if top != 0 {
		t.Errorf("result = %d, want 0", top)
	}
}

// TestNestedCallFrameRestore is scenario 4 of spec.md §8: a call/return
// round trip must leave the caller's THIS/THAT untouched and deliver
// the callee's return value.
func TestNestedCallFrameRestore(t *testing.T) {
	src := `
function Outer.run 0
push constant 7
push constant 8
call Inner.add 2
return

function Inner.add 0
push argument 0
push argument 1
add
return
`
	prog := mustParse(t, "nested.vm", src)
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, 256)
	i.Mem.MustWrite(AddrLCL, 256)
	i.Mem.MustWrite(AddrARG, 256)
	i.Mem.MustWrite(AddrTHIS, 111)
	i.Mem.MustWrite(AddrTHAT, 222)
	if err := i.StartVM("Outer.run"); err != nil {
		t.Fatalf("StartVM: %v", err)
	}
	runToHalt(t, i, 10000)

	if got := i.Mem.MustRead(AddrTHIS); got != 111 {
		t.Errorf("THIS = %d, want 111 (must survive the nested call)", got)
	}
	if got := i.Mem.MustRead(AddrTHAT); got != 222 {
		t.Errorf("THAT = %d, want 222 (must survive the nested call)", got)
	}
	if got := i.Mem.MustRead(256); got != 15 {
		t.Errorf("return value = %d, want 15", got)
	}
	if got := i.Mem.MustRead(AddrSP); got != 257 {
		t.Errorf("sp = %d, want 257", got)
	}
}

func TestStackOverflow(t *testing.T) {
	prog := mustParse(t, "of.vm", "push constant 1\n")
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, StackEnd+1)
	i.Mode = ModeVM
	err := i.Step()
	if !errors.Is(err, errs.ErrStackOverflow) {
		t.Fatalf("err = %v, want ErrStackOverflow", err)
	}
}

func TestStackUnderflow(t *testing.T) {
	prog := mustParse(t, "uf.vm", "add\n")
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, StackStart)
	i.Mode = ModeVM
	err := i.Step()
	if !errors.Is(err, errs.ErrStackUnderflow) {
		t.Fatalf("err = %v, want ErrStackUnderflow", err)
	}
}

func TestPointerAndTempSegments(t *testing.T) {
	src := `
push constant 5
pop pointer 1
push constant 42
pop temp 7
push that 0
`
	prog := mustParse(t, "seg.vm", src)
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, 256)
	i.Mode = ModeVM
	for n := 0; n < len(prog.Instructions); n++ {
		if err := i.Step(); err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
	}
	if got := i.Mem.MustRead(AddrTHAT); got != 5 {
		t.Fatalf("THAT = %d, want 5", got)
	}
	if got := i.Mem.MustRead(word.Addr(AddrTemp + 7)); got != 42 {
		t.Fatalf("temp 7 = %d, want 42", got)
	}
	// THAT = 5, so that 0 is RAM[5], which is temp 0 and still 0.
	if got := i.Mem.MustRead(256); got != 0 {
		t.Fatalf("that 0 = %d, want 0", got)
	}
}

// TestFibonacciElement is scenario 3 of spec.md §8: a recursive call
// tree must unwind through multiple nested frames to the correct sum.
func TestFibonacciElement(t *testing.T) {
	src := `
function Main.run 0
push constant 6
call Main.fib 1
return

function Main.fib 0
push argument 0
push constant 2
lt
if-goto BASE
push argument 0
push constant 2
sub
call Main.fib 1
push argument 0
push constant 1
sub
call Main.fib 1
add
return
label BASE
push argument 0
return
`
	prog := mustParse(t, "fib.vm", src)
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, 256)
	i.Mem.MustWrite(AddrLCL, 256)
	i.Mem.MustWrite(AddrARG, 256)
	if err := i.StartVM("Main.run"); err != nil {
		t.Fatalf("StartVM: %v", err)
	}
	runToHalt(t, i, 10000)

	if got := i.Mem.MustRead(256); got != 8 {
		t.Errorf("fib(6) = %d, want 8", got)
	}
}

func TestInvalidTempIndex(t *testing.T) {
	prog := mustParse(t, "bad.vm", "push temp 8\n")
	i := newInterp(prog)
	i.Mem.MustWrite(AddrSP, 256)
	i.Mode = ModeVM
	err := i.Step()
	if !errors.Is(err, errs.ErrInvalidSegmentAccess) {
		t.Fatalf("err = %v, want ErrInvalidSegmentAccess", err)
	}
}
