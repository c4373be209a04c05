package script

import (
	"errors"
	"testing"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/word"
)

// fakeTarget is a minimal Target that records calls instead of driving
// a real interpreter, isolating the script grammar from cpu/vm.
type fakeTarget struct {
	loadedPaths []string
	ram         map[int]word.Word
	regs        map[string]word.Word
	steps       int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{ram: map[int]word.Word{}, regs: map[string]word.Word{}}
}

func (f *fakeTarget) Load(paths []string) error { f.loadedPaths = paths; return nil }
func (f *fakeTarget) Step() error                { f.steps++; return nil }
func (f *fakeTarget) GetRAM(addr int) (word.Word, error) { return f.ram[addr], nil }
func (f *fakeTarget) SetRAM(addr int, v word.Word) error { f.ram[addr] = v; return nil }
func (f *fakeTarget) GetRegister(name string) (word.Word, bool) {
	v, ok := f.regs[name]
	return v, ok
}
func (f *fakeTarget) SetRegister(name string, v word.Word) bool {
	f.regs[name] = v
	return true
}

func TestParseRepeatBlock(t *testing.T) {
	stmts, err := Parse("repeat 3 { set RAM[0] 1, vmstep; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 || stmts[0].Cmd != "repeat" || stmts[0].N != 3 {
		t.Fatalf("stmts = %+v, want one repeat(3) statement", stmts)
	}
	if len(stmts[0].Body) != 2 {
		t.Fatalf("body = %+v, want 2 statements", stmts[0].Body)
	}
}

func TestParseMalformedOutputList(t *testing.T) {
	_, err := parseEntry("RAM[0]Dnoformat")
	if !errors.Is(err, errs.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestRunSetAndOutputList(t *testing.T) {
	ft := newFakeTarget()
	in := New(ft)
	stmts, err := Parse("set RAM[0] 42, output-list RAM[0]%D1.6.1, output;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := in.Run(stmts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(in.Rows) != 1 {
		t.Fatalf("rows = %v, want 1 row", in.Rows)
	}
	if want := " 000042 "; in.Rows[0] != want {
		t.Fatalf("row = %q, want %q", in.Rows[0], want)
	}
}

func TestRunRepeatDrivesStepRepeatedly(t *testing.T) {
	ft := newFakeTarget()
	in := New(ft)
	stmts, err := Parse("repeat 5 { vmstep; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := in.Run(stmts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ft.steps != 5 {
		t.Fatalf("steps = %d, want 5", ft.steps)
	}
}

func TestDiffReportsFirstMismatch(t *testing.T) {
	err := Diff("a|1\na|2\n", "a|1\na|9\n")
	if !errors.Is(err, errs.ErrCompareMismatch) {
		t.Fatalf("err = %v, want ErrCompareMismatch", err)
	}
}

func TestDiffIdenticalSucceeds(t *testing.T) {
	if err := Diff("same\n", "same\n"); err != nil {
		t.Fatalf("Diff: %v", err)
	}
}
