package loader

import (
	"errors"
	"testing"

	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

func files(t *testing.T, name, src string) []vmcode.SourceFile {
	t.Helper()
	return []vmcode.SourceFile{{Name: name, Data: src}}
}

// TestLoadMissingCallIsLinkErrorAtLoadTime checks that a call to an
// undefined function never reaches Step: Load itself must fail.
func TestLoadMissingCallIsLinkErrorAtLoadTime(t *testing.T) {
	_, err := Load(files(t, "bad.vm", "call Nope.missing 0\n"))
	var linkErr *vmcode.LinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("err = %v, want *vmcode.LinkError", err)
	}
}

// TestLoadBareFunctionStartsAtSoleEntry checks the bootstrap-free path
// (spec.md §8's scenarios, which never define Main.main).
func TestLoadBareFunctionStartsAtSoleEntry(t *testing.T) {
	loaded, err := Load(files(t, "bare.vm", "function Side.run 0\npush constant 1\nreturn\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Entry != "Side.run" {
		t.Fatalf("entry = %q, want Side.run", loaded.Entry)
	}
	if loaded.Interp.Mode != vm.ModeVM {
		t.Fatalf("mode = %v, want ModeVM", loaded.Interp.Mode)
	}
}

// TestLoadMainMainStartsViaSysInit checks the bootstrapped path: a
// program defining Main.main is entered through Sys.init, not directly.
func TestLoadMainMainStartsViaSysInit(t *testing.T) {
	loaded, err := Load(files(t, "main.vm", "function Main.main 0\npush constant 1\nreturn\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Entry != sysInitName {
		t.Fatalf("entry = %q, want %q", loaded.Entry, sysInitName)
	}
	if loaded.Interp.Mode != vm.ModeBuiltin {
		t.Fatalf("mode = %v, want ModeBuiltin (running inside Sys.init)", loaded.Interp.Mode)
	}
}

// TestLoadFunctionLessProgramStartsAtInstructionZero checks a raw file
// with no "function" declaration anywhere — the canonical BasicTest.vm
// shape (spec.md §8's TestBasicStackArithmetic) — loads and runs rather
// than failing to resolve a nonexistent "" entry.
func TestLoadFunctionLessProgramStartsAtInstructionZero(t *testing.T) {
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
	loaded, err := Load(files(t, "basic.vm", src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Interp.Mode != vm.ModeVM {
		t.Fatalf("mode = %v, want ModeVM", loaded.Interp.Mode)
	}
	if loaded.Interp.PC != 0 {
		t.Fatalf("PC = %d, want 0", loaded.Interp.PC)
	}
	for n := 0; n < len(loaded.Interp.Prog.Instructions); n++ {
		if err := loaded.Interp.Step(); err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
	}
	sp := loaded.Interp.Mem.MustRead(vm.AddrSP)
	if sp != vm.StackStart+1 {
		t.Fatalf("SP = %d, want %d", sp, vm.StackStart+1)
	}
	top := loaded.Interp.Mem.MustRead(word.Addr(sp) - 1)
	if top != 0 {
		t.Fatalf("result = %d, want 0 (false)", int16(top))
	}
}

// TestLoadedProgramDefinedFunctionShadowsBuiltin checks that a program
// supplying its own Math.abs wins over the standard library's.
func TestLoadedProgramDefinedFunctionShadowsBuiltin(t *testing.T) {
	src := `
function Main.main 0
call Math.abs 0
return
function Math.abs 0
push constant 99
return
`
	loaded, err := Load(files(t, "shadow.vm", src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f, ok := loaded.Interp.Funcs["Math.abs"]
	if !ok {
		t.Fatal("Math.abs not found in linked function table")
	}
	if f.Builtin != nil || f.VM == nil {
		t.Fatal("Math.abs resolved to the built-in, want the program-defined override")
	}
}
