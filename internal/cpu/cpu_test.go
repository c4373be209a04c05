package cpu

import (
	"errors"
	"testing"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/word"
)

func mustAssemble(t *testing.T, src string) []word.Word {
	t.Helper()
	rom, err := Assemble("test.asm", src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return rom
}

// TestAddTwoConstants assembles and runs the canonical "load two
// constants, add them, store the result" program and checks RAM[2].
func TestAddTwoConstants(t *testing.T) {
	src := `
@2
M=1
@3
D=M
@2
M=D+M
`
	rom := mustAssemble(t, src)
	i := New(mem.New(), rom)
	if err := i.StepTimes(len(rom)); err != nil {
		t.Fatalf("StepTimes: %v", err)
	}
	if got, _ := i.Mem.Read(2); got != 1 {
		t.Fatalf("RAM[2] = %d, want 1", got)
	}
}

// TestCountdownLoop exercises label resolution and a conditional jump:
// a loop counting down from 3 to 0 in RAM[0], then parking in the
// usual (END) @END 0;JMP loop.
func TestCountdownLoop(t *testing.T) {
	src := `
@3
D=A
@0
M=D
(LOOP)
@0
D=M
@END
D;JEQ
@0
M=M-1
@LOOP
0;JMP
(END)
@END
0;JMP
`
	rom := mustAssemble(t, src)
	i := New(mem.New(), rom)
	if err := i.StepTimes(1000); err != nil {
		t.Fatalf("StepTimes: %v", err)
	}
	if got, _ := i.Mem.Read(0); got != 0 {
		t.Fatalf("RAM[0] = %d, want 0", got)
	}
}

func TestRunPastEndOfROM(t *testing.T) {
	i := New(mem.New(), mustAssemble(t, "@0\nD=A\n"))
	for n := 1; n <= 2; n++ {
		if err := i.Step(); err != nil {
			t.Fatalf("Step %d: %v", n, err)
		}
	}
	err := i.Step()
	if !errors.Is(err, errs.ErrNoInstructions) {
		t.Fatalf("err = %v, want ErrNoInstructions", err)
	}
}

// TestAssembleDisassembleRoundTrip checks that Assemble accepts the text
// Disassemble produces and reproduces the same ROM words from it,
// anchoring cmd/disasm's output format.
func TestAssembleDisassembleRoundTrip(t *testing.T) {
	rom := mustAssemble(t, "@5\nD=A\n@6\nM=D+1\n")
	text := Disassemble(rom)
	rom2, err := Assemble("roundtrip.asm", text)
	if err != nil {
		t.Fatalf("reassemble disassembled text: %v", err)
	}
	if len(rom2) != len(rom) {
		t.Fatalf("round trip length = %d, want %d", len(rom2), len(rom))
	}
	for i := range rom {
		if rom[i] != rom2[i] {
			t.Fatalf("instruction %d = %016b, want %016b", i, rom2[i], rom[i])
		}
	}
}

func TestAssembleUnknownComputationIsParseError(t *testing.T) {
	_, err := Assemble("bad.asm", "D=FOOBAR\n")
	if !errors.Is(err, errs.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

// TestAssembleUndefinedSymbolAllocatesVariable mirrors the Hack
// assembler convention: any A-instruction symbol that is not a label
// or predefined register is a fresh variable starting at RAM[16].
func TestAssembleUndefinedSymbolAllocatesVariable(t *testing.T) {
	rom := mustAssemble(t, "@foo\nD=A\n@bar\nD=A\n")
	if rom[0] != 16 {
		t.Fatalf("@foo = %d, want 16", rom[0])
	}
	if rom[2] != 17 {
		t.Fatalf("@bar = %d, want 17", rom[2])
	}
}
