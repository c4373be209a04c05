package builtin

import (
	"strconv"

	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// Output renders text onto the screen region as an 11-row, 2-glyphs-
// per-word bitmap console (spec.md §4.5), grounded on
// original_source/src/simulators/vm/stdlib/os_output.rs. The cursor
// position (address/wordInLine/firstInWord) is the one piece of state
// that must survive between unrelated top-level Output.* calls, so it
// lives on outputState rather than inside any one call's Frame.
const (
	wordsPerLine = mem.Cols >> 4 // 32
	outputNRows  = mem.Rows / 11 // 23
	outputStart  = mem.Cols >> 4 // one blank pixel row (32 words) above the console.

	newlineKey   word.Word = 128
	backspaceKey word.Word = 129
)

type outputState struct {
	wordInLine   int
	address      int
	firstInWord  bool
}

func newOutputState() *outputState {
	s := &outputState{}
	s.reset()
	return s
}

func (s *outputState) reset() {
	s.wordInLine = 0
	s.address = outputStart
	s.firstInWord = true
}

func (s *outputState) init(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.reset()
	return vm.Return(0), nil
}

func (s *outputState) drawChar(ctx *vm.Interp, c word.Word) {
	code := int(c)
	if code < 32 || code > 126 {
		code = 0
	}
	rows := glyphs[code]

	mask, shift := word.Word(0x00FF), uint(8)
	if s.firstInWord {
		mask, shift = word.Word(-256) /* 0xFF00 as int16 */, 0
	}
	j := s.address
	for i := 0; i < 11; i++ {
		old := ctx.Mem.MustRead(word.Addr(mem.ScreenStart + j))
		v := (old & mask) | (rows[i] << shift)
		ctx.Mem.MustWrite(word.Addr(mem.ScreenStart+j), v)
		j += wordsPerLine
	}
}

func (s *outputState) printlnImpl() {
	newAddr := s.address + 11*wordsPerLine - s.wordInLine
	if newAddr == outputStart+outputNRows*11*wordsPerLine {
		newAddr = outputStart
	}
	s.wordInLine = 0
	s.firstInWord = true
	s.address = newAddr
}

func (s *outputState) backspaceImpl(ctx *vm.Interp) {
	if s.firstInWord {
		if s.wordInLine > 0 {
			s.wordInLine--
			s.address--
		} else {
			s.wordInLine = wordsPerLine - 1
			if s.address == outputStart {
				s.address = outputStart + outputNRows*11*wordsPerLine
			}
			s.address -= 10*wordsPerLine + 1
		}
		s.firstInWord = false
	} else {
		s.firstInWord = true
	}
	s.drawChar(ctx, ' ')
}

func (s *outputState) printCharImpl(ctx *vm.Interp, c word.Word) {
	switch c {
	case newlineKey:
		s.printlnImpl()
	case backspaceKey:
		s.backspaceImpl(ctx)
	default:
		s.drawChar(ctx, c)
		if !s.firstInWord {
			s.wordInLine++
			s.address++
			if s.wordInLine == wordsPerLine {
				s.printlnImpl()
			} else {
				s.firstInWord = true
			}
		} else {
			s.firstInWord = false
		}
	}
}

func (s *outputState) moveCursor(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	row, col := int(f.Args[0]), int(f.Args[1])
	if row < 0 || row >= outputNRows || col < 0 || col >= mem.Cols/8 {
		return vm.StepResult{}, argError("Output.moveCursor", "illegal position")
	}
	s.wordInLine = col / 2
	s.address = outputStart + row*11*wordsPerLine + s.wordInLine
	s.firstInWord = col&1 == 0
	s.drawChar(ctx, ' ')
	return vm.Return(0), nil
}

func (s *outputState) printChar(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.printCharImpl(ctx, f.Args[0])
	return vm.Return(0), nil
}

func (s *outputState) println(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.printlnImpl()
	return vm.Return(0), nil
}

func (s *outputState) backSpace(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.backspaceImpl(ctx)
	return vm.Return(0), nil
}

func (s *outputState) printInt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	digits := strconv.Itoa(int(f.Args[0]))
	for _, c := range []byte(digits) {
		s.printCharImpl(ctx, word.Word(c))
	}
	return vm.Return(0), nil
}

// printString is resumable (spec.md §4.5's motivating example): it
// calls back into String.length and String.charAt and into this same
// state's printChar, alternating a fetch tick with a print tick.
// Grounded on os_output.rs's print_string, minus its 32-bit state
// bit-packing hack — Frame.Scratch gives this a real second slot.
func outputPrintString(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	str := f.Args[0]
	if f.State == 0 {
		return vm.CallBuiltin(1, "String.length", str), nil
	}
	if f.State == 1 {
		f.Scratch = f.Result
	}
	length := f.Scratch
	i := word.Word((f.State - 1) / 2)
	if i >= length {
		return vm.Return(0), nil
	}
	if f.State%2 == 1 {
		return vm.CallBuiltin(f.State+1, "String.charAt", str, i), nil
	}
	return vm.CallBuiltin(f.State+1, "Output.printChar", f.Result), nil
}
