package builtin

import (
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// Keyboard reads memory[24576] (spec.md §3.1, §4.5). original_source's
// os_keyboard.rs leaves readChar/readLine/readInt unimplemented!(); this
// file builds them as real press-then-release tick loops, and keeps the
// long-standing emulator quirk several Hack programs rely on: only
// uppercase letter codes are ever delivered, never lowercase (spec.md's
// compatibility note).

const maxLineLength = 80

func keyboardInit(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	return vm.Return(0), nil
}

func keyboardKeyPressed(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	return vm.Return(ctx.Mem.KeyPressed()), nil
}

func uppercaseBug(code word.Word) word.Word {
	if code >= 'a' && code <= 'z' {
		return code - ('a' - 'A')
	}
	return code
}

// keyboardReadChar blocks across ticks until a key goes down, then until
// it is released, echoing the character before returning its code.
func keyboardReadChar(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	switch f.State {
	case 0:
		code := ctx.Mem.KeyPressed()
		if code == 0 {
			return vm.Continue(0), nil
		}
		f.Scratch = uppercaseBug(code)
		return vm.Continue(1), nil
	case 1:
		if ctx.Mem.KeyPressed() != 0 {
			return vm.Continue(1), nil
		}
		return vm.CallBuiltin(2, "Output.printChar", f.Scratch), nil
	default:
		return vm.Return(f.Scratch), nil
	}
}

// keyboardReadLine prints a prompt, then accumulates characters (with
// backspace support) into a freshly allocated String until Enter.
func keyboardReadLine(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	const (
		stPrompt    = 0
		stAlloc     = 1
		stGotBuffer = 2
		stReadChar  = 3
		stAfterEdit = 4
	)
	switch f.State {
	case stPrompt:
		return vm.CallBuiltin(stAlloc, "Output.printString", f.Args[0]), nil
	case stAlloc:
		return vm.CallBuiltin(stGotBuffer, "String.new", word.Word(maxLineLength)), nil
	case stGotBuffer:
		f.Scratch = f.Result
		f.Args = append(f.Args, 0) // f.Args[1]: current character count.
		return vm.CallBuiltin(stReadChar, "Keyboard.readChar"), nil
	case stReadChar:
		switch f.Result {
		case newlineKey:
			return vm.CallBuiltin(99, "Output.println"), nil
		case backspaceKey:
			if f.Args[1] > 0 {
				f.Args[1]--
				return vm.CallBuiltin(stAfterEdit, "String.eraseLastChar", f.Scratch), nil
			}
			return vm.CallBuiltin(stReadChar, "Keyboard.readChar"), nil
		default:
			f.Args[1]++
			return vm.CallBuiltin(stAfterEdit, "String.appendChar", f.Scratch, f.Result), nil
		}
	case stAfterEdit:
		return vm.CallBuiltin(stReadChar, "Keyboard.readChar"), nil
	default:
		return vm.Return(f.Scratch), nil
	}
}

// keyboardReadInt reads a line, then parses it, disposing the scratch
// String before returning.
func keyboardReadInt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	switch f.State {
	case 0:
		return vm.CallBuiltin(1, "Keyboard.readLine", f.Args[0]), nil
	case 1:
		f.Scratch = f.Result
		return vm.CallBuiltin(2, "String.intValue", f.Scratch), nil
	case 2:
		f.Args = append(f.Args[:0], f.Result) // stash the parsed value past disposal.
		return vm.CallBuiltin(3, "String.dispose", f.Scratch), nil
	default:
		return vm.Return(f.Args[0]), nil
	}
}
