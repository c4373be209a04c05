package builtin

import (
	"strconv"

	"go.n2tcore.dev/emu/display"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// Sys provides the program's entry sequence and the few housekeeping
// calls every Hack program can make (spec.md §4.5). original_source's
// os_sys.rs treats halt/error/wait as no-op stubs; here they carry real
// effect, since nothing else in this interpreter would ever stop a
// running program or count a wait down.

func sysInit(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	switch f.State {
	case 0:
		return vm.CallBuiltin(1, "Memory.init"), nil
	case 1:
		return vm.CallVM(2, "Main.main"), nil
	case 2:
		return vm.CallBuiltin(3, "Sys.halt"), nil
	default:
		return vm.Return(0), nil
	}
}

func sysHalt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	ctx.Halted = true
	ctx.Emit(display.Event{Kind: display.KindHalt})
	return vm.Return(0), nil
}

// sysError prints "ERR<code>" one character at a time through
// Output.printChar, then halts — no heap String object is needed for a
// fixed, host-built message.
func sysError(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	code := int(f.Args[0])
	msg := "ERR" + strconv.Itoa(code)
	if f.State < len(msg) {
		return vm.CallBuiltin(f.State+1, "Output.printChar", word.Word(msg[f.State])), nil
	}
	ctx.Halted = true
	ctx.Emit(display.Event{Kind: display.KindError, Code: code})
	return vm.Return(0), nil
}

// sysWait counts down in emulator ticks rather than wall-clock time
// (spec.md's timeout handling deliberately avoids a real sleep).
func sysWait(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	if f.State == 0 {
		f.Scratch = f.Args[0]
	}
	if f.Scratch <= 0 {
		return vm.Return(0), nil
	}
	f.Scratch--
	return vm.Continue(1), nil
}
