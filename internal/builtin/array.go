package builtin

import "go.n2tcore.dev/emu/internal/vm"

// Array delegates straight to Memory (spec.md §4.5: "Array.new =
// Memory.alloc, Array.dispose = Memory.deAlloc"), grounded on
// original_source's os_array.rs, which does the same via call_vm!.

func arrayNew(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	if f.State == 0 {
		if f.Args[0] <= 0 {
			return vm.StepResult{}, argError("Array.new", "non-positive size")
		}
		return vm.CallBuiltin(1, "Memory.alloc", f.Args[0]), nil
	}
	return vm.Return(f.Result), nil
}

func arrayDispose(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	if f.State == 0 {
		return vm.CallBuiltin(1, "Memory.deAlloc", f.Args[0]), nil
	}
	return vm.Return(0), nil
}
