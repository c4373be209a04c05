package builtin

import (
	"fmt"
	"math"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// Math is entirely single-tick (spec.md §4.5): none of its routines
// ever call back into VM code, so they never need a second state.
// Grounded on original_source/src/simulators/vm/stdlib/os_math.rs.

func mathInit(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	return vm.Return(0), nil
}

func mathAbs(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	v := f.Args[0]
	if v < 0 {
		v = -v
	}
	return vm.Return(v), nil
}

func mathMultiply(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	a, b := int32(f.Args[0]), int32(f.Args[1])
	return vm.Return(word.Word(int16(a * b))), nil
}

func mathDivide(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	a, b := f.Args[0], f.Args[1]
	if b == 0 {
		return vm.StepResult{}, fmt.Errorf("Math.divide: %w", errs.ErrDivisionByZero)
	}
	return vm.Return(a / b), nil
}

func mathMin(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	a, b := f.Args[0], f.Args[1]
	if a < b {
		return vm.Return(a), nil
	}
	return vm.Return(b), nil
}

func mathMax(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	a, b := f.Args[0], f.Args[1]
	if a > b {
		return vm.Return(a), nil
	}
	return vm.Return(b), nil
}

func mathSqrt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	v := f.Args[0]
	if v < 0 {
		return vm.StepResult{}, argError("Math.sqrt", "negative operand")
	}
	return vm.Return(word.Word(math.Sqrt(float64(v)))), nil
}
