package builtin

import (
	"strconv"

	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// String objects are heap blocks laid out as word 0 = capacity, word 1
// = current length, words 2.. = characters (spec.md §4.5), grounded on
// original_source's os_string.rs.

const (
	strCap = 0
	strLen = 1
	strChr = 2
)

func stringNew(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	maxLen := f.Args[0]
	if maxLen < 0 {
		return vm.StepResult{}, argError("String.new", "negative length")
	}
	switch f.State {
	case 0:
		return vm.CallBuiltin(1, "Memory.alloc", maxLen+2), nil
	default:
		addr := word.Addr(f.Result)
		ctx.Mem.MustWrite(addr+strCap, maxLen)
		ctx.Mem.MustWrite(addr+strLen, 0)
		return vm.Return(f.Result), nil
	}
}

func stringDispose(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	if f.State == 0 {
		return vm.CallBuiltin(1, "Memory.deAlloc", f.Args[0]), nil
	}
	return vm.Return(0), nil
}

func stringLength(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	return vm.Return(ctx.Mem.MustRead(addr + strLen)), nil
}

func stringCharAt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	pos := f.Args[1]
	n := ctx.Mem.MustRead(addr + strLen)
	if pos < 0 || pos >= n {
		return vm.StepResult{}, argError("String.charAt", "index out of range")
	}
	return vm.Return(ctx.Mem.MustRead(addr + strChr + word.Addr(pos))), nil
}

func stringSetCharAt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	pos := f.Args[1]
	c := f.Args[2]
	n := ctx.Mem.MustRead(addr + strLen)
	if pos < 0 || pos >= n {
		return vm.StepResult{}, argError("String.setCharAt", "index out of range")
	}
	ctx.Mem.MustWrite(addr+strChr+word.Addr(pos), c)
	return vm.Return(0), nil
}

func stringAppendChar(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	c := f.Args[1]
	cap := ctx.Mem.MustRead(addr + strCap)
	n := ctx.Mem.MustRead(addr + strLen)
	if n >= cap {
		return vm.StepResult{}, argError("String.appendChar", "string is full")
	}
	ctx.Mem.MustWrite(addr+strChr+word.Addr(n), c)
	ctx.Mem.MustWrite(addr+strLen, n+1)
	return vm.Return(f.Args[0]), nil
}

func stringEraseLastChar(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	n := ctx.Mem.MustRead(addr + strLen)
	if n == 0 {
		return vm.StepResult{}, argError("String.eraseLastChar", "string is empty")
	}
	ctx.Mem.MustWrite(addr+strLen, n-1)
	return vm.Return(0), nil
}

func stringIntValue(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	n := int(ctx.Mem.MustRead(addr + strLen))

	neg := false
	i := 0
	if n > 0 && ctx.Mem.MustRead(addr+strChr) == '-' {
		neg = true
		i = 1
	}
	var value word.Word
	for ; i < n; i++ {
		c := ctx.Mem.MustRead(addr + strChr + word.Addr(i))
		if c < '0' || c > '9' {
			break
		}
		value = value*10 + (c - '0')
	}
	if neg {
		value = -value
	}
	return vm.Return(value), nil
}

func stringSetInt(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	addr := word.Addr(f.Args[0])
	digits := strconv.Itoa(int(f.Args[1]))
	cap := ctx.Mem.MustRead(addr + strCap)
	if int(cap) < len(digits) {
		return vm.StepResult{}, argError("String.setInt", "insufficient capacity")
	}
	ctx.Mem.MustWrite(addr+strLen, word.Word(len(digits)))
	for i, c := range []byte(digits) {
		ctx.Mem.MustWrite(addr+strChr+word.Addr(i), word.Word(c))
	}
	return vm.Return(0), nil
}

func stringBackSpace(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	return vm.Return(129), nil
}

func stringDoubleQuote(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	return vm.Return('"'), nil
}

func stringNewLine(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	return vm.Return(128), nil
}
