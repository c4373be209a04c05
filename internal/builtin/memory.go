package builtin

import (
	"sort"

	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// memoryState is the free list Memory.alloc/deAlloc maintain across
// the whole program's lifetime (spec.md §4.5, §9's "freelist
// maintained"). original_source's os_memory.rs leaves alloc/deAlloc
// `unimplemented!()`; this is a first-fit allocator with a one-word
// size header per allocation, the classic nand2tetris Memory.jack
// layout, built in Go rather than Jack bytecode since there is no
// Memory.vm source file backing these calls.
type memoryState struct {
	free []span // sorted by base, non-overlapping.
}

type span struct {
	base, size int // size in words.
}

func newMemoryState() *memoryState {
	return &memoryState{free: []span{{base: mem.HeapStart, size: mem.HeapEnd - mem.HeapStart + 1}}}
}

func (s *memoryState) init(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.free = []span{{base: mem.HeapStart, size: mem.HeapEnd - mem.HeapStart + 1}}
	return vm.Return(0), nil
}

func (s *memoryState) peek(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	v, err := ctx.Mem.Read(word.Addr(f.Args[0]))
	if err != nil {
		return vm.StepResult{}, err
	}
	return vm.Return(v), nil
}

func (s *memoryState) poke(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	if err := ctx.Mem.Write(word.Addr(f.Args[0]), f.Args[1]); err != nil {
		return vm.StepResult{}, err
	}
	return vm.Return(0), nil
}

// alloc finds the first free span that can hold size words plus a
// one-word header, splitting the remainder back into the free list.
func (s *memoryState) alloc(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	size := int(f.Args[0])
	if size <= 0 {
		return vm.StepResult{}, argError("Memory.alloc", "non-positive size")
	}
	need := size + 1
	for idx, sp := range s.free {
		if sp.size < need {
			continue
		}
		headerAddr := sp.base
		if sp.size == need {
			s.free = append(s.free[:idx], s.free[idx+1:]...)
		} else {
			s.free[idx] = span{base: sp.base + need, size: sp.size - need}
		}
		ctx.Mem.MustWrite(word.Addr(headerAddr), word.Word(size))
		return vm.Return(word.Word(headerAddr + 1)), nil
	}
	return vm.StepResult{}, argError("Memory.alloc", "heap exhausted")
}

// deAlloc recovers the allocation's size from its header word and
// returns the span (header included) to the free list, coalescing
// with any touching neighbor.
func (s *memoryState) deAlloc(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	ptr := int(f.Args[0])
	headerAddr := ptr - 1
	size := int(ctx.Mem.MustRead(word.Addr(headerAddr)))
	s.release(span{base: headerAddr, size: size + 1})
	return vm.Return(0), nil
}

func (s *memoryState) release(freed span) {
	s.free = append(s.free, freed)
	sort.Slice(s.free, func(i, j int) bool { return s.free[i].base < s.free[j].base })
	merged := s.free[:1]
	for _, sp := range s.free[1:] {
		last := &merged[len(merged)-1]
		if last.base+last.size == sp.base {
			last.size += sp.size
		} else {
			merged = append(merged, sp)
		}
	}
	s.free = merged
}
