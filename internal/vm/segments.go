package vm

import (
	"fmt"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

// addr resolves a push/pop instruction's segment+index to a concrete
// memory address (spec.md §3.1, §4.2). constant has no address: callers
// must special-case OpPush+SegConstant before calling this.
func (i *Interp) addr(ins vmcode.Instruction) (word.Addr, error) {
	if ins.Index < 0 {
		return 0, fmt.Errorf("%s segment index %d: %w", ins.Segment, ins.Index, errs.ErrInvalidSegmentAccess)
	}
	switch ins.Segment {
	case vmcode.SegArgument:
		return word.Addr(int(i.Mem.MustRead(AddrARG)) + ins.Index), nil
	case vmcode.SegLocal:
		return word.Addr(int(i.Mem.MustRead(AddrLCL)) + ins.Index), nil
	case vmcode.SegThis:
		return word.Addr(int(i.Mem.MustRead(AddrTHIS)) + ins.Index), nil
	case vmcode.SegThat:
		return word.Addr(int(i.Mem.MustRead(AddrTHAT)) + ins.Index), nil
	case vmcode.SegPointer:
		if ins.Index != 0 && ins.Index != 1 {
			return 0, fmt.Errorf("pointer segment index %d: %w", ins.Index, errs.ErrInvalidSegmentAccess)
		}
		return word.Addr(AddrTHIS + ins.Index), nil
	case vmcode.SegTemp:
		if ins.Index < 0 || ins.Index >= TempCount {
			return 0, fmt.Errorf("temp segment index %d: %w", ins.Index, errs.ErrInvalidSegmentAccess)
		}
		return word.Addr(AddrTemp + ins.Index), nil
	case vmcode.SegStatic:
		base, ok := i.Prog.StaticBases[ins.File]
		if !ok {
			return 0, fmt.Errorf("static segment in unknown file %q: %w", ins.File, errs.ErrInvalidSegmentAccess)
		}
		return word.Addr(base + ins.Index), nil
	default:
		return 0, fmt.Errorf("segment %s has no address: %w", ins.Segment, errs.ErrInvalidSegmentAccess)
	}
}

func (i *Interp) execPush(ins vmcode.Instruction) error {
	var v word.Word
	if ins.Segment == vmcode.SegConstant {
		v = word.Word(ins.Index)
	} else {
		a, err := i.addr(ins)
		if err != nil {
			return err
		}
		v = i.Mem.MustRead(a)
	}
	if err := i.push(v); err != nil {
		return err
	}
	i.PC++
	return nil
}

func (i *Interp) execPop(ins vmcode.Instruction) error {
	if ins.Segment == vmcode.SegConstant {
		return fmt.Errorf("pop constant is not a legal destination: %w", errs.ErrInvalidSegmentAccess)
	}
	a, err := i.addr(ins)
	if err != nil {
		return err
	}
	v, err := i.pop()
	if err != nil {
		return err
	}
	i.Mem.MustWrite(a, v)
	i.PC++
	return nil
}
