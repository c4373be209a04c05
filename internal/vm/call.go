package vm

import (
	"fmt"

	"go.n2tcore.dev/emu/display"
	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

func (i *Interp) lookup(name string) (*Function, bool) {
	f, ok := i.Funcs[name]
	return f, ok
}

func linkErrorRuntime(name string) error {
	return fmt.Errorf("call to undefined %q: %w", name, errs.ErrLink)
}

// pushFrame implements the shared part of spec.md §4.4's call protocol:
// saving the return address and caller's four segment pointers, then
// repointing ARG/LCL at the callee's freshly opened window.
func (i *Interp) pushFrame(nArgs int, retAddr word.Word) error {
	if err := i.push(retAddr); err != nil {
		return err
	}
	saved := []word.Word{
		i.Mem.MustRead(AddrLCL),
		i.Mem.MustRead(AddrARG),
		i.Mem.MustRead(AddrTHIS),
		i.Mem.MustRead(AddrTHAT),
	}
	for _, v := range saved {
		if err := i.push(v); err != nil {
			return err
		}
	}
	sp := i.sp()
	i.Mem.MustWrite(AddrARG, word.Word(int(sp)-5-nArgs))
	i.Mem.MustWrite(AddrLCL, word.Word(sp))
	return nil
}

// popN pops n words and returns them in their original push order
// (arg0 first).
func (i *Interp) popN(n int) ([]word.Word, error) {
	out := make([]word.Word, n)
	for k := n - 1; k >= 0; k-- {
		v, err := i.pop()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// execCall implements the "call F n" instruction (spec.md §4.4, §4.5
// item 1): a VM target builds a real call frame, a built-in target
// switches the dispatcher into builtin mode without touching the VM
// stack's frame layout at all.
func (i *Interp) execCall(ins vmcode.Instruction) error {
	f, ok := i.lookup(ins.Target)
	if !ok {
		return linkErrorRuntime(ins.Target)
	}
	if f.Builtin != nil {
		args, err := i.popN(ins.Index)
		if err != nil {
			return err
		}
		i.contStack = append(i.contStack, &Frame{
			Name: ins.Target, Routine: f.Builtin, Args: args, CallerPC: i.PC + 1,
		})
		i.Mode = ModeBuiltin
		return nil
	}
	if err := i.pushFrame(ins.Index, word.Word(i.PC+1)); err != nil {
		return err
	}
	i.PC = f.VM.EntryIndex
	i.FrameDepth++
	return nil
}

// execReturn implements the "return" instruction (spec.md §4.4 steps
// 1-5). A return at FrameDepth 0 is the entry function's own: no call
// frame lies below its LCL, so it stores the return value, sets SP and
// halts, leaving LCL/ARG/THIS/THAT as they are. A sentinel return
// address means this frame was opened on behalf of a built-in's CallVM
// (spec.md §4.5); the value just restored is handed back to that
// built-in instead of resuming VM bytecode at a real PC.
func (i *Interp) execReturn() error {
	frame := int(i.Mem.MustRead(AddrLCL))
	outermost := i.FrameDepth == 0
	var retRaw word.Word
	if !outermost {
		retRaw = i.Mem.MustRead(word.Addr(frame - 5))
	}
	retVal, err := i.pop()
	if err != nil {
		return err
	}
	arg := word.Addr(i.Mem.MustRead(AddrARG))
	i.Mem.MustWrite(arg, retVal)
	i.setSP(word.Addr(int(arg) + 1))
	if outermost {
		i.Halted = true
		i.emit(display.Event{Kind: display.KindHalt})
		return nil
	}

	lclReg := i.Mem.MustRead(word.Addr(frame - 4))
	argReg := i.Mem.MustRead(word.Addr(frame - 3))
	thisReg := i.Mem.MustRead(word.Addr(frame - 2))
	thatReg := i.Mem.MustRead(word.Addr(frame - 1))
	i.Mem.MustWrite(AddrTHAT, thatReg)
	i.Mem.MustWrite(AddrTHIS, thisReg)
	i.Mem.MustWrite(AddrARG, argReg)
	i.Mem.MustWrite(AddrLCL, lclReg)

	i.FrameDepth--
	if int(retRaw) == sentinelRet {
		top := i.contStack[len(i.contStack)-1]
		top.Result = retVal
		i.Mode = ModeBuiltin
		return nil
	}
	i.PC = int(retRaw)
	return nil
}

// stepBuiltin ticks the routine suspended at the top of the
// continuation stack, then performs whatever its StepResult asks for
// (spec.md §4.5).
func (i *Interp) stepBuiltin() error {
	if len(i.contStack) == 0 {
		i.Halted = true
		return nil
	}
	top := i.contStack[len(i.contStack)-1]
	res, err := top.Routine.Step(i, top)
	if err != nil {
		return err
	}
	switch res.Kind {
	case ResultContinue:
		top.State = res.NextState
		return nil

	case ResultCallVM:
		f, ok := i.lookup(res.Target)
		if !ok || f.VM == nil {
			return linkErrorRuntime(res.Target)
		}
		top.State = res.NextState
		for _, a := range res.Args {
			if err := i.push(a); err != nil {
				return err
			}
		}
		if err := i.pushFrame(len(res.Args), word.Word(sentinelRet)); err != nil {
			return err
		}
		i.PC = f.VM.EntryIndex
		i.FrameDepth++
		i.Mode = ModeVM
		return nil

	case ResultCallBuiltin:
		f, ok := i.lookup(res.Target)
		if !ok || f.Builtin == nil {
			return linkErrorRuntime(res.Target)
		}
		top.State = res.NextState
		i.contStack = append(i.contStack, &Frame{Name: res.Target, Routine: f.Builtin, Args: res.Args, CallerPC: -1})
		return nil

	case ResultReturn:
		i.contStack = i.contStack[:len(i.contStack)-1]
		if top.CallerPC >= 0 {
			// Entered by a VM call: the value goes back to that VM code.
			if err := i.push(res.Value); err != nil {
				return err
			}
			i.PC = top.CallerPC
			i.Mode = ModeVM
			return nil
		}
		if len(i.contStack) == 0 {
			i.Halted = true
			i.emit(display.Event{Kind: display.KindHalt})
			return nil
		}
		parent := i.contStack[len(i.contStack)-1]
		parent.Result = res.Value
		return nil

	default:
		return fmt.Errorf("unhandled built-in result kind %d", res.Kind)
	}
}
