package vm

import (
	"fmt"

	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

func (i *Interp) execBinary(ins vmcode.Instruction) error {
	b, err := i.pop()
	if err != nil {
		return err
	}
	a, err := i.pop()
	if err != nil {
		return err
	}
	var r word.Word
	switch ins.Op {
	case vmcode.OpAdd:
		r = a + b
	case vmcode.OpSub:
		r = a - b
	case vmcode.OpAnd:
		r = word.Word(uint16(a) & uint16(b))
	case vmcode.OpOr:
		r = word.Word(uint16(a) | uint16(b))
	case vmcode.OpEq:
		r = word.Bool(a == b)
	case vmcode.OpGt:
		r = word.Bool(a > b)
	case vmcode.OpLt:
		r = word.Bool(a < b)
	default:
		return fmt.Errorf("not a binary opcode: %s", ins.Op)
	}
	if err := i.push(r); err != nil {
		return err
	}
	i.PC++
	return nil
}

func (i *Interp) execUnary(ins vmcode.Instruction) error {
	a, err := i.pop()
	if err != nil {
		return err
	}
	var r word.Word
	switch ins.Op {
	case vmcode.OpNot:
		r = word.Word(^uint16(a))
	case vmcode.OpNeg:
		r = -a
	default:
		return fmt.Errorf("not a unary opcode: %s", ins.Op)
	}
	if err := i.push(r); err != nil {
		return err
	}
	i.PC++
	return nil
}
