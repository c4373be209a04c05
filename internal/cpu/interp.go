package cpu

import (
	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/word"
)

// Interp is the Hack CPU interpreter (spec.md §3.2, §4.1): A, D, PC
// registers executing against ROM and the shared Memory. Grounded on
// the same "one struct, one Step" shape as internal/vm.Interp, which
// itself follows Corewar's vm/vm.go.
type Interp struct {
	Mem *mem.Memory
	ROM []word.Word

	A, D word.Word
	PC   int

	Halted bool
}

// New builds a CPU Interp over rom and m, PC at 0.
func New(m *mem.Memory, rom []word.Word) *Interp {
	return &Interp{Mem: m, ROM: rom}
}

// Step fetches and executes exactly one instruction (spec.md §4.1,
// one tick per A- or C-instruction).
func (i *Interp) Step() error {
	if i.Halted {
		return nil
	}
	if i.PC < 0 || i.PC >= len(i.ROM) {
		return errs.ErrNoInstructions
	}
	ins := i.ROM[i.PC]
	if ins>>15 == 0 {
		return i.execA(ins)
	}
	return i.execC(ins)
}

// StepTimes calls Step up to n times, stopping early once Halted.
func (i *Interp) StepTimes(n int) error {
	for j := 0; j < n && !i.Halted; j++ {
		if err := i.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interp) execA(ins word.Word) error {
	i.A = word.Word(uint16(ins) & 0x7FFF)
	i.PC++
	return nil
}

func (i *Interp) execC(ins word.Word) error {
	raw := uint16(ins)
	a := raw>>12&1 == 1
	compBits := raw >> 6 & 0x3F
	destBits := raw >> 3 & 0x7
	jumpBits := raw & 0x7

	y := i.A
	if a {
		v, err := i.Mem.Read(word.Addr(i.A))
		if err != nil {
			return err
		}
		y = v
	}

	result := alu(compBits, i.D, y)

	if destBits&0b100 != 0 {
		i.A = result
	}
	if destBits&0b010 != 0 {
		i.D = result
	}
	if destBits&0b001 != 0 {
		if err := i.Mem.Write(word.Addr(i.A), result); err != nil {
			return err
		}
	}

	if jumps(jumpBits, result) {
		i.PC = int(i.A)
	} else {
		i.PC++
	}
	return nil
}

// alu computes one of the 18 fixed Hack ALU functions selected by the
// 6 computation-control bits (spec.md §4.1).
func alu(bits uint16, d, y word.Word) word.Word {
	switch bits {
	case 0b101010:
		return 0
	case 0b111111:
		return 1
	case 0b111010:
		return -1
	case 0b001100:
		return d
	case 0b110000:
		return y
	case 0b001101:
		return ^d
	case 0b110001:
		return ^y
	case 0b001111:
		return -d
	case 0b110011:
		return -y
	case 0b011111:
		return d + 1
	case 0b110111:
		return y + 1
	case 0b001110:
		return d - 1
	case 0b110010:
		return y - 1
	case 0b000010:
		return d + y
	case 0b010011:
		return d - y
	case 0b000111:
		return y - d
	case 0b000000:
		return word.Word(uint16(d) & uint16(y))
	case 0b010101:
		return word.Word(uint16(d) | uint16(y))
	default:
		return 0
	}
}

func jumps(bits uint16, v word.Word) bool {
	switch bits {
	case 0b001:
		return v > 0
	case 0b010:
		return v == 0
	case 0b011:
		return v >= 0
	case 0b100:
		return v < 0
	case 0b101:
		return v != 0
	case 0b110:
		return v <= 0
	case 0b111:
		return true
	default:
		return false
	}
}
