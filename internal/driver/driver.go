// Package driver wires internal/loader, internal/vm, and internal/cpu
// behind one interface a UI can consume without knowing which mode is
// active (spec.md §6.1).
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.n2tcore.dev/emu/internal/cpu"
	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/loader"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

// Emulator is the driver-facing API of spec.md §6.1, satisfied by both
// VM and CPU modes so a UI can be written once against either.
type Emulator interface {
	Load(files []string) error
	Reset()
	Step() error
	StepTimes(n int) error
	DisplayData() []byte
	SetInputKey(code word.Word)
	CurrentFileName() string
	CurrentFunctionName() string
	CurrentFileOffset() int
	Stack() []string
	Locals() []string
	Args() []string
}

// VM wraps a linked VM program (spec.md §6.1's driver over §4.3-4.5).
type VM struct {
	prog   *vmcode.Program
	loaded *loader.Loaded
}

func NewVM() *VM { return &VM{} }

// Load parses and links paths (a directory of .vm files or a single
// file, same as script.VMTarget.Load); the parsed Program is kept so
// Reset never re-parses (spec.md §6.1's "reinitialize ... without
// re-parsing").
func (d *VM) Load(paths []string) error {
	files, err := readVMSources(paths)
	if err != nil {
		return err
	}
	prog, err := vmcode.Parse(files)
	if err != nil {
		return err
	}
	d.prog = prog
	return d.relink()
}

func readVMSources(paths []string) ([]vmcode.SourceFile, error) {
	var files []vmcode.SourceFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, errs.ErrIO)
		}
		if !info.IsDir() {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", p, errs.ErrIO)
			}
			files = append(files, vmcode.SourceFile{Name: filepath.Base(p), Data: string(data)})
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", p, errs.ErrIO)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".vm") {
				continue
			}
			full := filepath.Join(p, e.Name())
			data, err := os.ReadFile(full)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", full, errs.ErrIO)
			}
			files = append(files, vmcode.SourceFile{Name: e.Name(), Data: string(data)})
		}
	}
	return files, nil
}

func (d *VM) relink() error {
	loaded, err := loader.LoadProgram(d.prog)
	if err != nil {
		return err
	}
	d.loaded = loaded
	return nil
}

// Reset reinitializes memory and registers against the already-parsed
// program.
func (d *VM) Reset() {
	if d.prog == nil {
		return
	}
	_ = d.relink()
}

func (d *VM) Step() error           { return d.loaded.Interp.Step() }
func (d *VM) StepTimes(n int) error { return d.loaded.Interp.StepTimes(n) }

func (d *VM) DisplayData() []byte { return d.loaded.Interp.Mem.RGBA() }

func (d *VM) SetInputKey(code word.Word) { d.loaded.Interp.Mem.SetKeyboard(code) }

func (d *VM) currentInstruction() (vmcode.Instruction, bool) {
	i := d.loaded.Interp
	if i.PC < 0 || i.PC >= len(i.Prog.Instructions) {
		return vmcode.Instruction{}, false
	}
	return i.Prog.Instructions[i.PC], true
}

func (d *VM) CurrentFileName() string {
	ins, ok := d.currentInstruction()
	if !ok {
		return ""
	}
	return ins.File
}

func (d *VM) CurrentFunctionName() string {
	ins, ok := d.currentInstruction()
	if !ok {
		return ""
	}
	return ins.Function
}

func (d *VM) CurrentFileOffset() int {
	ins, ok := d.currentInstruction()
	if !ok {
		return 0
	}
	return ins.Offset
}

// frameBounds locates the current frame's locals and working-stack
// regions from LCL/ARG/SP (spec.md §9's "reconstruct the call chain by
// walking frames via saved LCL values" applied to the innermost frame,
// which is all a register snapshot needs).
func (d *VM) frameBounds() (localsStart, localsEnd, stackStart, stackEnd int) {
	i := d.loaded.Interp
	lcl := int(i.Mem.MustRead(vm.AddrLCL))
	sp := int(i.Mem.MustRead(vm.AddrSP))
	nLocals := 0
	if ins, ok := d.currentInstruction(); ok {
		if fi, ok := i.Prog.Functions[ins.Function]; ok {
			nLocals = fi.NLocals
		}
	}
	localsEnd = lcl + nLocals
	if localsEnd > sp {
		localsEnd = sp
	}
	return lcl, localsEnd, localsEnd, sp
}

func (d *VM) Locals() []string {
	start, end, _, _ := d.frameBounds()
	return formatRange(d.loaded.Interp.Mem, start, end)
}

func (d *VM) Stack() []string {
	_, _, start, end := d.frameBounds()
	return formatRange(d.loaded.Interp.Mem, start, end)
}

func (d *VM) Args() []string {
	i := d.loaded.Interp
	lcl := int(i.Mem.MustRead(vm.AddrLCL))
	arg := int(i.Mem.MustRead(vm.AddrARG))
	nArgs := lcl - 5 - arg
	if nArgs < 0 {
		nArgs = 0
	}
	return formatRange(i.Mem, arg, arg+nArgs)
}

func formatRange(m *mem.Memory, start, end int) []string {
	if end < start {
		return nil
	}
	out := make([]string, 0, end-start)
	for a := start; a < end; a++ {
		out = append(out, strconv.Itoa(int(m.MustRead(word.Addr(a)))))
	}
	return out
}

// CPU wraps a bare ROM program (spec.md §6.1's driver over §4.1); it
// has no call-frame convention, so Stack/Locals/Args are always empty.
type CPU struct {
	rom    []word.Word
	interp *cpu.Interp
}

func NewCPU() *CPU { return &CPU{} }

// Load assembles a single .asm file (or loads a .hack word list); the
// ROM is kept so Reset rebuilds without reassembling.
func (d *CPU) Load(paths []string) error {
	if len(paths) != 1 {
		return fmt.Errorf("cpu load expects exactly one file: %w", errs.ErrIO)
	}
	path := paths[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, errs.ErrIO)
	}
	var rom []word.Word
	if strings.HasSuffix(path, ".hack") {
		rom, err = cpu.ParseHack(string(data))
	} else {
		rom, err = cpu.Assemble(filepath.Base(path), string(data))
	}
	if err != nil {
		return err
	}
	d.rom = rom
	d.Reset()
	return nil
}

func (d *CPU) Reset() {
	d.interp = cpu.New(mem.New(), d.rom)
}

func (d *CPU) Step() error           { return d.interp.Step() }
func (d *CPU) StepTimes(n int) error { return d.interp.StepTimes(n) }
func (d *CPU) DisplayData() []byte   { return d.interp.Mem.RGBA() }

func (d *CPU) SetInputKey(code word.Word) { d.interp.Mem.SetKeyboard(code) }

func (d *CPU) CurrentFileName() string     { return "" }
func (d *CPU) CurrentFunctionName() string { return "" }
func (d *CPU) CurrentFileOffset() int      { return d.interp.PC }

// Stack returns nil: raw Hack machine code has no stack-pointer
// convention the way compiled VM bytecode does, so there is nothing
// to walk.
func (d *CPU) Stack() []string  { return nil }
func (d *CPU) Locals() []string { return nil }
func (d *CPU) Args() []string   { return nil }
