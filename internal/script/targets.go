package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.n2tcore.dev/emu/internal/cpu"
	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/loader"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

// CPUTarget drives internal/cpu.Interp from a script (spec.md §6.3:
// "cpu accepts a .tst file").
type CPUTarget struct {
	Interp *cpu.Interp
}

func NewCPUTarget() *CPUTarget { return &CPUTarget{} }

// Load assembles a single .asm (or loads a .hack word list) and resets
// the CPU against it.
func (t *CPUTarget) Load(paths []string) error {
	if len(paths) != 1 {
		return &ScriptError{Msg: "cpu load expects exactly one file"}
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
	t.Interp = cpu.New(mem.New(), rom)
	return nil
}

func (t *CPUTarget) Step() error { return t.Interp.Step() }

func (t *CPUTarget) GetRAM(addr int) (word.Word, error) {
	return t.Interp.Mem.Read(word.Addr(addr))
}

func (t *CPUTarget) SetRAM(addr int, v word.Word) error {
	return t.Interp.Mem.Write(word.Addr(addr), v)
}

func (t *CPUTarget) GetRegister(name string) (word.Word, bool) {
	switch name {
	case "A":
		return t.Interp.A, true
	case "D":
		return t.Interp.D, true
	case "PC":
		return word.Word(t.Interp.PC), true
	default:
		return 0, false
	}
}

func (t *CPUTarget) SetRegister(name string, v word.Word) bool {
	switch name {
	case "A":
		t.Interp.A = v
	case "D":
		t.Interp.D = v
	case "PC":
		t.Interp.PC = int(v)
	default:
		return false
	}
	return true
}

// VMTarget drives a linked VM program from a script (spec.md §6.3:
// "vm accepts a directory ... or a .tst file").
type VMTarget struct {
	Loaded *loader.Loaded
}

func NewVMTarget() *VMTarget { return &VMTarget{} }

// Load parses every ".vm" file in a directory (or a single file) and
// links it against the standard library.
func (t *VMTarget) Load(paths []string) error {
	var files []vmcode.SourceFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, errs.ErrIO)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				return fmt.Errorf("read dir %s: %w", p, errs.ErrIO)
			}
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".vm") {
					continue
				}
				full := filepath.Join(p, e.Name())
				data, err := os.ReadFile(full)
				if err != nil {
					return fmt.Errorf("read %s: %w", full, errs.ErrIO)
				}
				files = append(files, vmcode.SourceFile{Name: e.Name(), Data: string(data)})
			}
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, errs.ErrIO)
		}
		files = append(files, vmcode.SourceFile{Name: filepath.Base(p), Data: string(data)})
	}

	loaded, err := loader.Load(files)
	if err != nil {
		return err
	}
	t.Loaded = loaded
	return nil
}

func (t *VMTarget) Step() error { return t.Loaded.Interp.Step() }

func (t *VMTarget) GetRAM(addr int) (word.Word, error) {
	return t.Loaded.Interp.Mem.Read(word.Addr(addr))
}

func (t *VMTarget) SetRAM(addr int, v word.Word) error {
	return t.Loaded.Interp.Mem.Write(word.Addr(addr), v)
}

func (t *VMTarget) GetRegister(name string) (word.Word, bool) {
	switch name {
	case "SP":
		return t.Loaded.Interp.Mem.MustRead(vm.AddrSP), true
	case "LCL":
		return t.Loaded.Interp.Mem.MustRead(vm.AddrLCL), true
	case "ARG":
		return t.Loaded.Interp.Mem.MustRead(vm.AddrARG), true
	case "THIS":
		return t.Loaded.Interp.Mem.MustRead(vm.AddrTHIS), true
	case "THAT":
		return t.Loaded.Interp.Mem.MustRead(vm.AddrTHAT), true
	case "PC":
		return word.Word(t.Loaded.Interp.PC), true
	default:
		return 0, false
	}
}

func (t *VMTarget) SetRegister(name string, v word.Word) bool {
	switch name {
	case "SP":
		t.Loaded.Interp.Mem.MustWrite(vm.AddrSP, v)
	case "LCL":
		t.Loaded.Interp.Mem.MustWrite(vm.AddrLCL, v)
	case "ARG":
		t.Loaded.Interp.Mem.MustWrite(vm.AddrARG, v)
	case "THIS":
		t.Loaded.Interp.Mem.MustWrite(vm.AddrTHIS, v)
	case "THAT":
		t.Loaded.Interp.Mem.MustWrite(vm.AddrTHAT, v)
	case "PC":
		t.Loaded.Interp.PC = int(v)
	default:
		return false
	}
	return true
}
