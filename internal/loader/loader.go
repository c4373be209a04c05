// Package loader resolves a parsed VM program against the built-in
// standard library and produces a ready-to-run vm.Interp (spec.md §6.2).
//
// Grounded on Corewar's cli.ParseConfig/loadPlayers two-step shape
// (parse, then validate/link before anything runs): every call target
// anywhere in the program is checked against the merged function table
// here, at load time, so a missing function surfaces as a LinkError
// before a single instruction executes rather than mid-run.
package loader

import (
	"go.n2tcore.dev/emu/internal/builtin"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/vmcode"
)

// Loaded is a program linked against the standard library and ready to
// run: the Interp plus the Library instance backing its state, since a
// driver may want to reset or inspect Output/Screen/Memory state
// directly (spec.md §6.1).
type Loaded struct {
	Interp  *vm.Interp
	Library *builtin.Library
	Entry   string
}

// sysInitName is the conventional Hack VM entry point (spec.md §6.2):
// execution starts there when the program defines it, or when the
// program defines Main.main (the built-in Sys.init then bootstraps it).
const sysInitName = "Sys.init"

// Load parses files, merges the result with the standard library, and
// links: any call target that resolves to neither a parsed VM function
// nor a built-in routine is a LinkError, reported here rather than at
// the first attempt to call it.
func Load(files []vmcode.SourceFile) (*Loaded, error) {
	prog, err := vmcode.Parse(files)
	if err != nil {
		return nil, err
	}
	return LoadProgram(prog)
}

// LoadProgram links an already-parsed Program, skipping the parse step
// (used by callers that build a Program by hand, e.g. tests).
func LoadProgram(prog *vmcode.Program) (*Loaded, error) {
	lib := builtin.New()
	builtins := lib.Table()

	funcs := make(map[string]*vm.Function, len(prog.Functions)+len(builtins))
	for name, fi := range prog.Functions {
		funcs[name] = &vm.Function{VM: fi}
	}
	for name, routine := range builtins {
		if _, exists := funcs[name]; exists {
			// A program-defined function shadows the corresponding
			// built-in; spec.md §4.5 treats the standard library as the
			// default implementation, not a reserved namespace.
			continue
		}
		funcs[name] = &vm.Function{Builtin: routine}
	}

	if err := linkCheck(prog, funcs); err != nil {
		return nil, err
	}

	m := mem.New()
	interp := vm.New(m, prog, funcs)

	// A program with no function declaration at all (spec.md §8's bare
	// push/pop/arithmetic scenarios, e.g. a raw BasicTest.vm) has no name
	// to start at; it runs straight from instruction 0 with no
	// function-table lookup involved.
	if len(prog.Functions) == 0 {
		m.MustWrite(vm.AddrSP, vm.StackStart)
		interp.StartRaw()
		return &Loaded{Interp: interp, Library: lib, Entry: ""}, nil
	}

	// The built-in Sys.init (and the Memory.init/Main.main bootstrap it
	// runs) only makes sense when the program actually defines Main.main;
	// a program that defines its own Sys.init is started at that VM
	// function, and a raw, bootstrap-free VM program (spec.md §8's
	// scenarios) is started at its own sole entry function instead.
	_, ownSysInit := prog.Functions[sysInitName]
	entry := sysInitName
	if _, ok := prog.Functions["Main.main"]; !ok && !ownSysInit {
		entry = soleEntry(prog)
	}

	if entry == sysInitName && !ownSysInit {
		if err := interp.StartBuiltin(sysInitName); err != nil {
			return nil, err
		}
	} else {
		m.MustWrite(vm.AddrSP, vm.StackStart)
		if err := interp.StartVM(entry); err != nil {
			return nil, err
		}
	}

	return &Loaded{Interp: interp, Library: lib, Entry: entry}, nil
}

// soleEntry picks the bootstrap-free entry point for raw VM test
// programs (spec.md §8): the single defined function, or "Main.main" if
// present among several.
func soleEntry(prog *vmcode.Program) string {
	if _, ok := prog.Functions["Main.main"]; ok {
		return "Main.main"
	}
	for name := range prog.Functions {
		return name
	}
	return ""
}

// linkCheck verifies every call target in the instruction stream
// resolves to something in funcs (spec.md §7: link errors are a load-
// time, not run-time, failure).
func linkCheck(prog *vmcode.Program, funcs map[string]*vm.Function) error {
	for _, ins := range prog.Instructions {
		if ins.Op != vmcode.OpCall {
			continue
		}
		if _, ok := funcs[ins.Target]; !ok {
			return &vmcode.LinkError{Name: ins.Target, Site: ins.File + ":" + ins.Function}
		}
	}
	return nil
}
