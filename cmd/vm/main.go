// Command vm runs the Hack VM bytecode interpreter, either driving a
// test script to completion or stepping a linked program until its
// outermost return (spec.md §6.3).
//
// Grounded on Corewar's cmd/corewar/main.go: parse CLI args, build
// a runner, run it, report a non-zero exit on failure. A build tag
// ("gui") swaps the headless driver for an ebiten window; see gui.go.
package main

import (
	"fmt"
	"os"
	"strings"

	"go.n2tcore.dev/emu/cli"
	"go.n2tcore.dev/emu/internal/loader"
	"go.n2tcore.dev/emu/internal/script"
)

const usage = `usage: vm [-h] [-tui] <path>

path is either a directory of .vm files, a single .vm file, or a .tst
test script driving one of the above.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vm:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var tui bool
	var rest []string
	for _, a := range args {
		if a == "-tui" {
			tui = true
			continue
		}
		rest = append(rest, a)
	}

	cfg, err := cli.Parse(rest)
	if err != nil {
		return err
	}
	if cfg.Help {
		fmt.Print(usage)
		return nil
	}
	if !cli.PathExists(cfg.Path) {
		return fmt.Errorf("no such path %q", cfg.Path)
	}

	if strings.HasSuffix(cfg.Path, ".tst") {
		return runScript(cfg.Path, tui)
	}
	return runProgram(cfg.Path, tui)
}

// runScript drives a .tst file against a fresh VMTarget (spec.md §4.6,
// §6.3's "vm accepts ... a .tst file").
func runScript(path string, tui bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	stmts, err := script.Parse(string(data))
	if err != nil {
		return err
	}
	target := script.NewVMTarget()
	interp := script.New(target)
	if err := interp.Run(stmts); err != nil {
		return err
	}
	if err := interp.WriteOutput(); err != nil {
		return err
	}
	if tui {
		runTUI(target.Loaded)
	}
	return interp.Compare()
}

// runProgram loads a bare directory or single .vm file and runs it to
// its outermost return, with no script driving it (spec.md §8's raw
// scenarios, surfaced directly on the binary for ad hoc use).
func runProgram(path string, tui bool) error {
	target := script.NewVMTarget()
	if err := target.Load([]string{path}); err != nil {
		return err
	}
	return drive(target.Loaded, tui)
}

// drive picks the active driver: -tui always wins, then the gui build
// tag (spec.md §6.3's "a build switch enables a graphical window"),
// otherwise plain headless stepping.
func drive(loaded *loader.Loaded, tui bool) error {
	switch {
	case tui:
		runTUI(loaded)
		return nil
	case guiAvailable:
		return runGUI(loaded)
	default:
		return runHeadless(loaded)
	}
}

// maxTicks bounds a headless run so a program that never halts can't
// hang the binary forever.
const maxTicks = 10_000_000

func runHeadless(loaded *loader.Loaded) error {
	for n := 0; n < maxTicks && !loaded.Interp.Halted; n++ {
		if err := loaded.Interp.Step(); err != nil {
			return err
		}
	}
	return nil
}
