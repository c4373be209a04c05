// Command cpu runs the Hack CPU interpreter against an assembled .asm
// program or a .tst test script driving one (spec.md §6.3).
package main

import (
	"fmt"
	"os"
	"strings"

	"go.n2tcore.dev/emu/cli"
	"go.n2tcore.dev/emu/internal/cpu"
	"go.n2tcore.dev/emu/internal/script"
)

const usage = `usage: cpu [-h] [-tui] <path>

path is either a .asm source file, a .hack word list, or a .tst test
script driving one of the above.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "cpu:", err)
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

func runScript(path string, tui bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	stmts, err := script.Parse(string(data))
	if err != nil {
		return err
	}
	target := script.NewCPUTarget()
	interp := script.New(target)
	if err := interp.Run(stmts); err != nil {
		return err
	}
	if err := interp.WriteOutput(); err != nil {
		return err
	}
	if tui {
		runTUI(target.Interp)
	}
	return interp.Compare()
}

func runProgram(path string, tui bool) error {
	target := script.NewCPUTarget()
	if err := target.Load([]string{path}); err != nil {
		return err
	}
	return drive(target.Interp, tui)
}

func drive(interp *cpu.Interp, tui bool) error {
	switch {
	case tui:
		runTUI(interp)
		return nil
	case guiAvailable:
		return runGUI(interp)
	default:
		return runHeadless(interp)
	}
}

const maxTicks = 10_000_000

func runHeadless(interp *cpu.Interp) error {
	return interp.StepTimes(maxTicks)
}
