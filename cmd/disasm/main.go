// Command disasm renders a compiled Hack ROM (.hack) or freshly
// assembled source (.asm) back to assembly text (spec.md §6.3).
package main

import (
	"fmt"
	"os"
	"strings"

	"go.n2tcore.dev/emu/internal/cpu"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <.asm|.hack path>\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "disasm:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var out string
	if strings.HasSuffix(path, ".hack") {
		parsed, err := cpu.ParseHack(string(data))
		if err != nil {
			return err
		}
		out = cpu.Disassemble(parsed)
	} else {
		parsed, err := cpu.Assemble(path, string(data))
		if err != nil {
			return err
		}
		out = cpu.Disassemble(parsed)
	}
	fmt.Print(out)
	return nil
}
