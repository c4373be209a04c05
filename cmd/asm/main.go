// Command asm standalone-compiles a .asm file to a .hack word listing,
// the same "assemble to a binary artifact" step cmd/cpu does
// inline when handed a .asm path directly, split out here for scripted
// batch builds.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.n2tcore.dev/emu/internal/cpu"
	"go.n2tcore.dev/emu/internal/word"
)

func run(input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	rom, err := cpu.Assemble(input, string(data))
	if err != nil {
		return fmt.Errorf("failed to compile: %w", err)
	}

	return os.WriteFile(output, []byte(formatHack(rom)), 0o644)
}

func formatHack(rom []word.Word) string {
	var sb strings.Builder
	for _, w := range rom {
		sb.WriteString(pad16(strconv.FormatUint(uint64(uint16(w)), 2)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pad16(bits string) string {
	return strings.Repeat("0", 16-len(bits)) + bits
}

func main() {
	log.SetFlags(0)
	output := flag.String("o", "", "output file, default to <input>.hack")
	flag.Parse()
	input := flag.Arg(0)
	if input == "" {
		tmp := strings.Split(os.Args[0], "/")
		binName := tmp[len(tmp)-1]
		fmt.Fprintf(os.Stderr, "usage: %s <.asm path> [options]\n", binName)
		flag.PrintDefaults()
		return
	}
	if *output == "" {
		*output = strings.ReplaceAll(input, ".asm", ".hack")
	}

	if err := run(input, *output); err != nil {
		log.Fatalf("fail: %s.", err)
	}
}
