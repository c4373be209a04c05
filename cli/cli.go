// Package cli parses the non-standard CLI flags shared by the vm and
// cpu binaries (spec.md §6.3): a single path argument plus --help.
package cli

import (
	"fmt"
	"os"
)

// Config is the parsed command line for either binary.
type Config struct {
	Path string
	Help bool
}

// Parse processes os.Args[1:] by hand, the same manual arg-scanning
// shape Corewar's cli.parse uses instead of the flag package.
func Parse(args []string) (Config, error) {
	var cfg Config
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			cfg.Help = true
			return cfg, nil
		default:
			if cfg.Path != "" {
				return Config{}, fmt.Errorf("unexpected extra argument %q", arg)
			}
			cfg.Path = arg
		}
	}
	if cfg.Path == "" && !cfg.Help {
		return Config{}, fmt.Errorf("no path provided")
	}
	return cfg, nil
}

// PathExists reports whether path names something on disk, used to
// decide between treating it as a .tst script vs. a raw program file.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
