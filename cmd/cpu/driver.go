package main

import "go.n2tcore.dev/emu/internal/cpu"

// guiAvailable and runGUI are wired by gui.go when built with the "gui"
// tag; headless otherwise (spec.md §6.3).
var (
	guiAvailable = false
	runGUI       func(*cpu.Interp) error
)
