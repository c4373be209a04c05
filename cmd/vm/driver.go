package main

import "go.n2tcore.dev/emu/internal/loader"

// guiAvailable and runGUI are wired by gui.go when built with the "gui"
// tag; left as a no-op otherwise so headless stays the unconditional
// default build (spec.md §6.3).
var (
	guiAvailable = false
	runGUI       func(*loader.Loaded) error
)
