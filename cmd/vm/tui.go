package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"go.n2tcore.dev/emu/display"
	"go.n2tcore.dev/emu/internal/loader"
)

// runTUI drives loaded interactively in a terminal, grounded on the
// Corewar's cmd/corewar/main.go Game: a tview.Application, a paused
// flag toggled by space (n asks for a single step while paused), and a
// background goroutine that steps the
// interpreter on a ticker while the UI redraws.
func runTUI(loaded *loader.Loaded) {
	app := tview.NewApplication().EnableMouse(false)

	regs := tview.NewTextView().SetDynamicColors(true)
	regs.SetBorder(true).SetTitle("Registers")

	logs := tview.NewTextView().SetDynamicColors(true)
	logs.SetBorder(true).SetTitle("Events")
	logs.ScrollToEnd()

	flex := tview.NewFlex().
		AddItem(regs, 0, 1, false).
		AddItem(logs, 0, 2, false)

	var (
		mu     sync.Mutex
		paused = true
	)

	stepOnce := false
	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Rune() {
		case ' ':
			mu.Lock()
			paused = !paused
			mu.Unlock()
			return nil
		case 'n':
			mu.Lock()
			stepOnce = true
			mu.Unlock()
			return nil
		case 'q':
			app.Stop()
			return nil
		}
		if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return ev
	})

	events := make(chan display.Event, 16)
	loaded.Interp.Events = events
	go func() {
		for ev := range events {
			app.QueueUpdateDraw(func() {
				fmt.Fprintf(logs, "[%d] %s\n", ev.Kind, strings.TrimSpace(ev.Message))
			})
		}
	}()

	draw := func() {
		regs.Clear()
		fmt.Fprintf(regs, "PC: %d\nHalted: %v\nSP: %d\n",
			loaded.Interp.PC, loaded.Interp.Halted, loaded.Interp.Mem.MustRead(0))
	}

	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			shouldStep := !paused || stepOnce
			stepOnce = false
			mu.Unlock()
			if !shouldStep || loaded.Interp.Halted {
				continue
			}
			if err := loaded.Interp.Step(); err != nil {
				app.QueueUpdateDraw(func() {
					fmt.Fprintf(logs, "[red]error: %s[-]\n", err)
				})
				mu.Lock()
				paused = true
				mu.Unlock()
				continue
			}
			app.QueueUpdateDraw(draw)
		}
	}()

	draw()
	if err := app.SetRoot(flex, true).SetFocus(flex).Run(); err != nil {
		panic(err)
	}
}
