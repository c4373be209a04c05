package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"go.n2tcore.dev/emu/internal/cpu"
)

// runTUI drives interp interactively, the same paused/step/quit keymap
// as the vm binary's terminal driver.
func runTUI(interp *cpu.Interp) {
	app := tview.NewApplication().EnableMouse(false)

	regs := tview.NewTextView().SetDynamicColors(true)
	regs.SetBorder(true).SetTitle("Registers")

	var (
		mu       sync.Mutex
		paused   = true
		stepOnce bool
	)

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

	draw := func() {
		regs.Clear()
		fmt.Fprintf(regs, "PC: %d\nA: %d\nD: %d\nHalted: %v\n",
			interp.PC, interp.A, interp.D, interp.Halted)
	}

	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			shouldStep := !paused || stepOnce
			stepOnce = false
			mu.Unlock()
			if !shouldStep || interp.Halted {
				continue
			}
			if err := interp.Step(); err != nil {
				mu.Lock()
				paused = true
				mu.Unlock()
				continue
			}
			app.QueueUpdateDraw(draw)
		}
	}()

	draw()
	if err := app.SetRoot(regs, true).SetFocus(regs).Run(); err != nil {
		panic(err)
	}
}
