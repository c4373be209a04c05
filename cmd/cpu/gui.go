//go:build gui

package main

import (
	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"go.n2tcore.dev/emu/internal/cpu"
	"go.n2tcore.dev/emu/internal/mem"
)

var fontFace = text.NewGoXFace(bitmapfont.Face)

func init() {
	guiAvailable = true
	runGUI = runGUIImpl
}

func runGUIImpl(interp *cpu.Interp) error {
	g := &cpuGame{interp: interp, img: ebiten.NewImage(mem.Cols, mem.Rows)}
	ebiten.SetWindowSize(mem.Cols, mem.Rows)
	ebiten.SetWindowTitle("Hack CPU")
	return ebiten.RunGame(g)
}

type cpuGame struct {
	interp *cpu.Interp
	img    *ebiten.Image
}

const cpuStepsPerFrame = 20000

func (g *cpuGame) Update() error {
	if g.interp.Halted {
		return nil
	}
	return g.interp.StepTimes(cpuStepsPerFrame)
}

func (g *cpuGame) Draw(screen *ebiten.Image) {
	g.img.WritePixels(g.interp.Mem.RGBA())
	screen.DrawImage(g.img, nil)
}

func (g *cpuGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return mem.Cols, mem.Rows
}
