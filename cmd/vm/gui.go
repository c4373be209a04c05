//go:build gui

package main

import (
	"image"
	"image/color"

	"github.com/ebitenui/ebitenui"
	eimage "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"go.n2tcore.dev/emu/internal/loader"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/word"
)

var fontFace = text.NewGoXFace(bitmapfont.Face)

func init() {
	guiAvailable = true
	runGUI = runGUIImpl
}

// runGUIImpl opens a window rendering the emulated screen memory and
// forwarding key events into memory[24576] (spec.md §6.3's graphical
// window build). Grounded on vm-viewer-2's ebiten.Game skeleton,
// adapted from Corewar's RAM dump to this emulator's pixel framebuffer.
func runGUIImpl(loaded *loader.Loaded) error {
	g := &hackGame{loaded: loaded, img: ebiten.NewImage(mem.Cols, mem.Rows)}
	g.ui = buildOverlay(g)
	ebiten.SetWindowSize(mem.Cols, mem.Rows)
	ebiten.SetWindowTitle("Hack")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

// buildOverlay wires a single pause/resume button, the one control
// this window needs beyond the keyboard-to-memory bridge, onto an
// ebitenui root container.
func buildOverlay(g *hackGame) *ebitenui.UI {
	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(widget.RowLayoutOpts.Direction(widget.DirectionVertical))),
	)

	idle := eimage.NewNineSliceColor(color.NRGBA{R: 60, G: 60, B: 60, A: 200})
	hover := eimage.NewNineSliceColor(color.NRGBA{R: 90, G: 90, B: 90, A: 200})
	pressed := eimage.NewNineSliceColor(color.NRGBA{R: 30, G: 30, B: 30, A: 200})

	button := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: idle, Hover: hover, Pressed: pressed}),
		widget.ButtonOpts.Text("Pause", fontFace, &widget.ButtonTextColor{Idle: color.White}),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.paused = !g.paused
			if g.paused {
				args.Button.Text().Label = "Resume"
			} else {
				args.Button.Text().Label = "Pause"
			}
		}),
	)
	root.AddChild(button)

	return &ebitenui.UI{Container: root}
}

type hackGame struct {
	loaded *loader.Loaded
	img    *ebiten.Image
	ui     *ebitenui.UI
	paused bool
}

// stepsPerFrame throttles how many VM instructions run per 1/60s tick;
// enough to keep a nand2tetris-scale program responsive without
// pegging a core.
const stepsPerFrame = 20000

func (g *hackGame) Update() error {
	g.ui.Update()
	if g.paused || g.loaded.Interp.Halted {
		return nil
	}
	code := readPressedKey()
	g.loaded.Interp.Mem.SetKeyboard(code)
	for i := 0; i < stepsPerFrame && !g.loaded.Interp.Halted; i++ {
		if err := g.loaded.Interp.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hackGame) Draw(screen *ebiten.Image) {
	pix := g.loaded.Interp.Mem.RGBA()
	g.img.WritePixels(pix)
	screen.DrawImage(g.img, nil)
	if g.loaded.Interp.Halted {
		op := &text.DrawOptions{}
		op.ColorScale.ScaleWithColor(image.Black.C)
		text.Draw(screen, "halted", fontFace, op)
	}
	g.ui.Draw(screen)
}

func (g *hackGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return mem.Cols, mem.Rows
}

// keyCodes maps the ebiten keys a Hack program can observe down to the
// scan codes spec.md §3.1 defines for memory[24576]; only the first
// pressed match wins, same single-register limitation as the original
// keyboard chip.
var keyCodes = map[ebiten.Key]word.Word{
	ebiten.KeyEnter:     128,
	ebiten.KeyBackspace: 129,
	ebiten.KeyArrowLeft: 130,
	ebiten.KeyArrowUp:   131,
	ebiten.KeyArrowRight: 132,
	ebiten.KeyArrowDown: 133,
	ebiten.KeyHome:      134,
	ebiten.KeyEnd:       135,
	ebiten.KeyPageUp:    136,
	ebiten.KeyPageDown:  137,
	ebiten.KeyInsert:    138,
	ebiten.KeyDelete:    139,
	ebiten.KeyEscape:    140,
	ebiten.KeyF1:        141,
	ebiten.KeyF2:        142,
}

func readPressedKey() word.Word {
	for key, code := range keyCodes {
		if ebiten.IsKeyPressed(key) {
			return code
		}
	}
	for r := rune('a'); r <= rune('z'); r++ {
		if ebiten.IsKeyPressed(ebiten.Key(ebiten.KeyA) + ebiten.Key(r-'a')) {
			return word.Word(r - 'a' + 'A')
		}
	}
	for d := rune('0'); d <= rune('9'); d++ {
		if ebiten.IsKeyPressed(ebiten.Key(ebiten.Key0) + ebiten.Key(d-'0')) {
			return word.Word(d)
		}
	}
	if ebiten.IsKeyPressed(ebiten.KeySpace) {
		return word.Word(' ')
	}
	return 0
}
