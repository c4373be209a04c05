package builtin

import (
	"errors"
	"testing"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/vmcode"
	"go.n2tcore.dev/emu/internal/word"
)

func newCtx(t *testing.T) *vm.Interp {
	t.Helper()
	return vm.New(mem.New(), &vmcode.Program{Functions: map[string]*vmcode.FunctionInfo{}}, map[string]*vm.Function{})
}

// TestScreenPixelDisplay is scenario 5 of spec.md §8: drawing a pixel
// must flip exactly the one bit it addresses in the screen map, and
// switching the color off must clear that same bit again.
func TestScreenPixelDisplay(t *testing.T) {
	ctx := newCtx(t)
	s := newScreenState()

	if _, err := s.drawPixel(ctx, &vm.Frame{Args: []word.Word{10, 3}}); err != nil {
		t.Fatalf("drawPixel: %v", err)
	}
	addr := word.Addr(mem.ScreenStart + (3*mem.Cols+10)>>4)
	mask := uint16(1) << uint(10&15)
	if got := uint16(ctx.Mem.MustRead(addr)); got&mask == 0 {
		t.Fatalf("pixel (10,3) bit not set: word = %016b", got)
	}

	if _, err := s.setColor(ctx, &vm.Frame{Args: []word.Word{0}}); err != nil {
		t.Fatalf("setColor: %v", err)
	}
	if _, err := s.drawPixel(ctx, &vm.Frame{Args: []word.Word{10, 3}}); err != nil {
		t.Fatalf("drawPixel (erase): %v", err)
	}
	if got := uint16(ctx.Mem.MustRead(addr)); got&mask != 0 {
		t.Fatalf("pixel (10,3) bit still set after erase: word = %016b", got)
	}
}

func TestScreenPixelOutOfBounds(t *testing.T) {
	ctx := newCtx(t)
	s := newScreenState()
	_, err := s.drawPixel(ctx, &vm.Frame{Args: []word.Word{512, 0}})
	if err == nil {
		t.Fatal("expected an out-of-bounds error, got nil")
	}
}

// TestKeyboardReadCharWaitsForReleaseThenPushesCode is scenario 6 of
// spec.md §8: Keyboard.readChar must stall across ticks while a key is
// held, and only hand back its (uppercased) code once it is released.
func TestKeyboardReadCharWaitsForReleaseThenPushesCode(t *testing.T) {
	ctx := newCtx(t)
	f := &vm.Frame{}

	res, err := keyboardReadChar(ctx, f)
	if err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if res.Kind != vm.ResultContinue {
		t.Fatalf("tick 1 kind = %v, want ResultContinue (no key pressed yet)", res.Kind)
	}
	f.State = res.NextState

	ctx.Mem.SetKeyboard('a')
	res, err = keyboardReadChar(ctx, f)
	if err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if res.Kind != vm.ResultContinue {
		t.Fatalf("tick 2 kind = %v, want ResultContinue (waiting for release)", res.Kind)
	}
	f.State = res.NextState
	if f.Scratch != 'A' {
		t.Fatalf("scratch = %q, want uppercased 'A'", f.Scratch)
	}

	res, err = keyboardReadChar(ctx, f)
	if err != nil {
		t.Fatalf("tick 3 (still held): %v", err)
	}
	if res.Kind != vm.ResultContinue {
		t.Fatalf("tick 3 kind = %v, want ResultContinue (still held)", res.Kind)
	}

	ctx.Mem.SetKeyboard(0)
	res, err = keyboardReadChar(ctx, f)
	if err != nil {
		t.Fatalf("tick 4 (released): %v", err)
	}
	if res.Kind != vm.ResultCallBuiltin || res.Target != "Output.printChar" {
		t.Fatalf("tick 4 = %+v, want CallBuiltin(Output.printChar)", res)
	}
	f.State = res.NextState

	res, err = keyboardReadChar(ctx, f)
	if err != nil {
		t.Fatalf("tick 5: %v", err)
	}
	if res.Kind != vm.ResultReturn || res.Value != 'A' {
		t.Fatalf("final = %+v, want Return('A')", res)
	}
}

func TestMathDivideByZero(t *testing.T) {
	ctx := newCtx(t)
	_, err := mathDivide(ctx, &vm.Frame{Args: []word.Word{10, 0}})
	if !errors.Is(err, errs.ErrDivisionByZero) {
		t.Fatalf("err = %v, want ErrDivisionByZero", err)
	}
}
