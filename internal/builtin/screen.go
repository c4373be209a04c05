package builtin

import (
	"go.n2tcore.dev/emu/internal/mem"
	"go.n2tcore.dev/emu/internal/vm"
	"go.n2tcore.dev/emu/internal/word"
)

// screenState holds the current drawing color (spec.md §4.5), the one
// piece of state Screen.* calls share across calls. Grounded on
// original_source/src/simulators/vm/stdlib/os_screen.rs, whose
// Bresenham line/circle math is ported unchanged.
type screenState struct {
	black bool
}

func newScreenState() *screenState {
	return &screenState{black: true}
}

func (s *screenState) init(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.black = true
	return vm.Return(0), nil
}

func (s *screenState) setColor(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	s.black = f.Args[0] != 0
	return vm.Return(0), nil
}

func screenClearScreen(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	for a := mem.ScreenStart; a <= mem.ScreenEnd; a++ {
		ctx.Mem.MustWrite(word.Addr(a), 0)
	}
	return vm.Return(0), nil
}

func checkBounds(x, y word.Word) error {
	if x < 0 || int(x) >= mem.Cols || y < 0 || int(y) >= mem.Rows {
		return argError("Screen", "coordinates out of bounds")
	}
	return nil
}

func (s *screenState) updateLocation(ctx *vm.Interp, addr int, mask uint16) {
	a := word.Addr(mem.ScreenStart + addr)
	v := uint16(ctx.Mem.MustRead(a))
	if s.black {
		v |= mask
	} else {
		v &^= mask
	}
	ctx.Mem.MustWrite(a, word.Word(v))
}

func (s *screenState) drawPixel(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	x, y := f.Args[0], f.Args[1]
	if err := checkBounds(x, y); err != nil {
		return vm.StepResult{}, err
	}
	addr := (int(y)*mem.Cols + int(x)) >> 4
	mask := uint16(1) << uint(int(x)&15)
	s.updateLocation(ctx, addr, mask)
	return vm.Return(0), nil
}

func (s *screenState) drawConditional(ctx *vm.Interp, x, y word.Word, exchange bool) {
	a, b := int(x), int(y)
	if exchange {
		a, b = int(y), int(x)
	}
	addr := (b*mem.Cols + a) >> 4
	mask := uint16(1) << uint(a&15)
	s.updateLocation(ctx, addr, mask)
}

func (s *screenState) drawLine(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	x1, y1, x2, y2 := f.Args[0], f.Args[1], f.Args[2], f.Args[3]
	if err := checkBounds(x1, y1); err != nil {
		return vm.StepResult{}, err
	}
	if err := checkBounds(x2, y2); err != nil {
		return vm.StepResult{}, err
	}

	dx := abs16(x2 - x1)
	dy := abs16(y2 - y1)
	loopOverY := dx < dy
	if (loopOverY && y2 < y1) || (!loopOverY && x2 < x1) {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}

	var x, y, endX, deltaY word.Word
	if loopOverY {
		dx, dy = dy, dx
		delta := word.Word(1)
		if x1 > x2 {
			delta = -1
		}
		x, y, endX, deltaY = y1, x1, y2, delta
	} else {
		delta := word.Word(1)
		if y1 > y2 {
			delta = -1
		}
		x, y, endX, deltaY = x1, y1, x2, delta
	}

	s.drawConditional(ctx, x, y, loopOverY)
	varTerm := 2*dy - dx
	twoY := 2 * dy
	twoYMinusTwoDx := twoY - 2*dx

	for px := x; px < endX; px++ {
		if varTerm < 0 {
			varTerm += twoY
		} else {
			varTerm += twoYMinusTwoDx
			y += deltaY
		}
		s.drawConditional(ctx, px+1, y, loopOverY)
	}
	return vm.Return(0), nil
}

func (s *screenState) drawRectangle(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	x1, y1, x2, y2 := f.Args[0], f.Args[1], f.Args[2], f.Args[3]
	if err := checkBounds(x1, y1); err != nil {
		return vm.StepResult{}, err
	}
	if err := checkBounds(x2, y2); err != nil {
		return vm.StepResult{}, err
	}
	x1Word, x2Word := int(x1)>>4, int(x2)>>4
	address := int(y1)*(mem.Cols>>4) + x1Word
	firstMask := uint16(0xFFFF) << uint(int(x1)&15)
	lastMask := uint16(0xFFFF) >> uint(15-(int(x2)&15))
	mask := firstMask & lastMask
	diff := x2Word - x1Word

	if diff == 0 {
		for yy := y1; yy <= y2; yy++ {
			s.updateLocation(ctx, address, mask)
			address += mem.Cols >> 4
		}
		return vm.Return(0), nil
	}
	for yy := y1; yy <= y2; yy++ {
		lastInLine := address + diff
		s.updateLocation(ctx, address, firstMask)
		address++
		for address < lastInLine {
			s.updateLocation(ctx, address, 0xFFFF)
			address++
		}
		s.updateLocation(ctx, address, lastMask)
		address += (mem.Cols >> 4) - diff
	}
	return vm.Return(0), nil
}

func (s *screenState) drawTwoHorizontal(ctx *vm.Interp, y1, y2, minX, maxX word.Word) {
	minXWord, maxXWord := int(minX)>>4, int(maxX)>>4
	addr1 := int(y1)*(mem.Cols>>4) + minXWord
	addr2 := int(y2)*(mem.Cols>>4) + minXWord
	firstMask := uint16(0xFFFF) << uint(int(minX)&15)
	lastMask := uint16(0xFFFF) >> uint(15-(int(maxX)&15))
	mask := firstMask & lastMask
	diff := maxXWord - minXWord

	if diff == 0 {
		s.updateLocation(ctx, addr1, mask)
		s.updateLocation(ctx, addr2, mask)
		return
	}
	lastInLine := addr1 + diff
	s.updateLocation(ctx, addr1, firstMask)
	s.updateLocation(ctx, addr2, firstMask)
	addr1++
	addr2++
	for addr1 < lastInLine {
		s.updateLocation(ctx, addr1, 0xFFFF)
		s.updateLocation(ctx, addr2, 0xFFFF)
		addr1++
		addr2++
	}
	s.updateLocation(ctx, addr1, lastMask)
	s.updateLocation(ctx, addr2, lastMask)
}

func (s *screenState) drawCircle(ctx *vm.Interp, f *vm.Frame) (vm.StepResult, error) {
	x, y, r := f.Args[0], f.Args[1], f.Args[2]
	if err := checkBounds(x, y); err != nil {
		return vm.StepResult{}, err
	}
	if err := checkBounds(x-r, y-r); err != nil {
		return vm.StepResult{}, err
	}
	if err := checkBounds(x+r, y+r); err != nil {
		return vm.StepResult{}, err
	}

	delta1, delta2 := word.Word(0), r
	varTerm := 1 - r

	s.drawTwoHorizontal(ctx, y-delta2, y+delta2, x-delta1, x+delta1)
	s.drawTwoHorizontal(ctx, y-delta1, y+delta1, x-delta2, x+delta2)

	for delta2 > delta1 {
		if varTerm < 0 {
			varTerm += 2*delta1 + 3
		} else {
			varTerm += 2*(delta1-delta2) + 5
			delta2--
		}
		delta1++
		s.drawTwoHorizontal(ctx, y-delta2, y+delta2, x-delta1, x+delta1)
		s.drawTwoHorizontal(ctx, y-delta1, y+delta1, x-delta2, x+delta2)
	}
	return vm.Return(0), nil
}

func abs16(v word.Word) word.Word {
	if v < 0 {
		return -v
	}
	return v
}
