// Package mem implements the shared 16-bit word-addressed memory model
// of spec.md §3.1: general RAM, a memory-mapped monochrome screen, and a
// single keyboard register, plus a pixel-pack renderer into an RGBA
// buffer for the driver. Grounded on Corewar's vm/ram.go, which
// wraps a flat byte slice with typed accessors that fail the same way
// regardless of which segment ends up being touched; here the "segments"
// are Hack's RAM/screen/keyboard regions instead of Corewar's
// process-tagged bytes.
package mem

import (
	"fmt"

	"go.n2tcore.dev/emu/internal/errs"
	"go.n2tcore.dev/emu/internal/word"
)

const (
	// Size is the number of addressable 16-bit words in main memory.
	Size = 32768

	// ScreenStart and ScreenEnd bound the memory-mapped framebuffer
	// (inclusive), 8192 words = 256 rows * 32 words/row.
	ScreenStart = 16384
	ScreenEnd   = 24575
	ScreenWords = ScreenEnd - ScreenStart + 1
	WordsPerRow = 32
	Rows        = 256
	Cols        = WordsPerRow * 16 // 512 pixels wide.

	// Keyboard is the single memory-mapped keyboard register.
	Keyboard = 24576

	// HeapStart and HeapEnd bound the region Memory.alloc carves blocks
	// from (spec.md §4.5).
	HeapStart = 2048
	HeapEnd   = 16383

	// RomSize is the maximum number of 16-bit instruction words in ROM
	// (CPU mode only).
	RomSize = 32768
)

// Memory is the flat 32768-word address space shared by the CPU and VM
// interpreters. The screen and keyboard regions live inside it exactly
// as spec.md §3.1 describes: they are ordinary addresses, not a separate
// device model.
type Memory struct {
	words [Size]word.Word
}

// New returns a zeroed Memory.
func New() *Memory {
	return &Memory{}
}

// Reset zeroes every word, matching spec.md §5's "loading a program
// resets all state: memory, registers, framebuffer."
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// Read returns memory[addr], failing with ErrOutOfBounds outside 0..32767.
func (m *Memory) Read(addr word.Addr) (word.Word, error) {
	if int(addr) >= Size {
		return 0, fmt.Errorf("read address %d: %w", addr, errs.ErrOutOfBounds)
	}
	return m.words[addr], nil
}

// Write sets memory[addr] = v, failing with ErrOutOfBounds outside 0..32767.
func (m *Memory) Write(addr word.Addr, v word.Word) error {
	if int(addr) >= Size {
		return fmt.Errorf("write address %d: %w", addr, errs.ErrOutOfBounds)
	}
	m.words[addr] = v
	return nil
}

// MustRead panics if addr is out of bounds; used only where the caller
// has already range-checked addr (register-backed fixed addresses like
// SP/LCL/ARG/THIS/THAT, which are always < Size).
func (m *Memory) MustRead(addr word.Addr) word.Word {
	v, err := m.Read(addr)
	if err != nil {
		panic(err)
	}
	return v
}

// MustWrite panics if addr is out of bounds; see MustRead.
func (m *Memory) MustWrite(addr word.Addr, v word.Word) {
	if err := m.Write(addr, v); err != nil {
		panic(err)
	}
}

// SetKeyboard writes the current key code into memory[24576]; 0 means
// no key is pressed. This is the driver's only legal write into
// emulated memory from outside a Step call (spec.md §5, §6.1 SetInputKey).
func (m *Memory) SetKeyboard(code word.Word) {
	m.words[Keyboard] = code
}

// KeyPressed reads memory[24576].
func (m *Memory) KeyPressed() word.Word {
	return m.words[Keyboard]
}

// RGBA renders the screen region into a 512x256x4-byte buffer, one byte
// per channel, alpha always 255; a set bit renders black, a clear bit
// renders white (spec.md §6.1 display_data). Grounded on the same
// "walk memory once, emit bytes" shape as vm/ram.go's Bytes helper.
func (m *Memory) RGBA() []byte {
	buf := make([]byte, Cols*Rows*4)
	for row := 0; row < Rows; row++ {
		for w := 0; w < WordsPerRow; w++ {
			val := m.words[ScreenStart+row*WordsPerRow+w]
			for bit := 0; bit < 16; bit++ {
				x := w*16 + bit
				off := (row*Cols + x) * 4
				if word.Bit(val, bit) {
					buf[off], buf[off+1], buf[off+2], buf[off+3] = 0, 0, 0, 255
				} else {
					buf[off], buf[off+1], buf[off+2], buf[off+3] = 255, 255, 255, 255
				}
			}
		}
	}
	return buf
}
