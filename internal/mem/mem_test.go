package mem

import "testing"

func TestScreenBijection(t *testing.T) {
	m := New()
	if err := m.Write(ScreenStart+5*WordsPerRow+3, 0x00F0); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := m.RGBA()
	row, w := 5, 3
	for bit := 0; bit < 16; bit++ {
		x := w*16 + bit
		off := (row*Cols + x) * 4
		wantBlack := bit >= 4 && bit <= 7
		isBlack := buf[off] == 0 && buf[off+1] == 0 && buf[off+2] == 0 && buf[off+3] == 255
		if isBlack != wantBlack {
			t.Errorf("bit %d: got black=%v, want %v", bit, isBlack, wantBlack)
		}
	}
}

func TestReadWriteOutOfBounds(t *testing.T) {
	m := New()
	if _, err := m.Read(Size); err == nil {
		t.Fatalf("expected out of bounds error")
	}
	if err := m.Write(Size, 1); err == nil {
		t.Fatalf("expected out of bounds error")
	}
}

func TestKeyboardRegister(t *testing.T) {
	m := New()
	if m.KeyPressed() != 0 {
		t.Fatalf("expected no key pressed initially")
	}
	m.SetKeyboard(65)
	if m.KeyPressed() != 65 {
		t.Fatalf("expected key 65, got %d", m.KeyPressed())
	}
}

func TestResetZeroes(t *testing.T) {
	m := New()
	m.MustWrite(100, 42)
	m.Reset()
	if m.MustRead(100) != 0 {
		t.Fatalf("expected memory to be zeroed after reset")
	}
}
