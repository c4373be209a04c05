package script

import (
	"os"
	"testing"
)

// TestCPUTargetRegistersRoundTrip drives CPUTarget directly against a
// tiny assembled program, checking the register bridge the script
// interpreter's "set"/output-list commands rely on.
func TestCPUTargetRegistersRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/prog.asm"
	if err := os.WriteFile(path, []byte("@5\nD=A\n@6\nM=D\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := NewCPUTarget()
	if err := target.Load([]string{path}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for n := 0; n < 4; n++ {
		if err := target.Step(); err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
	}

	if got, ok := target.GetRegister("D"); !ok || got != 5 {
		t.Fatalf("D = %d, ok=%v, want 5, true", got, ok)
	}
	if got, err := target.GetRAM(6); err != nil || got != 5 {
		t.Fatalf("RAM[6] = %d, err=%v, want 5, nil", got, err)
	}
	if !target.SetRegister("PC", 0) {
		t.Fatal("SetRegister(PC) returned false")
	}
	if got, _ := target.GetRegister("PC"); got != 0 {
		t.Fatalf("PC = %d, want 0 after reset", got)
	}
}
