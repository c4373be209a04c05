package cli

import "testing"

func TestParsePath(t *testing.T) {
	cfg, err := Parse([]string{"prog.vm"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Path != "prog.vm" || cfg.Help {
		t.Fatalf("cfg = %+v, want Path=prog.vm, Help=false", cfg)
	}
}

func TestParseHelp(t *testing.T) {
	cfg, err := Parse([]string{"--help"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Help {
		t.Fatal("Help = false, want true")
	}
}

func TestParseNoArgsIsError(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected an error for no path")
	}
}

func TestParseExtraArgIsError(t *testing.T) {
	if _, err := Parse([]string{"a.vm", "b.vm"}); err == nil {
		t.Fatal("expected an error for a second positional argument")
	}
}
