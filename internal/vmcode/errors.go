package vmcode

import (
	"fmt"

	"go.n2tcore.dev/emu/internal/errs"
)

// ParseError is a file:line-located VM parse failure (spec.md §7).
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return errs.ErrParse }

// LinkError is an unresolved function or label at load time (spec.md §7).
type LinkError struct {
	Name string
	Site string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("undefined %q referenced from %s", e.Name, e.Site)
}

func (e *LinkError) Unwrap() error { return errs.ErrLink }
