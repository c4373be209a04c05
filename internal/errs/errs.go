// Package errs defines the error categories of spec.md §7.
// Every runtime or load-time failure produced anywhere in this module
// wraps one of these sentinels with fmt.Errorf's %w, the same idiom the
// Corewar repo uses throughout (cli.ParseConfig, asm.Compile, ...): no
// error-handling library appears anywhere in the source repos consulted
// while building this, so wrapped stdlib errors are the grounded choice
// here.
package errs

import "errors"

var (
	// ErrParse covers VM/ASM/TST parsing failures.
	ErrParse = errors.New("parse error")
	// ErrLink covers unresolved functions or labels at load time.
	ErrLink = errors.New("link error")
	// ErrOutOfBounds covers memory or ROM addresses outside their valid range.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrInvalidSegmentAccess covers malformed segment addressing (pop
	// constant, temp i with i>=8, negative index, ...).
	ErrInvalidSegmentAccess = errors.New("invalid segment access")
	// ErrStackOverflow covers SP exceeding its maximum.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow covers popping past SP's minimum.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrDivisionByZero covers Math.divide(_, 0).
	ErrDivisionByZero = errors.New("division by zero")
	// ErrCompareMismatch covers a test-script output/compare diff.
	ErrCompareMismatch = errors.New("compare mismatch")
	// ErrIO covers a failed file load.
	ErrIO = errors.New("io error")
	// ErrNoInstructions covers the CPU's PC running past the end of ROM.
	ErrNoInstructions = errors.New("no instructions")
)
