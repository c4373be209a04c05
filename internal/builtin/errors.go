package builtin

import (
	"fmt"

	"go.n2tcore.dev/emu/internal/errs"
)

// argError reports an out-of-range argument to a built-in call. These
// map onto spec.md §7's OutOfBounds category: every case here is a
// caller-supplied value outside the range the routine can honor, the
// same shape as an out-of-bounds memory access.
func argError(routine, msg string) error {
	return fmt.Errorf("%s: %s: %w", routine, msg, errs.ErrOutOfBounds)
}
