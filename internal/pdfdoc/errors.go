package pdfdoc

import (
	"errors"
	"fmt"
)

// UnreadableError marks a document whose bytes cannot be parsed as a PDF at
// all: corrupt, truncated, or encrypted. It is a hard, per-document error;
// other documents in the same batch are unaffected.
type UnreadableError struct {
	Name string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable document %q: %v", e.Name, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// IsUnreadable reports whether err wraps an UnreadableError.
func IsUnreadable(err error) bool {
	var ue *UnreadableError
	return errors.As(err, &ue)
}
