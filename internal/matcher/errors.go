package matcher

import "errors"

// Matcher errors.
var (
	// ErrUnknownStrategy indicates the configured strategy has no
	// implementation.
	ErrUnknownStrategy = errors.New("matcher: unknown strategy")
)
