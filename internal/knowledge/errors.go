package knowledge

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from
// callers.
var (
	ErrLoadRules       = errors.New("load pose rules failed")
	ErrLoadSafety      = errors.New("load safety tables failed")
	ErrLoadCorrections = errors.New("load correction library failed")
	ErrMalformed       = errors.New("malformed knowledge base")
)
