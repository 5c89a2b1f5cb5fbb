package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexMissing is returned when the line index cannot be read. The
	// catalog cannot be built without it.
	ErrIndexMissing = errors.New("railway lines index missing")

	// ErrIntegrity matches any *IntegrityError.
	ErrIntegrity = errors.New("catalog integrity check failed")
)

// IntegrityError reports key stations absent from an otherwise loaded catalog.
type IntegrityError struct {
	Missing []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("catalog integrity check failed: missing key stations: %s", strings.Join(e.Missing, ", "))
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}
