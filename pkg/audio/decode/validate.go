// ABOUTME: Pluggable input validation for the PCM decoder
// ABOUTME: Optional checks callers can enable at the file boundary
package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned by RequireNonEmpty for zero-length input
	ErrEmpty = errors.New("pcm data is empty")

	// ErrOddLength is returned by RequireEvenLength when the input has a partial frame
	ErrOddLength = errors.New("pcm data length is not a multiple of 2")
)

// Validator inspects raw bytes before they are decoded
type Validator func(data []byte) error

// RequireNonEmpty rejects zero-length input
func RequireNonEmpty(data []byte) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	return nil
}

// RequireEvenLength rejects input with a trailing partial frame
func RequireEvenLength(data []byte) error {
	if len(data)%2 != 0 {
		return fmt.Errorf("%w (got %d bytes)", ErrOddLength, len(data))
	}
	return nil
}

// Chain runs validators in order and returns the first failure
func Chain(validators ...Validator) Validator {
	return func(data []byte) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(data); err != nil {
				return err
			}
		}
		return nil
	}
}

// Strict is the validation the browser player applied before decoding
var Strict = Chain(RequireNonEmpty, RequireEvenLength)
