package recognition

import (
	"context"
	"errors"
)

var (
	ErrCapabilityUnavailable = errors.New("speech recognition is not available")
	ErrPermissionDenied      = errors.New("microphone access denied")
	ErrNoSpeech              = errors.New("no speech detected")
)

// Channel is the speech-to-text input.
type Channel interface {
	// Capture blocks until one finalized transcript was captured. It returns
	// ErrNoSpeech if the capture ended without anything recognized,
	// ErrCapabilityUnavailable or ErrPermissionDenied if capturing is not
	// possible at all, and the context's error if it was cancelled.
	Capture(ctx context.Context) (string, error)
}

// IsUnavailable reports errors after which no further capture should be
// attempted.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrCapabilityUnavailable) || errors.Is(err, ErrPermissionDenied)
}
