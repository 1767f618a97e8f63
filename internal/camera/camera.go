package camera

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Facing selects which camera to open.
type Facing string

const (
	FacingRear Facing = "rear"
	FacingAny  Facing = "any"
)

var (
	// ErrUnavailable is returned when no camera could be opened.
	ErrUnavailable = errors.New("camera: no camera available")
	// ErrNoDevice is returned by a provider that has no camera for the requested facing.
	ErrNoDevice = errors.New("camera: no device for facing")
	// ErrClosed is returned when capturing from a released stream.
	ErrClosed = errors.New("camera: stream closed")
)

// Photo is a still image encoded as a data URL.
type Photo string

// Stream is an open camera. Close must be called on every exit path.
type Stream interface {
	Capture() (Photo, error)
	Close() error
}

// Provider opens camera streams.
type Provider interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Acquire opens the rear camera, falling back once to any camera.
func Acquire(ctx context.Context, p Provider) (Stream, error) {
	if p == nil {
		return nil, ErrUnavailable
	}

	s, err := p.Open(ctx, FacingRear)
	if err == nil {
		return s, nil
	}
	log.Printf("rear camera unavailable (%v); falling back to any camera", err)

	s, fallbackErr := p.Open(ctx, FacingAny)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, fallbackErr)
	}
	return s, nil
}
