// Package sensor defines what a scan session needs from a capture device and
// from the synthetic fallback. Adapters in internal/adapters/capture
// implement it.
package sensor

import (
	"context"
	"errors"

	"github.com/silentsignal/vitals/internal/domain/model"
)

// Sentinel kinds for device errors.
var (
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrPermissionDenied  = errors.New("capture permission denied")
	ErrDeviceBusy        = errors.New("capture device busy")
)

// Device is an exclusively held capture device. Acquire blocks until access
// is granted, refused, or ctx ends.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is a held device. Close releases it and may be called more than once.
type Stream interface {
	// Sample returns the latest live sample.
	Sample() model.Sample
	Close() error
}

// Source supplies a sample without holding a device.
type Source interface {
	Sample(ctx context.Context) model.Sample
}

// Unavailable refuses every request, as on a host with no camera.
type Unavailable struct{}

// Acquire always fails with ErrDeviceUnavailable.
func (Unavailable) Acquire(context.Context) (Stream, error) {
	return nil, ErrDeviceUnavailable
}
