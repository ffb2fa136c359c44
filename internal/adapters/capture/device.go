// Package capture provides the sensor.Device and sensor.Source
// implementations a scan session draws samples from.
package capture

import (
	"github.com/silentsignal/vitals/internal/domain/sensor"
)

// Plausible physiological bands used to clamp simulated samples.
const (
	MinHeartRate  = 60
	MaxHeartRate  = 120
	MinBreathRate = 12
	MaxBreathRate = 30
)

// Capture errors are the sensor sentinels, re-exported for callers that only
// import this package.
var (
	ErrDeviceUnavailable = sensor.ErrDeviceUnavailable
	ErrPermissionDenied  = sensor.ErrPermissionDenied
	ErrDeviceBusy        = sensor.ErrDeviceBusy
)

var (
	_ sensor.Device = (*SimulatedDevice)(nil)
	_ sensor.Source = (*Synthetic)(nil)
)

// UnavailableDevice is the device used on headless hosts.
type UnavailableDevice = sensor.Unavailable

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
