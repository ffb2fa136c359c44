package capture

import (
	"context"
	"math/rand"
	"sync"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/internal/domain/sensor"
)

// Default simulated device configuration constants.
const (
	defaultBaselineHeart  = 85
	defaultBaselineBreath = 18
	defaultHeartJitter    = 3
	defaultBreathJitter   = 2
)

// SimulatedOption applies a configuration option to the SimulatedDevice.
type SimulatedOption func(*SimulatedDevice)

// WithBaseline sets the sample the jitter is centred on.
func WithBaseline(heartRate, breathRate int) SimulatedOption {
	return func(d *SimulatedDevice) {
		if heartRate > 0 && breathRate > 0 {
			d.baseline = model.Sample{HeartRate: heartRate, BreathRate: breathRate}
		}
	}
}

// WithJitter sets the maximum deviation from baseline per live sample.
func WithJitter(heart, breath int) SimulatedOption {
	return func(d *SimulatedDevice) {
		if heart >= 0 && breath >= 0 {
			d.heartJitter = heart
			d.breathJitter = breath
		}
	}
}

// WithDenied makes every Acquire fail with ErrPermissionDenied.
func WithDenied(denied bool) SimulatedOption {
	return func(d *SimulatedDevice) {
		d.denied = denied
	}
}

// WithSeed seeds the jitter generator. Without it the seed comes from the clock.
func WithSeed(seed int64) SimulatedOption {
	return func(d *SimulatedDevice) {
		d.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulated sensor noise
	}
}

// SimulatedDevice stands in for a camera: it grants exclusive access and
// reports baseline values with bounded noise. It is not a physiological model.
type SimulatedDevice struct {
	mu           sync.Mutex
	baseline     model.Sample
	heartJitter  int
	breathJitter int
	denied       bool
	held         bool
	acquired     int
	rng          *rand.Rand
}

// NewSimulatedDevice creates a simulated device with configuration options.
func NewSimulatedDevice(opts ...SimulatedOption) *SimulatedDevice {
	d := &SimulatedDevice{
		baseline:     model.Sample{HeartRate: defaultBaselineHeart, BreathRate: defaultBaselineBreath},
		heartJitter:  defaultHeartJitter,
		breathJitter: defaultBreathJitter,
		rng:          rand.New(rand.NewSource(clockSeed())), //nolint:gosec // simulated sensor noise
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Acquire grants exclusive access to the device.
func (d *SimulatedDevice) Acquire(ctx context.Context) (sensor.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.denied {
		return nil, ErrPermissionDenied
	}
	if d.held {
		return nil, ErrDeviceBusy
	}
	d.held = true
	d.acquired++
	return &simulatedStream{device: d}, nil
}

// Held reports whether a stream currently holds the device.
func (d *SimulatedDevice) Held() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.held
}

// Acquisitions counts successful Acquire calls.
func (d *SimulatedDevice) Acquisitions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acquired
}

func (d *SimulatedDevice) jittered() model.Sample {
	d.mu.Lock()
	defer d.mu.Unlock()

	return model.Sample{
		HeartRate:  clamp(d.baseline.HeartRate+d.noise(d.heartJitter), MinHeartRate, MaxHeartRate),
		BreathRate: clamp(d.baseline.BreathRate+d.noise(d.breathJitter), MinBreathRate, MaxBreathRate),
	}
}

// noise returns a value in [-bound, bound]. Callers hold d.mu.
func (d *SimulatedDevice) noise(bound int) int {
	if bound == 0 {
		return 0
	}
	return d.rng.Intn(2*bound+1) - bound
}

func (d *SimulatedDevice) release() {
	d.mu.Lock()
	d.held = false
	d.mu.Unlock()
}

type simulatedStream struct {
	device *SimulatedDevice
	once   sync.Once
}

func (s *simulatedStream) Sample() model.Sample {
	return s.device.jittered()
}

func (s *simulatedStream) Close() error {
	s.once.Do(s.device.release)
	return nil
}
