package capture_test

import (
	"context"
	"errors"
	"testing"

	"github.com/silentsignal/vitals/internal/adapters/capture"
	"github.com/silentsignal/vitals/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSimulatedDevice(t *testing.T) {
	Convey("Given a simulated device", t, func() {
		ctx := context.Background()
		dev := capture.NewSimulatedDevice(capture.WithSeed(7))

		Convey("When acquired", func() {
			stream, err := dev.Acquire(ctx)
			So(err, ShouldBeNil)

			Convey("Then it is held exclusively", func() {
				So(dev.Held(), ShouldBeTrue)
				_, err := dev.Acquire(ctx)
				So(errors.Is(err, capture.ErrDeviceBusy), ShouldBeTrue)
				So(dev.Acquisitions(), ShouldEqual, 1)
			})

			Convey("And live samples stay within jitter of the baseline", func() {
				for i := 0; i < 200; i++ {
					s := stream.Sample()
					So(s.HeartRate, ShouldBeBetweenOrEqual, 82, 88)
					So(s.BreathRate, ShouldBeBetweenOrEqual, 16, 20)
				}
			})

			Convey("And closing twice releases it once without error", func() {
				So(stream.Close(), ShouldBeNil)
				So(stream.Close(), ShouldBeNil)
				So(dev.Held(), ShouldBeFalse)

				again, err := dev.Acquire(ctx)
				So(err, ShouldBeNil)
				So(again.Close(), ShouldBeNil)
				So(dev.Acquisitions(), ShouldEqual, 2)
			})
		})

		Convey("When the baseline sits at the edge of the band", func() {
			edge := capture.NewSimulatedDevice(capture.WithBaseline(119, 29), capture.WithJitter(10, 10))
			stream, err := edge.Acquire(ctx)
			So(err, ShouldBeNil)
			defer stream.Close()

			Convey("Then samples are clamped to the plausible band", func() {
				for i := 0; i < 200; i++ {
					s := stream.Sample()
					So(s.HeartRate, ShouldBeLessThanOrEqualTo, capture.MaxHeartRate)
					So(s.BreathRate, ShouldBeLessThanOrEqualTo, capture.MaxBreathRate)
				}
			})
		})

		Convey("When permission is denied", func() {
			denied := capture.NewSimulatedDevice(capture.WithDenied(true))
			_, err := denied.Acquire(ctx)

			Convey("Then Acquire fails and nothing is held", func() {
				So(errors.Is(err, capture.ErrPermissionDenied), ShouldBeTrue)
				So(denied.Held(), ShouldBeFalse)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := dev.Acquire(cctx)

			Convey("Then Acquire returns the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(dev.Held(), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unavailable device", t, func() {
		_, err := capture.UnavailableDevice{}.Acquire(context.Background())

		Convey("Then it always refuses", func() {
			So(errors.Is(err, capture.ErrDeviceUnavailable), ShouldBeTrue)
		})
	})
}

func TestSynthetic(t *testing.T) {
	Convey("Given a random synthetic source", t, func() {
		src := capture.NewSynthetic(capture.WithSyntheticSeed(3))

		Convey("Then every draw is inside the plausible band", func() {
			for i := 0; i < 500; i++ {
				s := src.Sample(context.Background())
				So(s.HeartRate, ShouldBeBetweenOrEqual, capture.MinHeartRate, capture.MaxHeartRate)
				So(s.BreathRate, ShouldBeBetweenOrEqual, capture.MinBreathRate, capture.MaxBreathRate)
			}
		})
	})

	Convey("Given synthetic sources", t, func() {
		draws := func(src *capture.Synthetic) []model.Sample {
			out := make([]model.Sample, 20)
			for i := range out {
				out[i] = src.Sample(context.Background())
			}
			return out
		}

		Convey("When two share an explicit seed", func() {
			Convey("Then they draw the same sequence", func() {
				So(draws(capture.NewSynthetic(capture.WithSyntheticSeed(11))),
					ShouldResemble, draws(capture.NewSynthetic(capture.WithSyntheticSeed(11))))
			})
		})

		Convey("When two use the default seed", func() {
			Convey("Then their sequences differ", func() {
				So(draws(capture.NewSynthetic()), ShouldNotResemble, draws(capture.NewSynthetic()))
			})
		})
	})

	Convey("Given a fixed synthetic source", t, func() {
		src := capture.NewSynthetic(capture.WithFixed(85, 18))

		Convey("Then it always returns the fixed sample", func() {
			s := src.Sample(context.Background())
			So(s.HeartRate, ShouldEqual, 85)
			So(s.BreathRate, ShouldEqual, 18)
		})
	})
}
