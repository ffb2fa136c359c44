package sos_test

import (
	"errors"
	"testing"
	"time"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/internal/domain/sos"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEncode(t *testing.T) {
	Convey("Given scored vitals", t, func() {
		r := model.ScoredReading{
			Sample:       model.Sample{HeartRate: 85, BreathRate: 18},
			AnxietyScore: 32,
			Status:       model.StatusOptimal,
			Timestamp:    time.Now(),
		}

		Convey("When encoding", func() {
			out := sos.Encode(r)

			Convey("Then all four values appear in the documented order", func() {
				So(out, ShouldEqual, "SOS-ALERT | HR:85 | BR:18 | ANXIETY:32% | STATUS:Optimal")
			})

			Convey("And encoding again gives the same string", func() {
				So(sos.Encode(r), ShouldEqual, out)
			})

			Convey("And the string decodes back to the same values", func() {
				p, err := sos.Decode(out)
				So(err, ShouldBeNil)
				So(*p.HeartRate, ShouldEqual, 85)
				So(*p.BreathRate, ShouldEqual, 18)
				So(p.AnxietyScore, ShouldEqual, 32)
				So(p.Status, ShouldEqual, model.StatusOptimal)
			})
		})
	})

	Convey("Given pending vitals", t, func() {
		out := sos.Encode(model.Pending())

		Convey("Then placeholders are used instead of numbers", func() {
			So(out, ShouldEqual, "SOS-ALERT | HR:-- | BR:-- | ANXIETY:0% | STATUS:Pending")
		})

		Convey("And decoding yields nil rates", func() {
			p, err := sos.Decode(out)
			So(err, ShouldBeNil)
			So(p.HeartRate, ShouldBeNil)
			So(p.BreathRate, ShouldBeNil)
			So(p.Status, ShouldEqual, model.StatusPending)
		})
	})

	Convey("Given the zero reading", t, func() {
		Convey("Then it is rendered as pending", func() {
			So(sos.Encode(model.ScoredReading{}), ShouldEndWith, "STATUS:Pending")
		})
	})
}

func TestDecode_Malformed(t *testing.T) {
	Convey("Given malformed payloads", t, func() {
		cases := []string{
			"",
			"hello",
			"SOS-ALERT | HR:85 | BR:18 | ANXIETY:32%",
			"ALERT | HR:85 | BR:18 | ANXIETY:32% | STATUS:Optimal",
			"SOS-ALERT | HR:x | BR:18 | ANXIETY:32% | STATUS:Optimal",
			"SOS-ALERT | HR:85 | BR:18 | ANXIETY:32 | STATUS:Optimal",
			"SOS-ALERT | HR:85 | BR:18 | ANXIETY:32% | STATUS:High",
			"SOS-ALERT | BR:85 | HR:18 | ANXIETY:32% | STATUS:Optimal",
		}

		Convey("Then each is rejected with ErrMalformedPayload", func() {
			for _, c := range cases {
				_, err := sos.Decode(c)
				So(errors.Is(err, sos.ErrMalformedPayload), ShouldBeTrue)
			}
		})
	})
}
