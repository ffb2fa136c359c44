package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/silentsignal/vitals/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScoredReading(t *testing.T) {
	convey.Convey("Given a scored reading", t, func() {
		ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
		r := model.NewReading(model.Sample{HeartRate: 85, BreathRate: 18}, 30, model.StatusOptimal, ts)

		convey.Convey("Then it carries the values it was built with", func() {
			convey.So(r.ID, convey.ShouldNotBeEmpty)
			convey.So(r.Sample.HeartRate, convey.ShouldEqual, 85)
			convey.So(r.Sample.BreathRate, convey.ShouldEqual, 18)
			convey.So(r.AnxietyScore, convey.ShouldEqual, 30)
			convey.So(r.Status, convey.ShouldEqual, model.StatusOptimal)
			convey.So(r.Timestamp, convey.ShouldEqual, ts)
			convey.So(r.IsPending(), convey.ShouldBeFalse)
		})

		convey.Convey("And two readings never share an id", func() {
			other := model.NewReading(r.Sample, r.AnxietyScore, r.Status, ts)
			convey.So(other.ID, convey.ShouldNotEqual, r.ID)
		})
	})

	convey.Convey("Given the pending sentinel", t, func() {
		p := model.Pending()

		convey.Convey("Then it reports itself as pending", func() {
			convey.So(p.IsPending(), convey.ShouldBeTrue)
			convey.So(p.Status, convey.ShouldEqual, model.StatusPending)
			convey.So(p.AnxietyScore, convey.ShouldEqual, 0)
		})

		convey.Convey("And the zero value is treated the same way", func() {
			convey.So(model.ScoredReading{}.IsPending(), convey.ShouldBeTrue)
		})
	})
}

func TestStatusSeverity(t *testing.T) {
	convey.Convey("Given the known statuses", t, func() {
		convey.Convey("Then severity increases from pending to critical", func() {
			convey.So(model.StatusPending.Severity(), convey.ShouldBeLessThan, model.StatusOptimal.Severity())
			convey.So(model.StatusOptimal.Severity(), convey.ShouldBeLessThan, model.StatusElevated.Severity())
			convey.So(model.StatusElevated.Severity(), convey.ShouldBeLessThan, model.StatusCritical.Severity())
		})

		convey.Convey("And only known values are valid", func() {
			convey.So(model.StatusCritical.Valid(), convey.ShouldBeTrue)
			convey.So(model.Status("High").Valid(), convey.ShouldBeFalse)
			convey.So(model.Status("High").Severity(), convey.ShouldEqual, 0)
		})
	})
}

func TestLogEntry(t *testing.T) {
	convey.Convey("Given a completed reading", t, func() {
		ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
		r := model.NewReading(model.Sample{HeartRate: 100, BreathRate: 24}, 46, model.StatusElevated, ts)

		convey.Convey("When it is converted to a log entry", func() {
			e := model.EntryFromReading(r)

			convey.Convey("Then vitals and classification carry over without a cognitive load", func() {
				convey.So(e.HeartRate, convey.ShouldEqual, 100)
				convey.So(e.BreathRate, convey.ShouldEqual, 24)
				convey.So(e.AnxietyScore, convey.ShouldEqual, 46)
				convey.So(e.Status, convey.ShouldEqual, model.StatusElevated)
				convey.So(e.CognitiveLoad, convey.ShouldBeNil)
				convey.So(e.Timestamp, convey.ShouldEqual, ts)
			})

			convey.Convey("And it converts back to the same vitals", func() {
				back := e.Reading()
				convey.So(back.Sample, convey.ShouldResemble, r.Sample)
				convey.So(back.AnxietyScore, convey.ShouldEqual, 46)
				convey.So(back.Status, convey.ShouldEqual, model.StatusElevated)
			})

			convey.Convey("And the wire form uses snake_case keys and omits the empty id", func() {
				raw, err := json.Marshal(e)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, `"anxiety_score":46`)
				convey.So(string(raw), convey.ShouldNotContainSubstring, `"id"`)
				convey.So(string(raw), convey.ShouldNotContainSubstring, `cognitive_load`)
			})
		})
	})

	convey.Convey("Given a log entry without a timestamp", t, func() {
		raw, err := json.Marshal(model.LogEntry{AnxietyScore: 10, Status: model.StatusOptimal})

		convey.Convey("Then the timestamp is left out of the body", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(raw), convey.ShouldNotContainSubstring, "timestamp")
		})
	})
}
