package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get and Named return usable loggers", func() {
				So(Get(), ShouldNotBeNil)
				So(Named("test"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with typed fields", func() {
			Named("scan").Info(context.Background(), "scan completed",
				String("session", "abc"),
				Int("anxiety_score", 30),
				Bool("synthetic", false),
				Duration("elapsed", 4*time.Second),
			)

			Convey("Then a single JSON record carries the group and fields", func() {
				var rec map[string]any
				So(json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "scan completed")
				group, ok := rec["scan"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["session"], ShouldEqual, "abc")
				So(group["anxiety_score"], ShouldEqual, 30)
				So(group["synthetic"], ShouldEqual, false)
				So(group["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")

			Convey("Then info records are filtered", func() {
				out := buf.String()
				So(strings.Contains(out, "hidden"), ShouldBeFalse)
				So(strings.Contains(out, "shown"), ShouldBeTrue)
			})
		})

		Convey("When an unknown level is given", func() {
			Convey("Then it is rejected", func() {
				So(SetLevelString("loud"), ShouldNotBeNil)
			})
		})
	})
}
