package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/silentsignal/vitals/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ScanTick, convey.ShouldEqual, 80*time.Millisecond)
			convey.So(cfg.ScanDuration, convey.ShouldEqual, 4*time.Second)
			convey.So(cfg.DenialPolicy, convey.ShouldEqual, "notify")
			convey.So(cfg.HistoryCapacity, convey.ShouldEqual, 7)
			convey.So(cfg.AgentTimeout, convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreSQLite)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefresh, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"an unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"an unknown capture mode", func(c *config.Config) { c.CaptureMode = "webcam" }},
		{"a tick longer than the scan", func(c *config.Config) { c.ScanTick = 5 * time.Second }},
		{"a zero scan duration", func(c *config.Config) { c.ScanDuration = 0 }},
		{"an unknown denial policy", func(c *config.Config) { c.DenialPolicy = "alert" }},
		{"an empty history", func(c *config.Config) { c.HistoryCapacity = 0 }},
		{"an http sink without a url", func(c *config.Config) { c.LogSink = config.SinkHTTP }},
		{"a nats history source", func(c *config.Config) { c.HistorySource = config.SinkNATS }},
		{"no workers", func(c *config.Config) { c.WorkerCount = 0 }},
		{"a zero metrics refresh", func(c *config.Config) { c.MetricsRefresh = 0 }},
		{"an unknown store", func(c *config.Config) { c.StoreBackend = "postgres" }},
		{"a redis store without an address", func(c *config.Config) {
			c.StoreBackend = config.StoreRedis
			c.RedisAddr = ""
		}},
	}

	for _, tc := range cases {
		convey.Convey("Given a config with "+tc.name, t, func() {
			cfg := config.New()
			tc.mutate(cfg)

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	}

	convey.Convey("Given an http sink with a url", t, func() {
		cfg := config.New()
		cfg.LogSink = config.SinkHTTP
		cfg.HistorySource = config.SinkHTTP
		cfg.LogURL = "http://localhost:8000"

		convey.Convey("Then it is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
