package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/nodo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.BackendURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(strings.HasSuffix(cfg.SessionFile, "session.yaml"), convey.ShouldBeTrue)
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs to validate", t, func() {
		convey.Convey("When the backend URL has a trailing slash", func() {
			cfg := config.New()
			cfg.BackendURL = "https://api.nodo.test/"

			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.BackendURL, convey.ShouldEqual, "https://api.nodo.test")
		})

		convey.Convey("When the backend URL is relative", func() {
			cfg := config.New()
			cfg.BackendURL = "/api"

			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the scheme is not http", func() {
			cfg := config.New()
			cfg.BackendURL = "ftp://files.nodo.test"

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the session file is blank", func() {
			cfg := config.New()
			cfg.SessionFile = "  "

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
