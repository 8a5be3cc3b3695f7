package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strconv"
	"testing"

	"github.com/okian/compensa/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.SalaryBands, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COMPENSA_ADDR", ":8080")
			_ = os.Setenv("COMPENSA_WORKER_COUNT", "16")
			_ = os.Setenv("COMPENSA_MAX_BATCH_SIZE", "500")
			_ = os.Setenv("COMPENSA_DIVISION_PRECISION", "12")
			_ = os.Setenv("COMPENSA_HISTOGRAM_BIN_WIDTH", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 500)
				convey.So(cfg.DivisionPrecision, convey.ShouldEqual, int32(12))
				convey.So(cfg.HistogramBinWidth, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# Service settings
addr: ":9090"
worker_count: 24
band_cache_ttl_seconds: 60
salary_bands:
  - role: Trader
    level: Senior
    min: 100000
    max: 180000.50
fallback_band:
  min: 1
  max: 999999
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("COMPENSA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.BandCacheTTLSeconds, convey.ShouldEqual, 60)
			})

			convey.Convey("And the band table replaces the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SalaryBands, convey.ShouldHaveLength, 1)
				convey.So(cfg.SalaryBands[0].Role, convey.ShouldEqual, "Trader")
				convey.So(cfg.SalaryBands[0].Max, convey.ShouldEqual, "180000.50")
				convey.So(cfg.SalaryBands[0].Target, convey.ShouldBeEmpty)
				convey.So(cfg.FallbackBand.Max, convey.ShouldEqual, "999999")
			})
		})

		convey.Convey("When band limits carry more digits than a float64 holds", func() {
			tmpFile := createTempConfigFile(`
salary_bands:
  - role: Trader
    level: Senior
    min: 100000.12345678901234567
    max: 250000.98765432109876543
    target: 175000
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COMPENSA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then every digit survives into the band table", func() {
				convey.So(cfg.SalaryBands[0].Min, convey.ShouldEqual, "100000.12345678901234567")
				convey.So(cfg.SalaryBands[0].Max, convey.ShouldEqual, "250000.98765432109876543")
				convey.So(cfg.SalaryBands[0].Target, convey.ShouldEqual, "175000")

				table, err := cfg.BandTable()
				convey.So(err, convey.ShouldBeNil)
				band, err := table.Lookup(ctx, "Trader", "Senior")
				convey.So(err, convey.ShouldBeNil)
				convey.So(band.Min.String(), convey.ShouldEqual, "100000.12345678901234567")
				convey.So(band.Max.String(), convey.ShouldEqual, "250000.98765432109876543")
			})
		})

		convey.Convey("When the request body limit is set apart from the upload limit", func() {
			_ = os.Setenv("COMPENSA_MAX_BODY_BYTES", "4096")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then only the body limit changes", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(4096))
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(10<<20))
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
worker_count: 24
max_batch_size: 300
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("COMPENSA_CONFIG", tmpFile)
			_ = os.Setenv("COMPENSA_ADDR", ":8080")
			_ = os.Setenv("COMPENSA_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")     // env
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)   // env
				convey.So(cfg.MaxBatchSize, convey.ShouldEqual, 300) // file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("COMPENSA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("COMPENSA_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("COMPENSA_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderValidation(t *testing.T) {
	convey.Convey("Given config loader validation", t, func() {
		ctx := context.Background()

		cases := []struct{ name, value string }{
			{"COMPENSA_ADDR", ""},
			{"COMPENSA_WORKER_COUNT", "0"},
			{"COMPENSA_DIVISION_PRECISION", "-1"},
			{"COMPENSA_HISTOGRAM_BIN_WIDTH", "0"},
			{"COMPENSA_MAX_BATCH_SIZE", "-5"},
			{"COMPENSA_MAX_UPLOAD_BYTES", "0"},
			{"COMPENSA_MAX_BODY_BYTES", "0"},
			{"COMPENSA_BAND_CACHE_TTL_SECONDS", "-1"},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.name+" is "+strconv.Quote(tc.value), func() {
				_ = os.Setenv(tc.name, tc.value)
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx)

				convey.Convey("Then it should return a validation error", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(cfg, convey.ShouldBeNil)
				})
			})
		}

		convey.Convey("When the YAML band table has an inverted band", func() {
			tmpFile := createTempConfigFile(`
salary_bands:
  - role: Trader
    level: Senior
    min: 200000
    max: 100000
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COMPENSA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then the band is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"COMPENSA_CONFIG",
		"COMPENSA_ADDR",
		"COMPENSA_WORKER_COUNT",
		"COMPENSA_DIVISION_PRECISION",
		"COMPENSA_HISTOGRAM_BIN_WIDTH",
		"COMPENSA_MAX_BATCH_SIZE",
		"COMPENSA_MAX_UPLOAD_BYTES",
		"COMPENSA_MAX_BODY_BYTES",
		"COMPENSA_BAND_CACHE_TTL_SECONDS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "compensa-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
