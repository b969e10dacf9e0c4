package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/Bruzzknock/Meeplelytics/internal/app"
	"github.com/Bruzzknock/Meeplelytics/internal/config"
	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
	"github.com/Bruzzknock/Meeplelytics/pkg/metrics"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration is loaded from the environment", func() {
			t.Setenv("MEEPLE_ADDR", ":8080")
			t.Setenv("MEEPLE_QUEUE_SIZE", "1000")
			t.Setenv("MEEPLE_WORKER_COUNT", "4")

			convey.Convey("Then the overrides are applied", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the service is built from configuration", func() {
			cfg := config.New(context.Background())
			cfg.WorkerCount = 3
			cfg.QueueSize = 64
			svc := app.New(serviceOptions(cfg, logger.NewNop())...)

			convey.Convey("Then the options reach the service", func() {
				stats := svc.GetStats(context.Background())
				convey.So(stats.WorkerCount, convey.ShouldEqual, 3)
				convey.So(stats.QueueCapacity, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When an invalid address is configured", func() {
			t.Setenv("MEEPLE_ADDR", "")

			convey.Convey("Then configuration loading fails", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the server mux", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.MaxLeaderboardLimit = 5
		mux := newMux(ctx, app.New(), cfg)

		convey.Convey("Then docs and API routes are both served", func() {
			for _, path := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats", "/leaderboard"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then the configured leaderboard cap is enforced", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=6", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it returns once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()

			convey.Convey("Then it returns once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When metrics are updated directly", func() {
			svc := app.New()

			convey.Convey("Then neither update panics", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(context.Background(), svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When a metrics manager uses its own registry", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))

			convey.Convey("Then it is created without clashing with the global one", func() {
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationLifecycle(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		svc := app.New(app.WithWorkerCount(2), app.WithQueueSize(10))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)

		convey.Convey("Then it stops cleanly within the shutdown timeout", func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			convey.So(svc.Stop(stopCtx), convey.ShouldBeNil)
		})
	})
}
