package service_test

import (
	"context"
	"testing"

	service "github.com/caremesh/matchd/internal/app"
	"github.com/caremesh/matchd/internal/config"
	logging "github.com/caremesh/matchd/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestService_New(t *testing.T) {
	convey.Convey("Given a new service", t, func() {
		_ = logging.Init()

		convey.Convey("When created with default options", func() {
			svc := service.New()

			convey.Convey("Then it should be created successfully", func() {
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("Then stats should report not started", func() {
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When created with custom options", func() {
			svc := service.New(
				service.WithWorkerCount(4),
				service.WithQueueSize(100),
				service.WithDedupeSize(1000),
				service.WithEngineConfig(config.New().Engine),
			)

			convey.Convey("Then the options should be reflected in stats", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
				convey.So(stats["queueSize"], convey.ShouldEqual, 100)
				convey.So(stats["dedupeSize"], convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When created with non-positive options", func() {
			svc := service.New(
				service.WithWorkerCount(0),
				service.WithQueueSize(-1),
			)

			convey.Convey("Then defaults should be preserved", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldBeGreaterThan, 0)
				convey.So(stats["queueSize"], convey.ShouldEqual, 10_000)
			})
		})
	})
}

func TestService_Dedupe(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		_ = logging.Init()
		ctx := context.Background()

		svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(10))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When recording a job id", func() {
			seen := svc.SeenAndRecord(ctx, "job-1")

			convey.Convey("Then the first sighting is new", func() {
				convey.So(seen, convey.ShouldBeFalse)
			})

			convey.Convey("Then the second sighting is a duplicate", func() {
				convey.So(svc.SeenAndRecord(ctx, "job-1"), convey.ShouldBeTrue)
				convey.So(svc.Size(), convey.ShouldEqual, 1)
			})

			convey.Convey("Then unrecording makes the id fresh again", func() {
				svc.Unrecord(ctx, "job-1")
				convey.So(svc.SeenAndRecord(ctx, "job-1"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When starting twice", func() {
			convey.Convey("Then the second start is a no-op", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
			})
		})
	})
}
