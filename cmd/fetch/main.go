package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kpenchev/tvprograma-go/internal/app"
	"github.com/kpenchev/tvprograma-go/internal/config"
	"github.com/kpenchev/tvprograma-go/internal/service"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

// One-shot fetch of a single day's listings, for cron-less setups and for
// backfilling after downtime.
func main() {
	datePath := flag.String("date", service.DatePathToday, "listings date path (Днес, Вчера or Утре)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	schedule, err := container.Fetcher.FetchDay(ctx, *datePath)
	if err != nil {
		logger.Error("Fetch failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Print(service.Summary(schedule))
}
