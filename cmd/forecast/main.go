package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"medi-forecast/internal/config"
	"medi-forecast/internal/forecast"
	"medi-forecast/internal/providers/nws"
	"medi-forecast/internal/types"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Stdout carries the forecast, so logs go to stderr
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	svc := forecast.NewForecastService(cfg, logger)

	os.Exit(run(context.Background(), svc, cfg.Coords(), cfg.Forecast.Field, os.Stdout, logger))
}

// run fetches the forecast and prints it to stdout. It returns the process exit
// code: network and status failures are logged and still exit 0, while a
// response that cannot be used (bad JSON, missing forecast link) exits 1.
func run(ctx context.Context, svc forecast.Service, coords types.Coords, field string, stdout io.Writer, logger *slog.Logger) int {
	doc, err := svc.GetForecast(ctx, coords, field)
	if err != nil {
		if nws.IsIOError(err) {
			logger.Error("failed to fetch forecast",
				"coords", coords.String(),
				"field", field,
				"error", err,
			)
			return 0
		}

		logger.Error("unusable forecast response",
			"coords", coords.String(),
			"field", field,
			"error", err,
		)
		return 1
	}

	if _, err := fmt.Fprintln(stdout, doc.JSON()); err != nil {
		logger.Error("failed to write forecast", "error", err)
		return 1
	}
	return 0
}
