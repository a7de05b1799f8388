// Command jobs runs one batch job and exits. It is meant to be triggered by
// an external scheduler.
//
//	jobs -job=calculate     recompute usage-based reorder levels
//	jobs -job=intelligent   fetch ML forecasts and store intelligent levels
//	jobs -job=alerts        reconcile stock alerts
//	jobs -job=all           all of the above, in that order
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/pharmastock-service/config"
	"github.com/fekuna/pharmastock-service/internal/app"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	job := flag.String("job", "", "job to run: calculate, intelligent, alerts or all")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the job after this long")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger := app.NewLogger(cfg).With(zap.String("job", *job))
	defer appLogger.Sync()

	steps, err := plan(*job)
	if err != nil {
		appLogger.Fatal("Unknown job", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not initialize dependencies", zap.Error(err))
	}
	defer a.Close()

	for _, name := range steps {
		start := time.Now()
		if err := run(ctx, a, name); err != nil {
			appLogger.Error("Job step failed", zap.String("step", name), zap.Error(err))
			a.Close()
			os.Exit(1)
		}
		appLogger.Info("Job step finished", zap.String("step", name), zap.Duration("took", time.Since(start)))
	}
}

func plan(job string) ([]string, error) {
	switch job {
	case "calculate", "intelligent", "alerts":
		return []string{job}, nil
	case "all":
		return []string{"calculate", "intelligent", "alerts"}, nil
	default:
		return nil, fmt.Errorf("unknown job %q", job)
	}
}

func run(ctx context.Context, a *app.App, step string) error {
	switch step {
	case "calculate":
		updated, err := a.Inventory.RecalculateLevels(ctx)
		if err != nil {
			return err
		}
		a.Logger.Info("Calculated reorder levels updated", zap.Int("updated", updated))
	case "intelligent":
		res, err := a.Forecasts.ComputeIntelligentLevels(ctx)
		if err != nil {
			return err
		}
		a.Logger.Info("Intelligent reorder levels stored",
			zap.Int("computed", res.Computed),
			zap.Int("skipped", res.Skipped),
			zap.Strings("failed", res.Failed),
		)
	case "alerts":
		res, err := a.Alerts.EvaluateAlerts(ctx)
		if err != nil {
			return err
		}
		a.Logger.Info("Alerts evaluated",
			zap.Int("evaluated", res.Evaluated),
			zap.Int("created", res.Created),
			zap.Int("resolved", res.Resolved),
		)
	}
	return nil
}
