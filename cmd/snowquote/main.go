package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Carter-75/SnowRemovel/internal/app"
	"github.com/Carter-75/SnowRemovel/internal/cli"
	"github.com/Carter-75/SnowRemovel/internal/config"
	"github.com/Carter-75/SnowRemovel/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithWriter(cfg.Server.Env, os.Stderr)
	ctx := context.Background()

	engine, err := app.NewEngine(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build estimation engine", err, nil)
	}

	cli.SetPricingService(engine.Pricing)
	cli.SetDiscountClock(engine.Clock)

	err = cli.Execute(ctx)
	engine.Close()
	if err != nil {
		os.Exit(1)
	}
}
