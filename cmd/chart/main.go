package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"pricechart/config"
	"pricechart/internal/chart/console"
	"pricechart/internal/chart/viewer"
	"pricechart/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := viewer.New(cfg, log)
	if err != nil {
		log.Fatal("failed to create viewer", zap.Error(err))
	}

	// stdin commands
	go func() {
		err := console.Run(ctx, os.Stdin, os.Stdout, v.Manager(), log.Named("console"))
		if errors.Is(err, console.ErrQuit) {
			stop()
			return
		}
		if err != nil {
			log.Warn("console stopped", zap.Error(err))
		}
	}()

	if err := v.Run(ctx); err != nil {
		log.Fatal("viewer failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
