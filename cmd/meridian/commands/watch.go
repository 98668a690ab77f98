package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.meridianbank.io/meridian-go/config"
	mbclose "code.meridianbank.io/meridian-go/libs/close"
	"code.meridianbank.io/meridian-go/logging"
	"code.meridianbank.io/meridian-go/metrics"
	"code.meridianbank.io/meridian-go/paths"

	"github.com/jessevdk/go-flags"
)

type WatchCmd struct {
	ctx context.Context

	config.HomeFlag
}

var watchCmd WatchCmd

func (opts *WatchCmd) Execute(_ []string) error {
	cfg, err := loadConfig(opts.HomeFlag)
	if err != nil {
		return err
	}

	log := logging.NewLoggerFromEnv(cfg.Logging.Environment)

	closer := mbclose.NewCloser()
	defer closer.CloseAll()
	closer.Add(log.AtExit)

	ctx, cancel := context.WithCancel(opts.ctx)
	defer cancel()

	watcher, err := config.NewWatcher(ctx, log, paths.New(opts.Home))
	if err != nil {
		return fmt.Errorf("couldn't start the configuration watcher: %w", err)
	}

	watcher.OnConfigUpdate(func(updated config.Config) {
		log.Info("configuration updated",
			logging.String("environment", updated.API.Environment.String()),
		)
	})

	if cfg.Metrics.Enabled {
		if err := metrics.Start(log, cfg.Metrics); err != nil {
			return fmt.Errorf("couldn't start the metrics server: %w", err)
		}
	}

	log.Info("watching the configuration file for changes")
	waitSig(ctx, log)

	return nil
}

// waitSig will wait for a sigterm or sigint interrupt.
func waitSig(ctx context.Context, log *logging.Logger) {
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM)
	signal.Notify(gracefulStop, syscall.SIGINT)

	select {
	case sig := <-gracefulStop:
		log.Info("caught signal", logging.String("name", fmt.Sprintf("%+v", sig)))
	case <-ctx.Done():
		// nothing to do
	}
}

func Watch(ctx context.Context, parser *flags.Parser) error {
	watchCmd = WatchCmd{ctx: ctx}

	short := "Watch the configuration file for changes"
	long := "Reload the configuration on every change to its file, reporting each reload, until interrupted"

	_, err := parser.AddCommand("watch", short, long, &watchCmd)
	return err
}
