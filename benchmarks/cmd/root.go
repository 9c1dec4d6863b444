package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var logger zerolog.Logger = zerolog.Nop()

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tabular-rl",
		Short:        "Tabular reinforcement learning benchmarks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := UpdateFlags(); err != nil {
				return err
			}
			if err := flags.Validate(); err != nil {
				return err
			}
			logger = newLogger(flags.LogLevel)
			log.Logger = logger
			if err := flags.Record(); err != nil {
				return err
			}
			logger.Debug().Str("run_id", flags.RunID).Str("save_path", flags.SavePath).Msg("configuration recorded")
			return nil
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		RaceTrackCommand(),
	)

	return cmd
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", flags.RunID).
		Logger()
}

// interruptContext is cancelled on SIGINT or SIGTERM, or when done is closed.
func interruptContext() (context.Context, chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
			logger.Warn().Msg("interrupt received, stopping")
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, doneCh
}
