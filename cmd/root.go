// Package cmd holds the stress-sensing CLI.
package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sensing "github.com/lzwang26/stress-sensing-mitigation"
	"github.com/lzwang26/stress-sensing-mitigation/broker"
	"github.com/lzwang26/stress-sensing-mitigation/schema"
	"github.com/lzwang26/stress-sensing-mitigation/source"
	"github.com/lzwang26/stress-sensing-mitigation/storage/sqlite"
	"github.com/lzwang26/stress-sensing-mitigation/view"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	windowSec  float64
	capacity   int
	recordPath string
)

var rootCmd = &cobra.Command{
	Use:           "stress-sensing",
	Short:         "Live-plot a scalar sensor signal from a microcontroller or camera.",
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "0.0.0.0:8000", "address of the live-plot web server")
	rootCmd.PersistentFlags().Float64Var(&windowSec, "window", 10, "visible window in seconds")
	rootCmd.PersistentFlags().IntVar(&capacity, "capacity", 0, "sample buffer capacity (0 = variant default)")
	rootCmd.PersistentFlags().StringVar(&recordPath, "record", "", "record samples to this sqlite file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// runPipeline wires the shared plumbing around an opened source and
// runs the session until a signal or a fatal error ends it.
func runPipeline(series string, src source.Source, viewCfg view.Config, defaultCapacity int) error {
	logger := slog.Default()

	if windowSec > 0 {
		viewCfg.Window = windowSec
	}
	if capacity == 0 {
		capacity = defaultCapacity
	}

	errCh := make(chan error, 1)

	br := broker.New[*schema.Frame]()
	go br.Start()
	defer br.Stop()

	session := sensing.NewSession(sensing.Config{
		Series:   series,
		Capacity: capacity,
		View:     viewCfg,
	}, src, br, logger)

	if recordPath != "" {
		backend, err := sqlite.Open(recordPath, errCh)
		if err != nil {
			return errors.Wrap(err, "open recording")
		}
		if err := backend.CreateSeries([]string{series}); err != nil {
			return errors.Wrap(err, "create series")
		}
		session.SetRecorder(backend)
	}

	go sensing.PublishMetrics(br, logger)

	server := sensing.NewServer(br, logger, session)
	go func() {
		errCh <- server.Run(listenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("stopping", "signal", sig)
		session.Stop()
	}()

	done := make(chan error, 1)
	go func() {
		done <- session.Run()
	}()

	select {
	case err := <-done:
		return err
	case err := <-errCh:
		session.Stop()
		<-done
		return err
	}
}
