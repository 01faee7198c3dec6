// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package main is the entry point for ipdock.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/ipdock/ipdock/internal/catalog"
	"github.com/ipdock/ipdock/internal/debug"
	"github.com/ipdock/ipdock/internal/render"
	"github.com/ipdock/ipdock/internal/version"
	"github.com/ipdock/ipdock/internal/watch"
)

var rootCmdArgs struct {
	pprofBindAddr   string
	pollInterval    time.Duration
	includeLoopback bool
	includeIPv6     bool
	includeDown     bool
	watchChanges    bool
	poll            bool
	debug           bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     version.Name,
	Short:   "Display the host's active IP addresses, kept current on network changes",
	Version: version.Tag,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := buildLogger()
		if err != nil {
			return err
		}

		source := catalog.NewNetlinkSource(logger.With(zap.String("component", "netlink-source")))

		cat, err := catalog.NewCatalog(source, logger.With(zap.String("component", "catalog")))
		if err != nil {
			return fmt.Errorf("failed to create catalog: %w", err)
		}

		opts := catalog.Options{
			ExcludeLoopback: !rootCmdArgs.includeLoopback,
			ExcludeIPv6:     !rootCmdArgs.includeIPv6,
			OnlyUp:          !rootCmdArgs.includeDown,
		}

		styles := render.DefaultStyles()

		if !rootCmdArgs.watchChanges {
			records, err := cat.Enumerate(opts)
			if err != nil {
				return fmt.Errorf("failed to enumerate addresses: %w", err)
			}

			catalog.SortRecords(records)

			fmt.Fprintln(cmd.OutOrStdout(), render.Records(styles, records))

			return nil
		}

		return runWatch(cmd, cat, opts, styles, logger)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}

func buildLogger() (*zap.Logger, error) {
	var loggerConfig zap.Config

	if debug.Enabled {
		loggerConfig = zap.NewDevelopmentConfig()
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		loggerConfig = zap.NewProductionConfig()
	}

	if !rootCmdArgs.debug {
		loggerConfig.Level.SetLevel(zap.InfoLevel)
	} else {
		loggerConfig.Level.SetLevel(zap.DebugLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// runWatch stays resident and re-renders the address list on every change
// notification. The unfiltered enumeration is cached between notifications.
func runWatch(cmd *cobra.Command, cat *catalog.Catalog, opts catalog.Options, styles render.Styles, logger *zap.Logger) error {
	cache, err := catalog.NewCache(func() ([]catalog.Record, error) {
		return cat.Enumerate(catalog.Options{})
	})
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	notifier := watch.NewNotifier(logger.With(zap.String("component", "notifier")))

	redraw := make(chan struct{}, 1)

	subscription, err := notifier.Subscribe(func(watch.Event) {
		cache.Invalidate()

		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	defer subscription.Cancel()

	eg, ctx := errgroup.WithContext(cmd.Context())

	if rootCmdArgs.poll {
		poller, err := watch.NewPoller(cache, notifier, rootCmdArgs.pollInterval, nil, logger.With(zap.String("component", "poller")))
		if err != nil {
			return fmt.Errorf("failed to create poller: %w", err)
		}

		eg.Go(func() error {
			return poller.Run(ctx)
		})
	} else {
		watcher, err := watch.NewNetlinkWatcher(notifier, logger.With(zap.String("component", "netlink-watcher")))
		if err != nil {
			return fmt.Errorf("failed to create netlink watcher: %w", err)
		}

		eg.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	if rootCmdArgs.pprofBindAddr != "" {
		eg.Go(func() error {
			return runPprofServer(ctx, logger)
		})
	}

	eg.Go(func() error {
		out := cmd.OutOrStdout()

		for {
			records, err := cache.Get()
			if err != nil {
				logger.Error("failed to enumerate addresses", zap.Error(err))

				fmt.Fprintln(out, render.Unavailable(styles))
			} else {
				records = catalog.Apply(records, opts)
				catalog.SortRecords(records)

				fmt.Fprintln(out, render.Records(styles, records))
			}

			select {
			case <-ctx.Done():
				return nil
			case <-redraw:
			}
		}
	})

	return eg.Wait()
}

func runPprofServer(ctx context.Context, logger *zap.Logger) error {
	logger.Info("starting pprof server", zap.String("addr", rootCmdArgs.pprofBindAddr))

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	server := &http.Server{
		Addr:    rootCmdArgs.pprofBindAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)

	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	logger.Info("stopping pprof server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCtxCancel()

	//nolint:contextcheck
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown pprof server gracefully: %w", err)
	}

	return nil
}

func init() {
	rootCmd.Flags().BoolVar(&rootCmdArgs.includeLoopback, "include-loopback", false,
		"include loopback interfaces in the listing.")
	rootCmd.Flags().BoolVar(&rootCmdArgs.includeIPv6, "include-ipv6", false,
		"include IPv6 addresses in the listing.")
	rootCmd.Flags().BoolVar(&rootCmdArgs.includeDown, "include-down", false,
		"include interfaces that are not operationally up.")
	rootCmd.Flags().BoolVarP(&rootCmdArgs.watchChanges, "watch", "w", false,
		"stay resident and re-render the listing on network changes.")
	rootCmd.Flags().BoolVar(&rootCmdArgs.poll, "poll", false,
		"detect changes by periodic re-enumeration instead of kernel notifications.")
	rootCmd.Flags().DurationVar(&rootCmdArgs.pollInterval, "poll-interval", 30*time.Second,
		"the re-enumeration period when --poll is set.")
	rootCmd.Flags().StringVar(&rootCmdArgs.pprofBindAddr, "pprof-bind-addr", "",
		"the address to bind the pprof server to. Disabled when empty.")
	rootCmd.Flags().BoolVar(&rootCmdArgs.debug, "debug", false, "enable debug logs.")
}
