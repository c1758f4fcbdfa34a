package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookgo/clock"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/farescout/farescout/internal/acceptance"
	"github.com/farescout/farescout/internal/dedupe"
	"github.com/farescout/farescout/internal/monitoring"
	"github.com/farescout/farescout/internal/observer"
	"github.com/farescout/farescout/internal/pipeline"
	"github.com/farescout/farescout/internal/vendors"
)

var replayCmd = &cobra.Command{
	Use:   "replay <event-log>",
	Short: "Re-run the pipeline over a recorded event log",
	Long:  "Replays a newline-delimited JSON event log through the extraction pipeline with the raster tier disabled. Useful for tuning vendor profiles against captured sessions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "replay: open log")
		}
		defer f.Close() //nolint:errcheck

		reg := vendors.Default()
		if path := cfg.Vendors.OverridesPath; path != "" {
			if err := reg.LoadOverrides(path); err != nil {
				return err
			}
		}

		clk := clock.New()
		cache := dedupe.NewCache(clk, cfg.Dedup.Capacity, cfg.Dedup.TTL())
		tracker := acceptance.NewTracker(clk, reg, cfg.Acceptance.Window(), cfg.Acceptance.TripMax())
		col := monitoring.New()

		opts := pipeline.Options{
			Debounce:     cfg.Pipeline.Debounce(),
			RenderSettle: cfg.Pipeline.RenderSettle(),
			MinTextLen:   cfg.Pipeline.MinTextLen,
		}
		pipe := pipeline.New(opts, clk, reg, cfg.Extract.ToExtract(),
			cache, tracker, newJSONEmitter(os.Stdout), nil, col)

		stream := observer.NewStream(f)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return stream.Run(ctx) })
		g.Go(func() error { return pipe.Run(ctx, stream.Events()) })
		if err := g.Wait(); err != nil && !eris.Is(err, context.Canceled) {
			return err
		}

		s := col.Snapshot()
		zap.L().Info("replay complete",
			zap.Uint64("events", s.EventsSeen),
			zap.Uint64("discarded", s.Discarded),
			zap.Uint64("rejected", s.CandidatesRejected),
			zap.Uint64("duplicates", s.DuplicatesSuppressed),
			zap.Uint64("offers", s.OffersEmitted),
			zap.Uint64("accepted", s.OffersAccepted),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
