package main

import (
	"context"
	"io"
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
	"github.com/farescout/farescout/internal/raster"
	"github.com/farescout/farescout/internal/vendors"
)

var watchInput string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a screen-event stream and emit detected ride offers",
	Long:  "Reads newline-delimited JSON screen events (stdin by default), runs the extraction pipeline, and writes detected offers as JSON lines to stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var in io.Reader = os.Stdin
		if watchInput != "" && watchInput != "-" {
			f, err := os.Open(watchInput)
			if err != nil {
				return eris.Wrap(err, "watch: open input")
			}
			defer f.Close() //nolint:errcheck
			in = f
		}

		env, err := buildEnv()
		if err != nil {
			return err
		}

		stream := observer.NewStream(in)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return stream.Run(ctx)
		})
		g.Go(func() error {
			return env.pipe.Run(ctx, stream.Events())
		})
		if cfg.Server.Enabled {
			g.Go(func() error {
				return runStatusServer(ctx, cfg.Server.Port, env.col)
			})
		}

		if err := g.Wait(); err != nil && !eris.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchInput, "input", "i", "-", "event stream file, or - for stdin")
	rootCmd.AddCommand(watchCmd)
}

// env bundles the pipeline and its collector for the serving goroutines.
type env struct {
	pipe *pipeline.Pipeline
	col  *monitoring.Collector
}

// buildEnv assembles the pipeline from the loaded configuration.
func buildEnv() (*env, error) {
	reg := vendors.Default()
	if path := cfg.Vendors.OverridesPath; path != "" {
		if err := reg.LoadOverrides(path); err != nil {
			return nil, err
		}
		zap.L().Info("vendor overrides loaded", zap.String("path", path))
	}

	clk := clock.New()
	cache := dedupe.NewCache(clk, cfg.Dedup.Capacity, cfg.Dedup.TTL())
	tracker := acceptance.NewTracker(clk, reg, cfg.Acceptance.Window(), cfg.Acceptance.TripMax())
	col := monitoring.New()

	var fallback *raster.Fallback
	if cfg.Raster.Enabled && len(cfg.Raster.CaptureCmd) > 0 && len(cfg.Raster.RecognizeCmd) > 0 {
		fallback = raster.New(
			raster.NewExecCapture(cfg.Raster.CaptureCmd[0], cfg.Raster.CaptureCmd[1:]...),
			raster.NewExecRecognizer(cfg.Raster.RecognizeCmd[0], cfg.Raster.RecognizeCmd[1:]...),
			cfg.Raster.Cooldown(),
		)
	} else {
		zap.L().Info("raster fallback disabled", zap.Bool("enabled", cfg.Raster.Enabled))
	}

	opts := pipeline.Options{
		Debounce:     cfg.Pipeline.Debounce(),
		RenderSettle: cfg.Pipeline.RenderSettle(),
		MinTextLen:   cfg.Pipeline.MinTextLen,
	}
	pipe := pipeline.New(opts, clk, reg, cfg.Extract.ToExtract(),
		cache, tracker, newJSONEmitter(os.Stdout), fallback, col)

	return &env{pipe: pipe, col: col}, nil
}
