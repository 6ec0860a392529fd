package plotfit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Save writes every named figure. The format follows the file extension
// (pdf, png, svg, eps, jpg or tiff). Missing directories are created.
func Save(ctx context.Context, figs []Figure) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fig := range figs {
		if fig.Name == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dir := filepath.Dir(fig.Name); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("plotfit: %w", err)
				}
			}
			if err := fig.Plot.Save(fig.Width, fig.Height, fig.Name); err != nil {
				return fmt.Errorf("plotfit: save %s: %w", fig.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Plot renders the figures and saves the named ones.
func Plot(ctx context.Context, d Data, model func(float64) float64, opts *Options) ([]Figure, error) {
	figs, err := Render(d, model, opts)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, figs); err != nil {
		return nil, err
	}
	log := opts.withDefaults().Logger
	for _, fig := range figs {
		if fig.Name != "" {
			log.Info("saved figure", "file", fig.Name)
		}
	}
	return figs, nil
}
