package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/card"
	"github.com/japaniel/vocabmark/pkg/config"
	"github.com/japaniel/vocabmark/pkg/db"
	"github.com/japaniel/vocabmark/pkg/dictionary"
	"github.com/japaniel/vocabmark/pkg/enrich"
	"github.com/japaniel/vocabmark/pkg/favorites"
	"github.com/japaniel/vocabmark/pkg/reading"
	"github.com/japaniel/vocabmark/pkg/widget"
)

// sessionFlags are shared by the commands that build widget sessions.
func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "variant", Usage: "card `VARIANT` (enhanced or complete), overrides configuration"},
		&cli.StringFlag{Name: "colors", Usage: "color `POLICY` for vocabulary without a color (hash or random)"},
		&cli.UintFlag{Name: "seed", Usage: "seed for the random color policy"},
		&cli.BoolFlag{Name: "enrich", Usage: "fill missing readings and definitions from the dictionary"},
	}
}

// widgetConfig maps configuration and command flags to session settings.
func widgetConfig(cfg *config.Config, cmd *cli.Command) (widget.Config, error) {
	wc := widget.Config{
		ColorPolicy: cfg.Widget.ColorPolicy,
		Seed:        cfg.Widget.Seed,
		SpeechLang:  cfg.Speech.Lang,
		SpeechRate:  cfg.Speech.Rate,
		Layout: card.Layout{
			Width:       cfg.Card.Width,
			MaxHeight:   cfg.Card.MaxHeight,
			HeightRatio: cfg.Card.HeightRatio,
			Spacing:     cfg.Card.Spacing,
			Margin:      cfg.Card.Margin,
		},
	}

	variant := cfg.Widget.Variant
	if v := cmd.String("variant"); v != "" {
		variant = v
	}
	switch variant {
	case "enhanced":
		wc.Variant = card.VariantEnhanced
	case "complete":
		wc.Variant = card.VariantComplete
	default:
		return wc, fmt.Errorf("unknown card variant %q", variant)
	}

	if p := cmd.String("colors"); p != "" {
		wc.ColorPolicy = p
	}
	if cmd.IsSet("seed") {
		wc.Seed = uint64(cmd.Uint("seed"))
	}
	return wc, nil
}

// loadDictionary returns the dictionary index, downloading the dictionary
// first when allowed. A missing dictionary is not fatal: enrichment then
// only fills readings.
func loadDictionary(ctx context.Context, env *appEnv) *dictionary.Index {
	path := env.Cfg.Dictionary.Path
	if env.Cfg.Dictionary.AutoDownload {
		if err := dictionary.EnsureDictionary(ctx, path, env.Log); err != nil {
			env.Log.Warn("Failed to ensure dictionary, continuing without definitions", zap.String("path", path), zap.Error(err))
			return nil
		}
	}

	start := time.Now()
	entries, err := dictionary.LoadJMdictSimplified(path)
	if err != nil {
		env.Log.Warn("Failed to load dictionary, continuing without definitions", zap.String("path", path), zap.Error(err))
		return nil
	}
	ix := dictionary.NewIndex(entries)
	env.Log.Info("Dictionary loaded", zap.Int("entries", ix.Len()), zap.Duration("took", time.Since(start)))
	return ix
}

// sessionFactory returns a constructor of independent sessions. The
// dictionary is loaded once and shared; each session gets its own analyzer.
func sessionFactory(ctx context.Context, env *appEnv, cmd *cli.Command, extra ...widget.Option) (func() (*widget.Session, error), error) {
	wc, err := widgetConfig(env.Cfg, cmd)
	if err != nil {
		return nil, err
	}

	var ix *dictionary.Index
	enrichOn := env.Cfg.Dictionary.Enabled || cmd.Bool("enrich")
	if enrichOn {
		ix = loadDictionary(ctx, env)
	}

	return func() (*widget.Session, error) {
		opts := append([]widget.Option{widget.WithLogger(env.Log)}, extra...)
		if enrichOn {
			analyzer, err := reading.NewAnalyzer()
			if err != nil {
				return nil, fmt.Errorf("unable to create analyzer: %w", err)
			}
			eopts := []enrich.Option{
				enrich.WithReader(analyzer),
				enrich.WithMaxGlosses(env.Cfg.Dictionary.MaxGlosses),
				enrich.WithLogger(env.Log),
			}
			if ix != nil {
				eopts = append(eopts, enrich.WithDictionary(ix))
			}
			opts = append(opts, widget.WithEnricher(enrich.New(eopts...)))
		}
		return widget.New(wc, opts...)
	}, nil
}

// openFavorites opens the configured database and returns the favorites
// store kept in it. The caller closes the returned connection.
func openFavorites(ctx context.Context, env *appEnv) (*favorites.Store, *sql.DB, error) {
	conn, err := db.Open(ctx, env.Cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open storage: %w", err)
	}
	store := favorites.NewStore(db.NewBlob(conn, favorites.StorageKey), favorites.WithLogger(env.Log))
	return store, conn, nil
}
