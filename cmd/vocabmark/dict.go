package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/dictionary"
)

func dictCommand() *cli.Command {
	return &cli.Command{
		Name:  "dict",
		Usage: "Dictionary used to enrich vocabulary",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Downloads the JMdict common words dictionary",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "store the dictionary at `FILE`, overrides configuration"},
					&cli.BoolFlag{Name: "force", Usage: "download even when the file exists"},
				},
				Action: fetchDictionary,
			},
		},
	}
}

func fetchDictionary(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	path := env.Cfg.Dictionary.Path
	if p := cmd.String("path"); p != "" {
		path = p
	}
	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("unable to remove old dictionary: %w", err)
		}
	}
	if err := dictionary.NewDownloader(env.Log).Ensure(ctx, path); err != nil {
		return fmt.Errorf("unable to fetch dictionary: %w", err)
	}

	entries, err := dictionary.LoadJMdictSimplified(path)
	if err != nil {
		return err
	}
	env.Log.Info("Dictionary ready", zap.String("path", path), zap.Int("entries", len(entries)))
	fmt.Fprintf(cmd.Root().Writer, "%s: %d entries\n", path, len(entries))
	return nil
}
