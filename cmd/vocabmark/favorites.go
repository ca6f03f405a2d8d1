package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/db"
	"github.com/japaniel/vocabmark/pkg/favorites"
)

func favoritesCommand() *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "Manages favorite words",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Lists favorite words, newest first",
				Action: listFavorites,
			},
			{
				Name:      "remove",
				Usage:     "Removes words from the favorites",
				ArgsUsage: "WORD...",
				Action:    removeFavorites,
			},
			{
				Name:   "clear",
				Usage:  "Removes all favorite words",
				Action: clearFavorites,
			},
		},
	}
}

func listFavorites(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	store, conn, err := openFavorites(ctx, env)
	if err != nil {
		return err
	}
	defer conn.Close()

	entries, err := store.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Word, e.Phonetic, e.Translation, e.FavoriteTime.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func removeFavorites(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("at least one WORD is required")
	}
	store, conn, err := openFavorites(ctx, env)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, w := range cmd.Args().Slice() {
		if err := store.Remove(ctx, w); err != nil {
			return fmt.Errorf("unable to remove %q: %w", w, err)
		}
		env.Log.Info("Favorite removed", zap.String("word", w))
	}
	return nil
}

func clearFavorites(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	_, conn, err := openFavorites(ctx, env)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.DeleteValue(ctx, conn, favorites.StorageKey); err != nil {
		return fmt.Errorf("unable to clear favorites: %w", err)
	}
	env.Log.Info("Favorites cleared", zap.String("storage", env.Cfg.Storage.Path))
	return nil
}
