package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/batch"
	"github.com/japaniel/vocabmark/pkg/fetch"
	"github.com/japaniel/vocabmark/pkg/widget"
)

func annotateCommand() *cli.Command {
	return &cli.Command{
		Name:         "annotate",
		Usage:        "Annotates vocabulary marks in HTML pages",
		OnUsageError: usageErrorHandler,
		Action:       runAnnotate,
		ArgsUsage:    "[FILE...]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "fetch the page to annotate from `URL`"},
			&cli.BoolFlag{Name: "readable", Usage: "with --url, keep only the main article of the page"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write a single annotated page to `FILE` instead of STDOUT"},
			&cli.StringFlag{Name: "out-dir", Value: ".", Usage: "write annotated files to `DIR`"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "number of files annotated in parallel, overrides configuration"},
		}, sessionFlags()...),
		CustomHelpTemplate: fmt.Sprintf(`%s
FILE:
    HTML pages to annotate. Without files and --url the page is read from STDIN.
    Files are written to --out-dir keeping their names; when that is their own
    directory ".annotated" is added before the extension.
`, cli.CommandHelpTemplate),
	}
}

func runAnnotate(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	newSession, err := sessionFactory(ctx, env, cmd)
	if err != nil {
		return err
	}

	if u := cmd.String("url"); u != "" {
		if cmd.Args().Len() > 0 {
			env.Log.Warn("Ignoring files, --url was given", zap.Strings("ignoring", cmd.Args().Slice()))
		}
		return annotateURL(ctx, env, cmd, u, newSession)
	}
	if cmd.Args().Len() == 0 {
		return annotateSingle(cmd, cmd.Root().Reader, newSession)
	}

	workers := env.Cfg.Batch.Workers
	if cmd.IsSet("workers") {
		workers = int(cmd.Int("workers"))
	}
	runner := &batch.Runner{NewSession: newSession, Workers: workers, Log: env.Log}
	results, err := runner.Run(ctx, batch.Tasks(cmd.Args().Slice(), cmd.String("out-dir")))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "%s -> %s (%d marks, %d vocabulary)\n", r.Task.Input, r.Task.Output, r.Stats.Replaced, r.Stats.Vocabs)
	}
	return err
}

func annotateURL(ctx context.Context, env *appEnv, cmd *cli.Command, rawURL string, newSession func() (*widget.Session, error)) error {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	client := fetch.NewClient(env.Cfg.Fetch.Timeout, env.Cfg.Fetch.MaxBodySize, env.Log)
	body, err := client.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	body = fetch.SanitizeRuby(body)

	if cmd.Bool("readable") || env.Cfg.Fetch.Readable {
		article, err := fetch.ExtractArticle(body, pageURL)
		if err != nil {
			return err
		}
		env.Log.Info("Article extracted", zap.String("title", article.Title), zap.Int("text", len(article.TextContent)))
		body = []byte(fetch.ArticleHTML(article))
	}
	return annotateSingle(cmd, bytes.NewReader(body), newSession)
}

// annotateSingle annotates one page to --output or STDOUT.
func annotateSingle(cmd *cli.Command, r io.Reader, newSession func() (*widget.Session, error)) (err error) {
	s, err := newSession()
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if name := cmd.String("output"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", name, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if _, err := s.AnnotateHTML(r, w); err != nil {
		return fmt.Errorf("unable to annotate: %w", err)
	}
	return nil
}
