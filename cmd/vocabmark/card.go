package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/card"
	"github.com/japaniel/vocabmark/pkg/htmldom"
	"github.com/japaniel/vocabmark/pkg/speech"
	"github.com/japaniel/vocabmark/pkg/widget"
)

func cardCommand() *cli.Command {
	return &cli.Command{
		Name:         "card",
		Usage:        "Renders the popup card of a vocabulary mark",
		OnUsageError: usageErrorHandler,
		Action:       runCard,
		ArgsUsage:    "[MARKUP]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "page", Aliases: []string{"p"}, Usage: "show a card of the annotated page `FILE` instead of MARKUP"},
			&cli.IntFlag{Name: "index", Value: 1, Usage: "show the card of the `N`th vocabulary mark"},
			&cli.StringFlag{Name: "anchor", Value: "100,100,60,24", Usage: "box of the vocabulary word as `LEFT,TOP,WIDTH,HEIGHT`"},
			&cli.StringFlag{Name: "viewport", Value: "1280x800", Usage: "viewport size as `WIDTHxHEIGHT`"},
			&cli.BoolFlag{Name: "favorite", Usage: "toggle the favorite state of the word"},
			&cli.BoolFlag{Name: "speak", Usage: "pronounce the word with the configured synthesis command"},
		}, sessionFlags()...),
		CustomHelpTemplate: fmt.Sprintf(`%s
MARKUP:
    text with bracket marks, for example "I [run:跑:rʌn] every day"
    With --page the cards come from a page written by "annotate".
`, cli.CommandHelpTemplate),
	}
}

func runCard(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	page := cmd.String("page")
	if page == "" && cmd.Args().Len() != 1 {
		return errors.New("exactly one MARKUP argument is required")
	}
	if page != "" && cmd.Args().Len() > 0 {
		env.Log.Warn("Ignoring markup, --page was given", zap.Strings("ignoring", cmd.Args().Slice()))
	}
	anchorBox, err := parseRect(cmd.String("anchor"))
	if err != nil {
		return err
	}
	vp, err := parseViewport(cmd.String("viewport"))
	if err != nil {
		return err
	}

	store, conn, err := openFavorites(ctx, env)
	if err != nil {
		return err
	}
	defer conn.Close()

	extra := []widget.Option{widget.WithFavorites(store)}
	var speaker *speech.CommandSpeaker
	if cmd.Bool("speak") {
		// a missing command is reported by the controller as unsupported speech
		if speaker, err = speech.NewCommandSpeaker(env.Cfg.Speech.Command, env.Log); err == nil {
			extra = append(extra, widget.WithSpeaker(speaker))
		}
	}

	newSession, err := sessionFactory(ctx, env, cmd, extra...)
	if err != nil {
		return err
	}
	s, err := newSession()
	if err != nil {
		return err
	}

	doc, err := cardDocument(s, page, cmd.Args().First())
	if err != nil {
		return err
	}
	ids := doc.VocabIDs()
	n := int(cmd.Int("index"))
	if n < 1 || n > len(ids) {
		return fmt.Errorf("no vocabulary mark #%d (%d found)", n, len(ids))
	}
	id := ids[n-1]

	doc.SetViewport(vp)
	anchor, err := doc.Anchor(id, anchorBox)
	if err != nil {
		return err
	}
	ctrl := s.Controller(doc)
	if err := ctrl.Activate(ctx, anchor, id); err != nil {
		return err
	}

	if cmd.Bool("favorite") {
		on, err := ctrl.ToggleFavorite(ctx)
		if err != nil {
			return err
		}
		env.Log.Info("Favorite toggled", zap.String("word", ctrl.Current().Record.Word), zap.Bool("favorite", on))
	}
	if cmd.Bool("speak") {
		// the controller already logged the failure, the card is still shown
		if err := ctrl.Speak(); err != nil {
			env.Log.Debug("Pronunciation skipped", zap.Error(err))
		}
		if speaker != nil {
			speaker.Wait()
		}
	}

	out, err := ctrl.Current().HTML()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, out)
	return nil
}

// cardDocument annotates markup, or restores the records of an annotated page.
func cardDocument(s *widget.Session, page, markup string) (*htmldom.Document, error) {
	if page == "" {
		doc, err := htmldom.Parse(strings.NewReader("<body><p>" + html.EscapeString(markup) + "</p></body>"))
		if err != nil {
			return nil, err
		}
		if _, err := s.Annotate(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	f, err := os.Open(page)
	if err != nil {
		return nil, fmt.Errorf("unable to open page: %w", err)
	}
	defer f.Close()
	doc, err := htmldom.Parse(f)
	if err != nil {
		return nil, err
	}
	if _, err := s.Restore(doc); err != nil {
		return nil, fmt.Errorf("unable to read records of '%s': %w", page, err)
	}
	return doc, nil
}

func parseRect(s string) (card.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return card.Rect{}, fmt.Errorf("invalid box %q, want LEFT,TOP,WIDTH,HEIGHT", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return card.Rect{}, fmt.Errorf("invalid box %q: %w", s, err)
		}
		v[i] = f
	}
	return card.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

func parseViewport(s string) (card.Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return card.Viewport{}, fmt.Errorf("invalid viewport %q, want WIDTHxHEIGHT", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return card.Viewport{}, fmt.Errorf("invalid viewport %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return card.Viewport{}, fmt.Errorf("invalid viewport %q: %w", s, err)
	}
	return card.Viewport{Width: width, Height: height}, nil
}
