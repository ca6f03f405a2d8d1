// Package widget wires one annotation session: registry, builder, scanner
// and the card controller for a single page.
package widget

import (
	"fmt"
	"io"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/japaniel/vocabmark/pkg/card"
	"github.com/japaniel/vocabmark/pkg/fragment"
	"github.com/japaniel/vocabmark/pkg/htmldom"
	"github.com/japaniel/vocabmark/pkg/palette"
	"github.com/japaniel/vocabmark/pkg/scan"
	"github.com/japaniel/vocabmark/pkg/vocab"
)

// Color policies.
const (
	ColorsHash   = "hash"
	ColorsRandom = "random"
)

// Config holds session settings.
type Config struct {
	Variant     card.Variant
	Layout      card.Layout
	ColorPolicy string
	// Seed makes the random color policy reproducible when non-zero.
	Seed       uint64
	SpeechLang string
	SpeechRate float64
}

// DefaultConfig returns the settings of the enhanced widget.
func DefaultConfig() Config {
	return Config{
		Variant:     card.VariantEnhanced,
		Layout:      card.DefaultLayout(),
		ColorPolicy: ColorsHash,
		SpeechLang:  "en-US",
		SpeechRate:  0.9,
	}
}

// Session owns the state of one annotated page. It is not safe for
// concurrent use; run one session per goroutine.
type Session struct {
	cfg       Config
	log       *zap.Logger
	palette   *palette.Palette
	ids       func() string
	enricher  fragment.Enricher
	speaker   card.Speaker
	favorites card.Favorites

	registry *vocab.Registry
	builder  *fragment.Builder[*html.Node]
	scanner  *scan.Scanner[*html.Node]
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

func WithPalette(p *palette.Palette) Option { return func(s *Session) { s.palette = p } }

// WithIDs replaces the vocabulary id generator.
func WithIDs(gen func() string) Option { return func(s *Session) { s.ids = gen } }

func WithEnricher(e fragment.Enricher) Option { return func(s *Session) { s.enricher = e } }

func WithSpeaker(sp card.Speaker) Option { return func(s *Session) { s.speaker = sp } }

func WithFavorites(f card.Favorites) Option { return func(s *Session) { s.favorites = f } }

// New creates a session.
func New(cfg Config, opts ...Option) (*Session, error) {
	if cfg.Layout == (card.Layout{}) {
		cfg.Layout = card.DefaultLayout()
	}
	if cfg.SpeechLang == "" {
		cfg.SpeechLang = "en-US"
	}
	if cfg.SpeechRate <= 0 {
		cfg.SpeechRate = 0.9
	}
	s := &Session{cfg: cfg, log: zap.NewNop(), palette: palette.Default()}
	for _, o := range opts {
		o(s)
	}

	var colors vocab.ColorPolicy
	switch cfg.ColorPolicy {
	case ColorsHash, "":
		colors = vocab.HashColors{Palette: s.palette}
	case ColorsRandom:
		rc := vocab.RandomColors{Palette: s.palette}
		if cfg.Seed != 0 {
			rc.Rand = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
		}
		colors = rc
	default:
		return nil, fmt.Errorf("unknown color policy %q", cfg.ColorPolicy)
	}

	regOpts := []vocab.Option{vocab.WithPalette(s.palette), vocab.WithColorPolicy(colors)}
	if s.ids != nil {
		regOpts = append(regOpts, vocab.WithIDs(s.ids))
	}
	s.registry = vocab.NewRegistry(regOpts...)

	bOpts := []fragment.Option[*html.Node]{fragment.WithLogger[*html.Node](s.log)}
	if s.enricher != nil {
		bOpts = append(bOpts, fragment.WithEnricher[*html.Node](s.enricher))
	}
	s.builder = fragment.NewBuilder[*html.Node](htmldom.Factory{}, s.registry, bOpts...)
	s.scanner = scan.New(s.builder, s.log)
	return s, nil
}

// Registry returns the session records.
func (s *Session) Registry() *vocab.Registry { return s.registry }

// Annotate replaces the marks of doc and embeds the registered records.
func (s *Session) Annotate(doc *htmldom.Document) (scan.Stats, error) {
	st := s.scanner.Scan(doc)
	if err := doc.EmbedRecords(s.registry.Records()); err != nil {
		return st, err
	}
	s.log.Info("Annotated page",
		zap.Int("replaced", st.Replaced),
		zap.Int("vocabs", st.Vocabs),
		zap.Int("records", s.registry.Len()))
	return st, nil
}

// Restore registers the records embedded in an already annotated page, so
// its vocabulary elements can show cards again.
func (s *Session) Restore(doc *htmldom.Document) (int, error) {
	recs, err := doc.EmbeddedRecords()
	if err != nil {
		return 0, err
	}
	n := s.registry.Restore(recs)
	s.log.Info("Restored page records", zap.Int("records", n), zap.Int("embedded", len(recs)))
	return n, nil
}

// AnnotateHTML reads a page from r, annotates it and writes it to w.
func (s *Session) AnnotateHTML(r io.Reader, w io.Writer) (scan.Stats, error) {
	doc, err := htmldom.Parse(r)
	if err != nil {
		return scan.Stats{}, err
	}
	st, err := s.Annotate(doc)
	if err != nil {
		return st, err
	}
	return st, doc.Render(w)
}

// Controller returns a card controller that mounts cards on doc.
func (s *Session) Controller(doc *htmldom.Document) *card.Controller {
	opts := []card.Option{
		card.WithVariant(s.cfg.Variant),
		card.WithLayout(s.cfg.Layout),
		card.WithSpeech(s.cfg.SpeechLang, s.cfg.SpeechRate),
		card.WithLogger(s.log),
	}
	if s.speaker != nil {
		opts = append(opts, card.WithSpeaker(s.speaker))
	}
	if s.favorites != nil {
		opts = append(opts, card.WithFavorites(s.favorites))
	}
	return card.NewController(doc, s.registry, opts...)
}
