// Package fragment turns parsed segments into page fragments.
package fragment

import (
	"iter"

	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/mark"
	"github.com/japaniel/vocabmark/pkg/vocab"
)

// Factory creates the page nodes for each kind of segment. N is the node
// type of the page implementation.
type Factory[N any] interface {
	// Text creates a plain text node.
	Text(content string) N
	// Blank creates a clickable element whose answer is present but hidden
	// until revealed.
	Blank(answer, color string) N
	// Hover creates an element showing text with the translation attached
	// as a hover annotation.
	Hover(text, translation, color string) N
	// Vocab creates a clickable element showing only the word, tagged with
	// the record id.
	Vocab(rec vocab.Record) N
}

// Enricher may fill in missing vocabulary fields before registration.
type Enricher interface {
	Enrich(v mark.Vocab) mark.Vocab
}

// Builder converts segments to nodes and registers vocabulary records.
type Builder[N any] struct {
	factory  Factory[N]
	registry *vocab.Registry
	enricher Enricher
	log      *zap.Logger
}

// Option configures a Builder.
type Option[N any] func(*Builder[N])

// WithEnricher sets the enrichment hook applied to vocabulary marks.
func WithEnricher[N any](e Enricher) Option[N] {
	return func(b *Builder[N]) { b.enricher = e }
}

// WithLogger sets the logger.
func WithLogger[N any](l *zap.Logger) Option[N] {
	return func(b *Builder[N]) { b.log = l }
}

// NewBuilder creates a builder writing records into registry.
func NewBuilder[N any](factory Factory[N], registry *vocab.Registry, opts ...Option[N]) *Builder[N] {
	b := &Builder[N]{
		factory:  factory,
		registry: registry,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Registry returns the registry records are written to.
func (b *Builder[N]) Registry() *vocab.Registry { return b.registry }

// Build materializes segs in order. Empty text segments produce no node.
func (b *Builder[N]) Build(segs iter.Seq[mark.Segment]) []N {
	var out []N
	for s := range segs {
		if n, ok := b.node(s); ok {
			out = append(out, n)
		}
	}
	return out
}

func (b *Builder[N]) node(s mark.Segment) (N, bool) {
	var zero N
	pal := b.registry.Palette()

	switch s := s.(type) {
	case mark.Text:
		if s.Content == "" {
			return zero, false
		}
		return b.factory.Text(s.Content), true
	case mark.Blank:
		return b.factory.Blank(s.Answer, pal.Color(s.ColorKey)), true
	case mark.Hover:
		return b.factory.Hover(s.Text, s.Translation, pal.Color(s.ColorKey)), true
	case mark.Vocab:
		if b.enricher != nil {
			s = b.enricher.Enrich(s)
		}
		rec := b.registry.Register(s)
		b.log.Debug("Registered vocabulary", zap.String("id", rec.ID), zap.String("word", rec.Word), zap.String("color", rec.Color))
		return b.factory.Vocab(rec), true
	}
	b.log.Warn("Unexpected segment type, keeping source text", zap.Stringer("kind", s.Kind()))
	return b.factory.Text(s.Source()), true
}
