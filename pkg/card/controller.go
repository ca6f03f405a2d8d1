// Package card shows the vocabulary popup card and keeps at most one of them
// on screen.
package card

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/speech"
	"github.com/japaniel/vocabmark/pkg/vocab"
)

var (
	ErrNoCard               = errors.New("card: no card is shown")
	ErrSpeechUnavailable    = errors.New("card: speech synthesis is not available")
	ErrFavoritesUnavailable = errors.New("card: favorites are not available")
)

// Variant selects the card feature set.
type Variant int

const (
	// VariantEnhanced has pronunciation and favorite buttons and follows resizes.
	VariantEnhanced Variant = iota
	// VariantComplete is the plain card.
	VariantComplete
)

// State of the controller.
type State int

const (
	StateHidden State = iota
	StateShown
)

func (s State) String() string {
	if s == StateShown {
		return "shown"
	}
	return "hidden"
}

// Target says where a pointer interaction landed.
type Target int

const (
	TargetElsewhere Target = iota
	TargetVocab
	TargetCard
)

// Surface is where cards are mounted.
type Surface interface {
	Viewport() Viewport
	Mount(c *Card) error
	Unmount(c *Card)
}

// Anchor is the vocabulary element a card is bound to. Anchors are compared
// with ==, so implementations should be pointers.
type Anchor interface {
	Bounds() Rect
}

// Records resolves vocabulary ids.
type Records interface {
	Lookup(id string) (vocab.Record, bool)
}

// Speaker synthesizes speech.
type Speaker interface {
	Speak(u speech.Utterance) error
	Cancel()
}

// Favorites is the favorite words store.
type Favorites interface {
	IsFavorite(ctx context.Context, word string) (bool, error)
	Toggle(ctx context.Context, rec vocab.Record) (bool, error)
}

type binding struct {
	card   *Card
	anchor Anchor
}

// Controller owns the active card. It is meant to be driven from a single
// goroutine.
type Controller struct {
	surface   Surface
	records   Records
	speaker   Speaker
	favorites Favorites
	layout    Layout
	variant   Variant
	lang      string
	rate      float64
	log       *zap.Logger

	active *binding
}

// Option configures a Controller.
type Option func(*Controller)

func WithSpeaker(s Speaker) Option     { return func(c *Controller) { c.speaker = s } }
func WithFavorites(f Favorites) Option { return func(c *Controller) { c.favorites = f } }
func WithLayout(l Layout) Option       { return func(c *Controller) { c.layout = l } }
func WithVariant(v Variant) Option     { return func(c *Controller) { c.variant = v } }
func WithLogger(l *zap.Logger) Option  { return func(c *Controller) { c.log = l } }

// WithSpeech sets the synthesis language and relative rate.
func WithSpeech(lang string, rate float64) Option {
	return func(c *Controller) { c.lang, c.rate = lang, rate }
}

// NewController creates a controller in the hidden state.
func NewController(surface Surface, records Records, opts ...Option) *Controller {
	c := &Controller{
		surface: surface,
		records: records,
		layout:  DefaultLayout(),
		variant: VariantEnhanced,
		lang:    "en-US",
		rate:    0.9,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	if c.active == nil {
		return StateHidden
	}
	return StateShown
}

// Current returns the shown card, or nil.
func (c *Controller) Current() *Card {
	if c.active == nil {
		return nil
	}
	return c.active.card
}

// Bound returns the anchor of the shown card, or nil.
func (c *Controller) Bound() Anchor {
	if c.active == nil {
		return nil
	}
	return c.active.anchor
}

// Activate handles a click on the vocabulary element anchor tagged with id.
// Clicking the element that owns the shown card hides it.
func (c *Controller) Activate(ctx context.Context, anchor Anchor, id string) error {
	if c.active != nil && c.active.anchor == anchor {
		c.Dismiss()
		return nil
	}
	rec, ok := c.records.Lookup(id)
	if !ok {
		c.log.Warn("Unknown vocabulary id", zap.String("id", id))
		return nil
	}
	c.Dismiss()

	fav := false
	if c.variant == VariantEnhanced && c.favorites != nil {
		var err error
		if fav, err = c.favorites.IsFavorite(ctx, rec.Word); err != nil {
			c.log.Warn("Failed to read favorites", zap.String("word", rec.Word), zap.Error(err))
			fav = false
		}
	}

	card := newCard(rec, c.variant, fav)
	if err := c.surface.Mount(card); err != nil {
		return fmt.Errorf("mount card for %q: %w", rec.Word, err)
	}
	card.place(Place(anchor.Bounds(), c.surface.Viewport(), c.layout))
	card.reveal()
	c.active = &binding{card: card, anchor: anchor}
	c.log.Debug("Card shown", zap.String("id", rec.ID), zap.String("word", rec.Word), zap.Bool("above", card.Placement.Above))
	return nil
}

// Dismiss removes the shown card. It does nothing when no card is shown.
func (c *Controller) Dismiss() {
	if c.active == nil {
		return
	}
	c.surface.Unmount(c.active.card)
	c.log.Debug("Card hidden", zap.String("id", c.active.card.Record.ID))
	c.active = nil
}

// Close is the card close button.
func (c *Controller) Close() { c.Dismiss() }

// HandlePointer dismisses the card when the interaction is outside both the
// vocabulary element and the card.
func (c *Controller) HandlePointer(t Target) {
	if t == TargetElsewhere {
		c.Dismiss()
	}
}

// HandleScroll dismisses the card.
func (c *Controller) HandleScroll() { c.Dismiss() }

// HandleResize repositions the card in the enhanced variant.
func (c *Controller) HandleResize() {
	if c.active == nil || c.variant != VariantEnhanced {
		return
	}
	c.active.card.place(Place(c.active.anchor.Bounds(), c.surface.Viewport(), c.layout))
}

// Speak pronounces the word of the shown card. Failures are logged.
func (c *Controller) Speak() error {
	if c.active == nil {
		return ErrNoCard
	}
	if c.variant != VariantEnhanced || c.speaker == nil {
		c.log.Warn("Speech synthesis not supported")
		return ErrSpeechUnavailable
	}
	word := c.active.card.Record.Word
	c.speaker.Cancel()
	err := c.speaker.Speak(speech.Utterance{
		Text: word,
		Lang: c.lang,
		Rate: c.rate,
		OnError: func(err error) {
			c.log.Error("Speech synthesis error", zap.String("word", word), zap.Error(err))
		},
	})
	if err != nil {
		c.log.Error("Speech synthesis error", zap.String("word", word), zap.Error(err))
		return fmt.Errorf("speak %q: %w", word, err)
	}
	return nil
}

// ToggleFavorite flips the favorite state of the shown word and returns the
// new state. On storage errors the button keeps its previous state.
func (c *Controller) ToggleFavorite(ctx context.Context) (bool, error) {
	if c.active == nil {
		return false, ErrNoCard
	}
	card := c.active.card
	if c.variant != VariantEnhanced || c.favorites == nil {
		return card.Favorite, ErrFavoritesUnavailable
	}
	on, err := c.favorites.Toggle(ctx, card.Record)
	if err != nil {
		c.log.Error("Failed to toggle favorite", zap.String("word", card.Record.Word), zap.Error(err))
		return card.Favorite, fmt.Errorf("toggle favorite %q: %w", card.Record.Word, err)
	}
	card.setFavorite(on)
	return on, nil
}
