// Package vocab keeps the vocabulary records registered while annotating one page.
package vocab

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/japaniel/vocabmark/pkg/mark"
	"github.com/japaniel/vocabmark/pkg/palette"
)

// IDPrefix starts every generated record id.
const IDPrefix = "vocab_"

// Record is a registered vocabulary mark with its resolved display color.
type Record struct {
	ID          string `json:"id"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Phonetic    string `json:"phonetic,omitempty"`
	Definition  string `json:"definition,omitempty"`
	ExampleEN   string `json:"exampleEN,omitempty"`
	ExampleCN   string `json:"exampleCN,omitempty"`
	Synonyms    string `json:"synonyms,omitempty"`
	Color       string `json:"color"`
}

// SynonymList splits the synonyms field the same way the mark does.
func (r Record) SynonymList() []string {
	return mark.Vocab{Synonyms: r.Synonyms}.SynonymList()
}

// ColorPolicy picks a color for a word that has no valid explicit color key.
type ColorPolicy interface {
	Pick(word string) string
}

// HashColors picks a palette color from a hash of the word, so the same word
// always gets the same color.
type HashColors struct{ Palette *palette.Palette }

func (h HashColors) Pick(word string) string {
	return h.Palette.At(xxhash.Sum64String(word))
}

// RandomColors picks a palette color at random.
type RandomColors struct {
	Palette *palette.Palette
	Rand    *rand.Rand
}

func (r RandomColors) Pick(string) string {
	if r.Palette.Len() == 0 {
		return ""
	}
	if r.Rand != nil {
		return r.Palette.At(r.Rand.Uint64())
	}
	return r.Palette.At(rand.Uint64())
}

// Registry owns the records of one session. It is not safe for concurrent use.
type Registry struct {
	palette *palette.Palette
	colors  ColorPolicy
	newID   func() string

	records map[string]Record
	order   []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithPalette replaces the default palette.
func WithPalette(p *palette.Palette) Option {
	return func(r *Registry) { r.palette = p }
}

// WithColorPolicy replaces the default hash based color policy.
func WithColorPolicy(c ColorPolicy) Option {
	return func(r *Registry) { r.colors = c }
}

// WithIDs replaces the id generator. Generated ids must be unique for the session.
func WithIDs(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		palette: palette.Default(),
		newID:   func() string { return IDPrefix + uuid.NewString() },
		records: make(map[string]Record),
	}
	for _, o := range opts {
		o(r)
	}
	if r.colors == nil {
		r.colors = HashColors{Palette: r.palette}
	}
	return r
}

// Palette returns the palette used to resolve color keys.
func (r *Registry) Palette() *palette.Palette { return r.palette }

// Register stores v under a fresh id and returns the record.
func (r *Registry) Register(v mark.Vocab) Record {
	id := r.newID()
	for _, taken := r.records[id]; taken; _, taken = r.records[id] {
		id = r.newID()
	}
	rec := Record{
		ID:          id,
		Word:        v.Word,
		Translation: v.Translation,
		Phonetic:    v.Phonetic,
		Definition:  v.Definition,
		ExampleEN:   v.ExampleEN,
		ExampleCN:   v.ExampleCN,
		Synonyms:    v.Synonyms,
		Color:       r.resolveColor(v),
	}
	r.records[id] = rec
	r.order = append(r.order, id)
	return rec
}

func (r *Registry) resolveColor(v mark.Vocab) string {
	if v.ColorKey != "" {
		if hex, ok := r.palette.Resolve(v.ColorKey); ok {
			return hex
		}
	}
	return r.colors.Pick(v.Word)
}

// Restore adds records saved from an earlier session, keeping their ids and
// colors. Records without an id or with an id already present are skipped.
// It returns the number of records added.
func (r *Registry) Restore(recs []Record) int {
	n := 0
	for _, rec := range recs {
		if rec.ID == "" {
			continue
		}
		if _, taken := r.records[rec.ID]; taken {
			continue
		}
		r.records[rec.ID] = rec
		r.order = append(r.order, rec.ID)
		n++
	}
	return n
}

// Lookup returns the record registered under id.
func (r *Registry) Lookup(id string) (Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Len returns the number of registered records.
func (r *Registry) Len() int { return len(r.records) }

// Records returns all records in registration order.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}
