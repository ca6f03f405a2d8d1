// Package enrich fills missing vocabulary fields from a reading analyzer and
// a dictionary.
package enrich

import (
	"strings"

	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/dictionary"
	"github.com/japaniel/vocabmark/pkg/mark"
	"github.com/japaniel/vocabmark/pkg/reading"
)

// Reader produces the kana reading of a word.
type Reader interface {
	Reading(text string) string
}

// Enricher completes vocab marks. Fields set by the author are never changed.
type Enricher struct {
	reader     Reader
	dict       *dictionary.Index
	maxGlosses int
	log        *zap.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithReader sets the reading source used for missing phonetics.
func WithReader(r Reader) Option { return func(e *Enricher) { e.reader = r } }

// WithDictionary sets the dictionary used for missing definitions and translations.
func WithDictionary(ix *dictionary.Index) Option { return func(e *Enricher) { e.dict = ix } }

// WithMaxGlosses limits the glosses joined into a definition.
func WithMaxGlosses(n int) Option { return func(e *Enricher) { e.maxGlosses = n } }

func WithLogger(l *zap.Logger) Option { return func(e *Enricher) { e.log = l } }

// New creates an enricher. Without a reader or dictionary it changes nothing.
func New(opts ...Option) *Enricher {
	e := &Enricher{maxGlosses: 3, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Enrich returns v with empty phonetic, definition and translation filled in
// where possible. Only words written in Japanese script are looked up.
func (e *Enricher) Enrich(v mark.Vocab) mark.Vocab {
	if !reading.IsJapanese(v.Word) {
		return v
	}

	if v.Phonetic == "" && e.reader != nil {
		if r := e.reader.Reading(v.Word); r != "" && r != v.Word {
			v.Phonetic = r
		}
	}

	if e.dict != nil && (v.Definition == "" || v.Translation == "") {
		entries := e.dict.Lookup(v.Word, v.Word, v.Phonetic)
		if len(entries) == 0 && v.Phonetic != "" {
			// author supplied phonetics may be romaji or carry accents
			entries = e.dict.Lookup(v.Word, v.Word, "")
		}
		glosses := dictionary.Glosses(entries, e.maxGlosses)
		if len(glosses) > 0 {
			if v.Translation == "" {
				v.Translation = glosses[0]
			}
			if v.Definition == "" {
				v.Definition = strings.Join(glosses, "; ")
			}
		}
	}

	e.log.Debug("Enriched vocabulary", zap.String("word", v.Word), zap.String("phonetic", v.Phonetic))
	return v
}
