package dictionary

import (
	"encoding/json"
	"sort"
	"sync"
)

// Index answers lookups against an in-memory dictionary.
type Index struct {
	// Key: Kanji or Kana text, Value: matching entries.
	// The map is never mutated after NewIndex; mu keeps concurrent readers
	// safe if that changes.
	mu    sync.RWMutex
	index map[string][]JMdictEntry
}

// NewIndex builds an index over entries.
func NewIndex(entries []JMdictEntry) *Index {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			idx[k.Text] = append(idx[k.Text], e)
		}
	}
	return &Index{index: idx}
}

// Len returns the number of indexed terms.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.index)
}

// Lookup finds entries for a word, its lemma and its pronunciation. An empty
// pronunciation matches any reading.
func (ix *Index) Lookup(word, lemma, pronunciation string) []JMdictEntry {
	candidates := make(map[string]JMdictEntry) // dedupe by entry id

	search := func(term string) {
		if term == "" {
			return
		}
		ix.mu.RLock()
		entries := ix.index[term]
		ix.mu.RUnlock()
		for _, e := range entries {
			candidates[e.Id] = e
		}
	}
	search(word)
	search(lemma)

	var results []JMdictEntry
	for _, entry := range candidates {
		if isMatch(entry, word, lemma, pronunciation) {
			results = append(results, entry)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Id < results[j].Id
	})
	return results
}

func isMatch(entry JMdictEntry, word, lemma, pronunciation string) bool {
	hasText := false
	for _, k := range entry.Kanji {
		if k.Text == word || k.Text == lemma {
			hasText = true
			break
		}
	}
	for _, k := range entry.Kana {
		if k.Text == word || k.Text == lemma {
			hasText = true
			break
		}
	}
	if !hasText {
		return false
	}
	if pronunciation == "" {
		return true
	}

	normalizedPron := ToHiragana(pronunciation)
	for _, k := range entry.Kana {
		if ToHiragana(k.Text) == normalizedPron {
			return true
		}
	}
	return false
}

// Glosses returns up to limit distinct glosses of entries in sense order.
// limit <= 0 means no limit.
func Glosses(entries []JMdictEntry, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		for _, s := range e.Sense {
			for _, g := range s.Gloss {
				if g.Lang != "" && g.Lang != "eng" {
					continue
				}
				if g.Text == "" || seen[g.Text] {
					continue
				}
				seen[g.Text] = true
				out = append(out, g.Text)
				if limit > 0 && len(out) == limit {
					return out
				}
			}
		}
	}
	return out
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// FormatDefinitions flattens entries into a JSON list of senses and parts of speech.
func FormatDefinitions(entries []JMdictEntry) (string, error) {
	var defs []DefinitionEntry
	for _, e := range entries {
		var senses, poses []string
		for _, s := range e.Sense {
			for _, g := range s.Gloss {
				senses = append(senses, g.Text)
			}
			poses = append(poses, s.PartOfSpeech...)
		}
		defs = append(defs, DefinitionEntry{Senses: senses, POS: poses})
	}
	bytes, err := json.Marshal(defs)
	return string(bytes), err
}
