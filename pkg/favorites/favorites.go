// Package favorites persists the words a reader marked as favorite.
//
// The whole collection is a single JSON object (word -> entry) stored as one
// blob. Every change reads the full mapping, modifies it and writes it back.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/vocabmark/pkg/vocab"
)

// StorageKey is the key the favorites blob is stored under.
const StorageKey = "vocab_favorites"

// Entry is a favorited word with a copy of its vocabulary data.
type Entry struct {
	Word         string    `json:"word"`
	Translation  string    `json:"translation"`
	Phonetic     string    `json:"phonetic"`
	Definition   string    `json:"definition"`
	ExampleEN    string    `json:"exampleEN"`
	ExampleCN    string    `json:"exampleCN"`
	Synonyms     string    `json:"synonyms"`
	Color        string    `json:"color"`
	FavoriteTime time.Time `json:"favoriteTime"`
}

// Backend loads and saves the serialized mapping. Load returns a nil slice
// when nothing has been stored yet.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Store manages favorites on top of a Backend.
type Store struct {
	backend Backend
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for capture timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store over backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// All returns the full mapping. A blob that cannot be decoded is treated as
// an empty mapping.
func (s *Store) All(ctx context.Context) (map[string]Entry, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]Entry), nil
	}
	var out map[string]Entry
	if err := json.Unmarshal(data, &out); err != nil {
		s.log.Warn("Favorites data is corrupted, starting from empty set", zap.Error(err))
		return make(map[string]Entry), nil
	}
	if out == nil {
		// a JSON null decodes without error
		return make(map[string]Entry), nil
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, m map[string]Entry) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

// IsFavorite reports whether word is in the mapping.
func (s *Store) IsFavorite(ctx context.Context, word string) (bool, error) {
	m, err := s.All(ctx)
	if err != nil {
		return false, err
	}
	_, ok := m[word]
	return ok, nil
}

// Add stores rec under its word, replacing any previous entry.
func (s *Store) Add(ctx context.Context, rec vocab.Record) error {
	m, err := s.All(ctx)
	if err != nil {
		return err
	}
	m[rec.Word] = s.entry(rec)
	if err := s.save(ctx, m); err != nil {
		return err
	}
	s.log.Info("Added to favorites", zap.String("word", rec.Word))
	return nil
}

// Remove deletes word from the mapping. Removing a missing word is not an error.
func (s *Store) Remove(ctx context.Context, word string) error {
	m, err := s.All(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[word]; !ok {
		return nil
	}
	delete(m, word)
	if err := s.save(ctx, m); err != nil {
		return err
	}
	s.log.Info("Removed from favorites", zap.String("word", word))
	return nil
}

// Toggle adds rec when its word is not a favorite and removes it otherwise.
// It returns the new membership.
func (s *Store) Toggle(ctx context.Context, rec vocab.Record) (bool, error) {
	m, err := s.All(ctx)
	if err != nil {
		return false, err
	}
	_, was := m[rec.Word]
	if was {
		delete(m, rec.Word)
	} else {
		m[rec.Word] = s.entry(rec)
	}
	if err := s.save(ctx, m); err != nil {
		return was, err
	}
	s.log.Info("Toggled favorite", zap.String("word", rec.Word), zap.Bool("favorite", !was))
	return !was, nil
}

// List returns entries with the most recently captured first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	m, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FavoriteTime.Equal(out[j].FavoriteTime) {
			return out[i].FavoriteTime.After(out[j].FavoriteTime)
		}
		return out[i].Word < out[j].Word
	})
	return out, nil
}

func (s *Store) entry(rec vocab.Record) Entry {
	return Entry{
		Word:         rec.Word,
		Translation:  rec.Translation,
		Phonetic:     rec.Phonetic,
		Definition:   rec.Definition,
		ExampleEN:    rec.ExampleEN,
		ExampleCN:    rec.ExampleCN,
		Synonyms:     rec.Synonyms,
		Color:        rec.Color,
		FavoriteTime: s.now().UTC(),
	}
}

// Memory is an in-process Backend.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates a Memory backend holding data.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

// Bytes returns the stored blob.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
