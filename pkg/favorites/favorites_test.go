package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/japaniel/vocabmark/pkg/vocab"
)

type tickClock struct{ t time.Time }

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

var run = vocab.Record{
	ID:          "vocab_1",
	Word:        "run",
	Translation: "跑",
	Phonetic:    "rʌn",
	Synonyms:    "jog,sprint",
	Color:       "#9c27b0",
}

func newStore(backend Backend) (*Store, *tickClock) {
	clock := &tickClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(backend, WithClock(clock.now)), clock
}

func TestToggleAddsThenRemoves(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(nil)
	s, _ := newStore(mem)

	fav, err := s.Toggle(ctx, run)
	require.NoError(t, err)
	assert.True(t, fav)

	ok, err := s.IsFavorite(ctx, "run")
	require.NoError(t, err)
	assert.True(t, ok)

	fav, err = s.Toggle(ctx, run)
	require.NoError(t, err)
	assert.False(t, fav)

	// the removal is persisted, not only reported
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(mem.Bytes(), &raw))
	assert.NotContains(t, raw, "run")
}

func TestAddTwiceOnlyMovesTimestamp(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(NewMemory(nil))

	require.NoError(t, s.Add(ctx, run))
	first, err := s.All(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Add(ctx, run))
	second, err := s.All(ctx)
	require.NoError(t, err)

	a, b := first["run"], second["run"]
	assert.True(t, b.FavoriteTime.After(a.FavoriteTime))
	a.FavoriteTime, b.FavoriteTime = time.Time{}, time.Time{}
	assert.Equal(t, a, b)
	assert.Len(t, second, 1)
}

func TestPersistedFormat(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(nil)
	s, _ := newStore(mem)
	require.NoError(t, s.Add(ctx, run))

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(mem.Bytes(), &raw))
	entry := raw["run"]
	assert.Equal(t, "跑", entry["translation"])
	assert.Equal(t, "jog,sprint", entry["synonyms"])
	assert.Equal(t, "2024-05-01T12:01:00Z", entry["favoriteTime"])
}

func TestCorruptedBlobIsEmpty(t *testing.T) {
	for _, blob := range []string{"{not json", "[1,2]", `"run"`} {
		t.Run(blob, func(t *testing.T) {
			ctx := context.Background()
			core, logs := observer.New(zap.WarnLevel)
			s := NewStore(NewMemory([]byte(blob)), WithLogger(zap.New(core)))

			all, err := s.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
			assert.Equal(t, 1, logs.FilterMessageSnippet("corrupted").Len())

			// writing over a corrupted blob starts a fresh mapping
			fav, err := s.Toggle(ctx, run)
			require.NoError(t, err)
			assert.True(t, fav)
			all, err = s.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestNullBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory([]byte("null"))
	s, _ := newStore(mem)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	fav, err := s.Toggle(ctx, run)
	require.NoError(t, err)
	assert.True(t, fav)

	require.NoError(t, s.Add(ctx, run))
	on, err := s.IsFavorite(ctx, "run")
	require.NoError(t, err)
	assert.True(t, on)

	var persisted map[string]Entry
	require.NoError(t, json.Unmarshal(mem.Bytes(), &persisted))
	assert.Contains(t, persisted, "run")
}

type failingBackend struct{ loadErr, saveErr error }

func (f failingBackend) Load(context.Context) ([]byte, error) { return nil, f.loadErr }
func (f failingBackend) Save(context.Context, []byte) error   { return f.saveErr }

func TestBackendErrorsAreReturned(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")

	s := NewStore(failingBackend{loadErr: boom})
	_, err := s.Toggle(ctx, run)
	assert.ErrorIs(t, err, boom)

	s = NewStore(failingBackend{saveErr: boom})
	fav, err := s.Toggle(ctx, run)
	assert.ErrorIs(t, err, boom)
	assert.False(t, fav, "membership unchanged on failed save")
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(NewMemory(nil))
	for _, w := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, s.Add(ctx, vocab.Record{Word: w, Translation: w}))
	}
	require.NoError(t, s.Remove(ctx, "beta"))
	require.NoError(t, s.Remove(ctx, "missing"))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "gamma", list[0].Word)
	assert.Equal(t, "alpha", list[1].Word)
}
