package speech

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestNewCommandSpeakerRequiresCommand(t *testing.T) {
	_, err := NewCommandSpeaker(nil, nil)
	assert.ErrorIs(t, err, ErrNoCommand)
	_, err = NewCommandSpeaker([]string{"  "}, nil)
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestExpandPlaceholders(t *testing.T) {
	got := expand([]string{"-v", "{lang}", "-s", "{wpm}", "--rate={rate}", "{text}"},
		Utterance{Text: "run", Lang: "en-US", Rate: 0.9})
	assert.Equal(t, []string{"-v", "en-us", "-s", "157", "--rate=0.9", "run"}, got)
	assert.Equal(t, 175, wordsPerMinute(0))
}

func TestSpeakRejectsEmptyText(t *testing.T) {
	s, err := NewCommandSpeaker([]string{"true"}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Speak(Utterance{Text: " "}))
}

func TestSpeakReportsProcessFailure(t *testing.T) {
	requireCommand(t, "false")
	s, err := NewCommandSpeaker([]string{"false"}, nil)
	require.NoError(t, err)

	failed := make(chan error, 1)
	require.NoError(t, s.Speak(Utterance{Text: "run", OnError: func(err error) { failed <- err }}))
	s.Wait()

	select {
	case err := <-failed:
		var exitErr *exec.ExitError
		assert.True(t, errors.As(err, &exitErr), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("expected OnError to be called")
	}
}

func TestNewRequestCancelsPrevious(t *testing.T) {
	requireCommand(t, "sleep")
	s, err := NewCommandSpeaker([]string{"sleep", "{text}"}, nil)
	require.NoError(t, err)

	var reported []error
	onError := func(err error) { reported = append(reported, err) }

	start := time.Now()
	require.NoError(t, s.Speak(Utterance{Text: "5", OnError: onError}))
	require.NoError(t, s.Speak(Utterance{Text: "0", OnError: onError}))
	s.Wait()

	assert.Less(t, time.Since(start), 4*time.Second, "first utterance should have been cancelled")
	assert.Empty(t, reported, "cancellation is not a failure")
}

func TestCancelWithoutSpeech(t *testing.T) {
	s, err := NewCommandSpeaker([]string{"true"}, nil)
	require.NoError(t, err)
	s.Cancel()
	s.Wait()
}
