// Package speech pronounces words through an external synthesis command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Utterance is a synthesis request.
type Utterance struct {
	Text string
	Lang string
	Rate float64
	// OnError receives failures that happen after the request was accepted.
	OnError func(error)
}

// ErrNoCommand is returned when no synthesis command is configured.
var ErrNoCommand = errors.New("speech: no synthesis command configured")

// CommandSpeaker runs a command per utterance. Arguments may contain the
// placeholders {text}, {lang}, {wpm} and {rate}. Only the latest request
// runs: starting a new one cancels the previous process.
type CommandSpeaker struct {
	name string
	args []string
	log  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandSpeaker creates a speaker for the given command line.
func NewCommandSpeaker(command []string, log *zap.Logger) (*CommandSpeaker, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, ErrNoCommand
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandSpeaker{name: command[0], args: command[1:], log: log}, nil
}

// Speak starts synthesis of u in the background.
func (s *CommandSpeaker) Speak(u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return errors.New("speech: empty text")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, s.name, expand(s.args, u)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("speech: start %s: %w", s.name, err)
	}
	s.log.Debug("Speaking", zap.String("text", u.Text), zap.String("lang", u.Lang), zap.Float64("rate", u.Rate))

	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go func() {
		defer close(done)
		err := cmd.Wait()
		if err != nil && ctx.Err() == nil && u.OnError != nil {
			u.OnError(fmt.Errorf("speech: %s: %w", s.name, err))
		}
	}()
	return nil
}

// Cancel stops the in-flight utterance, if any, and waits for it to exit.
func (s *CommandSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Wait blocks until the current utterance finishes.
func (s *CommandSpeaker) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *CommandSpeaker) cancelLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

// wordsPerMinute maps a relative rate (1.0 = normal) to espeak style words per minute.
func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	return int(175 * rate)
}

func expand(args []string, u Utterance) []string {
	r := strings.NewReplacer(
		"{text}", u.Text,
		"{lang}", strings.ToLower(u.Lang),
		"{wpm}", strconv.Itoa(wordsPerMinute(u.Rate)),
		"{rate}", strconv.FormatFloat(u.Rate, 'f', -1, 64),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}
