// Package speech provides command-backed speech capabilities. Any program
// that prints a transcript line (recognition) or reads text on stdin
// (synthesis) can be plugged in through the voice config.
package speech

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/logging"
)

var (
	_ adapter.SpeechRecognizer  = (*CommandRecognizer)(nil)
	_ adapter.SpeechSynthesizer = (*CommandSynthesizer)(nil)
)

func available(args []string) bool {
	if len(args) == 0 {
		return false
	}
	_, err := exec.LookPath(args[0])
	return err == nil
}

// CommandRecognizer runs cmdline once per capture and takes the first
// non-empty stdout line as the transcript.
type CommandRecognizer struct {
	args []string
	log  *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	id     uint64
}

func NewCommandRecognizer(cmdline string, logger *zerolog.Logger) *CommandRecognizer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &CommandRecognizer{args: strings.Fields(cmdline), log: logger}
}

func (r *CommandRecognizer) Supported() bool { return available(r.args) }

// Start kills any capture still running and begins a new one.
func (r *CommandRecognizer) Start(ctx context.Context, h adapter.RecognitionHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}

	cctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cctx, r.args[0], r.args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start recognizer: %w", err)
	}
	r.id++
	id := r.id
	r.cancel = cancel

	go func() {
		defer r.done(id, cancel)

		var transcript string
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" && transcript == "" {
				transcript = line
			}
		}
		werr := cmd.Wait()

		switch {
		case cctx.Err() != nil:
			// Stopped; deliver nothing but the end.
		case transcript != "":
			h.OnResult(transcript)
		case werr != nil:
			h.OnError(werr)
		}
		h.OnEnd()
	}()
	return nil
}

func (r *CommandRecognizer) done(id uint64, cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	if r.id == id {
		r.cancel = nil
	}
	r.mu.Unlock()
}

// Stop kills the running capture, if any.
func (r *CommandRecognizer) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// CommandSynthesizer pipes each utterance to cmdline on stdin. Voice settings
// are passed as TEXTBOOK_VOICE_* environment variables.
type CommandSynthesizer struct {
	args []string
	log  *zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewCommandSynthesizer(cmdline string, logger *zerolog.Logger) *CommandSynthesizer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &CommandSynthesizer{args: strings.Fields(cmdline), log: logger}
}

func (s *CommandSynthesizer) Supported() bool { return available(s.args) }

func (s *CommandSynthesizer) Speak(ctx context.Context, u adapter.Utterance) error {
	if err := s.Cancel(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}

	// Playback outlives the caller's request.
	cctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(cctx, s.args[0], s.args[1:]...)
	cmd.Stdin = strings.NewReader(u.Text)
	cmd.Env = append(cmd.Environ(),
		"TEXTBOOK_VOICE_LANG="+u.Lang,
		"TEXTBOOK_VOICE_RATE="+strconv.FormatFloat(u.Rate, 'f', -1, 64),
		"TEXTBOOK_VOICE_PITCH="+strconv.FormatFloat(u.Pitch, 'f', -1, 64),
	)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start synthesizer: %w", err)
	}

	stopped := make(chan struct{})
	s.cancel, s.stopped = cancel, stopped
	go func() {
		defer close(stopped)
		if err := cmd.Wait(); err != nil && cctx.Err() == nil {
			s.log.Debug().Err(err).Msg("synthesizer exited with error")
		}
		cancel()
	}()
	return nil
}

// Cancel stops current playback and waits for the process to exit.
func (s *CommandSynthesizer) Cancel() error {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel, s.stopped = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-stopped
	return nil
}

// Wait blocks until the current utterance finishes.
func (s *CommandSynthesizer) Wait() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped != nil {
		<-stopped
	}
}
