// File: cmd/app/chat.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/adapters/speech"
	"physical-ai-textbook/internal/infra/metrics"
	"physical-ai-textbook/internal/infra/worker"
	"physical-ai-textbook/internal/usecase"
)

type chatOptions struct {
	selected     string
	metricsAddr  string
	speakReplies bool
}

// console serializes writes from the prompt loop and the workers.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) Println(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, a...)
}

func newChatCmd(flags *rootFlags) *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the AI tutor",
		Long: "Starts an interactive chat. Type a question and press Enter.\n" +
			"Use /voice to dictate a question when a recognizer command is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.selected, "selected", "", "selected text sent as context with every question")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	cmd.Flags().BoolVar(&opts.speakReplies, "speak", false, "read every answer aloud")
	return cmd
}

func speechPorts(cfg config.VoiceConfig, d *deps) (adapter.SpeechRecognizer, adapter.SpeechSynthesizer) {
	var (
		rec adapter.SpeechRecognizer  = speech.Unsupported{}
		syn adapter.SpeechSynthesizer = speech.Unsupported{}
	)
	if cfg.RecognizerCmd != "" {
		rec = speech.NewCommandRecognizer(cfg.RecognizerCmd, d.log)
	}
	if cfg.SynthesizerCmd != "" {
		syn = speech.NewCommandSynthesizer(cfg.SynthesizerCmd, d.log)
	}
	return rec, syn
}

func serveMetrics(addr string, d *deps) func() {
	metrics.SetBuildInfo(Version, Commit)
	srv := &http.Server{Addr: addr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func lastAnswer(conv *model.Conversation) (string, bool) {
	msgs := conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			return msgs[i].Text, true
		}
	}
	return "", false
}

func runChat(cmd *cobra.Command, flags *rootFlags, opts *chatOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, flags)
	if err != nil {
		return err
	}
	defer d.Close()

	out := &console{w: cmd.OutOrStdout()}
	out.Println(d.tr.T("chat.welcome"))
	out.Println(d.tr.T("chat.help"))

	// Validate the stored session without holding up the prompt.
	started := make(chan struct{})
	go func() {
		defer close(started)
		d.session.Start(ctx)
		out.Println(describeUser(d.tr, d.session.User()))
	}()
	defer func() {
		stop()
		<-started
	}()

	if opts.metricsAddr != "" {
		defer serveMetrics(opts.metricsAddr, d)()
	}

	selected := opts.selected
	if selected == "" {
		selected = d.cfg.Chat.SelectedText
	}
	engine := usecase.NewAssistantEngine(d.client, d.tr, d.log,
		usecase.WithSessionID(d.cfg.Chat.SessionID),
		usecase.WithSelectedText(selected),
	)
	defer engine.Close()

	input := &model.InputField{}
	rec, syn := speechPorts(d.cfg.Voice, d)
	voice := usecase.NewVoiceAdapter(rec, syn, input, d.cfg.Voice, d.log,
		usecase.WithTranscriptHook(func(text string) {
			out.Println(d.tr.T("chat.transcript", text))
		}),
	)
	defer func() { _ = voice.StopListening() }()

	pool := worker.NewPool(2, d.log)
	pool.Start(ctx)
	defer pool.Stop()

	// On /quit or EOF let in-flight answers print. A signal skips the wait
	// since the pool no longer runs queued tasks.
	var inflight sync.WaitGroup
	defer func() {
		done := make(chan struct{})
		go func() {
			inflight.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}()

	send := func(text string) {
		if !engine.Conversation().Pending() {
			out.Println(d.tr.T("chat.thinking"))
		}
		inflight.Add(1)
		err := pool.Submit(func(ctx context.Context) error {
			defer inflight.Done()
			if !engine.Send(ctx, text) {
				return nil
			}
			answer, ok := lastAnswer(engine.Conversation())
			if !ok {
				return nil
			}
			out.Println(answer)
			if opts.speakReplies && voice.SynthesisSupported() {
				return voice.Speak(ctx, answer)
			}
			return nil
		})
		if err != nil {
			inflight.Done()
			d.log.Warn().Err(err).Msg("chat message dropped")
		}
	}

	speak := func() {
		if !voice.SynthesisSupported() {
			out.Println(d.tr.T("voice.synthesis_unsupported"))
			return
		}
		if answer, ok := lastAnswer(engine.Conversation()); ok {
			if err := voice.Speak(ctx, answer); err != nil {
				d.log.Warn().Err(err).Msg("speak failed")
			}
		}
	}

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/help":
			out.Println(d.tr.T("chat.help"))
		case "/whoami":
			out.Println(describeUser(d.tr, d.session.User()))
		case "/voice":
			err := voice.StartListening(ctx)
			switch {
			case errors.Is(err, domain.ErrVoiceUnsupported):
				out.Println(d.tr.T("voice.recognition_unsupported"))
			case err != nil:
				out.Println(err.Error())
			default:
				out.Println(d.tr.T("chat.listening"))
			}
		case "/stop":
			if voice.State() == model.VoiceListening {
				_ = voice.StopListening()
				out.Println(d.tr.T("chat.voice_stopped"))
			}
		case "/speak":
			speak()
		case "":
			// Enter on an empty line sends a pending transcript.
			if text := input.Take(); text != "" {
				send(text)
			}
		default:
			input.Set(line)
			send(input.Take())
		}
	}
}

// readLines feeds stdin lines until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
