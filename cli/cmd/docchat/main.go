package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/bhandras/docchat/cli/internal/config"
	"github.com/bhandras/docchat/cli/internal/controller"
	"github.com/bhandras/docchat/cli/internal/transport"
	"github.com/bhandras/docchat/cli/internal/ui"
	"github.com/bhandras/docchat/pkg/logger"
	"github.com/bhandras/docchat/pkg/version"
	"github.com/bhandras/docchat/shared/wire"
	"github.com/spf13/cobra"
)

// renderInterval bounds how often the terminal is refreshed from a state
// snapshot.
const renderInterval = 100 * time.Millisecond

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "docchat",
		Short: "Terminal client for the docchat documentation assistant",
		Long: `docchat - chat with the documentation assistant from your terminal

Type a question and press enter; the assistant's answer streams back with
numbered references into the indexed documentation. Follow-up questions stay
on the same thread.

Commands while chatting:
  /cancel   Abort the in-flight request (Ctrl+C does the same)
  /quit     Exit

Environment Variables:
  DOCCHAT_SERVER_URL  Server URL (default: http://localhost:3001)
  DEBUG               Enable debug logging (true/1)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if serverURL != "" {
				cfg.ServerURL = serverURL
			}
			if cfg.Debug {
				logger.SetLevel(logger.LevelDebug)
			}
			return runChat(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "",
		"docchat server URL (overrides DOCCHAT_SERVER_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("docchat v%s\n", version.RichVersion())
		},
	})
	return cmd
}

func runChat(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := controller.New(controller.Config{})
	ctrl.Start()
	defer ctrl.Stop()

	client := transport.New(cfg.ServerURL)
	runner := newEffectRunner(ctx, ctrl, client)
	go runner.run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	lines := readLines(os.Stdin)

	fmt.Printf("Connected to %s\n", cfg.ServerURL)
	fmt.Println("Ask a question about the documentation. /quit exits.")

	render := newRenderer(os.Stdout)
	render.prompt()

	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-sigCh:
			// Ctrl+C aborts an in-flight request; when idle it exits.
			if ctrl.Snapshot().Phase == controller.PhaseSending {
				ctrl.Post(controller.CmdCancel{})
				continue
			}
			fmt.Println()
			return nil

		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
			input := strings.TrimSpace(line)
			switch input {
			case "":
				render.prompt()
			case "/quit", "/exit":
				return nil
			case "/cancel":
				ctrl.Post(controller.CmdCancel{})
			default:
				if !ctrl.Post(controller.CmdSubmit{Query: input}) {
					return errors.New("controller stopped")
				}
			}

		case <-ticker.C:
			render.update(ctrl.Snapshot())
		}
	}
}

// readLines feeds stdin lines into a channel so the main loop can select
// over input, signals and render ticks at the same time. The channel is
// closed on EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// effectRunner executes controller effects: it opens one streaming request
// per generation and keeps a cancel func around so a cancel effect (or a
// preempting submit) can abort exactly that request.
type effectRunner struct {
	ctx    context.Context
	ctrl   *controller.Controller
	client *transport.Client

	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
}

func newEffectRunner(ctx context.Context, ctrl *controller.Controller,
	client *transport.Client) *effectRunner {

	return &effectRunner{
		ctx:     ctx,
		ctrl:    ctrl,
		client:  client,
		cancels: make(map[uint64]context.CancelFunc),
	}
}

func (r *effectRunner) run() {
	for eff := range r.ctrl.Effects() {
		switch eff := eff.(type) {
		case controller.EffStartRequest:
			r.start(eff)
		case controller.EffCancelRequest:
			r.cancel(eff.Gen)
		}
	}
}

func (r *effectRunner) start(eff controller.EffStartRequest) {
	ctx, cancel := context.WithCancel(r.ctx)
	r.mu.Lock()
	r.cancels[eff.Gen] = cancel
	r.mu.Unlock()

	go func() {
		defer r.cancel(eff.Gen)

		terminal := false
		err := r.client.Stream(ctx, eff.Query, eff.ThreadID,
			func(ev wire.StreamEvent) error {
				if ev.Terminal() {
					terminal = true
				}
				r.ctrl.Post(controller.EvStreamEvent{Gen: eff.Gen, Event: ev})
				return nil
			})

		switch {
		case err == nil && terminal:
			// Stream finished normally.
		case err == nil:
			r.ctrl.Post(controller.EvStreamClosed{Gen: eff.Gen})
		case errors.Is(err, context.Canceled):
			// Aborted locally; the reducer already left the sending phase.
		default:
			logger.Debugf("stream failed (gen %d): %v", eff.Gen, err)
			r.ctrl.Post(controller.EvTransportError{Gen: eff.Gen, Err: err})
		}
	}()
}

func (r *effectRunner) cancel(gen uint64) {
	r.mu.Lock()
	cancel, ok := r.cancels[gen]
	delete(r.cancels, gen)
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// renderer prints state deltas between snapshots: newly arrived messages,
// status line changes and error banners.
type renderer struct {
	out io.Writer

	rendered   int
	lastStatus string
	lastError  string
	lastPhase  controller.Phase
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, lastPhase: controller.PhaseIdle}
}

func (r *renderer) prompt() {
	fmt.Fprint(r.out, "> ")
}

func (r *renderer) update(s controller.State) {
	if s.Phase == controller.PhaseSending && r.lastPhase != controller.PhaseSending {
		// A fresh request invalidates the old transcript position when the
		// server replaces the message list on completion.
		r.lastError = ""
	}

	if len(s.Messages) < r.rendered {
		r.rendered = 0
	}
	for _, msg := range s.Messages[r.rendered:] {
		fmt.Fprint(r.out, ui.Message(msg))
	}
	r.rendered = len(s.Messages)

	if s.StatusText != r.lastStatus {
		if s.StatusText != "" {
			fmt.Fprintln(r.out, ui.Status(s.StatusText))
		}
		r.lastStatus = s.StatusText
	}

	if s.ErrorText != r.lastError {
		if s.ErrorText != "" {
			fmt.Fprintln(r.out, ui.Error(s.ErrorText))
		}
		r.lastError = s.ErrorText
	}

	if s.Phase.Terminal() && s.Phase != r.lastPhase {
		r.prompt()
	}
	r.lastPhase = s.Phase
}
