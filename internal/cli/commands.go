package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fmbridge/internal/bridge"
	"fmbridge/internal/httpapi"
)

// errUnavailable is returned by check so the process exits non-zero.
var errUnavailable = errors.New("model not available")

// failure holds the message of an onError callback.
type failure struct {
	mu  sync.Mutex
	err error
}

func (f *failure) set(msg string) {
	f.mu.Lock()
	f.err = errors.New(msg)
	f.mu.Unlock()
}

func (f *failure) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the configured engine is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.bridge.Status()
			if st.Available {
				color.New(color.FgGreen).Fprintf(a.out, "✓ %s available\n", st.Engine)
				return nil
			}
			color.New(color.FgRed).Fprintf(a.out, "✗ %s unavailable: %s\n", st.Engine, st.Reason)
			return errUnavailable
		},
	}
}

func respondCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "respond <prompt>",
		Short:   "Generate a full response, waiting until it finishes",
		Args:    cobra.MinimumNArgs(1),
		Example: "  fmbridge respond \"Write a haiku about the ocean\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			sp := newWaitSpinner(a.errOut, "Generating...")
			sp.Start()
			defer sp.Stop()

			var f failure
			a.bridge.RespondContext(cmd.Context(), []byte(prompt), nil, bridge.Callbacks{
				OnChunk: func(c string, _ bridge.UserData) {
					sp.Stop()
					fmt.Fprint(a.out, c)
				},
				OnDone: func(bridge.UserData) {
					sp.Stop()
					fmt.Fprintln(a.out)
				},
				OnError: func(msg string, _ bridge.UserData) {
					sp.Stop()
					f.set(msg)
				},
			})
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			return f.get()
		},
	}
}

func streamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "stream <prompt>",
		Short:   "Stream a response as it is generated (Ctrl+C stops it)",
		Args:    cobra.MinimumNArgs(1),
		Example: "  fmbridge stream \"Tell me a story\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			var f failure
			op := a.bridge.StartStream([]byte(prompt), nil, bridge.Callbacks{
				OnChunk: func(c string, _ bridge.UserData) { fmt.Fprint(a.out, c) },
				OnDone:  func(bridge.UserData) { fmt.Fprintln(a.out) },
				OnError: func(msg string, _ bridge.UserData) { f.set(msg) },
			})
			select {
			case <-op.Done():
			case <-cmd.Context().Done():
				a.bridge.StopStream()
				<-op.Done()
			}
			if op.Outcome() == bridge.OutcomeCancelled {
				color.New(color.FgHiBlack).Fprintln(a.out, "\n[stopped]")
				return nil
			}
			return f.get()
		},
	}
}

// httpHandler applies the HTTP settings from config and returns the router.
func (a *app) httpHandler(ctx context.Context) http.Handler {
	httpapi.SetLogger(a.log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetCORSOptions(len(a.cfg.CORSOrigins) > 0, a.cfg.CORSOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Content-Type", "X-Log-Level"})
	httpapi.SetMaxBodyBytes(a.cfg.MaxBodyBytes)
	httpapi.SetRequestTimeoutSeconds(a.cfg.RequestTimeoutSeconds)
	return httpapi.NewMux(a.bridge)
}

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bridge over HTTP (NDJSON streaming)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			ctx := cmd.Context()
			srv := &http.Server{Addr: addr, Handler: a.httpHandler(ctx), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Str("engine", a.bridge.Engine().Name()).Msg("fmbridge listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				a.log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config, :8080)")
	return cmd
}
