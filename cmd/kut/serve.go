package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/kut/dis"
	"github.com/deepnoodle-ai/kut/errz"
	"github.com/deepnoodle-ai/kut/object"
	"github.com/deepnoodle-ai/kut/program"
	"github.com/deepnoodle-ai/kut/vm"
)

const maxManifestSize = 1 << 20

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP API that runs and disassembles program manifests",
		Args:  cobra.NoArgs,
		RunE:  serveHandler,
	}
	flags := cmd.Flags()
	flags.String("addr", "localhost:8080", "address to listen on")
	flags.Duration("timeout", 5*time.Second, "maximum run time of one request")
	cfg.BindPFlag("addr", flags.Lookup("addr"))
	cfg.BindPFlag("timeout", flags.Lookup("timeout"))
	return cmd
}

func serveHandler(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.GetString("log-level"))
	if err != nil {
		return err
	}
	srv := newServer(logger)
	httpServer := &http.Server{
		Addr:              cfg.GetString("addr"),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", httpServer.Addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// server runs manifests posted over HTTP. Each request gets its own VM.
type server struct {
	logger       zerolog.Logger
	timeout      time.Duration
	maxCallDepth int
}

// newServer returns a server configured from cfg.
func newServer(logger zerolog.Logger) *server {
	return &server{
		logger:       logger,
		timeout:      cfg.GetDuration("timeout"),
		maxCallDepth: cfg.GetInt("max-call-depth"),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/run", s.handleRun)
	r.Post("/dis", s.handleDis)
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type runResponse struct {
	Result  any    `json:"result"`
	Inspect string `json:"inspect"`
	Type    string `json:"type"`
}

type errorResponse struct {
	Error string       `json:"error"`
	Kind  string       `json:"kind,omitempty"`
	Trace []errz.Frame `json:"trace,omitempty"`
}

func (s *server) readProgram(w http.ResponseWriter, r *http.Request) (*program.Program, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxManifestSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return nil, false
	}
	if len(body) > maxManifestSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "manifest too large"})
		return nil, false
	}
	prog, err := program.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	return prog, true
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	prog, ok := s.readProgram(w, r)
	if !ok {
		return
	}
	opts := []vm.Option{
		vm.WithLogger(s.logger.With().Str("request", middleware.GetReqID(r.Context())).Logger()),
		vm.WithMaxCallDepth(s.maxCallDepth),
	}
	if r.URL.Query().Get("validate") == "true" {
		opts = append(opts, vm.WithValidation())
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	result, err := prog.Run(ctx, opts...)
	if err != nil {
		resp := errorResponse{Error: err.Error()}
		var e *errz.Error
		if errors.As(err, &e) {
			resp.Kind = e.Kind.String()
			resp.Trace = e.Trace
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	resp := runResponse{Inspect: result.Inspect(), Type: string(result.Type())}
	if value, err := json.Marshal(resultValue(result)); err == nil {
		resp.Result = json.RawMessage(value)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleDis(w http.ResponseWriter, r *http.Request) {
	prog, ok := s.readProgram(w, r)
	if !ok {
		return
	}
	pools := dis.Program{Literals: prog.Literals, Templates: prog.Templates}
	var buf bytes.Buffer
	for i, t := range prog.Templates {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := dis.PrintTemplate(t, pools, &buf); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: fmt.Sprintf("template %d: %s", i, err)})
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// resultValue returns the Go value of a result, or nil for kinds that have no
// JSON form.
func resultValue(result object.Object) any {
	switch result.(type) {
	case *object.Closure, *object.External, *object.Cell:
		return nil
	}
	return result.Interface()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
