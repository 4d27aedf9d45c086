package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mgpai22/voxserve/internal/logging"
	"github.com/mgpai22/voxserve/internal/store"
	"github.com/mgpai22/voxserve/internal/summarize"
	"github.com/mgpai22/voxserve/internal/transcribe"
)

// Store is the persistence the server needs. *store.Store satisfies it.
type Store interface {
	CheckUsage(ctx context.Context) (store.Usage, error)
	AddUsage(ctx context.Context, minutes float64, source string) (store.UsageUpdate, error)
	CreateJob(ctx context.Context, filename, responseFormat, language string) (*store.Job, error)
	CompleteJob(ctx context.Context, id, language string, durationSeconds float64) error
	FailJob(ctx context.Context, id, message string) error
	GetJob(ctx context.Context, id string) (*store.Job, error)
}

// Options wires the server's collaborators.
type Options struct {
	Engine     transcribe.Engine
	Summarizer summarize.Summarizer // nil disables /v1/summarize
	Store      Store
	Logger     *logging.Logger

	Provider string
	Model    string

	UsageEnabled   bool
	Limits         store.Limits
	MaxUploadBytes int64
	TempDir        string
	AllowedOrigins []string
}

// Server serves the transcription API.
type Server struct {
	engine     transcribe.Engine
	summarizer summarize.Summarizer
	store      Store
	logger     *logging.Logger

	provider       string
	model          string
	usageEnabled   bool
	limits         store.Limits
	maxUploadBytes int64
	tempDir        string
	allowedOrigins []string

	handler http.Handler
}

const defaultMaxUploadBytes = 100 << 20

func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, errors.New("transcription engine is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}

	s := &Server{
		engine:         opts.Engine,
		summarizer:     opts.Summarizer,
		store:          opts.Store,
		logger:         opts.Logger,
		provider:       opts.Provider,
		model:          opts.Model,
		usageEnabled:   opts.UsageEnabled,
		limits:         opts.Limits,
		maxUploadBytes: opts.MaxUploadBytes,
		tempDir:        opts.TempDir,
		allowedOrigins: opts.AllowedOrigins,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = s.logger.Named("server")
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = defaultMaxUploadBytes
	}
	if len(s.allowedOrigins) == 0 {
		s.allowedOrigins = []string{"*"}
	}

	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, errTypeNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, errTypeInvalidRequest, "method not allowed")
	})

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/audio/transcriptions", s.handleTranscription).Methods(http.MethodPost)
	v1.HandleFunc("/transcriptions/{id}", s.handleGetJob).Methods(http.MethodGet)
	v1.HandleFunc("/summarize", s.handleSummarize).Methods(http.MethodPost)
	v1.HandleFunc("/usage", s.handleUsage).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-Id"}),
		handlers.ExposedHeaders([]string{headerRequestID, headerTranscriptionID, headerUsageRemaining}),
	)
	return cors(s.requestID(s.logRequests(s.recoverPanics(r))))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on bind until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, bind string, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", bind, err)
	}
	return s.Serve(ctx, listener, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	s.logger.Infow("server listening", "address", listener.Addr().String(), "provider", s.provider)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Infow("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
