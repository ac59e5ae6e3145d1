package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
)

// MemoryUseCase is what the HTTP layer needs from the memory engine
type MemoryUseCase interface {
	Remember(ctx context.Context, owner model.Owner, text string) (model.MemoryID, error)
	Recall(ctx context.Context, owner model.Owner, query string, limit int) ([]string, error)
}

const (
	DefaultServiceName  = "zenmemory"
	DefaultMaxBodyBytes = 1 << 20
)

type Server struct {
	router       *chi.Mux
	memoryUC     MemoryUseCase
	serviceName  string
	maxBodyBytes int64
}

type Options func(*Server)

func WithServiceName(name string) Options {
	return func(s *Server) {
		s.serviceName = name
	}
}

func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		s.maxBodyBytes = n
	}
}

func New(memoryUC MemoryUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		memoryUC:     memoryUC,
		serviceName:  DefaultServiceName,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.healthHandler)
	r.Post("/remember", s.rememberHandler)
	r.Post("/recall", s.recallHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a logger carrying the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
