package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Task runs alongside the HTTP server and must return once ctx is done.
type Task func(ctx context.Context) error

type Server struct {
	srv      *http.Server
	certFile string
	keyFile  string
	tasks    []Task
	log      *zap.Logger
}

func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger,
	}
}

// WithTLS makes the server terminate TLS with the given key pair.
func (s *Server) WithTLS(certFile, keyFile string) *Server {
	s.certFile, s.keyFile = certFile, keyFile
	return s
}

// Go registers a background task sharing the server's lifetime.
func (s *Server) Go(t Task) *Server {
	s.tasks = append(s.tasks, t)
	return s
}

// Run listens on the configured address and blocks until ctx is cancelled
// or the server or a task fails.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening",
			zap.String("addr", lis.Addr().String()),
			zap.Bool("tls", s.certFile != ""),
		)
		var err error
		if s.certFile != "" {
			err = s.srv.ServeTLS(lis, s.certFile, s.keyFile)
		} else {
			err = s.srv.Serve(lis)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	for _, t := range s.tasks {
		g.Go(func() error { return t(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("graceful shutdown timed out, closing", zap.Error(err))
			return s.srv.Close()
		}
		s.log.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
