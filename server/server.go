// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/go-kit/kit/metrics"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Executor is a local interface describing the set of methods the underlying
// server object must implement.
type Executor interface {
	Serve(net.Listener) error
	ServeTLS(l net.Listener, certificateFile, keyFile string) error
	Shutdown(context.Context) error
}

// Server runs an Executor on a listener.  Start and Stop are idempotent.
type Server struct {
	config   Config
	executor Executor
	logger   *zap.Logger

	listenerOptions ListenerOptions

	startOnce sync.Once
	stopOnce  sync.Once
	listener  net.Listener
	done      chan struct{}
	err       error
}

// NewHTTPServer creates the http.Server for the given handler
func NewHTTPServer(c Config, handler http.Handler, logger *zap.Logger) *http.Server {
	if logger == nil {
		logger = sallust.Default()
	}

	s := &http.Server{
		Addr:         c.Address,
		Handler:      handler,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		IdleTimeout:  c.IdleTimeout,
	}

	if errorLog, err := zap.NewStdLogAt(logger.Named("http"), zap.ErrorLevel); err == nil {
		s.ErrorLog = errorLog
	}

	if c.LogConnectionState {
		s.ConnState = NewConnectionStateLogger(logger)
	}

	return s
}

// NewConnectionStateLogger produces a function appropriate for http.Server.ConnState.
// The returned function will log debug statements for each state change.
func NewConnectionStateLogger(logger *zap.Logger) func(net.Conn, http.ConnState) {
	return func(connection net.Conn, connectionState http.ConnState) {
		logger.Debug(
			"connection state change",
			zap.Stringer("localAddress", connection.LocalAddr()),
			zap.Stringer("state", connectionState),
		)
	}
}

// New creates a Server for the given executor
func New(c Config, executor Executor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = sallust.Default()
	}

	if len(c.Address) == 0 {
		c.Address = DefaultAddress
	}

	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdown
	}

	return &Server{
		config:   c,
		executor: executor,
		logger:   logger,
		listenerOptions: ListenerOptions{
			MaxConnections: c.MaxConnections,
			Logger:         logger,
		},
		done: make(chan struct{}),
	}
}

// WithConnectionMetrics sets the metrics recorded by the listener.  It must be called before Start.
func (s *Server) WithConnectionMetrics(rejected metrics.Counter, active metrics.Gauge) *Server {
	s.listenerOptions.Rejected = rejected
	s.listenerOptions.Active = active
	return s
}

// Addr returns the address being listened on, or nil if not started
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}

	return nil
}

// Start binds the listener and begins serving in a goroutine.  A failure to listen is
// returned directly.
func (s *Server) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		var lc net.ListenConfig
		var next net.Listener
		next, err = lc.Listen(ctx, "tcp", s.config.Address)
		if err != nil {
			close(s.done)
			return
		}

		s.listener = NewListener(next, s.listenerOptions)

		s.logger.Info("starting server", zap.Stringer("address", s.listener.Addr()), zap.Bool("secure", s.config.Secure()))
		go func() {
			defer close(s.done)
			var serveErr error
			if s.config.Secure() {
				serveErr = s.executor.ServeTLS(s.listener, s.config.CertificateFile, s.config.KeyFile)
			} else {
				serveErr = s.executor.Serve(s.listener)
			}

			if !errors.Is(serveErr, http.ErrServerClosed) {
				s.err = serveErr
				s.logger.Error("server exited", zap.Error(serveErr))
			}
		}()
	})

	return err
}

// Stop gracefully shuts down the executor, waiting at most the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		s.logger.Info("stopping server")
		err = s.executor.Shutdown(ctx)
	})

	return err
}

// Done is closed once the server has stopped serving
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended serving, if it was anything other than a shutdown.
// It is only meaningful after Done is closed.
func (s *Server) Err() error {
	return s.err
}
