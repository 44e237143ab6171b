// Copyright 2025 The Prlabel Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server handles GitHub webhook requests
type Server struct {
	addr    string
	port    int
	gate    *Gate
	handler Handler
	logger  logr.Logger
	server  *http.Server
}

// NewServer creates a new webhook server passing every authenticated
// delivery to handler
func NewServer(addr string, port int, gate *Gate, handler Handler) *Server {
	return &Server{
		addr:    addr,
		port:    port,
		gate:    gate,
		handler: handler,
		logger:  log.Log.WithName("webhook"),
	}
}

// Handler returns the HTTP handler serving deliveries. GET and POST on any
// path are accepted as is, without path cleaning or redirects; other methods
// get 405.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodPost:
			s.handleWebhook(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// Start starts the webhook server and blocks until ctx is done or the
// listener fails
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting webhook server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Shutting down webhook server")
	return s.server.Shutdown(ctx)
}

// handleWebhook runs a delivery through the gate and the handler
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	logger := s.logger.WithValues("method", r.Method, "path", r.URL.Path)

	event, err := s.gate.Verify(r)
	switch {
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrMissingEvent):
		logger.Info("Rejecting webhook", "reason", err.Error())
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case err != nil:
		logger.Error(err, "Failed to read request body")
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	logger = logger.WithValues("event", event.Type, "delivery", event.DeliveryID)
	// GitHub calls are bounded by their own timeout, not by the sender
	// hanging up.
	ctx := log.IntoContext(context.WithoutCancel(r.Context()), logger)

	body, err := s.handler.Handle(ctx, event)
	if err != nil {
		logger.Error(err, "Failed to handle webhook")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		logger.Error(err, "Failed to write response")
	}
}
