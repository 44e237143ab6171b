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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// maxPayloadSize is the largest delivery GitHub sends
const maxPayloadSize = 25 << 20

var (
	// ErrInvalidSignature is returned when the signature header is missing or does not match the body
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMissingEvent is returned when the request carries no event type header
	ErrMissingEvent = errors.New("missing webhook event type")
)

// Event is a webhook delivery that passed the gate
type Event struct {
	// Type is the value of the X-GitHub-Event header, e.g. "pull_request"
	Type string
	// DeliveryID is the value of the X-GitHub-Delivery header, if any
	DeliveryID string
	// Payload is the raw request body, exactly as signed
	Payload []byte
}

// Gate authenticates webhook deliveries against the shared secret
type Gate struct {
	secret []byte
}

// NewGate creates a gate checking signatures with secret
func NewGate(secret []byte) *Gate {
	return &Gate{secret: append([]byte(nil), secret...)}
}

// Verify reads the request body, checks its signature and requires an
// event type header. Failures wrap ErrInvalidSignature or ErrMissingEvent,
// except for body read errors which are returned as is.
func (g *Gate) Verify(r *http.Request) (*Event, error) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	if err := ValidateSignature(payload, signatureHeader(r.Header), g.secret); err != nil {
		return nil, err
	}

	eventType := strings.TrimSpace(gh.WebHookType(r))
	if eventType == "" {
		return nil, ErrMissingEvent
	}

	return &Event{
		Type:       eventType,
		DeliveryID: gh.DeliveryID(r),
		Payload:    payload,
	}, nil
}

// ValidateSignature verifies the HMAC signature of a GitHub webhook payload.
//
// The signature is in the format "<algorithm>=<hex-encoded-hmac>" where the
// algorithm is sha256 or, for older hooks, sha1. An empty signature or secret
// never validates. The comparison runs in constant time.
func ValidateSignature(payload []byte, signature string, secret []byte) error {
	if signature == "" {
		return fmt.Errorf("%w: no signature header", ErrInvalidSignature)
	}
	if len(secret) == 0 {
		return fmt.Errorf("%w: no secret configured", ErrInvalidSignature)
	}

	if err := gh.ValidateSignature(signature, payload, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// signatureHeader prefers X-Hub-Signature-256 over the legacy sha1 header
func signatureHeader(h http.Header) string {
	if sig := h.Get(gh.SHA256SignatureHeader); sig != "" {
		return sig
	}
	return h.Get(gh.SHA1SignatureHeader)
}
