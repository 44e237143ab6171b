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
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/prlabel/internal/github"
	"github.com/mikelane/prlabel/internal/workflow"
)

// PullRequestHandler labels pull requests when they are opened, closed or reopened
type PullRequestHandler struct {
	sessions github.SessionOpener
}

// NewPullRequestHandler creates a handler for pull_request events
func NewPullRequestHandler(sessions github.SessionOpener) *PullRequestHandler {
	return &PullRequestHandler{sessions: sessions}
}

// Handle handles a pull_request delivery
func (h *PullRequestHandler) Handle(ctx context.Context, event *Event) (string, error) {
	logger := log.FromContext(ctx)

	if event.Type != EventPullRequest {
		return ignoreEvent(ctx, event.Type), nil
	}

	var payload PullRequestEvent
	if err := decodePayload(event.Payload, &payload); err != nil {
		return "", err
	}
	if payload.Action == nil {
		return "", missingField("action")
	}

	action := *payload.Action
	label, ok := workflow.LabelForAction(action)
	if !ok {
		logger.Info("Ignoring action", "action", action)
		return fmt.Sprintf("ignoring %s action", action), nil
	}

	if err := payload.validate(); err != nil {
		return "", err
	}
	owner := payload.Repository.Owner.Login
	repo := payload.Repository.Name
	number := *payload.PullRequest.Number

	session := h.sessions.Open()
	defer session.Close()

	eligible, err := checkEligibility(ctx, session, owner, repo)
	if err != nil {
		return "", err
	}
	if !eligible {
		return done, nil
	}

	if err := applyLabel(ctx, session, owner, repo, number, label); err != nil {
		return "", err
	}
	return done, nil
}
