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

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/prlabel/internal/github"
	"github.com/mikelane/prlabel/internal/workflow"
)

// StatusHandler labels the open pull requests of a commit when its status changes
type StatusHandler struct {
	sessions           github.SessionOpener
	ignoreContextGlobs []string
}

// NewStatusHandler creates a handler for status events. Status contexts
// matching one of ignoreContextGlobs do not count towards the commit status;
// a nil slice selects workflow.DefaultIgnoreContextGlobs.
func NewStatusHandler(sessions github.SessionOpener, ignoreContextGlobs []string) *StatusHandler {
	if ignoreContextGlobs == nil {
		ignoreContextGlobs = workflow.DefaultIgnoreContextGlobs
	}
	return &StatusHandler{
		sessions:           sessions,
		ignoreContextGlobs: append([]string(nil), ignoreContextGlobs...),
	}
}

// Handle handles a status delivery.
//
// Pull requests are relabeled one after the other; the first failure stops
// the loop and leaves the already relabeled pull requests as they are.
func (h *StatusHandler) Handle(ctx context.Context, event *Event) (string, error) {
	logger := log.FromContext(ctx)

	if event.Type != EventStatus {
		return ignoreEvent(ctx, event.Type), nil
	}

	var payload StatusEvent
	if err := decodePayload(event.Payload, &payload); err != nil {
		return "", err
	}
	if err := payload.validate(); err != nil {
		return "", err
	}
	owner := payload.Repository.Owner.Login
	repo := payload.Repository.Name
	sha := payload.SHA

	session := h.sessions.Open()
	defer session.Close()

	eligible, err := checkEligibility(ctx, session, owner, repo)
	if err != nil {
		return "", err
	}
	if !eligible {
		return done, nil
	}

	state, err := session.CommitStatus(ctx, owner, repo, sha, h.ignoreContextGlobs)
	if err != nil {
		return "", err
	}

	label, ok := workflow.LabelForStatus(string(state))
	if !ok {
		logger.Info("Unknown status", "status", state, "sha", sha,
			"state", payload.State, "context", payload.Context)
		return done, nil
	}

	numbers, err := session.OpenPullRequestsBySHA(ctx, owner, repo, sha)
	if err != nil {
		return "", err
	}
	logger.V(1).Info("Found open pull requests", "sha", sha, "count", len(numbers))

	for _, number := range numbers {
		if err := applyLabel(ctx, session, owner, repo, number, label); err != nil {
			return "", err
		}
	}
	return done, nil
}
