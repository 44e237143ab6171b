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

// done is the response body of every delivery that was handled, including
// the ones that turned out to need no label change
const done = "Done"

// Handler reacts to a webhook delivery that passed the gate. It returns the
// plain text body of a successful response; any error fails the delivery.
type Handler interface {
	Handle(ctx context.Context, event *Event) (string, error)
}

func ignoreEvent(ctx context.Context, eventType string) string {
	logger := log.FromContext(ctx)
	logger.Info("Ignoring event", "event", eventType)
	return fmt.Sprintf("ignoring %s event", eventType)
}

// checkEligibility reports whether the repository takes part in the label workflow
func checkEligibility(ctx context.Context, client github.Client, owner, repo string) (bool, error) {
	logger := log.FromContext(ctx)

	topics, err := client.RepoTopics(ctx, owner, repo)
	if err != nil {
		return false, err
	}

	if !workflow.Eligible(topics) {
		logger.Info("Ignoring repository because of its integration level", "owner", owner, "repo", repo)
		return false, nil
	}
	return true, nil
}

// applyLabel moves one pull request to label
func applyLabel(ctx context.Context, client github.Client, owner, repo string, number int, label workflow.Label) error {
	logger := log.FromContext(ctx)

	if err := client.ReplaceLabels(ctx, owner, repo, number, workflow.StatusLabelGlob, string(label), true); err != nil {
		return err
	}

	logger.Info("Replaced status label", "owner", owner, "repo", repo, "number", number, "label", label)
	return nil
}
