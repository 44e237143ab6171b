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
	"encoding/json"
	"errors"
	"fmt"
)

// Event types handled by the services
const (
	EventPullRequest = "pull_request"
	EventStatus      = "status"
)

// ErrMalformedPayload is returned when a payload is not JSON or lacks a field the handlers need
var ErrMalformedPayload = errors.New("malformed webhook payload")

// PullRequestEvent represents a GitHub pull_request webhook event
type PullRequestEvent struct {
	PullRequest *PullRequest `json:"pull_request"`
	Repository  *Repository  `json:"repository"`
	Action      *string      `json:"action"`
}

// PullRequest contains PR metadata
type PullRequest struct {
	Number *int `json:"number"`
}

// StatusEvent represents a GitHub status webhook event
type StatusEvent struct {
	Repository *Repository `json:"repository"`
	SHA        string      `json:"sha"`
	State      string      `json:"state"`
	Context    string      `json:"context"`
}

// Repository contains repository metadata
type Repository struct {
	Owner *Owner `json:"owner"`
	Name  string `json:"name"`
}

// Owner represents the repository owner
type Owner struct {
	Login string `json:"login"`
}

func decodePayload(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedPayload, name)
}

func (r *Repository) validate() error {
	switch {
	case r == nil:
		return missingField("repository")
	case r.Name == "":
		return missingField("repository.name")
	case r.Owner == nil || r.Owner.Login == "":
		return missingField("repository.owner.login")
	}
	return nil
}

func (e *PullRequestEvent) validate() error {
	if err := e.Repository.validate(); err != nil {
		return err
	}
	if e.PullRequest == nil || e.PullRequest.Number == nil {
		return missingField("pull_request.number")
	}
	return nil
}

func (e *StatusEvent) validate() error {
	if err := e.Repository.validate(); err != nil {
		return err
	}
	if e.SHA == "" {
		return missingField("sha")
	}
	return nil
}
