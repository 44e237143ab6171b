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

// Package webhook provides the GitHub webhook receivers of prlabel.
//
// A delivery goes through two stages. The Gate authenticates it and turns it
// into an Event; a Handler then decides which status label, if any, the
// affected pull requests move to.
//
// Webhook Security:
//
// Every request must carry an X-Hub-Signature-256 (or legacy X-Hub-Signature)
// header holding the HMAC of the body under the shared secret, and an
// X-GitHub-Event header. Requests failing either check are rejected with
// HTTP 403 before any handler runs.
//
// Handlers:
//
//   - PullRequestHandler reacts to pull_request events: opened moves the pull
//     request to "Status: Pending", closed to "Status: Closed" and reopened to
//     "Status: Review Needed".
//   - StatusHandler reacts to status events: the aggregate status of the
//     commit (ignoring mergify contexts by default) is applied to every open
//     pull request whose head is that commit.
//
// Both handlers skip repositories without an integration-level-2 to -5 topic
// and answer deliveries of other event types with "ignoring <event> event".
//
// Responses:
//
// Handled deliveries get HTTP 200 with a short plain text body. Malformed
// payloads and GitHub API failures get HTTP 500 so that GitHub records the
// delivery as failed; nothing is retried here.
//
// Example usage:
//
//	server := webhook.NewServer(
//		"",
//		8080,
//		webhook.NewGate(secret),
//		webhook.NewStatusHandler(sessions, nil),
//	)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
