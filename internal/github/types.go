// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package github

import (
	"context"
)

// Client interface defines the GitHub operations the label workflow relies on
type Client interface {
	// RepoTopics returns the topics attached to a repository
	RepoTopics(ctx context.Context, owner, repo string) ([]string, error)
	// CommitStatus returns the aggregate status of a commit, ignoring every
	// status context that matches one of ignoreContextGlobs
	CommitStatus(ctx context.Context, owner, repo, sha string, ignoreContextGlobs []string) (StatusState, error)
	// OpenPullRequestsBySHA returns the numbers of the open pull requests whose head is sha
	OpenPullRequestsBySHA(ctx context.Context, owner, repo, sha string) ([]int, error)
	// ReplaceLabels removes every label matching labelGlob from a pull request
	// and adds newLabel, in a single write
	ReplaceLabels(ctx context.Context, owner, repo string, number int, labelGlob, newLabel string, caseInsensitive bool) error
}

// Session is a Client scoped to the handling of a single webhook delivery.
// Close must be called once the delivery has been handled.
type Session interface {
	Client
	Close()
}

// SessionOpener hands out authenticated sessions
type SessionOpener interface {
	Open() Session
}

// Credentials authenticate API calls with HTTP basic auth
type Credentials struct {
	Username string
	Password string
}

// StatusState represents the state of a commit status
type StatusState string

const (
	// StatusStatePending indicates that the status is pending
	StatusStatePending StatusState = "pending"
	// StatusStateSuccess indicates that the status succeeded
	StatusStateSuccess StatusState = "success"
	// StatusStateError indicates that the status errored
	StatusStateError StatusState = "error"
	// StatusStateFailure indicates that the status failed
	StatusStateFailure StatusState = "failure"
)
