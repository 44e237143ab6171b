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
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mikelane/prlabel/internal/glob"
)

// DefaultTimeout bounds every outbound API call
const DefaultTimeout = 20 * time.Second

const perPage = 100

// Option configures a SessionOpener
type Option func(*sessionOpener) error

// WithTimeout sets the per-call timeout of every session
func WithTimeout(timeout time.Duration) Option {
	return func(o *sessionOpener) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithBaseURL points sessions at another API endpoint, such as a GitHub
// Enterprise server. An empty URL keeps the public API.
func WithBaseURL(rawURL string) Option {
	return func(o *sessionOpener) error {
		if rawURL == "" {
			return nil
		}
		if !strings.HasSuffix(rawURL, "/") {
			rawURL += "/"
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL %q: %w", rawURL, err)
		}
		o.baseURL = u
		return nil
	}
}

type sessionOpener struct {
	credentials Credentials
	timeout     time.Duration
	baseURL     *url.URL
}

// NewSessionOpener creates a SessionOpener authenticating with the given credentials
func NewSessionOpener(credentials Credentials, opts ...Option) (SessionOpener, error) {
	o := &sessionOpener{
		credentials: credentials,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Open creates a session with its own connection pool
func (o *sessionOpener) Open() Session {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	auth := &github.BasicAuthTransport{
		Username:  o.credentials.Username,
		Password:  o.credentials.Password,
		Transport: transport,
	}
	httpClient := auth.Client()
	httpClient.Timeout = o.timeout

	client := github.NewClient(httpClient)
	if o.baseURL != nil {
		base := *o.baseURL
		client.BaseURL = &base
	}

	return &githubClient{
		client:    client,
		transport: transport,
	}
}

// githubClient implements the Session interface using go-github
type githubClient struct {
	client    *github.Client
	transport *http.Transport
}

// Close releases the idle connections held by the session
func (c *githubClient) Close() {
	c.transport.CloseIdleConnections()
}

// RepoTopics returns the topics attached to a repository
func (c *githubClient) RepoTopics(ctx context.Context, owner, repo string) ([]string, error) {
	topics, _, err := c.client.Repositories.ListAllTopics(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository topics: %w", err)
	}
	return topics, nil
}

// CommitStatus returns the aggregate status of a commit.
//
// Without ignore globs the combined state computed by GitHub is returned as
// is. Otherwise the statuses whose context matches a glob are dropped and
// the remaining ones are aggregated with aggregateStatus.
func (c *githubClient) CommitStatus(ctx context.Context, owner, repo, sha string, ignoreContextGlobs []string) (StatusState, error) {
	var statuses []*github.RepoStatus
	opts := &github.ListOptions{
		PerPage: perPage,
	}

	for {
		combined, resp, err := c.client.Repositories.GetCombinedStatus(ctx, owner, repo, sha, opts)
		if err != nil {
			return "", fmt.Errorf("failed to get combined status: %w", err)
		}

		if len(ignoreContextGlobs) == 0 {
			return StatusState(combined.GetState()), nil
		}

		statuses = append(statuses, combined.Statuses...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return aggregateStatus(statuses, ignoreContextGlobs), nil
}

// aggregateStatus folds individual statuses into one state the way GitHub
// does: a failure or error wins, and success needs every remaining context
// to have passed. Anything else, including no remaining context or a state
// GitHub did not document, reads as pending.
func aggregateStatus(statuses []*github.RepoStatus, ignoreContextGlobs []string) StatusState {
	states := sets.New[StatusState]()
	for _, status := range statuses {
		if status == nil || glob.MatchAny(ignoreContextGlobs, status.GetContext()) {
			continue
		}
		states.Insert(StatusState(status.GetState()))
	}

	switch {
	case states.Has(StatusStateFailure):
		return StatusStateFailure
	case states.Has(StatusStateError):
		return StatusStateError
	case states.Len() == 1 && states.Has(StatusStateSuccess):
		return StatusStateSuccess
	default:
		return StatusStatePending
	}
}

// OpenPullRequestsBySHA returns the numbers of the open pull requests whose head is sha
func (c *githubClient) OpenPullRequestsBySHA(ctx context.Context, owner, repo, sha string) ([]int, error) {
	numbers := []int{}
	opts := &github.PullRequestListOptions{
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	for {
		prs, resp, err := c.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list open pull requests: %w", err)
		}

		for _, pr := range prs {
			if pr.GetHead().GetSHA() == sha {
				numbers = append(numbers, pr.GetNumber())
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return numbers, nil
}

// ReplaceLabels removes every label matching labelGlob and adds newLabel.
// The new label set is written with a single request; nothing is written
// when the pull request already carries exactly that set.
func (c *githubClient) ReplaceLabels(ctx context.Context, owner, repo string, number int, labelGlob, newLabel string, caseInsensitive bool) error {
	current, err := c.issueLabels(ctx, owner, repo, number)
	if err != nil {
		return err
	}

	match := glob.Match
	if caseInsensitive {
		match = glob.MatchFold
	}

	kept := make([]string, 0, len(current)+1)
	for _, name := range current {
		if !match(labelGlob, name) && name != newLabel {
			kept = append(kept, name)
		}
	}
	kept = append(kept, newLabel)

	if sets.New(current...).Equal(sets.New(kept...)) {
		return nil
	}

	if _, _, err := c.client.Issues.ReplaceLabelsForIssue(ctx, owner, repo, number, kept); err != nil {
		return fmt.Errorf("failed to replace labels on #%d: %w", number, err)
	}
	return nil
}

// issueLabels lists the names of the labels on an issue or pull request
func (c *githubClient) issueLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	names := []string{}
	opts := &github.ListOptions{
		PerPage: perPage,
	}

	for {
		labels, resp, err := c.client.Issues.ListLabelsByIssue(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels on #%d: %w", number, err)
		}

		for _, label := range labels {
			if label != nil {
				names = append(names, label.GetName())
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}
