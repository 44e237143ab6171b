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

// Package github provides the GitHub API calls behind the label workflow.
//
// Key features:
//   - Fetch repository topics
//   - Aggregate the commit status of a SHA, ignoring selected status contexts
//   - Find the open pull requests whose head is a given SHA
//   - Replace every label matching a glob with a single new label
//
// Sessions:
//
// Each webhook delivery opens its own Session and closes it when done. A
// session owns its connection pool and authenticates with HTTP basic auth
// (a user and a password or personal access token):
//
//	opener, err := github.NewSessionOpener(github.Credentials{
//	    Username: "bot",
//	    Password: token,
//	})
//	if err != nil {
//	    return err
//	}
//	session := opener.Open()
//	defer session.Close()
//
//	topics, err := session.RepoTopics(ctx, "owner", "repo")
//
// Timeouts and retries:
//
// Every call is bounded by the session timeout (20 seconds by default).
// Failed calls are not retried; the error is returned to the caller, and the
// webhook sender is expected to redeliver.
//
// Pagination:
//
// Listing calls follow the Link header 100 items at a time until the last
// page.
package github
