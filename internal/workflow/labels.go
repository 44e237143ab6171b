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

package workflow

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// Label is a pull request label belonging to the status workflow.
type Label string

const (
	// LabelClosed marks a pull request that has been closed
	LabelClosed Label = "Status: Closed"
	// LabelPending marks a pull request waiting for its checks
	LabelPending Label = "Status: Pending"
	// LabelReviewNeeded marks a pull request ready for a reviewer
	LabelReviewNeeded Label = "Status: Review Needed"
	// LabelRevisionNeeded marks a pull request whose checks failed
	LabelRevisionNeeded Label = "Status: Revision Needed"
)

// StatusLabelGlob matches every label of the workflow.
const StatusLabelGlob = "Status:*"

// DefaultIgnoreContextGlobs lists the status contexts excluded from the
// aggregate commit status unless configured otherwise.
var DefaultIgnoreContextGlobs = []string{"mergify*"}

// integrationLevels are the repository topics that opt a repository in.
var integrationLevels = sets.New(
	"integration-level-2",
	"integration-level-3",
	"integration-level-4",
	"integration-level-5",
)

var actionLabels = map[string]Label{
	"opened":   LabelPending,
	"closed":   LabelClosed,
	"reopened": LabelReviewNeeded,
}

var statusLabels = map[string]Label{
	"pending": LabelPending,
	"failure": LabelRevisionNeeded,
	"error":   LabelRevisionNeeded,
	"success": LabelReviewNeeded,
}

// LabelForAction returns the label a pull_request action moves the pull
// request to. The second result is false for actions outside the workflow.
func LabelForAction(action string) (Label, bool) {
	label, ok := actionLabels[action]
	return label, ok
}

// LabelForStatus returns the label an aggregate commit status moves the
// pull request to. The second result is false for unknown states.
func LabelForStatus(state string) (Label, bool) {
	label, ok := statusLabels[state]
	return label, ok
}

// Eligible reports whether a repository with the given topics takes part
// in the workflow.
func Eligible(topics []string) bool {
	return integrationLevels.HasAny(topics...)
}
