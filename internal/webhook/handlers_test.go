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
	"errors"
	"strings"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/prlabel/internal/github"
	"github.com/mikelane/prlabel/internal/workflow"
)

var errUpstream = errors.New("upstream unavailable")

var _ = Describe("PullRequestHandler", func() {
	var (
		ctx     context.Context
		session *fakeSession
		opener  *fakeOpener
		handler *PullRequestHandler
	)

	BeforeEach(func() {
		ctx = context.Background()
		session = &fakeSession{topics: []string{"go", "integration-level-3"}}
		opener = &fakeOpener{session: session}
		handler = NewPullRequestHandler(opener)
	})

	DescribeTable("moves the pull request to the label of its action",
		func(action string, want workflow.Label) {
			body, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: pullRequestPayload(action, 42)})

			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(Equal("Done"))
			Expect(session.replaced).To(Equal([]replaceCall{{
				Owner:           testOwner,
				Repo:            testRepo,
				Number:          42,
				Glob:            "Status:*",
				Label:           string(want),
				CaseInsensitive: true,
			}}))
			Expect(session.closed).To(Equal(1))
		},
		Entry("opened", "opened", workflow.LabelPending),
		Entry("closed", "closed", workflow.LabelClosed),
		Entry("reopened", "reopened", workflow.LabelReviewNeeded),
	)

	DescribeTable("ignores actions outside the workflow without calling GitHub",
		func(action string) {
			body, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: pullRequestPayload(action, 42)})

			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(Equal("ignoring " + action + " action"))
			Expect(opener.opened).To(BeZero())
			Expect(session.topicCalls).To(BeZero())
			Expect(session.replaced).To(BeEmpty())
		},
		Entry("synchronize", "synchronize"),
		Entry("labeled", "labeled"),
		Entry("edited", "edited"),
	)

	It("ignores other event types before looking at the payload", func() {
		body, err := handler.Handle(ctx, &Event{Type: "status", Payload: []byte("not json")})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("ignoring status event"))
		Expect(opener.opened).To(BeZero())
	})

	It("leaves ineligible repositories alone", func() {
		session.topics = []string{"integration-level-1", "python"}

		body, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: pullRequestPayload("opened", 42)})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("Done"))
		Expect(session.topicCalls).To(Equal(1))
		Expect(session.replaced).To(BeEmpty())
		Expect(session.closed).To(Equal(1))
	})

	DescribeTable("rejects malformed payloads",
		func(payload string) {
			_, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: []byte(payload)})

			Expect(err).To(MatchError(ErrMalformedPayload))
			Expect(session.replaced).To(BeEmpty())
		},
		Entry("not JSON", `{invalid json}`),
		Entry("no action", `{"pull_request":{"number":1},"repository":{"name":"r","owner":{"login":"o"}}}`),
		Entry("no repository", `{"action":"opened","pull_request":{"number":1}}`),
		Entry("no owner", `{"action":"opened","pull_request":{"number":1},"repository":{"name":"r"}}`),
		Entry("no pull request number", `{"action":"opened","pull_request":{},"repository":{"name":"r","owner":{"login":"o"}}}`),
	)

	It("fails when the topics cannot be fetched", func() {
		session.topicsErr = errUpstream

		_, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: pullRequestPayload("opened", 42)})

		Expect(err).To(MatchError(errUpstream))
		Expect(session.replaced).To(BeEmpty())
		Expect(session.closed).To(Equal(1))
	})

	It("fails when the labels cannot be replaced", func() {
		session.replaceErrs = map[int]error{42: errUpstream}

		_, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: pullRequestPayload("closed", 42)})

		Expect(err).To(MatchError(errUpstream))
		Expect(session.closed).To(Equal(1))
	})
})

var _ = Describe("StatusHandler", func() {
	var (
		ctx     context.Context
		session *fakeSession
		opener  *fakeOpener
		handler *StatusHandler
	)

	BeforeEach(func() {
		ctx = context.Background()
		session = &fakeSession{
			topics: []string{"integration-level-2"},
			status: github.StatusStateSuccess,
			prs:    []int{5, 7},
		}
		opener = &fakeOpener{session: session}
		handler = NewStatusHandler(opener, nil)
	})

	It("labels every open pull request of the commit", func() {
		body, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("Done"))
		Expect(session.replacedNumbers()).To(Equal([]int{5, 7}))
		for _, call := range session.replaced {
			Expect(call.Label).To(Equal("Status: Review Needed"))
			Expect(call.Glob).To(Equal("Status:*"))
			Expect(call.CaseInsensitive).To(BeTrue())
		}
		Expect(session.closed).To(Equal(1))
	})

	DescribeTable("maps the aggregate status to a label",
		func(state github.StatusState, want workflow.Label) {
			session.status = state
			session.prs = []int{1, 2, 3}

			_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("pending")})

			Expect(err).NotTo(HaveOccurred())
			Expect(session.replaced).To(HaveLen(3))
			for _, call := range session.replaced {
				Expect(call.Label).To(Equal(string(want)))
			}
		},
		Entry("pending", github.StatusStatePending, workflow.LabelPending),
		Entry("failure", github.StatusStateFailure, workflow.LabelRevisionNeeded),
		Entry("error", github.StatusStateError, workflow.LabelRevisionNeeded),
		Entry("success", github.StatusStateSuccess, workflow.LabelReviewNeeded),
	)

	It("uses the aggregate status rather than the state in the payload", func() {
		session.status = github.StatusStateFailure

		_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(session.replaced).NotTo(BeEmpty())
		Expect(session.replaced[0].Label).To(Equal("Status: Revision Needed"))
	})

	It("ignores mergify contexts by default", func() {
		_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(session.ignoreGlobs).To(Equal([]string{"mergify*"}))
	})

	It("passes configured ignore globs through", func() {
		handler = NewStatusHandler(opener, []string{"ci/flaky*", "mergify*"})

		_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(session.ignoreGlobs).To(Equal([]string{"ci/flaky*", "mergify*"}))
	})

	It("does nothing for an unknown status", func() {
		session.status = "neutral"

		body, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("Done"))
		Expect(session.prCalls).To(BeZero())
		Expect(session.replaced).To(BeEmpty())
	})

	It("logs the delivered state and context of an unknown status", func() {
		var lines []string
		ctx = log.IntoContext(ctx, funcr.New(func(prefix, args string) {
			lines = append(lines, args)
		}, funcr.Options{}))
		session.status = "neutral"

		_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		logged := strings.Join(lines, "\n")
		Expect(logged).To(ContainSubstring(`"msg"="Unknown status"`))
		Expect(logged).To(ContainSubstring(`"status"="neutral"`))
		Expect(logged).To(ContainSubstring(`"state"="success"`))
		Expect(logged).To(ContainSubstring(`"context"="ci/test"`))
	})

	It("does nothing when no pull request has the commit as head", func() {
		session.prs = nil

		body, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("Done"))
		Expect(session.replaced).To(BeEmpty())
	})

	It("leaves ineligible repositories alone", func() {
		session.topics = nil

		body, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("Done"))
		Expect(session.statusCalls).To(BeZero())
		Expect(session.replaced).To(BeEmpty())
	})

	It("ignores other event types without calling GitHub", func() {
		body, err := handler.Handle(ctx, &Event{Type: EventPullRequest, Payload: pullRequestPayload("opened", 1)})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(Equal("ignoring pull_request event"))
		Expect(opener.opened).To(BeZero())
	})

	It("stops at the first failing pull request", func() {
		session.prs = []int{5, 7, 9}
		session.replaceErrs = map[int]error{7: errUpstream}

		_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

		Expect(err).To(MatchError(errUpstream))
		Expect(session.replacedNumbers()).To(Equal([]int{5, 7}))
		Expect(session.closed).To(Equal(1))
	})

	DescribeTable("fails on upstream errors",
		func(setup func(*fakeSession)) {
			setup(session)

			_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: statusPayload("success")})

			Expect(err).To(MatchError(errUpstream))
			Expect(session.replaced).To(BeEmpty())
			Expect(session.closed).To(Equal(1))
		},
		Entry("topics", func(s *fakeSession) { s.topicsErr = errUpstream }),
		Entry("status", func(s *fakeSession) { s.statusErr = errUpstream }),
		Entry("pull requests", func(s *fakeSession) { s.prsErr = errUpstream }),
	)

	DescribeTable("rejects malformed payloads",
		func(payload string) {
			_, err := handler.Handle(ctx, &Event{Type: EventStatus, Payload: []byte(payload)})

			Expect(err).To(MatchError(ErrMalformedPayload))
			Expect(opener.opened).To(BeZero())
		},
		Entry("not JSON", `[`),
		Entry("no sha", `{"repository":{"name":"r","owner":{"login":"o"}}}`),
		Entry("no repository name", `{"sha":"abc","repository":{"owner":{"login":"o"}}}`),
	)
})
