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

// Command prlabel runs the webhook receivers that keep the "Status: ..."
// labels of pull requests in sync with their lifecycle and commit status.
//
// Two services are available, each deployed behind its own GitHub webhook:
//
//	prlabel pull-request   # pull_request events: opened, closed, reopened
//	prlabel status         # status events
//
// Both read GITHUB_USER, GITHUB_PASS and GITHUB_SECRET from the environment.
package main

import (
	goflag "flag"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/mikelane/prlabel/internal/config"
	"github.com/mikelane/prlabel/internal/github"
	"github.com/mikelane/prlabel/internal/webhook"
	"github.com/mikelane/prlabel/internal/workflow"
)

type serveOptions struct {
	bindAddress    string
	port           int
	timeout        time.Duration
	apiURL         string
	ignoreContexts []string
}

func bindServeFlags(fs *pflag.FlagSet, opts *serveOptions) {
	fs.StringVar(&opts.bindAddress, "bind-address", "", "Address to listen on")
	fs.IntVar(&opts.port, "port", 8080, "Port to listen on")
	fs.DurationVar(&opts.timeout, "github-timeout", github.DefaultTimeout, "Timeout of each GitHub API call")
	fs.StringVar(&opts.apiURL, "github-api-url", "", "GitHub API base URL (defaults to https://api.github.com/)")
}

func main() {
	zapOpts := zap.Options{}
	zapOpts.BindFlags(goflag.CommandLine)

	rootCmd := &cobra.Command{
		Use:          "prlabel",
		Short:        "Label pull requests from GitHub webhooks",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))
		},
	}
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	opts := &serveOptions{}

	pullRequestCmd := &cobra.Command{
		Use:   "pull-request",
		Short: "Serve pull_request webhooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts, func(sessions github.SessionOpener) webhook.Handler {
				return webhook.NewPullRequestHandler(sessions)
			})
		},
	}
	bindServeFlags(pullRequestCmd.Flags(), opts)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Serve status webhooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts, func(sessions github.SessionOpener) webhook.Handler {
				return webhook.NewStatusHandler(sessions, opts.ignoreContexts)
			})
		},
	}
	bindServeFlags(statusCmd.Flags(), opts)
	statusCmd.Flags().StringSliceVar(&opts.ignoreContexts, "ignore-context", workflow.DefaultIgnoreContextGlobs,
		"Glob of status contexts left out of the commit status (repeatable)")

	rootCmd.AddCommand(pullRequestCmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serve loads the configuration and runs a webhook server until SIGINT or SIGTERM
func serve(opts *serveOptions, newHandler func(github.SessionOpener) webhook.Handler) error {
	setupLog := log.Log.WithName("setup")

	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		setupLog.Error(err, "Invalid configuration")
		return err
	}

	sessions, err := github.NewSessionOpener(
		github.Credentials{
			Username: cfg.GitHubUser(),
			Password: cfg.GitHubPassword(),
		},
		github.WithTimeout(opts.timeout),
		github.WithBaseURL(opts.apiURL),
	)
	if err != nil {
		setupLog.Error(err, "Invalid GitHub client settings")
		return err
	}

	server := webhook.NewServer(opts.bindAddress, opts.port, webhook.NewGate(cfg.Secret()), newHandler(sessions))
	return server.Start(signals.SetupSignalHandler())
}
