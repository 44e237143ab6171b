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

// Package config holds the process-wide settings read once at startup.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Environment variables read by Load.
const (
	EnvGitHubUser     = "GITHUB_USER"
	EnvGitHubPassword = "GITHUB_PASS"
	EnvGitHubSecret   = "GITHUB_SECRET"
)

// ErrMissingEnv is returned when a required environment variable is unset or empty.
var ErrMissingEnv = errors.New("missing required environment variable")

// LookupFunc retrieves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config carries the GitHub account used for API calls and the secret
// shared with GitHub for signing webhook deliveries. It is immutable once
// built.
type Config struct {
	user     string
	password string
	secret   []byte
}

// New builds a Config from explicit values.
func New(user, password string, secret []byte) (Config, error) {
	var missing []string
	if user == "" {
		missing = append(missing, EnvGitHubUser)
	}
	if password == "" {
		missing = append(missing, EnvGitHubPassword)
	}
	if len(secret) == 0 {
		missing = append(missing, EnvGitHubSecret)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return Config{
		user:     user,
		password: password,
		secret:   append([]byte(nil), secret...),
	}, nil
}

// Load reads the configuration through lookup. Every missing variable is
// named in the returned error.
func Load(lookup LookupFunc) (Config, error) {
	user, _ := lookup(EnvGitHubUser)
	password, _ := lookup(EnvGitHubPassword)
	secret, _ := lookup(EnvGitHubSecret)
	return New(user, password, []byte(secret))
}

// GitHubUser returns the account used for basic auth against the GitHub API.
func (c Config) GitHubUser() string { return c.user }

// GitHubPassword returns the password or token paired with GitHubUser.
func (c Config) GitHubPassword() string { return c.password }

// Secret returns a copy of the webhook signing secret.
func (c Config) Secret() []byte {
	return append([]byte(nil), c.secret...)
}
