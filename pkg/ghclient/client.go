// Package ghclient lists a GitHub account's repositories through go-github.
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// PerPage is the number of repositories requested in a single call.
const PerPage = 100

// Client wraps a go-github client for one account.
type Client struct {
	gh       *github.Client
	username string
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a different API root (GitHub Enterprise or tests).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client. With a token set, the
// oauth2 transport is layered over this client's transport and its timeout is kept.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New creates a client for username. An empty token means unauthenticated
// requests (lower rate limit).
func New(username, token string, opts ...Option) (*Client, error) {
	o := &options{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	gh := github.NewClient(httpClient)
	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		gh.BaseURL = base
	}
	return &Client{gh: gh, username: username}, nil
}

// Username returns the account whose repositories are listed.
func (c *Client) Username() string {
	return c.username
}

// ListRepositories returns up to PerPage repositories owned by the account,
// most recently updated first.
func (c *Client) ListRepositories(ctx context.Context) ([]*github.Repository, error) {
	repos, _, err := c.gh.Repositories.ListByUser(ctx, c.username, &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: PerPage},
	})
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// Ping checks that the API is reachable. The rate limit endpoint does not
// count against the quota.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.gh.RateLimit.Get(ctx)
	return err
}
