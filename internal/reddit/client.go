// Package reddit is a small OAuth API client covering the three calls the
// resampler makes: the /new listing of a feed-group, bulk /api/info lookups
// and author karma.
package reddit

//go:generate mockgen -package mocks -destination mocks/mock_lookup.go github.com/ethpandaops/resampler/internal/reddit Lookup,Authors,Stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when the remote has no such thing.
var ErrNotFound = errors.New("not found")

// Compile-time interface compliance check.
var (
	_ Authors = (*Client)(nil)
	_ Lookup  = (*Client)(nil)
)

// Client talks to the OAuth API as a script application.
type Client struct {
	log        logrus.FieldLogger
	cfg        Config
	httpClient *http.Client
}

// New creates a client. Tokens are fetched lazily with the password grant and
// re-fetched when they expire.
func New(log logrus.FieldLogger, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: &userAgentTransport{agent: cfg.UserAgent, next: http.DefaultTransport},
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	// The token endpoint needs the user agent too.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	source := oauth2.ReuseTokenSource(nil, &passwordSource{
		ctx:      tokenCtx,
		cfg:      oauthCfg,
		username: cfg.Username,
		password: cfg.Password,
	})

	httpClient := oauth2.NewClient(tokenCtx, source)
	httpClient.Timeout = cfg.RequestTimeout

	return &Client{
		log:        log.WithField("component", "reddit"),
		cfg:        cfg,
		httpClient: httpClient,
	}, nil
}

// Info looks up to MaxInfoBatch fullnames in one request.
func (c *Client) Info(ctx context.Context, refs []string) ([]*Submission, error) {
	if len(refs) == 0 {
		return []*Submission{}, nil
	}

	if len(refs) > MaxInfoBatch {
		return nil, fmt.Errorf("info batch of %d exceeds limit of %d", len(refs), MaxInfoBatch)
	}

	c.log.WithField("fullnames", refs).Debug("Looking up submissions")

	query := url.Values{}
	query.Set("id", strings.Join(refs, ","))
	query.Set("raw_json", "1")

	var resp listing
	if err := c.get(ctx, "/api/info", query, &resp); err != nil {
		return nil, fmt.Errorf("info lookup: %w", err)
	}

	byName := make(map[string]*Submission, len(resp.Data.Children))

	for i := range resp.Data.Children {
		sub := &resp.Data.Children[i].Data
		byName[sub.Fullname()] = sub
	}

	out := make([]*Submission, len(refs))
	for i, ref := range refs {
		out[i] = byName[ref]
	}

	return out, nil
}

// Karma returns the author's reputation. Suspended and unknown accounts yield
// ErrNotFound.
func (c *Client) Karma(ctx context.Context, name string) (*Karma, error) {
	query := url.Values{}
	query.Set("raw_json", "1")

	var resp thing[account]
	if err := c.get(ctx, "/user/"+url.PathEscape(name)+"/about", query, &resp); err != nil {
		return nil, fmt.Errorf("author %s: %w", name, err)
	}

	if resp.Data.IsSuspended || resp.Data.CommentKarma == nil || resp.Data.LinkKarma == nil {
		return nil, fmt.Errorf("author %s: %w", name, ErrNotFound)
	}

	return &Karma{
		CommentKarma: *resp.Data.CommentKarma,
		LinkKarma:    *resp.Data.LinkKarma,
	}, nil
}

// newest returns the newest submissions of the feed-group, newest first.
func (c *Client) newest(ctx context.Context, group string, limit int) ([]Submission, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("raw_json", "1")

	var resp listing
	if err := c.get(ctx, "/r/"+group+"/new", query, &resp); err != nil {
		return nil, fmt.Errorf("new listing of %s: %w", group, err)
	}

	subs := make([]Submission, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		subs = append(subs, child.Data)
	}

	return subs, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	return nil
}

// passwordSource runs the password grant for every new token, since the grant
// issues no refresh token.
type passwordSource struct {
	ctx      context.Context //nolint:containedctx // oauth2 token sources take no context.
	cfg      *oauth2.Config
	username string
	password string
	mu       sync.Mutex
}

func (p *passwordSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.cfg.PasswordCredentialsToken(p.ctx, p.username, p.password)
	if err != nil {
		return nil, fmt.Errorf("password grant: %w", err)
	}

	return tok, nil
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)

	return t.next.RoundTrip(req)
}
