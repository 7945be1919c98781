package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/query"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// Static is a scope over a document parsed once. The tree stays externally
// mutable: anything holding node handles may change it between resolutions,
// and Root always returns the current root of that same tree.
type Static struct {
	root *html.Node
}

// Parse builds a Static scope from raw HTML.
func Parse(r io.Reader) (*Static, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Static{root: root}, nil
}

// ParseBytes builds a Static scope from an HTML byte slice.
func ParseBytes(b []byte) (*Static, error) {
	return Parse(bytes.NewReader(b))
}

// Root returns the document root.
func (s *Static) Root(ctx context.Context) (*query.Node, error) {
	return query.NewNode(s.root), nil
}

// SourceFunc adapts a function to the Scope interface. The function is
// invoked on every resolution, so it can hand out a different tree each
// time.
type SourceFunc func(ctx context.Context) (*query.Node, error)

// Root calls the function.
func (f SourceFunc) Root(ctx context.Context) (*query.Node, error) {
	return f(ctx)
}

const (
	// DefaultFetchTimeout bounds a single document fetch.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultFetchRate paces refetching while an assertion polls.
	DefaultFetchRate = rate.Limit(4) // fetches per second
)

// Live is a scope over a page fetched by URL. Every resolution refetches
// and reparses the page so assertions always see its current state; the
// rate limiter keeps polling from hammering the server.
type Live struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// LiveOption configures a Live scope.
type LiveOption func(*Live)

// WithClient substitutes the HTTP client used for fetching.
func WithClient(c *http.Client) LiveOption {
	return func(l *Live) {
		l.client = c
	}
}

// WithFetchRate sets the maximum refetch rate.
func WithFetchRate(r rate.Limit) LiveOption {
	return func(l *Live) {
		l.limiter = rate.NewLimiter(r, 1)
	}
}

// WithFetchTimeout bounds a single fetch, replacing DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) LiveOption {
	return func(l *Live) {
		l.client.Timeout = d
	}
}

// NewLive returns a scope that refetches url on every resolution.
func NewLive(url string, opts ...LiveOption) *Live {
	l := &Live{
		url:     url,
		client:  &http.Client{Timeout: DefaultFetchTimeout},
		limiter: rate.NewLimiter(DefaultFetchRate, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// URL returns the page address.
func (l *Live) URL() string {
	return l.url
}

// Root fetches and parses the page's current state.
func (l *Live) Root(ctx context.Context) (*query.Node, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", l.url, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", l.url, resp.StatusCode)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.url, err)
	}
	return query.NewNode(root), nil
}
