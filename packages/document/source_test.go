package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// hasClass reports whether any element under root carries the class.
func hasClass(root *html.Node, class string) bool {
	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "class" && a.Val == class {
					found = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func TestStatic(t *testing.T) {
	s, err := ParseBytes([]byte(`<div class="ok">hello</div>`))
	require.NoError(t, err)

	root, err := s.Root(context.Background())
	require.NoError(t, err)
	assert.Contains(t, root.Text(), "hello")
	assert.True(t, hasClass(root.Base(), "ok"))
}

func TestParse_Invalid(t *testing.T) {
	// html.Parse is extremely tolerant; even fragments parse. The error
	// path is exercised through a reader failure instead.
	_, err := Parse(failingReader{})
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}

func TestSourceFunc(t *testing.T) {
	calls := 0
	src := SourceFunc(func(ctx context.Context) (*query.Node, error) {
		calls++
		s, err := ParseBytes([]byte(`<p>fresh</p>`))
		if err != nil {
			return nil, err
		}
		return s.Root(ctx)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		root, err := src.Root(ctx)
		require.NoError(t, err)
		assert.Contains(t, root.Text(), "fresh")
	}
	assert.Equal(t, 3, calls, "the source function runs on every resolution")
}

func TestLive_RefetchesEveryResolution(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if n < 3 {
			_, _ = w.Write([]byte(`<div class="loading"></div>`))
			return
		}
		_, _ = w.Write([]byte(`<div class="ready"></div>`))
	}))
	defer server.Close()

	live := NewLive(server.URL, WithFetchRate(rate.Limit(1000)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		root, err := live.Root(ctx)
		require.NoError(t, err)
		assert.True(t, hasClass(root.Base(), "loading"), "fetch %d still loading", i+1)
	}

	root, err := live.Root(ctx)
	require.NoError(t, err)
	assert.True(t, hasClass(root.Base(), "ready"), "the third fetch sees the new document state")
	assert.EqualValues(t, 3, hits.Load())
}

func TestLive_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`<div class="ready"></div>`))
	}))
	defer server.Close()

	live := NewLive(server.URL,
		WithFetchTimeout(20*time.Millisecond),
		WithFetchRate(rate.Limit(1000)))
	_, err := live.Root(context.Background())
	assert.ErrorContains(t, err, "failed to fetch")
}

func TestLive_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	live := NewLive(server.URL, WithFetchRate(rate.Limit(1000)))
	_, err := live.Root(context.Background())
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestLive_ContextCancellation(t *testing.T) {
	live := NewLive("http://127.0.0.1:0/unreachable")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := live.Root(ctx)
	assert.Error(t, err)
}
