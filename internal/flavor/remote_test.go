package flavor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packYAML = `
default: "Hm."
lines:
  discussion.idle:
    - "Quiet today."
`

func packServer(t *testing.T, robots string, robotsStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var robotsHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			robotsHits.Add(1)
			w.WriteHeader(robotsStatus)
			_, _ = w.Write([]byte(robots))
		case "/packs/village.yaml", "/private/pack.yaml":
			assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(packYAML))
		case "/packs/huge.yaml":
			_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &robotsHits
}

func TestOpen_Remote(t *testing.T) {
	srv, _ := packServer(t, "", http.StatusNotFound)

	lib, err := Open(context.Background(), srv.URL+"/packs/village.yaml", NewFetcher(FetchOptions{}))
	require.NoError(t, err)
	assert.Equal(t, "Hm.", lib.Default)
	assert.Equal(t, []string{"discussion.idle"}, lib.Keys())
}

func TestOpen_LocalFallsBackToLoad(t *testing.T) {
	lib, err := Open(context.Background(), "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, lib.Keys())
}

func TestFetcher_RobotsDisallow(t *testing.T) {
	srv, hits := packServer(t, "User-agent: *\nDisallow: /private/\n", http.StatusOK)
	f := NewFetcher(FetchOptions{})

	_, err := f.Fetch(context.Background(), srv.URL+"/private/pack.yaml")
	assert.ErrorIs(t, err, ErrDisallowed)

	_, err = f.Fetch(context.Background(), srv.URL+"/packs/village.yaml")
	assert.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "robots.txt is cached per host")
}

func TestFetcher_RobotsServerErrorForbids(t *testing.T) {
	srv, _ := packServer(t, "", http.StatusInternalServerError)

	_, err := NewFetcher(FetchOptions{}).Fetch(context.Background(), srv.URL+"/packs/village.yaml")
	assert.ErrorIs(t, err, ErrDisallowed)
}

func TestFetcher_Errors(t *testing.T) {
	srv, _ := packServer(t, "", http.StatusNotFound)
	f := NewFetcher(FetchOptions{MaxBytes: 1024})

	_, err := f.Fetch(context.Background(), srv.URL+"/packs/missing.yaml")
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = f.Fetch(context.Background(), srv.URL+"/packs/huge.yaml")
	assert.ErrorContains(t, err, "larger than 1024 bytes")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/pack.yaml"))
	assert.True(t, IsRemote("http://example.com/pack.yaml"))
	assert.False(t, IsRemote("/home/me/pack.yaml"))
	assert.False(t, IsRemote(""))
}

func TestProxyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/pack.yaml", nil)

	u, err := proxyFunc("http://plain:8080", "http://secure:8443")(req)
	require.NoError(t, err)
	assert.Equal(t, "secure:8443", u.Host)

	u, err = proxyFunc("http://plain:8080", "")(req)
	require.NoError(t, err)
	assert.Equal(t, "plain:8080", u.Host)
}
