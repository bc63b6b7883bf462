package flavor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// ErrDisallowed is returned when a host's robots.txt forbids fetching a pack
var ErrDisallowed = errors.New("disallowed by robots.txt")

// UserAgent identifies pack downloads to remote hosts
const UserAgent = "Nightfall/0.1"

const defaultMaxBytes = 1 << 20

// FetchOptions configure a Fetcher
type FetchOptions struct {
	Timeout    time.Duration
	MaxBytes   int64
	HTTPProxy  string // Empty falls back to HTTP_PROXY
	HTTPSProxy string // Empty falls back to HTTPS_PROXY
}

// Fetcher downloads flavor packs over HTTP. It honours robots.txt on the
// pack's host and caps the body size.
type Fetcher struct {
	client   *http.Client
	maxBytes int64

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

// NewFetcher creates a pack fetcher
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &http.Transport{Proxy: proxyFunc(opts.HTTPProxy, opts.HTTPSProxy)},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxBytes: opts.MaxBytes,
		robots:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsRemote reports whether location names an http(s) pack
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open loads a library from a URL through f, or from a local path
func Open(ctx context.Context, location string, f *Fetcher) (*Library, error) {
	if !IsRemote(location) {
		return Load(location)
	}
	if f == nil {
		f = NewFetcher(FetchOptions{})
	}
	data, err := f.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Fetch downloads rawURL after checking the host's robots.txt
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse pack URL: %w", err)
	}
	if !f.allowed(ctx, u) {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrDisallowed)
	}

	body, status, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch pack: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("fetch pack: unexpected status %d", status)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("fetch pack: larger than %d bytes", f.maxBytes)
	}
	return body, nil
}

// allowed consults robots.txt, cached per host. An unreachable robots.txt
// allows the fetch; a 5xx answer forbids it.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) bool {
	f.mu.Lock()
	data, ok := f.robots[u.Host]
	f.mu.Unlock()

	if !ok {
		body, status, err := f.get(ctx, u.Scheme+"://"+u.Host+"/robots.txt")
		if err != nil {
			return true
		}
		data, err = robotstxt.FromStatusAndBytes(status, body)
		if err != nil {
			return true
		}
		f.mu.Lock()
		f.robots[u.Host] = data
		f.mu.Unlock()
	}
	return data.TestAgent(u.Path, UserAgent)
}

// get reads at most maxBytes+1 so oversized bodies are detectable
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// proxyFunc prefers explicit proxies and falls back to the environment
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
