package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// errInvalidCrumb is returned when Yahoo rejects the session crumb (HTTP 401).
var errInvalidCrumb = errors.New("yahoo rejected session crumb")

// withCookieJar returns a shallow copy of c that keeps cookies, so the
// session cookie issued alongside the crumb is sent back on data requests.
func withCookieJar(c *http.Client) *http.Client {
	if c == nil {
		c = http.DefaultClient
	}
	out := *c
	if out.Jar == nil {
		// cookiejar.New only fails on a nil options list.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		out.Jar = jar
	}
	return &out
}

// crumbSource obtains and caches the crumb query parameter that quoteSummary
// requires. The cookie page sets the session cookie; the crumb endpoint then
// returns a token bound to it.
type crumbSource struct {
	client    *http.Client
	cookieURL string
	crumbURL  string

	mu    sync.Mutex
	crumb string
}

func newCrumbSource(client *http.Client, cookieURL, crumbURL string) *crumbSource {
	return &crumbSource{client: client, cookieURL: cookieURL, crumbURL: crumbURL}
}

// get returns the cached crumb, fetching it on first use or after invalidate.
func (s *crumbSource) get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.crumb != "" {
		return s.crumb, nil
	}
	crumb, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.crumb = crumb
	return crumb, nil
}

// invalidate drops crumb unless another caller already replaced it.
func (s *crumbSource) invalidate(crumb string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crumb == crumb {
		s.crumb = ""
	}
}

func (s *crumbSource) fetch(ctx context.Context) (string, error) {
	// The cookie page answers 404 but still sets the session cookie.
	if _, err := s.getBody(ctx, s.cookieURL); err != nil {
		return "", fmt.Errorf("fetching session cookie: %w", err)
	}

	resp, err := s.getBody(ctx, s.crumbURL)
	if err != nil {
		return "", fmt.Errorf("fetching crumb: %w", err)
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("fetching crumb: unexpected status %d", resp.status)
	}
	crumb := strings.TrimSpace(resp.body)
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", errors.New("fetching crumb: empty or malformed crumb")
	}
	return crumb, nil
}

type bodyResponse struct {
	status int
	body   string
}

func (s *crumbSource) getBody(ctx context.Context, u string) (bodyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return bodyResponse{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return bodyResponse{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return bodyResponse{}, fmt.Errorf("reading response: %w", err)
	}
	return bodyResponse{status: resp.StatusCode, body: string(b)}, nil
}
