// Package source resolves corpus locators (local paths and http(s) URLs) into text.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMaxBytes bounds how much a single source may contribute.
const DefaultMaxBytes = 8 << 20

var (
	errNotUTF8  = errors.New("content is not valid UTF-8")
	errTooLarge = errors.New("content exceeds size limit")
)

// Reader implements ports.CorpusSource.
// URL bodies are cached in-process so a long-running server does not refetch them.
type Reader struct {
	client   *http.Client
	cache    *ristretto.Cache[string, string]
	ttl      time.Duration
	maxBytes int64
}

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient replaces the client used for URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reader) { r.client = c }
}

// WithMaxBytes sets the per-source size limit.
func WithMaxBytes(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// WithCache enables URL caching for up to entries bodies, each kept for ttl.
func WithCache(entries int64, ttl time.Duration) Option {
	return func(r *Reader) {
		if entries <= 0 {
			return
		}
		c, err := ristretto.NewCache(&ristretto.Config[string, string]{
			NumCounters: entries * 10,
			MaxCost:     entries,
			BufferItems: 64,
			// Cost counts entries, not bytes.
			IgnoreInternalCost: true,
		})
		if err != nil {
			return
		}
		r.cache = c
		r.ttl = ttl
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the text behind locator. Every failure is a *domain.SourceUnavailableError.
func (r *Reader) Read(ctx context.Context, locator string) (string, error) {
	var (
		text string
		err  error
	)
	if isURL(locator) {
		text, err = r.fetch(ctx, locator)
	} else {
		text, err = r.readFile(locator)
	}
	if err != nil {
		return "", &domain.SourceUnavailableError{Locator: locator, Err: err}
	}
	return text, nil
}

// Close releases the cache.
func (r *Reader) Close() {
	if r.cache != nil {
		r.cache.Close()
	}
}

func isURL(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

func (r *Reader) readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return r.decode(f)
}

func (r *Reader) fetch(ctx context.Context, url string) (string, error) {
	if r.cache != nil {
		if text, ok := r.cache.Get(url); ok {
			return text, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %s", resp.Status)
	}

	text, err := r.decode(resp.Body)
	if err != nil {
		return "", err
	}
	if r.cache != nil {
		r.cache.SetWithTTL(url, text, 1, r.ttl)
		r.cache.Wait()
	}
	return text, nil
}

func (r *Reader) decode(body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, r.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > r.maxBytes {
		return "", errTooLarge
	}
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	return string(data), nil
}
