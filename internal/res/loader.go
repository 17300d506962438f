// Package res resolves evidence paths to stored bytes: object storage over
// HTTP, a local directory, or inline data: URLs.
package res

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gompdf/claimpacket/internal/cache"
	"github.com/gompdf/claimpacket/pkg/claim"
	"golang.org/x/time/rate"
)

// Options configures a Loader
type Options struct {
	// BaseURL is the object storage root, e.g. https://xyz.supabase.co
	BaseURL string
	// Bucket is the public bucket holding evidence uploads
	Bucket string
	// SearchPaths are local directories tried for relative paths when no BaseURL is set
	SearchPaths []string
	// AllowedHosts lists the hosts an absolute http(s) evidence path may
	// point at, as "host" or "host:port". The BaseURL host is always allowed.
	// Anything else is refused, including redirect targets.
	AllowedHosts []string
	// Timeout bounds a single HTTP attempt
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed remote fetch
	Retries int
	// RetryDelay is the pause before the first retry; it doubles per attempt
	RetryDelay time.Duration
	// MaxBytes caps the size of a single resource
	MaxBytes int64
	// RatePerSecond and Burst throttle remote fetches; zero disables throttling
	RatePerSecond float64
	Burst         int
	// CacheTTL is how long fetched bytes stay in Cache
	CacheTTL time.Duration
	Cache    cache.Cache
	Logger   *slog.Logger
}

// DefaultOptions returns loader defaults
func DefaultOptions() Options {
	return Options{
		Bucket:     "claim-evidence",
		Timeout:    20 * time.Second,
		Retries:    2,
		RetryDelay: 250 * time.Millisecond,
		MaxBytes:   25 << 20,
		CacheTTL:   10 * time.Minute,
	}
}

// ErrHostNotAllowed is returned for absolute URLs outside the allowed hosts
var ErrHostNotAllowed = errors.New("host not allowed")

// Loader handles loading resources
type Loader struct {
	opts    Options
	cache   cache.Cache
	limiter *rate.Limiter
	client  *http.Client
	logger  *slog.Logger
	allowed map[string]bool
}

// Ensure Loader implements claim.ResourceStore
var _ claim.ResourceStore = (*Loader)(nil)

// NewLoader creates a new resource loader
func NewLoader(opts Options) *Loader {
	l := &Loader{
		opts:    opts,
		cache:   opts.Cache,
		logger:  opts.Logger,
		allowed: make(map[string]bool),
	}
	for _, h := range opts.AllowedHosts {
		l.allowed[strings.ToLower(h)] = true
	}
	if base, err := url.Parse(opts.BaseURL); err == nil && base.Host != "" {
		l.allowed[strings.ToLower(base.Host)] = true
	}
	l.client = &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return l.checkHost(req.URL)
		},
	}
	if l.cache == nil {
		l.cache = cache.Nop{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return l
}

// FetchResource returns the bytes stored at an evidence path. Failures wrap
// claim.ErrResourceFetch.
func (l *Loader) FetchResource(ctx context.Context, p string) ([]byte, error) {
	data, err := l.load(ctx, p)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", claim.ErrResourceFetch, p, err)
	}
	return data, nil
}

func (l *Loader) load(ctx context.Context, p string) ([]byte, error) {
	if strings.HasPrefix(p, "data:") {
		return parseDataURL(p)
	}

	resolved, err := l.Resolve(p)
	if err != nil {
		return nil, err
	}
	if data, ok := l.cache.Get(ctx, resolved); ok {
		return data, nil
	}

	var data []byte
	if isRemote(resolved) {
		data, err = l.loadRemote(ctx, resolved)
	} else {
		data, err = l.loadLocal(resolved)
	}
	if err != nil {
		return nil, err
	}

	if l.opts.CacheTTL > 0 {
		if err := l.cache.Set(ctx, resolved, data, l.opts.CacheTTL); err != nil {
			l.logger.Warn("resource cache set", "url", resolved, "error", err)
		}
	}
	return data, nil
}

// Resolve maps a stored evidence path to a URL or local file path
func (l *Loader) Resolve(p string) (string, error) {
	if isRemote(p) {
		u, err := url.Parse(p)
		if err != nil {
			return "", err
		}
		if err := l.checkHost(u); err != nil {
			return "", err
		}
		return p, nil
	}
	if p == "" {
		return "", fmt.Errorf("empty resource path")
	}

	if l.opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(l.opts.BaseURL, "/"))
		if err != nil {
			return "", err
		}
		segments := []string{"storage", "v1", "object", "public", l.opts.Bucket}
		for _, s := range strings.Split(strings.TrimLeft(p, "/"), "/") {
			if s == "" || s == "." || s == ".." {
				continue
			}
			segments = append(segments, s)
		}
		base.Path = path.Join(append([]string{base.Path}, segments...)...)
		return base.String(), nil
	}

	clean := filepath.Clean(filepath.FromSlash("/" + p))
	if len(l.opts.SearchPaths) > 0 {
		return filepath.Join(l.opts.SearchPaths[0], clean), nil
	}
	return strings.TrimPrefix(clean, string(filepath.Separator)), nil
}

// checkHost refuses URLs whose host is not in the allowed set
func (l *Loader) checkHost(u *url.URL) error {
	if l.allowed[strings.ToLower(u.Host)] || l.allowed[strings.ToLower(u.Hostname())] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Host)
}

// loadRemote loads a resource from a remote URL with bounded retries
func (l *Loader) loadRemote(ctx context.Context, urlStr string) ([]byte, error) {
	attempts := 1 + l.opts.Retries
	if attempts < 1 {
		attempts = 1
	}
	delay := l.opts.RetryDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		data, retry, err := l.get(ctx, urlStr)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}
		l.logger.Debug("retrying resource fetch", "url", urlStr, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, lastErr
}

// get performs one GET and reports whether a failure is worth retrying
func (l *Loader) get(ctx context.Context, urlStr string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, !errors.Is(err, ErrHostNotAllowed), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if l.opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, l.opts.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, true, err
	}
	if l.opts.MaxBytes > 0 && int64(len(data)) > l.opts.MaxBytes {
		return nil, false, fmt.Errorf("resource exceeds %d bytes", l.opts.MaxBytes)
	}
	return data, false, nil
}

// loadLocal loads a resource from a local file
func (l *Loader) loadLocal(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(p)
	}
	return nil, err
}

// loadFromSearchPaths tries the remaining search paths for a file
func (l *Loader) loadFromSearchPaths(p string) ([]byte, error) {
	rel := p
	if len(l.opts.SearchPaths) > 0 {
		if r, err := filepath.Rel(l.opts.SearchPaths[0], p); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	for _, searchPath := range l.opts.SearchPaths[min(1, len(l.opts.SearchPaths)):] {
		data, err := os.ReadFile(filepath.Join(searchPath, rel))
		if err != nil {
			continue
		}
		return data, nil
	}
	return nil, fmt.Errorf("resource not found: %s", p)
}

// parseDataURL parses a data URL (RFC 2397).
// Examples:
//
//	data:image/png;base64,<base64>
//	data:text/plain,Hello%20World
func parseDataURL(u string) ([]byte, error) {
	s := strings.TrimPrefix(u, "data:")
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid data URL")
	}
	meta, dataPart := parts[0], parts[1]

	isBase64 := false
	for _, c := range strings.Split(meta, ";")[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		return data, nil
	}
	// The non-base64 form is URL-escaped
	if d, err := url.PathUnescape(dataPart); err == nil {
		return []byte(d), nil
	}
	return []byte(dataPart), nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
