package httputil

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
)

const (
	// DefaultMaxBytes caps the size of a single image.
	DefaultMaxBytes = 5 << 20

	// DefaultTimeout bounds a single download attempt.
	DefaultTimeout = 10 * time.Second

	userAgent = "facepile (+https://github.com/matzehuels/facepile)"
)

// Fetcher resolves image sources to data: URIs.
type Fetcher struct {
	client   *http.Client
	cache    cache.Cache
	ttl      time.Duration
	maxBytes int64
	logger   *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) FetcherOption { return func(f *Fetcher) { f.client = c } }

// WithCache stores fetched images in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) { f.cache, f.ttl = c, ttl }
}

// WithMaxBytes sets the largest image accepted.
func WithMaxBytes(n int64) FetcherOption { return func(f *Fetcher) { f.maxBytes = n } }

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *log.Logger) FetcherOption { return func(f *Fetcher) { f.logger = l } }

// NewFetcher creates a fetcher with no cache, a 10s timeout and a 5 MiB limit.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		cache:    cache.NewNullCache(),
		ttl:      cache.DefaultTTL,
		maxBytes: DefaultMaxBytes,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DataURI returns src as a data: URI.
func (f *Fetcher) DataURI(ctx context.Context, src string) (string, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return src, nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return f.fetchRemote(ctx, src)
	default:
		return f.readLocal(src)
	}
}

// Inline returns a copy of collabs with every image replaced by a data: URI.
// Images that cannot be fetched are dropped with a warning.
func (f *Fetcher) Inline(ctx context.Context, collabs []avatar.Collaborator) []avatar.Collaborator {
	out := make([]avatar.Collaborator, len(collabs))
	copy(out, collabs)

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		if !out[i].HasImage() {
			continue
		}
		g.Go(func() error {
			uri, err := f.DataURI(gctx, out[i].ImageSource)
			if err != nil {
				f.logger.Warn("image unavailable, using initial", "name", out[i].Name, "src", out[i].ImageSource, "err", err)
				uri = ""
			}
			out[i].ImageSource = uri
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) (string, error) {
	key := "image:" + cache.Hash([]byte(url))
	if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
		return string(data), nil
	}

	var uri string
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		uri, err = f.download(ctx, url)
		return err
	})
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, key, []byte(uri), f.ttl); err != nil {
		f.logger.Debug("image cache write failed", "url", url, "err", err)
	}
	return uri, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "image request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "get %s", url)
		}
		return "", cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "get %s", url))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", errors.New(errors.ErrCodeNotFound, "image not found: %s", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", cache.Retryable(errors.New(errors.ErrCodeNetwork, "get %s: %s", url, resp.Status))
	case resp.StatusCode != http.StatusOK:
		return "", errors.New(errors.ErrCodeNetwork, "get %s: %s", url, resp.Status)
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return "", err
	}
	return encode(resp.Header.Get("Content-Type"), data)
}

func (f *Fetcher) readLocal(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeNotFound, err, "image %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "image %s", path)
	}
	defer file.Close()

	data, err := f.readLimited(file)
	if err != nil {
		return "", err
	}
	return encode(mime.TypeByExtension(strings.ToLower(filepath.Ext(path))), data)
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read image")
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image larger than %d bytes", f.maxBytes)
	}
	return data, nil
}

// encode builds a data: URI. The declared type is checked against the
// sniffed one so that HTML error pages are not embedded as images.
func encode(declared string, data []byte) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(declared)
	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = sniffed
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", errors.New(errors.ErrCodeUnsupported, "not an image: %s", mediaType)
	}
	if strings.HasPrefix(sniffed, "text/html") {
		return "", errors.New(errors.ErrCodeUnsupported, "not an image: %s", sniffed)
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data)), nil
}
