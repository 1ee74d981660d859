package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/weatherdash/internal/httputil"
	"github.com/lox/weatherdash/internal/metrics"
)

const ftpTimeout = 30 * time.Second

// Fetcher loads a dataset from a local path, an HTTP(S) URL or an FTP URL.
type Fetcher struct {
	client         *http.Client
	maxElapsedTime time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:         httputil.NewClient(),
		maxElapsedTime: 2 * time.Minute,
	}
}

// Fetch returns the raw bytes and a display filename for source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, string, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths, including Windows drive letters.
		return f.fetchFile(source)
	}

	var (
		data []byte
		name = path.Base(u.Path)
	)
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err = f.fetchHTTP(ctx, source)
	case "ftp":
		data, err = f.fetchFTP(u)
	case "file":
		return f.fetchFile(u.Path)
	default:
		return nil, "", fmt.Errorf("fetch %s: unsupported scheme %q", source, u.Scheme)
	}
	if err != nil {
		metrics.DatasetFetches.WithLabelValues(u.Scheme, "error").Inc()
		return nil, "", err
	}
	metrics.DatasetFetches.WithLabelValues(u.Scheme, "ok").Inc()
	return data, name, nil
}

func (f *Fetcher) fetchFile(p string) ([]byte, string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		metrics.DatasetFetches.WithLabelValues("file", "error").Inc()
		return nil, "", fmt.Errorf("read dataset: %w", err)
	}
	metrics.DatasetFetches.WithLabelValues("file", "ok").Inc()
	return data, path.Base(strings.ReplaceAll(p, "\\", "/")), nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch dataset: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch dataset: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = f.maxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetchFTP(u *url.URL) ([]byte, error) {
	host := u.Host
	if u.Port() == "" {
		host += ":21"
	}
	conn, err := ftp.Dial(host, ftp.DialWithTimeout(ftpTimeout))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
