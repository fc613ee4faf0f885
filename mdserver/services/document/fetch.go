package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mdserver/mdserver/config"
	"mdserver/mdserver/utils/urlguard"
)

const (
	maxRedirects = 5
	userAgent    = "mdserver/1.0"
)

type fetcher struct {
	client  *http.Client
	maxSize int64
}

// newFetcher builds an HTTP client whose redirect handler re-applies
// the network policy to every hop.
func newFetcher(cfg config.Config) *fetcher {
	policy := urlguard.Policy{
		AllowLocalhost:       cfg.AllowLocalhost,
		AllowPrivateNetworks: cfg.AllowPrivateNetworks,
	}
	client := &http.Client{
		Timeout: time.Duration(cfg.URLFetchTimeoutSeconds) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return urlguard.ValidateURL(req.URL.String(), policy)
		},
	}
	return &fetcher{client: client, maxSize: cfg.MaxFileSize}
}

func (f *fetcher) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		// redirect policy violations surface wrapped in url.Error
		if errors.Is(err, urlguard.ErrBlocked) || errors.Is(err, urlguard.ErrInvalidURL) {
			return nil, "", err
		}
		return nil, "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	limited := io.LimitReader(resp.Body, f.maxSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Err: err}
	}
	if int64(len(data)) > f.maxSize {
		return nil, "", &FetchError{URL: rawURL, Err: fmt.Errorf("response exceeds %d bytes", f.maxSize)}
	}

	contentType := strings.Split(resp.Header.Get("Content-Type"), ";")[0]
	return data, strings.TrimSpace(contentType), nil
}
