package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/graderight/grader/pkg/logging"
)

// ErrFetchFailed wraps any failure to download a document. Callers use it to
// distinguish fetch failures (no local file exists) from later pipeline
// stages (a temp file needs cleanup).
var ErrFetchFailed = errors.New("document fetch failed")

// DefaultTimeout bounds a single document download.
const DefaultTimeout = 60 * time.Second

// Fetcher downloads remote PDF documents to local temp files.
type Fetcher struct {
	client *http.Client
	log    *logging.Logger
}

// New creates a Fetcher with the given timeout; zero means DefaultTimeout.
func New(timeout time.Duration, log *logging.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fetch downloads the document at url into a temp file with a .pdf suffix
// and returns its path. The caller owns the file and must remove it.
// Every failure path returns an error wrapping ErrFetchFailed and leaves no
// file behind.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url %q: %v", ErrFetchFailed, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d from %s", ErrFetchFailed, resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp("", "grader-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	f.log.Debug("Downloaded document", map[string]interface{}{
		"url":   url,
		"path":  tmp.Name(),
		"bytes": written,
	})

	return tmp.Name(), nil
}
