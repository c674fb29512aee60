package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"rti.metlink.nz/internal/logging"
)

// maxResponseBytes caps how much of a single upstream response is read.
const maxResponseBytes = 256 << 20

// fetch performs a GET and returns the body and content type. Network
// failures and non-200 responses wrap ErrTransientFetch.
func fetch(ctx context.Context, client *http.Client, source string, headers map[string]string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", err
	}

	for key, value := range headers {
		req.Header.Add(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrTransientFetch, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "gtfs_downloader")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: HTTP %d from %s", ErrTransientFetch, resp.StatusCode, source)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body: %v", ErrTransientFetch, err)
	}

	return b, resp.Header.Get("Content-Type"), nil
}
