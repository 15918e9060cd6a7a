package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sbilibin2017/gw-exchange-rates/internal/apperrors"
)

// baseURL prefixes host with a scheme unless it already carries one.
func baseURL(host string, useHTTPS bool) string {
	base := strings.TrimRight(host, "/")
	if strings.Contains(base, "://") {
		return base
	}
	if useHTTPS {
		return "https://" + base
	}
	return "http://" + base
}

// getBody performs a GET and returns the response body and status.
// Returned errors never contain rawURL, whose query carries the access key.
func getBody(ctx context.Context, client *http.Client, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, apperrors.Provider(apperrors.CodeNetwork, "failed to build request", nil)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, apperrors.Provider(apperrors.CodeNetwork, "failed to fetch exchange rate", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, apperrors.Provider(apperrors.CodeNetwork, "failed to read response", stripURL(err))
	}
	return body, resp.StatusCode, nil
}

func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
