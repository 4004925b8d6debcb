//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/liftlog/internal/apiclient"
	"github.com/2beens/liftlog/internal/middleware"
)

func newJSONRequest(ctx context.Context, method, url, token string, body any) (*http.Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", apiclient.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TokenHeader, token)
	return req, nil
}

func doJSON(client *http.Client, req *http.Request, expectedStatus int, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}
