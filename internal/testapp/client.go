package testapp

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

var client = &http.Client{Timeout: 10 * time.Second}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode    int
	Header        http.Header
	ContentLength int64
	Body          []byte
}

func doRequest(t testing.TB, method, url string, body io.Reader) *Response {
	t.Helper()

	resp, err := fetch(method, url, body)
	if err != nil {
		t.Fatalf("failed to execute request: %v", err)
	}
	return resp
}

// fetch performs the request without touching testing.TB, so it is safe to
// call from goroutines other than the test's own.
func fetch(method, url string, body io.Reader) (*Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		ContentLength: resp.ContentLength,
		Body:          data,
	}, nil
}
