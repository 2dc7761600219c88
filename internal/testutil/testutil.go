// Package testutil provides testing utilities for the finance tracker.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	Client  *http.Client
	t       *testing.T
}

// SetTestEnv points every FINTRACK_* setting at a temporary directory and an
// in-memory backend. Values are restored when the test ends.
func SetTestEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for k, v := range map[string]string{
		"FINTRACK_DATA_DIR":    dir,
		"FINTRACK_BACKEND":     "memory",
		"FINTRACK_DEBUG":       "true",
		"FINTRACK_LISTEN_ADDR": ":0", // Random port
		"FINTRACK_PASSWORD":    "",
	} {
		t.Setenv(k, v)
	}
	return dir
}

// NewTestServer creates a new test server using the application's router.
// Redirects are not followed so handlers can be asserted on directly.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		t: t,
	}
}

// Do sends a request with an optional body to the given path
func (ts *TestServer) Do(method, path, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()

	req, err := http.NewRequest(method, ts.BaseURL+path, body)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := ts.Client.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodGet, path, "", nil)
}

// DELETEWithQuery performs a DELETE request with query parameters
func (ts *TestServer) DELETEWithQuery(path string, query map[string]string) *http.Response {
	ts.t.Helper()

	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	return ts.DELETE(path)
}

// POST performs a POST request to the given path
func (ts *TestServer) POST(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPost, path, contentType, body)
}

// POSTJSON encodes v and POSTs it
func (ts *TestServer) POSTJSON(path string, v any) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPost, path, "application/json", encode(ts.t, v))
}

// PUTJSON encodes v and PUTs it
func (ts *TestServer) PUTJSON(path string, v any) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodPut, path, "application/json", encode(ts.t, v))
}

// DELETE performs a DELETE request to the given path
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	return ts.Do(http.MethodDelete, path, "", nil)
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

func encode(t *testing.T, v any) io.Reader {
	t.Helper()

	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to encode request body: %v", err)
	}
	return bytes.NewReader(data)
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
