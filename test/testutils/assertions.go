// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// JSONRequest builds a request with an optional JSON body and bearer token
func JSONRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Serve runs the request through the handler and returns the recorded response
func Serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeJSON decodes the response body into a generic map
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

// DecodeInto decodes the response body into target
func DecodeInto(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "body: %s", w.Body.String())
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// Status asserts the response status, printing the body on mismatch
func (ha *HTTPAssertions) Status(w *httptest.ResponseRecorder, expected int) {
	ha.t.Helper()
	require.Equal(ha.t, expected, w.Code, "body: %s", w.Body.String())
}

// ErrorCode asserts an error envelope with the given code
func (ha *HTTPAssertions) ErrorCode(w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) {
	ha.t.Helper()
	ha.Status(w, expectedStatus)

	body := DecodeJSON(ha.t, w)
	assert.Equal(ha.t, false, body["success"])
	errBody, ok := body["error"].(map[string]interface{})
	require.True(ha.t, ok, "missing error object: %s", w.Body.String())
	assert.Equal(ha.t, expectedCode, errBody["code"])
}

// SecurityHeaders asserts the standard security headers are present
func (ha *HTTPAssertions) SecurityHeaders(w *httptest.ResponseRecorder) {
	ha.t.Helper()
	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		assert.NotEmpty(ha.t, w.Header().Get(header), "missing %s", header)
	}
}
