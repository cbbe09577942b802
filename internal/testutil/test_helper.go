// Package testutil provides testing utilities and helpers.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// NewTestRouter creates a new Gin router for testing.
func NewTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// TestCase represents a test case for HTTP handlers.
type TestCase struct {
	Body           interface{}
	Headers        map[string]string
	Name           string
	Method         string
	URL            string
	ExpectedStatus int
	ExpectedCode   string
}

// HTTPTestHelper provides utilities for HTTP testing.
type HTTPTestHelper struct {
	router http.Handler
	t      *testing.T
}

// NewHTTPTestHelper creates a new HTTP test helper.
func NewHTTPTestHelper(t *testing.T, router http.Handler) *HTTPTestHelper {
	return &HTTPTestHelper{
		router: router,
		t:      t,
	}
}

// Request performs an HTTP request and returns the response.
func (h *HTTPTestHelper) Request(
	method,
	url string,
	body interface{},
	headers map[string]string,
) *httptest.ResponseRecorder {
	h.t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("Failed to marshal request body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		h.t.Fatalf("Failed to create request: %v", err)
	}

	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)
	return recorder
}

// GET performs a GET request.
func (h *HTTPTestHelper) GET(url string, headers map[string]string) *httptest.ResponseRecorder {
	return h.Request(http.MethodGet, url, nil, headers)
}

// POST performs a POST request.
func (h *HTTPTestHelper) POST(url string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return h.Request(http.MethodPost, url, body, headers)
}

// PUT performs a PUT request.
func (h *HTTPTestHelper) PUT(url string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return h.Request(http.MethodPut, url, body, headers)
}

// DELETE performs a DELETE request.
func (h *HTTPTestHelper) DELETE(url string, headers map[string]string) *httptest.ResponseRecorder {
	return h.Request(http.MethodDelete, url, nil, headers)
}

// AssertStatus asserts that the response has the expected status code.
func (h *HTTPTestHelper) AssertStatus(recorder *httptest.ResponseRecorder, expectedStatus int) {
	h.t.Helper()
	if recorder.Code != expectedStatus {
		h.t.Errorf("Status code mismatch. Expected: %d, Actual: %d, Body: %s",
			expectedStatus, recorder.Code, recorder.Body.String())
	}
}

// AssertHeader asserts that the response has the expected header value.
func (h *HTTPTestHelper) AssertHeader(recorder *httptest.ResponseRecorder, header, expectedValue string) {
	h.t.Helper()
	actualValue := recorder.Header().Get(header)
	if actualValue != expectedValue {
		h.t.Errorf("Header %s mismatch. Expected: %s, Actual: %s", header, expectedValue, actualValue)
	}
}

// Envelope is the response wrapper every endpoint writes.
type Envelope struct {
	Success       bool            `json:"success"`
	Data          json.RawMessage `json:"data"`
	CorrelationID string          `json:"correlation_id"`
	Error         *struct {
		Type    string                 `json:"type"`
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

// DecodeEnvelope parses the response body as an Envelope.
func (h *HTTPTestHelper) DecodeEnvelope(recorder *httptest.ResponseRecorder) Envelope {
	h.t.Helper()
	var env Envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		h.t.Fatalf("Failed to unmarshal response: %v\nBody: %s", err, recorder.Body.String())
	}
	return env
}

// DecodeData unmarshals the envelope's data field into target.
func (h *HTTPTestHelper) DecodeData(recorder *httptest.ResponseRecorder, target interface{}) {
	h.t.Helper()
	env := h.DecodeEnvelope(recorder)
	if !env.Success {
		h.t.Fatalf("Expected a success envelope, got: %s", recorder.Body.String())
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		h.t.Fatalf("Failed to unmarshal data: %v", err)
	}
}

// ErrorCode returns the error code from an error envelope, or "" for a success.
func (h *HTTPTestHelper) ErrorCode(recorder *httptest.ResponseRecorder) string {
	h.t.Helper()
	env := h.DecodeEnvelope(recorder)
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

// RunTestCases runs a slice of test cases.
func (h *HTTPTestHelper) RunTestCases(testCases []TestCase) {
	for _, tc := range testCases {
		h.t.Run(tc.Name, func(t *testing.T) {
			inner := NewHTTPTestHelper(t, h.router)
			recorder := inner.Request(tc.Method, tc.URL, tc.Body, tc.Headers)

			inner.AssertStatus(recorder, tc.ExpectedStatus)
			if tc.ExpectedCode != "" {
				if code := inner.ErrorCode(recorder); code != tc.ExpectedCode {
					t.Errorf("Error code mismatch. Expected: %s, Actual: %s", tc.ExpectedCode, code)
				}
			}
		})
	}
}

// BearerHeader returns an Authorization header map for token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
