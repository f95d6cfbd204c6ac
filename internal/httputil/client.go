// Package httputil provides HTTP client abstractions and response helpers.
package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Doer abstracts HTTP request execution for testability.
// Use *http.Client for production; MockDoer for testing.
type Doer interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// MockDoer returns canned responses in order and records every request.
type MockDoer struct {
	mu       sync.Mutex
	Requests []*http.Request

	responses []mockResponse
	idx       int
}

type mockResponse struct {
	statusCode int
	body       string
	header     http.Header
	err        error
}

// NewMockDoer creates an empty mock client.
func NewMockDoer() *MockDoer {
	return &MockDoer{}
}

// AddResponse queues a response with the given status and body.
func (m *MockDoer) AddResponse(statusCode int, body string) *MockDoer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{
		statusCode: statusCode,
		body:       body,
		header:     make(http.Header),
	})
	return m
}

// AddError queues a transport-level error.
func (m *MockDoer) AddError(err error) *MockDoer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{err: err})
	return m
}

// Do records the request and returns the next queued response. Requests past
// the end of the queue get an empty 200 response.
func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.idx >= len(m.responses) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString("")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	resp := m.responses[m.idx]
	m.idx++

	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(resp.body)),
		Header:     resp.header,
		Request:    req,
	}, nil
}
