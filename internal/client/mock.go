package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient implements Client for testing. Responses are scripted per
// "METHOD path" endpoint and every request is recorded.
type MockClient struct {
	mu sync.Mutex

	responses map[string]mockResponse
	errors    map[string]error

	requests []RecordedRequest
	calls    map[string]int
}

type mockResponse struct {
	status int
	body   []byte
}

// RecordedRequest captures a single request the mock received.
type RecordedRequest struct {
	Method string
	Path   string
	Params map[string]any
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
		calls:     make(map[string]int),
	}
}

func endpoint(method, path string) string {
	return method + " " + path
}

// SetResponse scripts the status and body returned for an endpoint.
func (m *MockClient) SetResponse(method, path string, status int, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[endpoint(method, path)] = mockResponse{status: status, body: body}
}

// SetError makes an endpoint fail with a transport error.
func (m *MockClient) SetError(method, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errors[endpoint(method, path)] = err
}

// SendRequest returns the scripted response for the endpoint.
func (m *MockClient) SendRequest(ctx context.Context, method string, path string, timeout time.Duration, params map[string]any) (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := endpoint(method, path)
	m.calls[key]++
	m.requests = append(m.requests, RecordedRequest{Method: method, Path: path, Params: params})

	if err, ok := m.errors[key]; ok {
		return 0, nil, err
	}

	resp, ok := m.responses[key]
	if !ok {
		return 0, nil, fmt.Errorf("mock: no response scripted for %s", key)
	}

	return resp.status, resp.body, nil
}

// Calls returns how many times an endpoint was hit.
func (m *MockClient) Calls(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[endpoint(method, path)]
}

// Requests returns a copy of every recorded request, in order.
func (m *MockClient) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// MutatingRequests returns the recorded requests that are not GETs.
func (m *MockClient) MutatingRequests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []RecordedRequest
	for _, r := range m.requests {
		if r.Method != "GET" {
			out = append(out, r)
		}
	}
	return out
}
