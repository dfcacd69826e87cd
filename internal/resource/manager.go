package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cherrysync/internal/client"
)

// Request is an immutable template describing how to address and validate a
// single API operation: a path with an optional {id} placeholder, a timeout
// and the set of status codes considered successful.
type Request struct {
	Path    string
	Timeout time.Duration
	OK      []int
}

func (r Request) path(id any) string {
	if id == nil {
		return r.Path
	}
	return strings.ReplaceAll(r.Path, "{id}", fmt.Sprint(id))
}

func (r Request) accepts(status int) bool {
	for _, ok := range r.OK {
		if status == ok {
			return true
		}
	}
	return false
}

// Definition is the capability contract a concrete resource type supplies:
// a human-readable name, a normalization function from the raw provider
// shape to the canonical record, and the read request templates.
type Definition[T any] interface {
	Name() string
	Normalize(raw map[string]any) T
	GetByID() Request
	GetByParentID() Request
}

// Manager provides uniform CRUD-style access to one provider resource type.
// Status-code validation and response normalization live here so concrete
// resource types never duplicate them.
type Manager[T any] struct {
	def Definition[T]
	api client.Client
}

// NewManager creates a Manager for the given resource definition.
func NewManager[T any](def Definition[T], api client.Client) *Manager[T] {
	return &Manager[T]{def: def, api: api}
}

// GetByID retrieves and normalizes a single resource.
func (m *Manager[T]) GetByID(ctx context.Context, id any) (T, error) {
	var zero T

	req := m.def.GetByID()
	status, body, err := m.api.SendRequest(ctx, http.MethodGet, req.path(id), req.Timeout, nil)
	if err != nil {
		return zero, err
	}
	if !req.accepts(status) {
		return zero, newAPIError("GET", m.def.Name(), status, body)
	}

	return m.normalizeOne(body)
}

// GetByParentID retrieves every resource under a parent and normalizes each.
// An empty collection is not an error.
func (m *Manager[T]) GetByParentID(ctx context.Context, parentID any) ([]T, error) {
	req := m.def.GetByParentID()
	status, body, err := m.api.SendRequest(ctx, http.MethodGet, req.path(parentID), req.Timeout, nil)
	if err != nil {
		return nil, err
	}
	if !req.accepts(status) {
		return nil, newAPIError("GET", m.def.Name(), status, body)
	}

	return m.normalizeList(body)
}

// TryGetByID is GetByID, except a 404 means absence instead of failure.
func (m *Manager[T]) TryGetByID(ctx context.Context, id any) (*T, error) {
	req := m.def.GetByID()
	status, body, err := m.api.SendRequest(ctx, http.MethodGet, req.path(id), req.Timeout, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if !req.accepts(status) {
		return nil, newAPIError("GET", m.def.Name(), status, body)
	}

	out, err := m.normalizeOne(body)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAt retrieves and normalizes a whole collection at an explicit request
// template, for resource types that also expose an account-wide listing.
func (m *Manager[T]) ListAt(ctx context.Context, req Request) ([]T, error) {
	status, body, err := m.api.SendRequest(ctx, http.MethodGet, req.path(nil), req.Timeout, nil)
	if err != nil {
		return nil, err
	}
	if !req.accepts(status) {
		return nil, newAPIError("GET", m.def.Name(), status, body)
	}

	return m.normalizeList(body)
}

// PostByID issues a POST with the given parameters against the template.
func (m *Manager[T]) PostByID(ctx context.Context, id any, req Request, params map[string]any) (T, error) {
	var zero T

	status, body, err := m.api.SendRequest(ctx, http.MethodPost, req.path(id), req.Timeout, params)
	if err != nil {
		return zero, err
	}
	if !req.accepts(status) {
		return zero, newAPIError("POST", m.def.Name(), status, body)
	}

	return m.normalizeOne(body)
}

// PutByID issues a PUT with the given parameters against the template.
func (m *Manager[T]) PutByID(ctx context.Context, id any, req Request, params map[string]any) (T, error) {
	var zero T

	status, body, err := m.api.SendRequest(ctx, http.MethodPut, req.path(id), req.Timeout, params)
	if err != nil {
		return zero, err
	}
	if !req.accepts(status) {
		return zero, newAPIError("PUT", m.def.Name(), status, body)
	}

	return m.normalizeOne(body)
}

// DeleteByID issues a DELETE against the template. No payload is returned.
func (m *Manager[T]) DeleteByID(ctx context.Context, id any, req Request) error {
	status, body, err := m.api.SendRequest(ctx, http.MethodDelete, req.path(id), req.Timeout, nil)
	if err != nil {
		return err
	}
	if !req.accepts(status) {
		return newAPIError("DELETE", m.def.Name(), status, body)
	}

	return nil
}

func (m *Manager[T]) normalizeOne(body []byte) (T, error) {
	var zero T

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", m.def.Name(), err)
	}

	return m.def.Normalize(raw), nil
}

func (m *Manager[T]) normalizeList(body []byte) ([]T, error) {
	var raws []map[string]any
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", m.def.Name(), err)
	}

	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		out = append(out, m.def.Normalize(raw))
	}
	return out, nil
}
