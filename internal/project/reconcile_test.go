package project

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrysync/internal/client"
	"cherrysync/internal/resource"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestNormalizeFlattensBGP(t *testing.T) {
	p := definition{}.Normalize(map[string]any{
		"id":   float64(123),
		"name": "infra",
		"href": "/projects/123",
		"bgp": map[string]any{
			"enabled":   true,
			"local_asn": float64(65000),
		},
	})

	assert.Equal(t, Project{
		ID:   123,
		Name: "infra",
		Href: "/projects/123",
		BGP:  BGP{Enabled: true, LocalASN: 65000},
	}, p)
}

func TestReconcileCreatesMissingProject(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "teams/5/projects", http.StatusOK, []byte(`[]`))
	// The creation response only carries the id; the follow-up GET has the
	// full record.
	mock.SetResponse("POST", "teams/5/projects", http.StatusCreated, []byte(`{"id": 123, "name": "infra"}`))
	mock.SetResponse("GET", "projects/123", http.StatusOK,
		[]byte(`{"id": 123, "name": "infra", "href": "/projects/123", "bgp": {"enabled": false, "local_asn": 0}}`))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State:  resource.StatePresent,
		TeamID: intPtr(5),
		Name:   strPtr("infra"),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	require.NotNil(t, result.Project)
	assert.Equal(t, 123, result.Project.ID)
	assert.Equal(t, "/projects/123", result.Project.Href)

	requests := mock.MutatingRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "teams/5/projects", requests[0].Path)
	assert.Equal(t, map[string]any{"name": "infra"}, requests[0].Params)
}

func TestReconcileExistingNoDiffIsNoop(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "teams/5/projects", http.StatusOK,
		[]byte(`[{"id": 123, "name": "infra", "bgp": {"enabled": false}}]`))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State:  resource.StatePresent,
		TeamID: intPtr(5),
		Name:   strPtr("infra"),
	})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	require.NotNil(t, result.Project)
	assert.Equal(t, 123, result.Project.ID)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileUpdatesBGP(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "projects/123", http.StatusOK,
		[]byte(`{"id": 123, "name": "infra", "bgp": {"enabled": false}}`))
	mock.SetResponse("PUT", "projects/123", http.StatusCreated, []byte(`{"id": 123}`))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		ID:    intPtr(123),
		BGP:   boolPtr(true),
	})
	// The second GET projects/123 after the PUT replays the scripted stale
	// body; only the change report matters here.
	require.NoError(t, err)
	assert.True(t, result.Changed)

	requests := mock.MutatingRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "PUT", requests[0].Method)
	assert.Equal(t, map[string]any{"bgp": true}, requests[0].Params)
}

func TestReconcileLookupByIDToleratesMissing(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "projects/999", http.StatusNotFound, []byte(`{"message": "not found"}`))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StateAbsent,
		ID:    intPtr(999),
	})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileDeletesExistingProject(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "projects/123", http.StatusOK, []byte(`{"id": 123, "name": "infra"}`))
	mock.SetResponse("DELETE", "projects/123", http.StatusNoContent, nil)

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StateAbsent,
		ID:    intPtr(123),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Nil(t, result.Project)
	assert.Equal(t, 1, mock.Calls("DELETE", "projects/123"))
}

func TestReconcileDryRunNeverMutates(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "teams/5/projects", http.StatusOK, []byte(`[]`))

	r := NewReconciler(mock, true)
	result, err := r.Reconcile(context.Background(), Params{
		State:  resource.StatePresent,
		TeamID: intPtr(5),
		Name:   strPtr("infra"),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileAmbiguousNameFails(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "teams/5/projects", http.StatusOK,
		[]byte(`[{"id": 1, "name": "infra"}, {"id": 2, "name": "infra"}]`))

	r := NewReconciler(mock, false)
	_, err := r.Reconcile(context.Background(), Params{
		State:  resource.StatePresent,
		TeamID: intPtr(5),
		Name:   strPtr("infra"),
	})

	require.Error(t, err)
	var ambErr *resource.AmbiguityError
	require.ErrorAs(t, err, &ambErr)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileCreateRequiresNameAndTeam(t *testing.T) {
	r := NewReconciler(client.NewMockClient(), false)
	_, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		Name:  strPtr("infra"),
	})

	require.Error(t, err)
	assert.True(t, resource.IsValidationError(err))
}
