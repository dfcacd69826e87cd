package sshkey

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrysync/internal/client"
	"cherrysync/internal/resource"
)

const (
	testPublicKey   = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBYe+GfpsnLP02tfLOJWWFnGKJNpgrzLYE5VZhclrFy0 example@example.com"
	testFingerprint = "d1:f7:f2:42:78:3a:5a:cc:02:1e:01:f3:33:32:58:78"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func listBody(t *testing.T, keys ...map[string]any) []byte {
	t.Helper()
	if keys == nil {
		keys = []map[string]any{}
	}
	b, err := json.Marshal(keys)
	require.NoError(t, err)
	return b
}

func storedKey(id int, label, key string) map[string]any {
	return map[string]any{
		"id":          id,
		"label":       label,
		"key":         key,
		"fingerprint": testFingerprint,
		"created":     "2024-08-06T07:56:16+00:00",
		"updated":     "2024-08-06T07:56:16+00:00",
		"href":        "/ssh-keys/7955",
	}
}

func TestReconcileCreatesMissingKey(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t))
	mock.SetResponse("POST", "ssh-keys", http.StatusCreated,
		[]byte(`{"id": 7955, "label": "k1", "key": "`+testPublicKey+`", "fingerprint": "`+testFingerprint+`"}`))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State:     resource.StatePresent,
		Label:     strPtr("k1"),
		PublicKey: strPtr(testPublicKey),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	require.NotNil(t, result.Key)
	assert.Equal(t, "k1", result.Key.Label)
	assert.Equal(t, testPublicKey, result.Key.Key)

	requests := mock.MutatingRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "POST", requests[0].Method)
	assert.Equal(t, "ssh-keys", requests[0].Path)
	assert.Equal(t, map[string]any{"label": "k1", "key": testPublicKey}, requests[0].Params)
}

func TestReconcileUpdatesDifferingLabel(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t, storedKey(7955, "k1", testPublicKey)))
	// The provider answers a successful update with 201.
	mock.SetResponse("PUT", "ssh-keys/7955", http.StatusCreated,
		[]byte(`{"id": 7955, "label": "k2", "key": "`+testPublicKey+`"}`))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		ID:    intPtr(7955),
		Label: strPtr("k2"),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	require.NotNil(t, result.Key)
	assert.Equal(t, "k2", result.Key.Label)

	requests := mock.MutatingRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "PUT", requests[0].Method)
	assert.Equal(t, "ssh-keys/7955", requests[0].Path)
	assert.Equal(t, map[string]any{"label": "k2"}, requests[0].Params)
}

func TestReconcileUpdateRejects200(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t, storedKey(7955, "k1", testPublicKey)))
	mock.SetResponse("PUT", "ssh-keys/7955", http.StatusOK, []byte(`{"id": 7955}`))

	r := NewReconciler(mock, false)
	_, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		ID:    intPtr(7955),
		Label: strPtr("k2"),
	})

	// 201 is the only documented success status for updates; a 200 means the
	// provider diverged from its documentation and should surface loudly.
	require.Error(t, err)
	assert.True(t, resource.IsAPIError(err))
}

func TestReconcileNoDiffIsNoop(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t, storedKey(7955, "k1", testPublicKey)))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		Label: strPtr("k1"),
	})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	require.NotNil(t, result.Key)
	assert.Equal(t, 7955, result.Key.ID)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileDeletesExistingKey(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t, storedKey(7955, "k1", testPublicKey)))
	mock.SetResponse("DELETE", "ssh-keys/7955", http.StatusNoContent, nil)

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StateAbsent,
		ID:    intPtr(7955),
	})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Nil(t, result.Key)
	assert.Equal(t, 1, mock.Calls("DELETE", "ssh-keys/7955"))
}

func TestReconcileAbsentMissingIsNoop(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t))

	r := NewReconciler(mock, false)
	result, err := r.Reconcile(context.Background(), Params{
		State: resource.StateAbsent,
		ID:    intPtr(7955),
	})
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileDeleteIdempotence(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t, storedKey(7955, "k1", testPublicKey)))
	mock.SetResponse("DELETE", "ssh-keys/7955", http.StatusNoContent, nil)

	params := Params{State: resource.StateAbsent, ID: intPtr(7955)}
	r := NewReconciler(mock, false)

	result, err := r.Reconcile(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Changed)

	// The key is gone now; the same parameters must report no change.
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t))
	result, err = r.Reconcile(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.Changed)
}

func TestReconcileDryRunNeverMutates(t *testing.T) {
	cases := map[string]Params{
		"create": {State: resource.StatePresent, Label: strPtr("new"), PublicKey: strPtr(testPublicKey)},
		"update": {State: resource.StatePresent, ID: intPtr(7955), Label: strPtr("k2")},
		"delete": {State: resource.StateAbsent, ID: intPtr(7955)},
	}

	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			mock := client.NewMockClient()
			mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t, storedKey(7955, "k1", "ssh-rsa AAAA other")))

			r := NewReconciler(mock, true)
			result, err := r.Reconcile(context.Background(), params)
			require.NoError(t, err)

			assert.True(t, result.Changed)
			assert.Empty(t, mock.MutatingRequests())
			assert.Equal(t, 1, mock.Calls("GET", "ssh-keys"))
		})
	}
}

func TestReconcileAmbiguousLookupFails(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t,
		storedKey(1, "k1", "ssh-rsa AAAA a"),
		storedKey(2, "k2", "ssh-rsa BBBB b"),
	))

	r := NewReconciler(mock, false)
	_, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		Label: strPtr("k1"),
		ID:    intPtr(2),
	})

	require.Error(t, err)
	var ambErr *resource.AmbiguityError
	require.ErrorAs(t, err, &ambErr)
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileCreateRequiresLabelAndKey(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t))

	r := NewReconciler(mock, false)
	_, err := r.Reconcile(context.Background(), Params{
		State: resource.StatePresent,
		Label: strPtr("k1"),
	})

	require.Error(t, err)
	assert.True(t, resource.IsValidationError(err))
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileCreateRejectsGarbageKey(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusOK, listBody(t))

	r := NewReconciler(mock, false)
	_, err := r.Reconcile(context.Background(), Params{
		State:     resource.StatePresent,
		Label:     strPtr("k1"),
		PublicKey: strPtr("not a key"),
	})

	require.Error(t, err)
	assert.True(t, resource.IsValidationError(err))
	assert.Empty(t, mock.MutatingRequests())
}

func TestReconcileRejectsUnknownState(t *testing.T) {
	r := NewReconciler(client.NewMockClient(), false)
	_, err := r.Reconcile(context.Background(), Params{State: "deleted"})

	require.Error(t, err)
	assert.True(t, resource.IsValidationError(err))
}

func TestReconcileAPIErrorOnLookup(t *testing.T) {
	mock := client.NewMockClient()
	mock.SetResponse("GET", "ssh-keys", http.StatusInternalServerError, []byte(`{"message": "boom"}`))

	r := NewReconciler(mock, false)
	_, err := r.Reconcile(context.Background(), Params{State: resource.StatePresent, Label: strPtr("k1")})

	require.Error(t, err)
	assert.True(t, resource.IsAPIError(err))
}
