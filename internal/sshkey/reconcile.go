package sshkey

import (
	"context"
	"net/http"

	"cherrysync/internal/client"
	"cherrysync/internal/resource"
)

// Params are the declared parameters for one reconciliation. Unset fields
// are nil and never participate in matching or diffing.
type Params struct {
	State       resource.State
	Label       *string
	PublicKey   *string
	ID          *int
	Fingerprint *string
}

// Result reports the outcome of one reconciliation back to the caller.
type Result struct {
	Changed bool `json:"changed"`
	Key     *Key `json:"cherryservers_sshkey,omitempty"`
}

// Reconciler applies the minimal state transition to make the remote SSH
// key match the declared parameters. With DryRun set, mutating branches
// report the would-be change without issuing the write; lookups still run.
type Reconciler struct {
	keys   *Manager
	dryRun bool
}

// NewReconciler creates a Reconciler on top of the given API client.
func NewReconciler(api client.Client, dryRun bool) *Reconciler {
	return &Reconciler{keys: NewManager(api), dryRun: dryRun}
}

// Reconcile runs one lookup → diff → action cycle.
func (r *Reconciler) Reconcile(ctx context.Context, params Params) (Result, error) {
	if params.State == "" {
		params.State = resource.StatePresent
	}
	if !params.State.Valid() {
		return Result{}, resource.NewValidationError("state must be present or absent, got %q", params.State)
	}

	found, err := r.lookup(ctx, params)
	if err != nil {
		return Result{}, err
	}

	if params.State == resource.StateAbsent {
		if found == nil {
			return Result{Changed: false}, nil
		}
		return r.delete(ctx, found.ID)
	}

	if found == nil {
		return r.create(ctx, params)
	}
	if diff(params, *found) {
		return r.update(ctx, params, found.ID)
	}
	return Result{Changed: false, Key: found}, nil
}

// lookup finds the single key matching any supplied identifying field.
// More than one match fails immediately; none returns nil.
func (r *Reconciler) lookup(ctx context.Context, params Params) (*Key, error) {
	keys, err := r.keys.All(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Key
	for _, k := range keys {
		if identifies(params, k) {
			matches = append(matches, k)
		}
	}

	if len(matches) > 1 {
		return nil, resource.NewAmbiguityError("ssh key", len(matches))
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// identifies reports whether any supplied identifying field equals the
// stored value.
func identifies(params Params, k Key) bool {
	if params.ID != nil && *params.ID == k.ID {
		return true
	}
	if params.Fingerprint != nil && *params.Fingerprint == k.Fingerprint {
		return true
	}
	if params.Label != nil && *params.Label == k.Label {
		return true
	}
	if params.PublicKey != nil && *params.PublicKey == k.Key {
		return true
	}
	return false
}

// diff reports whether an explicitly supplied field differs from the stored
// state. Unset fields never trigger a diff.
func diff(params Params, current Key) bool {
	if params.Label != nil && *params.Label != current.Label {
		return true
	}
	if params.PublicKey != nil && *params.PublicKey != current.Key {
		return true
	}
	return false
}

func (r *Reconciler) create(ctx context.Context, params Params) (Result, error) {
	if params.Label == nil || params.PublicKey == nil {
		return Result{}, resource.NewValidationError("label and public key are required for creating SSH keys")
	}
	if err := ValidatePublicKey(*params.PublicKey); err != nil {
		return Result{}, err
	}

	if r.dryRun {
		return Result{Changed: true}, nil
	}

	req := resource.Request{
		Path:    "ssh-keys",
		Timeout: requestTimeout,
		OK:      []int{http.StatusCreated},
	}
	key, err := r.keys.PostByID(ctx, nil, req, map[string]any{
		"label": *params.Label,
		"key":   *params.PublicKey,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Changed: true, Key: &key}, nil
}

func (r *Reconciler) update(ctx context.Context, params Params, id int) (Result, error) {
	if params.PublicKey != nil {
		if err := ValidatePublicKey(*params.PublicKey); err != nil {
			return Result{}, err
		}
	}

	if r.dryRun {
		return Result{Changed: true}, nil
	}

	body := map[string]any{}
	if params.Label != nil {
		body["label"] = *params.Label
	}
	if params.PublicKey != nil {
		body["key"] = *params.PublicKey
	}

	// The provider answers a successful key update with 201, not 200.
	req := resource.Request{
		Path:    "ssh-keys/{id}",
		Timeout: requestTimeout,
		OK:      []int{http.StatusCreated},
	}
	key, err := r.keys.PutByID(ctx, id, req, body)
	if err != nil {
		return Result{}, err
	}

	return Result{Changed: true, Key: &key}, nil
}

func (r *Reconciler) delete(ctx context.Context, id int) (Result, error) {
	if r.dryRun {
		return Result{Changed: true}, nil
	}

	req := resource.Request{
		Path:    "ssh-keys/{id}",
		Timeout: requestTimeout,
		OK:      []int{http.StatusNoContent},
	}
	if err := r.keys.DeleteByID(ctx, id, req); err != nil {
		return Result{}, err
	}

	return Result{Changed: true}, nil
}
