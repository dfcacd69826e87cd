package project

import (
	"context"
	"net/http"

	"cherrysync/internal/client"
	"cherrysync/internal/resource"
)

// Params are the declared parameters for one project reconciliation. A
// project is identified by id, or by name within a team.
type Params struct {
	State  resource.State
	ID     *int
	TeamID *int
	Name   *string
	BGP    *bool
}

// Result reports the outcome of one project reconciliation.
type Result struct {
	Changed bool     `json:"changed"`
	Project *Project `json:"cherryservers_project,omitempty"`
}

// Reconciler applies the minimal state transition for a project.
type Reconciler struct {
	projects *Manager
	dryRun   bool
}

// NewReconciler creates a project Reconciler on top of the given API client.
func NewReconciler(api client.Client, dryRun bool) *Reconciler {
	return &Reconciler{projects: NewManager(api), dryRun: dryRun}
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
	return Result{Changed: false, Project: found}, nil
}

// lookup resolves by id when supplied, otherwise by name within the team.
func (r *Reconciler) lookup(ctx context.Context, params Params) (*Project, error) {
	if params.ID != nil {
		return r.projects.TryGetByID(ctx, *params.ID)
	}

	if params.Name == nil || params.TeamID == nil {
		return nil, nil
	}

	candidates, err := r.projects.GetByParentID(ctx, *params.TeamID)
	if err != nil {
		return nil, err
	}

	var matches []Project
	for _, p := range candidates {
		if p.Name == *params.Name {
			matches = append(matches, p)
		}
	}
	if len(matches) > 1 {
		return nil, resource.NewAmbiguityError("project", len(matches))
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func diff(params Params, current Project) bool {
	if params.Name != nil && *params.Name != current.Name {
		return true
	}
	if params.BGP != nil && *params.BGP != current.BGP.Enabled {
		return true
	}
	return false
}

func (r *Reconciler) create(ctx context.Context, params Params) (Result, error) {
	if params.Name == nil || params.TeamID == nil {
		return Result{}, resource.NewValidationError("name and team_id are required for creating projects")
	}

	if r.dryRun {
		return Result{Changed: true}, nil
	}

	body := map[string]any{"name": *params.Name}
	if params.BGP != nil {
		body["bgp"] = *params.BGP
	}

	req := resource.Request{
		Path:    "teams/{id}/projects",
		Timeout: requestTimeout,
		OK:      []int{http.StatusCreated},
	}
	created, err := r.projects.PostByID(ctx, *params.TeamID, req, body)
	if err != nil {
		return Result{}, err
	}

	// The creation response is incomplete; fetch the full record.
	full, err := r.projects.GetByID(ctx, created.ID)
	if err != nil {
		return Result{}, err
	}

	return Result{Changed: true, Project: &full}, nil
}

func (r *Reconciler) update(ctx context.Context, params Params, id int) (Result, error) {
	if r.dryRun {
		return Result{Changed: true}, nil
	}

	body := map[string]any{}
	if params.Name != nil {
		body["name"] = *params.Name
	}
	if params.BGP != nil {
		body["bgp"] = *params.BGP
	}

	req := resource.Request{
		Path:    "projects/{id}",
		Timeout: requestTimeout,
		OK:      []int{http.StatusOK, http.StatusCreated},
	}
	if _, err := r.projects.PutByID(ctx, id, req, body); err != nil {
		return Result{}, err
	}

	full, err := r.projects.GetByID(ctx, id)
	if err != nil {
		return Result{}, err
	}

	return Result{Changed: true, Project: &full}, nil
}

func (r *Reconciler) delete(ctx context.Context, id int) (Result, error) {
	if r.dryRun {
		return Result{Changed: true}, nil
	}

	req := resource.Request{
		Path:    "projects/{id}",
		Timeout: requestTimeout,
		OK:      []int{http.StatusNoContent},
	}
	if err := r.projects.DeleteByID(ctx, id, req); err != nil {
		return Result{}, err
	}

	return Result{Changed: true}, nil
}
