package project

import (
	"net/http"
	"time"

	"cherrysync/internal/client"
	"cherrysync/internal/resource"
)

const requestTimeout = 10 * time.Second

// BGP is the BGP configuration slice of a project record.
type BGP struct {
	Enabled  bool `json:"enabled"`
	LocalASN int  `json:"local_asn"`
}

// Project is the canonical project record.
type Project struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	BGP  BGP    `json:"bgp"`
	Href string `json:"href"`
}

type definition struct{}

func (definition) Name() string {
	return "project"
}

func (definition) Normalize(raw map[string]any) Project {
	p := Project{}
	if v, ok := raw["id"].(float64); ok {
		p.ID = int(v)
	}
	if v, ok := raw["name"].(string); ok {
		p.Name = v
	}
	if v, ok := raw["href"].(string); ok {
		p.Href = v
	}
	if bgp, ok := raw["bgp"].(map[string]any); ok {
		if v, ok := bgp["enabled"].(bool); ok {
			p.BGP.Enabled = v
		}
		if v, ok := bgp["local_asn"].(float64); ok {
			p.BGP.LocalASN = int(v)
		}
	}
	return p
}

func (definition) GetByID() resource.Request {
	return resource.Request{
		Path:    "projects/{id}",
		Timeout: requestTimeout,
		OK:      []int{http.StatusOK},
	}
}

func (definition) GetByParentID() resource.Request {
	return resource.Request{
		Path:    "teams/{id}/projects",
		Timeout: requestTimeout,
		OK:      []int{http.StatusOK},
	}
}

// Manager gives CRUD access to projects. Projects hang off a team, so the
// parent id in listing requests is a team id.
type Manager struct {
	*resource.Manager[Project]
}

// NewManager creates a project manager on top of the given API client.
func NewManager(api client.Client) *Manager {
	return &Manager{Manager: resource.NewManager[Project](definition{}, api)}
}
