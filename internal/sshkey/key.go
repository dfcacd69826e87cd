package sshkey

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/ssh"

	"cherrysync/internal/client"
	"cherrysync/internal/resource"
)

const requestTimeout = 10 * time.Second

// Key is the canonical SSH key record. Normalization always yields this
// field set regardless of the raw provider response shape.
type Key struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Key         string `json:"key"`
	Fingerprint string `json:"fingerprint"`
	Created     string `json:"created"`
	Updated     string `json:"updated"`
	Href        string `json:"href"`
}

type definition struct{}

func (definition) Name() string {
	return "ssh key"
}

// Normalize picks the canonical fields out of the raw provider dict. The raw
// response also carries a `user` field echoing every key the user owns; it
// is dropped here.
func (definition) Normalize(raw map[string]any) Key {
	return Key{
		ID:          intField(raw, "id"),
		Label:       stringField(raw, "label"),
		Key:         stringField(raw, "key"),
		Fingerprint: stringField(raw, "fingerprint"),
		Created:     stringField(raw, "created"),
		Updated:     stringField(raw, "updated"),
		Href:        stringField(raw, "href"),
	}
}

func (definition) GetByID() resource.Request {
	return resource.Request{
		Path:    "ssh-keys/{id}",
		Timeout: requestTimeout,
		OK:      []int{http.StatusOK},
	}
}

func (definition) GetByParentID() resource.Request {
	return resource.Request{
		Path:    "projects/{id}/ssh-keys",
		Timeout: requestTimeout,
		OK:      []int{http.StatusOK},
	}
}

func intField(raw map[string]any, key string) int {
	if v, ok := raw[key].(float64); ok {
		return int(v)
	}
	return 0
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// Manager gives CRUD access to SSH keys plus collection-wide listing.
type Manager struct {
	*resource.Manager[Key]
}

// NewManager creates an SSH key manager on top of the given API client.
func NewManager(api client.Client) *Manager {
	return &Manager{Manager: resource.NewManager[Key](definition{}, api)}
}

// All lists every SSH key on the account.
func (m *Manager) All(ctx context.Context) ([]Key, error) {
	req := resource.Request{
		Path:    "ssh-keys",
		Timeout: requestTimeout,
		OK:      []int{http.StatusOK},
	}
	return m.ListAt(ctx, req)
}

// Filter selects SSH keys from a listing. Every supplied field must match.
type Filter struct {
	ID          *int
	Fingerprint *string
	Label       *string
	PublicKey   *string
}

func (f Filter) matches(k Key) bool {
	if f.ID != nil && *f.ID != k.ID {
		return false
	}
	if f.Fingerprint != nil && *f.Fingerprint != k.Fingerprint {
		return false
	}
	if f.Label != nil && *f.Label != k.Label {
		return false
	}
	if f.PublicKey != nil && *f.PublicKey != k.Key {
		return false
	}
	return true
}

// Find lists every SSH key and keeps those matching the filter.
func (m *Manager) Find(ctx context.Context, f Filter) ([]Key, error) {
	keys, err := m.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if f.matches(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Fingerprint computes the MD5 colon fingerprint of an OpenSSH public key,
// the format Cherry Servers reports.
func Fingerprint(publicKey string) (string, error) {
	pk, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKey))
	if err != nil {
		return "", fmt.Errorf("parse public key: %w", err)
	}
	return ssh.FingerprintLegacyMD5(pk), nil
}

// ValidatePublicKey rejects material that does not parse as an OpenSSH
// authorized key, before any request is sent.
func ValidatePublicKey(publicKey string) error {
	if _, err := Fingerprint(publicKey); err != nil {
		return resource.NewValidationError("invalid public key: %v", err)
	}
	return nil
}
