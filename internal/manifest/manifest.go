package manifest

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"cherrysync/internal/project"
	"cherrysync/internal/resource"
	"cherrysync/internal/sshkey"
)

// Kinds recognized in manifest documents.
const (
	KindSSHKey  = "SSHKey"
	KindProject = "Project"
)

// Document is one YAML document of a manifest file: k8s-style type and
// object metadata plus a kind-specific spec.
type Document struct {
	APIVersion string            `yaml:"apiVersion"`
	Kind       string            `yaml:"kind"`
	Metadata   metav1.ObjectMeta `yaml:"metadata"`
	Spec       map[string]any    `yaml:"spec"`
}

// SSHKeyParams converts the document spec into reconciliation parameters.
// `label` falls back to its alias `name`, then to metadata.name;
// `publicKey` falls back to its alias `key`.
func (d Document) SSHKeyParams() (sshkey.Params, error) {
	if d.Kind != KindSSHKey {
		return sshkey.Params{}, fmt.Errorf("document %q is not a %s", d.Metadata.Name, KindSSHKey)
	}

	params := sshkey.Params{
		State:       resource.State(stringValue(d.Spec, "state")),
		Label:       stringPtr(d.Spec, "label", "name"),
		PublicKey:   stringPtr(d.Spec, "publicKey", "key"),
		ID:          intPtr(d.Spec, "id"),
		Fingerprint: stringPtr(d.Spec, "fingerprint"),
	}

	if params.Label == nil && d.Metadata.Name != "" {
		name := d.Metadata.Name
		params.Label = &name
	}

	return params, nil
}

// ProjectParams converts the document spec into reconciliation parameters.
// `name` falls back to metadata.name.
func (d Document) ProjectParams() (project.Params, error) {
	if d.Kind != KindProject {
		return project.Params{}, fmt.Errorf("document %q is not a %s", d.Metadata.Name, KindProject)
	}

	params := project.Params{
		State:  resource.State(stringValue(d.Spec, "state")),
		ID:     intPtr(d.Spec, "id"),
		TeamID: intPtr(d.Spec, "teamId", "team_id"),
		Name:   stringPtr(d.Spec, "name"),
		BGP:    boolPtr(d.Spec, "bgp"),
	}

	if params.Name == nil && d.Metadata.Name != "" {
		name := d.Metadata.Name
		params.Name = &name
	}

	return params, nil
}

func stringValue(spec map[string]any, keys ...string) string {
	if p := stringPtr(spec, keys...); p != nil {
		return *p
	}
	return ""
}

func stringPtr(spec map[string]any, keys ...string) *string {
	for _, key := range keys {
		if v, ok := spec[key].(string); ok {
			return &v
		}
	}
	return nil
}

func intPtr(spec map[string]any, keys ...string) *int {
	for _, key := range keys {
		switch v := spec[key].(type) {
		case int:
			return &v
		case uint64:
			i := int(v)
			return &i
		case int64:
			i := int(v)
			return &i
		case float64:
			i := int(v)
			return &i
		}
	}
	return nil
}

func boolPtr(spec map[string]any, keys ...string) *bool {
	for _, key := range keys {
		if v, ok := spec[key].(bool); ok {
			return &v
		}
	}
	return nil
}
