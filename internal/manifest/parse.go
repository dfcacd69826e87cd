package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/goccy/go-yaml"
)

// ParseOptions configure manifest loading.
type ParseOptions struct {
	Path       string
	ValuesPath string
}

// ParseFile loads a manifest file, renders it as a template against the
// optional values file, and decodes every YAML document in it.
func ParseFile(opts ParseOptions) ([]Document, error) {
	content, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	values := map[string]any{}
	if opts.ValuesPath != "" {
		valuesBytes, err := os.ReadFile(opts.ValuesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		if err := yaml.Unmarshal(valuesBytes, &values); err != nil {
			return nil, fmt.Errorf("failed to parse values file: %w", err)
		}
	}

	rendered, err := render(opts.Path, content, values)
	if err != nil {
		return nil, err
	}

	return Parse(rendered)
}

// render executes the manifest as a text template with the sprig function
// map. Unknown keys are an error so typos in value references fail loudly.
func render(name string, content []byte, values map[string]any) ([]byte, error) {
	tmpl, err := template.
		New(name).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	context := map[string]any{
		"Values": values,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return buf.Bytes(), nil
}

// Parse decodes every document of a rendered multi-document manifest.
func Parse(content []byte) ([]Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))

	var docs []Document
	for {
		var doc Document
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s", yaml.FormatError(err, true, true))
		}

		if doc.Kind == "" {
			continue
		}
		if doc.Kind != KindSSHKey && doc.Kind != KindProject {
			return nil, fmt.Errorf("unsupported kind %q in document %q", doc.Kind, doc.Metadata.Name)
		}

		docs = append(docs, doc)
	}

	return docs, nil
}
