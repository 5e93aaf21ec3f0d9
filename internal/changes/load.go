package changes

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a change set bundled with the version labels it was produced for.
type Document struct {
	From    Version   `yaml:"from" json:"from"`
	To      Version   `yaml:"to" json:"to"`
	Changes ChangeSet `yaml:"changes" json:"changes"`
}

// Decode reads a bare change set (module -> category -> kind -> name -> record)
// from YAML or JSON and validates it.
func Decode(r io.Reader) (ChangeSet, error) {
	var cs ChangeSet
	if err := yaml.NewDecoder(r).Decode(&cs); err != nil {
		if err == io.EOF {
			return ChangeSet{}, nil
		}
		return nil, fmt.Errorf("failed to parse change set: %w", err)
	}
	if cs == nil {
		cs = ChangeSet{}
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Load reads a change set file. Both the bare form and the Document wrapper
// are accepted; labels from a wrapper are discarded.
func Load(path string) (ChangeSet, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Changes, nil
}

// LoadDocument reads a change set file. A bare change set yields a Document
// with empty version labels.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read change set: %w", err)
	}
	return DecodeDocument(data)
}

// DecodeDocument decodes either form from raw bytes.
func DecodeDocument(data []byte) (*Document, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse change set: %w", err)
	}

	if isWrapped(probe) {
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse change set document: %w", err)
		}
		if doc.Changes == nil {
			doc.Changes = ChangeSet{}
		}
		if err := doc.Changes.Validate(); err != nil {
			return nil, err
		}
		return &doc, nil
	}

	cs, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Document{Changes: cs}, nil
}

// isWrapped reports whether the top level looks like a Document rather than
// a module map. Module names are package identifiers like "vendor/name", so
// a top-level "changes" key holding a mapping is unambiguous.
func isWrapped(probe map[string]yaml.Node) bool {
	node, ok := probe["changes"]
	if !ok || node.Kind != yaml.MappingNode {
		return false
	}
	for key := range probe {
		switch key {
		case "from", "to", "changes":
		default:
			return false
		}
	}
	return true
}
