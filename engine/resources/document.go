package resources

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrSchema is returned when a YAML file lacks required keys or has malformed fields.
var ErrSchema = errors.New("yaml schema violation")

// Document is a parsed YAML file. The tree is kept so callers can decode it into their own types.
type Document struct {
	path string
	root yaml.Node
}

// Path returns the file the document was read from.
func (d *Document) Path() string {
	return d.path
}

// Node returns the document node.
func (d *Document) Node() *yaml.Node {
	return &d.root
}

// Decode decodes the document into v with yaml.v3 rules.
func (d *Document) Decode(v any) error {
	if err := d.root.Decode(v); err != nil {
		return fmt.Errorf("yaml %s: %w", d.path, err)
	}
	return nil
}

// mapping returns the top-level mapping node, or nil when the document is not a mapping.
func (d *Document) mapping() *yaml.Node {
	n := &d.root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	return n
}

// Has reports whether the top-level mapping contains key.
func (d *Document) Has(key string) bool {
	m := d.mapping()
	if m == nil {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Require checks that every key is present at the top level.
//
// Parameters:
//   - keys: the required keys
//
// Returns:
//   - error: ErrSchema naming the missing keys, or nil
func (d *Document) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !d.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is missing %s", ErrSchema, d.path, strings.Join(missing, ", "))
	}
	return nil
}

// ReadDocument parses a YAML file and checks the required top-level keys.
//
// Parameters:
//   - path: the YAML file
//   - required: keys that must be present
//
// Returns:
//   - *Document: the parsed document
//   - error: a read or parse error, or ErrSchema
func ReadDocument(path string, required ...string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	d := &Document{path: path}
	if err := yaml.Unmarshal(data, &d.root); err != nil {
		return nil, fmt.Errorf("yaml %s: %w", path, err)
	}
	if err := d.Require(required...); err != nil {
		return nil, err
	}
	return d, nil
}
