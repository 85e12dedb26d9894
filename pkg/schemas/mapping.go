package schemas

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	MappingSchemaVersionV1 = "1.0"
)

// ErrInvalidMapping is returned when a mapping file fails validation.
var ErrInvalidMapping = errors.New("invalid mapping file")

// MappingFile represents the top-level YAML file.
type MappingFile struct {
	SchemaVersion string           `yaml:"schemaVersion"`
	Ecommerce     EcommerceMapping `yaml:"ecommerce"`
}

// EcommerceMapping translates GA4 e-commerce event names into the engagement
// platform's e-commerce taxonomy.
type EcommerceMapping struct {
	// Namespace prefixes every mapped target, joined with a dot.
	Namespace string `yaml:"namespace"`
	// Triggers are substrings that mark an event name as e-commerce.
	Triggers []string       `yaml:"triggers"`
	Events   []EventMapping `yaml:"events"`
}

type EventMapping struct {
	Source []string `yaml:"source"`
	Target string   `yaml:"target"`
}

// DefaultMapping returns the built-in GA4 to Braze e-commerce table.
func DefaultMapping() MappingFile {
	return MappingFile{
		SchemaVersion: MappingSchemaVersionV1,
		Ecommerce: EcommerceMapping{
			Namespace: "ecommerce",
			Triggers: []string{
				"view_item", "add_to_cart", "begin_checkout", "remove_from_cart", "view_cart",
				"select_item", "purchase", "order_placed", "refund",
			},
			Events: []EventMapping{
				{Source: []string{"select_item"}, Target: "product_clicked"},
				{Source: []string{"view_item"}, Target: "product_viewed"},
				{Source: []string{"add_to_cart"}, Target: "product_added_to_cart"},
				{Source: []string{"remove_from_cart"}, Target: "product_removed_from_cart"},
				{Source: []string{"view_cart"}, Target: "cart_viewed"},
				{Source: []string{"begin_checkout"}, Target: "checkout_started"},
				{Source: []string{"add_payment_info", "add_shipping_info"}, Target: "order_placed"},
				{Source: []string{"refund"}, Target: "purchase_refunded"},
			},
		},
	}
}

// LoadMappingFile reads a YAML mapping file. Sections left out of the file
// keep their DefaultMapping values.
func LoadMappingFile(path string) (MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MappingFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes and validates a YAML mapping document. The document
// must state its schemaVersion; the defaults never supply it.
func ParseMapping(data []byte) (MappingFile, error) {
	var head struct {
		SchemaVersion string `yaml:"schemaVersion"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return MappingFile{}, fmt.Errorf("decode mapping: %w", err)
	}
	if head.SchemaVersion != MappingSchemaVersionV1 {
		return MappingFile{}, fmt.Errorf("schemaVersion %q is not supported: %w", head.SchemaVersion, ErrInvalidMapping)
	}

	m := DefaultMapping()
	if err := yaml.Unmarshal(data, &m); err != nil {
		return MappingFile{}, fmt.Errorf("decode mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return MappingFile{}, err
	}
	return m, nil
}

// Validate checks the schema version and that every source name maps to
// exactly one target.
func (m MappingFile) Validate() error {
	if m.SchemaVersion != MappingSchemaVersionV1 {
		return fmt.Errorf("schemaVersion %q is not supported: %w", m.SchemaVersion, ErrInvalidMapping)
	}
	seen := make(map[string]struct{})
	for i, ev := range m.Ecommerce.Events {
		if strings.TrimSpace(ev.Target) == "" {
			return fmt.Errorf("events[%d]: empty target: %w", i, ErrInvalidMapping)
		}
		if len(ev.Source) == 0 {
			return fmt.Errorf("events[%d]: no source names: %w", i, ErrInvalidMapping)
		}
		for _, src := range ev.Source {
			if _, dup := seen[src]; dup {
				return fmt.Errorf("events[%d]: duplicate source %q: %w", i, src, ErrInvalidMapping)
			}
			seen[src] = struct{}{}
		}
	}
	for i, t := range m.Ecommerce.Triggers {
		if t == "" {
			return fmt.Errorf("triggers[%d]: empty trigger: %w", i, ErrInvalidMapping)
		}
	}
	return nil
}

// IsEcommerce reports whether name contains any trigger (case-sensitive).
func (e EcommerceMapping) IsEcommerce(name string) bool {
	for _, t := range e.Triggers {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// Resolve returns the namespaced target for an exact source match, or name
// unchanged when nothing matches.
func (e EcommerceMapping) Resolve(name string) string {
	for _, ev := range e.Events {
		for _, src := range ev.Source {
			if src != name {
				continue
			}
			if e.Namespace == "" {
				return ev.Target
			}
			return e.Namespace + "." + ev.Target
		}
	}
	return name
}
