// Package schema converts DKAN data dictionary definitions into the field
// schema that drives validation, coercion, and CSV output.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the target type of a schema field.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindBoolean
	KindDateTime
	KindArray
	KindObject
)

// String returns the dictionary-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "datetime"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "string"
	}
}

// FieldDescriptor defines the typed constraint for a single field.
// Immutable once the Schema is built.
type FieldDescriptor struct {
	Name     string // machine name, used as CSV output header
	Title    string // display title, matches spreadsheet headers
	Kind     Kind
	Required bool
	Format   string // format hint, e.g. "date-time"
}

// Schema is an ordered, name-unique sequence of field descriptors plus a
// lookup index from normalized header (title or name) to field position.
type Schema struct {
	fields []FieldDescriptor
	index  map[string]int
}

// DuplicateFieldError reports a field name that appears more than once in the
// source dictionary. This is the only failure mode of schema construction.
type DuplicateFieldError struct {
	Name string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field name %q in data dictionary", e.Name)
}

// New builds a Schema from descriptors, preserving their order.
// Returns a DuplicateFieldError if two descriptors share a name.
func New(fields []FieldDescriptor) (*Schema, error) {
	s := &Schema{
		fields: make([]FieldDescriptor, len(fields)),
		index:  make(map[string]int, len(fields)*2),
	}
	copy(s.fields, fields)

	seen := make(map[string]struct{}, len(fields))
	for i, fd := range s.fields {
		if _, dup := seen[fd.Name]; dup {
			return nil, &DuplicateFieldError{Name: fd.Name}
		}
		seen[fd.Name] = struct{}{}

		// Titles win over names on collision so that spreadsheet headers,
		// which carry titles, resolve to the right field.
		if _, ok := s.index[NormalizeHeader(fd.Name)]; !ok {
			s.index[NormalizeHeader(fd.Name)] = i
		}
		if fd.Title != "" {
			s.index[NormalizeHeader(fd.Title)] = i
		}
	}
	return s, nil
}

// Fields returns the descriptors in schema order.
// The returned slice must not be modified.
func (s *Schema) Fields() []FieldDescriptor {
	return s.fields
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Names returns the machine names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, fd := range s.fields {
		names[i] = fd.Name
	}
	return names
}

// Lookup resolves a normalized spreadsheet header to its descriptor.
func (s *Schema) Lookup(header string) (FieldDescriptor, bool) {
	i, ok := s.index[NormalizeHeader(header)]
	if !ok {
		return FieldDescriptor{}, false
	}
	return s.fields[i], true
}

// NormalizeHeader canonicalizes a header or field label for matching:
// control characters become spaces, runs of whitespace collapse to one space,
// the result is trimmed, and spaces before trailing asterisks are removed so
// "Sample ID *" and "Sample ID*" compare equal.
func NormalizeHeader(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r < 0x20 || r == 0x7f {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")

	// Pull trailing asterisks tight against the label.
	trimmed := strings.TrimRight(normalized, "*")
	if trimmed == normalized {
		return normalized
	}
	stars := normalized[len(trimmed):]
	return strings.TrimRight(trimmed, " ") + stars
}
