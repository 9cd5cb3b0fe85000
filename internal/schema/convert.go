package schema

// convert.go maps DKAN data dictionary field definitions onto Schema field
// descriptors. The type mapping is total: unrecognized dictionary types fall
// back to string rather than failing, so a dictionary revision that adds a
// new type never breaks existing importers.

import "strings"

// FieldDef is one field definition as delivered by the DKAN metastore.
type FieldDef struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Type        string            `json:"type"`
	Format      string            `json:"format"`
	Description string            `json:"description"`
	Constraints *FieldConstraints `json:"constraints"`
}

// FieldConstraints carries the subset of Frictionless constraints the
// importer enforces.
type FieldConstraints struct {
	Required bool `json:"required"`
}

// Convert builds a Schema from dictionary field definitions, preserving their
// order. The only possible failure is a duplicate field name.
func Convert(defs []FieldDef) (*Schema, error) {
	fields := make([]FieldDescriptor, 0, len(defs))
	for _, def := range defs {
		fields = append(fields, descriptorFor(def))
	}
	return New(fields)
}

// descriptorFor maps one dictionary field onto a descriptor.
func descriptorFor(def FieldDef) FieldDescriptor {
	fd := FieldDescriptor{
		Name:     def.Name,
		Title:    def.Title,
		Kind:     kindFor(def.Type),
		Required: isRequired(def),
		Format:   def.Format,
	}

	// Datetime fields default to the "date-time" format hint; "default" is
	// DKAN's placeholder for an unspecified format.
	if fd.Kind == KindDateTime && (fd.Format == "" || fd.Format == "default") {
		fd.Format = "date-time"
	}
	return fd
}

// kindFor maps a dictionary type label to a Kind. The mapping is total:
// any unrecognized label is a string field, never an error.
func kindFor(label string) Kind {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "integer":
		return KindInteger
	case "number", "float":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "datetime":
		return KindDateTime
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		return KindString
	}
}

// isRequired reports whether a field is mandatory. Dictionaries mark required
// fields either with an explicit constraint or with a trailing asterisk on
// the field name or title.
func isRequired(def FieldDef) bool {
	if def.Constraints != nil && def.Constraints.Required {
		return true
	}
	if strings.HasSuffix(strings.TrimRight(def.Name, " "), "*") {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(def.Title, " "), "*")
}
