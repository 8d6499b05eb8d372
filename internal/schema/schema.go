// Package schema holds the passive data the export engine runs on: the
// fixed-width output table schemas, the tax-grid mapping table, and the
// declaration rule table. All of it is loaded once per run from JSON template
// files and treated as immutable afterwards.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Field type names as they appear in the template files. The vocabulary is
// shared with the upstream ledger export, hence the dataframe-flavored names.
const (
	TypeFloat  = "float64"
	TypeInt    = "int64"
	TypeString = "object"
)

// Field describes one column of a fixed-width output table.
type Field struct {
	// ID is the ordering id. Fields are emitted in ascending ID order and
	// the tax-grid mapping table addresses fields by this id.
	ID int `json:"id"`

	// Name is the internal column name, unique within the schema.
	Name string `json:"internal_name"`

	// Type is the semantic type: float64, int64 or object.
	Type string `json:"type"`

	// IsAmount marks monetary fields. They behave like float64 fields but
	// carry the fixed-point formatting contract of the authority format.
	IsAmount bool `json:"is_amount,omitempty"`

	// Length is the exact output width in characters. Mandatory.
	Length int `json:"length"`

	// Decimals overrides the decimal count for amount/float fields.
	Decimals *int `json:"decimals,omitempty"`

	// Align overrides the default alignment ("left" or "right").
	Align string `json:"align,omitempty"`

	// FillChar overrides the default padding character.
	FillChar string `json:"fill_char,omitempty"`
}

// DecimalPlaces returns the decimal count for this field, defaulting to 2.
func (f *Field) DecimalPlaces() int {
	if f.Decimals == nil {
		return 2
	}
	return *f.Decimals
}

// Numeric reports whether the field holds a number of any kind.
func (f *Field) Numeric() bool {
	return f.IsAmount || f.Type == TypeFloat || f.Type == TypeInt
}

// Schema describes one output table.
type Schema struct {
	Name   string  `json:"schema_name"`
	Fields []Field `json:"fields"`
}

// ParseSchema decodes and validates a schema definition.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the structural invariants of the schema: at least one
// field, a declared width on every field, and unique ordering ids.
func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return &SchemaError{Schema: s.Name, Err: ErrNoFields}
	}
	seen := make(map[int]string, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Length <= 0 {
			return &SchemaError{Schema: s.Name, Field: f.Name, Err: ErrMissingLength}
		}
		if prev, ok := seen[f.ID]; ok {
			return &SchemaError{
				Schema: s.Name,
				Field:  fmt.Sprintf("%s/%s", prev, f.Name),
				Err:    ErrDuplicateFieldID,
			}
		}
		seen[f.ID] = f.Name
	}
	return nil
}

// OrderedFields returns the fields sorted by ascending ordering id. The
// physical column order of every output line follows this ordering.
func (s *Schema) OrderedFields() []Field {
	fields := make([]Field, len(s.Fields))
	copy(fields, s.Fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].ID < fields[j].ID })
	return fields
}

// FieldByName returns the field with the given internal name.
func (s *Schema) FieldByName(name string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// HasField reports whether the schema declares the given internal name.
func (s *Schema) HasField(name string) bool {
	_, ok := s.FieldByName(name)
	return ok
}

// NamesByID returns a lookup from ordering id to internal name.
func (s *Schema) NamesByID() map[int]string {
	names := make(map[int]string, len(s.Fields))
	for i := range s.Fields {
		names[s.Fields[i].ID] = s.Fields[i].Name
	}
	return names
}

// LineWidth returns the total width of one encoded line of this schema.
func (s *Schema) LineWidth() int {
	width := 0
	for i := range s.Fields {
		width += s.Fields[i].Length
	}
	return width
}
