package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// validIdentifier matches valid schema names (alphanumeric + underscore, must start with letter or underscore).
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Schema is an ordered set of fields with unique names and positions and
// exactly one header.
type Schema struct {
	name   string
	fields []*Field
	byName map[string]*Field
}

// New builds a schema from fields in any order. Fields are sorted by position.
func New(name string, fields ...*Field) (*Schema, error) {
	if !validIdentifier.MatchString(name) {
		return nil, fmt.Errorf("%w: schema name %q is not a valid identifier", ErrInvalidSchema, name)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: schema must have at least one field", ErrInvalidSchema)
	}

	sorted := make([]*Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].position < sorted[j].position })

	byName := make(map[string]*Field, len(sorted))
	positions := make(map[int]string, len(sorted))
	for _, f := range sorted {
		if f == nil {
			return nil, fmt.Errorf("%w: nil field", ErrInvalidSchema)
		}
		if _, dup := byName[f.name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, f.name)
		}
		if other, dup := positions[f.position]; dup {
			return nil, fmt.Errorf("%w: fields %q and %q share position %d", ErrInvalidSchema, other, f.name, f.position)
		}
		byName[f.name] = f
		positions[f.position] = f.name
	}

	if !sorted[0].IsHeader() {
		return nil, fmt.Errorf("%w: schema must have a header field at position %d", ErrInvalidSchema, HeaderPosition)
	}

	return &Schema{name: name, fields: sorted, byName: byName}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the fields in position order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Header returns the header field.
func (s *Schema) Header() *Field { return s.fields[0] }

// Field returns the field with the given name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Bind validates one value per field and returns the resulting entity.
// Fields missing from values are bound to their default.
func (s *Schema) Bind(values map[string]string) (*Entity, error) {
	for name := range values {
		if _, ok := s.byName[name]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, name)
		}
	}

	efs := make([]*EntityField, 0, len(s.fields))
	for _, f := range s.fields {
		var ef *EntityField
		var err error
		if v, ok := values[f.name]; ok {
			ef, err = NewEntityField(f, v)
		} else {
			ef, err = NewDefaultEntityField(f)
		}
		if err != nil {
			return nil, err
		}
		efs = append(efs, ef)
	}
	return &Entity{schema: s, fields: efs}, nil
}

// Decode parses one encoded line back into an entity, re-validating every
// value against its field.
func (s *Schema) Decode(line string) (*Entity, error) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != len(s.fields) {
		return nil, fmt.Errorf("%w: line has %d values, schema %q has %d fields", ErrValidation, len(parts), s.name, len(s.fields))
	}

	efs := make([]*EntityField, len(parts))
	for i, f := range s.fields {
		ef, err := NewEntityField(f, parts[i])
		if err != nil {
			return nil, err
		}
		efs[i] = ef
	}
	return &Entity{schema: s, fields: efs}, nil
}

// HeaderOf returns the header value of an encoded line without validating
// the rest of it.
func HeaderOf(line string) string {
	header, _, _ := strings.Cut(line, Delimiter)
	return header
}
