package schema

import (
	"fmt"
	"strings"
)

// Entity is one record: one value per schema field, in position order.
// Its identity is the header value.
type Entity struct {
	schema *Schema
	fields []*EntityField
}

// Schema returns the schema the entity conforms to.
func (e *Entity) Schema() *Schema { return e.schema }

// Header returns the header value.
func (e *Entity) Header() string { return e.fields[0].value }

// Fields returns the entity fields in position order.
func (e *Entity) Fields() []*EntityField {
	out := make([]*EntityField, len(e.fields))
	copy(out, e.fields)
	return out
}

// Get returns the field bound to name.
func (e *Entity) Get(name string) (*EntityField, bool) {
	for _, ef := range e.fields {
		if ef.field.name == name {
			return ef, true
		}
	}
	return nil, false
}

// Value returns the value of the named field, or "" if there is none.
func (e *Entity) Value(name string) string {
	if ef, ok := e.Get(name); ok {
		return ef.value
	}
	return ""
}

// Values returns the field values keyed by field name.
func (e *Entity) Values() map[string]string {
	m := make(map[string]string, len(e.fields))
	for _, ef := range e.fields {
		m[ef.field.name] = ef.value
	}
	return m
}

// Set validates and replaces the value of an inner field.
// The header cannot be changed.
func (e *Entity) Set(name, value string) error {
	ef, err := e.innerField(name)
	if err != nil {
		return err
	}
	return ef.SetValue(value)
}

// Reset sets an inner field back to its default value.
func (e *Entity) Reset(name string) error {
	ef, err := e.innerField(name)
	if err != nil {
		return err
	}
	return ef.ResetValue()
}

func (e *Entity) innerField(name string) (*EntityField, error) {
	ef, ok := e.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, name)
	}
	if ef.field.IsHeader() {
		return nil, fmt.Errorf("%w: header %q cannot be changed", ErrValidation, name)
	}
	return ef, nil
}

// Encode joins the values with Delimiter into a single line.
func (e *Entity) Encode() (string, error) {
	values := make([]string, len(e.fields))
	for i, ef := range e.fields {
		if strings.Contains(ef.value, Delimiter) {
			return "", fmt.Errorf("%w: field %q: value %q contains %q", ErrValidation, ef.field.name, ef.value, Delimiter)
		}
		if strings.ContainsAny(ef.value, "\r\n") {
			return "", fmt.Errorf("%w: field %q: value contains a line break", ErrValidation, ef.field.name)
		}
		values[i] = ef.value
	}
	return strings.Join(values, Delimiter), nil
}

// Clone returns a deep copy that can be modified independently.
func (e *Entity) Clone() *Entity {
	efs := make([]*EntityField, len(e.fields))
	for i, ef := range e.fields {
		efs[i] = &EntityField{field: ef.field, value: ef.value}
	}
	return &Entity{schema: e.schema, fields: efs}
}

// Equal reports whether both entities have equal fields and values.
func (e *Entity) Equal(other *Entity) bool {
	if e == nil || other == nil {
		return e == other
	}
	if len(e.fields) != len(other.fields) {
		return false
	}
	for i := range e.fields {
		if !e.fields[i].Equal(other.fields[i]) {
			return false
		}
	}
	return true
}

func (e *Entity) String() string {
	parts := make([]string, len(e.fields))
	for i, ef := range e.fields {
		parts[i] = ef.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
