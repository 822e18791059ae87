// Package schema defines the fields that shape a record, the validated values
// bound to them, and the line encoding of whole records.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Delimiter separates field values within an encoded entity.
const Delimiter = ":"

// HeaderPosition is the position that marks a field as the header.
const HeaderPosition = 0

// DefaultPattern matches any non-empty text.
const DefaultPattern = "^.+$"

// Field is the immutable definition of one column of a record.
//
// A field at HeaderPosition is the header: it identifies its entity, is never
// nullable and never has a default value. Every other field is an inner field.
type Field struct {
	name       string
	pattern    string
	re         *regexp.Regexp
	position   int
	def        string
	hasDefault bool
	nullable   bool
}

// FieldOption configures optional attributes of a Field.
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	pattern     string
	hasPattern  bool
	def         string
	hasDefault  bool
	nullable    bool
	hasNullable bool
}

// WithPattern sets the regular expression values must match in full.
func WithPattern(pattern string) FieldOption {
	return func(o *fieldOptions) {
		o.pattern = pattern
		o.hasPattern = true
	}
}

// WithDefault sets the value used when a value is absent.
func WithDefault(value string) FieldOption {
	return func(o *fieldOptions) {
		o.def = value
		o.hasDefault = true
	}
}

// WithNullable sets whether the empty string is an acceptable value.
func WithNullable(nullable bool) FieldOption {
	return func(o *fieldOptions) {
		o.nullable = nullable
		o.hasNullable = true
	}
}

// NewField creates a field definition and checks its invariants.
// Inner fields are nullable unless WithNullable(false) is given; a header is
// never nullable.
func NewField(name string, position int, opts ...FieldOption) (*Field, error) {
	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}

	if position < HeaderPosition {
		return nil, fmt.Errorf("%w: field %q: position must be >= %d, got %d", ErrInvalidSchema, name, HeaderPosition, position)
	}
	if name == "" || strings.Contains(name, Delimiter) {
		return nil, fmt.Errorf("%w: field name %q must be non-empty and must not contain %q", ErrInvalidSchema, name, Delimiter)
	}

	pattern := DefaultPattern
	if o.hasPattern {
		if o.pattern == "" || strings.Contains(o.pattern, Delimiter) {
			return nil, fmt.Errorf("%w: field %q: pattern must be non-empty and must not contain %q", ErrInvalidSchema, name, Delimiter)
		}
		pattern = o.pattern
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: compiling pattern %q: %v", ErrInvalidSchema, name, pattern, err)
	}

	header := position == HeaderPosition
	nullable := !header
	if o.hasNullable {
		nullable = o.nullable
	}

	if header && nullable {
		return nil, fmt.Errorf("%w: header %q cannot be nullable", ErrInvalidSchema, name)
	}
	if header && o.hasDefault {
		return nil, fmt.Errorf("%w: header %q cannot have a default value", ErrInvalidSchema, name)
	}
	if o.hasDefault && o.def == "" && !nullable {
		return nil, fmt.Errorf("%w: field %q: default value cannot be empty when the field is not nullable", ErrInvalidSchema, name)
	}
	if o.hasDefault && o.def != "" && !re.MatchString(o.def) {
		return nil, fmt.Errorf("%w: field %q: default value %q does not match pattern %q", ErrInvalidSchema, name, o.def, pattern)
	}

	return &Field{
		name:       name,
		pattern:    pattern,
		re:         re,
		position:   position,
		def:        o.def,
		hasDefault: o.hasDefault,
		nullable:   nullable,
	}, nil
}

// MustField is like NewField but panics on error. Intended for fixed schemas
// declared at package level.
func MustField(name string, position int, opts ...FieldOption) *Field {
	f, err := NewField(name, position, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// compilePattern anchors the pattern so values are matched in full.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Pattern returns the validation pattern as declared.
func (f *Field) Pattern() string { return f.pattern }

// Position returns the column position of the field.
func (f *Field) Position() int { return f.position }

// Default returns the default value and whether one is declared.
func (f *Field) Default() (string, bool) { return f.def, f.hasDefault }

// Nullable reports whether the empty string is an acceptable value.
func (f *Field) Nullable() bool { return f.nullable }

// IsHeader reports whether the field is the header.
func (f *Field) IsHeader() bool { return f.position == HeaderPosition }

// HasDefault reports whether the field declares a default value.
func (f *Field) HasDefault() bool { return f.hasDefault }

// Match reports whether value matches the field pattern in full.
func (f *Field) Match(value string) bool {
	return f.re.MatchString(value)
}

// Equal reports whether two fields have identical attributes.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.name == other.name &&
		f.pattern == other.pattern &&
		f.position == other.position &&
		f.hasDefault == other.hasDefault &&
		f.def == other.def &&
		f.nullable == other.nullable
}

func (f *Field) String() string {
	return fmt.Sprintf("%s@%d", f.name, f.position)
}
