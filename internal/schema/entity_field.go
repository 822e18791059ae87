package schema

import "fmt"

// EntityField is a Field bound to a validated value.
type EntityField struct {
	field *Field
	value string
}

// NewEntityField binds value to f.
func NewEntityField(f *Field, value string) (*EntityField, error) {
	v, err := validateValue(f, &value)
	if err != nil {
		return nil, err
	}
	return &EntityField{field: f, value: v}, nil
}

// NewDefaultEntityField binds f to its default value. It fails when the field
// has no default.
func NewDefaultEntityField(f *Field) (*EntityField, error) {
	v, err := validateValue(f, nil)
	if err != nil {
		return nil, err
	}
	return &EntityField{field: f, value: v}, nil
}

// validateValue returns the value to store for f, where a nil value means
// the value is absent.
func validateValue(f *Field, value *string) (string, error) {
	switch {
	case value == nil:
		if !f.hasDefault {
			return "", fmt.Errorf("%w: field %q has no default value", ErrValidation, f.name)
		}
		return f.def, nil
	case *value == "":
		if !f.nullable {
			return "", fmt.Errorf("%w: field %q cannot be empty", ErrValidation, f.name)
		}
		return "", nil
	default:
		if !f.re.MatchString(*value) {
			return "", fmt.Errorf("%w: field %q: value %q does not match pattern %q", ErrValidation, f.name, *value, f.pattern)
		}
		return *value, nil
	}
}

// Field returns the definition this value is bound to.
func (ef *EntityField) Field() *Field { return ef.field }

// Name returns the name of the underlying field.
func (ef *EntityField) Name() string { return ef.field.name }

// Value returns the current value.
func (ef *EntityField) Value() string { return ef.value }

// SetValue validates value and replaces the current value. On error the
// current value is left untouched.
func (ef *EntityField) SetValue(value string) error {
	v, err := validateValue(ef.field, &value)
	if err != nil {
		return err
	}
	ef.value = v
	return nil
}

// ResetValue sets the value to the field default.
func (ef *EntityField) ResetValue() error {
	v, err := validateValue(ef.field, nil)
	if err != nil {
		return err
	}
	ef.value = v
	return nil
}

// IsEmpty reports whether the value is the empty string.
func (ef *EntityField) IsEmpty() bool { return ef.value == "" }

// IsDefault reports whether the value equals the field default.
func (ef *EntityField) IsDefault() bool {
	return ef.field.hasDefault && ef.value == ef.field.def
}

// Equal reports whether both fields and values are identical.
func (ef *EntityField) Equal(other *EntityField) bool {
	if ef == nil || other == nil {
		return ef == other
	}
	return ef.field.Equal(other.field) && ef.value == other.value
}

func (ef *EntityField) String() string {
	return fmt.Sprintf("(%s, %s)", ef.field.name, ef.value)
}
