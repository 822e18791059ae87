package schema

import (
	"errors"
	"testing"
)

func TestNewDefaultEntityField(t *testing.T) {
	withDefault := MustField("score", 1, WithPattern("^[0-9]+$"), WithDefault("0"))
	ef, err := NewDefaultEntityField(withDefault)
	if err != nil {
		t.Fatalf("NewDefaultEntityField() error = %v", err)
	}
	if ef.Value() != "0" {
		t.Errorf("Value() = %q, want %q", ef.Value(), "0")
	}
	if !ef.IsDefault() {
		t.Error("IsDefault() = false, want true")
	}

	withoutDefault := MustField("name", 2)
	if _, err := NewDefaultEntityField(withoutDefault); !errors.Is(err, ErrValidation) {
		t.Errorf("absent value without default: error = %v, want ErrValidation", err)
	}

	header := MustField("id", 0)
	if _, err := NewDefaultEntityField(header); !errors.Is(err, ErrValidation) {
		t.Errorf("absent header value: error = %v, want ErrValidation", err)
	}
}

func TestNewEntityField_Empty(t *testing.T) {
	nullable := MustField("note", 1)
	ef, err := NewEntityField(nullable, "")
	if err != nil {
		t.Fatalf("empty value on nullable field: %v", err)
	}
	if !ef.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}

	// Empty is accepted regardless of pattern when nullable
	patterned := MustField("score", 2, WithPattern("^[0-9]+$"))
	if _, err := NewEntityField(patterned, ""); err != nil {
		t.Errorf("empty value on nullable patterned field: %v", err)
	}

	for _, f := range []*Field{
		MustField("id", 0),
		MustField("rank", 3, WithNullable(false)),
	} {
		if _, err := NewEntityField(f, ""); !errors.Is(err, ErrValidation) {
			t.Errorf("empty value on non-nullable %s: error = %v, want ErrValidation", f, err)
		}
	}
}

func TestNewEntityField_Pattern(t *testing.T) {
	f := MustField("score", 1, WithPattern("^[0-9]+$"))

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"0", false},
		{"42", false},
		{"007", false},
		{"-1", true},
		{"4.2", true},
		{"abc", true},
		{" 42", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			ef, err := NewEntityField(f, tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("NewEntityField(%q) error = %v, want ErrValidation", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEntityField(%q) error = %v", tt.value, err)
			}
			if ef.Value() != tt.value {
				t.Errorf("Value() = %q, want %q", ef.Value(), tt.value)
			}
		})
	}
}

func TestEntityField_SetValueDoesNotMutateOnError(t *testing.T) {
	f := MustField("score", 1, WithPattern("^[0-9]+$"), WithNullable(false), WithDefault("0"))
	ef, err := NewEntityField(f, "10")
	if err != nil {
		t.Fatalf("NewEntityField() error = %v", err)
	}

	if err := ef.SetValue("ten"); !errors.Is(err, ErrValidation) {
		t.Errorf("SetValue(ten) error = %v, want ErrValidation", err)
	}
	if err := ef.SetValue(""); !errors.Is(err, ErrValidation) {
		t.Errorf("SetValue(\"\") error = %v, want ErrValidation", err)
	}
	if ef.Value() != "10" {
		t.Errorf("Value() after failed SetValue = %q, want %q", ef.Value(), "10")
	}

	if err := ef.SetValue("11"); err != nil {
		t.Fatalf("SetValue(11) error = %v", err)
	}
	if ef.Value() != "11" {
		t.Errorf("Value() = %q, want %q", ef.Value(), "11")
	}

	if err := ef.ResetValue(); err != nil {
		t.Fatalf("ResetValue() error = %v", err)
	}
	if !ef.IsDefault() {
		t.Errorf("IsDefault() after ResetValue = false (value %q)", ef.Value())
	}
}

func TestEntityField_ResetValueWithoutDefault(t *testing.T) {
	f := MustField("name", 1)
	ef, err := NewEntityField(f, "alice")
	if err != nil {
		t.Fatalf("NewEntityField() error = %v", err)
	}
	if err := ef.ResetValue(); !errors.Is(err, ErrValidation) {
		t.Errorf("ResetValue() error = %v, want ErrValidation", err)
	}
	if ef.Value() != "alice" {
		t.Errorf("Value() = %q, want %q", ef.Value(), "alice")
	}
}

func TestEntityField_IsDefaultWithoutDefault(t *testing.T) {
	ef, err := NewEntityField(MustField("note", 1), "")
	if err != nil {
		t.Fatalf("NewEntityField() error = %v", err)
	}
	if ef.IsDefault() {
		t.Error("IsDefault() = true for a field without a default")
	}
}

func TestEntityField_Equal(t *testing.T) {
	f := MustField("score", 1, WithPattern("^[0-9]+$"))
	g := MustField("score", 1, WithPattern("^[0-9]*$"))

	a, _ := NewEntityField(f, "1")
	b, _ := NewEntityField(f, "1")
	c, _ := NewEntityField(f, "2")
	d, _ := NewEntityField(g, "1")

	if !a.Equal(b) {
		t.Error("same field and value should be equal")
	}
	if a.Equal(c) {
		t.Error("different values should not be equal")
	}
	if a.Equal(d) {
		t.Error("different field patterns should not be equal")
	}
	if got := a.String(); got != "(score, 1)" {
		t.Errorf("String() = %q, want %q", got, "(score, 1)")
	}
}
