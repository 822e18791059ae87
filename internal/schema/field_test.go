package schema

import (
	"errors"
	"testing"
)

func TestNewField_Valid(t *testing.T) {
	tests := []struct {
		name         string
		fieldName    string
		position     int
		opts         []FieldOption
		wantPattern  string
		wantNullable bool
		wantDefault  bool
	}{
		{
			name:         "header with defaults",
			fieldName:    "id",
			position:     0,
			wantPattern:  DefaultPattern,
			wantNullable: false,
		},
		{
			name:         "inner field nullable by default",
			fieldName:    "note",
			position:     1,
			wantPattern:  DefaultPattern,
			wantNullable: true,
		},
		{
			name:         "inner field with pattern and default",
			fieldName:    "score",
			position:     2,
			opts:         []FieldOption{WithPattern("^[0-9]+$"), WithDefault("0")},
			wantPattern:  "^[0-9]+$",
			wantNullable: true,
			wantDefault:  true,
		},
		{
			name:         "nullable field with empty default",
			fieldName:    "nick",
			position:     3,
			opts:         []FieldOption{WithDefault("")},
			wantPattern:  DefaultPattern,
			wantNullable: true,
			wantDefault:  true,
		},
		{
			name:         "non-nullable inner field",
			fieldName:    "rank",
			position:     4,
			opts:         []FieldOption{WithNullable(false), WithDefault("recruit")},
			wantPattern:  DefaultPattern,
			wantNullable: false,
			wantDefault:  true,
		},
		{
			name:         "header explicitly non-nullable",
			fieldName:    "id",
			position:     0,
			opts:         []FieldOption{WithNullable(false)},
			wantPattern:  DefaultPattern,
			wantNullable: false,
		},
		{
			name:         "name with spaces",
			fieldName:    "display name",
			position:     5,
			wantPattern:  DefaultPattern,
			wantNullable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewField(tt.fieldName, tt.position, tt.opts...)
			if err != nil {
				t.Fatalf("NewField() error = %v", err)
			}
			if f.Name() != tt.fieldName {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.fieldName)
			}
			if f.Position() != tt.position {
				t.Errorf("Position() = %d, want %d", f.Position(), tt.position)
			}
			if f.Pattern() != tt.wantPattern {
				t.Errorf("Pattern() = %q, want %q", f.Pattern(), tt.wantPattern)
			}
			if f.Nullable() != tt.wantNullable {
				t.Errorf("Nullable() = %v, want %v", f.Nullable(), tt.wantNullable)
			}
			if f.HasDefault() != tt.wantDefault {
				t.Errorf("HasDefault() = %v, want %v", f.HasDefault(), tt.wantDefault)
			}
			if f.IsHeader() != (tt.position == HeaderPosition) {
				t.Errorf("IsHeader() = %v for position %d", f.IsHeader(), tt.position)
			}
		})
	}
}

func TestNewField_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		position  int
		opts      []FieldOption
	}{
		{"negative position", "id", -1, nil},
		{"empty name", "", 1, nil},
		{"name with delimiter", "a:b", 1, nil},
		{"empty pattern", "score", 1, []FieldOption{WithPattern("")}},
		{"pattern with delimiter", "score", 1, []FieldOption{WithPattern("^a:b$")}},
		{"pattern does not compile", "score", 1, []FieldOption{WithPattern("([")}},
		{"nullable header", "id", 0, []FieldOption{WithNullable(true)}},
		{"header with default", "id", 0, []FieldOption{WithDefault("x")}},
		{"header with empty default", "id", 0, []FieldOption{WithDefault("")}},
		{"default not matching pattern", "score", 1, []FieldOption{WithPattern("^[0-9]+$"), WithDefault("abc")}},
		{"empty default on non-nullable", "score", 1, []FieldOption{WithNullable(false), WithDefault("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewField(tt.fieldName, tt.position, tt.opts...)
			if err == nil {
				t.Fatalf("NewField() = %v, want error", f)
			}
			if !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestField_MatchIsWholeValue(t *testing.T) {
	f := MustField("score", 1, WithPattern("[0-9]+"))

	if !f.Match("42") {
		t.Error("Match(42) = false, want true")
	}
	if f.Match("42abc") {
		t.Error("Match(42abc) = true, want false (pattern must match the whole value)")
	}
}

func TestField_Equal(t *testing.T) {
	a := MustField("score", 1, WithPattern("^[0-9]+$"), WithDefault("0"))
	b := MustField("score", 1, WithPattern("^[0-9]+$"), WithDefault("0"))
	c := MustField("score", 1, WithPattern("^[0-9]+$"))

	if !a.Equal(b) {
		t.Error("identical fields should be equal")
	}
	if a.Equal(c) {
		t.Error("fields differing in default should not be equal")
	}
	if a.Equal(nil) {
		t.Error("field should not equal nil")
	}
}

func TestMustField_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustField with invalid input should panic")
		}
	}()
	MustField("", 0)
}
