package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldDef is the file representation of a Field.
type FieldDef struct {
	Name     string  `yaml:"name" json:"name"`
	Pattern  string  `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Position int     `yaml:"position" json:"position"`
	Default  *string `yaml:"default,omitempty" json:"default,omitempty"`
	Nullable *bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
}

// Definition is the file representation of a Schema.
type Definition struct {
	Name   string     `yaml:"name" json:"name"`
	Fields []FieldDef `yaml:"fields" json:"fields"`
}

// ParseFile loads a schema file. YAML and JSON are both accepted.
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema definition.
func Parse(data []byte) (*Schema, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	return def.Build()
}

// Build validates the definition and returns the schema it describes.
func (d *Definition) Build() (*Schema, error) {
	fields := make([]*Field, 0, len(d.Fields))
	for _, fd := range d.Fields {
		var opts []FieldOption
		if fd.Pattern != "" {
			opts = append(opts, WithPattern(fd.Pattern))
		}
		if fd.Default != nil {
			opts = append(opts, WithDefault(*fd.Default))
		}
		if fd.Nullable != nil {
			opts = append(opts, WithNullable(*fd.Nullable))
		}
		f, err := NewField(fd.Name, fd.Position, opts...)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return New(d.Name, fields...)
}

// Definition returns the file representation of the schema.
func (s *Schema) Definition() *Definition {
	def := &Definition{Name: s.name}
	for _, f := range s.fields {
		fd := FieldDef{Name: f.name, Position: f.position}
		if f.pattern != DefaultPattern {
			fd.Pattern = f.pattern
		}
		if f.hasDefault {
			v := f.def
			fd.Default = &v
		}
		if !f.IsHeader() {
			n := f.nullable
			fd.Nullable = &n
		}
		def.Fields = append(def.Fields, fd)
	}
	return def
}

// Rename returns a copy of the schema under a different name.
func (s *Schema) Rename(name string) (*Schema, error) {
	return New(name, s.fields...)
}
