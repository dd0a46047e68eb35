package schema

import (
	"iter"
	"strings"

	"github.com/goccy/go-json"

	"duck-projection/internal/domain"
)

// Schema is an immutable, ordered list of fields. It is produced exactly once
// by Builder.Finalize and is safe for concurrent readers.
type Schema struct {
	fields []Field
}

// Len returns the number of fields. A nil schema has none.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// At returns a copy of the i-th field.
func (s *Schema) At(i int) Field {
	return s.fields[i].clone()
}

// Fields returns a copy of all fields in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, s.Len())
	for i := range out {
		out[i] = s.fields[i].clone()
	}
	return out
}

// All iterates fields in order.
func (s *Schema) All() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, s.fields[i].clone()) {
				return
			}
		}
	}
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	names := make([]string, s.Len())
	for i := range names {
		names[i] = s.fields[i].Name
	}
	return names
}

// Index returns the position of the first field called name, or -1.
func (s *Schema) Index(name string) int {
	for i := 0; i < s.Len(); i++ {
		if s.fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the first field called name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i := s.Index(name)
	if i < 0 {
		return Field{}, false
	}
	return s.fields[i].clone(), true
}

// Validate reports sibling fields sharing a name. The builder accepts
// duplicates as issued; consumers that resolve columns by name call this
// before use.
func (s *Schema) Validate() error {
	seen := make(map[string]struct{}, s.Len())
	for i := 0; i < s.Len(); i++ {
		name := s.fields[i].Name
		if _, dup := seen[name]; dup {
			return domain.ErrValidation("duplicate field name %q at position %d", name, i)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Equal reports whether both schemas have identical fields in the same order.
func (s *Schema) Equal(o *Schema) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		a, b := s.fields[i], o.fields[i]
		if a.Name != b.Name || a.Kind != b.Kind || a.Nullable != b.Nullable || a.Decimal != b.Decimal {
			return false
		}
		if len(a.Metadata) != len(b.Metadata) {
			return false
		}
		for k, v := range a.Metadata {
			if b.Metadata[k] != v {
				return false
			}
		}
	}
	return true
}

func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString("struct<")
	for i := 0; i < s.Len(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.fields[i].String())
	}
	sb.WriteString(">")
	return sb.String()
}

type jsonField struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Nullable bool              `json:"nullable"`
	Metadata map[string]string `json:"metadata"`
}

type jsonSchema struct {
	Type   string      `json:"type"`
	Fields []jsonField `json:"fields"`
}

// MarshalJSON renders the Delta-style struct encoding:
// {"type":"struct","fields":[{"name":..,"type":..,"nullable":..,"metadata":{}}]}.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := jsonSchema{Type: "struct", Fields: make([]jsonField, s.Len())}
	for i := 0; i < s.Len(); i++ {
		f := s.fields[i]
		md := f.Metadata
		if md == nil {
			md = map[string]string{}
		}
		out.Fields[i] = jsonField{Name: f.Name, Type: f.TypeName(), Nullable: f.Nullable, Metadata: md}
	}
	return json.Marshal(out)
}
