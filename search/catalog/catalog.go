// Package catalog is the closed registry of searchable document fields.
package catalog

// Version identifies the catalog contents served to clients.
const Version = "2025-01"

// Class is the field class governing which operators apply
type Class string

const (
	ClassString   Class = "STRING"
	ClassDate     Class = "DATE"
	ClassArray    Class = "ARRAY"
	ClassEnum     Class = "ENUM"
	ClassRelation Class = "RELATION"
)

// Operator is a condition operator name as it appears on the wire
type Operator string

const (
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
	OpBefore      Operator = "before"
	OpAfter       Operator = "after"
	OpBetween     Operator = "between"
)

// AllOperators is the global operator union
var AllOperators = []Operator{
	OpContains, OpNotContains, OpEquals, OpNotEquals, OpStartsWith, OpEndsWith,
	OpIsEmpty, OpIsNotEmpty, OpBefore, OpAfter, OpBetween,
}

// Field names
const (
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldFileType  = "file_type"
	FieldAuthor    = "author"
	FieldCategory  = "category"
	FieldTags      = "tags"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

var classOperators = map[Class][]Operator{
	ClassString: {OpContains, OpNotContains, OpEquals, OpNotEquals, OpStartsWith, OpEndsWith, OpIsEmpty, OpIsNotEmpty},
	ClassDate:   {OpBefore, OpAfter, OpBetween, OpIsEmpty, OpIsNotEmpty},
	ClassArray:  {OpContains, OpNotContains, OpIsEmpty, OpIsNotEmpty},
	ClassEnum:   {OpEquals, OpNotEquals, OpIsEmpty, OpIsNotEmpty},
	// The relation accepts the string set; the compiler covers a subset.
	ClassRelation: {OpContains, OpNotContains, OpEquals, OpNotEquals, OpStartsWith, OpEndsWith, OpIsEmpty, OpIsNotEmpty},
}

// Field is a catalog entry
type Field struct {
	Name           string     `json:"name"`
	Class          Class      `json:"class"`
	Label          string     `json:"label"`
	ValidOperators []Operator `json:"operators"`
	// Values lists the canonical values of an ENUM field
	Values []string `json:"values,omitempty"`
}

// Categories are the canonical values of the category enum
var Categories = []string{"GENERAL", "PRODUCT", "SALES", "MARKETING", "LEGAL", "TECHNICAL", "TRAINING", "OTHER"}

// fields is ordered; the first entry is the editor default.
var fields = []Field{
	newField(FieldTitle, ClassString, "Title"),
	newField(FieldContent, ClassString, "Content"),
	newField(FieldFileType, ClassString, "File type"),
	newField(FieldAuthor, ClassRelation, "Author"),
	withValues(newField(FieldCategory, ClassEnum, "Category"), Categories),
	newField(FieldTags, ClassArray, "Tags"),
	newField(FieldCreatedAt, ClassDate, "Created"),
	newField(FieldUpdatedAt, ClassDate, "Updated"),
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

func newField(name string, class Class, label string) Field {
	return Field{Name: name, Class: class, Label: label, ValidOperators: classOperators[class]}
}

func withValues(f Field, values []string) Field {
	f.Values = values
	return f
}

// Fields returns copies of the catalog entries in display order
func Fields() []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.clone()
	}
	return out
}

// Lookup finds a field by name
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	if !ok {
		return Field{}, false
	}
	return f.clone(), true
}

// clone detaches the slices shared with the class tables
func (f Field) clone() Field {
	f.ValidOperators = append([]Operator(nil), f.ValidOperators...)
	if f.Values != nil {
		f.Values = append([]string(nil), f.Values...)
	}
	return f
}

// DefaultField is the field given to a freshly added condition
func DefaultField() Field {
	return fields[0].clone()
}

// Supports reports whether op is valid for the field
func (f Field) Supports(op Operator) bool {
	for _, v := range f.ValidOperators {
		if v == op {
			return true
		}
	}
	return false
}

// DefaultOperator is the first valid operator of the field's class
func (f Field) DefaultOperator() Operator {
	return f.ValidOperators[0]
}

// IsOperator reports whether s names any known operator
func IsOperator(s string) bool {
	for _, op := range AllOperators {
		if string(op) == s {
			return true
		}
	}
	return false
}
