// Package predicate is the boolean expression tree a compiled search is
// expressed in. Stores translate it (SQL) or evaluate it (memory).
package predicate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// Kind discriminates predicate nodes
type Kind int

const (
	KindTrue Kind = iota
	KindAnd
	KindOr
	KindNot
	KindLeaf
)

// Op is a leaf comparison
type Op string

const (
	OpEquals     Op = "=="
	OpContains   Op = "contains"
	OpStartsWith Op = "starts_with"
	OpEndsWith   Op = "ends_with"
	OpIsNull     Op = "IS NULL"
	OpNotNull    Op = "IS NOT NULL"
	OpIsBlank    Op = "blank"
	OpNotBlank   Op = "not_blank"
	OpLess       Op = "<"
	OpGreater    Op = ">"
	OpLessEq     Op = "<="
	OpGreaterEq  Op = ">="
	OpHas        Op = "has"
)

// Attr names a stored document attribute a leaf tests
type Attr string

const (
	AttrTitle           Attr = "title"
	AttrContent         Attr = "content"
	AttrFileType        Attr = "file_type"
	AttrCategory        Attr = "category"
	AttrTags            Attr = "tags"
	AttrCreatedAt       Attr = "created_at"
	AttrUpdatedAt       Attr = "updated_at"
	AttrAuthor          Attr = "author"
	AttrAuthorFirstName Attr = "author.first_name"
	AttrAuthorLastName  Attr = "author.last_name"
	AttrAuthorEmail     Attr = "author.email"
	AttrOwner           Attr = "owner_id"
	AttrDeletedAt       Attr = "deleted_at"
)

// Leaf is a single attribute test. Value is a string, time.Time or uuid.UUID.
// Fold requests case-insensitive string comparison.
type Leaf struct {
	Attr  Attr
	Op    Op
	Value interface{}
	Fold  bool
}

// Predicate is an immutable expression node
type Predicate struct {
	Kind     Kind
	Children []Predicate
	Leaf     *Leaf
	// Label replaces the rendering of a composite node, e.g. the scope clause
	Label string
}

// True matches every row
func True() Predicate { return Predicate{Kind: KindTrue} }

// And conjoins children; no children is TRUE
func And(children ...Predicate) Predicate {
	if len(children) == 0 {
		return True()
	}
	return Predicate{Kind: KindAnd, Children: children}
}

// Or disjoins children; no children is TRUE
func Or(children ...Predicate) Predicate {
	if len(children) == 0 {
		return True()
	}
	return Predicate{Kind: KindOr, Children: children}
}

// Not negates p
func Not(p Predicate) Predicate {
	return Predicate{Kind: KindNot, Children: []Predicate{p}}
}

// Test builds a leaf predicate
func Test(attr Attr, op Op, value interface{}, fold bool) Predicate {
	return Predicate{Kind: KindLeaf, Leaf: &Leaf{Attr: attr, Op: op, Value: value, Fold: fold}}
}

// Labeled returns p rendered as label by String
func Labeled(p Predicate, label string) Predicate {
	p.Label = label
	return p
}

// Scope restricts rows to the owner's live documents
func Scope(userID uuid.UUID) Predicate {
	return Labeled(And(
		Test(AttrOwner, OpEquals, userID, false),
		Test(AttrDeletedAt, OpIsNull, nil, false),
	), fmt.Sprintf("scope(%s)", userID))
}

// IsTrue reports the TRUE node
func (p Predicate) IsTrue() bool { return p.Kind == KindTrue }

// Key encodes p without ambiguity, for cache keys. String is for reading and
// may render distinct trees alike, e.g. a value that itself contains ", ".
func (p Predicate) Key() string {
	data, err := json.Marshal(p)
	if err != nil {
		return p.String()
	}
	return string(data)
}

// String renders the canonical text form used in logs and tests
func (p Predicate) String() string {
	var b strings.Builder
	p.render(&b)
	return b.String()
}

func (p Predicate) render(b *strings.Builder) {
	if p.Label != "" {
		b.WriteString(p.Label)
		return
	}
	switch p.Kind {
	case KindTrue:
		b.WriteString("TRUE")
	case KindAnd, KindOr, KindNot:
		b.WriteString(kindName[p.Kind])
		b.WriteByte('(')
		for i, c := range p.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			c.render(b)
		}
		b.WriteByte(')')
	case KindLeaf:
		b.WriteString(p.Leaf.String())
	}
}

var kindName = map[Kind]string{KindAnd: "AND", KindOr: "OR", KindNot: "NOT"}

func (l Leaf) String() string {
	switch l.Op {
	case OpIsNull, OpNotNull:
		return fmt.Sprintf("%s %s", l.Attr, l.Op)
	case OpIsBlank:
		return fmt.Sprintf(`%s == ""`, l.Attr)
	case OpNotBlank:
		return fmt.Sprintf(`%s != ""`, l.Attr)
	case OpEquals:
		if l.Fold {
			return fmt.Sprintf("%s equals %s", l.Attr, formatValue(l.Value))
		}
		return fmt.Sprintf("%s==%s", l.Attr, rawValue(l.Value))
	default:
		return fmt.Sprintf("%s %s %s", l.Attr, l.Op, formatValue(l.Value))
	}
}

func formatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return rawValue(v)
}

func rawValue(v interface{}) string {
	switch val := v.(type) {
	case time.Time:
		return FormatTime(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatTime prints midnight UTC instants as a bare date and everything else as RFC3339
func FormatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339Nano)
}
