// Package compiler lowers a condition/group tree into a scoped predicate.
//
// Compile is total: every tree that passed validation compiles, and any leaf
// without a lowering for its field class compiles to TRUE.
package compiler

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/catalog"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	p "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
)

// Compile returns AND(Scope(userID), root). A root that compiles to TRUE
// yields the scope predicate alone.
func Compile(root models.Group, userID uuid.UUID) p.Predicate {
	scope := p.Scope(userID)
	body := CompileGroup(root)
	if body.IsTrue() {
		return scope
	}
	return p.And(scope, body)
}

// CompileRequest compiles the request's implicit root group
func CompileRequest(req models.SearchRequest, userID uuid.UUID) p.Predicate {
	return Compile(req.Root(), userID)
}

// CompileGroup lowers a group without scoping. Conditions come first, then
// nested groups, combined with the group's operator.
func CompileGroup(g models.Group) p.Predicate {
	parts := make([]p.Predicate, 0, len(g.Conditions)+len(g.Groups))
	for _, c := range g.Conditions {
		parts = append(parts, CompileCondition(c))
	}
	for _, sub := range g.Groups {
		parts = append(parts, CompileGroup(sub))
	}

	if g.Operator == models.OperatorOR {
		return p.Or(parts...)
	}
	return p.And(parts...)
}

// CompileCondition lowers one leaf by field
func CompileCondition(c models.Condition) p.Predicate {
	op := catalog.Operator(c.Operator)
	if field, ok := catalog.Lookup(c.Field); !ok || !field.Supports(op) {
		return fallback(c)
	}

	var out p.Predicate
	var ok bool
	switch c.Field {
	case catalog.FieldTitle:
		out, ok = lowerString(p.AttrTitle, op, c.Value)
	case catalog.FieldContent:
		out, ok = lowerString(p.AttrContent, op, c.Value)
	case catalog.FieldFileType:
		out, ok = lowerString(p.AttrFileType, op, c.Value)
	case catalog.FieldCategory:
		out, ok = lowerEnum(p.AttrCategory, op, c.Value)
	case catalog.FieldTags:
		out, ok = lowerArray(p.AttrTags, op, c.Value)
	case catalog.FieldCreatedAt:
		out, ok = lowerDate(p.AttrCreatedAt, op, c.Value)
	case catalog.FieldUpdatedAt:
		out, ok = lowerDate(p.AttrUpdatedAt, op, c.Value)
	case catalog.FieldAuthor:
		out, ok = lowerAuthor(op, c.Value)
	}
	if !ok {
		return fallback(c)
	}
	return out
}

func fallback(c models.Condition) p.Predicate {
	log.Debug("compiler: no lowering for %s %s %s, using TRUE", c.Field, c.Operator, c.Value)
	return p.True()
}

// scalar extracts a single value; list values only make sense for between
func scalar(v models.ConditionValue) (string, bool) {
	if v.IsList {
		return "", false
	}
	return v.Single, true
}

func isEmpty(attr p.Attr) p.Predicate {
	return p.Or(p.Test(attr, p.OpIsNull, nil, false), p.Test(attr, p.OpIsBlank, nil, false))
}

func isNotEmpty(attr p.Attr) p.Predicate {
	return p.And(p.Test(attr, p.OpNotNull, nil, false), p.Test(attr, p.OpNotBlank, nil, false))
}

func lowerString(attr p.Attr, op catalog.Operator, value models.ConditionValue) (p.Predicate, bool) {
	switch op {
	case catalog.OpIsEmpty:
		return isEmpty(attr), true
	case catalog.OpIsNotEmpty:
		return isNotEmpty(attr), true
	}

	v, ok := scalar(value)
	if !ok {
		return p.Predicate{}, false
	}
	switch op {
	case catalog.OpContains:
		return p.Test(attr, p.OpContains, v, true), true
	case catalog.OpNotContains:
		return p.Not(p.Test(attr, p.OpContains, v, true)), true
	case catalog.OpEquals:
		return p.Test(attr, p.OpEquals, v, true), true
	case catalog.OpNotEquals:
		return p.Not(p.Test(attr, p.OpEquals, v, true)), true
	case catalog.OpStartsWith:
		return p.Test(attr, p.OpStartsWith, v, true), true
	case catalog.OpEndsWith:
		return p.Test(attr, p.OpEndsWith, v, true), true
	}
	return p.Predicate{}, false
}

// Enum values are canonical, so equality is exact.
func lowerEnum(attr p.Attr, op catalog.Operator, value models.ConditionValue) (p.Predicate, bool) {
	switch op {
	case catalog.OpIsEmpty:
		return isEmpty(attr), true
	case catalog.OpIsNotEmpty:
		return isNotEmpty(attr), true
	}

	v, ok := scalar(value)
	if !ok {
		return p.Predicate{}, false
	}
	switch op {
	case catalog.OpEquals:
		return p.Test(attr, p.OpEquals, v, false), true
	case catalog.OpNotEquals:
		return p.Not(p.Test(attr, p.OpEquals, v, false)), true
	}
	return p.Predicate{}, false
}

// An array attribute is null when it holds no elements.
func lowerArray(attr p.Attr, op catalog.Operator, value models.ConditionValue) (p.Predicate, bool) {
	switch op {
	case catalog.OpIsEmpty:
		return p.Test(attr, p.OpIsNull, nil, false), true
	case catalog.OpIsNotEmpty:
		return p.Test(attr, p.OpNotNull, nil, false), true
	}

	v, ok := scalar(value)
	if !ok {
		return p.Predicate{}, false
	}
	switch op {
	case catalog.OpContains:
		return p.Test(attr, p.OpHas, v, true), true
	case catalog.OpNotContains:
		return p.Not(p.Test(attr, p.OpHas, v, true)), true
	}
	return p.Predicate{}, false
}

// before/after are exclusive, between is inclusive on both ends.
func lowerDate(attr p.Attr, op catalog.Operator, value models.ConditionValue) (p.Predicate, bool) {
	switch op {
	case catalog.OpIsEmpty:
		return p.Test(attr, p.OpIsNull, nil, false), true
	case catalog.OpIsNotEmpty:
		return p.Test(attr, p.OpNotNull, nil, false), true
	case catalog.OpBetween:
		if !value.IsList || len(value.List) != 2 {
			return p.Predicate{}, false
		}
		lo, okLo := ParseDate(value.List[0])
		hi, okHi := ParseDate(value.List[1])
		if !okLo || !okHi {
			return p.Predicate{}, false
		}
		return p.And(
			p.Test(attr, p.OpGreaterEq, lo, false),
			p.Test(attr, p.OpLessEq, hi, false),
		), true
	}

	v, ok := scalar(value)
	if !ok {
		return p.Predicate{}, false
	}
	t, ok := ParseDate(v)
	if !ok {
		return p.Predicate{}, false
	}
	switch op {
	case catalog.OpBefore:
		return p.Test(attr, p.OpLess, t, false), true
	case catalog.OpAfter:
		return p.Test(attr, p.OpGreater, t, false), true
	}
	return p.Predicate{}, false
}

var authorAttrs = []p.Attr{p.AttrAuthorFirstName, p.AttrAuthorLastName, p.AttrAuthorEmail}

// The author relation fans a test out over first name, last name and email.
// Presence tests look at the relation itself.
func lowerAuthor(op catalog.Operator, value models.ConditionValue) (p.Predicate, bool) {
	switch op {
	case catalog.OpIsEmpty:
		return p.Test(p.AttrAuthor, p.OpIsNull, nil, false), true
	case catalog.OpIsNotEmpty:
		return p.Test(p.AttrAuthor, p.OpNotNull, nil, false), true
	}

	v, ok := scalar(value)
	if !ok {
		return p.Predicate{}, false
	}
	anyOf := func(leafOp p.Op) p.Predicate {
		parts := make([]p.Predicate, len(authorAttrs))
		for i, attr := range authorAttrs {
			parts[i] = p.Test(attr, leafOp, v, true)
		}
		return p.Or(parts...)
	}

	switch op {
	case catalog.OpContains:
		return anyOf(p.OpContains), true
	case catalog.OpEquals:
		return anyOf(p.OpEquals), true
	case catalog.OpNotEquals:
		return p.Not(anyOf(p.OpEquals)), true
	}
	return p.Predicate{}, false
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC3339 timestamps and bare dates (midnight UTC)
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
