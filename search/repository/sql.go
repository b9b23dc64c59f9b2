package repository

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid"

	p "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
)

// Table aliases used by every generated query: documents d LEFT JOIN users u
var columns = map[p.Attr]string{
	p.AttrTitle:           "d.title",
	p.AttrContent:         "d.content",
	p.AttrFileType:        "d.file_type",
	p.AttrCategory:        "d.category",
	p.AttrCreatedAt:       "d.created_at",
	p.AttrUpdatedAt:       "d.updated_at",
	p.AttrOwner:           "d.owner_id",
	p.AttrDeletedAt:       "d.deleted_at",
	p.AttrAuthor:          "d.created_by",
	p.AttrAuthorFirstName: "u.first_name",
	p.AttrAuthorLastName:  "u.last_name",
	p.AttrAuthorEmail:     "u.email",
}

var sortColumns = map[string]string{
	SortTitle:     "d.title",
	SortCreatedAt: "d.created_at",
	SortUpdatedAt: "d.updated_at",
	SortCategory:  "d.category",
	SortStatus:    "d.status",
}

const (
	tagExistsSQL = "EXISTS (SELECT 1 FROM document_tags dt WHERE dt.document_id = d.id)"
	tagHasSQL    = "EXISTS (SELECT 1 FROM document_tags dt JOIN tags t ON t.id = dt.tag_id " +
		"WHERE dt.document_id = d.id AND lower(t.name) = lower(?))"
)

// notExpr negates a condition with NULL counted as false, so that
// NOT(x) matches exactly the rows x does not.
type notExpr struct {
	inner sq.Sqlizer
}

func (n notExpr) ToSql() (string, []interface{}, error) {
	sql, args, err := n.inner.ToSql()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("NOT COALESCE((%s), FALSE)", sql), args, nil
}

// ToSqlizer translates a predicate into a squirrel condition
func ToSqlizer(pred p.Predicate) (sq.Sqlizer, error) {
	switch pred.Kind {
	case p.KindTrue:
		return sq.Expr("TRUE"), nil
	case p.KindAnd, p.KindOr:
		parts := make([]sq.Sqlizer, 0, len(pred.Children))
		for _, child := range pred.Children {
			part, err := ToSqlizer(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		if pred.Kind == p.KindAnd {
			return sq.And(parts), nil
		}
		return sq.Or(parts), nil
	case p.KindNot:
		if len(pred.Children) != 1 {
			return nil, fmt.Errorf("NOT requires exactly one operand, got %d", len(pred.Children))
		}
		inner, err := ToSqlizer(pred.Children[0])
		if err != nil {
			return nil, err
		}
		return notExpr{inner: inner}, nil
	case p.KindLeaf:
		return leafSqlizer(*pred.Leaf)
	}
	return nil, fmt.Errorf("unknown predicate kind %d", pred.Kind)
}

func leafSqlizer(leaf p.Leaf) (sq.Sqlizer, error) {
	if leaf.Attr == p.AttrTags {
		return tagSqlizer(leaf)
	}

	col, ok := columns[leaf.Attr]
	if !ok {
		return nil, fmt.Errorf("no column for attribute %q", leaf.Attr)
	}
	// squirrel expands array values into IN lists; send ids as text
	if id, isUUID := leaf.Value.(uuid.UUID); isUUID {
		leaf.Value = id.String()
	}

	switch leaf.Op {
	case p.OpIsNull:
		return sq.Eq{col: nil}, nil
	case p.OpNotNull:
		return sq.NotEq{col: nil}, nil
	case p.OpIsBlank:
		return sq.Expr(col + " = ''"), nil
	case p.OpNotBlank:
		return sq.Expr(col + " <> ''"), nil
	case p.OpLess:
		return sq.Lt{col: leaf.Value}, nil
	case p.OpGreater:
		return sq.Gt{col: leaf.Value}, nil
	case p.OpLessEq:
		return sq.LtOrEq{col: leaf.Value}, nil
	case p.OpGreaterEq:
		return sq.GtOrEq{col: leaf.Value}, nil
	case p.OpEquals:
		if leaf.Fold {
			return sq.Expr(fmt.Sprintf("lower(%s) = lower(?)", col), leaf.Value), nil
		}
		return sq.Eq{col: leaf.Value}, nil
	}

	s, ok := leaf.Value.(string)
	if !ok {
		return nil, fmt.Errorf("%s %s needs a string value", leaf.Attr, leaf.Op)
	}
	switch leaf.Op {
	case p.OpContains:
		return like(col, "%"+escapeLike(s)+"%", leaf.Fold), nil
	case p.OpStartsWith:
		return like(col, escapeLike(s)+"%", leaf.Fold), nil
	case p.OpEndsWith:
		return like(col, "%"+escapeLike(s), leaf.Fold), nil
	}
	return nil, fmt.Errorf("operator %q is not supported on %s", leaf.Op, leaf.Attr)
}

func tagSqlizer(leaf p.Leaf) (sq.Sqlizer, error) {
	switch leaf.Op {
	case p.OpIsNull:
		return sq.Expr("NOT " + tagExistsSQL), nil
	case p.OpNotNull:
		return sq.Expr(tagExistsSQL), nil
	case p.OpHas:
		return sq.Expr(tagHasSQL, leaf.Value), nil
	}
	return nil, fmt.Errorf("operator %q is not supported on tags", leaf.Op)
}

func like(col, pattern string, fold bool) sq.Sqlizer {
	if fold {
		return sq.ILike{col: pattern}
	}
	return sq.Like{col: pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards; PostgreSQL's default escape character is backslash
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
