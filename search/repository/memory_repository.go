package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	uuid "github.com/gofrs/uuid"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	p "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
)

// MemoryRepository evaluates predicates over documents held in memory.
// Semantics follow the SQL translation: case-insensitive tests use lower(),
// a test against an absent value is false, and NOT counts absent as false.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs []models.Document
}

// NewMemoryRepository creates a repository seeded with docs
func NewMemoryRepository(docs ...models.Document) *MemoryRepository {
	r := &MemoryRepository{}
	r.Add(docs...)
	return r
}

// Add stores documents
func (r *MemoryRepository) Add(docs ...models.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, docs...)
}

// Count returns the number of documents matching pred
func (r *MemoryRepository) Count(ctx context.Context, pred p.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for i := range r.docs {
		ok, err := Evaluate(pred, &r.docs[i])
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Find returns one ordered page of documents matching pred
func (r *MemoryRepository) Find(ctx context.Context, pred p.Predicate, opts FindOptions) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	less, ok := sortLess[opts.SortBy]
	if !ok {
		return nil, fmt.Errorf("unsupported sort key %q", opts.SortBy)
	}

	r.mu.RLock()
	matched := make([]models.Document, 0)
	for i := range r.docs {
		hit, err := Evaluate(pred, &r.docs[i])
		if err != nil {
			r.mu.RUnlock()
			return nil, err
		}
		if hit {
			matched = append(matched, r.docs[i])
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &matched[i], &matched[j]
		cmp := less(a, b)
		if cmp == 0 {
			cmp = strings.Compare(a.ID.String(), b.ID.String())
		}
		if opts.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	if opts.Offset >= len(matched) {
		return []models.Document{}, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[opts.Offset:end], nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

var sortLess = map[string]func(a, b *models.Document) int{
	SortTitle:     func(a, b *models.Document) int { return strings.Compare(a.Title, b.Title) },
	SortCategory:  func(a, b *models.Document) int { return strings.Compare(a.Category, b.Category) },
	SortStatus:    func(a, b *models.Document) int { return strings.Compare(a.Status, b.Status) },
	SortCreatedAt: func(a, b *models.Document) int { return a.CreatedAt.Compare(b.CreatedAt) },
	SortUpdatedAt: func(a, b *models.Document) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

// Evaluate reports whether doc satisfies pred
func Evaluate(pred p.Predicate, doc *models.Document) (bool, error) {
	switch pred.Kind {
	case p.KindTrue:
		return true, nil
	case p.KindAnd:
		for _, c := range pred.Children {
			ok, err := Evaluate(c, doc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case p.KindOr:
		for _, c := range pred.Children {
			ok, err := Evaluate(c, doc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case p.KindNot:
		if len(pred.Children) != 1 {
			return false, fmt.Errorf("NOT requires exactly one operand, got %d", len(pred.Children))
		}
		ok, err := Evaluate(pred.Children[0], doc)
		return !ok, err
	case p.KindLeaf:
		return evaluateLeaf(*pred.Leaf, doc)
	}
	return false, fmt.Errorf("unknown predicate kind %d", pred.Kind)
}

func evaluateLeaf(leaf p.Leaf, doc *models.Document) (bool, error) {
	switch leaf.Attr {
	case p.AttrTags:
		return evaluateTags(leaf, doc)
	case p.AttrOwner:
		id, ok := leaf.Value.(uuid.UUID)
		if leaf.Op != p.OpEquals || !ok {
			return false, fmt.Errorf("owner_id supports == with a uuid")
		}
		return doc.OwnerID == id, nil
	case p.AttrAuthor:
		return presence(leaf, doc.Author != nil)
	case p.AttrDeletedAt:
		return presence(leaf, doc.DeletedAt != nil)
	case p.AttrCreatedAt:
		return compareTime(leaf, doc.CreatedAt)
	case p.AttrUpdatedAt:
		return compareTime(leaf, doc.UpdatedAt)
	}

	value, present, err := stringAttr(leaf.Attr, doc)
	if err != nil {
		return false, err
	}
	switch leaf.Op {
	case p.OpIsNull, p.OpNotNull:
		return presence(leaf, present)
	}
	if !present {
		return false, nil
	}
	return compareString(leaf, value)
}

func stringAttr(attr p.Attr, doc *models.Document) (string, bool, error) {
	switch attr {
	case p.AttrTitle:
		return doc.Title, true, nil
	case p.AttrContent:
		return doc.Content, true, nil
	case p.AttrFileType:
		return doc.FileType, true, nil
	case p.AttrCategory:
		return doc.Category, true, nil
	case p.AttrAuthorFirstName, p.AttrAuthorLastName, p.AttrAuthorEmail:
		if doc.Author == nil {
			return "", false, nil
		}
		switch attr {
		case p.AttrAuthorFirstName:
			return doc.Author.FirstName, true, nil
		case p.AttrAuthorLastName:
			return doc.Author.LastName, true, nil
		default:
			return doc.Author.Email, true, nil
		}
	}
	return "", false, fmt.Errorf("no attribute %q", attr)
}

func presence(leaf p.Leaf, present bool) (bool, error) {
	switch leaf.Op {
	case p.OpIsNull:
		return !present, nil
	case p.OpNotNull:
		return present, nil
	}
	return false, fmt.Errorf("operator %q is not supported on %s", leaf.Op, leaf.Attr)
}

func compareString(leaf p.Leaf, value string) (bool, error) {
	switch leaf.Op {
	case p.OpIsBlank:
		return value == "", nil
	case p.OpNotBlank:
		return value != "", nil
	}

	want, ok := leaf.Value.(string)
	if !ok {
		return false, fmt.Errorf("%s %s needs a string value", leaf.Attr, leaf.Op)
	}
	if leaf.Fold {
		value, want = strings.ToLower(value), strings.ToLower(want)
	}
	switch leaf.Op {
	case p.OpEquals:
		return value == want, nil
	case p.OpContains:
		return strings.Contains(value, want), nil
	case p.OpStartsWith:
		return strings.HasPrefix(value, want), nil
	case p.OpEndsWith:
		return strings.HasSuffix(value, want), nil
	}
	return false, fmt.Errorf("operator %q is not supported on %s", leaf.Op, leaf.Attr)
}

func compareTime(leaf p.Leaf, value time.Time) (bool, error) {
	switch leaf.Op {
	case p.OpIsNull, p.OpNotNull:
		return presence(leaf, !value.IsZero())
	}
	if value.IsZero() {
		return false, nil
	}

	want, ok := leaf.Value.(time.Time)
	if !ok {
		return false, fmt.Errorf("%s %s needs a time value", leaf.Attr, leaf.Op)
	}
	switch leaf.Op {
	case p.OpLess:
		return value.Before(want), nil
	case p.OpGreater:
		return value.After(want), nil
	case p.OpLessEq:
		return !value.After(want), nil
	case p.OpGreaterEq:
		return !value.Before(want), nil
	case p.OpEquals:
		return value.Equal(want), nil
	}
	return false, fmt.Errorf("operator %q is not supported on %s", leaf.Op, leaf.Attr)
}

func evaluateTags(leaf p.Leaf, doc *models.Document) (bool, error) {
	switch leaf.Op {
	case p.OpIsNull, p.OpNotNull:
		return presence(leaf, len(doc.Tags) > 0)
	case p.OpHas:
		want, ok := leaf.Value.(string)
		if !ok {
			return false, fmt.Errorf("tags has needs a string value")
		}
		for _, tag := range doc.Tags {
			if strings.ToLower(tag.Name) == strings.ToLower(want) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("operator %q is not supported on tags", leaf.Op)
}
