package services

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/repository"
)

var (
	user7 = uuid.FromStringOrNil("00000000-0000-0000-0000-000000000007")
	user9 = uuid.FromStringOrNil("00000000-0000-0000-0000-000000000009")
)

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixture: three live documents of user 7, one deleted, one foreign
func fixture() *repository.MemoryRepository {
	deletedAt := day("2025-03-10T00:00:00Z")
	return repository.NewMemoryRepository(
		models.Document{
			ID: uuid.Must(uuid.NewV4()), Title: "Sales Guide", Content: strings.Repeat("a", 250),
			FileType: "pdf", Category: "SALES", Status: "ACTIVE", OwnerID: user7,
			Author:    &models.Author{FirstName: "Ann", LastName: "Lee", Email: "ann@acme.io"},
			Tags:      []models.Tag{{Name: "Urgent", Color: "red"}},
			CreatedAt: day("2025-01-01T00:00:00Z"), UpdatedAt: day("2025-03-01T00:00:00Z"),
		},
		models.Document{
			ID: uuid.Must(uuid.NewV4()), Title: "SALES Playbook", Content: "short",
			Category: "SALES", Status: "DRAFT", OwnerID: user7,
			CreatedAt: day("2025-01-02T00:00:00Z"), UpdatedAt: day("2025-03-03T00:00:00Z"),
		},
		models.Document{
			ID: uuid.Must(uuid.NewV4()), Title: "Marketing Plan", Content: "plan",
			FileType: "docx", Category: "MARKETING", Status: "ARCHIVED", OwnerID: user7,
			Author:    &models.Author{FirstName: "Bob", Email: "bob@acme.io"},
			Tags:      []models.Tag{{Name: "Q1"}, {Name: "urgent"}},
			CreatedAt: day("2024-12-31T12:00:00Z"), UpdatedAt: day("2025-03-02T00:00:00Z"),
		},
		models.Document{
			ID: uuid.Must(uuid.NewV4()), Title: "Sales Overview", OwnerID: user9, Category: "SALES",
			CreatedAt: day("2025-01-01T00:00:00Z"), UpdatedAt: day("2025-03-04T00:00:00Z"),
		},
		models.Document{
			ID: uuid.Must(uuid.NewV4()), Title: "Sales Archive", OwnerID: user7, Category: "SALES",
			CreatedAt: day("2025-01-01T00:00:00Z"), UpdatedAt: day("2025-03-05T00:00:00Z"), DeletedAt: &deletedAt,
		},
	)
}

func intPtr(n int) *int { return &n }

func c(field, op string, value models.ConditionValue) models.Condition {
	return models.Condition{ID: "c" + uuid.Must(uuid.NewV4()).String(), Field: field, Operator: op, Value: value}
}

func s(v string) models.ConditionValue { return models.StringValue(v) }

func newTestService(repo repository.DocumentRepository) SearchService {
	return NewSearchService(repo, Options{Executor: DefaultExecutorOptions()})
}

func search(t *testing.T, svc SearchService, req models.SearchRequest) *models.SearchResponse {
	t.Helper()
	resp, err := svc.Search(context.Background(), &req, &types.UserContext{UserID: user7})
	require.NoError(t, err)
	return resp
}

func total(t *testing.T, svc SearchService, conds ...models.Condition) int64 {
	t.Helper()
	return search(t, svc, models.SearchRequest{Conditions: conds}).Total
}

func titles(resp *models.SearchResponse) []string {
	out := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.Title
	}
	return out
}

func TestSearch_CaseInsensitiveOwnerScoped(t *testing.T) {
	resp := search(t, newTestService(fixture()), models.SearchRequest{
		Operator:   models.OperatorAND,
		Conditions: []models.Condition{c("title", "contains", s("Sales"))},
	})

	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Total)
	assert.ElementsMatch(t, []string{"Sales Guide", "SALES Playbook"}, titles(resp))
}

func TestSearch_OrRootStillScoped(t *testing.T) {
	resp := search(t, newTestService(fixture()), models.SearchRequest{
		Operator: models.OperatorOR,
		Conditions: []models.Condition{
			c("category", "equals", s("SALES")),
			c("title", "contains", s("overview")),
		},
	})

	// neither the foreign "Sales Overview" nor the deleted row leaks through the OR
	assert.Equal(t, int64(2), resp.Total)
	assert.NotContains(t, titles(resp), "Sales Overview")
	assert.NotContains(t, titles(resp), "Sales Archive")
}

func TestSearch_EmptyRequestReturnsVisibleRowsNewestFirst(t *testing.T) {
	resp := search(t, newTestService(fixture()), models.SearchRequest{
		Conditions: []models.Condition{},
		Groups:     []models.Group{},
	})

	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, []string{"SALES Playbook", "Marketing Plan", "Sales Guide"}, titles(resp))
	assert.Equal(t, models.SearchMetadata{Limit: 20, Offset: 0, HasMore: false}, resp.Metadata)
}

func TestSearch_UnknownSortKeyMatchesDefault(t *testing.T) {
	svc := newTestService(fixture())
	def := search(t, svc, models.SearchRequest{})
	bogus := search(t, svc, models.SearchRequest{SortBy: "not_a_real_field"})
	bogusAsc := search(t, svc, models.SearchRequest{SortBy: "not_a_real_field", SortOrder: models.SortAsc})

	assert.Equal(t, titles(def), titles(bogus))
	assert.Equal(t, titles(def), titles(bogusAsc))

	byTitle := search(t, svc, models.SearchRequest{SortBy: "title", SortOrder: models.SortAsc})
	assert.Equal(t, []string{"Marketing Plan", "SALES Playbook", "Sales Guide"}, titles(byTitle))
}

func TestSearch_NegationIsExact(t *testing.T) {
	svc := newTestService(fixture())
	all := total(t, svc)

	pairs := []struct{ field, pos, neg, value string }{
		{"title", "equals", "not_equals", "sales guide"},
		{"title", "contains", "not_contains", "plan"},
		{"content", "contains", "not_contains", "a"},
		{"file_type", "equals", "not_equals", "PDF"},
		{"author", "equals", "not_equals", "ann"},
		{"category", "equals", "not_equals", "SALES"},
		{"tags", "contains", "not_contains", "URGENT"},
	}
	for _, pair := range pairs {
		t.Run(pair.field+" "+pair.pos, func(t *testing.T) {
			pos := total(t, svc, c(pair.field, pair.pos, s(pair.value)))
			neg := total(t, svc, c(pair.field, pair.neg, s(pair.value)))
			assert.Equal(t, all, pos+neg)
			assert.NotZero(t, pos)
		})
	}
}

func TestSearch_EmptinessIsExclusiveAndExhaustive(t *testing.T) {
	svc := newTestService(fixture())
	all := total(t, svc)

	for _, field := range []string{"title", "content", "file_type", "author", "category", "tags", "created_at"} {
		t.Run(field, func(t *testing.T) {
			empty := c(field, "is_empty", s(""))
			notEmpty := c(field, "is_not_empty", s(""))

			assert.Equal(t, all, total(t, svc, empty)+total(t, svc, notEmpty))
			both := search(t, svc, models.SearchRequest{Conditions: []models.Condition{empty, c(field, "is_not_empty", s(""))}})
			assert.Zero(t, both.Total)
		})
	}

	assert.Equal(t, int64(1), total(t, svc, c("file_type", "is_empty", s(""))))
	assert.Equal(t, int64(1), total(t, svc, c("author", "is_empty", s(""))))
	assert.Equal(t, int64(1), total(t, svc, c("tags", "is_empty", s(""))))
}

func TestSearch_BetweenInclusiveBeforeAfterExclusive(t *testing.T) {
	svc := newTestService(fixture())

	between := total(t, svc, c("created_at", "between", models.ListValue("2025-01-01", "2025-01-02")))
	assert.Equal(t, int64(2), between)

	openRange := total(t, svc,
		c("created_at", "after", s("2025-01-01")),
		c("created_at", "before", s("2025-01-02")),
	)
	assert.Zero(t, openRange)

	assert.Equal(t, int64(1), total(t, svc, c("created_at", "after", s("2025-01-01"))))
	assert.Equal(t, int64(2), total(t, svc, c("created_at", "before", s("2025-01-02"))))
}

func TestSearch_UncoveredConditionEqualsOmission(t *testing.T) {
	svc := newTestService(fixture())
	base := c("title", "contains", s("sales"))

	without := search(t, svc, models.SearchRequest{Conditions: []models.Condition{base}})
	for _, noop := range []models.Condition{
		c("updated_at", "between", models.ListValue("2025-01-01")),
		c("updated_at", "between", models.ListValue("2025-01-01", "2025-02-01", "2025-03-01")),
		c("updated_at", "after", s("")),
		c("author", "not_contains", s("ann")),
	} {
		with := search(t, svc, models.SearchRequest{Conditions: []models.Condition{base, noop}})
		assert.Equal(t, without.Total, with.Total, noop.Operator)
		assert.Equal(t, titles(without), titles(with), noop.Operator)
	}
}

func TestSearch_AuthorNegativeAndAffixOperatorsMatchEverything(t *testing.T) {
	svc := newTestService(fixture())
	all := search(t, svc, models.SearchRequest{})

	for _, op := range []string{"not_contains", "starts_with", "ends_with"} {
		resp := search(t, svc, models.SearchRequest{Conditions: []models.Condition{c("author", op, s("bob"))}})
		assert.Equal(t, all.Total, resp.Total, op)
		assert.Contains(t, titles(resp), "Marketing Plan", op)
	}
}

func TestSearch_PagingIsConsistent(t *testing.T) {
	svc := newTestService(fixture())

	for limit := 1; limit <= 4; limit++ {
		for offset := 0; offset <= 5; offset++ {
			resp := search(t, svc, models.SearchRequest{Limit: intPtr(limit), Offset: intPtr(offset)})
			assert.LessOrEqual(t, len(resp.Results), limit)
			assert.Equal(t, resp.Total > int64(offset+limit), resp.Metadata.HasMore)
			if int64(offset) >= resp.Total {
				assert.Empty(t, resp.Results)
				assert.NotNil(t, resp.Results)
			}
		}
	}

	resp := search(t, svc, models.SearchRequest{Offset: intPtr(math.MaxInt - 5)})
	assert.Equal(t, int64(3), resp.Total)
	assert.Empty(t, resp.Results)
	assert.False(t, resp.Metadata.HasMore)
	assert.Equal(t, math.MaxInt-5, resp.Metadata.Offset)
}

func TestExecutor_FindOptionsClamps(t *testing.T) {
	e := NewExecutor(nil, DefaultExecutorOptions())

	tests := []struct {
		name string
		page Page
		want repository.FindOptions
	}{
		{"defaults", Page{}, repository.FindOptions{SortBy: "updated_at", SortDesc: true, Limit: 20}},
		{"zero limit", Page{Limit: intPtr(0)}, repository.FindOptions{SortBy: "updated_at", SortDesc: true, Limit: 1}},
		{"limit above max", Page{Limit: intPtr(500)}, repository.FindOptions{SortBy: "updated_at", SortDesc: true, Limit: 100}},
		{"negative offset", Page{Offset: intPtr(-5)}, repository.FindOptions{SortBy: "updated_at", SortDesc: true, Limit: 20}},
		{"sort asc", Page{SortBy: "title", SortOrder: "asc", Offset: intPtr(3)}, repository.FindOptions{SortBy: "title", Limit: 20, Offset: 3}},
		{"sort order defaults to desc", Page{SortBy: "status"}, repository.FindOptions{SortBy: "status", SortDesc: true, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.FindOptions(tt.page))
		})
	}
}

func TestExecutor_ShapesRows(t *testing.T) {
	resp := search(t, newTestService(fixture()), models.SearchRequest{SortBy: "title", SortOrder: "asc"})
	require.Len(t, resp.Results, 3)

	marketing, playbook, guide := resp.Results[0], resp.Results[1], resp.Results[2]

	assert.Equal(t, strings.Repeat("a", 200)+"...", guide.Content)
	assert.Equal(t, "Ann Lee", guide.Author)
	assert.Equal(t, []string{"Urgent"}, guide.Tags)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", guide.CreatedAt)
	assert.Equal(t, "2025-03-01T00:00:00.000Z", guide.UpdatedAt)
	assert.Equal(t, "pdf", guide.FileType)

	assert.Equal(t, "short", playbook.Content)
	assert.Equal(t, "Unknown", playbook.Author)
	assert.NotNil(t, playbook.Tags)
	assert.Empty(t, playbook.Tags)

	assert.Equal(t, "Bob", marketing.Author)
	assert.Equal(t, []string{"Q1", "urgent"}, marketing.Tags)
	assert.Equal(t, "ARCHIVED", marketing.Status)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "héé...", Truncate("héééé", 3))
	assert.Equal(t, "", Truncate("", 3))
}

func TestExecutor_StoreFailure(t *testing.T) {
	repo := new(MockDocumentRepository)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)
	repo.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Document{}, nil).Maybe()

	_, err := NewExecutor(repo, DefaultExecutorOptions()).Execute(context.Background(), predicate.Scope(user7), Page{})
	require.Error(t, err)
	assert.ErrorIs(t, err, searchErrors.ErrDatabaseOperation)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExecutor_CountAndFindSeeSamePredicate(t *testing.T) {
	repo := new(MockDocumentRepository)
	pred := predicate.And(predicate.Scope(user7), predicate.Test(predicate.AttrTitle, predicate.OpContains, "x", true))
	want := repository.FindOptions{SortBy: "updated_at", SortDesc: true, Limit: 2, Offset: 2}

	repo.On("Count", mock.Anything, pred).Return(int64(5), nil).Once()
	repo.On("Find", mock.Anything, pred, want).Return([]models.Document{{ID: uuid.Must(uuid.NewV4())}}, nil).Once()

	resp, err := NewExecutor(repo, DefaultExecutorOptions()).Execute(context.Background(), pred, Page{Limit: intPtr(2), Offset: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	assert.True(t, resp.Metadata.HasMore)
	repo.AssertExpectations(t)
}
