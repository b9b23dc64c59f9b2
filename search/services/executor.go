package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/repository"
)

// TimestampFormat is the fixed text form of result timestamps (UTC, milliseconds)
const TimestampFormat = "2006-01-02T15:04:05.000Z"

const (
	ellipsis      = "..."
	unknownAuthor = "Unknown"
)

var sortable = map[string]bool{
	repository.SortTitle:     true,
	repository.SortCreatedAt: true,
	repository.SortUpdatedAt: true,
	repository.SortCategory:  true,
	repository.SortStatus:    true,
}

// Page is the paging and ordering part of a request, before clamping
type Page struct {
	SortBy    string
	SortOrder string
	Limit     *int
	Offset    *int
}

// PageOf extracts the paging parameters of a request
func PageOf(req *models.SearchRequest) Page {
	return Page{SortBy: req.SortBy, SortOrder: req.SortOrder, Limit: req.Limit, Offset: req.Offset}
}

// ExecutorOptions bounds paging and result shaping
type ExecutorOptions struct {
	DefaultLimit         int
	MaxLimit             int
	ContentPreviewLength int
}

// ExecutorOptionsFrom reads the executor options from the search configuration
func ExecutorOptionsFrom(cfg platformconfig.SearchConfig) ExecutorOptions {
	return ExecutorOptions{
		DefaultLimit:         cfg.DefaultLimit,
		MaxLimit:             cfg.MaxLimit,
		ContentPreviewLength: cfg.ContentPreviewLength,
	}
}

// DefaultExecutorOptions returns limit 20 of at most 100 and 200-character previews
func DefaultExecutorOptions() ExecutorOptions {
	return ExecutorOptions{DefaultLimit: 20, MaxLimit: 100, ContentPreviewLength: 200}
}

// Executor runs a compiled predicate against the document store and shapes the page
type Executor struct {
	repo repository.DocumentRepository
	opts ExecutorOptions
}

// NewExecutor creates an executor; zero options take the defaults
func NewExecutor(repo repository.DocumentRepository, opts ExecutorOptions) *Executor {
	def := DefaultExecutorOptions()
	if opts.MaxLimit < 1 {
		opts.MaxLimit = def.MaxLimit
	}
	if opts.DefaultLimit < 1 || opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = min(def.DefaultLimit, opts.MaxLimit)
	}
	if opts.ContentPreviewLength < 1 {
		opts.ContentPreviewLength = def.ContentPreviewLength
	}
	return &Executor{repo: repo, opts: opts}
}

// FindOptions resolves a Page into effective repository options. An absent or
// unrecognized sort key selects updated_at DESC, whatever the requested order.
func (e *Executor) FindOptions(page Page) repository.FindOptions {
	limit := e.opts.DefaultLimit
	if page.Limit != nil {
		limit = *page.Limit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > e.opts.MaxLimit {
		limit = e.opts.MaxLimit
	}

	offset := 0
	if page.Offset != nil && *page.Offset > 0 {
		offset = *page.Offset
	}

	opts := repository.FindOptions{SortBy: repository.SortUpdatedAt, SortDesc: true, Limit: limit, Offset: offset}
	if sortable[page.SortBy] {
		opts.SortBy = page.SortBy
		opts.SortDesc = page.SortOrder != models.SortAsc
	}
	return opts
}

// Execute runs the count and the page query concurrently on the same predicate
func (e *Executor) Execute(ctx context.Context, pred predicate.Predicate, page Page) (*models.SearchResponse, error) {
	opts := e.FindOptions(page)

	var (
		total int64
		docs  []models.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := e.repo.Count(gctx, pred)
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := e.repo.Find(gctx, pred, opts)
		if err != nil {
			return fmt.Errorf("find documents: %w", err)
		}
		docs = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("execute search", err)
	}

	results := make([]models.SearchResult, 0, len(docs))
	for i := range docs {
		results = append(results, e.shape(&docs[i]))
	}

	return &models.SearchResponse{
		Success: true,
		Results: results,
		Total:   total,
		Metadata: models.SearchMetadata{
			Limit:   opts.Limit,
			Offset:  opts.Offset,
			HasMore: hasMore(total, opts.Offset, opts.Limit),
		},
	}, nil
}

// hasMore reports total > offset+limit without overflowing on huge offsets
func hasMore(total int64, offset, limit int) bool {
	if int64(offset) >= total {
		return false
	}
	return total-int64(offset) > int64(limit)
}

// Count runs only the count query
func (e *Executor) Count(ctx context.Context, pred predicate.Predicate) (int64, error) {
	n, err := e.repo.Count(ctx, pred)
	if err != nil {
		return 0, storeError("count documents", err)
	}
	return n, nil
}

// storeError wraps a repository failure so it matches ErrDatabaseOperation
func storeError(op string, err error) error {
	return searchErrors.NewSearchError(searchErrors.CodeInternalError, op,
		fmt.Errorf("%w: %w", searchErrors.ErrDatabaseOperation, err))
}

func (e *Executor) shape(doc *models.Document) models.SearchResult {
	tags := make([]string, 0, len(doc.Tags))
	for _, t := range doc.Tags {
		tags = append(tags, t.Name)
	}
	return models.SearchResult{
		ID:        doc.ID.String(),
		Title:     doc.Title,
		Content:   Truncate(doc.Content, e.opts.ContentPreviewLength),
		Category:  doc.Category,
		Author:    AuthorName(doc.Author),
		CreatedAt: FormatTimestamp(doc.CreatedAt),
		UpdatedAt: FormatTimestamp(doc.UpdatedAt),
		Tags:      tags,
		Status:    doc.Status,
		FileType:  doc.FileType,
	}
}

// Truncate cuts s to n characters and marks the cut with an ellipsis
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + ellipsis
}

// AuthorName is "First Last", or Unknown when the creator is absent or unnamed
func AuthorName(a *models.Author) string {
	if a == nil {
		return unknownAuthor
	}
	name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if name == "" {
		return unknownAuthor
	}
	return name
}

// FormatTimestamp renders t in TimestampFormat; the zero time renders empty
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampFormat)
}
