// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	uuid "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/database/postgres"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
)

// postgresRepository implements DocumentRepository with squirrel-built SQL
type postgresRepository struct {
	client  *postgres.Client
	builder sq.StatementBuilderType
}

// NewPostgresRepository creates a new PostgreSQL repository for documents
func NewPostgresRepository(client *postgres.Client) DocumentRepository {
	return &postgresRepository{
		client:  client,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// documentRow is one row of the page query
type documentRow struct {
	ID              uuid.UUID      `db:"id"`
	Title           string         `db:"title"`
	Content         string         `db:"content"`
	FileType        sql.NullString `db:"file_type"`
	Category        sql.NullString `db:"category"`
	Status          string         `db:"status"`
	OwnerID         uuid.UUID      `db:"owner_id"`
	CreatedBy       uuid.NullUUID  `db:"created_by"`
	AuthorFirstName sql.NullString `db:"author_first_name"`
	AuthorLastName  sql.NullString `db:"author_last_name"`
	AuthorEmail     sql.NullString `db:"author_email"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	DeletedAt       sql.NullTime   `db:"deleted_at"`
}

type tagRow struct {
	DocumentID uuid.UUID      `db:"document_id"`
	Name       string         `db:"name"`
	Color      sql.NullString `db:"color"`
}

var pageColumns = []string{
	"d.id", "d.title", "d.content", "d.file_type", "d.category", "d.status", "d.owner_id",
	"d.created_by", "u.first_name AS author_first_name", "u.last_name AS author_last_name",
	"u.email AS author_email", "d.created_at", "d.updated_at", "d.deleted_at",
}

// Count returns the number of documents matching the predicate
func (r *postgresRepository) Count(ctx context.Context, pred predicate.Predicate) (int64, error) {
	query, args, err := r.buildCountQuery(pred)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := sqlx.GetContext(ctx, r.client.DB(), &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Find retrieves one page of matching documents with author and tags
func (r *postgresRepository) Find(ctx context.Context, pred predicate.Predicate, opts FindOptions) ([]models.Document, error) {
	query, args, err := r.buildFindQuery(pred, opts)
	if err != nil {
		return nil, err
	}

	var rows []documentRow
	if err := sqlx.SelectContext(ctx, r.client.DB(), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	if len(rows) == 0 {
		return []models.Document{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID.String()
	}
	tags, err := r.loadTags(ctx, ids)
	if err != nil {
		return nil, err
	}

	docs := make([]models.Document, len(rows))
	for i, row := range rows {
		docs[i] = row.toDocument(tags[row.ID])
	}
	return docs, nil
}

// Ping checks the database connection
func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// Migrate applies the document schema
func Migrate(ctx context.Context, client *postgres.Client) error {
	if _, err := client.DB().ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *postgresRepository) loadTags(ctx context.Context, ids []string) (map[uuid.UUID][]models.Tag, error) {
	query := `
		SELECT dt.document_id, t.name, t.color
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id = ANY($1::uuid[])
		ORDER BY t.name`

	var rows []tagRow
	if err := sqlx.SelectContext(ctx, r.client.DB(), &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load document tags: %w", err)
	}

	byDocument := make(map[uuid.UUID][]models.Tag, len(ids))
	for _, row := range rows {
		byDocument[row.DocumentID] = append(byDocument[row.DocumentID], models.Tag{Name: row.Name, Color: row.Color.String})
	}
	return byDocument, nil
}

func (r *postgresRepository) from(q sq.SelectBuilder) sq.SelectBuilder {
	return q.From("documents d").LeftJoin("users u ON u.id = d.created_by")
}

func (r *postgresRepository) buildCountQuery(pred predicate.Predicate) (string, []interface{}, error) {
	where, err := ToSqlizer(pred)
	if err != nil {
		return "", nil, fmt.Errorf("failed to translate predicate: %w", err)
	}
	return r.from(r.builder.Select("COUNT(*)")).Where(where).ToSql()
}

func (r *postgresRepository) buildFindQuery(pred predicate.Predicate, opts FindOptions) (string, []interface{}, error) {
	where, err := ToSqlizer(pred)
	if err != nil {
		return "", nil, fmt.Errorf("failed to translate predicate: %w", err)
	}

	sortCol, ok := sortColumns[opts.SortBy]
	if !ok {
		return "", nil, fmt.Errorf("unsupported sort key %q", opts.SortBy)
	}
	dir := "ASC"
	if opts.SortDesc {
		dir = "DESC"
	}

	return r.from(r.builder.Select(pageColumns...)).
		Where(where).
		OrderBy(sortCol+" "+dir, "d.id "+dir).
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
}

func (row documentRow) toDocument(tags []models.Tag) models.Document {
	doc := models.Document{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		FileType:  row.FileType.String,
		Category:  row.Category.String,
		Status:    row.Status,
		OwnerID:   row.OwnerID,
		Tags:      tags,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.CreatedBy.Valid {
		doc.Author = &models.Author{
			ID:        row.CreatedBy.UUID,
			FirstName: row.AuthorFirstName.String,
			LastName:  row.AuthorLastName.String,
			Email:     row.AuthorEmail.String,
		}
	}
	if row.DeletedAt.Valid {
		deletedAt := row.DeletedAt.Time
		doc.DeletedAt = &deletedAt
	}
	return doc
}
