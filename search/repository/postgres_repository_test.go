package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/testutil"
	p "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
)

func TestPostgresRepository_Integration(t *testing.T) {
	client := testutil.NewIsolatedPostgres(t)
	db := client.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, Migrate(ctx, client))

	author := uuid.Must(uuid.NewV4())
	tag := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())
	docs := []struct {
		id    uuid.UUID
		title string
		owner uuid.UUID
	}{
		{uuid.Must(uuid.NewV4()), "Sales Guide", owner},
		{uuid.Must(uuid.NewV4()), "SALES Playbook", owner},
		{uuid.Must(uuid.NewV4()), "Marketing Plan", owner},
		{uuid.Must(uuid.NewV4()), "Sales Overview", other},
	}

	_, err := db.ExecContext(ctx, `INSERT INTO users (id, first_name, last_name, email) VALUES ($1, 'Ann', 'Lee', 'ann@acme.io')`, author)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name, color) VALUES ($1, 'Urgent', 'red')`, tag)
	require.NoError(t, err)
	for i, d := range docs {
		_, err = db.ExecContext(ctx,
			`INSERT INTO documents (id, title, content, owner_id, created_by, updated_at) VALUES ($1, $2, 'body', $3, $4, NOW() - make_interval(mins => $5))`,
			d.id, d.title, d.owner, author, i)
		require.NoError(t, err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2)`, docs[0].id, tag)
	require.NoError(t, err)

	repo := NewPostgresRepository(client)
	pred := p.And(p.Scope(owner), p.Test(p.AttrTitle, p.OpContains, "sales", true))

	total, err := repo.Count(ctx, pred)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	page, err := repo.Find(ctx, pred, FindOptions{SortBy: SortUpdatedAt, SortDesc: true, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Sales Guide", page[0].Title)
	require.NotNil(t, page[0].Author)
	assert.Equal(t, "Ann", page[0].Author.FirstName)
	require.Len(t, page[0].Tags, 1)
	assert.Equal(t, "Urgent", page[0].Tags[0].Name)

	tagged, err := repo.Count(ctx, p.And(p.Scope(owner), p.Test(p.AttrTags, p.OpHas, "URGENT", true)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), tagged)
}
