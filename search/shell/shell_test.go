package shell

import (
	"bytes"
	"context"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/client"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/editor"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/repository"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/services"
)

func newShell(t *testing.T) (*Shell, *editor.Session, *bytes.Buffer) {
	t.Helper()
	owner := uuid.Must(uuid.NewV4())
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepository(
		models.Document{ID: uuid.Must(uuid.NewV4()), Title: "Sales Guide", Category: "SALES", OwnerID: owner, CreatedAt: now, UpdatedAt: now,
			Tags: []models.Tag{{Name: "urgent"}}},
		models.Document{ID: uuid.Must(uuid.NewV4()), Title: "Legal Terms", Category: "LEGAL", OwnerID: owner, CreatedAt: now, UpdatedAt: now.Add(time.Hour)},
	)
	local := client.NewLocal(services.NewSearchService(repo, services.Options{}), types.UserContext{UserID: owner})
	session := editor.NewSession(editor.WithSearchPort(local))
	out := &bytes.Buffer{}
	return New(session, out), session, out
}

func run(t *testing.T, sh *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, sh.Exec(context.Background(), line), line)
	}
}

func TestExec_BuildsTree(t *testing.T) {
	sh, session, out := newShell(t)

	run(t, sh,
		"add",
		"group",
		"add g1",
		"toggle g1",
		"field c2 category",
		"value c2 LEGAL",
		"field c1 tags",
		"list c1 urgent vip",
	)
	assert.Contains(t, out.String(), "c1\ng1\nc2\n")

	tree := session.Tree()
	require.Len(t, tree.Conditions, 1)
	assert.Equal(t, models.ListValue("urgent", "vip"), tree.Conditions[0].Value)
	assert.Equal(t, models.OperatorOR, tree.Groups[0].Operator)
	assert.Equal(t, models.StringValue("LEGAL"), tree.Groups[0].Conditions[0].Value)

	out.Reset()
	run(t, sh, "show")
	assert.Contains(t, out.String(), "root [AND]")
	assert.Contains(t, out.String(), "  g1 [OR]")
	assert.Contains(t, out.String(), `c2: category equals "LEGAL"`)

	run(t, sh, "rm g1", "rm c1")
	assert.True(t, session.Tree().IsEmpty())
}

func TestExec_Search(t *testing.T) {
	sh, _, out := newShell(t)

	run(t, sh, "add", "value c1 guide", "search")
	assert.Contains(t, out.String(), "Sales Guide")
	assert.NotContains(t, out.String(), "Legal Terms")
	assert.Contains(t, out.String(), "1 of 1 (limit 20, offset 0, more: false)")

	out.Reset()
	run(t, sh, "reset", "sort title asc", "page 1", "search")
	assert.Contains(t, out.String(), "Legal Terms")
	assert.Contains(t, out.String(), "1 of 2 (limit 1, offset 0, more: true)")
}

func TestExec_Errors(t *testing.T) {
	sh, _, _ := newShell(t)
	ctx := context.Background()

	assert.ErrorIs(t, sh.Exec(ctx, "exit"), ErrQuit)
	assert.NoError(t, sh.Exec(ctx, "   "))
	assert.ErrorContains(t, sh.Exec(ctx, "frobnicate"), "unknown command")
	assert.ErrorContains(t, sh.Exec(ctx, "field c1"), "usage")
	assert.ErrorIs(t, sh.Exec(ctx, "rm c9"), searchErrors.ErrNotFound)
	assert.ErrorContains(t, sh.Exec(ctx, "page ten"), "limit")
	assert.Error(t, sh.Exec(ctx, "preview on"))

	run(t, sh, "add")
	assert.ErrorIs(t, sh.Exec(ctx, "op c1 before"), searchErrors.ErrValidationFailed)
}

func TestHelpAndCompletion(t *testing.T) {
	sh, _, out := newShell(t)

	run(t, sh, "help")
	assert.Contains(t, out.String(), "toggle")
	assert.Equal(t, []string{"search", "show", "sort"}, sh.complete("s"))
}
