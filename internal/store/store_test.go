package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/blogflow/internal/workflow"
)

func openTemp(t *testing.T) *ArticleStore {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "db", "articles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func article(wf string, blogID int) workflow.Article {
	return workflow.Article{
		WorkflowID:      wf,
		UserID:          "user-1",
		SessionID:       "sess",
		BlogID:          blogID,
		Keyword:         "running shoes",
		Title:           "Best Running Shoes",
		AlternateTitle:  "Top Shoes",
		Body:            "<h1>Best shoes</h1><p>Run <b>fast</b> and far.</p><script>track()</script>",
		MetaDescription: "meta",
		OutlineID:       "77",
	}
}

func TestPersistAndList(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	ack1, err := s.Persist(ctx, article("wf-1", 11111))
	require.NoError(t, err)
	ack2, err := s.Persist(ctx, article("wf-2", 22222))
	require.NoError(t, err)
	assert.Greater(t, ack2.ID, ack1.ID)
	assert.Equal(t, base.Add(time.Minute), ack1.StoredAt)

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "wf-2", list[0].WorkflowID)
	assert.Equal(t, 22222, list[0].BlogID)
	assert.Equal(t, "Best shoes Run fast and far.", list[1].Excerpt)
	assert.Equal(t, 6, list[1].WordCount)
	assert.True(t, list[1].CreatedAt.Equal(base.Add(time.Minute)))

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ack2.ID, list[0].ID)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	_, err = s.Persist(context.Background(), article("wf-1", 11111))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()
	list, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.ErrorContains(t, err, "unsupported driver")
	_, err = Open(context.Background(), DriverSQLite, "")
	assert.ErrorContains(t, err, "dsn is required")
}

func TestInsertPlaceholders(t *testing.T) {
	pg := newArticleStore(nil, DriverPostgres)
	query, args, err := pg.insertArticle(article("wf", 1), time.Unix(0, 0)).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "$13")
	assert.Contains(t, query, "RETURNING id")
	assert.Len(t, args, len(articleColumns))

	lite := newArticleStore(nil, DriverSQLite)
	query, _, err = lite.insertArticle(article("wf", 1), time.Unix(0, 0)).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "?")
	assert.NotContains(t, query, "RETURNING")
}
