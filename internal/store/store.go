// Package store persists finished articles to SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jorge-barreto/blogflow/internal/workflow"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const articlesTable = "articles"

var articleColumns = []string{
	"workflow_id", "user_id", "session_id", "blog_id", "keyword",
	"title", "alternate_title", "body", "excerpt", "word_count",
	"meta_description", "outline_id", "created_at",
}

// Summary is a listed article without its body.
type Summary struct {
	ID         int64
	WorkflowID string
	BlogID     int
	Keyword    string
	Title      string
	Excerpt    string
	WordCount  int
	CreatedAt  time.Time
}

// ArticleStore writes articles into the articles table.
type ArticleStore struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	now    func() time.Time
}

var _ workflow.ContentStore = (*ArticleStore)(nil)

// Open connects to the database and creates the schema when missing.
func Open(ctx context.Context, driver, dsn string) (*ArticleStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: dsn is required")
	}
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(strings.SplitN(dsn, "?", 2)[0]), 0o750); err != nil {
				return nil, fmt.Errorf("store: creating database directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: connecting: %w", err)
	}

	s := newArticleStore(db, driver)
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newArticleStore(db *sql.DB, driver string) *ArticleStore {
	return &ArticleStore{
		db:     db,
		driver: driver,
		sb:     builder(driver),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func builder(driver string) sq.StatementBuilderType {
	if driver == DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Close closes the database.
func (s *ArticleStore) Close() error {
	return s.db.Close()
}

func (s *ArticleStore) migrate(ctx context.Context) error {
	ddl := sqliteSchema
	if s.driver == DriverPostgres {
		ddl = postgresSchema
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: creating schema: %w", err)
	}
	return nil
}

// insertArticle builds the insert statement for a.
func (s *ArticleStore) insertArticle(a workflow.Article, createdAt time.Time) sq.InsertBuilder {
	text := PlainText(a.Body)
	q := s.sb.Insert(articlesTable).
		Columns(articleColumns...).
		Values(
			a.WorkflowID, a.UserID, a.SessionID, a.BlogID, a.Keyword,
			a.Title, a.AlternateTitle, a.Body, Excerpt(text, excerptWords), WordCount(text),
			a.MetaDescription, a.OutlineID, createdAt,
		)
	if s.driver == DriverPostgres {
		q = q.Suffix("RETURNING id")
	}
	return q
}

// Persist inserts a and returns its row id.
func (s *ArticleStore) Persist(ctx context.Context, a workflow.Article) (workflow.Ack, error) {
	createdAt := s.now()
	query, args, err := s.insertArticle(a, createdAt).ToSql()
	if err != nil {
		return workflow.Ack{}, fmt.Errorf("store: building insert: %w", err)
	}

	var id int64
	if s.driver == DriverPostgres {
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return workflow.Ack{}, fmt.Errorf("store: inserting article: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return workflow.Ack{}, fmt.Errorf("store: inserting article: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return workflow.Ack{}, fmt.Errorf("store: reading article id: %w", err)
		}
	}
	return workflow.Ack{ID: id, StoredAt: createdAt}, nil
}

// List returns the most recent articles, newest first. A limit of 0 or
// less lists everything.
func (s *ArticleStore) List(ctx context.Context, limit int) ([]Summary, error) {
	q := s.sb.Select("id", "workflow_id", "blog_id", "keyword", "title", "excerpt", "word_count", "created_at").
		From(articlesTable).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: listing articles: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var a Summary
		if err := rows.Scan(&a.ID, &a.WorkflowID, &a.BlogID, &a.Keyword, &a.Title, &a.Excerpt, &a.WordCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating articles: %w", err)
	}
	return out, nil
}
