package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS articles (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	workflow_id      TEXT NOT NULL,
	user_id          TEXT NOT NULL DEFAULT '',
	session_id       TEXT NOT NULL DEFAULT '',
	blog_id          INTEGER NOT NULL,
	keyword          TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL,
	alternate_title  TEXT NOT NULL,
	body             TEXT NOT NULL,
	excerpt          TEXT NOT NULL DEFAULT '',
	word_count       INTEGER NOT NULL DEFAULT 0,
	meta_description TEXT NOT NULL DEFAULT '',
	outline_id       TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_workflow ON articles(workflow_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS articles (
	id               BIGSERIAL PRIMARY KEY,
	workflow_id      TEXT NOT NULL,
	user_id          TEXT NOT NULL DEFAULT '',
	session_id       TEXT NOT NULL DEFAULT '',
	blog_id          INTEGER NOT NULL,
	keyword          TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL,
	alternate_title  TEXT NOT NULL,
	body             TEXT NOT NULL,
	excerpt          TEXT NOT NULL DEFAULT '',
	word_count       INTEGER NOT NULL DEFAULT 0,
	meta_description TEXT NOT NULL DEFAULT '',
	outline_id       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_workflow ON articles(workflow_id);
`
