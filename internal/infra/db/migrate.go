package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    guid          TEXT UNIQUE NOT NULL,
    feed_name     TEXT,
    title         TEXT NOT NULL,
    link          TEXT NOT NULL,
    summary       TEXT,
    published_at  TEXT,
    fetched_at    TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
    ai_score      INTEGER NOT NULL DEFAULT 0 CHECK (ai_score BETWEEN 0 AND 5),
    score_summary TEXT,
    is_read       INTEGER DEFAULT 0,
    created_at    TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
)`,
	`CREATE TABLE IF NOT EXISTS feedback (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    article_id    INTEGER NOT NULL REFERENCES articles(id),
    feedback_type TEXT NOT NULL CHECK (feedback_type IN ('like', 'dislike', 'click')),
    created_at    TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
)`,
	`CREATE TABLE IF NOT EXISTS feeds (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT NOT NULL,
    url             TEXT UNIQUE NOT NULL,
    category        TEXT,
    is_active       INTEGER DEFAULT 1,
    last_fetched_at TEXT,
    created_at      TEXT DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
)`,
	// 重複チェック用
	`CREATE INDEX IF NOT EXISTS idx_articles_guid ON articles(guid)`,
	// 公開用の並び替え
	`CREATE INDEX IF NOT EXISTS idx_articles_score ON articles(ai_score DESC)`,
	// 未スコア記事の取得と保持期間の削除
	`CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_article ON feedback(article_id)`,
}

// Initialize creates the tables and indexes if they do not exist.
// It is safe to call on every process start.
func Initialize(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Initialize: statement %d: %w", i, err)
		}
	}
	return nil
}
