package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS feedback").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS feeds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_guid").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_score").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_fetched").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_feedback_article").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Initialize(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitialize_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS feedback").
		WillReturnError(sql.ErrConnDone)

	err = Initialize(context.Background(), db)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 実際のSQLiteで二回実行しても壊れないことを確認する
func TestInitialize_IdempotentOnRealDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "articles.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, Initialize(ctx, db))
	require.NoError(t, Initialize(ctx, db))

	_, err = db.ExecContext(ctx,
		`INSERT INTO articles (guid, feed_name, title, link) VALUES ('g1', 'Zenn', 'T', 'https://example.com')`)
	require.NoError(t, err)

	var score int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT ai_score FROM articles WHERE guid = 'g1'`).Scan(&score))
	assert.Equal(t, 0, score)

	// score outside 0..5 is rejected by the CHECK constraint
	_, err = db.ExecContext(ctx, `UPDATE articles SET ai_score = 9 WHERE guid = 'g1'`)
	assert.Error(t, err)

	// foreign_keys pragma is active on pooled connections
	_, err = db.ExecContext(ctx, `INSERT INTO feedback (article_id, feedback_type) VALUES (999, 'like')`)
	assert.Error(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO feedback (article_id, feedback_type) VALUES (1, 'love')`)
	assert.Error(t, err)
}
