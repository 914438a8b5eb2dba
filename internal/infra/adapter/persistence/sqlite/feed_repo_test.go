package sqlite_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/infra/adapter/persistence/sqlite"
)

func TestFeedRepo_ListActive(t *testing.T) {
	t.Parallel()

	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("FROM feeds\\s+WHERE is_active = 1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "category", "is_active", "last_fetched_at", "created_at"}).
			AddRow(1, "Zenn", "https://zenn.dev/feed", "tech", 1, nil, "2025-01-02 03:04:05"))

	got, err := sqlite.NewFeedRepo(db).ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive err=%v", err)
	}
	want := []*entity.Feed{{ID: 1, Name: "Zenn", URL: "https://zenn.dev/feed", Category: "tech", Active: true, CreatedAt: created}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListActive mismatch (-want +got):\n%s", diff)
	}
}

func TestFeedRepo_Add(t *testing.T) {
	t.Parallel()

	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT(url) DO NOTHING")).
		WithArgs("Zenn", "https://zenn.dev/feed", "tech").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO feeds").
		WithArgs("Zenn", "https://zenn.dev/feed", "tech").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := sqlite.NewFeedRepo(db)
	f := &entity.Feed{Name: "Zenn", URL: "https://zenn.dev/feed", Category: "tech"}
	inserted, err := repo.Add(context.Background(), f)
	if err != nil || !inserted || f.ID != 3 || !f.Active {
		t.Fatalf("Add inserted=%v feed=%+v err=%v", inserted, f, err)
	}

	inserted, err = repo.Add(context.Background(), &entity.Feed{Name: "Zenn", URL: "https://zenn.dev/feed", Category: "tech"})
	if err != nil || inserted {
		t.Fatalf("duplicate Add inserted=%v err=%v", inserted, err)
	}

	if _, err := repo.Add(context.Background(), &entity.Feed{Name: "bad", URL: "file:///etc/passwd"}); err == nil {
		t.Fatal("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFeedRepo_CountActiveAndTouch(t *testing.T) {
	t.Parallel()

	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM feeds WHERE is_active = 1")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE feeds SET last_fetched_at = ? WHERE id = ?")).
		WithArgs("2025-07-19T10:00:00Z", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := sqlite.NewFeedRepo(db)
	n, err := repo.CountActive(context.Background())
	if err != nil || n != 12 {
		t.Fatalf("CountActive n=%d err=%v", n, err)
	}
	at := time.Date(2025, 7, 19, 19, 0, 0, 0, time.FixedZone("JST", 9*3600))
	if err := repo.TouchFetched(context.Background(), 2, at); err != nil {
		t.Fatalf("TouchFetched err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
