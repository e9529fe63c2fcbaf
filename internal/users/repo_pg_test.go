package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	user := User{
		ID:          "google:123",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		PhotoURL:    "https://img.example/alice.png",
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.DisplayName, user.PhotoURL).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), user); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertNullsEmptyProfileFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("google:123", "alice@example.com", nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Upsert(context.Background(), User{ID: "google:123", Email: "alice@example.com"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "email", "display_name", "photo_url", "created_at", "updated_at"}).
		AddRow("google:123", "alice@example.com", "Alice", nil, created, created)
	mock.ExpectQuery("SELECT id, email, display_name, photo_url").
		WithArgs("google:123").
		WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), "google:123")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.DisplayName != "Alice" {
		t.Fatalf("display name = %q, want Alice", user.DisplayName)
	}
	if user.PhotoURL != "" {
		t.Fatalf("photo url = %q, want empty", user.PhotoURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, email, display_name, photo_url").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "photo_url", "created_at", "updated_at"}))

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
