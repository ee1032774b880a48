package credentials

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"cv-improver/internal/shared/storage/db"
	"cv-improver/internal/shared/util"
)

func TestPGStoreSetUpserts(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := NewPGStore(database)
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(util.HashOwner("session-1"), "AIza-key").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Set(context.Background(), "session-1", "AIza-key"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreGet(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := NewPGStore(database)
	mock.ExpectQuery("SELECT value").
		WithArgs(util.HashOwner("session-1")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("AIza-key"))
	mock.ExpectQuery("SELECT value").
		WithArgs(util.HashOwner("session-2")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	got, err := store.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "AIza-key" {
		t.Fatalf("expected stored key, got %q", got)
	}
	if _, err := store.Get(context.Background(), "session-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreRemove(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := NewPGStore(database)
	mock.ExpectExec("DELETE FROM credentials").
		WithArgs(util.HashOwner("session-1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Remove(context.Background(), "session-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "cv.db"), db.DefaultCLIOptions())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	if err := db.RunMigrations(ctx, database, db.DriverSQLite); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	store := NewSQLiteStore(database)
	if _, err := store.Get(ctx, "owner"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before Set, got %v", err)
	}
	if err := store.Set(ctx, "owner", "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "owner", "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := store.Get(ctx, "owner")
	if err != nil || got != "second" {
		t.Fatalf("expected overwritten value, got %q err=%v", got, err)
	}
	if err := store.Remove(ctx, "owner"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Get(ctx, "owner"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after Remove, got %v", err)
	}
	if err := store.Remove(ctx, "owner"); err != nil {
		t.Fatalf("Remove of absent owner should succeed: %v", err)
	}
}
