package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/gobacks-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gobacks-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Name: "panicked"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var count int64
	if err := client.DB().Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected panic rollback to leave 0 records, got %d", count)
	}
}

func TestPingAndDialect(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Dialect() != DialectSQLite {
		t.Fatalf("expected sqlite dialect, got %q", client.Dialect())
	}
	if NewFromGorm(client.DB()).Dialect() != DialectSQLite {
		t.Fatalf("expected wrapped connection to report sqlite")
	}
}

func TestSQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "db.sqlite3")

	dsn, err := sqliteDSN(config.DBConfig{Driver: config.DriverSQLite, Path: path, BusyTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(dsn, "file:"+path+"?") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if !strings.Contains(dsn, "_foreign_keys=on") || !strings.Contains(dsn, "_busy_timeout=2000") {
		t.Fatalf("expected pragmas in dsn %q", dsn)
	}

	dsn, err = sqliteDSN(config.DBConfig{Driver: config.DriverSQLite, DSN: "file:x.db?_fk=1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(dsn, "_foreign_keys") {
		t.Fatalf("explicit _fk should be kept as-is, got %q", dsn)
	}

	if _, err := sqliteDSN(config.DBConfig{Driver: config.DriverSQLite}); err == nil {
		t.Fatal("expected missing path to fail")
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{Driver: "oracle"}, nil); err == nil {
		t.Fatal("expected unsupported driver error")
	}
	if _, err := New(context.Background(), config.DBConfig{Driver: config.DriverPostgres}, nil); err == nil {
		t.Fatal("expected missing postgres dsn error")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pkgerrors.Code
	}{
		{"record not found", gorm.ErrRecordNotFound, pkgerrors.CodeNotFound},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, pkgerrors.CodeConstraint},
		{"pg unique", &pgconn.PgError{Code: "23505"}, pkgerrors.CodeConstraint},
		{"pg connection", &pgconn.PgError{Code: "08006"}, pkgerrors.CodeUnavailable},
		{"pg shutdown", &pgconn.PgError{Code: "57P01"}, pkgerrors.CodeUnavailable},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, pkgerrors.CodeConstraint},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, pkgerrors.CodeUnavailable},
		{"deadline", context.DeadlineExceeded, pkgerrors.CodeUnavailable},
		{"other", errors.New("boom"), pkgerrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(fmt.Errorf("wrapped: %w", tt.err), "op")
			if code := pkgerrors.CodeOf(got); code != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, code)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("cause not preserved for %v", tt.err)
			}
		})
	}

	typed := pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	if Classify(typed, "op") != error(typed) {
		t.Fatal("typed errors should pass through")
	}
	if Classify(nil, "op") != nil {
		t.Fatal("nil should stay nil")
	}
}

func TestConstraintHelpers(t *testing.T) {
	fk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	if !IsForeignKeyViolation(fk) || IsUniqueViolation(fk, "") {
		t.Fatal("sqlite fk misclassified")
	}
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("pg fk misclassified")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}, "") {
		t.Fatal("pg unique misclassified")
	}
	if !IsUniqueViolation(errors.New(`violates "carts_pkey"`), "carts_pkey") {
		t.Fatal("constraint name lookup failed")
	}
	if IsUnavailable(nil) {
		t.Fatal("nil is not unavailable")
	}
}
