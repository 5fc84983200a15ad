// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the oCourse project.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"

	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file database through store.NewDB with
// migrations applied. It is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "ocourse-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db, store.DialectSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

var memoryDBSeq atomic.Int64

// TestMemoryDB opens a private in-memory SQLite database with foreign keys
// enforced and migrations applied. A single connection keeps the in-memory
// schema alive for the whole test.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ocourse-%d?mode=memory&cache=private&_foreign_keys=1&_txlock=immediate",
		memoryDBSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("opening memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db, store.DialectSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestStore returns a Store over a fresh in-memory database.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(TestMemoryDB(t), store.DialectSQLite)
}

// CreateUser inserts a user with the given login and role. The password is
// the login followed by "-pass".
func CreateUser(t *testing.T, st *store.Store, login string, role int) model.User {
	t.Helper()

	hash, err := auth.HashPassword(login + "-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := model.User{
		Email:        login + "@example.com",
		Username:     login,
		Nickname:     login,
		PasswordHash: hash,
		Sex:          model.SexUnspecified,
		Role:         role,
	}
	if err := st.Users.Create(context.Background(), &u); err != nil {
		t.Fatalf("creating user %q: %v", login, err)
	}
	return u
}
