// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store implements the SQL repositories behind the admin API.
// Every repository works against SQLite and MySQL through database/sql.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/query"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Store groups the per-entity repositories sharing one connection pool.
type Store struct {
	db      *sql.DB
	dialect Dialect

	Articles   *ArticleRepo
	Categories *CategoryRepo
	Courses    *CourseRepo
	Chapters   *ChapterRepo
	Users      *UserRepo
	Settings   *SettingRepo
	Events     *EventRepo
}

// New creates a Store for db.
func New(db *sql.DB, dialect Dialect) *Store {
	c := conn{db: db, dialect: dialect}
	return &Store{
		db:         db,
		dialect:    dialect,
		Articles:   &ArticleRepo{conn: c},
		Categories: &CategoryRepo{conn: c},
		Courses:    &CourseRepo{conn: c},
		Chapters:   &ChapterRepo{conn: c},
		Users:      &UserRepo{conn: c},
		Settings:   &SettingRepo{conn: c},
		Events:     &EventRepo{conn: c},
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// conn is embedded by every repository.
type conn struct {
	db      *sql.DB
	dialect Dialect
}

// listAndCount runs the count and page queries for spec. from is the FROM
// clause including any joins; columns is the select list.
func listAndCount[T any](ctx context.Context, q querier, columns, from string, spec query.Spec, scan func(rowScanner) (T, error)) ([]T, int64, error) {
	where, args := spec.Where()

	var total int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting rows: %w", err)
	}

	items := make([]T, 0, spec.Limit())
	if total == 0 {
		return items, 0, nil
	}

	stmt := "SELECT " + columns + " FROM " + from + where + spec.OrderBy() + " LIMIT ? OFFSET ?"
	rows, err := q.QueryContext(ctx, stmt, append(args, spec.Limit(), spec.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating rows: %w", err)
	}

	return items, total, nil
}

// count returns the number of rows in table where column equals value.
func count(ctx context.Context, q querier, table, column string, value any) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE "+column+" = ?", value).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// exists reports whether a row with id exists in table.
func exists(ctx context.Context, q querier, table string, id int64) (bool, error) {
	n, err := count(ctx, q, table, "id", id)
	return n > 0, err
}

// translateErr maps driver constraint failures onto application errors.
func translateErr(err error, msg string) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1451, 1452: // row is referenced / parent row missing
			return apperr.Conflict(msg, err)
		case 1062: // duplicate entry
			return apperr.Conflict("Record already exists", err)
		}
		return err
	}

	text := err.Error()
	switch {
	case strings.Contains(text, "FOREIGN KEY constraint failed"):
		return apperr.Conflict(msg, err)
	case strings.Contains(text, "UNIQUE constraint failed"):
		return apperr.Conflict("Record already exists", err)
	}
	return err
}
