// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
)

// UserSchema lists the user filters and ordering.
var UserSchema = query.Schema{
	Fields: []query.Field{
		{Param: "email", Column: "email"},
		{Param: "username", Column: "username"},
		{Param: "nickname", Column: "nickname", Op: query.OpContains},
		{Param: "role", Column: "role", Type: query.TypeInt},
	},
	Order: []string{"id ASC"},
}

// userGuard maps authored courses onto a Conflict instead of a raw
// constraint failure.
var userGuard = Guard{
	Table:  "users",
	Entity: "User",
	Dependents: []Dependent{
		{Table: "courses", Column: "user_id", Message: "User has authored courses and cannot be deleted"},
	},
}

const userColumns = `id, email, username, nickname, password_hash, avatar, sex, company, introduce,
	role, created_at, updated_at`

// UserRepo persists users.
type UserRepo struct {
	conn
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Nickname, &u.PasswordHash, &u.Avatar,
		&u.Sex, &u.Company, &u.Introduce, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns one page of users matching spec and the total count.
func (r *UserRepo) List(ctx context.Context, spec query.Spec) ([]model.User, int64, error) {
	return listAndCount(ctx, r.db, userColumns, "users", spec, scanUser)
}

// Get returns the user with id.
func (r *UserRepo) Get(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return u, apperr.FromNoRows(err, fmt.Sprintf("User ID %d not found", id))
	}
	return u, nil
}

// GetByLogin returns the user whose email or username equals login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? OR username = ? ORDER BY id LIMIT 1", login, login))
	if err != nil {
		return u, apperr.FromNoRows(err, "User not found")
	}
	return u, nil
}

// Exists reports whether a user with id exists.
func (r *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, "users", id)
}

// Create inserts u and sets its ID and timestamps. PasswordHash must already
// be hashed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, username, nickname, password_hash, avatar, sex, company, introduce,
			role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Username, u.Nickname, u.PasswordHash, u.Avatar, u.Sex, u.Company, u.Introduce,
		u.Role, now, now)
	if err != nil {
		return translateErr(fmt.Errorf("creating user: %w", err), "User conflicts with an existing record")
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// Update writes the mutable fields of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, username = ?, nickname = ?, password_hash = ?, avatar = ?, sex = ?,
			company = ?, introduce = ?, role = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.Username, u.Nickname, u.PasswordHash, u.Avatar, u.Sex,
		u.Company, u.Introduce, u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		return translateErr(fmt.Errorf("updating user: %w", err), "User conflicts with an existing record")
	}
	return nil
}

// Delete removes the user with id unless they authored courses.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	return userGuard.Delete(ctx, r.conn, id, nil)
}

// CountBySex returns the number of users per sex value in the order
// male, female, unspecified.
func (r *UserRepo) CountBySex(ctx context.Context) ([]model.SexCount, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT sex, COUNT(*) FROM users GROUP BY sex")
	if err != nil {
		return nil, fmt.Errorf("counting users by sex: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := map[int]int64{}
	for rows.Next() {
		var sex int
		var n int64
		if err := rows.Scan(&sex, &n); err != nil {
			return nil, fmt.Errorf("scanning sex count: %w", err)
		}
		counts[sex] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sex counts: %w", err)
	}

	return []model.SexCount{
		{Value: counts[model.SexMale], Name: "male"},
		{Value: counts[model.SexFemale], Name: "female"},
		{Value: counts[model.SexUnspecified], Name: "unspecified"},
	}, nil
}

// CountByMonth returns the number of users registered per calendar month
// (YYYY-MM), oldest first.
func (r *UserRepo) CountByMonth(ctx context.Context) ([]model.MonthlyCount, error) {
	month := "substr(created_at, 1, 7)"
	if r.dialect == DialectMySQL {
		month = "DATE_FORMAT(created_at, '%Y-%m')"
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+month+" AS month, COUNT(*) AS value FROM users GROUP BY month ORDER BY month ASC")
	if err != nil {
		return nil, fmt.Errorf("counting users by month: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.MonthlyCount
	for rows.Next() {
		var mc model.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Value); err != nil {
			return nil, fmt.Errorf("scanning month count: %w", err)
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}
