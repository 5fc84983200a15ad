// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
)

// CourseSchema lists the course filters and ordering.
var CourseSchema = query.Schema{
	Fields: []query.Field{
		{Param: "categoryId", Column: "c.category_id", Type: query.TypeInt},
		{Param: "userId", Column: "c.user_id", Type: query.TypeInt},
		{Param: "name", Column: "c.name", Op: query.OpContains},
		{Param: "recommended", Column: "c.recommended", Type: query.TypeBool},
		{Param: "introductory", Column: "c.introductory", Type: query.TypeBool},
	},
	Order: []string{"c.id ASC"},
}

var courseGuard = Guard{
	Table:  "courses",
	Entity: "Course",
	Dependents: []Dependent{
		{Table: "chapters", Column: "course_id", Message: "Course has chapters and cannot be deleted"},
	},
}

const (
	courseColumns = `c.id, c.category_id, c.user_id, c.name, c.image, c.recommended, c.introductory,
		c.content, c.likes_count, c.chapters_count, c.created_at, c.updated_at,
		cat.id, cat.name, u.id, u.username, u.avatar`
	courseFrom = `courses c
		LEFT JOIN categories cat ON cat.id = c.category_id
		LEFT JOIN users u ON u.id = c.user_id`
)

// CourseRepo persists courses. Reads eager-load the category and author.
type CourseRepo struct {
	conn
}

func scanCourse(row rowScanner) (model.Course, error) {
	var (
		c                      model.Course
		catID, userID          sql.NullInt64
		catName, uName, avatar sql.NullString
	)
	err := row.Scan(&c.ID, &c.CategoryID, &c.UserID, &c.Name, &c.Image, &c.Recommended, &c.Introductory,
		&c.Content, &c.LikesCount, &c.ChaptersCount, &c.CreatedAt, &c.UpdatedAt,
		&catID, &catName, &userID, &uName, &avatar)
	if err != nil {
		return c, err
	}
	if catID.Valid {
		c.Category = &model.CategoryRef{ID: catID.Int64, Name: catName.String}
	}
	if userID.Valid {
		c.User = &model.UserRef{ID: userID.Int64, Username: uName.String, Avatar: avatar.String}
	}
	return c, nil
}

// List returns one page of courses matching spec and the total count.
func (r *CourseRepo) List(ctx context.Context, spec query.Spec) ([]model.Course, int64, error) {
	return listAndCount(ctx, r.db, courseColumns, courseFrom, spec, scanCourse)
}

// Get returns the course with id including its category and author.
func (r *CourseRepo) Get(ctx context.Context, id int64) (model.Course, error) {
	return r.get(ctx, r.db, id)
}

func (r *CourseRepo) get(ctx context.Context, q querier, id int64) (model.Course, error) {
	c, err := scanCourse(q.QueryRowContext(ctx,
		"SELECT "+courseColumns+" FROM "+courseFrom+" WHERE c.id = ?", id))
	if err != nil {
		return c, apperr.FromNoRows(err, fmt.Sprintf("Course ID %d not found", id))
	}
	return c, nil
}

// Exists reports whether a course with id exists.
func (r *CourseRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, "courses", id)
}

// Create inserts c and reloads it with associations.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (category_id, user_id, name, image, recommended, introductory, content,
			likes_count, chapters_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		c.CategoryID, c.UserID, c.Name, c.Image, c.Recommended, c.Introductory, c.Content, now, now)
	if err != nil {
		return translateErr(fmt.Errorf("creating course: %w", err), "Course references a missing category or user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading course id: %w", err)
	}

	created, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	*c = created
	return nil
}

// Update writes the mutable fields of c and reloads its associations.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE courses SET category_id = ?, user_id = ?, name = ?, image = ?, recommended = ?,
			introductory = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		c.CategoryID, c.UserID, c.Name, c.Image, c.Recommended, c.Introductory, c.Content,
		time.Now().UTC(), c.ID)
	if err != nil {
		return translateErr(fmt.Errorf("updating course: %w", err), "Course references a missing category or user")
	}

	updated, err := r.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = updated
	return nil
}

// Delete removes the course with id unless chapters reference it.
func (r *CourseRepo) Delete(ctx context.Context, id int64) error {
	return courseGuard.Delete(ctx, r.conn, id, nil)
}
