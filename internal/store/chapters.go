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

// ChapterSchema lists the chapter filters and ordering. Chapters are always
// listed within one course.
var ChapterSchema = query.Schema{
	Fields: []query.Field{
		{Param: "courseId", Column: "ch.course_id", Type: query.TypeInt, Required: true},
		{Param: "title", Column: "ch.title", Op: query.OpContains},
	},
	Order: []string{"ch.`rank` ASC", "ch.id ASC"},
}

const (
	chapterColumns = "ch.id, ch.course_id, ch.title, ch.content, ch.video, ch.`rank`, ch.created_at, ch.updated_at, co.id, co.name"
	chapterFrom    = "chapters ch LEFT JOIN courses co ON co.id = ch.course_id"
)

// ChapterRepo persists chapters and keeps courses.chapters_count in step.
type ChapterRepo struct {
	conn
}

func scanChapter(row rowScanner) (model.Chapter, error) {
	var (
		ch       model.Chapter
		courseID sql.NullInt64
		name     sql.NullString
	)
	err := row.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Content, &ch.Video, &ch.Rank,
		&ch.CreatedAt, &ch.UpdatedAt, &courseID, &name)
	if err != nil {
		return ch, err
	}
	if courseID.Valid {
		ch.Course = &model.CourseRef{ID: courseID.Int64, Name: name.String}
	}
	return ch, nil
}

// List returns one page of chapters matching spec and the total count.
func (r *ChapterRepo) List(ctx context.Context, spec query.Spec) ([]model.Chapter, int64, error) {
	return listAndCount(ctx, r.db, chapterColumns, chapterFrom, spec, scanChapter)
}

// Get returns the chapter with id including its course.
func (r *ChapterRepo) Get(ctx context.Context, id int64) (model.Chapter, error) {
	return r.get(ctx, r.db, id)
}

func (r *ChapterRepo) get(ctx context.Context, q querier, id int64) (model.Chapter, error) {
	ch, err := scanChapter(q.QueryRowContext(ctx,
		"SELECT "+chapterColumns+" FROM "+chapterFrom+" WHERE ch.id = ?", id))
	if err != nil {
		return ch, apperr.FromNoRows(err, fmt.Sprintf("Chapter ID %d not found", id))
	}
	return ch, nil
}

// Create inserts ch and increments the parent course's chapter count.
func (r *ChapterRepo) Create(ctx context.Context, ch *model.Chapter) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			"INSERT INTO chapters (course_id, title, content, video, `rank`, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			ch.CourseID, ch.Title, ch.Content, ch.Video, ch.Rank, now, now)
		if err != nil {
			return translateErr(fmt.Errorf("creating chapter: %w", err), "Chapter references a missing course")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading chapter id: %w", err)
		}
		if err := adjustChapterCount(ctx, tx, ch.CourseID, 1); err != nil {
			return err
		}

		created, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		*ch = created
		return nil
	})
}

// Update writes the mutable fields of ch. Moving a chapter to another course
// moves its contribution to chapters_count as well.
func (r *ChapterRepo) Update(ctx context.Context, ch *model.Chapter) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var prevCourseID int64
		if err := tx.QueryRowContext(ctx, "SELECT course_id FROM chapters WHERE id = ?", ch.ID).Scan(&prevCourseID); err != nil {
			return apperr.FromNoRows(err, fmt.Sprintf("Chapter ID %d not found", ch.ID))
		}

		_, err := tx.ExecContext(ctx,
			"UPDATE chapters SET course_id = ?, title = ?, content = ?, video = ?, `rank` = ?, updated_at = ? WHERE id = ?",
			ch.CourseID, ch.Title, ch.Content, ch.Video, ch.Rank, time.Now().UTC(), ch.ID)
		if err != nil {
			return translateErr(fmt.Errorf("updating chapter: %w", err), "Chapter references a missing course")
		}

		if prevCourseID != ch.CourseID {
			if err := adjustChapterCount(ctx, tx, prevCourseID, -1); err != nil {
				return err
			}
			if err := adjustChapterCount(ctx, tx, ch.CourseID, 1); err != nil {
				return err
			}
		}

		updated, err := r.get(ctx, tx, ch.ID)
		if err != nil {
			return err
		}
		*ch = updated
		return nil
	})
}

// Delete removes the chapter with id and decrements its course's chapter count.
func (r *ChapterRepo) Delete(ctx context.Context, id int64) error {
	guard := Guard{Table: "chapters", Entity: "Chapter"}
	return guard.Delete(ctx, r.conn, id, func(tx *sql.Tx) error {
		var courseID int64
		if err := tx.QueryRowContext(ctx, "SELECT course_id FROM chapters WHERE id = ?", id).Scan(&courseID); err != nil {
			return fmt.Errorf("loading chapter course: %w", err)
		}
		return adjustChapterCount(ctx, tx, courseID, -1)
	})
}

func adjustChapterCount(ctx context.Context, tx *sql.Tx, courseID int64, delta int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE courses SET chapters_count = CASE WHEN chapters_count + ? < 0 THEN 0 ELSE chapters_count + ? END WHERE id = ?`,
		delta, delta, courseID)
	if err != nil {
		return fmt.Errorf("updating chapters count: %w", err)
	}
	return nil
}
