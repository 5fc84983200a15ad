// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Article is a standalone news or blog entry.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups courses. Lists are ordered by Rank, then ID.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Rank      int       `json:"rank"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryRef is the category projection embedded in course responses.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course belongs to a Category and is authored by a User.
type Course struct {
	ID            int64     `json:"id"`
	CategoryID    int64     `json:"categoryId"`
	UserID        int64     `json:"userId"`
	Name          string    `json:"name"`
	Image         string    `json:"image"`
	Recommended   bool      `json:"recommended"`
	Introductory  bool      `json:"introductory"`
	Content       string    `json:"content"`
	LikesCount    int       `json:"likesCount"`
	ChaptersCount int       `json:"chaptersCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Category *CategoryRef `json:"category,omitempty"`
	User     *UserRef     `json:"user,omitempty"`
}

// CourseRef is the course projection embedded in chapter responses.
type CourseRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Chapter is a lesson inside a Course.
type Chapter struct {
	ID        int64     `json:"id"`
	CourseID  int64     `json:"courseId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Video     string    `json:"video"`
	Rank      int       `json:"rank"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Course *CourseRef `json:"course,omitempty"`
}

// Setting is the site-wide configuration singleton.
type Setting struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ICP       string    `json:"icp"`
	Copyright string    `json:"copyright"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SexCount is one slice of the user-by-sex chart.
type SexCount struct {
	Value int64  `json:"value"`
	Name  string `json:"name"`
}

// MonthlyCount is the number of users registered in a calendar month.
type MonthlyCount struct {
	Month string
	Value int64
}
