// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the entities managed through the admin API:
// articles, categories, courses, chapters, users and the settings singleton.
package model

import "time"

// RoleAdmin is the role value that grants access to the admin API.
const RoleAdmin = 100

// RoleMember is the default role for registered learners.
const RoleMember = 0

// Sex values stored on User.
const (
	SexMale        = 0
	SexFemale      = 1
	SexUnspecified = 2
)

// User is a platform account. Admins are users whose Role equals RoleAdmin.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Nickname     string    `json:"nickname"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Avatar       string    `json:"avatar"`
	Sex          int       `json:"sex"`
	Company      string    `json:"company"`
	Introduce    string    `json:"introduce"`
	Role         int       `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the user holds exactly the given role.
func (u *User) HasRole(role int) bool {
	return u != nil && u.Role == role
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UserRef is the author projection embedded in course responses.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
