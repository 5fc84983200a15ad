// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"testing"
)

func TestEventLevels(t *testing.T) {
	levels := map[string]string{
		EventLevelInfo:    "info",
		EventLevelWarning: "warning",
		EventLevelError:   "error",
	}
	for got, want := range levels {
		if got != want {
			t.Errorf("level = %q, want %q", got, want)
		}
	}
}

func TestEventCategoriesUnique(t *testing.T) {
	categories := []string{
		EventCategoryAuth,
		EventCategoryContent,
		EventCategoryUser,
		EventCategoryConfig,
		EventCategorySystem,
	}

	seen := make(map[string]bool)
	for _, cat := range categories {
		if cat == "" {
			t.Error("empty category")
		}
		if seen[cat] {
			t.Errorf("duplicate category: %q", cat)
		}
		seen[cat] = true
	}
}

func TestEventAdminIDOptional(t *testing.T) {
	anon := Event{Level: EventLevelWarning, Category: EventCategoryAuth, Message: "sign-in failed"}
	if anon.AdminID.Valid {
		t.Error("zero Event should carry no admin id")
	}

	acted := Event{
		Level:     EventLevelError,
		Category:  EventCategoryContent,
		AdminID:   sql.NullInt64{Int64: 7, Valid: true},
		RequestID: "req-1",
		Metadata:  `{"course_id":3}`,
	}
	if !acted.AdminID.Valid || acted.AdminID.Int64 != 7 {
		t.Errorf("AdminID = %+v, want 7", acted.AdminID)
	}
}
