// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/model"
)

// Default settings written by Seed.
const (
	DefaultSiteName  = "oCourse"
	DefaultCopyright = "© oCourse"
)

// SeedOptions controls the bootstrap data.
type SeedOptions struct {
	AdminEmail    string
	AdminUsername string
	// AdminPassword is generated when empty and logged once.
	AdminPassword string
	AdminRole     int
}

// Seed creates the settings singleton and a bootstrap admin account when
// they are missing. It is safe to run on every start.
func Seed(ctx context.Context, s *Store, opts SeedOptions) error {
	created, err := s.Settings.Init(ctx, model.Setting{Name: DefaultSiteName, Copyright: DefaultCopyright})
	if err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	if created {
		slog.Info("created settings singleton")
	}

	_, err = s.Users.GetByLogin(ctx, opts.AdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	password := opts.AdminPassword
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	admin := &model.User{
		Email:        opts.AdminEmail,
		Username:     opts.AdminUsername,
		Nickname:     "Administrator",
		PasswordHash: passwordHash,
		Sex:          model.SexUnspecified,
		Role:         opts.AdminRole,
	}
	if admin.Role == 0 {
		admin.Role = model.RoleAdmin
	}
	if err := s.Users.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	attrs := []any{"id", admin.ID, "email", admin.Email}
	if generated {
		attrs = append(attrs, "password", password)
	}
	slog.Info("created bootstrap admin user", attrs...)
	return nil
}
