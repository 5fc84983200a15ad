// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers of the admin back office.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocourse/internal/apperr"
	"github.com/olegiv/ocourse/internal/auth"
	"github.com/olegiv/ocourse/internal/model"
	"github.com/olegiv/ocourse/internal/query"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ArticleStore is the data access the article handlers need.
type ArticleStore interface {
	List(ctx context.Context, spec query.Spec) ([]model.Article, int64, error)
	Get(ctx context.Context, id int64) (model.Article, error)
	Create(ctx context.Context, a *model.Article) error
	Update(ctx context.Context, a *model.Article) error
	Delete(ctx context.Context, id int64) error
}

// CategoryStore is the data access the category handlers need.
type CategoryStore interface {
	List(ctx context.Context, spec query.Spec) ([]model.Category, int64, error)
	Get(ctx context.Context, id int64) (model.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id int64) error
}

// CourseStore is the data access the course handlers need.
type CourseStore interface {
	List(ctx context.Context, spec query.Spec) ([]model.Course, int64, error)
	Get(ctx context.Context, id int64) (model.Course, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id int64) error
}

// ChapterStore is the data access the chapter handlers need.
type ChapterStore interface {
	List(ctx context.Context, spec query.Spec) ([]model.Chapter, int64, error)
	Get(ctx context.Context, id int64) (model.Chapter, error)
	Create(ctx context.Context, ch *model.Chapter) error
	Update(ctx context.Context, ch *model.Chapter) error
	Delete(ctx context.Context, id int64) error
}

// UserStore is the data access the user, sign-in and chart handlers need.
type UserStore interface {
	List(ctx context.Context, spec query.Spec) ([]model.User, int64, error)
	Get(ctx context.Context, id int64) (model.User, error)
	GetByLogin(ctx context.Context, login string) (model.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
	CountBySex(ctx context.Context) ([]model.SexCount, error)
	CountByMonth(ctx context.Context) ([]model.MonthlyCount, error)
}

// SettingStore is the data access the settings handlers need.
type SettingStore interface {
	Get(ctx context.Context) (model.Setting, error)
	Update(ctx context.Context, s *model.Setting) error
}

// TokenIssuer issues admin tokens on sign-in.
type TokenIssuer interface {
	Issue(userID int64) (string, *auth.Claims, error)
}

// LoginGuard tracks failed sign-in attempts per login.
type LoginGuard interface {
	IsAccountLocked(ctx context.Context, login string) (bool, time.Duration, error)
	RecordFailedAttempt(ctx context.Context, login string) (bool, time.Duration, error)
	RecordSuccessfulLogin(ctx context.Context, login string)
}

// Deps holds the collaborators of Handler.
type Deps struct {
	Articles   ArticleStore
	Categories CategoryStore
	Courses    CourseStore
	Chapters   ChapterStore
	Users      UserStore
	Settings   SettingStore
	Tokens     TokenIssuer
	// Logins is optional; without it sign-in is not throttled per login.
	Logins     LoginGuard
	AdminRole  int
	Production bool
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	Deps
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	if deps.AdminRole == 0 {
		deps.AdminRole = model.RoleAdmin
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names in validation messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Deps:      deps,
		validate:  v,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// fail writes err through the single error mapping.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, err, h.Production)
}

// parseID reads the {id} URL parameter.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", fmt.Sprintf("Invalid ID %q", raw))
	}
	return id, nil
}

// decodeJSON reads a JSON body into dst. Fields outside dst are ignored so
// only allowlisted attributes reach the store.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.BadRequest("Request body too large")
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("Request body is empty")
		default:
			return &apperr.Error{Kind: apperr.KindBadRequest, Message: "Invalid JSON body", Err: err}
		}
	}
	return nil
}

// validateStruct runs validator tags on v and turns failures into a
// BadRequest listing one message per field.
func (h *Handler) validateStruct(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Internal("Validation failed", err)
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fieldMessage(fe))
	}
	appErr := apperr.Validation(details)
	appErr.Field = fieldErrs[0].Field()
	return appErr
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "lte", "oneof":
		return fmt.Sprintf("%s has an invalid value", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}

// sanitize cleans rich text with the UGC policy.
func (h *Handler) sanitize(s string) string {
	return h.sanitizer.Sanitize(s)
}

// requireParent returns a BadRequest naming field when ok is false.
func requireParent(ok bool, err error, field, entity string, id int64) error {
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Invalid(field, fmt.Sprintf("%s ID %d does not exist", entity, id))
	}
	return nil
}
