// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// crudHandlers groups the five handlers of a resource.
type crudHandlers struct {
	list, create, get, update, remove http.HandlerFunc
}

// registerCRUD registers list/create at base and get/update/delete at base/{id}.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	r.Get(base, h.list)
	r.Post(base, h.create)
	r.Get(base+"/{id}", h.get)
	r.Put(base+"/{id}", h.update)
	r.Delete(base+"/{id}", h.remove)
}

// Middleware is an HTTP middleware.
type Middleware = func(http.Handler) http.Handler

const signInPath = "/auth/sign_in"

// Routes returns the /admin router. gate guards every path except sign-in,
// which is wrapped by signIn instead. Unmatched paths and methods also pass
// through gate, so anonymous callers see 401 rather than 404 or 405.
// Either middleware may be nil.
func (h *Handler) Routes(gate, signIn Middleware) chi.Router {
	r := chi.NewRouter()
	r.NotFound(gated(gate, NotFound))
	r.MethodNotAllowed(gated(gate, MethodNotAllowed))

	r.Group(func(r chi.Router) {
		if signIn != nil {
			r.Use(signIn)
		}
		r.Post(signInPath, h.SignIn)
	})

	r.Group(func(r chi.Router) {
		if gate != nil {
			r.Use(gate)
		}

		r.Get("/users/me", h.Me)

		registerCRUD(r, "/articles", crudHandlers{h.ListArticles, h.CreateArticle, h.GetArticle, h.UpdateArticle, h.DeleteArticle})
		registerCRUD(r, "/categories", crudHandlers{h.ListCategories, h.CreateCategory, h.GetCategory, h.UpdateCategory, h.DeleteCategory})
		registerCRUD(r, "/courses", crudHandlers{h.ListCourses, h.CreateCourse, h.GetCourse, h.UpdateCourse, h.DeleteCourse})
		registerCRUD(r, "/chapters", crudHandlers{h.ListChapters, h.CreateChapter, h.GetChapter, h.UpdateChapter, h.DeleteChapter})
		registerCRUD(r, "/users", crudHandlers{h.ListUsers, h.CreateUser, h.GetUser, h.UpdateUser, h.DeleteUser})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/charts/sex", h.SexChart)
		r.Get("/charts/user", h.UserChart)
	})

	return r
}

// gated wraps a fallback handler in gate, leaving the sign-in path open.
func gated(gate Middleware, fallback http.HandlerFunc) http.HandlerFunc {
	if gate == nil {
		return fallback
	}
	guarded := gate(fallback)
	return func(w http.ResponseWriter, r *http.Request) {
		if routePath(r) == signInPath {
			fallback(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	}
}

// routePath returns the path relative to the mount point.
func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		return rctx.RoutePath
	}
	return r.URL.Path
}
