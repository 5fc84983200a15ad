// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import "net/http"

// UpdateSettingRequest represents the request body for updating the settings.
type UpdateSettingRequest struct {
	Name      *string `json:"name" validate:"omitnil,max=255"`
	ICP       *string `json:"icp" validate:"omitnil,max=255"`
	Copyright *string `json:"copyright" validate:"omitnil,max=255"`
}

// GetSettings handles GET /admin/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	setting, err := h.Settings.Get(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Settings retrieved successfully.", map[string]any{"setting": setting})
}

// UpdateSettings handles PUT /admin/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validateStruct(req); err != nil {
		h.fail(w, r, err)
		return
	}

	setting, err := h.Settings.Get(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		setting.Name = *req.Name
	}
	if req.ICP != nil {
		setting.ICP = *req.ICP
	}
	if req.Copyright != nil {
		setting.Copyright = *req.Copyright
	}

	if err := h.Settings.Update(r.Context(), &setting); err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "Settings updated successfully.", map[string]any{"setting": setting})
}
