// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import "net/http"

// MonthlyUsers is the payload of the users-per-month chart.
type MonthlyUsers struct {
	Months []string `json:"months"`
	Values []int64  `json:"values"`
}

// SexChart handles GET /admin/charts/sex
func (h *Handler) SexChart(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Users.CountBySex(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteSuccess(w, "User sex distribution retrieved successfully.", map[string]any{"list": counts})
}

// UserChart handles GET /admin/charts/user
func (h *Handler) UserChart(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Users.CountByMonth(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := MonthlyUsers{
		Months: make([]string, 0, len(counts)),
		Values: make([]int64, 0, len(counts)),
	}
	for _, c := range counts {
		data.Months = append(data.Months, c.Month)
		data.Values = append(data.Values, c.Value)
	}

	WriteSuccess(w, "Monthly user registrations retrieved successfully.", map[string]any{"data": data})
}
