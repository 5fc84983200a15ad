// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package query turns untrusted list parameters into a bounded pagination,
// filter and ordering specification that the store renders into SQL.
//
// Only fields declared in a Schema can become filter clauses. Column names
// always come from the Schema, never from the request, and every value is
// passed as a bind argument.
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/olegiv/ocourse/internal/apperr"
)

// Pagination defaults.
const (
	DefaultPageNum  = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPageNum keeps (pageNum-1)*pageSize within int.
	MaxPageNum = math.MaxInt / MaxPageSize
)

// Op is the comparison applied by a filter clause.
type Op int

const (
	// OpEqual compares the column to the value exactly.
	OpEqual Op = iota
	// OpContains matches rows whose column contains the value as a substring.
	OpContains
)

// ValueType controls how a raw parameter is converted to a bind argument.
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeBool
)

// Field declares a filterable request parameter.
type Field struct {
	Param    string // query string key, e.g. "categoryId"
	Column   string // SQL column, e.g. "c.category_id"
	Op       Op
	Type     ValueType
	Required bool
}

// Schema is the per-entity allowlist of filters plus its fixed sort order.
type Schema struct {
	Fields []Field
	Order  []string
}

// Clause is a single predicate of a Spec.
type Clause struct {
	Column string
	Op     Op
	Value  any
}

// Spec is a normalized list query. Build it with Parse or Builder.
type Spec struct {
	PageNum  int
	PageSize int
	Clauses  []Clause
	Order    []string
}

// Pagination is the pagination block returned with every list.
type Pagination struct {
	PageNum   int   `json:"pageNum"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"totalPage"`
}

// Offset returns the number of rows to skip.
func (s Spec) Offset() int {
	return (s.PageNum - 1) * s.PageSize
}

// Limit returns the page size.
func (s Spec) Limit() int {
	return s.PageSize
}

// Where renders the clauses joined with AND. It returns an empty string
// when there are no clauses.
func (s Spec) Where() (string, []any) {
	if len(s.Clauses) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(s.Clauses))
	args := make([]any, 0, len(s.Clauses))
	for _, c := range s.Clauses {
		switch c.Op {
		case OpContains:
			parts = append(parts, c.Column+" LIKE ? ESCAPE '!'")
			args = append(args, "%"+escapeLike(fmt.Sprint(c.Value))+"%")
		default:
			parts = append(parts, c.Column+" = ?")
			args = append(args, c.Value)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// OrderBy renders the ORDER BY clause.
func (s Spec) OrderBy() string {
	if len(s.Order) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(s.Order, ", ")
}

// Paginate builds the pagination block for total matching rows.
func (s Spec) Paginate(total int64) Pagination {
	return Pagination{
		PageNum:   s.PageNum,
		PageSize:  s.PageSize,
		Total:     total,
		TotalPage: TotalPages(total, s.PageSize),
	}
}

// TotalPages returns ceil(count/size). A non-positive size yields 0.
func TotalPages(count int64, size int) int {
	if size <= 0 || count <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(size)))
}

// Parse builds a Spec from request values using schema as the allowlist.
// Unknown parameters are ignored. Malformed values for typed filters and
// missing required filters return a BadRequest error naming the parameter.
func Parse(values url.Values, schema Schema) (Spec, error) {
	b := NewBuilder(values.Get("pageNum"), values.Get("pageSize")).OrderBy(schema.Order...)

	for _, f := range schema.Fields {
		raw := strings.TrimSpace(values.Get(f.Param))
		if raw == "" {
			if f.Required {
				return Spec{}, apperr.Invalid(f.Param, f.Param+" is required")
			}
			continue
		}
		if err := b.add(f, raw); err != nil {
			return Spec{}, err
		}
	}

	return b.Build(), nil
}

// Builder accumulates clauses for a Spec.
type Builder struct {
	spec Spec
}

// NewBuilder starts a Spec from raw pageNum and pageSize strings.
func NewBuilder(pageNum, pageSize string) *Builder {
	return &Builder{spec: Spec{
		PageNum:  normalizePage(pageNum, DefaultPageNum, MaxPageNum),
		PageSize: normalizePage(pageSize, DefaultPageSize, MaxPageSize),
	}}
}

// Where appends an AND-ed clause.
func (b *Builder) Where(column string, op Op, value any) *Builder {
	b.spec.Clauses = append(b.spec.Clauses, Clause{Column: column, Op: op, Value: value})
	return b
}

// OrderBy sets the fixed ordering columns.
func (b *Builder) OrderBy(columns ...string) *Builder {
	b.spec.Order = append([]string(nil), columns...)
	return b
}

// Build returns the accumulated Spec.
func (b *Builder) Build() Spec {
	return b.spec
}

func (b *Builder) add(f Field, raw string) error {
	switch f.Type {
	case TypeInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperr.Invalid(f.Param, f.Param+" must be an integer")
		}
		b.Where(f.Column, OpEqual, n)
	case TypeBool:
		switch raw {
		case "true":
			b.Where(f.Column, OpEqual, true)
		case "false":
			b.Where(f.Column, OpEqual, false)
		}
	default:
		b.Where(f.Column, f.Op, norm.NFC.String(raw))
	}
	return nil
}

// normalizePage parses a page parameter, taking the absolute value.
// Missing, non-numeric and zero values fall back to def; max > 0 caps it,
// including values too large for int.
func normalizePage(raw string, def, maxVal int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	if n < 0 {
		n = -n
	}
	if n < 0 { // math.MinInt
		n = math.MaxInt
	}
	if n == 0 {
		return def
	}
	if maxVal > 0 && n > maxVal {
		return maxVal
	}
	return n
}

// '!' is used as the LIKE escape character because a backslash literal is
// parsed differently by SQLite and MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
