// Package pagination описывает постраничную выборку для административных списков.
package pagination

import (
	"math"

	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// WithDefaults подставляет значения по умолчанию для незаданных полей.
func (c Config) WithDefaults() Config {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	return c
}

// Request - номер страницы (с 1) и размер страницы. Limit == 0 означает размер по умолчанию.
type Request struct {
	Page  int
	Limit int
}

// Validate отклоняет некорректные значения, а не исправляет их молча.
func (r *Request) Validate(cfg Config) error {
	cfg = cfg.WithDefaults()
	if r.Page < 1 {
		return apperror.Validation("номер страницы должен быть не меньше 1, получено %d", r.Page)
	}
	if r.Limit == 0 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit < 1 {
		return apperror.Validation("размер страницы должен быть положительным, получено %d", r.Limit)
	}
	if r.Limit > cfg.MaxPageSize {
		return apperror.Validation("размер страницы не может превышать %d, получено %d", cfg.MaxPageSize, r.Limit)
	}
	// Смещение (Page-1)*Limit должно помещаться в int.
	if r.Page > math.MaxInt/r.Limit+1 {
		return apperror.Validation("номер страницы слишком большой: %d", r.Page)
	}
	return nil
}

func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}

type Page[T any] struct {
	Items       []T  `json:"items"`
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPage[T any](items []T, total int, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}
	return Page[T]{
		Items:       items,
		Total:       total,
		Page:        req.Page,
		Limit:       req.Limit,
		TotalPages:  totalPages,
		HasNextPage: req.Offset()+len(items) < total,
		HasPrevPage: req.Page > 1,
	}
}

// Map преобразует элементы страницы, сохраняя метаданные.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Page[U]{
		Items:       out,
		Total:       p.Total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  p.TotalPages,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
}
