package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/http/middleware"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
)

const dateOnly = "2006-01-02"

// principal собирает пользователя из значений, выставленных AuthMiddleware.
func principal(c *gin.Context) moderation.Principal {
	var p moderation.Principal
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			p.ID = id
		}
	}
	p.Role = valueobject.Role(c.GetString(middleware.ContextRoleKey))
	return p
}

// pageRequest читает page и limit; отсутствующий page означает первую страницу.
func pageRequest(c *gin.Context) (pagination.Request, error) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return pagination.Request{}, err
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return pagination.Request{}, err
	}
	return pagination.Request{Page: page, Limit: limit}, nil
}

func intQuery(c *gin.Context, key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("параметр %s должен быть целым числом", key)
	}
	return value, nil
}

// dateQuery принимает RFC3339 или YYYY-MM-DD. Для верхней границы дата без
// времени включает весь день.
func dateQuery(c *gin.Context, key string, upper bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, apperror.Validation("параметр %s: ожидается дата YYYY-MM-DD или RFC3339", key)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	from, err := dateQuery(c, "dateFrom", false)
	if err != nil {
		return nil, nil, err
	}
	to, err := dateQuery(c, "dateTo", true)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
