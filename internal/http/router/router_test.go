package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/config"
	"github.com/ignatzorin/petmarket-trust/internal/domain/entity"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/handler"
	"github.com/ignatzorin/petmarket-trust/internal/interface/http/response"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/submission"
)

var usersByToken = map[string]uuid.UUID{
	"admin":   uuid.New(),
	"breeder": uuid.New(),
	"adopter": uuid.New(),
}

// fakeTokens: токен равен роли.
type fakeTokens struct{}

func (fakeTokens) ParseAccess(token string) (uuid.UUID, string, error) {
	if id, ok := usersByToken[token]; ok {
		return id, token, nil
	}
	return uuid.Nil, "", errors.New("invalid token")
}

// stubSubmissions отвечает NOT_FOUND, чтобы было видно, что запрос дошёл до обработчика.
type stubSubmissions struct{}

func (stubSubmissions) OpenVerification(context.Context, moderation.Principal, string, string) (*entity.Verification, bool, error) {
	return nil, false, apperror.ErrVerificationNotFound
}

func (stubSubmissions) SubmitDocuments(context.Context, moderation.Principal, []submission.DocumentInput) (*entity.Verification, error) {
	return nil, apperror.ErrVerificationNotFound
}

func (stubSubmissions) GetVerificationStatus(context.Context, moderation.Principal) (*entity.Verification, error) {
	return nil, apperror.ErrVerificationNotFound
}

func (stubSubmissions) CreateReport(context.Context, moderation.Principal, submission.ReportInput) (*entity.Report, error) {
	return nil, apperror.ErrReportNotFound
}

func newTestEngine(t *testing.T, rateLimit int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  rateLimit,
		RateLimitPeriod: time.Minute,
	}
	subs := stubSubmissions{}
	h := Handlers{
		Verification:      handler.NewVerificationHandler(subs),
		Report:            handler.NewReportHandler(subs, nil),
		Notification:      handler.NewNotificationHandler(nil),
		AdminVerification: handler.NewAdminVerificationHandler(nil, nil),
		AdminReport:       handler.NewAdminReportHandler(nil, nil),
	}
	return SetupRouter(cfg, h, fakeTokens{})
}

func call(t *testing.T, r *gin.Engine, method, path, token, body string) (int, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestRouter_RequiresToken(t *testing.T) {
	r := newTestEngine(t, 10)

	for _, path := range []string{"/api/admin/reports", "/api/verification/status", "/api/reports", "/api/notifications"} {
		code, resp := call(t, r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	}

	code, _ := call(t, r, http.MethodGet, "/api/admin/reports", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_RoleSpecificForbidden(t *testing.T) {
	r := newTestEngine(t, 10)

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		message string
	}{
		{"breeder on admin list", http.MethodGet, "/api/admin/reports", "breeder", adminOnlyMessage},
		{"adopter on admin update", http.MethodPut, "/api/admin/verification/" + uuid.NewString(), "adopter", adminOnlyMessage},
		{"breeder on escalate", http.MethodPost, "/api/admin/reports/" + uuid.NewString() + "/escalate", "breeder", adminOnlyMessage},
		{"adopter on verification", http.MethodGet, "/api/verification/status", "adopter", breederOnlyMessage},
		{"admin on verification", http.MethodPost, "/api/verification", "admin", breederOnlyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := call(t, r, tt.method, tt.path, tt.token, "")
			assert.Equal(t, http.StatusForbidden, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "FORBIDDEN", resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestRouter_BreederReachesHandler(t *testing.T) {
	r := newTestEngine(t, 10)

	code, resp := call(t, r, http.MethodGet, "/api/verification/status", "breeder", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestRouter_NotificationIDValidated(t *testing.T) {
	r := newTestEngine(t, 10)

	code, resp := call(t, r, http.MethodPut, "/api/notifications/not-a-uuid/read", "adopter", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestRouter_ReportSubmissionRateLimited(t *testing.T) {
	r := newTestEngine(t, 1)

	code, _ := call(t, r, http.MethodPost, "/api/reports", "adopter", `{`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp := call(t, r, http.MethodPost, "/api/reports", "adopter", `{`)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)

	// Лимит считается на пользователя.
	code, _ = call(t, r, http.MethodPost, "/api/reports", "breeder", `{`)
	assert.Equal(t, http.StatusBadRequest, code)
}
