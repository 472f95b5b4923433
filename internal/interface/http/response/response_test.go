package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
)

func captureLogs(t *testing.T) *logtest.Hook {
	t.Helper()
	lg, hook := logtest.NewNullLogger()
	lg.SetLevel(logrus.DebugLevel)
	prev := logger.Log
	logger.Log = lg
	t.Cleanup(func() { logger.Log = prev })
	return hook
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)

	Error(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func errorEntries(hook *logtest.Hook) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.ErrorLevel {
			n++
		}
	}
	return n
}

func TestError_ClientCanceled(t *testing.T) {
	cases := map[string]error{
		"raw":     fmt.Errorf("list reports: %w", context.Canceled),
		"wrapped": apperror.Canceled(context.Canceled),
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			hook := captureLogs(t)
			w, body := serveError(t, err)

			assert.Equal(t, apperror.StatusClientClosedRequest, w.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, string(apperror.ErrCodeCanceled), body.Error.Code)
			assert.Zero(t, errorEntries(hook))
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
		})
	}
}

func TestError_UnknownErrorIsMasked(t *testing.T) {
	hook := captureLogs(t)
	w, body := serveError(t, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, string(apperror.ErrCodeInternal), body.Error.Code)
	assert.NotContains(t, body.Error.Message, "pq")
	assert.Equal(t, 1, errorEntries(hook))
}

func TestError_ClientErrorNotLogged(t *testing.T) {
	hook := captureLogs(t)
	w, body := serveError(t, apperror.Validation("номер страницы слишком большой: %d", 999999))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperror.ErrCodeValidation), body.Error.Code)
	assert.Empty(t, hook.AllEntries())
}
