package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelapp/internal/pkg/response"
)

func TestErrorLogger_LogsAttachedErrorsWithMeta(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestID(), ErrorLogger(log))
	router.GET("/boom", func(c *gin.Context) {
		response.Fail(c, errors.New("disk full"), gin.H{"booking_id": "b-42"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, hook.LastEntry())
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "b-42", entry.Data["booking_id"])
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, "internal", entry.Data["error_class"])
}

func TestErrorLogger_RecoversPanics(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(ErrorLogger(log))
	router.GET("/panic", func(c *gin.Context) { panic("nil map") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "nil map")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request panic", hook.LastEntry().Message)
}
