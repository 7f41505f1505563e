package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelapp/internal/domain"
)

type body struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func failWith(t *testing.T, err error) (*httptest.ResponseRecorder, *gin.Context, body) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Fail(c, err, gin.H{"booking_id": "b-1"})

	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return w, c, b
}

func TestFail_DomainErrors(t *testing.T) {
	cases := []struct {
		kind   domain.ErrorKind
		status int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindPermission, http.StatusForbidden},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindInvalidState, http.StatusConflict},
		{domain.KindEligibility, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		sentinel := domain.NewError(tc.kind, "SOME_CODE", "base")
		w, c, b := failWith(t, fmt.Errorf("%w: detail", sentinel))
		assert.Equal(t, tc.status, w.Code, tc.kind)
		assert.Equal(t, "SOME_CODE", b.Error.Code)
		assert.Equal(t, "base: detail", b.Error.Message)
		assert.Empty(t, c.Errors)
	}
}

func TestFail_UnexpectedErrorIsGeneric(t *testing.T) {
	w, c, b := failWith(t, errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL", b.Error.Code)
	assert.NotContains(t, b.Error.Message, "pq")
	require.Len(t, c.Errors, 1)
	assert.Equal(t, gin.H{"booking_id": "b-1"}, c.Errors[0].Meta)
}
