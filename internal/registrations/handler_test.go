package registrations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raid-scout/backend/internal/abuse"
	"github.com/raid-scout/backend/pkg/apperr"
	"github.com/raid-scout/backend/pkg/response"
)

func newSubmitRouter(t *testing.T, maxFailures int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	guard := abuse.NewGuard(abuse.NewMemoryCounter(), abuse.Config{
		RegistrationWindow:     5 * time.Minute,
		RegistrationMaxSuccess: 3,
		RegistrationMaxFailure: maxFailures,
		LoginWindow:            5 * time.Minute,
		LoginMaxAttempts:       4,
	}, nil)
	// The service is never reached on the malformed-payload paths under test.
	h := NewHandler(nil, guard, nil)
	router := gin.New()
	router.POST("/api/registration", h.Submit)
	return router
}

func postSubmit(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/registration", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitMalformedPayload(t *testing.T) {
	router := newSubmitRouter(t, 5)

	w := postSubmit(router, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeInvalidPayload, envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Message)
}

func TestSubmitFailureRateLimit(t *testing.T) {
	router := newSubmitRouter(t, 2)

	// Each malformed submission counts as a failure; past the threshold the
	// guard rejects before the payload is even parsed.
	for i := 0; i < 3; i++ {
		w := postSubmit(router, `{not json`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := postSubmit(router, `{not json`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var envelope response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeRateLimit, envelope.Error.Code)
}
