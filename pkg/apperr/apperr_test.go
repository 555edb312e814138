package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidPayload:        http.StatusBadRequest,
		CodeRaceNotFound:          http.StatusBadRequest,
		CodeParticipantConstraint: http.StatusUnprocessableEntity,
		CodeTooManyTeams:          http.StatusBadRequest,
		CodeUnitLeaderConflict:    http.StatusConflict,
		CodeUnauthorized:          http.StatusUnauthorized,
		CodeForbidden:             http.StatusForbidden,
		CodeRateLimit:             http.StatusTooManyRequests,
		CodeRateLimitLogin:        http.StatusTooManyRequests,
		CodeNotFound:              http.StatusNotFound,
		CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
	assert.Equal(t, http.StatusInternalServerError, Code("UNKNOWN").HTTPStatus())
}

func TestFrom(t *testing.T) {
	coded := New(CodeRaceNotFound)
	assert.Same(t, coded, From(coded))
	assert.Same(t, coded, From(fmt.Errorf("outer: %w", coded)))

	plain := errors.New("boom")
	e := From(plain)
	assert.Equal(t, CodeInternal, e.Code)
	assert.ErrorIs(t, e, plain)
}

func TestMessagesNeverExposeCause(t *testing.T) {
	e := Wrap(CodeInternal, errors.New("pq: relation registrations does not exist"))
	assert.NotContains(t, e.Message, "registrations")
	assert.NotEmpty(t, e.Message)
}
