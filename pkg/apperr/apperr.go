// Package apperr defines the stable machine-readable error taxonomy of the API.
// Codes are the contract; messages are localized French strings for end users.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class across the API surface.
type Code string

const (
	CodeInvalidPayload        Code = "INVALID_PAYLOAD"
	CodeRaceNotFound          Code = "RACE_NOT_FOUND"
	CodeParticipantConstraint Code = "PARTICIPANT_CONSTRAINT"
	CodeTooManyTeams          Code = "TOO_MANY_TEAMS"
	CodeUnitLeaderConflict    Code = "UNIT_LEADER_CONFLICT"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeRateLimit             Code = "RATE_LIMIT"
	CodeRateLimitLogin        Code = "RATE_LIMIT_LOGIN"
	CodeNotFound              Code = "NOT_FOUND"
	CodeInternal              Code = "INTERNAL"
)

var statusByCode = map[Code]int{
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

var messageByCode = map[Code]string{
	CodeInvalidPayload:        "Requête invalide : champs manquants ou mal formés.",
	CodeRaceNotFound:          "Course introuvable.",
	CodeParticipantConstraint: "Nombre de participants hors des limites de la course.",
	CodeTooManyTeams:          "Nombre d'équipes trop élevé pour une seule inscription.",
	CodeUnitLeaderConflict:    "Cette unité est déjà enregistrée avec un autre responsable.",
	CodeUnauthorized:          "Authentification requise.",
	CodeForbidden:             "Session invalide ou expirée.",
	CodeRateLimit:             "Trop de tentatives. Veuillez réessayer plus tard.",
	CodeRateLimitLogin:        "Trop de tentatives de connexion. Veuillez réessayer plus tard.",
	CodeNotFound:              "Ressource introuvable.",
	CodeInternal:              "Une erreur interne est survenue.",
}

// HTTPStatus maps the code to its HTTP status.
func (c Code) HTTPStatus() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a tagged application error. Message is safe to show to the caller;
// Err carries the internal cause and never crosses the API boundary.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error with the code's localized default message.
func New(code Code) *Error {
	return &Error{Code: code, Message: messageByCode[code]}
}

// NewMsg creates an error with a specific user-facing message.
func NewMsg(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches an internal cause to a coded error, keeping the default message.
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Message: messageByCode[code], Err: err}
}

// Internal wraps an unexpected failure as INTERNAL.
func Internal(err error) *Error {
	return Wrap(CodeInternal, err)
}

// From extracts the *Error from err, or wraps it as INTERNAL.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
