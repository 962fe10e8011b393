// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Data errors: malformed DSL in static game data.
	CodeInvalidExpression Code = "INVALID_EXPRESSION"
	CodeUnknownIdentifier Code = "UNKNOWN_IDENTIFIER"
	CodeInvalidEffect     Code = "INVALID_EFFECT"
	CodeUnknownAction     Code = "UNKNOWN_ACTION"

	// Stage lifecycle errors (strict mode).
	CodeStageAlreadyStarted Code = "STAGE_ALREADY_STARTED"
	CodeStageNotStarted     Code = "STAGE_NOT_STARTED"
	CodeNoTurnsRemaining    Code = "NO_TURNS_REMAINING"
	CodeNoCardUsesRemaining Code = "NO_CARD_USES_REMAINING"
	CodeCardNotInHand       Code = "CARD_NOT_IN_HAND"
	CodeCardNotUsable       Code = "CARD_NOT_USABLE"

	// Catalog and loadout errors.
	CodeNotFound       Code = "NOT_FOUND"
	CodeInvalidLoadout Code = "INVALID_LOADOUT"
	CodeInvalidCatalog Code = "INVALID_CATALOG"

	// API request errors.
	CodeInvalidRequest Code = "INVALID_REQUEST"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad input supplied by the caller.
	case CodeInvalidLoadout, CodeInvalidRequest:
		return http.StatusBadRequest

	// The run state does not allow the operation.
	case CodeStageAlreadyStarted,
		CodeStageNotStarted,
		CodeNoTurnsRemaining,
		CodeNoCardUsesRemaining,
		CodeCardNotInHand,
		CodeCardNotUsable:
		return http.StatusConflict

	case CodeNotFound:
		return http.StatusNotFound

	// Broken static data is a server-side defect.
	default:
		return http.StatusInternalServerError
	}
}
