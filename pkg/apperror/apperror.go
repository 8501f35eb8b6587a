package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// AppError carries a stable machine-readable code alongside the HTTP status
// and a user-facing message. Details hold technical context and are only
// exposed to clients outside release mode.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: msg, Status: http.StatusBadRequest}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "AUTH_REQUIRED", Message: msg, Status: http.StatusUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: http.StatusForbidden}
}

func NotFound(msg string) *AppError {
	return &AppError{Code: "ROW_NOT_FOUND", Message: msg, Status: http.StatusNotFound}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: http.StatusConflict}
}

func Internal(msg string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: http.StatusInternalServerError}
}

// StatusOf returns the HTTP status for err, defaulting to 500 for anything
// that is not an *AppError.
func StatusOf(err error) int {
	var app *AppError
	if errors.As(err, &app) {
		return app.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the machine-readable code for err.
func CodeOf(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return "INTERNAL_ERROR"
}

// As unwraps err into an *AppError, or wraps it as Internal with the given
// fallback message when it is not one.
func As(err error, fallback string) *AppError {
	var app *AppError
	if errors.As(err, &app) {
		return app
	}
	out := Internal(fallback)
	out.Details = err.Error()
	return out
}

// columnFromDetail pulls the offending column out of a Postgres error detail,
// e.g. `Key (name)=(Harina) already exists.` or `null value in column "unit"`.
var (
	keyDetailRe    = regexp.MustCompile(`(?i)Key \(([^)]+)\)=`)
	columnDetailRe = regexp.MustCompile(`(?i)column "([^"]+)"`)
)

func columnFromDetail(detail string) string {
	if m := keyDetailRe.FindStringSubmatch(detail); len(m) > 1 {
		return m[1]
	}
	if m := columnDetailRe.FindStringSubmatch(detail); len(m) > 1 {
		return m[1]
	}
	return ""
}

// FromDBError classifies a store error into the taxonomy. The friendly
// message, when given, overrides the per-SQLSTATE default.
func FromDBError(err error, friendly string) *AppError {
	if err == nil {
		return nil
	}

	var app *AppError
	if errors.As(err, &app) {
		return app
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if friendly == "" {
			friendly = "Record not found."
		}
		return NotFound(friendly)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if friendly == "" {
			friendly = "A record with that data already exists."
		}
		return Conflict(friendly)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		col := columnFromDetail(pgErr.Detail)
		out := classifySQLState(pgErr.Code, col, friendly)
		out.Details = fmt.Sprintf("sqlstate=%s detail=%s", pgErr.Code, pgErr.Detail)
		return out
	}

	if friendly == "" {
		friendly = "An error occurred while processing the operation."
	}
	out := Internal(friendly)
	out.Details = err.Error()
	return out
}

func classifySQLState(sqlstate, column, friendly string) *AppError {
	pick := func(def string) string {
		if friendly != "" {
			return friendly
		}
		return def
	}

	switch sqlstate {
	case "23505": // unique violation
		msg := "A record with that data already exists."
		if column != "" {
			msg = fmt.Sprintf("A record with that %s already exists.", column)
		}
		return &AppError{Code: "UNIQUE_CONSTRAINT", Message: pick(msg), Status: http.StatusConflict}
	case "23503": // foreign key violation
		return &AppError{Code: "FOREIGN_KEY_CONFLICT", Message: pick("Cannot complete: the record is in use by other data."), Status: http.StatusConflict}
	case "23502": // not-null violation
		msg := "A required field is missing."
		if column != "" {
			msg = fmt.Sprintf("The required field %s is missing.", column)
		}
		return &AppError{Code: "NOT_NULL", Message: pick(msg), Status: http.StatusBadRequest}
	case "23514": // check violation
		return &AppError{Code: "CHECK_VIOLATION", Message: pick("The data does not satisfy a validation rule."), Status: http.StatusBadRequest}
	case "22P02": // invalid text representation
		return &AppError{Code: "INVALID_INPUT", Message: pick("A value has an invalid format."), Status: http.StatusBadRequest}
	case "22001": // string data right truncation
		return &AppError{Code: "INVALID_INPUT", Message: pick("A text value is too long."), Status: http.StatusBadRequest}
	case "40001": // serialization failure
		return &AppError{Code: "RETRY", Message: pick("Concurrency conflict. Try again."), Status: http.StatusConflict}
	default:
		return &AppError{Code: "INTERNAL_ERROR", Message: pick("An error occurred while processing the operation."), Status: http.StatusInternalServerError}
	}
}
