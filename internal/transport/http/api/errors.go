package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Mapping ties a domain sentinel to a response status and code. The error's
// own message is returned to the client.
type Mapping struct {
	Err    error
	Status int
	Code   string
}

func BadRequest(err error) Mapping { return Mapping{Err: err, Status: http.StatusBadRequest, Code: "bad_request"} }
func Conflict(err error) Mapping   { return Mapping{Err: err, Status: http.StatusConflict, Code: "conflict"} }
func Forbidden(err error) Mapping  { return Mapping{Err: err, Status: http.StatusForbidden, Code: "forbidden"} }
func NotFound(err error) Mapping   { return Mapping{Err: err, Status: http.StatusNotFound, Code: "not_found"} }

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// FailErr writes the response for err, checking mappings first and then the
// database errors every store can return.
func FailErr(w http.ResponseWriter, requestID string, err error, mappings ...Mapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			Fail(w, m.Status, m.Code, m.Err.Error(), requestID)
			return
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
		return
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			Fail(w, http.StatusConflict, "conflict", "resource already exists", requestID)
			return
		case pgForeignKeyViolation:
			Fail(w, http.StatusConflict, "conflict", "referenced resource is missing or still in use", requestID)
			return
		case pgCheckViolation:
			Fail(w, http.StatusBadRequest, "bad_request", "value violates a constraint", requestID)
			return
		}
	}
	if errors.Is(err, context.Canceled) {
		Fail(w, 499, "canceled", "request canceled", requestID)
		return
	}
	slog.Error("request failed", "requestId", requestID, "err", err)
	Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
