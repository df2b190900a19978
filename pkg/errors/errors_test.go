package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	cases := []struct {
		code    Code
		status  int
		details bool
		retry   bool
	}{
		{CodeValidation, http.StatusBadRequest, true, false},
		{CodeUnauthorized, http.StatusUnauthorized, false, false},
		{CodeForbidden, http.StatusForbidden, false, false},
		{CodeNotFound, http.StatusNotFound, true, false},
		{CodeConflict, http.StatusConflict, true, false},
		{CodeIdempotency, http.StatusConflict, true, false},
		{CodeRateLimit, http.StatusTooManyRequests, false, true},
		{CodeInternal, http.StatusInternalServerError, false, true},
		{CodeDependency, http.StatusServiceUnavailable, true, true},
	}
	for _, tc := range cases {
		p := PolicyFor(tc.code)
		assert.Equal(t, tc.status, p.Status, tc.code)
		assert.Equal(t, tc.details, p.ShowDetails, tc.code)
		assert.Equal(t, tc.retry, p.Retryable, tc.code)
		assert.NotEmpty(t, p.Fallback, tc.code)
	}
	assert.Equal(t, http.StatusInternalServerError, PolicyFor("SOMETHING_ELSE").Status)
}

func TestWrapKeepsCauseOutOfMessage(t *testing.T) {
	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeDependency, cause, "payment gateway unavailable")

	require.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "payment gateway unavailable", wrapped.Message())
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestReason(t *testing.T) {
	err := NewReason(CodeValidation, ReasonInvalidSuburb, "suburb not serviced")
	assert.Equal(t, ReasonInvalidSuburb, err.Reason())
	assert.Equal(t, Reason(""), New(CodeValidation, "plain").Reason())
	assert.Equal(t, Reason(""), New(CodeValidation, "odd").WithDetails([]string{"x"}).Reason())

	var missing *Error
	assert.Equal(t, Reason(""), missing.Reason())
}

func TestIsCodeWalksChain(t *testing.T) {
	outer := fmt.Errorf("load order: %w", New(CodeNotFound, "order not found"))
	if !IsCode(outer, CodeNotFound) {
		t.Fatalf("expected IsCode to find not found")
	}
	if IsCode(outer, CodeForbidden) {
		t.Fatalf("unexpected forbidden match")
	}
	if IsCode(nil, CodeNotFound) || As(nil) != nil {
		t.Fatalf("nil error should not match")
	}
}

func TestPostgresReadsBothDrivers(t *testing.T) {
	pgx := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_orders_tracking_id", TableName: "orders"})
	detail, ok := Postgres(pgx)
	require.True(t, ok)
	assert.Equal(t, "23505", detail.Code)
	assert.Equal(t, "ux_orders_tracking_id", detail.Constraint)

	legacy := &pq.Error{Code: "23503", Constraint: "fk_complaints_order", Table: "complaints"}
	detail, ok = Postgres(legacy)
	require.True(t, ok)
	assert.Equal(t, "23503", detail.Code)
	assert.Equal(t, "complaints", detail.Table)

	_, ok = Postgres(stdErrors.New("UNIQUE constraint failed"))
	assert.False(t, ok)
}

func TestLogFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email_lower", TableName: "users"}
	err := fmt.Errorf("register: %w", NewReason(CodeConflict, ReasonEmailTaken, "Email already registered").WithDetails(map[string]any{"reason": "EmailTaken"}))
	err = fmt.Errorf("%w (%w)", err, pgErr)

	fields := LogFields(err)
	assert.Equal(t, CodeConflict, fields["error_code"])
	assert.Equal(t, ReasonEmailTaken, fields["reason"])
	assert.Equal(t, "23505", fields["pg_code"])
	assert.Equal(t, "users", fields["pg_table"])
	assert.Nil(t, LogFields(nil))
}
