package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgErr(code string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "pg says no"})
}

func TestExtractPgErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := Wrap(pgErr("23505"), ErrorCodeDB, "insert failed")
	pe, ok := ExtractPgError(wrapped)
	if !ok || pe.Code != "23505" {
		t.Fatalf("ExtractPgError = %+v, %v", pe, ok)
	}
	if _, ok := ExtractPgError(fmt.Errorf("not pg")); ok {
		t.Fatal("foreign error should not extract")
	}
}

func TestSQLStatePredicates(t *testing.T) {
	t.Parallel()

	if !IsDuplicateKey(pgErr("23505")) {
		t.Fatal("23505 is a duplicate key")
	}
	if !IsForeignKeyViolation(pgErr("23503")) {
		t.Fatal("23503 is a foreign key violation")
	}
	if !IsCheckViolation(pgErr("23514")) {
		t.Fatal("23514 is a check violation")
	}
	if !IsSerializationFailure(pgErr("40001")) {
		t.Fatal("40001 is a serialization failure")
	}
	if !IsDeadlock(pgErr("40P01")) {
		t.Fatal("40P01 is a deadlock")
	}
	if IsDuplicateKey(pgErr("23503")) {
		t.Fatal("predicates must not cross-match")
	}
}

func TestDBErrorCodeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sqlstate string
		want     ErrorCode
	}{
		{"23505", ErrorCodeDuplicateKey},
		{"23503", ErrorCodeValidation},
		{"23502", ErrorCodeValidation},
		{"23514", ErrorCodeValidation},
		{"22P02", ErrorCodeValidation},
		{"40001", ErrorCodeUnavailable},
		{"40P01", ErrorCodeUnavailable},
		{"55P03", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"42P01", ErrorCodeDB},
	}
	for _, tc := range cases {
		code, ok := DBErrorCode(pgErr(tc.sqlstate))
		if !ok || code != tc.want {
			t.Fatalf("DBErrorCode(%s) = %v, %v; want %v", tc.sqlstate, code, ok, tc.want)
		}
	}
	if _, ok := DBErrorCode(fmt.Errorf("plain")); ok {
		t.Fatal("non-pg error should report !ok")
	}
}

func TestFromDB(t *testing.T) {
	t.Parallel()

	if FromDB(nil, "noop") != nil {
		t.Fatal("FromDB(nil) should stay nil")
	}
	err := FromDB(pgErr("23505"), "request insert failed")
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("CodeOf = %v", CodeOf(err))
	}
	err = FromDB(fmt.Errorf("driver hiccup"), "query failed")
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("fallback CodeOf = %v", CodeOf(err))
	}
}

func TestIsNoRows(t *testing.T) {
	t.Parallel()

	if !IsNoRows(Wrap(pgx.ErrNoRows, ErrorCodeNotFound, "audit request not found")) {
		t.Fatal("wrapped ErrNoRows should be detected")
	}
	if IsNoRows(pgErr("23505")) {
		t.Fatal("constraint errors are not no-rows")
	}
}

func TestIsRetryableDB(t *testing.T) {
	t.Parallel()

	if !IsRetryableDB(pgErr("40001")) || !IsRetryableDB(pgErr("40P01")) {
		t.Fatal("serialization failures and deadlocks retry")
	}
	if IsRetryableDB(pgErr("23505")) {
		t.Fatal("constraint violations must not retry")
	}
	if IsRetryableDB(nil) {
		t.Fatal("nil is not retryable")
	}
}
