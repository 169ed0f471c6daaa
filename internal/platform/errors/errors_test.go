package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestWrapChainAndRoot(t *testing.T) {
	t.Parallel()

	cause := stderrs.New("connection refused")
	err := Wrap(cause, ErrorCodeExternal, "pin failed")

	if got := CodeOf(err); got != ErrorCodeExternal {
		t.Fatalf("CodeOf = %v", got)
	}
	if !IsCode(err, ErrorCodeExternal) {
		t.Fatal("IsCode should match the wrapped code")
	}
	if !stderrs.Is(err, cause) {
		t.Fatal("wrapped cause should survive errors.Is")
	}
	if got := Root(err); got != cause {
		t.Fatalf("Root = %v", got)
	}
}

func TestWrapIf(t *testing.T) {
	t.Parallel()

	if WrapIf(nil, ErrorCodeDB, "noop") != nil {
		t.Fatal("WrapIf(nil) should stay nil")
	}
	err := WrapIf(stderrs.New("boom"), ErrorCodeDB, "query failed")
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("CodeOf = %v", CodeOf(err))
	}
}

func TestMutatorsCopyOnWrite(t *testing.T) {
	t.Parallel()

	base := Validationf("bad tag")
	step := WithStep(base, "package")
	cid := WithCID(step, "bafyabc")
	field := WithField(base, "tags")

	if StepOf(base) != "" || CIDOf(base) != "" {
		t.Fatal("mutators must not modify the original error")
	}
	if StepOf(cid) != "package" || CIDOf(cid) != "bafyabc" {
		t.Fatalf("carriers lost: step=%q cid=%q", StepOf(cid), CIDOf(cid))
	}
	e, ok := As(field)
	if !ok || e.Field() != "tags" {
		t.Fatalf("field = %+v, %v", e, ok)
	}

	// non-project errors pass through unchanged
	plain := stderrs.New("plain")
	if WithStep(plain, "mint") != plain {
		t.Fatal("WithStep should not wrap foreign errors")
	}
}

func TestWireForm(t *testing.T) {
	t.Parallel()

	err := WithCID(WithStep(Externalf("mint", "ledger timeout"), "mint"), "bafyreq1")
	wr := WireFrom(err)
	if wr.Code != ErrorCodeExternal || wr.Step != "mint" || wr.CID != "bafyreq1" {
		t.Fatalf("wire = %+v", wr)
	}
	if wr.Message != "ledger timeout" {
		t.Fatalf("message = %q", wr.Message)
	}

	plain := WireFrom(stderrs.New("oops"))
	if plain.Code != ErrorCodeUnknown || plain.Message != "oops" {
		t.Fatalf("foreign wire = %+v", plain)
	}
	if (WireFrom(nil) != Wire{}) {
		t.Fatal("nil should map to the zero Wire")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{NotFoundf("no row"), http.StatusNotFound},
		{InvalidArgf("bad id"), http.StatusUnprocessableEntity},
		{Validationf("bad input"), http.StatusBadRequest},
		{JSONErrf("bad body"), http.StatusBadRequest},
		{DuplicateKeyf("exists"), http.StatusConflict},
		{Conflictf("already claimed"), http.StatusConflict},
		{Unauthorizedf("no token"), http.StatusUnauthorized},
		{Authorizationf("wrong signer"), http.StatusForbidden},
		{Unavailablef("try later"), http.StatusServiceUnavailable},
		{Externalf("pin", "gateway down"), http.StatusBadGateway},
		{DBf("query failed"), http.StatusInternalServerError},
		{Internalf("unexpected"), http.StatusInternalServerError},
		{PanicErrf("recovered"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	status, wr := HTTP(Conflictf("claimed"))
	if status != http.StatusConflict || wr.Code != ErrorCodeConflict {
		t.Fatalf("HTTP = %d, %+v", status, wr)
	}
	if status, wr := HTTP(nil); status != http.StatusOK || (wr != Wire{}) {
		t.Fatalf("HTTP(nil) = %d, %+v", status, wr)
	}
}

func TestRetryableSemantics(t *testing.T) {
	t.Parallel()

	if Retryable(Conflictf("claimed")) {
		t.Fatal("conflicts must never retry")
	}
	if Retryable(Authorizationf("wrong signer")) {
		t.Fatal("authorization failures are fatal")
	}
	if !Retryable(Externalf("mint", "timeout")) {
		t.Fatal("external faults retry with the attached cid")
	}
	if !Retryable(Unavailablef("busy")) {
		t.Fatal("unavailable should retry")
	}
}
