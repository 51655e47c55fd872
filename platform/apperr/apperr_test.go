package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Forbidden("x"), http.StatusForbidden},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Internal("x"), http.StatusInternalServerError},
		{New(KindUnknown, "x"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("HTTPStatus for kind %d = %d, want %d", tc.err.Kind, got, tc.want)
		}
	}
}

func TestErrorIncludesOp(t *testing.T) {
	err := NotFound("profile not found").WithOp("profiles.Get")
	if err.Error() != "profiles.Get: profile not found" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestGetKindUnwrapsWrappedErrors(t *testing.T) {
	base := Conflict("duplicate review")
	wrapped := fmt.Errorf("submit review: %w", base)

	if !Is(wrapped, KindConflict) {
		t.Fatalf("expected KindConflict through the wrap, got %d", GetKind(wrapped))
	}
	if Is(fmt.Errorf("plain"), KindConflict) {
		t.Fatal("expected KindUnknown for non-domain errors")
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := Wrap(KindInternal, "store profile", underlying)

	if err.Unwrap() != underlying {
		t.Fatal("expected Unwrap to return the underlying error")
	}
	if GetKind(err) != KindInternal {
		t.Fatalf("unexpected kind: %d", GetKind(err))
	}
}
