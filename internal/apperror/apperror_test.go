package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(Forbidden("no")); got != KindForbidden {
		t.Errorf("KindOf(Forbidden) = %v, want KindForbidden", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain error) = %v, want KindInternal", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("update status: %w", NotFound("task not found"))
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want KindNotFound", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Unauthenticated("no token"), http.StatusUnauthorized},
		{Forbidden("admin required"), http.StatusForbidden},
		{NotFound("project not found"), http.StatusNotFound},
		{Validation("start_date after deadline"), http.StatusBadRequest},
		{Conflict("username already registered"), http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
