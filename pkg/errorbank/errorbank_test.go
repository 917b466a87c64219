package errorbank

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Unprocessable("x"), http.StatusUnprocessableEntity},
		{Internal("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, tc.err.StatusCode(), "kind %s", tc.err.Kind())
	}
}

func TestFrom(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.Nil(t, From(nil))
	})

	t.Run("app errors pass through, even wrapped", func(t *testing.T) {
		appErr := NotFound("missing")
		require.Same(t, appErr, From(appErr))

		wrapped := errors.Join(errors.New("outer"), appErr)
		require.Same(t, appErr, From(wrapped))
	})

	t.Run("plain errors become internal without leaking text", func(t *testing.T) {
		cause := errors.New("pq: connection refused")
		appErr := From(cause)
		require.Equal(t, KindInternal, appErr.Kind())
		require.NotContains(t, appErr.Message(), "connection refused")
		require.ErrorIs(t, appErr, cause)
	})
}

func TestOptions(t *testing.T) {
	cause := errors.New("boom")
	err := Conflict("taken",
		WithCause(cause),
		WithDetail("field", "email"),
		WithDetails(map[string]any{"hint": "lowercase"}))

	require.ErrorIs(t, err, cause)
	require.Equal(t, "email", err.Details()["field"])
	require.Equal(t, "lowercase", err.Details()["hint"])
	require.Equal(t, "taken", err.Message())
}
