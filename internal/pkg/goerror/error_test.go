package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	t.Run("StatusCodes", func(t *testing.T) {
		tests := map[string]struct {
			err  error
			want int
		}{
			"Server":        {err: NewServer(errors.New("db down")), want: http.StatusInternalServerError},
			"Unauthorized":  {err: NewBusiness("Invalid email or password", CodeUnauthorized), want: http.StatusUnauthorized},
			"Forbidden":     {err: NewBusiness("Account is not allowed", CodeForbidden), want: http.StatusForbidden},
			"Conflict":      {err: NewBusiness("Email already registered", CodeConflict), want: http.StatusConflict},
			"InvalidInput":  {err: NewInvalidInput(nil, "code", "is required"), want: http.StatusUnprocessableEntity},
			"InvalidFormat": {err: NewInvalidFormat(), want: http.StatusBadRequest},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				var gerr *Error
				if !errors.As(tt.err, &gerr) || gerr.StatusCode() != tt.want {
					t.Fatalf("expected status %d for %v", tt.want, tt.err)
				}
			})
		}
	})

	t.Run("ServerHidesCause", func(t *testing.T) {
		cause := errors.New("pq: connection refused")
		err := fmt.Errorf("sign in: %w", NewServer(cause))

		var gerr *Error
		if !errors.As(err, &gerr) || gerr.Msg() != "Internal server error" {
			t.Fatalf("unexpected client message for %v", err)
		}
		if !errors.Is(err, cause) || !IsServer(err) {
			t.Fatal("expected cause to stay reachable")
		}
		if !strings.Contains(fmt.Sprintf("%+v", gerr), "server/") {
			t.Fatalf("unexpected verbose form %+v", gerr)
		}
	})

	t.Run("InvalidInputFields", func(t *testing.T) {
		var gerr *Error
		if !errors.As(NewInvalidInput(nil, "challenge_token", "is required"), &gerr) {
			t.Fatal("expected *Error")
		}
		if gerr.Fields()["challenge_token"] != "is required" {
			t.Fatalf("unexpected fields %v", gerr.Fields())
		}
		if CodeOf(NewInvalidInput(nil, "odd")) != CodeInvalidFormat {
			t.Fatal("expected odd pairs to degrade to invalid format")
		}
	})

	t.Run("PlainError", func(t *testing.T) {
		if CodeOf(errors.New("x")) != CodeInternal || IsServer(errors.New("x")) {
			t.Fatal("plain errors are internal but not classified as server")
		}
	})
}
