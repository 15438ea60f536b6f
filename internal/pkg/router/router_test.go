package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/jwt"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
)

type stubVerifier struct{}

func (stubVerifier) Generate(int64, string) (string, error) { return "", nil }

func (stubVerifier) Verify(token string) (jwt.Claims, error) {
	switch token {
	case "good":
		return jwt.Claims{HolderID: 1}, nil
	case "old":
		return jwt.Claims{}, jwt.ErrTokenExpired
	default:
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
}

type payload struct {
	Name string `json:"name"`
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  maintenance:
    endpoints:
      - "DELETE /things"
      - /frozen
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	r := NewRouter(Config{
		Config:          cfg,
		UUID:            uid.NewUUID(),
		JWT:             stubVerifier{},
		Instrument:      instrument.NewNoop(),
		PublicEndpoints: map[string][]string{http.MethodPost: {"/things", "/frozen"}},
	})

	r.POST("/things", func(req *Request) (any, error) {
		var in payload
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return in, nil
	})
	r.POST("/frozen", func(*Request) (any, error) { return nil, nil })
	r.GET("/me", func(req *Request) (any, error) {
		clm, _ := jwt.FromContext(req.Context())
		return map[string]int64{"holder_id": clm.HolderID}, nil
	})
	r.GET("/conflict", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	})
	r.GET("/panic", func(*Request) (any, error) { panic("boom") })

	return r
}

func serve(r *Router, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env.Message
}

func TestRouter(t *testing.T) {
	r := newTestRouter(t)

	t.Run("PublicRoute", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/things", `{"name":"kit"}`, nil)

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"kit"`) {
			t.Fatalf("unexpected response %d %s", rec.Code, rec.Body)
		}
		if rec.Header().Get(HeaderCorrelationID) == "" {
			t.Fatal("expected a generated correlation id")
		}
	})

	t.Run("UnknownFieldRejected", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/things", `{"name":"kit","admin":true}`, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Authentication", func(t *testing.T) {
		tests := map[string]struct {
			header string
			status int
			msg    string
		}{
			"Missing": {header: "", status: http.StatusUnauthorized, msg: "Authentication required"},
			"Scheme":  {header: "Basic good", status: http.StatusUnauthorized, msg: "Authentication required"},
			"Expired": {header: "Bearer old", status: http.StatusUnauthorized, msg: "Access token has expired"},
			"Invalid": {header: "Bearer nope", status: http.StatusUnauthorized, msg: "Invalid or expired token"},
			"Valid":   {header: "bearer good", status: http.StatusOK, msg: "Request succeeded"},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				rec := serve(r, http.MethodGet, "/me", "", http.Header{"Authorization": {tt.header}})

				if rec.Code != tt.status || message(t, rec) != tt.msg {
					t.Fatalf("unexpected response %d %s", rec.Code, rec.Body)
				}
			})
		}
	})

	t.Run("BusinessError", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/conflict", "", http.Header{"Authorization": {"Bearer good"}})

		if rec.Code != http.StatusConflict || message(t, rec) != "Email already registered" {
			t.Fatalf("unexpected response %d %s", rec.Code, rec.Body)
		}
	})

	t.Run("Maintenance", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/frozen", "", nil)

		if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") == "" {
			t.Fatalf("unexpected response %d %s", rec.Code, rec.Body)
		}
	})

	t.Run("Panic", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/panic", "", http.Header{"Authorization": {"Bearer good"}})

		if rec.Code != http.StatusInternalServerError || message(t, rec) != "Internal server error" {
			t.Fatalf("unexpected response %d %s", rec.Code, rec.Body)
		}
	})

	t.Run("CorrelationIDPropagated", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/things", `{}`, http.Header{"X-Request-Id": {"from-proxy"}})

		if got := rec.Header().Get(HeaderCorrelationID); got != "from-proxy" {
			t.Fatalf("expected proxy id, got %q", got)
		}
	})
}

func TestClientIP(t *testing.T) {
	tests := map[string]struct {
		header http.Header
		remote string
		want   string
	}{
		"TrueClientIP": {header: http.Header{"True-Client-Ip": {"203.0.113.9"}}, remote: "10.0.0.1:1234", want: "203.0.113.9"},
		"ForwardedFor": {header: http.Header{"X-Forwarded-For": {"198.51.100.1, 10.0.0.2"}}, remote: "10.0.0.1:1234", want: "198.51.100.1"},
		"Garbage":      {header: http.Header{"X-Real-Ip": {"nope"}}, remote: "10.0.0.1:1234", want: "10.0.0.1"},
		"NoHeaders":    {header: http.Header{}, remote: "[::1]:80", want: "::1"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header = tt.header
			req.RemoteAddr = tt.remote

			if got := clientIP(req); got != tt.want {
				t.Fatalf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
