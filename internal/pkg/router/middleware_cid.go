package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"github.com/shandysiswandi/pawhaven/internal/pkg/uid"
)

// HeaderCorrelationID carries the correlation ID on requests and responses.
const HeaderCorrelationID = "X-Correlation-ID"

// correlationHeaders are read in order; proxies often set X-Request-ID instead.
var correlationHeaders = []string{HeaderCorrelationID, "X-Request-ID"}

const maxCorrelationIDLen = 128

// cleanCorrelationID rejects header-splitting input and bounds the length.
func cleanCorrelationID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	if len(v) > maxCorrelationIDLen {
		return v[:maxCorrelationIDLen]
	}
	return v
}

// middlewareCorrelationID propagates the caller's correlation ID or mints one,
// echoes it back and stores it in the request context for logs and events.
func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cid string
			for _, h := range correlationHeaders {
				if cid = cleanCorrelationID(r.Header.Get(h)); cid != "" {
					break
				}
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}
			if cid == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderCorrelationID, cid)
			next.ServeHTTP(w, r.WithContext(instrument.SetCorrelationID(r.Context(), cid)))
		})
	}
}
