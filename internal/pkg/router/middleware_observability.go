package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/pawhaven/internal/pkg/config"
	"github.com/shandysiswandi/pawhaven/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLoggedBodyBytes = 16 * 1024
	maskedValue        = "***"
)

// credentialFields are masked in logs whatever instrument.log_mask_fields says.
// Every auth payload carries at least one of them.
var credentialFields = []string{
	"authorization", "cookie",
	"password", "code", "secret", "backup_codes",
	"token", "access_token", "challenge_token",
}

// maskSet is a set of lowercase field and header names.
type maskSet map[string]struct{}

func newMaskSet(cfg config.Config) maskSet {
	ms := make(maskSet, len(credentialFields))
	for _, f := range credentialFields {
		ms[f] = struct{}{}
	}
	if cfg != nil {
		for _, f := range cfg.GetArray("instrument.log_mask_fields") {
			ms[strings.ToLower(f)] = struct{}{}
		}
	}
	return ms
}

func (ms maskSet) masks(key string) bool {
	_, ok := ms[strings.ToLower(key)]
	return ok
}

func (ms maskSet) headers(h http.Header) http.Header {
	out := h.Clone()
	for k := range out {
		if ms.masks(k) {
			out.Set(k, maskedValue)
		}
	}
	return out
}

// value walks decoded JSON and replaces masked keys at any depth.
func (ms maskSet) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if ms.masks(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = ms.value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = ms.value(inner)
		}
		return out
	default:
		return v
	}
}

// body renders a captured body for logging. JSON is masked; other text is
// logged as is; binary is omitted.
func (ms maskSet) body(b []byte, truncated bool) any {
	if len(b) == 0 {
		return nil
	}

	var out any
	var decoded any
	switch {
	case json.Unmarshal(b, &decoded) == nil:
		out = ms.value(decoded)
	case utf8.Valid(b):
		out = string(b)
	default:
		out = "<binary body omitted>"
	}

	if truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

// responseRecorder captures the status, size, a bounded copy of the body and
// the handler error reported through SetError.
type responseRecorder struct {
	http.ResponseWriter
	status    int
	size      int
	body      bytes.Buffer
	truncated bool
	err       error
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - w.body.Len(); room < len(p) {
		w.body.Write(p[:max(room, 0)])
		w.truncated = true
	} else {
		w.body.Write(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.size += n
	return n, err
}

// SetError is called by the router when a handler returns an error.
func (w *responseRecorder) SetError(err error) {
	w.err = err
}

func (w *responseRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBodyBytes without consuming the request body.
func peekBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	//nolint:errcheck // logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	if len(head) > maxLoggedBodyBytes {
		return head[:maxLoggedBodyBytes], true
	}
	return head, false
}

// middlewareObservability opens the server span, records request metrics and
// logs each request and response with credentials masked.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	mask := newMaskSet(cfg)
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests served"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}
	latency, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.ClientAddressKey.String(r.RemoteAddr),
					semconv.UserAgentOriginalKey.String(r.UserAgent()),
				),
			)
			defer span.End()

			reqBody, reqTruncated := peekBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"client_ip", r.RemoteAddr,
				"headers", mask.headers(r.Header),
				"body", mask.body(reqBody, reqTruncated),
			)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)
			attrs := metric.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			)

			span.SetAttributes(
				semconv.HTTPResponseStatusCodeKey.Int(status),
				attribute.Int("http.response.body.size", rec.size),
			)
			switch {
			case status >= http.StatusInternalServerError && rec.err != nil:
				span.RecordError(rec.err)
				span.SetStatus(codes.Error, rec.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			case rec.err != nil:
				span.RecordError(rec.err)
			}

			if requests != nil {
				requests.Add(ctx, 1, attrs)
			}
			if latency != nil {
				latency.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.size,
				"latency_ms", elapsed.Milliseconds(),
				"body", mask.body(rec.body.Bytes(), rec.truncated),
			)
		})
	}
}
