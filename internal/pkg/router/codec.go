package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shandysiswandi/pawhaven/internal/pkg/goerror"
	"github.com/shandysiswandi/pawhaven/internal/pkg/validator"
)

const defaultSuccessMessage = "Request succeeded"

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Optional behaviours a handler result may implement to shape the envelope.
type (
	statusCoder interface{ StatusCode() int }
	messenger   interface{ Message() string }
	metaCarrier interface{ Meta() map[string]any }
)

// encodeError writes err as an error envelope. Anything that is not a
// goerror is reported as a bare 500 so internals never leak.
func encodeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	body := errorResponse{Message: gerr.Msg(), Error: gerr.Fields()}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		body.Error = verr.Values()
	}
	if len(body.Error) == 0 {
		body.Error = nil
	}

	writeJSON(w, body, gerr.StatusCode())
}

// encodeSuccess wraps resp in the success envelope. A nil result or a
// 204 status produces an empty body.
func encodeSuccess(w http.ResponseWriter, resp any) {
	status := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		status = sc.StatusCode()
	}
	if resp == nil || status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body := successResponse{Message: defaultSuccessMessage, Data: resp}
	if m, ok := resp.(messenger); ok {
		body.Message = m.Message()
	}
	if m, ok := resp.(metaCarrier); ok {
		body.Meta = m.Meta()
	}

	writeJSON(w, body, status)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	// headers are gone at this point, so an encode failure can only be logged
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: encode response body", "status", code, "error", err)
	}
}
