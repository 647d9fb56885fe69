package server

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
	"github.com/NVIDIA/k8s-ephem/pkg/serializer"
)

// WriteError writes a JSON ErrorResponse.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code ephemerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps err to a status code and writes it. StructuredErrors
// keep their code, message and context; anything else is reported as
// INTERNAL with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extra map[string]any) {
	var se *ephemerrors.StructuredError
	if !errors.As(err, &se) {
		slog.Error("request failed", slog.String("error", err.Error()))
		WriteError(w, r, http.StatusInternalServerError, ephemerrors.ErrCodeInternal, fallbackMessage,
			retryableFromCode(ephemerrors.ErrCodeInternal),
			mergeDetails(extra, map[string]any{"error": err.Error()}))
		return
	}

	details := mergeDetails(se.Context, extra)
	if se.Cause != nil {
		details = mergeDetails(details, map[string]any{"error": se.Cause.Error()})
	}

	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), details)
}

// HTTPStatusFromCode maps an error code to an HTTP status.
func HTTPStatusFromCode(code ephemerrors.ErrorCode) int {
	switch code {
	case ephemerrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ephemerrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ephemerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case ephemerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ephemerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ephemerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case ephemerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ephemerrors.ErrCodeClusterQuery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code ephemerrors.ErrorCode) bool {
	switch code {
	case ephemerrors.ErrCodeTimeout,
		ephemerrors.ErrCodeUnavailable,
		ephemerrors.ErrCodeRateLimitExceeded,
		ephemerrors.ErrCodeClusterQuery,
		ephemerrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with b's entries over a's, or nil if both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
