package apierrors

import (
	"encoding/json"
	"net/http"

	"github.com/prassanna-ravishankar/phlow-go/internal/logging"
)

// StatusCode implements the spec's error-kind-to-HTTP-status table. A nil
// error maps to 200; errors that are not one of our Kinds map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case TokenMalformed, TokenSignatureInvalid, TokenExpired, TokenClaimMismatch, AgentUnknown:
		return http.StatusUnauthorized
	case PermissionsInsufficient, RoleAbsent, RoleCredentialRefused:
		return http.StatusForbidden
	case RateLimitExceeded:
		return http.StatusTooManyRequests
	case CircuitOpen, RegistryUnavailable, OperationTimeout:
		return http.StatusServiceUnavailable
	case ConfigurationInvalid:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandlerWithError is an HTTP handler that may return an error instead of
// writing one directly, so error-to-status mapping happens in one place.
type HandlerWithError func(http.ResponseWriter, *http.Request) error

// clientErrorBody is the stable client-visible error envelope from spec §7.
type clientErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler wraps fn and converts a returned error into the §6/§7 HTTP
// response: 5xx errors log full detail and return a generic body; 4xx
// errors return the stable kind string plus message as JSON.
func ErrorHandler(fn HandlerWithError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		code := StatusCode(err)
		kind, ok := KindOf(err)
		if !ok {
			kind = ConfigurationInvalid
		}

		if code >= http.StatusInternalServerError {
			logging.ErrorContext(r.Context(), "internal error serving request", "error", err, "kind", kind)
			writeJSONError(w, code, clientErrorBody{
				Error:   string(kind),
				Message: http.StatusText(code),
			})
			return
		}

		writeJSONError(w, code, clientErrorBody{Error: string(kind), Message: err.Error()})
	}
}

func writeJSONError(w http.ResponseWriter, code int, body clientErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
