// Package httputil writes JSON and envelope responses.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "party/pkg/domain-errors"
	"party/pkg/envelope"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

// WriteJSON writes v with status. Encoding failures after the header is sent
// cannot be reported to the client and are dropped.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in a SUCCESS envelope.
func WriteSuccess[T any](w http.ResponseWriter, status int, data *T, message string) {
	WriteJSON(w, status, envelope.Success(data, message))
}

// WriteError writes a FAIL envelope whose status follows the error code.
// The description is bounded to maxLen characters.
func WriteError(w http.ResponseWriter, err error, maxLen int) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.HTTPStatus(code), envelope.Fail[any](ErrorDescription(err), maxLen))
}

// ErrorDescription is the caller-visible text for err: the coded message, or
// the default message for uncoded errors so internal detail never leaks.
func ErrorDescription(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return envelope.DefaultErrorMessage
}

// DecodeJSON decodes the request body into dst. Malformed or oversized bodies
// are reported as bad requests.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "request body too large")
		case errors.Is(err, io.EOF):
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "request body is required")
		default:
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed JSON request")
		}
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "malformed JSON request")
	}
	return nil
}
