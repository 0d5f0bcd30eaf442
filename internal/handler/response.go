package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/insider-one/push-relay/internal/domain"
)

// errEmptyBody is returned by DecodeJSON when the request carried no body
var errEmptyBody = errors.New("empty request body")

// JSON writes v as a JSON response
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}

// WriteResult writes a relay envelope with the status its code maps to
func WriteResult(w http.ResponseWriter, result *domain.Result) {
	JSON(w, statusForCode(result.Code), result)
}

// JSONError writes an error envelope
func JSONError(w http.ResponseWriter, status int, code domain.ResultCode, message string) {
	JSON(w, status, &domain.Result{
		Code:    code,
		Message: message,
	})
}

// HandleError maps faults from the dispatch path to responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTransportFault):
		JSONError(w, http.StatusBadGateway, domain.CodeFailed, "message transport unavailable")

	default:
		var validationErr domain.ValidationError
		if errors.As(err, &validationErr) {
			JSONError(w, http.StatusBadRequest, domain.CodeFailed, validationErr.Error())
			return
		}

		JSONError(w, http.StatusInternalServerError, domain.CodeFailed, domain.CodeFailed.Message())
	}
}

func statusForCode(code domain.ResultCode) int {
	switch code {
	case domain.CodeOK:
		return http.StatusOK
	case domain.CodeUserNotExist:
		return http.StatusNotFound
	case domain.CodeTextNull:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DecodeJSON decodes the JSON request body. Unknown fields are ignored.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}

	return nil
}
