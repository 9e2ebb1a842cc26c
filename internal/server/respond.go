package server

import (
	"encoding/json"
	"net/http"

	perrors "github.com/matzehuels/provmap/pkg/errors"
)

var errNotFound = perrors.New(perrors.ErrCodeNotFound, "not found")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code      perrors.Code `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps err to a status with perrors.HTTPStatus and writes it as
// {code, message}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	writeJSON(w, perrors.HTTPStatus(err), errorBody{
		Code:      code,
		Message:   perrors.UserMessage(err),
		RequestID: requestIDFrom(r.Context()),
	})
}
