// Package response provides helpers for writing JSON HTTP responses.
// Every JSON error the API sends has the same envelope:
//
//	{"status": "error", "error": "human readable detail"}
//
// and validation failures additionally carry a per-field map.
package response

import (
	"encoding/json"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/aanand-mishra/student-registry/internal/validate"
)

// Response is the standard error envelope.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON sets the content type, writes the status code and encodes data.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any error in the standard envelope.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError turns per-field messages into the envelope. Error joins
// the messages in form field order (validate.Fields), followed by any other
// keys sorted by name, so it reads the same on every call.
func ValidationError(errs validate.Errors) Response {
	fields := make([]string, 0, len(errs))
	for _, f := range validate.Fields {
		if _, ok := errs[f]; ok {
			fields = append(fields, f)
		}
	}
	var rest []string
	for f := range errs {
		if !slices.Contains(validate.Fields, f) {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	fields = append(fields, rest...)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, errs[f])
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(msgs, " "),
		Fields: errs,
	}
}
