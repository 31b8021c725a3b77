package student

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/utils/response"
	"github.com/aanand-mishra/student-registry/internal/validate"
)

type validateRequest struct {
	Value string `json:"value"`
}

// ValidateField checks a single field value as the user types. For the
// photo field the value is the declared media type of the chosen file.
func ValidateField() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		result, err := validate.ByName(r.PathValue("field"), req.Value)
		if errors.Is(err, validate.ErrUnknownField) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, result)
	}
}

// Feedback returns the status message currently on screen.
func Feedback(notifier *feedback.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, notifier.Current())
	}
}

// Health answers liveness probes.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}
