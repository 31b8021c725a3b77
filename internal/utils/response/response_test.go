package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registry/internal/validate"
)

func TestValidationErrorFieldOrder(t *testing.T) {
	errs := validate.Errors{
		validate.FieldYear:      "Please select a year.",
		validate.FieldEmail:     "Please enter a valid email.",
		validate.FieldFirstName: "First name must be at least 2 characters.",
		validate.FieldPhoto:     "Please select a photo.",
	}

	want := "First name must be at least 2 characters. Please enter a valid email. " +
		"Please select a year. Please select a photo."
	for i := 0; i < 5; i++ {
		got := ValidationError(errs)
		assert.Equal(t, StatusError, got.Status)
		assert.Equal(t, want, got.Error)
		assert.Equal(t, errs, validate.Errors(got.Fields))
	}
}

func TestValidationErrorUnknownKeysLast(t *testing.T) {
	got := ValidationError(validate.Errors{
		"zeta":              "z.",
		"":                  "blank.",
		validate.FieldPhoto: "Please select a photo.",
	})
	assert.Equal(t, "Please select a photo. blank. z.", got.Error)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusNotFound, GeneralError(errors.New("not found"))))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Response{Status: StatusError, Error: "not found"}, body)
}
