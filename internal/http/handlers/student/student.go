// Package student contains the HTTP handlers for the registration page and
// the JSON API.
//
// Every exported function here is a handler FACTORY: it receives its
// dependencies and returns the http.HandlerFunc that the router calls.
// Page actions (submit, edit, remove) answer with 303 See Other back to
// "/", so a browser refresh never re-posts the form; the outcome is read
// back from the service draft and the feedback notifier.
package student

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/http/middleware"
	"github.com/aanand-mishra/student-registry/internal/photo"
	"github.com/aanand-mishra/student-registry/internal/registration"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/utils/response"
	"github.com/aanand-mishra/student-registry/internal/validate"
	"github.com/aanand-mishra/student-registry/internal/view"
)

// MsgBadForm is shown when the submitted body could not be parsed at all.
const MsgBadForm = "Could not read the submitted form."

// formOverhead is the allowance for the text fields on top of the photo.
const formOverhead = 1 << 20

// parseForm reads the multipart body into a types.Form.
func parseForm(r *http.Request, w http.ResponseWriter, maxPhotoBytes int64) (types.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		return types.Form{}, fmt.Errorf("parse form: %w", err)
	}

	form := types.Form{
		FirstName: r.FormValue(validate.FieldFirstName),
		LastName:  r.FormValue(validate.FieldLastName),
		Email:     r.FormValue(validate.FieldEmail),
		Programme: r.FormValue(validate.FieldProgramme),
		Year:      r.FormValue(validate.FieldYear),
		Interests: r.FormValue("interests"),
	}

	if files := r.MultipartForm.File[validate.FieldPhoto]; len(files) > 0 {
		form.Photo = photo.FromFileHeader(files[0])
	}

	return form, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id: must be a positive integer")
	}
	return id, nil
}

func seeOther(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func logger(r *http.Request) *slog.Logger {
	return slog.With(slog.String("request_id", middleware.RequestID(r.Context())))
}

// Page renders the form, both roster views and the current feedback.
func Page(svc *registration.Service, notifier *feedback.Notifier, renderer *view.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.Views()
		if err != nil {
			logger(r).Error("error building views", slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		form, errs := svc.Draft()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = renderer.Render(w, view.Page{
			Form:     form,
			Errors:   errs,
			Feedback: notifier.Current(),
			Views:    views,
		})
		if err != nil {
			logger(r).Error("error rendering page", slog.String("error", err.Error()))
		}
	}
}

// Submit handles the registration form post.
func Submit(svc *registration.Service, notifier *feedback.Notifier, maxPhotoBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger(r)
		log.Info("submitting a student")

		form, err := parseForm(r, w, maxPhotoBytes)
		if err != nil {
			log.Warn("unreadable form", slog.String("error", err.Error()))
			notifier.Show(feedback.Error, MsgBadForm)
			seeOther(w, r)
			return
		}

		out, err := svc.Submit(r.Context(), form)
		switch {
		case errors.Is(err, photo.ErrDecode):
			// Already surfaced to the user through the draft and feedback.
			log.Warn("photo rejected", slog.String("error", err.Error()))
		case err != nil:
			log.Error("error submitting student", slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		log.Info("submission finished", slog.String("status", string(out.Status)))
		seeOther(w, r)
	}
}

// Edit moves a record back into the form.
func Edit(svc *registration.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger(r).Info("editing a student", slog.Int64("id", id))

		if _, err := svc.Edit(id); err != nil {
			logger(r).Error("error editing student", slog.Int64("id", id), slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		seeOther(w, r)
	}
}

// Remove deletes a record from the page.
func Remove(svc *registration.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger(r).Info("removing a student", slog.Int64("id", id))

		if _, err := svc.Remove(id); err != nil {
			logger(r).Error("error removing student", slog.Int64("id", id), slog.String("error", err.Error()))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		seeOther(w, r)
	}
}

// Create is the JSON counterpart of Submit. It answers 201 with the new
// record, or 422 with per-field messages when validation or decoding fails.
// The page draft and status message are not affected.
func Create(svc *registration.Service, maxPhotoBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger(r)
		log.Info("creating a student")

		form, err := parseForm(r, w, maxPhotoBytes)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		out, err := svc.Create(r.Context(), form)
		if err != nil && !errors.Is(err, photo.ErrDecode) {
			log.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if out.Status != registration.StatusAdded {
			response.WriteJSON(w, http.StatusUnprocessableEntity, response.ValidationError(out.Errors))
			return
		}

		log.Info("student created", slog.Int64("id", out.Student.ID))
		response.WriteJSON(w, http.StatusCreated, out.Student)
	}
}

// GetList returns every record, oldest first.
func GetList(roster storage.Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger(r).Info("getting all students")

		students, err := roster.All()
		if err != nil {
			logger(r).Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// GetByID returns one record, or 404.
func GetByID(roster storage.Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		logger(r).Info("getting a student", slog.Int64("id", id))

		student, err := roster.FindByID(id)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
			return
		}
		if err != nil {
			logger(r).Error("error getting student", slog.Int64("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// Delete removes a record. Removing an absent id still answers 200.
func Delete(svc *registration.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		logger(r).Info("deleting a student", slog.Int64("id", id))

		removed, err := svc.Remove(id)
		if err != nil {
			logger(r).Error("error deleting student", slog.Int64("id", id), slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  response.StatusOK,
			"removed": removed,
		})
	}
}
