package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/http/middleware"
	"github.com/aanand-mishra/student-registry/internal/photo"
	"github.com/aanand-mishra/student-registry/internal/registration"
	"github.com/aanand-mishra/student-registry/internal/storage/memory"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/utils/response"
	"github.com/aanand-mishra/student-registry/internal/validate"
	"github.com/aanand-mishra/student-registry/internal/view"
)

type testApp struct {
	handler  http.Handler
	notifier *feedback.Notifier
}

func setup(t *testing.T) testApp {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	roster := memory.New()
	// Long durations so messages are still visible when asserted.
	notifier := feedback.New(feedback.Durations{
		feedback.Success: time.Minute,
		feedback.Info:    time.Minute,
		feedback.Error:   time.Minute,
	})
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	svc := registration.NewService(roster, photo.NewDecoder(0), notifier, log)
	return testApp{
		handler: NewRouter(Deps{
			Roster:        roster,
			Service:       svc,
			Notifier:      notifier,
			Renderer:      renderer,
			MaxPhotoBytes: photo.DefaultMaxBytes,
			Log:           log,
		}),
		notifier: notifier,
	}
}

func (a testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type upload struct {
	fields      map[string]string
	filename    string
	contentType string
	data        []byte
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func validUpload(t *testing.T, first string) upload {
	return upload{
		fields: map[string]string{
			validate.FieldFirstName: first,
			validate.FieldLastName:  "Li",
			validate.FieldEmail:     "ana@x.com",
			validate.FieldProgramme: "CS",
			validate.FieldYear:      "2",
			"interests":             "",
		},
		filename:    "photo.png",
		contentType: "image/png",
		data:        pngBytes(t),
	}
}

func multipartRequest(t *testing.T, path string, u upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range u.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if u.filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photo"; filename="`+u.filename+`"`)
		h.Set("Content-Type", u.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (a testApp) list(t *testing.T) []types.Student {
	t.Helper()
	rec := a.do(httptest.NewRequest(http.MethodGet, "/api/students", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var students []types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &students))
	return students
}

func (a testApp) page(t *testing.T) string {
	t.Helper()
	rec := a.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func countViews(html string) (cards, rows int) {
	return strings.Count(html, `class="card" data-id=`), strings.Count(html, `<tr data-id=`)
}

func TestSubmit_TwoValidRecords(t *testing.T) {
	app := setup(t)

	rec := app.do(multipartRequest(t, "/students", validUpload(t, "Ana")))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	students := app.list(t)
	require.Len(t, students, 1)
	assert.Equal(t, int64(1), students[0].ID)
	cards, rows := countViews(app.page(t))
	assert.Equal(t, 1, cards)
	assert.Equal(t, 1, rows)
	assert.Equal(t, registration.MsgAdded, app.notifier.Current().Text)

	rec = app.do(multipartRequest(t, "/students", validUpload(t, "Bo")))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	students = app.list(t)
	require.Len(t, students, 2)
	assert.Equal(t, int64(2), students[1].ID)
	assert.Equal(t, "Ana", students[0].FirstName)

	html := app.page(t)
	cards, rows = countViews(html)
	assert.Equal(t, 2, cards)
	assert.Equal(t, 2, rows)
	assert.Less(t, strings.Index(html, "Ana Li"), strings.Index(html, "Bo Li"))
}

func TestSubmit_BadEmail(t *testing.T) {
	app := setup(t)

	u := validUpload(t, "Ana")
	u.fields[validate.FieldEmail] = "bad"
	rec := app.do(multipartRequest(t, "/students", u))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Empty(t, app.list(t))

	html := app.page(t)
	cards, rows := countViews(html)
	assert.Zero(t, cards)
	assert.Zero(t, rows)
	assert.Contains(t, html, `<div class="error" id="emailError">Please enter a valid email.</div>`)
	assert.Contains(t, html, `<div class="error" id="first_nameError"></div>`)
	assert.Contains(t, html, `<div class="error" id="photoError"></div>`)
	assert.Contains(t, html, `value="Ana"`)
	assert.Equal(t, registration.MsgFixErrors, app.notifier.Current().Text)
}

func TestSubmit_Photo(t *testing.T) {
	app := setup(t)

	u := validUpload(t, "Ana")
	u.contentType = "image/bmp"
	app.do(multipartRequest(t, "/students", u))
	assert.Empty(t, app.list(t))
	assert.Contains(t, app.page(t), "Please select a valid image file (jpg, png, gif, webp).")

	u = validUpload(t, "Ana")
	u.filename = ""
	app.do(multipartRequest(t, "/students", u))
	assert.Empty(t, app.list(t))
	assert.Contains(t, app.page(t), "Please select a photo.")

	u = validUpload(t, "Ana")
	u.data = []byte("GIF? no, just text")
	app.do(multipartRequest(t, "/students", u))
	assert.Empty(t, app.list(t))
	assert.Contains(t, app.page(t), registration.MsgDecodeFailed)
}

func TestEdit_RoundTrip(t *testing.T) {
	app := setup(t)

	u := validUpload(t, "Ana")
	u.fields["interests"] = "robotics"
	app.do(multipartRequest(t, "/students", u))
	app.do(multipartRequest(t, "/students", validUpload(t, "Bo")))

	rec := app.do(httptest.NewRequest(http.MethodPost, "/students/1/edit", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	students := app.list(t)
	require.Len(t, students, 1)
	assert.Equal(t, int64(2), students[0].ID)

	html := app.page(t)
	cards, rows := countViews(html)
	assert.Equal(t, 1, cards)
	assert.Equal(t, 1, rows)
	assert.Contains(t, html, `id="first_name" name="first_name" value="Ana"`)
	assert.Contains(t, html, `>robotics</textarea>`)
	assert.Contains(t, html, `<option value="2" selected>`)
	assert.Equal(t, registration.MsgEditing, app.notifier.Current().Text)
}

func TestRemove(t *testing.T) {
	app := setup(t)
	app.do(multipartRequest(t, "/students", validUpload(t, "Ana")))

	rec := app.do(httptest.NewRequest(http.MethodPost, "/students/1/remove", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, app.list(t))
	assert.Equal(t, registration.MsgRemoved, app.notifier.Current().Text)

	app.notifier.Clear()
	rec = app.do(httptest.NewRequest(http.MethodPost, "/students/1/remove", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, app.notifier.Current().Text)

	rec = app.do(httptest.NewRequest(http.MethodPost, "/students/abc/remove", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_CreateGetDelete(t *testing.T) {
	app := setup(t)

	rec := app.do(multipartRequest(t, "/api/students", validUpload(t, "Ana")))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/students/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created, got)

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/students/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","removed":true}`, rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodDelete, "/api/students/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","removed":false}`, rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/students/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreateInvalid(t *testing.T) {
	app := setup(t)

	u := validUpload(t, "A")
	u.fields[validate.FieldYear] = ""
	rec := app.do(multipartRequest(t, "/api/students", u))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, map[string]string{
		validate.FieldFirstName: "First name must be at least 2 characters.",
		validate.FieldYear:      "Please select a year.",
	}, resp.Fields)
	assert.Equal(t, "First name must be at least 2 characters. Please select a year.", resp.Error)
}

func TestAPI_CreateLeavesPageDraft(t *testing.T) {
	app := setup(t)

	u := validUpload(t, "Ana")
	u.fields[validate.FieldEmail] = "bad"
	app.do(multipartRequest(t, "/students", u))
	before := app.page(t)

	invalid := validUpload(t, "Zed")
	invalid.fields[validate.FieldYear] = ""
	rec := app.do(multipartRequest(t, "/api/students", invalid))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, before, app.page(t))
	assert.Equal(t, registration.MsgFixErrors, app.notifier.Current().Text)

	rec = app.do(multipartRequest(t, "/api/students", validUpload(t, "Bo")))
	require.Equal(t, http.StatusCreated, rec.Code)

	html := app.page(t)
	assert.Contains(t, html, `id="first_name" name="first_name" value="Ana"`)
	assert.Contains(t, html, `<div class="error" id="emailError">Please enter a valid email.</div>`)
	assert.NotContains(t, html, "Zed")
	assert.Equal(t, registration.MsgFixErrors, app.notifier.Current().Text)
	assert.Len(t, app.list(t), 1)
}

func TestAPI_ValidateField(t *testing.T) {
	app := setup(t)

	post := func(field, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/validate/"+field, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return app.do(req)
	}

	rec := post(validate.FieldEmail, `{"value":"a@b"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Please enter a valid email."}`, rec.Body.String())

	rec = post(validate.FieldFirstName, `{"value":"Jo"}`)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = post("nickname", `{"value":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(validate.FieldEmail, ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_FeedbackAndHealth(t *testing.T) {
	app := setup(t)
	app.notifier.Show(feedback.Info, "hello")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/feedback", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"info","text":"hello"}`, rec.Body.String())

	rec = app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
}
