// Package server assembles the route table.
package server

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/http/handlers/student"
	"github.com/aanand-mishra/student-registry/internal/http/middleware"
	"github.com/aanand-mishra/student-registry/internal/registration"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/view"
)

// Deps are the collaborators the handlers close over.
type Deps struct {
	Roster        storage.Roster
	Service       *registration.Service
	Notifier      *feedback.Notifier
	Renderer      *view.Renderer
	MaxPhotoBytes int64
	Log           *slog.Logger
}

// NewRouter maps METHOD+PATTERN to handlers.
//
// Route table:
//
//	GET    /                       registration page
//	POST   /students               submit the form (multipart)
//	POST   /students/{id}/edit     load a record into the form
//	POST   /students/{id}/remove   remove a record
//	GET    /api/students           list records
//	POST   /api/students           create a record (multipart, JSON reply)
//	GET    /api/students/{id}      get one record
//	DELETE /api/students/{id}      remove a record
//	POST   /api/validate/{field}   check one field value
//	GET    /api/feedback           current status message
//	GET    /healthz                liveness
func NewRouter(d Deps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", student.Page(d.Service, d.Notifier, d.Renderer))
	router.HandleFunc("POST /students", student.Submit(d.Service, d.Notifier, d.MaxPhotoBytes))
	router.HandleFunc("POST /students/{id}/edit", student.Edit(d.Service))
	router.HandleFunc("POST /students/{id}/remove", student.Remove(d.Service))

	router.HandleFunc("GET /api/students", student.GetList(d.Roster))
	router.HandleFunc("POST /api/students", student.Create(d.Service, d.MaxPhotoBytes))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(d.Roster))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(d.Service))
	router.HandleFunc("POST /api/validate/{field}", student.ValidateField())
	router.HandleFunc("GET /api/feedback", student.Feedback(d.Notifier))
	router.HandleFunc("GET /healthz", student.Health())

	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return middleware.Logging(log, router)
}
