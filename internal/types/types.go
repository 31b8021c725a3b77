// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// validate, storage, photo, view and the handlers can all import types
// without depending on each other.
package types

import (
	"io"
	"strings"
)

// Years is the fixed set of year labels offered by the year <select>.
var Years = []string{"1", "2", "3", "4", "5"}

// Student is one accepted registration.
//
// Struct tags:
//
//  1. json:"..."     controls the field name in the JSON API.
//  2. validate:"..." rules checked by go-playground/validator when a
//     record is built from a form. The custom tags (trimmin, emailshape,
//     year) are registered in internal/validate.
type Student struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name" validate:"trimmin=2"`
	LastName  string `json:"last_name"  validate:"trimmin=2"`
	Email     string `json:"email"      validate:"emailshape"`
	Programme string `json:"programme"  validate:"trimmin=2"`
	Year      string `json:"year"       validate:"year"`
	Interests string `json:"interests,omitempty"`

	// Photo is a data URL ("data:image/png;base64,...") ready to be used
	// as an <img src>.
	Photo string `json:"photo"`
}

// FullName joins first and last name the way cards and rows display it.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// PhotoSelection describes the file picked in the photo input.
// ContentType is the media type the browser declared for the part, which is
// what the photo validator checks; the decoder sniffs the bytes separately.
type PhotoSelection struct {
	Filename    string
	ContentType string
	Size        int64

	// Open returns a fresh reader over the file contents.
	Open func() (io.ReadCloser, error)
}

// Form is the raw state of the registration form.
type Form struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Programme string `json:"programme"`
	Year      string `json:"year"`
	Interests string `json:"interests"`

	Photo *PhotoSelection `json:"-"`
}

// FormFromStudent returns the form pre-fill for editing s. The photo is not
// re-attached; the user has to pick it again.
func FormFromStudent(s Student) Form {
	return Form{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Programme: s.Programme,
		Year:      s.Year,
		Interests: s.Interests,
	}
}

// Student builds a record from the form values and an encoded photo.
// The ID is left zero; the roster assigns it.
func (f Form) Student(photo string) Student {
	return Student{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Programme: f.Programme,
		Year:      f.Year,
		Interests: f.Interests,
		Photo:     photo,
	}
}
