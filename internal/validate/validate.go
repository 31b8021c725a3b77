// Package validate holds the per-field checks run against the registration
// form. Every check is a pure function: the same input always produces the
// same Result, and nothing is displayed or stored here. Callers decide what
// to do with the message.
//
// The rules themselves are go-playground/validator tags. A few are custom
// (trimmin, emailshape, year, imagetype, photo_required) and are registered
// in init together with their English messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/aanand-mishra/student-registry/internal/types"
)

// Field names, as used in form inputs, JSON and error maps.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldProgramme = "programme"
	FieldYear      = "year"
	FieldPhoto     = "photo"
)

// Fields lists the validated form fields in display order.
var Fields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldProgramme, FieldYear, FieldPhoto}

var labels = map[string]string{
	FieldFirstName: "First name",
	FieldLastName:  "Last name",
	FieldEmail:     "Email",
	FieldProgramme: "Programme",
	FieldYear:      "Year",
	FieldPhoto:     "Photo",
}

// ImageTypes are the declared media types a photo may have.
var ImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}

// ErrUnknownField is returned by ByName for a field that has no validator.
var ErrUnknownField = errors.New("unknown field")

var (
	v          *validator.Validate
	translator ut.Translator

	// nonSpace is one character that is neither "@" nor whitespace as
	// browsers define it (RE2's \s alone is ASCII-only).
	nonSpace   = `[^\s\x{000b}\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}@]`
	emailRegex = regexp.MustCompile(`^` + nonSpace + `+@` + nonSpace + `+\.` + nonSpace + `+$`)
)

// custom validation tags & texts
const (
	trimMinTag  = "trimmin"
	trimMinText = "{0} must be at least {1} characters."

	emailShapeTag  = "emailshape"
	emailShapeText = "Please enter a valid email."

	yearTag  = "year"
	yearText = "Please select a year."

	imageTypeTag  = "imagetype"
	imageTypeText = "Please select a valid image file (jpg, png, gif, webp)."

	photoRequiredTag  = "photo_required"
	photoRequiredText = "Please select a photo."
)

func init() {
	v = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(trimMinTag, trimMinValidation)
	_ = v.RegisterValidation(emailShapeTag, emailShapeValidation)
	_ = v.RegisterValidation(yearTag, yearValidation)
	_ = v.RegisterValidation(imageTypeTag, imageTypeValidation)

	registerTranslation(trimMinTag, trimMinText)
	registerTranslation(emailShapeTag, emailShapeText)
	registerTranslation(yearTag, yearText)
	registerTranslation(imageTypeTag, imageTypeText)
	_ = translator.Add(photoRequiredTag, photoRequiredText, false)
}

// registerTranslation registers a message for tag. {0} is the field label
// and {1} the tag parameter.
func registerTranslation(tag, text string) {
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, label(fe.Field()), fe.Param())
			return s
		},
	)
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

// Result is the outcome of one field check.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

var ok = Result{Valid: true}

func fail(tag, field, param string) Result {
	msg, err := translator.T(tag, label(field), param)
	if err != nil {
		msg = fmt.Sprintf("%s is invalid.", label(field))
	}
	return Result{Message: msg}
}

// check runs a single validator tag against value.
func check(field, value, tag string) Result {
	if err := v.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fail(verrs[0].Tag(), field, verrs[0].Param())
		}
		return fail(tag, field, "")
	}
	return ok
}

// Name checks a first or last name: at least 2 characters once trimmed.
// field is FieldFirstName or FieldLastName and only affects the message.
func Name(field, value string) Result {
	return check(field, value, trimMinTag+"=2")
}

// Email checks the basic local@domain.tld shape.
func Email(value string) Result {
	return check(FieldEmail, value, emailShapeTag)
}

// Programme checks the programme: at least 2 characters once trimmed.
func Programme(value string) Result {
	return check(FieldProgramme, value, trimMinTag+"=2")
}

// Year checks that a year label was selected.
func Year(value string) Result {
	return check(FieldYear, value, yearTag)
}

// Photo checks that a file was chosen and that its declared media type is
// an accepted image type.
func Photo(sel *types.PhotoSelection) Result {
	if sel == nil {
		return fail(photoRequiredTag, FieldPhoto, "")
	}
	return check(FieldPhoto, sel.ContentType, imageTypeTag)
}

// ByName validates a single text value by field name. It backs real-time
// validation, where the photo is represented by its declared media type
// and an empty value means no file was chosen.
func ByName(field, value string) (Result, error) {
	switch field {
	case FieldFirstName, FieldLastName:
		return Name(field, value), nil
	case FieldEmail:
		return Email(value), nil
	case FieldProgramme:
		return Programme(value), nil
	case FieldYear:
		return Year(value), nil
	case FieldPhoto:
		if value == "" {
			return Photo(nil), nil
		}
		return Photo(&types.PhotoSelection{ContentType: value}), nil
	default:
		return Result{}, fmt.Errorf("validate %q: %w", field, ErrUnknownField)
	}
}

// Errors maps a field name to its message. Only failing fields are present.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// Form runs all six field checks. The form is acceptable only if every one
// of them passes. The five text fields are checked through the Student
// struct tags, the photo separately.
func Form(f types.Form) Errors {
	errs := Translate(v.Struct(f.Student("")))
	if r := Photo(f.Photo); !r.Valid {
		errs[FieldPhoto] = r.Message
	}
	return errs
}

// Record validates a built record against its struct tags.
func Record(s types.Student) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}
	return nil
}

// Translate turns a validator error into per-field messages. A nil error
// gives empty Errors; errors that did not come from the validator are
// returned under the "" key.
func Translate(err error) Errors {
	errs := make(Errors)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[""] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		errs[fe.Field()] = fe.Translate(translator)
	}
	return errs
}

// Custom Validators

// trimMinValidation requires at least param characters after trimming
// surrounding whitespace. Characters are counted in UTF-16 code units, the
// way browsers report a string's length, so "😀" counts as 2.
func trimMinValidation(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf16Len(strings.TrimFunc(fl.Field().String(), isBrowserSpace)) >= n
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

// isBrowserSpace matches the whitespace and line terminators that
// String.prototype.trim removes.
func isBrowserSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func emailShapeValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// yearValidation requires one of the enumerated year labels.
func yearValidation(fl validator.FieldLevel) bool {
	return slices.Contains(types.Years, fl.Field().String())
}

func imageTypeValidation(fl validator.FieldLevel) bool {
	return slices.Contains(ImageTypes, strings.ToLower(fl.Field().String()))
}
