// Package registration runs the submit, edit and remove workflows over a
// Roster.
//
// Workflow operations are serialised: one submission, edit or remove runs
// at a time, so the roster is only ever mutated by one of them. The only
// suspension point is the photo decode inside Submit.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/photo"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/validate"
	"github.com/aanand-mishra/student-registry/internal/view"
)

// Decoder converts a photo selection into a data URL, delivering exactly
// one result on the returned channel.
type Decoder interface {
	DecodeAsync(ctx context.Context, sel *types.PhotoSelection) <-chan photo.Result
}

// Notifier shows transient status messages.
type Notifier interface {
	Show(kind feedback.Kind, text string)
}

// Outcome describes a finished submission.
type Outcome struct {
	Status  Status
	Student types.Student
	Errors  validate.Errors
}

// Service owns the form draft and drives the workflows.
type Service struct {
	roster   storage.Roster
	decoder  Decoder
	notifier Notifier
	log      *slog.Logger

	// flow serialises workflow operations.
	flow sync.Mutex

	mu     sync.RWMutex
	state  State
	draft  types.Form
	errors validate.Errors
}

// NewService wires the workflows to their collaborators.
func NewService(roster storage.Roster, decoder Decoder, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		roster:   roster,
		decoder:  decoder,
		notifier: notifier,
		log:      log,
	}
}

// State reports the current workflow state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) setState(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()

	s.log.Debug("workflow transition",
		slog.String("from", from.String()),
		slog.String("to", to.String()))
}

// Draft returns what the form currently shows and any inline errors.
func (s *Service) Draft() (types.Form, validate.Errors) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errs := make(validate.Errors, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}
	return s.draft, errs
}

func (s *Service) setDraft(form types.Form, errs validate.Errors) {
	form.Photo = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = form
	s.errors = errs
}

// Views builds the card list and summary table from the roster.
func (s *Service) Views() (view.Views, error) {
	students, err := s.roster.All()
	if err != nil {
		return view.Views{}, fmt.Errorf("views: %w", err)
	}
	return view.Build(students), nil
}

// Submit validates the form, decodes the photo and adds the record.
//
// A rejected form or a failed decode is not an error for the caller: the
// Outcome says what happened and the draft keeps the entered values. The
// returned error is non-nil only for decode failures (wrapping
// photo.ErrDecode) and roster failures.
func (s *Service) Submit(ctx context.Context, form types.Form) (Outcome, error) {
	return s.submit(ctx, form, true)
}

// Create runs the same workflow as Submit without touching the page: the
// draft and the feedback message are left as they were.
func (s *Service) Create(ctx context.Context, form types.Form) (Outcome, error) {
	return s.submit(ctx, form, false)
}

func (s *Service) submit(ctx context.Context, form types.Form, page bool) (Outcome, error) {
	s.flow.Lock()
	defer s.flow.Unlock()
	defer s.setState(Idle)

	// report updates the form draft and the status line, page submissions only.
	report := func(draft types.Form, errs validate.Errors, kind feedback.Kind, msg string) {
		if !page {
			return
		}
		s.setDraft(draft, errs)
		s.notifier.Show(kind, msg)
	}

	s.setState(Validating)
	if errs := validate.Form(form); !errs.Valid() {
		s.setState(Rejected)
		report(form, errs, feedback.Error, MsgFixErrors)
		s.log.Info("submission rejected", slog.Int("fields", len(errs)))
		return Outcome{Status: StatusRejected, Errors: errs}, nil
	}

	s.setState(DecodingImage)
	var res photo.Result
	select {
	case res = <-s.decoder.DecodeAsync(ctx, form.Photo):
	case <-ctx.Done():
		res = photo.Result{Err: fmt.Errorf("await decode: %w: %w", photo.ErrDecode, ctx.Err())}
	}

	if res.Err != nil {
		s.setState(DecodeFailed)
		errs := validate.Errors{validate.FieldPhoto: MsgDecodeFailed}
		report(form, errs, feedback.Error, MsgDecodeFailed)
		s.log.Warn("photo decode failed", slog.String("error", res.Err.Error()))
		return Outcome{Status: StatusDecodeFailed, Errors: errs}, fmt.Errorf("submit: %w", res.Err)
	}

	record := form.Student(res.DataURL)
	if err := validate.Record(record); err != nil {
		s.setState(Rejected)
		errs := validate.Translate(err)
		report(form, errs, feedback.Error, MsgFixErrors)
		s.log.Info("record rejected", slog.String("error", err.Error()))
		return Outcome{Status: StatusRejected, Errors: errs}, nil
	}

	added, err := s.roster.Add(record)
	if err != nil {
		report(form, nil, feedback.Error, MsgSaveFailed)
		s.log.Error("error adding student", slog.String("error", err.Error()))
		return Outcome{}, fmt.Errorf("submit: %w", err)
	}

	report(types.Form{}, nil, feedback.Success, MsgAdded)
	s.log.Info("student added", slog.Int64("id", added.ID))

	return Outcome{Status: StatusAdded, Student: added}, nil
}

// Edit moves a record back into the form: it is removed from the roster
// and its values (all but the photo) become the draft. It reports whether
// the record existed; a missing id leaves everything unchanged.
func (s *Service) Edit(id int64) (bool, error) {
	s.flow.Lock()
	defer s.flow.Unlock()

	student, err := s.roster.FindByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("edit %d: %w", id, err)
	}

	if err := s.roster.RemoveByID(id); err != nil {
		return false, fmt.Errorf("edit %d: %w", id, err)
	}

	s.setDraft(types.FormFromStudent(student), nil)
	s.notifier.Show(feedback.Info, MsgEditing)
	s.log.Info("student loaded for editing", slog.Int64("id", id))

	return true, nil
}

// Remove deletes a record. It reports whether the record existed; a
// missing id is a silent no-op.
func (s *Service) Remove(id int64) (bool, error) {
	s.flow.Lock()
	defer s.flow.Unlock()

	if _, err := s.roster.FindByID(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("remove %d: %w", id, err)
	}

	if err := s.roster.RemoveByID(id); err != nil {
		return false, fmt.Errorf("remove %d: %w", id, err)
	}

	s.notifier.Show(feedback.Success, MsgRemoved)
	s.log.Info("student removed", slog.Int64("id", id))

	return true, nil
}

// Reset empties the roster and the draft.
func (s *Service) Reset() error {
	s.flow.Lock()
	defer s.flow.Unlock()

	if err := s.roster.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.setDraft(types.Form{}, nil)
	return nil
}
