package prediction

import (
	"fmt"

	"github.com/storeradar/radar/internal/api/models"
)

// Phase is the workflow state.
type Phase string

// Workflow phases.
const (
	PhaseIdle       Phase = "IDLE"
	PhaseEditing    Phase = "EDITING"
	PhaseSubmitting Phase = "SUBMITTING"
	PhaseSuccess    Phase = "SUCCESS"
	PhaseFailed     Phase = "FAILED"
)

// ValidationError carries the form fields that failed their input constraints.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Workflow is the prediction popup state. Methods return the next state and
// never modify the receiver.
//
// Every Open, Dismiss and Submit advances the ticket. A completion is only
// applied when it carries the current ticket, so results of superseded
// submissions are dropped.
type Workflow struct {
	Phase  Phase
	Draft  Draft
	Result *Result
	Error  string

	ticket uint64
}

// Open starts a blank draft at the clicked coordinate, discarding any
// previous draft, result, error and in-flight submission.
func (w Workflow) Open(lat, lng float64) Workflow {
	return Workflow{
		Phase:  PhaseEditing,
		Draft:  NewDraft(lat, lng),
		ticket: w.ticket + 1,
	}
}

// SetField updates one draft input. Editing a finished submission returns
// the workflow to editing and clears the shown result or error.
func (w Workflow) SetField(f Field, value string) (Workflow, error) {
	if w.Phase == PhaseIdle || w.Phase == "" {
		return w, ErrNoDraft
	}
	if err := Editable(f); err != nil {
		return w, err
	}

	w.Draft = w.Draft.With(f, value)
	if w.Phase == PhaseSuccess || w.Phase == PhaseFailed {
		w.Phase = PhaseEditing
		w.Result = nil
		w.Error = ""
	}
	return w, nil
}

// SetFields applies several inputs at once. Either every value is applied
// or, on the first rejected field, none is.
func (w Workflow) SetFields(values map[Field]string) (Workflow, error) {
	if w.Phase == PhaseIdle || w.Phase == "" {
		return w, ErrNoDraft
	}
	for f := range values {
		if err := Editable(f); err != nil {
			return w, fmt.Errorf("%s: %w", f, err)
		}
	}

	next := w
	for _, f := range Fields {
		value, ok := values[f]
		if !ok {
			continue
		}
		var err error
		if next, err = next.SetField(f, value); err != nil {
			return w, err
		}
	}
	return next, nil
}

// Submit validates the draft and moves to submitting. It returns the
// request to send and the ticket the completion must carry.
func (w Workflow) Submit() (Workflow, Request, uint64, error) {
	switch w.Phase {
	case PhaseIdle, "":
		return w, Request{}, 0, ErrNoDraft
	case PhaseSubmitting:
		return w, Request{}, 0, ErrSubmitInFlight
	}

	if errs := w.Draft.Validate(); len(errs) > 0 {
		return w, Request{}, 0, &ValidationError{Errors: errs}
	}

	w.ticket++
	w.Phase = PhaseSubmitting
	w.Result = nil
	w.Error = ""
	return w, w.Draft.Serialize(), w.ticket, nil
}

// Complete applies a submission outcome. It reports false and leaves the
// workflow unchanged when ticket is stale. The draft is kept either way.
func (w Workflow) Complete(ticket uint64, result *Result, err error) (Workflow, bool) {
	if w.Phase != PhaseSubmitting || ticket != w.ticket {
		return w, false
	}

	if err != nil || result == nil {
		w.Phase = PhaseFailed
		w.Result = nil
		w.Error = FailureMessage(err)
		return w, true
	}

	r := *result
	w.Phase = PhaseSuccess
	w.Result = &r
	w.Error = ""
	return w, true
}

// Dismiss closes the popup, discarding the draft, result and error.
func (w Workflow) Dismiss() Workflow {
	return Workflow{Phase: PhaseIdle, ticket: w.ticket + 1}
}

// Loading reports whether a submission is in flight.
func (w Workflow) Loading() bool {
	return w.Phase == PhaseSubmitting
}

// SubmitLabel is the submit button caption.
func (w Workflow) SubmitLabel() string {
	if w.Loading() {
		return "Prediciendo..."
	}
	return "Predecir"
}

// Ticket returns the current ticket.
func (w Workflow) Ticket() uint64 {
	return w.ticket
}

// FailureMessage turns a submission error into the text shown to the user.
func FailureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return DefaultFailureMessage
	}
	return err.Error()
}
