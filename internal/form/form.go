// Package form implements the contact form submission state machine:
// idle -> loading -> (success | error), with any edit returning the form to idle.
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/wavythought/relay/internal/clients/relay"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	FeedbackIncomplete  = "Please complete every field before sending your note."
	FeedbackSending     = "Sending your message..."
	FeedbackSent        = "Thank you for the wave! We will respond shortly."
	FeedbackUnexpected  = "Something unexpected happened."
	FeedbackUnreachable = "Unable to send your message right now. Please try again soon."
)

type Field string

const (
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldMessage   Field = "message"
	FieldSubscribe Field = "subscribe"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid field value")
)

type Draft struct {
	Name      string
	Email     string
	Message   string
	Subscribe bool
}

// EmptyDraft is the draft of a freshly rendered form: blank fields, opt-in checked.
func EmptyDraft() Draft {
	return Draft{Subscribe: true}
}

func (d Draft) complete() bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.Email) != "" &&
		strings.TrimSpace(d.Message) != ""
}

type State struct {
	Status   Status
	Feedback string
	Draft    Draft
}

type Relay interface {
	Contact(ctx context.Context, req relay.ContactRequest) (string, error)
}

type Form struct {
	relay Relay

	mu       sync.Mutex
	status   Status
	feedback string
	draft    Draft
	sending  bool
	onChange func(State)
}

func New(r Relay) *Form {
	return &Form{
		relay:  r,
		status: StatusIdle,
		draft:  EmptyDraft(),
	}
}

// OnChange registers fn to be called after every state transition.
func (f *Form) OnChange(fn func(State)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onChange = fn
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stateLocked()
}

// UpdateField edits the draft. Editing a form that is not idle clears its status and feedback.
func (f *Form) UpdateField(field Field, value string) error {
	f.mu.Lock()

	switch field {
	case FieldName:
		f.draft.Name = value
	case FieldEmail:
		f.draft.Email = value
	case FieldMessage:
		f.draft.Message = value
	case FieldSubscribe:
		checked, err := strconv.ParseBool(value)
		if err != nil {
			f.mu.Unlock()
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}

		f.draft.Subscribe = checked
	default:
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	changed := f.status != StatusIdle
	if changed {
		f.status = StatusIdle
		f.feedback = ""
	}

	f.unlockAndNotify(changed)

	return nil
}

// Submit sends the current draft once and returns the resulting state. A submit while a
// previous request is in flight is ignored, even if the form was edited back to idle meanwhile.
func (f *Form) Submit(ctx context.Context) State {
	f.mu.Lock()

	if f.sending {
		defer f.mu.Unlock()
		return f.stateLocked()
	}

	draft := f.draft

	if !draft.complete() {
		f.status = StatusError
		f.feedback = FeedbackIncomplete
		return f.unlockAndNotify(true)
	}

	f.status = StatusLoading
	f.feedback = FeedbackSending
	f.sending = true
	f.unlockAndNotify(true)

	msg, err := f.relay.Contact(ctx, relay.ContactRequest{
		Name:      draft.Name,
		Email:     draft.Email,
		Message:   draft.Message,
		Subscribe: draft.Subscribe,
	})

	f.mu.Lock()
	f.sending = false

	var respErr *relay.ResponseError

	switch {
	case err == nil:
		f.status = StatusSuccess
		f.feedback = orDefault(msg, FeedbackSent)
		f.draft = EmptyDraft()
	case errors.As(err, &respErr):
		f.status = StatusError
		f.feedback = orDefault(respErr.Message, FeedbackUnexpected)
	default:
		f.status = StatusError
		f.feedback = FeedbackUnreachable
	}

	return f.unlockAndNotify(true)
}

func (f *Form) stateLocked() State {
	return State{
		Status:   f.status,
		Feedback: f.feedback,
		Draft:    f.draft,
	}
}

// unlockAndNotify releases the lock and, if changed, reports the new state outside of it.
func (f *Form) unlockAndNotify(changed bool) State {
	st := f.stateLocked()
	fn := f.onChange
	f.mu.Unlock()

	if changed && fn != nil {
		fn(st)
	}

	return st
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}

	return s
}
