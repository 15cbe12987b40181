package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wavythought/relay/internal/entity"
	"github.com/wavythought/relay/pkg/config"
)

const (
	MsgIncomplete     = "Please complete all required fields."
	MsgInvalidEmail   = "Please enter a valid email address."
	MsgUnavailable    = "Email is temporarily unavailable. Please try again once we are ready."
	MsgDelivered      = "Your note is on its way. Talk soon!"
	MsgDeliveryFailed = "We could not deliver your message just yet. Please try again shortly."
)

const (
	subjectPrefix = "New WavyThought inquiry from "
	optedInYes    = "Yes"
	optedInNo     = "No"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=service.go -destination=../mocks/service.go -package=mocks -typed

type Sender interface {
	Send(ctx context.Context, n entity.Notification) error
}

type Service struct {
	cfg    config.Config
	sender Sender
}

// New returns a service. A nil sender means no transport is configured and every valid
// submission is rejected with entity.ErrTransportNotConfigured.
func New(cfg config.Config, sender Sender) *Service {
	return &Service{
		cfg:    cfg,
		sender: sender,
	}
}

func (s *Service) TransportConfigured() bool {
	return s.sender != nil
}

// Submit validates sub and relays it to the configured recipient.
func (s *Service) Submit(ctx context.Context, sub entity.Submission) error {
	sub = Normalize(sub)

	err := ValidateSubmission(sub)
	if err != nil {
		return err
	}

	if s.cfg.Contact.ValidateEmail {
		err = ValidateEmail(sub.Email)
		if err != nil {
			return err
		}
	}

	if s.sender == nil {
		return entity.ErrTransportNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SMTP.Timeout)
	defer cancel()

	err = s.sender.Send(ctx, BuildNotification(s.cfg, sub))
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrDispatchFailed, err)
	}

	return nil
}

// HandleSubmission runs Submit and maps the outcome to what the caller is shown.
// Dispatch errors are logged here and never reach the result.
func (s *Service) HandleSubmission(ctx context.Context, sub entity.Submission) entity.RelayResult {
	err := s.Submit(ctx, sub)

	switch {
	case err == nil:
		return entity.RelayResult{Status: http.StatusOK, Message: MsgDelivered}
	case errors.Is(err, entity.ErrIncompleteSubmission):
		slog.InfoContext(ctx, "submission rejected", "reason", err.Error())
		return entity.RelayResult{Status: http.StatusBadRequest, Message: MsgIncomplete}
	case errors.Is(err, entity.ErrInvalidEmail):
		slog.InfoContext(ctx, "submission rejected", "reason", err.Error())
		return entity.RelayResult{Status: http.StatusBadRequest, Message: MsgInvalidEmail}
	case errors.Is(err, entity.ErrTransportNotConfigured):
		slog.WarnContext(ctx, "submission rejected, smtp transport is not configured")
		return entity.RelayResult{Status: http.StatusServiceUnavailable, Message: MsgUnavailable}
	default:
		slog.ErrorContext(ctx, "failed to send email", "error", err)
		return entity.RelayResult{Status: http.StatusInternalServerError, Message: MsgDeliveryFailed}
	}
}

func BuildNotification(cfg config.Config, sub entity.Submission) entity.Notification {
	optedIn := optedInNo
	if sub.Subscribe {
		optedIn = optedInYes
	}

	body := strings.Join([]string{
		"Name: " + sub.Name,
		"Email: " + sub.Email,
		"Opted into updates: " + optedIn,
		"",
		"Message:",
		sub.Message,
	}, "\n")

	return entity.Notification{
		FromName: cfg.SMTP.FromName,
		From:     cfg.SMTP.Username,
		To:       cfg.Contact.Recipient,
		ReplyTo:  sub.Email,
		Subject:  subjectPrefix + sub.Name,
		Body:     body,
	}
}
