package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/wavythought/relay/internal/entity"
)

type Service interface {
	Submit(ctx context.Context, sub entity.Submission) error
}

type EventHandler struct {
	s Service
}

func NewEventHandler(s Service) *EventHandler {
	return &EventHandler{s: s}
}

type ContactSubmittedEvent struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Subscribe *bool  `json:"subscribe,omitempty"`
}

// ContactSubmitted relays a submission collected by another backend. It is attempted once.
func (h *EventHandler) ContactSubmitted(ctx context.Context, msg kafka.Message) error {
	var event ContactSubmittedEvent

	err := json.Unmarshal(msg.Value, &event)
	if err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	err = h.s.Submit(ctx, entity.Submission{
		Name:      event.Name,
		Email:     event.Email,
		Message:   event.Message,
		Subscribe: event.Subscribe != nil && *event.Subscribe,
	})
	if err != nil {
		return fmt.Errorf("relay submission: %w", err)
	}

	return nil
}
