package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wavythought/relay/internal/api/events"
	"github.com/wavythought/relay/internal/entity"
	"github.com/wavythought/relay/internal/mocks"
	"github.com/wavythought/relay/internal/service"
	"github.com/wavythought/relay/pkg/config"
)

func newService(sender service.Sender) *service.Service {
	return service.New(config.Config{
		SMTP:    config.SMTP{Username: "studio@example.com", Timeout: time.Second, FromName: "WavyThought Website"},
		Contact: config.Contact{Recipient: "info@wavythought.com"},
	}, sender)
}

func TestEventHandler_ContactSubmitted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	var got entity.Notification

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n entity.Notification) error {
		got = n
		return nil
	})

	h := events.NewEventHandler(newService(sender))

	err := h.ContactSubmitted(context.Background(), kafka.Message{
		Topic: "contact-submissions",
		Value: []byte(`{"name":"Ana","email":"ana@example.com","message":"Hi there","subscribe":true}`),
	})
	require.NoError(t, err)

	require.Equal(t, "ana@example.com", got.ReplyTo)
	require.Contains(t, got.Body, "Opted into updates: Yes")
}

func TestEventHandler_ContactSubmitted_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"malformed", `{"name":`, nil},
		{"incomplete", `{"name":"Ana","email":"","message":"Hi"}`, entity.ErrIncompleteSubmission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			sender := mocks.NewMockSender(ctrl)
			sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

			h := events.NewEventHandler(newService(sender))

			err := h.ContactSubmitted(context.Background(), kafka.Message{Value: []byte(tt.value)})
			require.Error(t, err)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEventHandler_ContactSubmitted_NoTransport(t *testing.T) {
	t.Parallel()

	h := events.NewEventHandler(newService(nil))

	err := h.ContactSubmitted(context.Background(), kafka.Message{
		Value: []byte(`{"name":"Ana","email":"ana@example.com","message":"Hi there"}`),
	})
	require.ErrorIs(t, err, entity.ErrTransportNotConfigured)
}
