package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wavythought/relay/internal/entity"
	"github.com/wavythought/relay/internal/mocks"
	"github.com/wavythought/relay/internal/service"
	"github.com/wavythought/relay/pkg/config"
)

func testConfig() config.Config {
	return config.Config{
		SMTP: config.SMTP{
			Host:     "smtp.example.com",
			Port:     587,
			Username: "studio@example.com",
			Password: "secret",
			Timeout:  time.Second,
			FromName: "WavyThought Website",
		},
		Contact: config.Contact{
			Recipient: "info@wavythought.com",
		},
	}
}

func validSubmission() entity.Submission {
	return entity.Submission{
		Name:    "Ana",
		Email:   "ana@example.com",
		Message: "Hi there",
	}
}

func TestService_HandleSubmission_Incomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sub  entity.Submission
	}{
		{"empty name", entity.Submission{Email: "ana@example.com", Message: "Hi"}},
		{"blank name", entity.Submission{Name: "   ", Email: "ana@example.com", Message: "Hi"}},
		{"empty email", entity.Submission{Name: "Ana", Message: "Hi"}},
		{"whitespace email", entity.Submission{Name: "Ana", Email: "\t\n", Message: "Hi"}},
		{"empty message", entity.Submission{Name: "Ana", Email: "ana@example.com"}},
		{"whitespace message", entity.Submission{Name: "Ana", Email: "ana@example.com", Message: "  \n "}},
		{"everything empty", entity.Submission{Subscribe: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			sender := mocks.NewMockSender(ctrl)
			sender.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

			s := service.New(testConfig(), sender)

			res := s.HandleSubmission(context.Background(), tt.sub)
			require.Equal(t, entity.RelayResult{Status: http.StatusBadRequest, Message: service.MsgIncomplete}, res)

			err := s.Submit(context.Background(), tt.sub)
			require.ErrorIs(t, err, entity.ErrIncompleteSubmission)
		})
	}
}

func TestService_HandleSubmission_NoTransport(t *testing.T) {
	t.Parallel()

	s := service.New(testConfig(), nil)
	require.False(t, s.TransportConfigured())

	for _, sub := range []entity.Submission{
		validSubmission(),
		{Name: "Bo", Email: "not-an-email", Message: "long message", Subscribe: true},
	} {
		res := s.HandleSubmission(context.Background(), sub)
		require.Equal(t, entity.RelayResult{Status: http.StatusServiceUnavailable, Message: service.MsgUnavailable}, res)
	}
}

func TestService_HandleSubmission_Delivered(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)

	var got entity.Notification

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n entity.Notification) error {
		got = n
		return nil
	})

	s := service.New(testConfig(), sender)
	require.True(t, s.TransportConfigured())

	sub := validSubmission()
	sub.Email = "  ana@example.com "

	res := s.HandleSubmission(context.Background(), sub)
	require.Equal(t, entity.RelayResult{Status: http.StatusOK, Message: service.MsgDelivered}, res)
	require.Equal(t, "ana@example.com", got.ReplyTo)
}

func TestService_HandleSubmission_DispatchFailed(t *testing.T) {
	t.Parallel()

	const rawErr = "535 5.7.8 authentication failed for studio@example.com"

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New(rawErr))

	s := service.New(testConfig(), sender)

	res := s.HandleSubmission(context.Background(), validSubmission())
	require.Equal(t, http.StatusInternalServerError, res.Status)
	require.Equal(t, service.MsgDeliveryFailed, res.Message)
	require.NotContains(t, res.Message, rawErr)
}

func TestService_Submit_WrapsDispatchError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("connection reset")

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(sendErr)

	err := service.New(testConfig(), sender).Submit(context.Background(), validSubmission())
	require.ErrorIs(t, err, entity.ErrDispatchFailed)
	require.ErrorIs(t, err, sendErr)
}

func TestService_Submit_Timeout(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SMTP.Timeout = 50 * time.Millisecond

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ entity.Notification) error {
		<-ctx.Done()
		return ctx.Err()
	})

	s := service.New(cfg, sender)

	res := s.HandleSubmission(context.Background(), validSubmission())
	require.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestService_Submit_NoDedup(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	s := service.New(testConfig(), sender)

	require.NoError(t, s.Submit(context.Background(), validSubmission()))
	require.NoError(t, s.Submit(context.Background(), validSubmission()))
}

func TestService_Submit_StrictEmail(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Contact.ValidateEmail = true

	ctrl := gomock.NewController(t)
	sender := mocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	s := service.New(cfg, sender)

	sub := validSubmission()
	sub.Email = "ana-at-example"

	res := s.HandleSubmission(context.Background(), sub)
	require.Equal(t, entity.RelayResult{Status: http.StatusBadRequest, Message: service.MsgInvalidEmail}, res)

	res = s.HandleSubmission(context.Background(), validSubmission())
	require.Equal(t, http.StatusOK, res.Status)
}

func TestBuildNotification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		subscribe bool
		optedIn   string
	}{
		{"opted in", true, "Yes"},
		{"opted out", false, "No"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub := validSubmission()
			sub.Subscribe = tt.subscribe

			n := service.BuildNotification(testConfig(), sub)

			want := entity.Notification{
				FromName: "WavyThought Website",
				From:     "studio@example.com",
				To:       "info@wavythought.com",
				ReplyTo:  "ana@example.com",
				Subject:  "New WavyThought inquiry from Ana",
				Body:     "Name: Ana\nEmail: ana@example.com\nOpted into updates: " + tt.optedIn + "\n\nMessage:\nHi there",
			}
			require.Equal(t, want, n)
		})
	}
}
