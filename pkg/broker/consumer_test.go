package broker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestConsumer_Dispatch(t *testing.T) {
	t.Parallel()

	c := &Consumer{
		l:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
		wg:            &sync.WaitGroup{},
		topicHandlers: make(map[string]func(context.Context, kafka.Message) error),
	}

	var handled []string

	c.Handle("contact-submissions", func(_ context.Context, m kafka.Message) error {
		handled = append(handled, string(m.Value))
		return nil
	}).Handle("failing", func(context.Context, kafka.Message) error {
		handled = append(handled, "failing")
		return errors.New("boom")
	})

	c.dispatch(context.Background(), kafka.Message{Topic: "contact-submissions", Value: []byte("a")})
	c.dispatch(context.Background(), kafka.Message{Topic: "unknown", Value: []byte("b")})
	c.dispatch(context.Background(), kafka.Message{Topic: "failing", Value: []byte("c")})

	require.Equal(t, []string{"a", "failing"}, handled)
}

type failingReader struct {
	reads atomic.Int32
}

func (r *failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	r.reads.Add(1)
	return kafka.Message{}, errors.New("dial tcp: connection refused")
}

func (r *failingReader) Close() error {
	return nil
}

func TestConsumer_Consume_BacksOffOnReadError(t *testing.T) {
	t.Parallel()

	r := &failingReader{}

	c := &Consumer{
		l:             slog.New(slog.NewJSONHandler(io.Discard, nil)),
		r:             r,
		wg:            &sync.WaitGroup{},
		backoff:       50 * time.Millisecond,
		topicHandlers: make(map[string]func(context.Context, kafka.Message) error),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 220*time.Millisecond)
	defer cancel()

	c.Consume(ctx)
	<-ctx.Done()
	c.Close()

	require.GreaterOrEqual(t, r.reads.Load(), int32(2))
	require.LessOrEqual(t, r.reads.Load(), int32(6))
}
