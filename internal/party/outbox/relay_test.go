package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	pending []Entry
}

func (f *fakeSource) ProcessPending(ctx context.Context, limit int, deliver func(context.Context, Entry) error) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for n < len(f.pending) && n < limit {
		if err := deliver(ctx, f.pending[n]); err != nil {
			f.pending = f.pending[n:]
			return n, err
		}
		n++
	}
	f.pending = f.pending[n:]
	return n, nil
}

func (f *fakeSource) remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

type fakeProducer struct {
	mu     sync.Mutex
	keys   []string
	failOn string
}

func (p *fakeProducer) Produce(_ context.Context, key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if string(key) == p.failOn {
		return errors.New("broker unavailable")
	}
	p.keys = append(p.keys, string(key))
	return nil
}

func (p *fakeProducer) produced() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func entries(ids ...int64) []Entry {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{ID: uuid.New(), AggregateID: id, EventType: "party.created", Payload: []byte(`{}`)})
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRelayOnce(t *testing.T) {
	t.Run("delivers one batch in order", func(t *testing.T) {
		source := &fakeSource{pending: entries(1, 2, 3)}
		producer := &fakeProducer{}
		relay := NewRelay(source, producer, quietLogger(), time.Second, 2)

		n, err := relay.RelayOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"1", "2"}, producer.produced())
		assert.Equal(t, 1, source.remaining())
	})

	t.Run("stops at the first producer failure", func(t *testing.T) {
		source := &fakeSource{pending: entries(1, 2, 3)}
		producer := &fakeProducer{failOn: "2"}
		relay := NewRelay(source, producer, quietLogger(), time.Second, 10)

		n, err := relay.RelayOnce(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 2, source.remaining())
	})
}

func TestRelayRunDrainsBacklog(t *testing.T) {
	source := &fakeSource{pending: entries(1, 2, 3, 4, 5)}
	producer := &fakeProducer{}
	relay := NewRelay(source, producer, quietLogger(), 10*time.Millisecond, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return source.remaining() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, producer.produced())
}

func TestEntryKey(t *testing.T) {
	assert.Equal(t, []byte("42"), Entry{AggregateID: 42}.Key())
}
