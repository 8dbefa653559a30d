package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type captureSender struct {
	mu    sync.Mutex
	keys  []string
	fail  map[string]bool
	block chan struct{}
}

func (s *captureSender) Send(ctx context.Context, receipt *model.Receipt) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.fail[receipt.Key] {
		return errors.New("broker unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, receipt.Key)
	return nil
}

func (s *captureSender) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

func TestDispatcher_DeliversQueuedReceipts(t *testing.T) {
	sender := &captureSender{fail: map[string]bool{"bad": true}}
	d := NewDispatcher(sender, 2, 16, zap.NewNop())
	d.Start(context.Background())

	for _, key := range []string{"a", "bad", "b", "c"} {
		assert.True(t, d.Notify(&model.Receipt{Key: key}))
	}
	d.Stop()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, sender.delivered())
	assert.False(t, d.Notify(&model.Receipt{Key: "late"}))
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sender := &captureSender{block: make(chan struct{})}
	d := NewDispatcher(sender, 1, 1, zap.New(core))

	// Not started: the single slot fills and the rest is dropped without blocking.
	assert.True(t, d.Notify(&model.Receipt{Key: "first"}))
	assert.False(t, d.Notify(&model.Receipt{Key: "second"}))
	require.Equal(t, 1, logs.FilterMessage("receipt queue full, receipt dropped").Len())

	d.Start(context.Background())
	close(sender.block)
	d.Stop()
	assert.Equal(t, []string{"first"}, sender.delivered())
}

func TestDispatcher_StopsOnContext(t *testing.T) {
	d := NewDispatcher(&captureSender{}, 3, 4, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after cancel")
	}
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), &model.Receipt{Key: "k", Recipient: "ada@example.com"}))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ada@example.com", entries[0].ContextMap()["recipient"])
}
