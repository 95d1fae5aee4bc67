package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Queue = (*InMemory)(nil)
	_ Queue = (*RedisQueue)(nil)
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(2)
	require.NoError(t, q.Publish(ctx, Message{Type: "sync.sent", Body: json.RawMessage(`{"id":"1"}`)}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "sync.sent", msg.Type)
		assert.JSONEq(t, `{"id":"1"}`, string(msg.Body))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	_, open := <-msgs
	assert.False(t, open, "channel closed after cancel")
}

func TestInMemoryFull(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, Message{Type: "a"}))
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: "b"}), ErrFull)
}

func TestEncodeDecode(t *testing.T) {
	raw, err := Encode(Message{Type: "sync.failed", Body: json.RawMessage(`{"error":"x|y"}`)})
	require.NoError(t, err)

	msg, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "sync.failed", msg.Type)
	assert.JSONEq(t, `{"error":"x|y"}`, string(msg.Body))

	_, err = Decode("not json")
	assert.Error(t, err)
	_, err = Decode(`{"body":{}}`)
	assert.Error(t, err)
}
