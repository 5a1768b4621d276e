package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: "reconcile_hours", Body: []byte("s1|c1")}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		require.Equal(t, "reconcile_hours", msg.Type)
		require.Equal(t, "s1|c1", string(msg.Body))
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestInMemoryPublishHonorsCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Publish(ctx, Message{Type: "a"}))

	cancel()
	err := q.Publish(ctx, Message{Type: "b"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSerializeRoundTrip(t *testing.T) {
	msg := Message{Type: "reconcile_hours", Body: []byte("s1|c1")}
	got, err := deserialize(serialize(msg))
	require.NoError(t, err)
	require.Equal(t, msg.Type, got.Type)
	require.Equal(t, string(msg.Body), string(got.Body))
}

func TestDeserializeWithoutType(t *testing.T) {
	got, err := deserialize("just-a-body")
	require.NoError(t, err)
	require.Empty(t, got.Type)
	require.Equal(t, "just-a-body", string(got.Body))
}
