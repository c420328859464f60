package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dining-concierge/internal/common/logger"
)

func newTestQueue(t *testing.T, opts ...Option) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	base := []Option{WithWait(0), WithVisibility(30 * time.Second)}
	q := New(client, "test-requests", logger.NewTestLogger(t), append(base, opts...)...)
	return q, mr
}

func TestReceive_EmptyQueue(t *testing.T) {
	q, _ := newTestQueue(t)

	msg, err := q.Receive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestEnqueueReceiveAck_Lifecycle(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	body := []byte(`{"cuisine":"Italian","email":"a@b.com"}`)
	require.NoError(t, q.Enqueue(ctx, body))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	msg, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.JSONEq(t, string(body), string(msg.Body))

	// In flight: not pending, not redelivered before the deadline.
	depth, err = q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), depth)

	again, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, q.Ack(ctx, msg))

	// Acked for good: nothing left to reclaim or receive.
	final, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, final)
}

func TestReceive_RedeliversUnackedAfterVisibilityTimeout(t *testing.T) {
	q, _ := newTestQueue(t, WithVisibility(0))
	ctx := context.Background()

	body := []byte(`{"cuisine":"Thai","email":"x@y.com"}`)
	require.NoError(t, q.Enqueue(ctx, body))

	first, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	// Never acked; deadline already passed, so the next poll gets it back.
	second, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.JSONEq(t, string(body), string(second.Body))
}

func TestAck_PreventsRedelivery(t *testing.T) {
	q, _ := newTestQueue(t, WithVisibility(0))
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, []byte(`{"cuisine":"Indian","email":"i@j.com"}`)))

	msg, err := q.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.NoError(t, q.Ack(ctx, msg))

	again, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestEnqueue_RejectsInvalidJSON(t *testing.T) {
	q, _ := newTestQueue(t)

	err := q.Enqueue(context.Background(), []byte("not json"))
	assert.Error(t, err)
}

func TestEnqueue_PreservesOrderAcrossMessages(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	for _, cuisine := range []string{"Chinese", "Mexican", "Japanese"} {
		payload, err := json.Marshal(map[string]string{"cuisine": cuisine, "email": "a@b.com"})
		require.NoError(t, err)
		require.NoError(t, q.Enqueue(ctx, payload))
	}

	var got []string
	for i := 0; i < 3; i++ {
		msg, err := q.Receive(ctx)
		require.NoError(t, err)
		require.NotNil(t, msg)

		var body map[string]string
		require.NoError(t, json.Unmarshal(msg.Body, &body))
		got = append(got, body["cuisine"])
		require.NoError(t, q.Ack(ctx, msg))
	}

	assert.Equal(t, []string{"Chinese", "Mexican", "Japanese"}, got)
}
