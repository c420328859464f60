// Package queue implements the recommendation work queue on Redis.
//
// Messages are enqueued onto a pending list. Receive pops one message into a
// processing hash with a visibility deadline; entries whose deadline has
// passed are pushed back onto pending on the next receive, so a message that
// was received but never acknowledged is redelivered. Ack removes the entry
// for good. The visibility deadline is the only guard against two consumers
// holding the same message.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dining-concierge/internal/common/logger"
)

// Message is one received queue entry. Body is the opaque payload handed to
// the consumer; ID addresses the entry for acknowledgment.
type Message struct {
	ID   string
	Body []byte
}

type envelope struct {
	ID   string          `json:"id"`
	Body json.RawMessage `json:"body"`
}

// RedisQueue is a single-visibility, at-least-once message queue.
type RedisQueue struct {
	client     *redis.Client
	name       string
	wait       time.Duration
	visibility time.Duration
	logger     logger.Logger
	now        func() time.Time
}

// Option configures a RedisQueue.
type Option func(*RedisQueue)

// WithWait sets the bounded wait of a single receive. A zero or negative
// wait makes receive non-blocking.
func WithWait(d time.Duration) Option {
	return func(q *RedisQueue) { q.wait = d }
}

// WithVisibility sets how long a received message stays invisible before it
// is eligible for redelivery.
func WithVisibility(d time.Duration) Option {
	return func(q *RedisQueue) { q.visibility = d }
}

func New(client *redis.Client, name string, log logger.Logger, opts ...Option) *RedisQueue {
	q := &RedisQueue{
		client:     client,
		name:       name,
		wait:       5 * time.Second,
		visibility: 30 * time.Second,
		logger:     log.WithFields(map[string]interface{}{"queue": name}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *RedisQueue) pendingKey() string    { return fmt.Sprintf("queue:%s:pending", q.name) }
func (q *RedisQueue) processingKey() string { return fmt.Sprintf("queue:%s:processing", q.name) }
func (q *RedisQueue) deadlinesKey() string  { return fmt.Sprintf("queue:%s:deadlines", q.name) }

// Enqueue places one payload on the queue. Fire-and-forget from the
// producer's point of view: no delivery confirmation is read back.
func (q *RedisQueue) Enqueue(ctx context.Context, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("enqueue: body is not valid JSON")
	}

	env := envelope{ID: uuid.New().String(), Body: body}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("enqueue: marshal envelope: %w", err)
	}

	if err := q.client.LPush(ctx, q.pendingKey(), raw).Err(); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	q.logger.Debug("message enqueued", map[string]interface{}{"messageId": env.ID})
	return nil
}

// Receive returns one message, or nil when nothing arrives within the
// bounded wait. The message stays invisible until its visibility deadline;
// it must be Acked to be removed for good.
func (q *RedisQueue) Receive(ctx context.Context) (*Message, error) {
	if err := q.reclaimExpired(ctx); err != nil {
		return nil, err
	}

	raw, err := q.pop(ctx)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("receive: %w", err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("receive: malformed envelope: %w", err)
	}

	deadline := q.now().Add(q.visibility)
	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.processingKey(), env.ID, raw)
	pipe.ZAdd(ctx, q.deadlinesKey(), redis.Z{
		Score:  float64(deadline.UnixMilli()),
		Member: env.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("receive: track in-flight message: %w", err)
	}

	return &Message{ID: env.ID, Body: env.Body}, nil
}

func (q *RedisQueue) pop(ctx context.Context) (string, error) {
	if q.wait <= 0 {
		return q.client.RPop(ctx, q.pendingKey()).Result()
	}

	res, err := q.client.BRPop(ctx, q.wait, q.pendingKey()).Result()
	if err != nil {
		return "", err
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return "", fmt.Errorf("unexpected BRPOP reply length %d", len(res))
	}
	return res[1], nil
}

// Ack deletes an in-flight message. Only called after the consumer has fully
// processed it; an unacked message is redelivered once its deadline passes.
func (q *RedisQueue) Ack(ctx context.Context, msg *Message) error {
	pipe := q.client.TxPipeline()
	pipe.HDel(ctx, q.processingKey(), msg.ID)
	pipe.ZRem(ctx, q.deadlinesKey(), msg.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ack %s: %w", msg.ID, err)
	}

	q.logger.Debug("message acknowledged", map[string]interface{}{"messageId": msg.ID})
	return nil
}

// reclaimExpired pushes in-flight messages whose visibility deadline has
// passed back onto the pending list.
func (q *RedisQueue) reclaimExpired(ctx context.Context) error {
	nowScore := strconv.FormatInt(q.now().UnixMilli(), 10)
	ids, err := q.client.ZRangeByScore(ctx, q.deadlinesKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: nowScore,
	}).Result()
	if err != nil {
		return fmt.Errorf("reclaim: %w", err)
	}

	for _, id := range ids {
		raw, err := q.client.HGet(ctx, q.processingKey(), id).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Acked between the range query and here.
				q.client.ZRem(ctx, q.deadlinesKey(), id)
				continue
			}
			return fmt.Errorf("reclaim %s: %w", id, err)
		}

		pipe := q.client.TxPipeline()
		pipe.LPush(ctx, q.pendingKey(), raw)
		pipe.HDel(ctx, q.processingKey(), id)
		pipe.ZRem(ctx, q.deadlinesKey(), id)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("reclaim %s: %w", id, err)
		}

		q.logger.Warn("message redelivered after visibility timeout", map[string]interface{}{
			"messageId": id,
		})
	}

	return nil
}

// Depth returns the number of pending messages. Used by operational checks.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.pendingKey()).Result()
}
