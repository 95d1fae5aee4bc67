package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one event travelling from the API to the journal recorder.
type Message struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

// Queue is the abstraction over the memory and Redis backends.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Message, error)
}

// ErrFull is returned by InMemory.Publish when the buffer is full.
var ErrFull = errors.New("queue full")

// InMemory is a bounded channel-backed queue used when API and recorder share
// one process.
type InMemory struct {
	ch chan Message
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	if size <= 0 {
		size = 64
	}
	return &InMemory{ch: make(chan Message, size)}
}

// Publish enqueues a message without blocking the caller on a full buffer.
func (q *InMemory) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFull
	}
}

// Consume returns a channel that is closed when ctx is done.
func (q *InMemory) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-q.ch:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue is a Redis list used with LPUSH/BRPOP.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue on key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "rollcall:sync-events"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a message.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	raw, err := Encode(msg)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

// Consume streams messages using BRPOP until ctx is done.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if !errors.Is(err, redis.Nil) {
					log.Printf("queue: brpop %s: %v", q.key, err)
					time.Sleep(time.Second)
				}
				continue
			}
			if len(res) != 2 {
				continue
			}
			msg, err := Decode(res[1])
			if err != nil {
				log.Printf("queue: dropping malformed message: %v", err)
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Encode serializes a message for storage in Redis.
func Encode(msg Message) (string, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode is the inverse of Encode.
func Decode(s string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(s), &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, errors.New("message type missing")
	}
	return msg, nil
}
