package main

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Message is one chat line as it is replayed to History callers.
type Message struct {
	ID     string    `json:"id" msgpack:"id"`
	Sender string    `json:"sender" msgpack:"sender"`
	Text   string    `json:"text" msgpack:"text"`
	SentAt time.Time `json:"sentAt" msgpack:"sentAt"`
}

// HistoryStore keeps the most recent chat messages.
type HistoryStore interface {
	Append(ctx context.Context, msg Message) error
	Recent(ctx context.Context, n int) ([]Message, error)
}

type memoryHistory struct {
	mx       sync.Mutex
	messages []Message
	capacity int
}

// NewMemoryHistory returns an in-process store holding the last capacity
// messages.
func NewMemoryHistory(capacity int) *memoryHistory {
	return &memoryHistory{capacity: capacity}
}

func (m *memoryHistory) Append(_ context.Context, msg Message) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.messages = append(m.messages, msg)
	if len(m.messages) > m.capacity {
		m.messages = m.messages[len(m.messages)-m.capacity:]
	}
	return nil
}

func (m *memoryHistory) Recent(_ context.Context, n int) ([]Message, error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	if n > len(m.messages) {
		n = len(m.messages)
	}
	if n <= 0 {
		return nil, nil
	}
	recent := make([]Message, n)
	copy(recent, m.messages[len(m.messages)-n:])
	return recent, nil
}

type redisHistory struct {
	client   *redis.Client
	key      string
	capacity int64
}

// NewRedisHistory returns a store pushing messages onto a capped redis list,
// encoded with msgpack. Multiple server instances can share it.
func NewRedisHistory(client *redis.Client, key string, capacity int64) *redisHistory {
	return &redisHistory{client: client, key: key, capacity: capacity}
}

func (r *redisHistory) Append(ctx context.Context, msg Message) error {
	buf, err := msgpack.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, buf)
		pipe.LTrim(ctx, r.key, 0, r.capacity-1)
		return nil
	})
	return err
}

func (r *redisHistory) Recent(ctx context.Context, n int) ([]Message, error) {
	if n <= 0 {
		return nil, nil
	}
	values, err := r.client.LRange(ctx, r.key, 0, int64(n)-1).Result()
	if err != nil {
		return nil, err
	}
	// the list holds newest first, callers get oldest first
	messages := make([]Message, len(values))
	for i, value := range values {
		if err := msgpack.Unmarshal([]byte(value), &messages[len(values)-1-i]); err != nil {
			return nil, err
		}
	}
	return messages, nil
}
