// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package task implements the Task Coordinator (C9): the Redis-backed
// durable queue, result store, and pub/sub bridge behind the state machine
// of spec §4.9, grounded on evalgo-org-eve's redis queue/repository and
// worker pool packages.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meshintel/litingest/internal/config"
	"github.com/meshintel/litingest/internal/dedup"
	"github.com/meshintel/litingest/internal/domain"
)

// queueName names the single Redis list every submission lands on; spec §4.9
// names no separate priority/sequential lanes, so the pool below runs a
// fixed worker count against this one queue (the "prefetch" knob maps to
// how many workers BLPOP concurrently).
const queueName = "submissions"

// Store is the Redis-backed task result/queue/pub-sub repository.
type Store struct {
	client    *redis.Client
	keyPrefix string
	resultTTL time.Duration
}

// NewStore builds a Store from cfg's Redis URL.
func NewStore(ctx context.Context, redisCfg config.RedisConfig, resultTTL time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	prefix := redisCfg.KeyPrefix
	if prefix == "" {
		prefix = "litingest:"
	}
	return &Store{client: client, keyPrefix: prefix, resultTTL: resultTTL}, nil
}

// NewStoreFromClient wraps an already-constructed client (used by tests
// with alicebob/miniredis).
func NewStoreFromClient(client *redis.Client, keyPrefix string, resultTTL time.Duration) *Store {
	return &Store{client: client, keyPrefix: keyPrefix, resultTTL: resultTTL}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) taskKey(taskID string) string { return s.keyPrefix + "task:" + taskID }
func (s *Store) queueKey() string             { return s.keyPrefix + "queue:" + queueName }
func (s *Store) processingKey() string        { return s.keyPrefix + "processing" }
func (s *Store) sourceIndexKey(normalizedSource string) string {
	return s.keyPrefix + "bysource:" + normalizedSource
}
func (s *Store) lockKey(lidCandidate string) string { return s.keyPrefix + "lock:" + lidCandidate }
func (s *Store) submissionKey(taskID string) string { return s.keyPrefix + "submission:" + taskID }

// SaveSubmission persists the original submission payload for taskID, kept
// separate from the status-snapshot Task record since it carries fields
// (DOI, ArxivID, PDFURL, ...) the public status snapshot never exposes.
func (s *Store) SaveSubmission(ctx context.Context, taskID string, sub Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.submissionKey(taskID), data, s.resultTTL).Err()
}

// GetSubmission loads the submission payload saved for taskID.
func (s *Store) GetSubmission(ctx context.Context, taskID string) (Submission, error) {
	data, err := s.client.Get(ctx, s.submissionKey(taskID)).Bytes()
	if err != nil {
		return Submission{}, err
	}
	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// SaveTask persists the full Task record with the configured result TTL
// (spec §4.9 plan note, result store bounded retention).
func (s *Store) SaveTask(ctx context.Context, t *domain.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.taskKey(t.TaskID), data, s.resultTTL).Err(); err != nil {
		return err
	}
	indexKey := s.sourceIndexKey(dedup.NormalizeURL(t.SubmittedSource))
	if !t.ExecutionStatus.Terminal() {
		// Index by normalized source while in flight, so dedup phase 3 can
		// find it (spec §4.7 phase 3); terminal tasks are removed from the
		// index since they're no longer "in-flight".
		return s.client.Set(ctx, indexKey, t.TaskID, s.resultTTL).Err()
	}
	s.client.Del(ctx, indexKey)
	return nil
}

// GetTask loads a Task by ID.
func (s *Store) GetTask(ctx context.Context, taskID string) (*domain.Task, bool, error) {
	data, err := s.client.Get(ctx, s.taskKey(taskID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var t domain.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

// FindInFlight implements dedup.TaskLookup (spec §4.7 phase 3).
func (s *Store) FindInFlight(ctx context.Context, normalizedSource string, staleness time.Duration) (string, bool, error) {
	taskID, err := s.client.Get(ctx, s.sourceIndexKey(normalizedSource)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	t, found, err := s.GetTask(ctx, taskID)
	if err != nil || !found {
		return "", false, err
	}
	if t.ExecutionStatus.Terminal() {
		return "", false, nil
	}
	if time.Since(t.CreatedAt) > staleness {
		return "", false, nil
	}
	return taskID, true, nil
}

// Enqueue pushes taskID onto the submission queue (spec §4.9 "coordinator
// runs the plan in a worker pool").
func (s *Store) Enqueue(ctx context.Context, taskID string) error {
	return s.client.RPush(ctx, s.queueKey(), taskID).Err()
}

// Dequeue blocks up to timeout waiting for the next task ID.
func (s *Store) Dequeue(ctx context.Context, timeout time.Duration) (string, bool, error) {
	result, err := s.client.BLPop(ctx, timeout, s.queueKey()).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if len(result) < 2 {
		return "", false, nil
	}
	return result[1], true, nil
}

// MarkProcessing records taskID's deadline in the processing set, used to
// detect hard-timeout overruns (spec §4.9's task hard timeout).
func (s *Store) MarkProcessing(ctx context.Context, taskID string, deadline time.Time) error {
	return s.client.ZAdd(ctx, s.processingKey(), redis.Z{Score: float64(deadline.Unix()), Member: taskID}).Err()
}

// CompleteProcessing removes taskID from the processing set.
func (s *Store) CompleteProcessing(ctx context.Context, taskID string) error {
	return s.client.ZRem(ctx, s.processingKey(), taskID).Err()
}

// AcquireLock implements the "distributed lock keyed on (lid-candidate)"
// dedup phase-4 create path names (spec §4.7 "Atomicity").
func (s *Store) AcquireLock(ctx context.Context, lidCandidate string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.lockKey(lidCandidate), "1", ttl).Result()
}

// ReleaseLock releases a lock acquired by AcquireLock.
func (s *Store) ReleaseLock(ctx context.Context, lidCandidate string) error {
	return s.client.Del(ctx, s.lockKey(lidCandidate)).Err()
}

// Publish broadcasts an event on the task's pub/sub channel, consumed by
// the SSE bridge in internal/api (spec §4.9 "pushes updates to a pub/sub
// for SSE").
func (s *Store) Publish(ctx context.Context, ev domain.TaskEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.eventChannel(ev.TaskID), data).Err()
}

func (s *Store) eventChannel(taskID string) string { return s.keyPrefix + "events:" + taskID }

// Subscribe returns a channel of TaskEvents for taskID, along with a
// cleanup func the caller must invoke when done.
func (s *Store) Subscribe(ctx context.Context, taskID string) (<-chan domain.TaskEvent, func(), error) {
	pubsub := s.client.Subscribe(ctx, s.eventChannel(taskID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan domain.TaskEvent, 8)
	raw := pubsub.Channel()
	go func() {
		defer close(out)
		for msg := range raw {
			var ev domain.TaskEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			out <- ev
		}
	}()
	return out, func() { pubsub.Close() }, nil
}
