// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package task

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pool is a fixed-size worker pool dequeuing task IDs from a Store's
// submission queue and handing each to a Coordinator, grounded on
// evalgo-org-eve/worker/pool.go's Pool/Worker shape but simplified to this
// system's single named queue (spec §5 "fixed-size worker pool... default
// parallelism 4, prefetch 2").
type Pool struct {
	Store       *Store
	Coordinator *Coordinator
	WorkerCount int
	Prefetch    int
	DequeueWait time.Duration

	log *logrus.Entry
}

// NewPool builds a Pool. workerCount and prefetch come from
// config.TaskConfig; prefetch governs how many Dequeue calls a single
// worker keeps outstanding concurrently before blocking on processing.
func NewPool(store *Store, coord *Coordinator, workerCount, prefetch int, log *logrus.Entry) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	return &Pool{
		Store:       store,
		Coordinator: coord,
		WorkerCount: workerCount,
		Prefetch:    prefetch,
		DequeueWait: 5 * time.Second,
		log:         log,
	}
}

// Run starts WorkerCount workers and blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) {
	done := make(chan struct{})
	for i := 0; i < p.WorkerCount; i++ {
		go p.worker(ctx, i, done)
	}
	for i := 0; i < p.WorkerCount; i++ {
		<-done
	}
}

func (p *Pool) worker(ctx context.Context, id int, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	sem := make(chan struct{}, p.Prefetch)
	var inFlight sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			inFlight.Wait()
			return
		default:
		}

		taskID, found, err := p.Store.Dequeue(ctx, p.DequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				inFlight.Wait()
				return
			}
			p.log.WithError(err).Error("dequeue failed")
			continue
		}
		if !found {
			continue
		}

		sem <- struct{}{}
		inFlight.Add(1)
		go func(taskID string) {
			defer func() { <-sem; inFlight.Done() }()
			if err := p.Coordinator.Run(ctx, taskID); err != nil {
				p.log.WithField("task_id", taskID).WithError(err).Error("task run failed")
			}
		}(taskID)
	}
}
