// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package task

import (
	"fmt"
	"sync"

	"github.com/meshintel/litingest/internal/domain"
)

// validTransitions mirrors spec §4.9's task state diagram:
//
//	pending ──► processing ──► completed
//	                 │
//	                 ├──► failed
//	                 └──► cancelled
var validTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskPending:    {domain.TaskProcessing, domain.TaskCancelled, domain.TaskFailed},
	domain.TaskProcessing: {domain.TaskCompleted, domain.TaskFailed, domain.TaskCancelled},
}

func canTransition(from, to domain.TaskStatus) bool {
	for _, v := range validTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// componentTransitions mirrors the per-component substate machine (spec
// §4.9 "pending → processing → (success|failed|waiting)").
var componentTransitions = map[domain.ComponentStatus][]domain.ComponentStatus{
	domain.ComponentPending:    {domain.ComponentProcessing, domain.ComponentWaiting},
	domain.ComponentProcessing: {domain.ComponentSuccess, domain.ComponentFailed, domain.ComponentWaiting},
	domain.ComponentWaiting:    {domain.ComponentProcessing, domain.ComponentFailed},
}

func canTransitionComponent(from, to domain.ComponentStatus) bool {
	for _, v := range componentTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// Registry tracks the in-memory state-change bookkeeping for in-flight
// tasks (cancel flags, mostly), the one process-wide mutable structure
// the design intentionally allows (spec §9 "Global mutable state": the
// per-task cancel flag ... owned by the coordinator").
type Registry struct {
	mu      sync.Mutex
	cancels map[string]chan struct{}
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{cancels: make(map[string]chan struct{})}
}

// Track registers taskID and returns its cancellation channel, closed when
// Cancel(taskID) is called.
func (r *Registry) Track(taskID string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.cancels[taskID] = ch
	return ch
}

// Cancel closes taskID's cancellation channel, if tracked.
func (r *Registry) Cancel(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.cancels[taskID]
	if !ok {
		return false
	}
	close(ch)
	delete(r.cancels, taskID)
	return true
}

// Untrack removes taskID's bookkeeping once the task reaches a terminal
// state without being cancelled.
func (r *Registry) Untrack(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancels, taskID)
}

// Transition applies a validated status transition to t, returning an error
// if the transition is not allowed from t's current status.
func Transition(t *domain.Task, to domain.TaskStatus) error {
	if !canTransition(t.ExecutionStatus, to) {
		return fmt.Errorf("invalid task transition %s -> %s", t.ExecutionStatus, to)
	}
	t.ExecutionStatus = to
	return nil
}

// TransitionComponent applies a validated component-substate transition.
func TransitionComponent(t *domain.Task, name domain.ComponentName, to domain.ComponentStatus) error {
	cs := t.Components[name]
	if !canTransitionComponent(cs.Status, to) {
		return fmt.Errorf("invalid component %s transition %s -> %s", name, cs.Status, to)
	}
	cs.Status = to
	t.Components[name] = cs
	return nil
}
