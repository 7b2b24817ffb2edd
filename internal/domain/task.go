// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package domain

import "time"

// TaskStatus is the overall execution status of a Task (spec §3 `T`).
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Terminal reports whether status is one a Task never leaves once reached.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// ResultType classifies the outcome of a completed ingestion.
type ResultType string

const (
	ResultCreated   ResultType = "created"
	ResultDuplicate ResultType = "duplicate"
	ResultNone      ResultType = ""
)

// ComponentStatus is the status of one of a Task's three components.
type ComponentStatus string

const (
	ComponentPending    ComponentStatus = "pending"
	ComponentProcessing ComponentStatus = "processing"
	ComponentWaiting    ComponentStatus = "waiting"
	ComponentSuccess    ComponentStatus = "success"
	ComponentFailed     ComponentStatus = "failed"
)

// ComponentName identifies one of the three parallel fetch components.
type ComponentName string

const (
	ComponentMetadata   ComponentName = "metadata"
	ComponentContent    ComponentName = "content"
	ComponentReferences ComponentName = "references"
)

// ErrorInfo is a user-visible failure description: a domain kind, a short
// English stage string, and suggested next actions. Raw provider errors are
// preserved separately and not surfaced as primary text.
type ErrorInfo struct {
	Kind      string   `json:"kind"`
	Stage     string   `json:"stage"`
	NextSteps []string `json:"next_steps,omitempty"`
	Details   string   `json:"error_details,omitempty"`
}

// ComponentState is the per-component substate embedded in a Task.
type ComponentState struct {
	Status     ComponentStatus `json:"status"`
	Stage      string          `json:"stage,omitempty"`
	Progress   int             `json:"progress"`
	Source     string          `json:"source,omitempty"`
	Attempts   int             `json:"attempts"`
	NextAction string          `json:"next_action,omitempty"`
	Error      *ErrorInfo      `json:"error_info,omitempty"`
}

// Task is an ingestion job (spec §3 `T`). Mutated only by the Task
// Coordinator (C9); retained for a bounded result window after completion.
type Task struct {
	TaskID          string                          `json:"task_id"`
	SubmittedSource string                          `json:"submitted_source"`
	ExecutionStatus TaskStatus                      `json:"execution_status"`
	OverallProgress int                             `json:"overall_progress"`
	CurrentStage    string                          `json:"current_stage"`
	Components      map[ComponentName]ComponentState `json:"components"`
	ResultType      ResultType                      `json:"result_type,omitempty"`
	LiteratureID    string                          `json:"literature_id,omitempty"`
	Error           *ErrorInfo                      `json:"error_info,omitempty"`
	CreatedAt       time.Time                       `json:"created_at"`
	UpdatedAt       time.Time                       `json:"updated_at"`
}

// NewTask builds a freshly pending Task for the given submitted source.
func NewTask(taskID, submittedSource string) *Task {
	now := time.Now()
	return &Task{
		TaskID:          taskID,
		SubmittedSource: submittedSource,
		ExecutionStatus: TaskPending,
		Components: map[ComponentName]ComponentState{
			ComponentMetadata:   {Status: ComponentPending},
			ComponentContent:    {Status: ComponentPending},
			ComponentReferences: {Status: ComponentPending},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// componentWeight is the contribution of each component to OverallProgress,
// per spec §4.9 ("metadata 40%, content 30%, references 30%").
var componentWeight = map[ComponentName]int{
	ComponentMetadata:   40,
	ComponentContent:    30,
	ComponentReferences: 30,
}

// RecomputeProgress derives OverallProgress and CurrentStage from the
// current component states. Progress is monotonic only if callers never
// lower a component's own Progress field.
func (t *Task) RecomputeProgress() {
	total := 0
	mostAdvanced := ""
	bestProgress := -1
	for name, weight := range componentWeight {
		cs := t.Components[name]
		total += cs.Progress * weight / 100
		if cs.Status == ComponentProcessing && cs.Progress > bestProgress {
			bestProgress = cs.Progress
			mostAdvanced = cs.Stage
		}
	}
	t.OverallProgress = total
	if mostAdvanced != "" {
		t.CurrentStage = mostAdvanced
	}
}

// EventKind enumerates the SSE event types a Task publishes.
type EventKind string

const (
	EventStatus    EventKind = "status"
	EventCompleted EventKind = "completed"
	EventError     EventKind = "error"
	EventFailed    EventKind = "failed"
)

// TaskEvent is one entry in a Task's event stream (spec §6 "Task event
// stream").
type TaskEvent struct {
	Kind      EventKind `json:"kind"`
	TaskID    string    `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   *Task     `json:"payload"`
}
