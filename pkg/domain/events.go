package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventStageEnter EventType = "stage_enter"
	EventStageLeave EventType = "stage_leave"
	EventCommit     EventType = "commit"
	EventFit        EventType = "fit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StageEvent marks entry to or exit from a wizard stage.
type StageEvent struct {
	EventBase
	Stage Stage `json:"stage"`
}

// CommitEvent marks a durable flush of one stage's artifact to the store.
type CommitEvent struct {
	EventBase
	Stage Stage    `json:"stage"`
	Keys  []string `json:"keys"`
	Err   error    `json:"-"`
}

// FitEvent marks a geometry fitter invocation.
type FitEvent struct {
	EventBase
	Stage    Stage         `json:"stage"`
	Fit      string        `json:"fit"` // "circumference" or "pose"
	Points   int           `json:"points"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for wizard observability. All fields are
// optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStageLeave func(context.Context, *StageEvent)
	OnCommit     func(context.Context, *CommitEvent)
	OnFit        func(context.Context, *FitEvent)
}

// Merge returns hooks that fire h's callbacks first and next's after, so
// several observers (metrics, debug logging) can share one engine.
func (h LifecycleHooks) Merge(next LifecycleHooks) LifecycleHooks {
	merged := h
	if next.OnStageEnter != nil {
		prev := merged.OnStageEnter
		merged.OnStageEnter = func(ctx context.Context, e *StageEvent) {
			if prev != nil {
				prev(ctx, e)
			}
			next.OnStageEnter(ctx, e)
		}
	}
	if next.OnStageLeave != nil {
		prev := merged.OnStageLeave
		merged.OnStageLeave = func(ctx context.Context, e *StageEvent) {
			if prev != nil {
				prev(ctx, e)
			}
			next.OnStageLeave(ctx, e)
		}
	}
	if next.OnCommit != nil {
		prev := merged.OnCommit
		merged.OnCommit = func(ctx context.Context, e *CommitEvent) {
			if prev != nil {
				prev(ctx, e)
			}
			next.OnCommit(ctx, e)
		}
	}
	if next.OnFit != nil {
		prev := merged.OnFit
		merged.OnFit = func(ctx context.Context, e *FitEvent) {
			if prev != nil {
				prev(ctx, e)
			}
			next.OnFit(ctx, e)
		}
	}
	return merged
}
