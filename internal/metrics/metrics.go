// Package metrics exposes the wizard lifecycle as Prometheus collectors,
// attached through domain.LifecycleHooks so the engine itself stays free of
// any metrics dependency.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/spherecal/pkg/domain"
)

// Recorder holds the wizard's collectors.
type Recorder struct {
	stageVisits *prometheus.CounterVec
	commits     *prometheus.CounterVec
	fitDuration *prometheus.HistogramVec
	fitFailures *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		stageVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spherecal_stage_visits_total",
				Help: "Total number of wizard stage entries",
			},
			[]string{"stage"},
		),
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spherecal_commits_total",
				Help: "Total number of config store flushes",
			},
			[]string{"stage", "outcome"},
		),
		fitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "spherecal_fit_duration_seconds",
				Help: "Duration of geometry fitter runs",
			},
			[]string{"fit"},
		),
		fitFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spherecal_fit_failures_total",
				Help: "Total number of failed geometry fits",
			},
			[]string{"fit"},
		),
	}

	for _, c := range []prometheus.Collector{r.stageVisits, r.commits, r.fitDuration, r.fitFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Hooks returns lifecycle hooks feeding the recorder.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			r.stageVisits.WithLabelValues(string(e.Stage)).Inc()
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			r.commits.WithLabelValues(string(e.Stage), outcome).Inc()
		},
		OnFit: func(ctx context.Context, e *domain.FitEvent) {
			r.fitDuration.WithLabelValues(e.Fit).Observe(e.Duration.Seconds())
			if e.Err != nil {
				r.fitFailures.WithLabelValues(e.Fit).Inc()
			}
		},
	}
}
