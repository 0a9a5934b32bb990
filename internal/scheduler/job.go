package scheduler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clawinfra/herald/internal/config"
)

// Job is a recurring notification task.
type Job struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Schedule config.ScheduleConfig `json:"schedule"`
	Action   config.ActionConfig   `json:"action"`
	Enabled  bool                  `json:"enabled"`
	State    JobState              `json:"state"`
}

// Action kinds beyond the plain channel kinds.
const (
	ActionBroadcast = "broadcast" // send over every registered channel
	ActionRouted    = "routed"    // let the time-of-day window chain pick the channel
)

// JobState tracks job execution state
type JobState struct {
	LastRunAt    time.Time     `json:"lastRunAt,omitempty"`
	NextRunAt    time.Time     `json:"nextRunAt,omitempty"`
	RunCount     int64         `json:"runCount"`
	ErrorCount   int64         `json:"errorCount"`
	LastError    string        `json:"lastError,omitempty"`
	LastDuration time.Duration `json:"lastDuration,omitempty"`
}

// FromConfig builds a Job from its configuration entry.
func FromConfig(c config.SchedulerJobConfig) *Job {
	return &Job{
		ID:       c.ID,
		Name:     c.Name,
		Schedule: c.Schedule,
		Action:   c.Action,
		Enabled:  c.Enabled,
	}
}

// Validate checks if job configuration is valid
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job ID required")
	}
	if j.Name == "" {
		return fmt.Errorf("job name required")
	}

	// Validate schedule
	switch j.Schedule.Kind {
	case "interval":
		if j.Schedule.IntervalMs <= 0 {
			return fmt.Errorf("intervalMs must be positive")
		}
	case "cron":
		if j.Schedule.Expr == "" {
			return fmt.Errorf("cron expression required")
		}
		if _, err := cron.ParseStandard(j.Schedule.Expr); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	case "at":
		if j.Schedule.Time == "" {
			return fmt.Errorf("time required for 'at' schedule")
		}
		if _, err := time.Parse("15:04", j.Schedule.Time); err != nil {
			return fmt.Errorf("invalid time format (use HH:MM): %w", err)
		}
	default:
		return fmt.Errorf("unknown schedule kind: %s (use interval, cron, or at)", j.Schedule.Kind)
	}

	// Validate action
	if j.Action.Message == "" {
		return fmt.Errorf("message required")
	}
	switch j.Action.Kind {
	case ActionBroadcast, ActionRouted:
		// Recipient is optional for fan-out actions
	case "sms", "email":
		if j.Action.To == "" {
			return fmt.Errorf("recipient required for %s action", j.Action.Kind)
		}
	case "push", "webhook":
		// Topic and endpoint come from channel config
	default:
		return fmt.Errorf("unknown action kind: %s (use a channel kind, broadcast, or routed)", j.Action.Kind)
	}

	return nil
}

// NextRun calculates the next run time based on schedule
func (j *Job) NextRun(from time.Time) (time.Time, error) {
	switch j.Schedule.Kind {
	case "interval":
		interval := time.Duration(j.Schedule.IntervalMs) * time.Millisecond
		return from.Add(interval), nil

	case "cron":
		schedule, err := cron.ParseStandard(j.Schedule.Expr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron: %w", err)
		}
		return schedule.Next(from), nil

	case "at":
		t, err := time.Parse("15:04", j.Schedule.Time)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse time: %w", err)
		}

		loc := time.Local
		if j.Schedule.Timezone != "" {
			loc, err = time.LoadLocation(j.Schedule.Timezone)
			if err != nil {
				return time.Time{}, fmt.Errorf("load timezone: %w", err)
			}
		}

		next := time.Date(from.Year(), from.Month(), from.Day(),
			t.Hour(), t.Minute(), 0, 0, loc)

		// If time has passed today, schedule for tomorrow
		if next.Before(from) || next.Equal(from) {
			next = next.Add(24 * time.Hour)
		}

		return next, nil

	default:
		return time.Time{}, fmt.Errorf("unknown schedule kind: %s", j.Schedule.Kind)
	}
}

// Clone creates a deep copy of the job
func (j *Job) Clone() *Job {
	data, _ := json.Marshal(j)
	var clone Job
	json.Unmarshal(data, &clone)
	return &clone
}
