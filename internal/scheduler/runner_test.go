package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clawinfra/herald/internal/config"
)

func intervalJob(id string, action config.ActionConfig) *Job {
	return &Job{
		ID:      id,
		Name:    id,
		Enabled: true,
		Schedule: config.ScheduleConfig{
			Kind:       "interval",
			IntervalMs: 1000,
		},
		Action: action,
	}
}

func TestJobRunnerSendExecution(t *testing.T) {
	executor := &MockExecutor{}
	job := intervalJob("send-job", config.ActionConfig{
		Kind:    "sms",
		To:      "+15550100",
		Message: "still alive",
	})

	runner := NewJobRunner(job, executor, nil)
	runner.executeJob(context.Background())

	sends := executor.GetSends()
	if len(sends) != 1 {
		t.Fatalf("Expected 1 send, got %d", len(sends))
	}
	if sends[0].Kind != "sms" || sends[0].To != "+15550100" || sends[0].Body != "still alive" {
		t.Errorf("Unexpected send: %+v", sends[0])
	}

	if job.State.RunCount != 1 {
		t.Errorf("Expected RunCount=1, got %d", job.State.RunCount)
	}
	if job.State.ErrorCount != 0 {
		t.Errorf("Expected ErrorCount=0, got %d", job.State.ErrorCount)
	}
	if job.State.LastError != "" {
		t.Errorf("Expected no error, got: %s", job.State.LastError)
	}
}

func TestJobRunnerSendFailure(t *testing.T) {
	executor := &MockExecutor{err: errors.New("channel down")}
	job := intervalJob("failing-job", config.ActionConfig{
		Kind:    "sms",
		To:      "+15550100",
		Message: "m",
	})

	runner := NewJobRunner(job, executor, nil)
	runner.executeJob(context.Background())

	if job.State.RunCount != 1 {
		t.Errorf("Expected RunCount=1, got %d", job.State.RunCount)
	}
	if job.State.ErrorCount != 1 {
		t.Errorf("Expected ErrorCount=1, got %d", job.State.ErrorCount)
	}
	if job.State.LastError == "" {
		t.Error("Expected error to be recorded")
	}
}

func TestJobRunnerBroadcastExecution(t *testing.T) {
	executor := &MockExecutor{}
	job := intervalJob("broadcast-job", config.ActionConfig{
		Kind:    ActionBroadcast,
		Message: "all hands",
	})

	runner := NewJobRunner(job, executor, nil)
	runner.executeJob(context.Background())

	if executor.GetBroadcasts() != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", executor.GetBroadcasts())
	}
	if len(executor.GetSends()) != 0 {
		t.Error("Broadcast must not go through Dispatch")
	}
}

func TestJobRunnerRoutedExecution(t *testing.T) {
	executor := &MockExecutor{}
	job := intervalJob("routed-job", config.ActionConfig{
		Kind:    ActionRouted,
		Message: "pick a channel",
	})

	runner := NewJobRunner(job, executor, nil)
	runner.executeJob(context.Background())

	if executor.GetRouted() != 1 {
		t.Fatalf("Expected 1 routed dispatch, got %d", executor.GetRouted())
	}
}

func TestJobRunnerNilExecutor(t *testing.T) {
	job := intervalJob("orphan-job", config.ActionConfig{
		Kind:    "sms",
		To:      "x",
		Message: "m",
	})

	runner := NewJobRunner(job, nil, nil)
	runner.executeJob(context.Background())

	if job.State.ErrorCount != 1 {
		t.Errorf("Missing executor must count as an error, got %d", job.State.ErrorCount)
	}
}

func TestJobRunnerStateTiming(t *testing.T) {
	executor := &MockExecutor{delay: 100 * time.Millisecond}
	job := intervalJob("timing-job", config.ActionConfig{
		Kind:    "push",
		Message: "m",
	})

	runner := NewJobRunner(job, executor, nil)

	before := time.Now()
	runner.executeJob(context.Background())
	after := time.Now()

	if job.State.LastDuration == 0 {
		t.Error("Expected LastDuration to be set")
	}
	if job.State.LastDuration < 50*time.Millisecond || job.State.LastDuration > 1*time.Second {
		t.Errorf("Unexpected duration: %v", job.State.LastDuration)
	}
	if job.State.LastRunAt.Before(before) || job.State.LastRunAt.After(after) {
		t.Error("LastRunAt timestamp incorrect")
	}
}

func TestJobRunnerDisabledJob(t *testing.T) {
	executor := &MockExecutor{}
	job := intervalJob("disabled-job", config.ActionConfig{
		Kind:    "push",
		Message: "m",
	})
	job.Enabled = false

	runner := NewJobRunner(job, executor, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go runner.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	if job.State.RunCount != 0 {
		t.Errorf("Disabled job should not run, but RunCount=%d", job.State.RunCount)
	}
}

func TestJobRunnerStop(t *testing.T) {
	executor := &MockExecutor{}
	job := intervalJob("stop-job", config.ActionConfig{
		Kind:    "push",
		Message: "m",
	})
	job.Schedule.IntervalMs = 50

	runner := NewJobRunner(job, executor, nil)
	go runner.Start(context.Background())

	// Let it run a few times
	time.Sleep(200 * time.Millisecond)

	runner.Stop()
	runCountBefore := job.State.RunCount

	time.Sleep(200 * time.Millisecond)

	if job.State.RunCount > runCountBefore {
		t.Errorf("Job continued running after Stop()")
	}
}
