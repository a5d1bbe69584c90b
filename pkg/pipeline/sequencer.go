// Package pipeline sequences the daily collect, write, publish stages with
// retries, artifact validation gates, and terminal success/failure signaling.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/store"
)

//go:generate moq -out mocks/stage_runner.go -pkg mocks -skip-ensure -fmt goimports . StageRunner
//go:generate moq -out mocks/execution_log.go -pkg mocks -skip-ensure -fmt goimports . ExecutionLog
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// StageRunner runs one stage command to a terminal result
type StageRunner interface {
	Run(ctx context.Context, name string, command []string) Result
}

// ExecutionLog appends execution records for observability
type ExecutionLog interface {
	LogExecution(ctx context.Context, exec store.Execution) error
}

// Notifier delivers best-effort operator notifications
type Notifier interface {
	TrySend(ctx context.Context, message string)
}

// Sequencer drives the ordered stage list through the state machine. One
// Run call is one full pipeline cycle for a single date.
type Sequencer struct {
	runner    StageRunner
	log       ExecutionLog
	notifier  Notifier
	artifacts Artifacts
	stages    []config.StageConfig
}

// NewSequencer creates a sequencer over the configured stage list
func NewSequencer(runner StageRunner, execLog ExecutionLog, notifier Notifier, artifacts Artifacts, stages []config.StageConfig) *Sequencer {
	return &Sequencer{runner: runner, log: execLog, notifier: notifier, artifacts: artifacts, stages: stages}
}

// Run executes the full pipeline for the given date. Running twice in one
// day is a safe no-op: if the date's episode artifact already exists no
// stage is invoked. Returns the terminal state and an error when the run
// ended in Failed.
func (s *Sequencer) Run(ctx context.Context, date string) (State, error) {
	start := time.Now()
	state := State{Phase: PhaseIdle}

	if err := Validate(s.artifacts.Episode(date)); err == nil {
		log.Printf("[INFO] episode for %s already exists, skipping pipeline", date)
		return Transition(state, EventSkip, len(s.stages)), nil
	}

	log.Printf("[INFO] starting pipeline for %s with %d stages", date, len(s.stages))
	state = Transition(state, EventStart, len(s.stages))

	for state.Phase == PhaseRunning {
		stage := s.stages[state.Stage]

		result := s.runner.Run(ctx, stage.Name, stage.Command)
		s.record(ctx, date, stage.Name, result)

		if !result.Success {
			state = Transition(state, EventStageFailed, len(s.stages))
			s.notifier.TrySend(ctx, fmt.Sprintf("Pipeline failed at stage %s: %s", stage.Name, result.Error))
			return state, fmt.Errorf("stage %s failed after %d attempts: %s", stage.Name, result.Attempts, result.Error)
		}

		artifact, err := s.artifacts.ForStage(stage.Name, date)
		if err == nil {
			err = Validate(artifact)
		}
		if err != nil {
			// exit code zero is necessary but not sufficient
			state = Transition(state, EventValidationFailed, len(s.stages))
			s.recordFailure(ctx, date, stage.Name, err)
			s.notifier.TrySend(ctx, fmt.Sprintf("Pipeline failed at stage %s: %s", stage.Name, err))
			return state, fmt.Errorf("stage %s output validation: %w", stage.Name, err)
		}

		log.Printf("[INFO] stage %s completed in %ds, artifact %s validated", stage.Name, result.DurationSeconds, artifact)
		state = Transition(state, EventStageValidated, len(s.stages))
		state = Transition(state, EventAdvance, len(s.stages))
	}

	total := int(time.Since(start).Seconds())
	s.record(ctx, date, "pipeline", Result{Success: true, DurationSeconds: total})
	s.notifier.TrySend(ctx, fmt.Sprintf("Pipeline for %s completed in %ds", date, total))
	log.Printf("[INFO] pipeline for %s complete in %ds", date, total)

	return state, nil
}

// record logs one execution row, never failing the pipeline over it
func (s *Sequencer) record(ctx context.Context, date, stage string, result Result) {
	exec := store.Execution{
		Date:            date,
		Stage:           stage,
		Status:          store.StatusSuccess,
		DurationSeconds: store.NullInt64(int64(result.DurationSeconds)),
	}
	if !result.Success {
		exec.Status = store.StatusFailure
		exec.ErrorMessage = store.NullString(result.Error)
	}
	if err := s.log.LogExecution(ctx, exec); err != nil {
		log.Printf("[WARN] failed to record execution %s/%s: %v", date, stage, err)
	}
}

func (s *Sequencer) recordFailure(ctx context.Context, date, stage string, err error) {
	s.record(ctx, date, stage, Result{Success: false, Error: err.Error()})
}
