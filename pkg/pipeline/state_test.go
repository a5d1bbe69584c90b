package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	const stages = 3

	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{"idle skip", State{Phase: PhaseIdle}, EventSkip, State{Phase: PhaseComplete}},
		{"idle start", State{Phase: PhaseIdle}, EventStart, State{Phase: PhaseRunning, Stage: 0}},
		{"stage validated", State{Phase: PhaseRunning, Stage: 0}, EventStageValidated, State{Phase: PhaseValidated, Stage: 0}},
		{"stage failed", State{Phase: PhaseRunning, Stage: 1}, EventStageFailed, State{Phase: PhaseFailed, Stage: 1}},
		{"validation failed", State{Phase: PhaseRunning, Stage: 2}, EventValidationFailed, State{Phase: PhaseFailed, Stage: 2}},
		{"advance to next stage", State{Phase: PhaseValidated, Stage: 0}, EventAdvance, State{Phase: PhaseRunning, Stage: 1}},
		{"advance past last stage", State{Phase: PhaseValidated, Stage: 2}, EventAdvance, State{Phase: PhaseComplete}},
		{"failed is absorbing", State{Phase: PhaseFailed, Stage: 1}, EventStageValidated, State{Phase: PhaseFailed, Stage: 1}},
		{"complete is terminal", State{Phase: PhaseComplete}, EventStart, State{Phase: PhaseComplete}},
		{"unknown combination fails", State{Phase: PhaseValidated, Stage: 0}, EventStart, State{Phase: PhaseFailed, Stage: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transition(tt.state, tt.event, stages)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "validated", PhaseValidated.String())
	assert.Equal(t, "complete", PhaseComplete.String())
	assert.Equal(t, "failed", PhaseFailed.String())
}
