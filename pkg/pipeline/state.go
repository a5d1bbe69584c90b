package pipeline

import "fmt"

// Phase is the sequencer's position within a run
type Phase int

const (
	PhaseIdle      Phase = iota
	PhaseRunning         // current stage's process is in flight
	PhaseValidated       // current stage succeeded and its artifact checked out
	PhaseComplete
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseValidated:
		return "validated"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the full sequencer state: the phase plus which stage it applies
// to. Complete and Failed are terminal, no event leaves them.
type State struct {
	Phase Phase
	Stage int // index of the current stage, meaningful for Running/Validated
}

// Event advances the sequencer state
type Event int

const (
	EventStart            Event = iota // begin the first stage
	EventSkip                          // today's terminal artifact already exists
	EventStageValidated                // stage succeeded and its artifact exists non-empty
	EventStageFailed                   // retries exhausted
	EventValidationFailed              // stage exited zero but artifact absent/empty
	EventAdvance                       // move on to the next stage
)

// Transition is the pure transition function over the state machine. Unknown
// combinations collapse to Failed so a sequencing bug can never loop forever.
func Transition(s State, e Event, numStages int) State {
	if s.Phase == PhaseFailed || s.Phase == PhaseComplete {
		return s
	}

	switch {
	case s.Phase == PhaseIdle && e == EventSkip:
		return State{Phase: PhaseComplete}
	case s.Phase == PhaseIdle && e == EventStart:
		return State{Phase: PhaseRunning, Stage: 0}
	case s.Phase == PhaseRunning && e == EventStageValidated:
		return State{Phase: PhaseValidated, Stage: s.Stage}
	case s.Phase == PhaseRunning && (e == EventStageFailed || e == EventValidationFailed):
		return State{Phase: PhaseFailed, Stage: s.Stage}
	case s.Phase == PhaseValidated && e == EventAdvance:
		if s.Stage+1 >= numStages {
			return State{Phase: PhaseComplete}
		}
		return State{Phase: PhaseRunning, Stage: s.Stage + 1}
	default:
		return State{Phase: PhaseFailed, Stage: s.Stage}
	}
}
