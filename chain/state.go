// CLAUDE:SUMMARY Chain phase machine: pure retry/advance transitions keyed on (correct, hasNext, retriesUsed).
package chain

import "errors"

// Phase is the controller's position within one round of the chain.
type Phase int

const (
	PhaseSolving Phase = iota
	PhaseRetrying
	PhaseAdvancing
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSolving:
		return "solving"
	case PhaseRetrying:
		return "retrying"
	case PhaseAdvancing:
		return "advancing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the phase ends the chain.
func IsTerminal(p Phase) bool {
	return p == PhaseDone || p == PhaseFailed
}

// Decide maps a graded attempt onto the next phase.
//
// The policy: correctness is preferred, but a next-URL from the grading
// endpoint eventually overrides a stuck retry loop, since the endpoint is
// authoritative on whether progress is still possible. One re-solve of the
// current page is allowed per round before the next-URL wins.
func Decide(correct, hasNext bool, retriesUsed, retryBudget int) Phase {
	switch {
	case correct && hasNext:
		return PhaseAdvancing
	case correct:
		return PhaseDone
	case retriesUsed < retryBudget:
		return PhaseRetrying
	case hasNext:
		return PhaseAdvancing
	default:
		return PhaseFailed
	}
}

// Sentinel errors for the chain's terminal conditions.
var (
	ErrDeadlineExceeded = errors.New("chain: deadline exceeded")
	ErrDepthExhausted   = errors.New("chain: depth budget exhausted")
	ErrNoSubmitURL      = errors.New("chain: no submission url derivable")
	ErrNoAnswer         = errors.New("chain: no usable answer from reasoning backend")
	ErrPayloadTooLarge  = errors.New("chain: payload exceeds byte ceiling")
	ErrStuck            = errors.New("chain: wrong answer with no next url")
)
