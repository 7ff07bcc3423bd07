package pipeline

import "fmt"

// RejectReason classifies why a gate refused a client.
type RejectReason string

const (
	ReasonBackwardMove        RejectReason = "backward-move"
	ReasonIncompleteChecklist RejectReason = "incomplete-checklist"
	ReasonNotEligible         RejectReason = "not-eligible"
	ReasonUnknownStage        RejectReason = "unknown-stage"
)

// GateRejected is the typed, recoverable rejection returned by Move and Approve.
// The client it refers to is always left unchanged.
type GateRejected struct {
	ClientID string
	Reason   RejectReason
	Detail   string
}

func (e *GateRejected) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("client %s rejected: %s", e.ClientID, e.Reason)
	}
	return fmt.Sprintf("client %s rejected: %s (%s)", e.ClientID, e.Reason, e.Detail)
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  RejectReason
	Detail  string // Human-readable detail (populated when not allowed)
}

// Error converts the guard result to a *GateRejected if not allowed.
func (r GuardResult) Error(clientID string) error {
	if r.Allowed {
		return nil
	}
	return &GateRejected{ClientID: clientID, Reason: r.Reason, Detail: r.Detail}
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(reason RejectReason, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// EvaluateTransition evaluates whether a client may move to targetStageID.
// Rules:
// - Staying in the current stage is always allowed
// - Moving to an earlier stage is never allowed
// - Advancing one stage requires the current checklist to be complete
// - Advancing several stages requires every hop to be verifiable: the current
//   stage from the client's checklist, each intermediate stage only when its
//   checklist is empty, and never across the gating stage
func (e *Engine) EvaluateTransition(c Client, targetStageID string) GuardResult {
	if targetStageID == c.Stage {
		return allow()
	}

	current, ok := e.Stage(c.Stage)
	if !ok {
		return deny(ReasonUnknownStage, "current stage %q is not a pipeline stage", c.Stage)
	}
	target, ok := e.Stage(targetStageID)
	if !ok {
		return deny(ReasonUnknownStage, "stage %q is not a pipeline stage", targetStageID)
	}

	if target.Position < current.Position {
		return deny(ReasonBackwardMove, "cannot move from %s back to %s", current.Name, target.Name)
	}

	if missing := missingSubStages(current, c.Completion); len(missing) > 0 {
		return deny(ReasonIncompleteChecklist, "%d of %d sub-stages of %s incomplete: %v",
			len(missing), len(current.SubStages), current.Name, missing)
	}

	for pos := current.Position + 1; pos < target.Position; pos++ {
		hop := e.stages[pos]
		if e.IsGating(hop.ID) {
			return deny(ReasonIncompleteChecklist, "cannot skip %s: approval happens there", hop.Name)
		}
		if len(hop.SubStages) > 0 {
			return deny(ReasonIncompleteChecklist, "cannot skip %s: its checklist has not been completed", hop.Name)
		}
	}

	return allow()
}

// CanTransition is the boolean form of EvaluateTransition. It has no side effects.
func (e *Engine) CanTransition(c Client, targetStageID string) bool {
	return e.EvaluateTransition(c, targetStageID).Allowed
}

// EvaluateApproval evaluates whether a client can be approved.
// Rules:
// - Client must be in the gating stage
// - The gating stage checklist must be complete
func (e *Engine) EvaluateApproval(c Client) GuardResult {
	gating := e.GatingStage()
	if c.Stage != gating.ID {
		return deny(ReasonNotEligible, "approval only happens in %s", gating.Name)
	}
	if missing := missingSubStages(gating, c.Completion); len(missing) > 0 {
		return deny(ReasonNotEligible, "%d of %d sub-stages of %s incomplete: %v",
			len(missing), len(gating.SubStages), gating.Name, missing)
	}
	return allow()
}

// missingSubStages lists the checklist items of s not marked complete.
func missingSubStages(s Stage, completion map[string]bool) []string {
	var missing []string
	for _, sub := range s.SubStages {
		if !completion[sub.ID] {
			missing = append(missing, sub.ID)
		}
	}
	return missing
}
