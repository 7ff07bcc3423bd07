package pipeline

import "fmt"

// Move advances a client to targetStageID.
// On success the returned client is in the new stage with an all-incomplete
// checklist for that stage and Approved cleared. On failure the error is a
// *GateRejected and the input client is returned unchanged.
func (e *Engine) Move(c Client, targetStageID string) (Client, error) {
	if targetStageID == c.Stage {
		return c, nil
	}

	if result := e.EvaluateTransition(c, targetStageID); !result.Allowed {
		return c, result.Error(c.ID)
	}

	target, _ := e.Stage(targetStageID)
	out := c.Clone()
	out.Stage = target.ID
	out.Completion = freshCompletion(target)
	// Approval is scoped to the gating stage: leaving it clears the latch and
	// arriving at it never carries one in.
	out.Approved = false
	return out, nil
}

// ToggleSubStage flips one checklist item of the client's current stage.
func (e *Engine) ToggleSubStage(c Client, subStageID string) (Client, error) {
	if err := e.checkSubStage(c, subStageID); err != nil {
		return c, err
	}
	out := c.Clone()
	out.Completion[subStageID] = !c.Completion[subStageID]
	return out, nil
}

// SetSubStage marks one checklist item of the client's current stage.
func (e *Engine) SetSubStage(c Client, subStageID string, done bool) (Client, error) {
	if err := e.checkSubStage(c, subStageID); err != nil {
		return c, err
	}
	out := c.Clone()
	out.Completion[subStageID] = done
	return out, nil
}

// Approve latches Approved for a client in the gating stage whose checklist is
// complete. Approving an approved client is a no-op.
func (e *Engine) Approve(c Client) (Client, error) {
	if result := e.EvaluateApproval(c); !result.Allowed {
		return c, result.Error(c.ID)
	}
	if c.Approved {
		return c, nil
	}
	out := c.Clone()
	out.Approved = true
	return out, nil
}

func (e *Engine) checkSubStage(c Client, subStageID string) error {
	s, ok := e.Stage(c.Stage)
	if !ok {
		return fmt.Errorf("client %s: %w %q", c.ID, ErrUnknownStage, c.Stage)
	}
	if !s.HasSubStage(subStageID) {
		if owner, ok := e.StageOfSubStage(subStageID); ok {
			other, _ := e.Stage(owner)
			return fmt.Errorf("%w %q for stage %s: it belongs to %s", ErrUnknownSubStage, subStageID, s.Name, other.Name)
		}
		return fmt.Errorf("%w %q for stage %s", ErrUnknownSubStage, subStageID, s.Name)
	}
	return nil
}
