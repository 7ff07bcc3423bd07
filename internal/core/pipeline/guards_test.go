package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateTransition(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		client      Client
		target      string
		wantAllowed bool
		wantReason  RejectReason
	}{
		{
			name:        "same stage is always allowed",
			client:      clientAt(t, e, "client-engagement"),
			target:      "client-engagement",
			wantAllowed: true,
		},
		{
			name:        "lead has an empty checklist so advancing is vacuously allowed",
			client:      clientAt(t, e, "lead"),
			target:      "client-engagement",
			wantAllowed: true,
		},
		{
			name:        "next stage with incomplete checklist is rejected",
			client:      clientAt(t, e, "client-engagement", "client-proposal"),
			target:      "design-planning",
			wantAllowed: false,
			wantReason:  ReasonIncompleteChecklist,
		},
		{
			name:        "next stage with complete checklist is allowed",
			client:      clientAt(t, e, "client-engagement", "client-proposal", "site-visit", "client-meeting"),
			target:      "design-planning",
			wantAllowed: true,
		},
		{
			name:        "backward move is rejected even with a complete checklist",
			client:      clientAt(t, e, "design-planning", "concept-designing", "3d-designing", "boq-estimation"),
			target:      "client-engagement",
			wantAllowed: false,
			wantReason:  ReasonBackwardMove,
		},
		{
			name:        "backward move to the first stage is rejected",
			client:      clientAt(t, e, "completion"),
			target:      "lead",
			wantAllowed: false,
			wantReason:  ReasonBackwardMove,
		},
		{
			name:        "multi-hop over a stage with a checklist is rejected",
			client:      clientAt(t, e, "lead"),
			target:      "design-planning",
			wantAllowed: false,
			wantReason:  ReasonIncompleteChecklist,
		},
		{
			name:        "final stage with incomplete execution checklist is rejected",
			client:      clientAt(t, e, "execution-phase", "onsite-work-start"),
			target:      "completion",
			wantAllowed: false,
			wantReason:  ReasonIncompleteChecklist,
		},
		{
			name:        "multi-hop across the gating stage is rejected",
			client:      clientAt(t, e, "client-engagement", "client-proposal", "site-visit", "client-meeting"),
			target:      "work-preparation",
			wantAllowed: false,
			wantReason:  ReasonIncompleteChecklist,
		},
		{
			name:        "unknown target is rejected",
			client:      clientAt(t, e, "lead"),
			target:      "archive",
			wantAllowed: false,
			wantReason:  ReasonUnknownStage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.EvaluateTransition(tt.client, tt.target)
			assert.Equal(t, tt.wantAllowed, result.Allowed)
			assert.Equal(t, tt.wantAllowed, e.CanTransition(tt.client, tt.target))
			if !tt.wantAllowed {
				assert.Equal(t, tt.wantReason, result.Reason)
				assert.NotEmpty(t, result.Detail)
			}
		})
	}
}

func TestEvaluateTransition_MultiHopThroughEmptyChecklists(t *testing.T) {
	e, err := New(Config{
		Stages: []Stage{
			{ID: "a", Name: "A", SubStages: []SubStage{{ID: "a1"}}},
			{ID: "b", Name: "B"},
			{ID: "c", Name: "C"},
			{ID: "d", Name: "D"},
		},
		GatingStageID: "d",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c := Client{ID: "client-1", Stage: "a", Completion: map[string]bool{"a1": true}}
	assert.True(t, e.CanTransition(c, "d"), "every hop is verifiable")

	c.Completion["a1"] = false
	assert.False(t, e.CanTransition(c, "d"), "first hop is incomplete")
}

func TestEvaluateTransition_IsPure(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "client-engagement", "client-proposal")
	before := c.Clone()

	e.CanTransition(c, "design-planning")
	e.CanTransition(c, "lead")

	assert.Equal(t, before, c)
}

func TestEvaluateApproval(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		client      Client
		wantAllowed bool
	}{
		{
			name:        "complete gating checklist can be approved",
			client:      clientAt(t, e, "design-planning", "concept-designing", "3d-designing", "boq-estimation"),
			wantAllowed: true,
		},
		{
			name:        "incomplete gating checklist cannot be approved",
			client:      clientAt(t, e, "design-planning", "concept-designing"),
			wantAllowed: false,
		},
		{
			name:        "client outside the gating stage cannot be approved",
			client:      clientAt(t, e, "client-engagement", "client-proposal", "site-visit", "client-meeting"),
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.EvaluateApproval(tt.client)
			assert.Equal(t, tt.wantAllowed, result.Allowed)
			if !tt.wantAllowed {
				assert.Equal(t, ReasonNotEligible, result.Reason)
			}
		})
	}
}

func TestGuardResult_Error(t *testing.T) {
	t.Run("allowed result returns nil error", func(t *testing.T) {
		result := GuardResult{Allowed: true}
		assert.NoError(t, result.Error("client-1"))
	})

	t.Run("denied result returns GateRejected", func(t *testing.T) {
		result := GuardResult{Allowed: false, Reason: ReasonBackwardMove, Detail: "cannot move"}
		err := result.Error("client-1")
		var rejected *GateRejected
		if assert.ErrorAs(t, err, &rejected) {
			assert.Equal(t, ReasonBackwardMove, rejected.Reason)
			assert.Equal(t, "client-1", rejected.ClientID)
		}
		assert.Equal(t, "client client-1 rejected: backward-move (cannot move)", err.Error())
	})
}
