package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_ClientEngagementScenario(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "client-engagement", "client-proposal")

	assert.False(t, e.CanTransition(c, "design-planning"))

	var err error
	for _, sub := range []string{"site-visit", "client-meeting"} {
		c, err = e.ToggleSubStage(c, sub)
		require.NoError(t, err)
	}
	assert.True(t, e.CanTransition(c, "design-planning"))

	moved, err := e.Move(c, "design-planning")
	require.NoError(t, err)
	assert.Equal(t, "design-planning", moved.Stage)
	assert.Equal(t, map[string]bool{
		"concept-designing": false,
		"3d-designing":      false,
		"boq-estimation":    false,
	}, moved.Completion)
	assert.False(t, moved.Approved)
}

func TestMove_SingleIncompleteItemRejects(t *testing.T) {
	e := newTestEngine(t)
	stage, _ := e.Stage("work-preparation")

	for _, missing := range stage.SubStages {
		t.Run(missing.ID, func(t *testing.T) {
			c := clientAt(t, e, "work-preparation")
			for _, sub := range stage.SubStages {
				c.Completion[sub.ID] = sub.ID != missing.ID
			}

			_, err := e.Move(c, "material-site-work")

			var rejected *GateRejected
			require.True(t, errors.As(err, &rejected))
			assert.Equal(t, ReasonIncompleteChecklist, rejected.Reason)
		})
	}
}

func TestMove_BackwardAlwaysRejected(t *testing.T) {
	e := newTestEngine(t)

	for _, from := range e.Stages() {
		for _, to := range e.Stages() {
			if to.Position >= from.Position {
				continue
			}
			c := clientAt(t, e, from.ID)
			for _, sub := range from.SubStages {
				c.Completion[sub.ID] = true
			}

			_, err := e.Move(c, to.ID)

			var rejected *GateRejected
			if assert.True(t, errors.As(err, &rejected), "%s -> %s", from.ID, to.ID) {
				assert.Equal(t, ReasonBackwardMove, rejected.Reason)
			}
		}
	}
}

func TestMove_LeavesClientUntouchedOnRejection(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "client-engagement", "client-proposal")
	before := c.Clone()

	got, err := e.Move(c, "design-planning")

	require.Error(t, err)
	assert.Equal(t, before, c)
	assert.Equal(t, before, got)
}

func TestMove_ClearsApprovalWhenLeavingGatingStage(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "design-planning", "concept-designing", "3d-designing", "boq-estimation")

	approved, err := e.Approve(c)
	require.NoError(t, err)
	require.True(t, approved.Approved)

	moved, err := e.Move(approved, "work-preparation")
	require.NoError(t, err)
	assert.False(t, moved.Approved)
	assert.Len(t, moved.Completion, 3)
	for id, done := range moved.Completion {
		assert.False(t, done, id)
	}
}

func TestMove_DoesNotAliasCompletionMap(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "lead")

	moved, err := e.Move(c, "client-engagement")
	require.NoError(t, err)

	moved.Completion["client-proposal"] = true
	assert.Empty(t, c.Completion)
}

func TestMove_SameStageIsNoop(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "design-planning", "concept-designing")
	c.Approved = false

	got, err := e.Move(c, "design-planning")
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestToggleSubStage(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "client-engagement")

	on, err := e.ToggleSubStage(c, "site-visit")
	require.NoError(t, err)
	assert.True(t, on.Completion["site-visit"])
	assert.False(t, c.Completion["site-visit"], "input must not be mutated")

	off, err := e.ToggleSubStage(on, "site-visit")
	require.NoError(t, err)
	assert.False(t, off.Completion["site-visit"])
}

func TestToggleSubStage_RejectsForeignSubStage(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "client-engagement")

	got, err := e.ToggleSubStage(c, "concept-designing")

	assert.ErrorIs(t, err, ErrUnknownSubStage)
	assert.Contains(t, err.Error(), "belongs to Design & Planning")
	assert.Equal(t, c, got)
	_, present := got.Completion["concept-designing"]
	assert.False(t, present)
}

func TestSetSubStage(t *testing.T) {
	e := newTestEngine(t)
	c := clientAt(t, e, "client-engagement")

	done, err := e.SetSubStage(c, "client-meeting", true)
	require.NoError(t, err)
	assert.True(t, done.Completion["client-meeting"])

	again, err := e.SetSubStage(done, "client-meeting", true)
	require.NoError(t, err)
	assert.True(t, again.Completion["client-meeting"])

	_, err = e.SetSubStage(c, "nope", true)
	assert.ErrorIs(t, err, ErrUnknownSubStage)
	assert.NotContains(t, err.Error(), "belongs to")
}

func TestApprove(t *testing.T) {
	e := newTestEngine(t)

	t.Run("approval is idempotent", func(t *testing.T) {
		c := clientAt(t, e, "design-planning", "concept-designing", "3d-designing", "boq-estimation")

		first, err := e.Approve(c)
		require.NoError(t, err)
		assert.True(t, first.Approved)

		second, err := e.Approve(first)
		require.NoError(t, err)
		assert.True(t, second.Approved)
	})

	t.Run("incomplete checklist is not eligible", func(t *testing.T) {
		c := clientAt(t, e, "design-planning", "concept-designing")

		got, err := e.Approve(c)

		var rejected *GateRejected
		require.True(t, errors.As(err, &rejected))
		assert.Equal(t, ReasonNotEligible, rejected.Reason)
		assert.False(t, got.Approved)
	})

	t.Run("wrong stage is not eligible", func(t *testing.T) {
		c := clientAt(t, e, "work-preparation", "work-prep-start", "site-measurement", "2d-drawing")

		_, err := e.Approve(c)

		var rejected *GateRejected
		require.True(t, errors.As(err, &rejected))
		assert.Equal(t, ReasonNotEligible, rejected.Reason)
	})
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no stages", cfg: Config{}},
		{name: "duplicate stage", cfg: Config{Stages: []Stage{{ID: "a"}, {ID: "a"}}, GatingStageID: "a"}},
		{name: "duplicate sub-stage", cfg: Config{Stages: []Stage{
			{ID: "a", SubStages: []SubStage{{ID: "x"}}},
			{ID: "b", SubStages: []SubStage{{ID: "x"}}},
		}, GatingStageID: "a"}},
		{name: "missing gating stage", cfg: Config{Stages: []Stage{{ID: "a"}}, GatingStageID: "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestEngine_Positions(t *testing.T) {
	e := newTestEngine(t)
	for i, s := range e.Stages() {
		assert.Equal(t, i, s.Position)
	}
	assert.Equal(t, "lead", e.FirstStage().ID)
	assert.Equal(t, "design-planning", e.GatingStage().ID)

	owner, ok := e.StageOfSubStage("boq-estimation")
	assert.True(t, ok)
	assert.Equal(t, "design-planning", owner)
}
