package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// referenceStages mirrors the studio's default pipeline.
func referenceStages() []Stage {
	return []Stage{
		{ID: "lead", Name: "Lead"},
		{ID: "client-engagement", Name: "Client Engagement", SubStages: []SubStage{
			{ID: "client-proposal", Name: "Client Proposal"},
			{ID: "site-visit", Name: "Site Visit"},
			{ID: "client-meeting", Name: "Client Meeting"},
		}},
		{ID: "design-planning", Name: "Design & Planning", SubStages: []SubStage{
			{ID: "concept-designing", Name: "Concept Designing"},
			{ID: "3d-designing", Name: "3D Designing/Project Presentation"},
			{ID: "boq-estimation", Name: "BOQ/Detailed Estimation"},
		}},
		{ID: "work-preparation", Name: "Work Preparation", SubStages: []SubStage{
			{ID: "work-prep-start", Name: "Work Preparation Start"},
			{ID: "site-measurement", Name: "Site Measurement Rechecking"},
			{ID: "2d-drawing", Name: "2D Drawing with Cutting List"},
		}},
		{ID: "material-site-work", Name: "Material and Site Work", SubStages: []SubStage{
			{ID: "gypsum-work-start", Name: "Gypsum Work Start"},
			{ID: "material-purchase", Name: "Material Purchase/Selection"},
		}},
		{ID: "execution-phase", Name: "Execution Phase", SubStages: []SubStage{
			{ID: "onsite-work-start", Name: "On-Site Work Start"},
			{ID: "onsite-work-end", Name: "On-Site Work End"},
		}},
		{ID: "completion", Name: "Completion"},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{Stages: referenceStages(), GatingStageID: "design-planning"})
	require.NoError(t, err)
	return e
}

// clientAt builds a client in stageID with the given sub-stages marked done.
func clientAt(t *testing.T, e *Engine, stageID string, done ...string) Client {
	t.Helper()
	s, ok := e.Stage(stageID)
	require.True(t, ok, "stage %s", stageID)
	c := Client{ID: "client-1", Name: "Alice Smith", Stage: stageID, Completion: freshCompletion(s)}
	for _, id := range done {
		require.True(t, s.HasSubStage(id), "sub-stage %s", id)
		c.Completion[id] = true
	}
	return c
}
