// Package pipeline contains the pure business logic for moving clients through
// the delivery pipeline. This is part of the Functional Core - no I/O, only
// pure functions over values.
package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStage is returned when a stage id is not part of the pipeline.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrUnknownSubStage is returned when a sub-stage id does not belong to the
	// client's current stage.
	ErrUnknownSubStage = errors.New("unknown sub-stage")

	// ErrNameRequired is returned when a client would be left without a name.
	ErrNameRequired = errors.New("client name is required")
)

// SubStage is a checklist item belonging to exactly one stage.
type SubStage struct {
	ID   string
	Name string
}

// Stage is a named, ordered phase in the pipeline.
// Position is assigned by the engine from the order stages are configured in.
type Stage struct {
	ID        string
	Name      string
	Position  int
	SubStages []SubStage
}

// HasSubStage reports whether id is one of the stage's checklist items.
func (s Stage) HasSubStage(id string) bool {
	for _, sub := range s.SubStages {
		if sub.ID == id {
			return true
		}
	}
	return false
}

// Config is the static pipeline definition supplied by the host at startup.
type Config struct {
	Stages        []Stage
	GatingStageID string
}

// Engine is the resolved, immutable pipeline. It indexes stages and sub-stages
// by id once so lookups never scan the stage list.
type Engine struct {
	stages   []Stage
	byID     map[string]int
	subOwner map[string]string
	gating   string
}

// New resolves a pipeline configuration into an Engine.
// Rules:
// - At least one stage
// - Stage ids unique and non-empty
// - Sub-stage ids unique across the whole pipeline
// - The gating stage must be one of the stages
func New(cfg Config) (*Engine, error) {
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("pipeline has no stages")
	}

	e := &Engine{
		stages:   make([]Stage, len(cfg.Stages)),
		byID:     make(map[string]int, len(cfg.Stages)),
		subOwner: make(map[string]string),
		gating:   cfg.GatingStageID,
	}

	for i, s := range cfg.Stages {
		if s.ID == "" {
			return nil, fmt.Errorf("stage %d has no id", i)
		}
		if _, dup := e.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %q", s.ID)
		}
		subs := make([]SubStage, len(s.SubStages))
		for j, sub := range s.SubStages {
			if sub.ID == "" {
				return nil, fmt.Errorf("stage %q: sub-stage %d has no id", s.ID, j)
			}
			if owner, dup := e.subOwner[sub.ID]; dup {
				return nil, fmt.Errorf("sub-stage id %q used by stages %q and %q", sub.ID, owner, s.ID)
			}
			e.subOwner[sub.ID] = s.ID
			subs[j] = sub
		}
		e.stages[i] = Stage{ID: s.ID, Name: s.Name, Position: i, SubStages: subs}
		e.byID[s.ID] = i
	}

	if _, ok := e.byID[cfg.GatingStageID]; !ok {
		return nil, fmt.Errorf("gating stage %q is not a pipeline stage", cfg.GatingStageID)
	}

	return e, nil
}

// Stages returns the stages in pipeline order.
func (e *Engine) Stages() []Stage {
	out := make([]Stage, len(e.stages))
	copy(out, e.stages)
	return out
}

// Stage looks up a stage by id.
func (e *Engine) Stage(id string) (Stage, bool) {
	i, ok := e.byID[id]
	if !ok {
		return Stage{}, false
	}
	return e.stages[i], true
}

// FirstStage returns the stage new clients start in.
func (e *Engine) FirstStage() Stage {
	return e.stages[0]
}

// GatingStage returns the stage at which clients are approved.
func (e *Engine) GatingStage() Stage {
	return e.stages[e.byID[e.gating]]
}

// IsGating reports whether stageID is the approval-gating stage.
func (e *Engine) IsGating(stageID string) bool {
	return stageID == e.gating
}

// StageOfSubStage returns the id of the stage owning a sub-stage.
func (e *Engine) StageOfSubStage(subStageID string) (string, bool) {
	owner, ok := e.subOwner[subStageID]
	return owner, ok
}

// freshCompletion returns an all-incomplete checklist for a stage.
func freshCompletion(s Stage) map[string]bool {
	m := make(map[string]bool, len(s.SubStages))
	for _, sub := range s.SubStages {
		m[sub.ID] = false
	}
	return m
}
