package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/example/fitout/internal/core/ledger"
	"github.com/example/fitout/internal/core/pipeline"
)

// Pipeline is the YAML definition of the stage pipeline and the studio catalog.
type Pipeline struct {
	GatingStage string      `yaml:"gating_stage"`
	Stages      []StageSpec `yaml:"stages"`
	Catalog     CatalogSpec `yaml:"catalog"`
}

// StageSpec is one stage and its checklist.
type StageSpec struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	SubStages []SubStageSpec `yaml:"sub_stages,omitempty"`
}

// SubStageSpec is one checklist item.
type SubStageSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// CatalogSpec lists known materials, distributors and laborers.
type CatalogSpec struct {
	Materials    []MaterialSpec `yaml:"materials,omitempty"`
	Distributors []string       `yaml:"distributors,omitempty"`
	Laborers     []LaborerSpec  `yaml:"laborers,omitempty"`
}

// MaterialSpec is a catalog material.
type MaterialSpec struct {
	Name     string          `yaml:"name"`
	UnitCost decimal.Decimal `yaml:"unit_cost"`
}

// LaborerSpec is a catalog laborer.
type LaborerSpec struct {
	Name string          `yaml:"name"`
	Role string          `yaml:"role"`
	Rate decimal.Decimal `yaml:"rate"`
}

// DefaultPipeline returns the studio's reference configuration.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		GatingStage: "design-planning",
		Stages: []StageSpec{
			{ID: "lead", Name: "Lead"},
			{ID: "client-engagement", Name: "Client Engagement", SubStages: []SubStageSpec{
				{ID: "client-proposal", Name: "Client Proposal"},
				{ID: "site-visit", Name: "Site Visit"},
				{ID: "client-meeting", Name: "Client Meeting"},
			}},
			{ID: "design-planning", Name: "Design & Planning", SubStages: []SubStageSpec{
				{ID: "concept-designing", Name: "Concept Designing"},
				{ID: "3d-designing", Name: "3D Designing/Project Presentation"},
				{ID: "boq-estimation", Name: "BOQ/Detailed Estimation"},
			}},
			{ID: "work-preparation", Name: "Work Preparation", SubStages: []SubStageSpec{
				{ID: "work-prep-start", Name: "Work Preparation Start"},
				{ID: "site-measurement", Name: "Site Measurement Rechecking"},
				{ID: "2d-drawing", Name: "2D Drawing with Cutting List"},
			}},
			{ID: "material-site-work", Name: "Material and Site Work", SubStages: []SubStageSpec{
				{ID: "gypsum-work-start", Name: "Gypsum Work Start"},
				{ID: "gypsum-work-end", Name: "Gypsum Work End"},
				{ID: "material-purchase", Name: "Material Purchase/Selection"},
				{ID: "work-prep-end", Name: "Work Preparation End"},
				{ID: "scheduled-work-start", Name: "Scheduled Work Start"},
				{ID: "scheduled-work-end", Name: "Scheduled Work End"},
			}},
			{ID: "execution-phase", Name: "Execution Phase", SubStages: []SubStageSpec{
				{ID: "onsite-work-start", Name: "On-Site Work Start"},
				{ID: "onsite-work-end", Name: "On-Site Work End"},
				{ID: "factory-work-start", Name: "Factory Work Start"},
				{ID: "factory-work-end", Name: "Factory Work End"},
				{ID: "site-execution-start", Name: "Site Execution Start"},
				{ID: "site-execution-end", Name: "Site Execution End"},
			}},
			{ID: "completion", Name: "Completion"},
		},
		Catalog: CatalogSpec{
			Materials: []MaterialSpec{
				{Name: "Cement", UnitCost: decimal.NewFromInt(500)},
				{Name: "Steel", UnitCost: decimal.NewFromInt(1000)},
				{Name: "Bricks", UnitCost: decimal.NewFromInt(10)},
			},
			Distributors: []string{"BuildMart", "Steel Suppliers Ltd.", "Brick & Mortar Co."},
			Laborers: []LaborerSpec{
				{Name: "Amit Kumar", Role: "Main", Rate: decimal.NewFromInt(500)},
				{Name: "Raj Singh", Role: "Helper", Rate: decimal.NewFromInt(300)},
				{Name: "Priya Patel", Role: "Main", Rate: decimal.NewFromInt(550)},
			},
		},
	}
}

// LoadPipeline reads a pipeline YAML file. An empty path yields DefaultPipeline.
// The result is validated.
func LoadPipeline(path string) (*Pipeline, error) {
	if path == "" {
		return DefaultPipeline(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}

	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline file %s: %w", path, err)
	}
	return &p, nil
}

// SavePipeline writes the pipeline as YAML.
func (p *Pipeline) SavePipeline(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create pipeline directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write pipeline file: %w", err)
	}
	return nil
}

// Validate checks the stage list the same way the engine will, plus the catalog.
func (p *Pipeline) Validate() error {
	if _, err := pipeline.New(p.EngineConfig()); err != nil {
		return err
	}
	_, err := p.LedgerCatalog()
	return err
}

// EngineConfig converts the stage list for pipeline.New.
func (p *Pipeline) EngineConfig() pipeline.Config {
	stages := make([]pipeline.Stage, len(p.Stages))
	for i, s := range p.Stages {
		subs := make([]pipeline.SubStage, len(s.SubStages))
		for j, sub := range s.SubStages {
			subs[j] = pipeline.SubStage{ID: sub.ID, Name: sub.Name}
		}
		stages[i] = pipeline.Stage{ID: s.ID, Name: s.Name, SubStages: subs}
	}
	return pipeline.Config{Stages: stages, GatingStageID: p.GatingStage}
}

// LedgerCatalog converts and validates the catalog.
func (p *Pipeline) LedgerCatalog() (ledger.Catalog, error) {
	c := ledger.Catalog{Distributors: append([]string(nil), p.Catalog.Distributors...)}
	for _, m := range p.Catalog.Materials {
		if m.Name == "" {
			return ledger.Catalog{}, fmt.Errorf("catalog material: %w", ledger.ErrMissingName)
		}
		if m.UnitCost.IsNegative() {
			return ledger.Catalog{}, fmt.Errorf("catalog material %s: %w", m.Name, ledger.ErrInvalidAmount)
		}
		c.Materials = append(c.Materials, ledger.CatalogMaterial{Name: m.Name, UnitCost: m.UnitCost})
	}
	for _, l := range p.Catalog.Laborers {
		if l.Name == "" {
			return ledger.Catalog{}, fmt.Errorf("catalog laborer: %w", ledger.ErrMissingName)
		}
		role, err := ledger.ParseLaborRole(l.Role)
		if err != nil {
			return ledger.Catalog{}, fmt.Errorf("catalog laborer %s: %w", l.Name, err)
		}
		if l.Rate.IsNegative() {
			return ledger.Catalog{}, fmt.Errorf("catalog laborer %s: %w", l.Name, ledger.ErrInvalidRate)
		}
		c.Laborers = append(c.Laborers, ledger.CatalogLaborer{Name: l.Name, Role: role, Rate: l.Rate})
	}
	return c, nil
}
