package pipeline

import (
	"fmt"
	"strings"
)

// Client is a token moving through the pipeline.
// Completion only ever holds the sub-stages of the current Stage.
type Client struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Address    string
	Stage      string
	Completion map[string]bool
	Approved   bool
	Remark     string
}

// Clone returns a deep copy so callers never share a completion map.
func (c Client) Clone() Client {
	out := c
	out.Completion = make(map[string]bool, len(c.Completion))
	for k, v := range c.Completion {
		out.Completion[k] = v
	}
	return out
}

// Details holds the free-text fields a host may edit.
// Nil fields are left unchanged.
type Details struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Remark  *string
}

// NewClient creates a client in the first stage with no approval and an
// all-incomplete checklist.
func (e *Engine) NewClient(id, name string) (Client, error) {
	name = strings.TrimSpace(name)
	if id == "" {
		return Client{}, fmt.Errorf("client id is required")
	}
	if name == "" {
		return Client{}, ErrNameRequired
	}

	first := e.FirstStage()
	return Client{
		ID:         id,
		Name:       name,
		Stage:      first.ID,
		Completion: freshCompletion(first),
	}, nil
}

// UpdateDetails applies field edits. The name may not be blanked.
func UpdateDetails(c Client, d Details) (Client, error) {
	out := c.Clone()
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		if name == "" {
			return c, ErrNameRequired
		}
		out.Name = name
	}
	if d.Email != nil {
		out.Email = strings.TrimSpace(*d.Email)
	}
	if d.Phone != nil {
		out.Phone = strings.TrimSpace(*d.Phone)
	}
	if d.Address != nil {
		out.Address = strings.TrimSpace(*d.Address)
	}
	if d.Remark != nil {
		out.Remark = *d.Remark
	}
	return out, nil
}

// Progress reports how many of the current stage's sub-stages are complete.
func (e *Engine) Progress(c Client) (done, total int) {
	s, ok := e.Stage(c.Stage)
	if !ok {
		return 0, 0
	}
	for _, sub := range s.SubStages {
		if c.Completion[sub.ID] {
			done++
		}
	}
	return done, len(s.SubStages)
}

// Normalize rebuilds a client's checklist so it holds exactly the current
// stage's sub-stages, keeping any flags already set for them. Used when a
// stored client is loaded against a pipeline whose checklist has changed.
func (e *Engine) Normalize(c Client) (Client, error) {
	s, ok := e.Stage(c.Stage)
	if !ok {
		return c, fmt.Errorf("client %s: %w %q", c.ID, ErrUnknownStage, c.Stage)
	}
	out := c.Clone()
	out.Completion = freshCompletion(s)
	for id := range out.Completion {
		out.Completion[id] = c.Completion[id]
	}
	if !e.IsGating(out.Stage) {
		out.Approved = false
	}
	return out, nil
}
