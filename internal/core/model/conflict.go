package model

import (
	"bytes"
	"encoding/json"
)

// Conflict pairs a triple that was about to be inserted with the graph
// triples it contradicts.
type Conflict struct {
	ToBeInserted     *Triple  `json:"toBeInserted,omitempty"`
	InKnowledgeGraph []Triple `json:"inKnowledgeGraph"`
}

// UnmarshalJSON accepts both the object form and a bare list of graph triples.
func (c *Conflict) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var triples []Triple
		if err := json.Unmarshal(trimmed, &triples); err != nil {
			return err
		}
		*c = Conflict{InKnowledgeGraph: triples}
		return nil
	}
	type plain Conflict
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Conflict(p)
	return nil
}

// ConflictReport is the answer of a plain insertion that hit conflicts.
type ConflictReport struct {
	Message   string     `json:"message,omitempty"`
	Conflicts []Conflict `json:"conflicts"`
}

// Existing flattens the report into the distinct graph triples involved.
func (r *ConflictReport) Existing() []Triple {
	if r == nil {
		return nil
	}
	var out []Triple
	for _, c := range r.Conflicts {
		for _, t := range c.InKnowledgeGraph {
			dup := false
			for _, seen := range out {
				if seen.Equal(t) {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, t)
			}
		}
	}
	return out
}

// HasConflicts reports whether the report names any graph triple. A non-nil
// report without any still means the insertion was refused.
func (r *ConflictReport) HasConflicts() bool {
	return len(r.Existing()) > 0
}
