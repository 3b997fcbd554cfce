package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Triple is a subject-relation-objects statement. Objects keep the order they
// were extracted in; equality ignores that order.
type Triple struct {
	Subject  string   `json:"subject" yaml:"subject"`
	Relation string   `json:"relation" yaml:"relation"`
	Objects  []string `json:"objects" yaml:"objects"`
}

var (
	ErrEmptySubject  = errors.New("triple has no subject")
	ErrEmptyRelation = errors.New("triple has no relation")
	ErrNoObjects     = errors.New("triple has no objects")
)

// Validate checks the shape the fact-checking service requires.
func (t Triple) Validate() error {
	if strings.TrimSpace(t.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(t.Relation) == "" {
		return ErrEmptyRelation
	}
	if len(t.Objects) == 0 {
		return ErrNoObjects
	}
	for i, o := range t.Objects {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("object %d is empty: %w", i, ErrNoObjects)
		}
	}
	return nil
}

// Equal reports whether both triples make the same statement.
func (t Triple) Equal(other Triple) bool {
	if t.Subject != other.Subject || t.Relation != other.Relation {
		return false
	}
	return slices.Equal(t.sortedObjects(), other.sortedObjects())
}

// Clone returns a copy that shares no memory with t.
func (t Triple) Clone() Triple {
	return Triple{
		Subject:  t.Subject,
		Relation: t.Relation,
		Objects:  slices.Clone(t.Objects),
	}
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s, %s, [%s])", t.Subject, t.Relation, strings.Join(t.Objects, ", "))
}

func (t Triple) sortedObjects() []string {
	objs := slices.Clone(t.Objects)
	slices.Sort(objs)
	return objs
}

// ExistingTriple is a triple already resident in the knowledge graph, as
// returned next to a conflicts/possible outcome.
type ExistingTriple struct {
	Triple
	Key      string `json:"key,omitempty"`
	Source   string `json:"source,omitempty"`
	Sentence string `json:"sentence,omitempty"`
}

// PendingTriple is an extracted triple awaiting the verifier's decision.
type PendingTriple struct {
	Triple
	Added bool `json:"added"`
}
