package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
)

var (
	ErrMutationFailed = errors.New("mutation failed")
	ErrNotPresent     = errors.New("triple is no longer in the knowledge graph")
	ErrInvalidEntity  = errors.New("invalid entity")

	// ErrPartiallyApplied marks an article Add whose graph insert went
	// through while flagging the pending triple as added did not.
	ErrPartiallyApplied = errors.New("triple was inserted into the knowledge graph but the article was not updated")
)

// MutationError is a failed call to the graph or article service. The row
// that started it is back in its bucket.
type MutationError struct {
	Op  string
	Key string
	Err error
}

func (e *MutationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Key, e.Err)
}

func (e *MutationError) Unwrap() []error {
	return []error{ErrMutationFailed, e.Err}
}

// ConflictError is returned when a plain insertion was refused. Nothing was
// inserted; Conflicts is the set the graph reported, possibly empty.
type ConflictError struct {
	Key       string
	Triple    model.Triple
	Conflicts []model.Triple
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("the knowledge graph refused %s as conflicting", e.Triple)
	}
	return fmt.Sprintf("%s conflicts with %d triple(s) in the knowledge graph", e.Triple, len(e.Conflicts))
}

// ConfirmationRequired is returned by actions that need the verifier to
// confirm before anything is sent.
type ConfirmationRequired struct {
	Action    session.Action
	Key       string
	Triple    model.Triple
	Conflicts []model.Triple
}

func (e *ConfirmationRequired) Error() string {
	return fmt.Sprintf("%s of %s requires confirmation", e.Action, e.Triple)
}

// Prompt is the question shown to the verifier.
func (e *ConfirmationRequired) Prompt() string {
	var b strings.Builder
	switch e.Action {
	case session.ActionAddForced:
		fmt.Fprintf(&b, "Add %s to the knowledge graph", e.Triple)
		if len(e.Conflicts) > 0 {
			fmt.Fprintf(&b, " even though it conflicts with %d existing triple(s)", len(e.Conflicts))
		}
	case session.ActionRemove, session.ActionRemoveEvidence:
		fmt.Fprintf(&b, "Remove %s from the knowledge graph", e.Triple)
	case session.ActionDiscard:
		fmt.Fprintf(&b, "Discard %s from the pending triples", e.Triple)
	default:
		fmt.Fprintf(&b, "%s %s", e.Action, e.Triple)
	}
	b.WriteString("?")
	return b.String()
}
