package session

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

var (
	ErrUnknownKey     = errors.New("unknown row key")
	ErrActionInFlight = errors.New("an action is already in flight for this row")
	ErrIllegalAction  = errors.New("action not allowed for this row")
)

// Mode is where the session's triples came from.
type Mode string

const (
	ModeTriples Mode = "triples"
	ModeText    Mode = "text"
	ModeArticle Mode = "article"
)

type Action string

const (
	ActionAdd            Action = "add"
	ActionAddForced      Action = "add_forced"
	ActionRemove         Action = "remove"
	ActionDiscard        Action = "discard"
	ActionRemoveEvidence Action = "remove_evidence"
)

// State is the visible state of a row still in a bucket. Resolved and
// discarded rows leave the buckets and only survive as a Resolution.
type State string

const (
	StatePending   State = "pending"
	StateError     State = "error"
	StateResolved  State = "resolved"
	StateDiscarded State = "discarded"
)

// Presence is the last re-verified graph presence of a triple.
type Presence string

const (
	PresenceUnknown   Presence = "unknown"
	PresenceConfirmed Presence = "confirmed"
	PresenceAbsent    Presence = "absent"
)

// EvidenceRow is a graph triple shown next to a conflicts/possible row. It
// can be removed on its own.
type EvidenceRow struct {
	model.ExistingTriple
	Presence  Presence `json:"presence"`
	InFlight  bool     `json:"in_flight,omitempty"`
	LastError string   `json:"last_error,omitempty"`
}

// Row is one classified triple in a bucket.
type Row struct {
	Key       string        `json:"key"`
	Sentence  string        `json:"sentence,omitempty"`
	Article   string        `json:"article,omitempty"`
	Triple    model.Triple  `json:"triple"`
	Outcome   model.Outcome `json:"result"`
	State     State         `json:"state"`
	InFlight  Action        `json:"in_flight,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	Presence  Presence      `json:"presence"`

	// Escalated is set once the graph refused a plain Add; it unlocks
	// AddForced on a none row. Escalation holds the conflicts it reported.
	Escalated  bool           `json:"escalated,omitempty"`
	Escalation []model.Triple `json:"escalation,omitempty"`

	Evidence        []EvidenceRow  `json:"evidence,omitempty"`
	RemovedEvidence []model.Triple `json:"removed_evidence,omitempty"`

	Actions []Action `json:"actions"`
}

func newRow(ct model.ClassifiedTriple) *Row {
	r := &Row{
		Key:      ct.Key,
		Sentence: ct.Sentence,
		Article:  ct.Article,
		Triple:   ct.Triple.Clone(),
		Outcome:  ct.Outcome,
		State:    StatePending,
		Presence: PresenceUnknown,
	}
	for _, e := range ct.Evidence {
		ev := e
		ev.Triple = e.Triple.Clone()
		r.Evidence = append(r.Evidence, EvidenceRow{ExistingTriple: ev, Presence: PresenceUnknown})
	}
	return r
}

// carryInFlight copies the in-flight marks of old, the same key in the
// previous generation, onto r.
func (r *Row) carryInFlight(old *Row) {
	r.InFlight = old.InFlight
	for i := range r.Evidence {
		if ev, _ := old.evidence(r.Evidence[i].Key); ev != nil {
			r.Evidence[i].InFlight = ev.InFlight
		}
	}
}

func (r *Row) clone(mode Mode) Row {
	c := *r
	c.Triple = r.Triple.Clone()
	c.Escalation = cloneTriples(r.Escalation)
	c.RemovedEvidence = cloneTriples(r.RemovedEvidence)
	if r.Evidence != nil {
		c.Evidence = make([]EvidenceRow, len(r.Evidence))
		for i, e := range r.Evidence {
			c.Evidence[i] = e
			c.Evidence[i].Triple = e.Triple.Clone()
		}
	}
	c.Actions = r.allowed(mode)
	return c
}

func (r *Row) evidence(evKey string) (*EvidenceRow, int) {
	for i := range r.Evidence {
		if r.Evidence[i].Key == evKey {
			return &r.Evidence[i], i
		}
	}
	return nil, -1
}

// allowed lists the actions the row offers right now.
//
//	exists             remove (unless presence was found absent)
//	conflicts/possible add_forced, discard (article), remove_evidence
//	none               add, add_forced after an escalation, discard (article)
func (r *Row) allowed(mode Mode) []Action {
	if r.InFlight != "" {
		return nil
	}
	var out []Action
	switch r.Outcome {
	case model.OutcomeExists:
		if r.Presence != PresenceAbsent {
			out = append(out, ActionRemove)
		}
	case model.OutcomeConflicts, model.OutcomePossible:
		out = append(out, ActionAddForced)
		if mode == ModeArticle {
			out = append(out, ActionDiscard)
		}
		if len(r.Evidence) > 0 {
			out = append(out, ActionRemoveEvidence)
		}
	case model.OutcomeNone:
		out = append(out, ActionAdd)
		if r.Escalated {
			out = append(out, ActionAddForced)
		}
		if mode == ModeArticle {
			out = append(out, ActionDiscard)
		}
	}
	return out
}

func (r *Row) allows(mode Mode, action Action) bool {
	return slices.Contains(r.allowed(mode), action)
}

func checkAllowed(r *Row, mode Mode, action Action) error {
	if r.InFlight != "" {
		return fmt.Errorf("%w: %s on %s", ErrActionInFlight, r.InFlight, r.Key)
	}
	if !r.allows(mode, action) {
		return fmt.Errorf("%w: %s on %s row %s", ErrIllegalAction, action, r.Outcome, r.Key)
	}
	return nil
}

// Resolution records a row that left its bucket.
type Resolution struct {
	Key     string        `json:"key"`
	Triple  model.Triple  `json:"triple"`
	Outcome model.Outcome `json:"result"`
	Action  Action        `json:"action"`
	State   State         `json:"state"`
	At      time.Time     `json:"at"`
}

// Message is the indicator that replaces the row's controls.
func (r Resolution) Message() string {
	switch r.Action {
	case ActionRemove:
		return "Removed from Knowledge Graph"
	case ActionDiscard:
		return "Discarded"
	default:
		return "Added to Knowledge Graph"
	}
}

func cloneTriples(ts []model.Triple) []model.Triple {
	if ts == nil {
		return nil
	}
	out := make([]model.Triple, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}
