package model

import (
	"encoding/json"
	"fmt"
)

// Outcome is the fact-checking classification of a candidate triple.
type Outcome string

const (
	OutcomeExists    Outcome = "exists"
	OutcomeConflicts Outcome = "conflicts"
	OutcomePossible  Outcome = "possible"
	OutcomeNone      Outcome = "none"
)

// Outcomes lists every outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeExists, OutcomePossible, OutcomeConflicts, OutcomeNone}
}

// ParseOutcome maps the service's result string onto an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeExists:
		return OutcomeExists, nil
	case OutcomeConflicts:
		return OutcomeConflicts, nil
	case OutcomePossible:
		return OutcomePossible, nil
	case OutcomeNone:
		return OutcomeNone, nil
	default:
		return "", fmt.Errorf("unknown fact-check result %q", s)
	}
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// HasEvidence reports whether the service attaches graph triples to this outcome.
func (o Outcome) HasEvidence() bool {
	switch o {
	case OutcomeConflicts, OutcomePossible:
		return true
	default:
		return false
	}
}

// Title is the heading of the outcome's table.
func (o Outcome) Title() string {
	switch o {
	case OutcomeExists:
		return "Exact Matches"
	case OutcomeConflicts:
		return "Conflicting Triples"
	case OutcomePossible:
		return "Possible Matches"
	case OutcomeNone:
		return "Unknown Triples"
	default:
		return string(o)
	}
}

// MatchMode selects the fact-checking strategy. It is forwarded verbatim.
type MatchMode string

const (
	MatchExact    MatchMode = "exact"
	MatchNonExact MatchMode = "non-exact"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchExact:
		return MatchExact, nil
	case MatchNonExact, "transitive", "nonexact":
		return MatchNonExact, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want exact or non-exact)", s)
	}
}
