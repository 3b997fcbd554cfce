package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/albertus-andito/fake-news-detection/internal/core/classify"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// Session is the live view of one classification. It is rebuilt wholesale
// by Rebuild and pruned one key at a time by Complete. Every mutation reads
// the current state under the lock; nothing is written back from a copy.
type Session struct {
	mu sync.Mutex

	mode       Mode
	matchMode  model.MatchMode
	article    string
	generation uint64

	rows     map[string]*Row
	order    []string
	resolved map[string]Resolution
	pending  []model.PendingSentence

	now func() time.Time
}

func New() *Session {
	return &Session{
		rows:     make(map[string]*Row),
		resolved: make(map[string]Resolution),
		now:      time.Now,
	}
}

// Rebuild replaces the whole session with res. pending is the article's
// pending collection the rows were built from (article mode only).
// A key that survives the rebuild keeps its in-flight action, so it still
// admits no second action until that one completes. It returns the new
// generation.
func (s *Session) Rebuild(mode Mode, res *classify.Result, pending []model.PendingSentence) uint64 {
	rows := make(map[string]*Row, len(res.Rows))
	order := make([]string, 0, len(res.Rows))
	for _, ct := range res.Rows {
		if _, dup := rows[ct.Key]; dup {
			continue
		}
		rows[ct.Key] = newRow(ct)
		order = append(order, ct.Key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, r := range rows {
		if old, ok := s.rows[key]; ok {
			r.carryInFlight(old)
		}
	}
	s.mode = mode
	s.matchMode = res.Mode
	s.article = res.Article
	s.rows = rows
	s.order = order
	s.resolved = make(map[string]Resolution)
	s.pending = clonePending(pending)
	s.generation++
	return s.generation
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) MatchMode() model.MatchMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchMode
}

func (s *Session) Article() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.article
}

// Check reports whether action may start on key, without starting it.
func (s *Session) Check(key string, action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return checkAllowed(r, s.mode, action)
}

// Begin marks action as in flight on key and returns the row as it was.
// Only one action per key may be in flight.
func (s *Session) Begin(key string, action Action) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := checkAllowed(r, s.mode, action); err != nil {
		return Row{}, err
	}
	snapshot := r.clone(s.mode)
	r.InFlight = action
	return snapshot, nil
}

// Complete consumes key after a successful action. Nothing else in the
// session changes except, for article rows, the pending collection. It
// reports false when the key is no longer in the session or action is not
// the one in flight on it.
func (s *Session) Complete(key string, action Action) (Resolution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok || r.InFlight != action {
		return Resolution{}, false
	}

	state := StateResolved
	switch action {
	case ActionDiscard:
		state = StateDiscarded
		s.dropPending(r)
	case ActionAdd, ActionAddForced:
		s.markPendingAdded(r)
	}

	res := Resolution{
		Key:     key,
		Triple:  r.Triple.Clone(),
		Outcome: r.Outcome,
		Action:  action,
		State:   state,
		At:      s.now(),
	}
	delete(s.rows, key)
	s.order = removeKey(s.order, key)
	s.resolved[key] = res
	return res, true
}

// Fail returns key to its pre-action outcome with the error recorded, so the
// action can be retried.
func (s *Session) Fail(key string, action Action, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok || r.InFlight != action {
		return
	}
	r.InFlight = ""
	r.State = StateError
	if err != nil {
		r.LastError = err.Error()
	}
}

// Abort clears an in-flight action without recording an error.
func (s *Session) Abort(key string, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[key]; ok && r.InFlight == action {
		r.InFlight = ""
	}
}

// Escalate records that the graph refused a plain Add, with the conflicts it
// reported (possibly none). The row stays in its bucket and now offers
// AddForced.
func (s *Session) Escalate(key string, conflicts []model.Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return
	}
	if r.InFlight == ActionAdd {
		r.InFlight = ""
	}
	r.State = StatePending
	r.LastError = ""
	r.Escalated = true
	r.Escalation = cloneTriples(conflicts)
}

func (s *Session) SetPresence(key string, p Presence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[key]; ok {
		r.Presence = p
	}
}

// BeginEvidence marks one evidence row of key as being removed.
func (s *Session) BeginEvidence(key, evKey string) (model.ExistingTriple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return model.ExistingTriple{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if !r.Outcome.HasEvidence() {
		return model.ExistingTriple{}, fmt.Errorf("%w: %s row %s has no evidence", ErrIllegalAction, r.Outcome, key)
	}
	ev, _ := r.evidence(evKey)
	if ev == nil {
		return model.ExistingTriple{}, fmt.Errorf("%w: evidence %s of %s", ErrUnknownKey, evKey, key)
	}
	if ev.InFlight {
		return model.ExistingTriple{}, fmt.Errorf("%w: evidence %s of %s", ErrActionInFlight, evKey, key)
	}
	if ev.Presence == PresenceAbsent {
		return model.ExistingTriple{}, fmt.Errorf("%w: evidence %s is no longer in the graph", ErrIllegalAction, evKey)
	}
	ev.InFlight = true
	out := ev.ExistingTriple
	out.Triple = ev.Triple.Clone()
	return out, nil
}

// CompleteEvidence drops the evidence row. The parent row keeps its outcome
// until the session is classified again.
func (s *Session) CompleteEvidence(key, evKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return false
	}
	ev, i := r.evidence(evKey)
	if ev == nil {
		return false
	}
	r.RemovedEvidence = append(r.RemovedEvidence, ev.Triple.Clone())
	r.Evidence = append(r.Evidence[:i], r.Evidence[i+1:]...)
	return true
}

func (s *Session) FailEvidence(key, evKey string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return
	}
	if ev, _ := r.evidence(evKey); ev != nil {
		ev.InFlight = false
		if err != nil {
			ev.LastError = err.Error()
		}
	}
}

func (s *Session) SetEvidencePresence(key, evKey string, p Presence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return
	}
	if ev, _ := r.evidence(evKey); ev != nil {
		ev.Presence = p
		ev.InFlight = false
	}
}

func (s *Session) dropPending(r *Row) {
	for si := range s.pending {
		if s.pending[si].Sentence != r.Sentence {
			continue
		}
		kept := s.pending[si].Triples[:0]
		for _, pt := range s.pending[si].Triples {
			if !pt.Triple.Equal(r.Triple) {
				kept = append(kept, pt)
			}
		}
		s.pending[si].Triples = kept
	}
}

func (s *Session) markPendingAdded(r *Row) {
	for si := range s.pending {
		if s.pending[si].Sentence != r.Sentence {
			continue
		}
		for ti := range s.pending[si].Triples {
			if s.pending[si].Triples[ti].Triple.Equal(r.Triple) {
				s.pending[si].Triples[ti].Added = true
			}
		}
	}
}

func removeKey(order []string, key string) []string {
	out := make([]string, 0, len(order))
	for _, k := range order {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func clonePending(in []model.PendingSentence) []model.PendingSentence {
	if in == nil {
		return nil
	}
	out := make([]model.PendingSentence, len(in))
	for i, ps := range in {
		out[i].Sentence = ps.Sentence
		out[i].Triples = make([]model.PendingTriple, len(ps.Triples))
		for j, pt := range ps.Triples {
			out[i].Triples[j] = model.PendingTriple{Triple: pt.Triple.Clone(), Added: pt.Added}
		}
	}
	return out
}
