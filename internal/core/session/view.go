package session

import (
	"slices"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// View is a consistent copy of the whole session.
type View struct {
	Mode       Mode                    `json:"mode"`
	MatchMode  model.MatchMode         `json:"match_mode"`
	Article    string                  `json:"article,omitempty"`
	Generation uint64                  `json:"generation"`
	Buckets    map[model.Outcome][]Row `json:"buckets"`
	Resolved   []Resolution            `json:"resolved,omitempty"`
	Pending    []model.PendingSentence `json:"pending,omitempty"`
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Mode:       s.mode,
		MatchMode:  s.matchMode,
		Article:    s.article,
		Generation: s.generation,
		Buckets:    make(map[model.Outcome][]Row, 4),
		Pending:    clonePending(s.pending),
	}
	for _, o := range model.Outcomes() {
		v.Buckets[o] = []Row{}
	}
	for _, key := range s.order {
		r := s.rows[key]
		v.Buckets[r.Outcome] = append(v.Buckets[r.Outcome], r.clone(s.mode))
	}
	for _, res := range s.resolved {
		v.Resolved = append(v.Resolved, res)
	}
	slices.SortStableFunc(v.Resolved, func(a, b Resolution) int {
		return a.At.Compare(b.At)
	})
	return v
}

// Bucket returns the rows currently holding outcome o, in classification order.
func (s *Session) Bucket(o model.Outcome) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Row
	for _, key := range s.order {
		if r := s.rows[key]; r.Outcome == o {
			out = append(out, r.clone(s.mode))
		}
	}
	return out
}

func (s *Session) Row(key string) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return Row{}, false
	}
	return r.clone(s.mode), true
}

func (s *Session) Resolution(key string) (Resolution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resolved[key]
	return res, ok
}

// Pending returns the article's pending collection as pruned by discards
// and adds made in this session.
func (s *Session) Pending() []model.PendingSentence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePending(s.pending)
}

// Len is the number of rows still in a bucket.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
