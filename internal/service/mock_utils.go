package service

import (
	"context"
	"sync"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// The mocks below are shared by the tests of every package that sits on top
// of the collaborators. They are safe for concurrent use.

// MockFactChecker answers every Check* call with Response.
type MockFactChecker struct {
	mu sync.Mutex

	Response []model.SentenceCheck
	Err      error

	// Presence maps model.KeyFor("", triple) to the presence answer.
	// Missing triples are reported as none.
	Presence    map[string]model.Outcome
	PresenceErr error

	Calls         []string
	LastMode      model.MatchMode
	LastTriples   []model.Triple
	LastSentences []model.PendingSentence
	LastText      string
	LastURL       string
}

var _ FactChecker = (*MockFactChecker)(nil)

func (m *MockFactChecker) record(call string, mode model.MatchMode) ([]model.SentenceCheck, error) {
	m.Calls = append(m.Calls, call)
	m.LastMode = mode
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockFactChecker) CheckTriples(ctx context.Context, mode model.MatchMode, triples []model.Triple) ([]model.SentenceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastTriples = triples
	return m.record("triples", mode)
}

func (m *MockFactChecker) CheckSentences(ctx context.Context, mode model.MatchMode, sentences []model.PendingSentence) ([]model.SentenceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastSentences = sentences
	return m.record("sentences", mode)
}

func (m *MockFactChecker) CheckText(ctx context.Context, mode model.MatchMode, text string, scope model.ExtractionScope) ([]model.SentenceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastText = text
	return m.record("text", mode)
}

func (m *MockFactChecker) CheckURL(ctx context.Context, mode model.MatchMode, articleURL string, scope model.ExtractionScope) ([]model.SentenceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastURL = articleURL
	return m.record("url", mode)
}

func (m *MockFactChecker) VerifyPresence(ctx context.Context, mode model.MatchMode, triple model.Triple) (model.CheckedTriple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "presence")
	m.LastMode = mode
	if m.PresenceErr != nil {
		return model.CheckedTriple{}, m.PresenceErr
	}
	outcome, ok := m.Presence[model.KeyFor("", triple)]
	if !ok {
		outcome = model.OutcomeNone
	}
	return model.CheckedTriple{Triple: triple, Result: string(outcome)}, nil
}

func (m *MockFactChecker) SetPresence(t model.Triple, outcome model.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Presence == nil {
		m.Presence = make(map[string]model.Outcome)
	}
	m.Presence[model.KeyFor("", t)] = outcome
}

func (m *MockFactChecker) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// MockGraph keeps an in-memory list of graph triples.
type MockGraph struct {
	mu sync.Mutex

	// Conflicts maps model.KeyFor("", triple) to the graph triples a plain
	// insert of that triple contradicts.
	Conflicts map[string][]model.Triple
	Triples   []model.Triple

	InsertErr error
	ForceErr  error
	DeleteErr error
	EquateErr error
	EntityErr error

	// Block, when set, holds every mutation until it receives or is closed.
	Block chan struct{}

	Inserted []model.Triple
	Forced   []model.Triple
	Deleted  []model.Triple
	Equated  [][2]string
}

var _ GraphUpdater = (*MockGraph)(nil)

func (m *MockGraph) wait(ctx context.Context) error {
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockGraph) Insert(ctx context.Context, triples []model.Triple) (*model.ConflictReport, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}

	var conflicts []model.Conflict
	for _, t := range triples {
		if existing, ok := m.Conflicts[model.KeyFor("", t)]; ok {
			toInsert := t.Clone()
			conflicts = append(conflicts, model.Conflict{ToBeInserted: &toInsert, InKnowledgeGraph: existing})
			continue
		}
		m.Inserted = append(m.Inserted, t.Clone())
		m.Triples = append(m.Triples, t.Clone())
	}
	if len(conflicts) > 0 {
		return &model.ConflictReport{Conflicts: conflicts}, nil
	}
	return nil, nil
}

func (m *MockGraph) ForceInsert(ctx context.Context, triples []model.Triple) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceErr != nil {
		return m.ForceErr
	}
	for _, t := range triples {
		m.Forced = append(m.Forced, t.Clone())
		m.Triples = append(m.Triples, t.Clone())
	}
	return nil
}

func (m *MockGraph) Delete(ctx context.Context, triple model.Triple) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, triple.Clone())
	kept := m.Triples[:0]
	for _, t := range m.Triples {
		if !t.Equal(triple) {
			kept = append(kept, t)
		}
	}
	m.Triples = kept
	return nil
}

func (m *MockGraph) Equate(ctx context.Context, entityA, entityB string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EquateErr != nil {
		return m.EquateErr
	}
	m.Equated = append(m.Equated, [2]string{entityA, entityB})
	return nil
}

func (m *MockGraph) Entity(ctx context.Context, subject string) ([]model.Triple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EntityErr != nil {
		return nil, m.EntityErr
	}
	var out []model.Triple
	for _, t := range m.Triples {
		if t.Subject == subject {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (m *MockGraph) Contains(t model.Triple) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Triples {
		if existing.Equal(t) {
			return true
		}
	}
	return false
}

// StatusReply is one answer of MockArticles.UpdateStatus.
type StatusReply struct {
	Status model.JobStatus
	Err    error
}

// MockArticles serves articles and pending triples from memory. MarkAdded
// flags the pending triple as added; DiscardPending removes it.
type MockArticles struct {
	mu sync.Mutex

	Articles []model.Article
	Pending  map[string][]model.PendingSentence

	// StatusReplies is consumed one per poll; once empty the job is done.
	StatusReplies []StatusReply

	ArticlesErr error
	PendingErr  error
	MarkErr     error
	DiscardErr  error
	SubmitErr   error
	TriggerErr  error

	Marked    []model.ArticleTriples
	Discarded []model.ArticleTriples
	Submitted []string
	Triggers  []model.ExtractionScope
	Polls     int
}

var _ ArticleService = (*MockArticles)(nil)

func (m *MockArticles) ExtractedArticles(ctx context.Context) ([]model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ArticlesErr != nil {
		return nil, m.ArticlesErr
	}
	return append([]model.Article(nil), m.Articles...), nil
}

func (m *MockArticles) PendingTriples(ctx context.Context, source string) ([]model.PendingSentence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PendingErr != nil {
		return nil, m.PendingErr
	}
	return append([]model.PendingSentence(nil), m.Pending[source]...), nil
}

func (m *MockArticles) MarkAdded(ctx context.Context, triples model.ArticleTriples) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.Marked = append(m.Marked, triples)
	m.update(triples, func(pt *model.PendingTriple) bool {
		pt.Added = true
		return true
	})
	return nil
}

func (m *MockArticles) DiscardPending(ctx context.Context, triples model.ArticleTriples) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DiscardErr != nil {
		return m.DiscardErr
	}
	m.Discarded = append(m.Discarded, triples)
	m.update(triples, func(*model.PendingTriple) bool { return false })
	return nil
}

// update applies fn to each pending triple named in triples; fn returning
// false drops the triple.
func (m *MockArticles) update(triples model.ArticleTriples, fn func(*model.PendingTriple) bool) {
	sentences := m.Pending[triples.Source]
	for _, target := range triples.Triples {
		for si := range sentences {
			if sentences[si].Sentence != target.Sentence {
				continue
			}
			kept := sentences[si].Triples[:0]
			for _, pt := range sentences[si].Triples {
				match := false
				for _, tt := range target.Triples {
					if pt.Triple.Equal(tt.Triple) {
						match = true
						break
					}
				}
				if match && !fn(&pt) {
					continue
				}
				kept = append(kept, pt)
			}
			sentences[si].Triples = kept
		}
	}
}

func (m *MockArticles) SubmitArticle(ctx context.Context, articleURL string, scope model.ExtractionScope, autoAdd bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	m.Submitted = append(m.Submitted, articleURL)
	return nil
}

func (m *MockArticles) TriggerUpdate(ctx context.Context, scope model.ExtractionScope, autoAdd bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TriggerErr != nil {
		return m.TriggerErr
	}
	m.Triggers = append(m.Triggers, scope)
	return nil
}

func (m *MockArticles) UpdateStatus(ctx context.Context) (model.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Polls++
	if len(m.StatusReplies) == 0 {
		return model.JobDone, nil
	}
	reply := m.StatusReplies[0]
	m.StatusReplies = m.StatusReplies[1:]
	return reply.Status, reply.Err
}

func (m *MockArticles) PollCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Polls
}

func (m *MockArticles) SetPending(source string, sentences []model.PendingSentence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Pending == nil {
		m.Pending = make(map[string][]model.PendingSentence)
	}
	m.Pending[source] = sentences
}
