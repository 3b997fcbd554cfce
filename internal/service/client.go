package service

import (
	"context"
	"errors"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// ErrBusy is returned when a collaborator refuses a request because an
// equivalent one is still running.
var ErrBusy = errors.New("collaborator busy")

// FactChecker classifies triples against the knowledge graph. The matching
// mode is forwarded verbatim.
type FactChecker interface {
	CheckTriples(ctx context.Context, mode model.MatchMode, triples []model.Triple) ([]model.SentenceCheck, error)
	CheckSentences(ctx context.Context, mode model.MatchMode, sentences []model.PendingSentence) ([]model.SentenceCheck, error)
	CheckText(ctx context.Context, mode model.MatchMode, text string, scope model.ExtractionScope) ([]model.SentenceCheck, error)
	CheckURL(ctx context.Context, mode model.MatchMode, articleURL string, scope model.ExtractionScope) ([]model.SentenceCheck, error)
	VerifyPresence(ctx context.Context, mode model.MatchMode, triple model.Triple) (model.CheckedTriple, error)
}

// GraphUpdater mutates the knowledge graph.
//
// Insert checks for conflicts first: a non-nil report means the conflicting
// triples were not inserted.
type GraphUpdater interface {
	Insert(ctx context.Context, triples []model.Triple) (*model.ConflictReport, error)
	ForceInsert(ctx context.Context, triples []model.Triple) error
	Delete(ctx context.Context, triple model.Triple) error
	Equate(ctx context.Context, entityA, entityB string) error
	Entity(ctx context.Context, subject string) ([]model.Triple, error)
}

// ArticleService exposes extracted articles, their pending triples and the
// extraction/update job.
type ArticleService interface {
	ExtractedArticles(ctx context.Context) ([]model.Article, error)
	PendingTriples(ctx context.Context, source string) ([]model.PendingSentence, error)
	MarkAdded(ctx context.Context, triples model.ArticleTriples) error
	DiscardPending(ctx context.Context, triples model.ArticleTriples) error
	SubmitArticle(ctx context.Context, articleURL string, scope model.ExtractionScope, autoAdd bool) error
	TriggerUpdate(ctx context.Context, scope model.ExtractionScope, autoAdd bool) error
	UpdateStatus(ctx context.Context) (model.JobStatus, error)
}
