package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/albertus-andito/fake-news-detection/internal/core/classify"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/core/resolve"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
	"github.com/albertus-andito/fake-news-detection/internal/core/updates"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

type Options struct {
	MatchMode    model.MatchMode
	PollInterval time.Duration
	MaxPolls     int
}

// Verifier ties one reconciliation session to the collaborators. A failed
// classification never touches the current session.
type Verifier struct {
	FactChecker service.FactChecker
	Graph       service.GraphUpdater
	Articles    service.ArticleService
	Classifier  *classify.Classifier
	Session     *session.Session
	Resolver    *resolve.Resolver
	Watcher     *updates.Watcher
	MatchMode   model.MatchMode
	Logger      *log.Logger

	mu       sync.Mutex
	articles []model.Article
	selected string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewVerifier(svc *service.Services, opts Options, logger *log.Logger) *Verifier {
	if opts.MatchMode == "" {
		opts.MatchMode = model.MatchExact
	}
	c := classify.NewClassifier(svc.FactChecker)
	s := session.New()
	ctx, cancel := context.WithCancel(context.Background())

	return &Verifier{
		FactChecker: svc.FactChecker,
		Graph:       svc.Graph,
		Articles:    svc.Articles,
		Classifier:  c,
		Session:     s,
		Resolver:    resolve.NewResolver(s, svc.Graph, svc.Articles, c, opts.MatchMode, logger),
		Watcher:     updates.NewWatcher(svc.Articles, opts.PollInterval, opts.MaxPolls, logger),
		MatchMode:   opts.MatchMode,
		Logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// CheckTriples classifies verifier-entered triples into a new session.
func (v *Verifier) CheckTriples(ctx context.Context, triples []model.Triple) (session.View, error) {
	res, err := v.Classifier.Triples(ctx, v.MatchMode, triples)
	if err != nil {
		v.Logger.Error("classification failed", "op", "check triples", "err", err)
		return session.View{}, err
	}
	return v.rebuild(session.ModeTriples, res, nil, ""), nil
}

func (v *Verifier) CheckText(ctx context.Context, text string, scope model.ExtractionScope) (session.View, error) {
	res, err := v.Classifier.Text(ctx, v.MatchMode, text, scope)
	if err != nil {
		v.Logger.Error("classification failed", "op", "check text", "err", err)
		return session.View{}, err
	}
	return v.rebuild(session.ModeText, res, nil, ""), nil
}

func (v *Verifier) CheckURL(ctx context.Context, articleURL string, scope model.ExtractionScope) (session.View, error) {
	res, err := v.Classifier.URL(ctx, v.MatchMode, articleURL, scope)
	if err != nil {
		v.Logger.Error("classification failed", "op", "check url", "url", articleURL, "err", err)
		return session.View{}, err
	}
	return v.rebuild(session.ModeText, res, nil, ""), nil
}

// ListArticles fetches the extracted articles, newest first.
func (v *Verifier) ListArticles(ctx context.Context) ([]model.Article, error) {
	articles, err := v.Articles.ExtractedArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	slices.SortStableFunc(articles, func(a, b model.Article) int {
		switch {
		case a.Date > b.Date:
			return -1
		case a.Date < b.Date:
			return 1
		default:
			return 0
		}
	})

	v.mu.Lock()
	v.articles = slices.Clone(articles)
	v.mu.Unlock()
	return articles, nil
}

// SelectArticle classifies the pending triples of source into a new article
// session.
func (v *Verifier) SelectArticle(ctx context.Context, source string) (session.View, error) {
	pending, err := v.Articles.PendingTriples(ctx, source)
	if err != nil {
		v.Logger.Error("pending triples fetch failed", "op", "select article", "article", source, "err", err)
		return session.View{}, fmt.Errorf("%w: pending triples of %s: %w", classify.ErrClassificationFailed, source, err)
	}
	return v.classifyArticle(ctx, source, pending)
}

// SubmitArticle has the article service extract a new article, then opens
// it like SelectArticle.
func (v *Verifier) SubmitArticle(ctx context.Context, articleURL string, scope model.ExtractionScope, autoAdd bool) (session.View, error) {
	if err := classify.ValidateURL(articleURL); err != nil {
		return session.View{}, err
	}
	if err := v.Articles.SubmitArticle(ctx, articleURL, scope, autoAdd); err != nil {
		v.Logger.Error("article submission failed", "op", "submit article", "url", articleURL, "err", err)
		return session.View{}, &resolve.MutationError{Op: "submit article", Err: err}
	}
	return v.SelectArticle(ctx, articleURL)
}

// StartUpdate triggers an update job and watches it in the background. On
// completion the article list and the selected article are refreshed once.
func (v *Verifier) StartUpdate(ctx context.Context, scope model.ExtractionScope, autoAdd bool) (model.UpdateJob, error) {
	job, err := v.Watcher.Trigger(ctx, scope, autoAdd)
	if err != nil {
		return model.UpdateJob{}, err
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		if _, err := v.Watcher.Wait(v.ctx, job, v.refresh); err != nil {
			v.Logger.Error("update job failed", "job", job.ID, "err", err)
		}
	}()
	return job, nil
}

// RunUpdate triggers an update job and blocks until it is done and the
// session refreshed.
func (v *Verifier) RunUpdate(ctx context.Context, scope model.ExtractionScope, autoAdd bool) (model.UpdateJob, error) {
	job, err := v.Watcher.Trigger(ctx, scope, autoAdd)
	if err != nil {
		return model.UpdateJob{}, err
	}
	return v.Watcher.Wait(ctx, job, v.refresh)
}

func (v *Verifier) UpdateStatus() (model.UpdateJob, bool) {
	return v.Watcher.Current()
}

// Entity lists the graph triples whose subject is subject.
func (v *Verifier) Entity(ctx context.Context, subject string) ([]model.Triple, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", classify.ErrInvalidInput)
	}
	triples, err := v.Graph.Entity(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", subject, err)
	}
	return triples, nil
}

func (v *Verifier) Snapshot() session.View {
	return v.Session.Snapshot()
}

func (v *Verifier) SelectedArticle() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// CachedArticles returns the article list as of the last fetch.
func (v *Verifier) CachedArticles() []model.Article {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.articles)
}

// Close stops background watchers. Completions arriving afterwards are
// dropped.
func (v *Verifier) Close() {
	v.cancel()
	v.wg.Wait()
}

// refresh runs once when an update job is done.
func (v *Verifier) refresh(ctx context.Context) error {
	source := v.SelectedArticle()

	var pending []model.PendingSentence
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := v.ListArticles(gctx)
		return err
	})
	if source != "" {
		g.Go(func() error {
			var err error
			pending, err = v.Articles.PendingTriples(gctx, source)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh after update: %w", err)
	}

	if source == "" || v.SelectedArticle() != source {
		return nil
	}
	if _, err := v.classifyArticle(ctx, source, pending); err != nil {
		return fmt.Errorf("refresh after update: %w", err)
	}
	v.Logger.Info("session refreshed after update", "article", source)
	return nil
}

func (v *Verifier) classifyArticle(ctx context.Context, source string, pending []model.PendingSentence) (session.View, error) {
	res, err := v.Classifier.Sentences(ctx, v.MatchMode, source, pending)
	if err != nil {
		v.Logger.Error("classification failed", "op", "classify article", "article", source, "err", err)
		return session.View{}, err
	}
	return v.rebuild(session.ModeArticle, res, pending, source), nil
}

func (v *Verifier) rebuild(mode session.Mode, res *classify.Result, pending []model.PendingSentence, article string) session.View {
	if v.ctx.Err() != nil {
		return v.Session.Snapshot()
	}
	v.mu.Lock()
	v.selected = article
	v.mu.Unlock()

	gen := v.Session.Rebuild(mode, res, pending)
	v.Logger.Debug("session rebuilt", "mode", mode, "rows", len(res.Rows), "generation", gen)
	return v.Session.Snapshot()
}
