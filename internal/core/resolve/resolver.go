package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/albertus-andito/fake-news-detection/internal/core/classify"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

// Resolver runs the verifier's actions against the collaborators and moves
// rows of its session accordingly.
type Resolver struct {
	Session    *session.Session
	Graph      service.GraphUpdater
	Articles   service.ArticleService
	Classifier *classify.Classifier
	Logger     *log.Logger

	// MatchMode is used for presence checks outside a session.
	MatchMode model.MatchMode
}

func NewResolver(s *session.Session, graph service.GraphUpdater, articles service.ArticleService, c *classify.Classifier, mode model.MatchMode, logger *log.Logger) *Resolver {
	return &Resolver{
		Session:    s,
		Graph:      graph,
		Articles:   articles,
		Classifier: c,
		Logger:     logger,
		MatchMode:  mode,
	}
}

// Add inserts a none row. If the graph now reports conflicts the row is
// escalated and a *ConflictError carrying the reported set is returned;
// nothing is force-inserted.
func (r *Resolver) Add(ctx context.Context, key string) error {
	row, err := r.Session.Begin(key, session.ActionAdd)
	if err != nil {
		return err
	}

	report, err := r.Graph.Insert(ctx, []model.Triple{row.Triple})
	if err != nil {
		return r.fail(key, session.ActionAdd, "insert", err)
	}
	if report != nil {
		conflicts := report.Existing()
		r.Session.Escalate(key, conflicts)
		r.Logger.Warn("insert refused", "key", key, "triple", row.Triple.String(), "conflicts", len(conflicts), "message", report.Message)
		return &ConflictError{Key: key, Triple: row.Triple, Conflicts: conflicts}
	}

	if row.Article != "" {
		if err := r.Articles.MarkAdded(ctx, model.SingleArticleTriple(row.Article, row.Sentence, row.Triple)); err != nil {
			r.Logger.Warn("triple inserted but pending record not marked added", "key", key, "triple", row.Triple.String(), "article", row.Article)
			return r.fail(key, session.ActionAdd, "mark added", fmt.Errorf("%w: %w", ErrPartiallyApplied, err))
		}
	}

	r.complete(key, session.ActionAdd)
	return nil
}

// AddForced inserts a row bypassing the conflict check. Article rows go
// through the article service so the pending triple is flagged as added.
func (r *Resolver) AddForced(ctx context.Context, key string, confirmed bool) error {
	if err := r.Session.Check(key, session.ActionAddForced); err != nil {
		return err
	}
	if !confirmed {
		return r.confirmation(key, session.ActionAddForced)
	}

	row, err := r.Session.Begin(key, session.ActionAddForced)
	if err != nil {
		return err
	}

	if row.Article != "" {
		err = r.Articles.MarkAdded(ctx, model.SingleArticleTriple(row.Article, row.Sentence, row.Triple))
	} else {
		err = r.Graph.ForceInsert(ctx, []model.Triple{row.Triple})
	}
	if err != nil {
		return r.fail(key, session.ActionAddForced, "force insert", err)
	}

	r.complete(key, session.ActionAddForced)
	return nil
}

// VerifyPresence re-checks an exists row against the graph and records the
// answer on the row.
func (r *Resolver) VerifyPresence(ctx context.Context, key string) (session.Presence, error) {
	row, ok := r.Session.Row(key)
	if !ok {
		return session.PresenceUnknown, fmt.Errorf("%w: %s", session.ErrUnknownKey, key)
	}
	if row.Outcome != model.OutcomeExists {
		return session.PresenceUnknown, fmt.Errorf("%w: presence of a %s row", session.ErrIllegalAction, row.Outcome)
	}

	p, err := r.presence(ctx, r.Session.MatchMode(), row.Triple)
	if err != nil {
		r.Logger.Error("presence check failed", "op", "verify", "key", key, "err", err)
		return session.PresenceUnknown, err
	}
	r.Session.SetPresence(key, p)
	return p, nil
}

// Remove deletes an exists row after confirming it is still in the graph.
// A triple that is gone is reported as ErrNotPresent and its control hidden.
func (r *Resolver) Remove(ctx context.Context, key string, confirmed bool) error {
	if err := r.Session.Check(key, session.ActionRemove); err != nil {
		return err
	}
	if !confirmed {
		return r.confirmation(key, session.ActionRemove)
	}

	row, err := r.Session.Begin(key, session.ActionRemove)
	if err != nil {
		return err
	}

	p, err := r.presence(ctx, r.Session.MatchMode(), row.Triple)
	if err != nil {
		r.Session.Fail(key, session.ActionRemove, err)
		r.Logger.Error("presence check failed", "op", "remove", "key", key, "err", err)
		return err
	}
	r.Session.SetPresence(key, p)
	if p != session.PresenceConfirmed {
		r.Session.Abort(key, session.ActionRemove)
		return fmt.Errorf("%w: %s", ErrNotPresent, row.Triple)
	}

	if err := r.Graph.Delete(ctx, row.Triple); err != nil {
		return r.fail(key, session.ActionRemove, "delete", err)
	}

	r.complete(key, session.ActionRemove)
	return nil
}

// VerifyEvidence re-checks one evidence row of a conflicts/possible row.
func (r *Resolver) VerifyEvidence(ctx context.Context, key, evKey string) (session.Presence, error) {
	ev, err := r.evidence(key, evKey)
	if err != nil {
		return session.PresenceUnknown, err
	}
	p, err := r.presence(ctx, r.Session.MatchMode(), ev.Triple)
	if err != nil {
		r.Logger.Error("presence check failed", "op", "verify evidence", "key", evKey, "err", err)
		return session.PresenceUnknown, err
	}
	r.Session.SetEvidencePresence(key, evKey, p)
	return p, nil
}

// RemoveEvidence deletes one evidence triple from the graph. The parent row
// keeps its outcome until the session is classified again.
func (r *Resolver) RemoveEvidence(ctx context.Context, key, evKey string, confirmed bool) error {
	if !confirmed {
		ev, err := r.evidence(key, evKey)
		if err != nil {
			return err
		}
		return &ConfirmationRequired{Action: session.ActionRemoveEvidence, Key: evKey, Triple: ev.Triple}
	}

	ev, err := r.Session.BeginEvidence(key, evKey)
	if err != nil {
		return err
	}

	p, err := r.presence(ctx, r.Session.MatchMode(), ev.Triple)
	if err != nil {
		r.Session.FailEvidence(key, evKey, err)
		r.Logger.Error("presence check failed", "op", "remove evidence", "key", evKey, "err", err)
		return err
	}
	if p != session.PresenceConfirmed {
		r.Session.SetEvidencePresence(key, evKey, p)
		return fmt.Errorf("%w: %s", ErrNotPresent, ev.Triple)
	}

	if err := r.Graph.Delete(ctx, ev.Triple); err != nil {
		r.Session.FailEvidence(key, evKey, err)
		r.Logger.Error("action failed", "op", "delete evidence", "key", evKey, "err", err)
		return &MutationError{Op: "delete evidence", Key: evKey, Err: err}
	}

	r.Session.CompleteEvidence(key, evKey)
	r.Logger.Info("evidence removed", "key", key, "evidence", evKey)
	return nil
}

// Discard drops a pending article triple. It never touches the graph.
func (r *Resolver) Discard(ctx context.Context, key string, confirmed bool) error {
	if err := r.Session.Check(key, session.ActionDiscard); err != nil {
		return err
	}
	if !confirmed {
		return r.confirmation(key, session.ActionDiscard)
	}

	row, err := r.Session.Begin(key, session.ActionDiscard)
	if err != nil {
		return err
	}

	article := row.Article
	if article == "" {
		article = r.Session.Article()
	}
	if err := r.Articles.DiscardPending(ctx, model.SingleArticleTriple(article, row.Sentence, row.Triple)); err != nil {
		return r.fail(key, session.ActionDiscard, "discard", err)
	}

	r.complete(key, session.ActionDiscard)
	return nil
}

// Equate declares two entity URIs equivalent. It does not touch the session.
func (r *Resolver) Equate(ctx context.Context, entityA, entityB string) error {
	for _, e := range []string{entityA, entityB} {
		if err := classify.ValidateURL(e); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEntity, err)
		}
	}
	if entityA == entityB {
		return fmt.Errorf("%w: an entity cannot be equated with itself", ErrInvalidEntity)
	}

	if err := r.Graph.Equate(ctx, entityA, entityB); err != nil {
		r.Logger.Error("action failed", "op", "equate", "entity_a", entityA, "entity_b", entityB, "err", err)
		return &MutationError{Op: "equate", Err: err}
	}
	r.Logger.Info("entities equated", "entity_a", entityA, "entity_b", entityB)
	return nil
}

// AddTriples inserts verifier-entered triples outside any session. Without
// force, conflicts come back as a *ConflictError and the caller may retry
// with force.
func (r *Resolver) AddTriples(ctx context.Context, triples []model.Triple, force bool) error {
	if len(triples) == 0 {
		return fmt.Errorf("%w: no triples", classify.ErrInvalidInput)
	}
	for i, t := range triples {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: triple %d: %v", classify.ErrInvalidInput, i, err)
		}
	}

	if force {
		if err := r.Graph.ForceInsert(ctx, triples); err != nil {
			r.Logger.Error("action failed", "op", "force insert", "err", err)
			return &MutationError{Op: "force insert", Err: err}
		}
		r.Logger.Info("triples force-inserted", "count", len(triples))
		return nil
	}

	report, err := r.Graph.Insert(ctx, triples)
	if err != nil {
		r.Logger.Error("action failed", "op", "insert", "err", err)
		return &MutationError{Op: "insert", Err: err}
	}
	if report != nil {
		r.Logger.Warn("insert refused", "count", len(triples), "conflicts", len(report.Existing()), "message", report.Message)
		return &ConflictError{Triple: triples[0], Conflicts: report.Existing()}
	}
	r.Logger.Info("triples inserted", "count", len(triples))
	return nil
}

// RemoveTriple deletes t after confirming it is in the graph. Used by the
// entity explorer.
func (r *Resolver) RemoveTriple(ctx context.Context, t model.Triple, confirmed bool) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", classify.ErrInvalidInput, err)
	}
	if !confirmed {
		return &ConfirmationRequired{Action: session.ActionRemove, Key: model.KeyFor("", t), Triple: t}
	}

	p, err := r.presence(ctx, r.MatchMode, t)
	if err != nil {
		return err
	}
	if p != session.PresenceConfirmed {
		return fmt.Errorf("%w: %s", ErrNotPresent, t)
	}
	if err := r.Graph.Delete(ctx, t); err != nil {
		r.Logger.Error("action failed", "op", "delete", "triple", t.String(), "err", err)
		return &MutationError{Op: "delete", Key: model.KeyFor("", t), Err: err}
	}
	r.Logger.Info("triple removed", "triple", t.String())
	return nil
}

func (r *Resolver) presence(ctx context.Context, mode model.MatchMode, t model.Triple) (session.Presence, error) {
	ok, err := r.Classifier.Present(ctx, mode, t)
	if err != nil {
		return session.PresenceUnknown, err
	}
	if ok {
		return session.PresenceConfirmed, nil
	}
	return session.PresenceAbsent, nil
}

func (r *Resolver) evidence(key, evKey string) (model.ExistingTriple, error) {
	row, ok := r.Session.Row(key)
	if !ok {
		return model.ExistingTriple{}, fmt.Errorf("%w: %s", session.ErrUnknownKey, key)
	}
	for _, ev := range row.Evidence {
		if ev.Key == evKey {
			return ev.ExistingTriple, nil
		}
	}
	return model.ExistingTriple{}, fmt.Errorf("%w: evidence %s of %s", session.ErrUnknownKey, evKey, key)
}

func (r *Resolver) confirmation(key string, action session.Action) error {
	row, ok := r.Session.Row(key)
	if !ok {
		return fmt.Errorf("%w: %s", session.ErrUnknownKey, key)
	}
	c := &ConfirmationRequired{Action: action, Key: key, Triple: row.Triple}
	if action == session.ActionAddForced {
		c.Conflicts = row.Escalation
		for _, ev := range row.Evidence {
			c.Conflicts = append(c.Conflicts, ev.Triple)
		}
	}
	return c
}

func (r *Resolver) fail(key string, action session.Action, op string, err error) error {
	r.Session.Fail(key, action, err)
	r.Logger.Error("action failed", "op", op, "key", key, "err", err)
	return &MutationError{Op: op, Key: key, Err: err}
}

func (r *Resolver) complete(key string, action session.Action) {
	if _, ok := r.Session.Complete(key, action); !ok {
		r.Logger.Debug("row left the session before its action completed", "key", key, "action", action)
		return
	}
	r.Logger.Info("row resolved", "key", key, "action", action)
}

// IsConfirmation reports whether err asks for confirmation.
func IsConfirmation(err error) (*ConfirmationRequired, bool) {
	var c *ConfirmationRequired
	ok := errors.As(err, &c)
	return c, ok
}
