package classify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

var (
	// ErrClassificationFailed wraps every fact-checking failure. Callers keep
	// their previous session when they see it.
	ErrClassificationFailed = errors.New("classification failed")
	ErrInvalidInput         = errors.New("invalid classification input")
)

// Result is a classification partitioned into rows, in response order.
type Result struct {
	Mode    model.MatchMode
	Article string
	Rows    []model.ClassifiedTriple
}

// Bucket returns the rows with the given outcome, in order.
func (r *Result) Bucket(o model.Outcome) []model.ClassifiedTriple {
	var out []model.ClassifiedTriple
	for _, row := range r.Rows {
		if row.Outcome == o {
			out = append(out, row)
		}
	}
	return out
}

type Classifier struct {
	FactChecker service.FactChecker
}

func NewClassifier(fc service.FactChecker) *Classifier {
	return &Classifier{FactChecker: fc}
}

// Triples classifies verifier-entered triples that have no sentence.
func (c *Classifier) Triples(ctx context.Context, mode model.MatchMode, triples []model.Triple) (*Result, error) {
	if len(triples) == 0 {
		return nil, fmt.Errorf("%w: no triples", ErrInvalidInput)
	}
	for i, t := range triples {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: triple %d: %v", ErrInvalidInput, i, err)
		}
	}

	checks, err := c.FactChecker.CheckTriples(ctx, mode, triples)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	return Partition(checks, mode, "")
}

// Sentences classifies the pending triples of an article. Triples already
// added to the graph are left out; an article with nothing left to review
// yields an empty result without calling the fact checker.
func (c *Classifier) Sentences(ctx context.Context, mode model.MatchMode, article string, sentences []model.PendingSentence) (*Result, error) {
	pending := make([]model.PendingSentence, 0, len(sentences))
	for _, s := range sentences {
		var open []model.PendingTriple
		for i, pt := range s.Triples {
			if pt.Added {
				continue
			}
			if err := pt.Triple.Validate(); err != nil {
				return nil, fmt.Errorf("%w: sentence %q triple %d: %v", ErrInvalidInput, s.Sentence, i, err)
			}
			open = append(open, pt)
		}
		if len(open) > 0 {
			pending = append(pending, model.PendingSentence{Sentence: s.Sentence, Triples: open})
		}
	}
	if len(pending) == 0 {
		return &Result{Mode: mode, Article: article}, nil
	}

	checks, err := c.FactChecker.CheckSentences(ctx, mode, pending)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	return Partition(checks, mode, article)
}

// Text has the fact checker extract triples from free text and classify them.
func (c *Classifier) Text(ctx context.Context, mode model.MatchMode, text string, scope model.ExtractionScope) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}
	checks, err := c.FactChecker.CheckText(ctx, mode, text, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	return Partition(checks, mode, "")
}

// URL has the fact checker scrape the article at articleURL and classify it.
func (c *Classifier) URL(ctx context.Context, mode model.MatchMode, articleURL string, scope model.ExtractionScope) (*Result, error) {
	if err := ValidateURL(articleURL); err != nil {
		return nil, err
	}
	checks, err := c.FactChecker.CheckURL(ctx, mode, articleURL, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	return Partition(checks, mode, "")
}

// Present re-verifies that t is in the graph right now.
func (c *Classifier) Present(ctx context.Context, mode model.MatchMode, t model.Triple) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	checked, err := c.FactChecker.VerifyPresence(ctx, mode, t)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	outcome, err := model.ParseOutcome(checked.Result)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}
	return outcome == model.OutcomeExists, nil
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidInput, raw)
	}
	return nil
}

// Partition turns a fact-checking response into keyed rows. Evidence is kept
// only for conflicts and possible outcomes. A triple repeated within the same
// sentence keeps its first row. An unknown result fails the whole call.
func Partition(checks []model.SentenceCheck, mode model.MatchMode, article string) (*Result, error) {
	res := &Result{Mode: mode, Article: article}
	seen := make(map[string]struct{})

	for _, sc := range checks {
		for _, ct := range sc.Triples {
			outcome, err := model.ParseOutcome(ct.Result)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
			}

			key := model.KeyFor(sc.Sentence, ct.Triple)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			row := model.ClassifiedTriple{
				Key:      key,
				Sentence: sc.Sentence,
				Article:  article,
				Triple:   ct.Triple.Clone(),
				Outcome:  outcome,
			}
			if outcome.HasEvidence() {
				row.Evidence = evidence(ct.OtherTriples)
			}
			res.Rows = append(res.Rows, row)
		}
	}
	return res, nil
}

func evidence(others []model.ExistingTriple) []model.ExistingTriple {
	if len(others) == 0 {
		return nil
	}
	out := make([]model.ExistingTriple, 0, len(others))
	seen := make(map[string]struct{}, len(others))
	for _, o := range others {
		e := o
		e.Triple = o.Triple.Clone()
		if e.Key == "" {
			e.Key = model.KeyFor("", e.Triple)
		}
		if _, dup := seen[e.Key]; dup {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e)
	}
	return out
}
