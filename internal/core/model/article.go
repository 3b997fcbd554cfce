package model

import (
	"fmt"
	"time"
)

// Article is a news article whose triples have been extracted.
type Article struct {
	Source    string  `json:"source"`
	Headlines string  `json:"headlines"`
	Date      float64 `json:"date"` // epoch seconds
}

func (a Article) Published() time.Time {
	return time.Unix(int64(a.Date), 0).UTC()
}

// PendingSentence holds the pending triples extracted from one sentence.
type PendingSentence struct {
	Sentence string          `json:"sentence"`
	Triples  []PendingTriple `json:"triples"`
}

// ArticleTriples is the article-scoped structure used for article inserts
// and discards.
type ArticleTriples struct {
	Source  string            `json:"source"`
	Triples []PendingSentence `json:"triples"`
}

// SingleArticleTriple wraps one triple of one sentence for an article-scoped call.
func SingleArticleTriple(source, sentence string, t Triple) ArticleTriples {
	return ArticleTriples{
		Source: source,
		Triples: []PendingSentence{{
			Sentence: sentence,
			Triples:  []PendingTriple{{Triple: t.Clone(), Added: false}},
		}},
	}
}

// ExtractionScope decides which relations the extraction keeps.
type ExtractionScope string

const (
	ScopeNounPhrases   ExtractionScope = "noun_phrases"
	ScopeNamedEntities ExtractionScope = "named_entities"
	ScopeAll           ExtractionScope = "all"
)

func ParseExtractionScope(s string) (ExtractionScope, error) {
	switch ExtractionScope(s) {
	case "", ScopeNounPhrases:
		return ScopeNounPhrases, nil
	case ScopeNamedEntities:
		return ScopeNamedEntities, nil
	case ScopeAll:
		return ScopeAll, nil
	default:
		return "", fmt.Errorf("unknown extraction scope %q", s)
	}
}

// JobStatus is the observed state of an update job.
type JobStatus string

const (
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobTimedOut JobStatus = "timed_out"
)

// UpdateJob is an extraction/update run triggered by the verifier.
type UpdateJob struct {
	ID         string          `json:"id"`
	Scope      ExtractionScope `json:"scope"`
	AutoAdd    bool            `json:"auto_add"`
	Status     JobStatus       `json:"status"`
	Polls      int             `json:"polls"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Error      string          `json:"error,omitempty"`
}
