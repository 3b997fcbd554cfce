package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

func triple(s, r string, objs ...string) model.Triple {
	return model.Triple{Subject: s, Relation: r, Objects: objs}
}

func checked(t model.Triple, result string, others ...model.Triple) model.CheckedTriple {
	ct := model.CheckedTriple{Triple: t, Result: result}
	for _, o := range others {
		ct.OtherTriples = append(ct.OtherTriples, model.ExistingTriple{Triple: o})
	}
	return ct
}

var (
	parisFrance  = triple("dbr:Paris", "dbo:capital", "dbr:France")
	parisGermany = triple("dbr:Paris", "dbo:capital", "dbr:Germany")
	berlin       = triple("dbr:Berlin", "dbo:country", "dbr:Germany")
	rome         = triple("dbr:Rome", "dbo:capital", "dbr:Italy")
)

func TestPartition_Exhaustive(t *testing.T) {
	checks := []model.SentenceCheck{
		{Sentence: "s1", Triples: []model.CheckedTriple{
			checked(parisFrance, "exists"),
			checked(parisGermany, "conflicts", parisFrance),
		}},
		{Sentence: "s2", Triples: []model.CheckedTriple{
			checked(berlin, "possible", triple("dbr:Berlin", "dbo:location", "dbr:Germany")),
			checked(rome, "none", parisFrance),
		}},
	}

	res, err := Partition(checks, model.MatchExact, "http://news/1")
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)

	total := 0
	for _, o := range model.Outcomes() {
		total += len(res.Bucket(o))
	}
	assert.Equal(t, 4, total)

	assert.Equal(t, parisFrance, res.Bucket(model.OutcomeExists)[0].Triple)
	assert.Equal(t, parisGermany, res.Bucket(model.OutcomeConflicts)[0].Triple)
	assert.Equal(t, berlin, res.Bucket(model.OutcomePossible)[0].Triple)
	assert.Equal(t, rome, res.Bucket(model.OutcomeNone)[0].Triple)

	conflict := res.Bucket(model.OutcomeConflicts)[0]
	require.Len(t, conflict.Evidence, 1)
	assert.Equal(t, model.KeyFor("", parisFrance), conflict.Evidence[0].Key)
	assert.Equal(t, "s1", conflict.Sentence)
	assert.Equal(t, "http://news/1", conflict.Article)

	// evidence attached to a none outcome is dropped
	assert.Empty(t, res.Bucket(model.OutcomeNone)[0].Evidence)
}

func TestPartition_KeysStableAndDistinct(t *testing.T) {
	checks := []model.SentenceCheck{{Sentence: "s1", Triples: []model.CheckedTriple{
		checked(parisFrance, "exists"),
		checked(rome, "none"),
	}}}

	first, err := Partition(checks, model.MatchExact, "")
	require.NoError(t, err)
	second, err := Partition(checks, model.MatchNonExact, "")
	require.NoError(t, err)

	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Key, second.Rows[i].Key)
	}
	assert.NotEqual(t, first.Rows[0].Key, first.Rows[1].Key)

	// same triple, different sentence: different row
	other, err := Partition([]model.SentenceCheck{{Sentence: "s2", Triples: []model.CheckedTriple{checked(parisFrance, "exists")}}}, model.MatchExact, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.Rows[0].Key, other.Rows[0].Key)
}

func TestPartition_DuplicateKeepsFirst(t *testing.T) {
	checks := []model.SentenceCheck{{Sentence: "s1", Triples: []model.CheckedTriple{
		checked(parisFrance, "exists"),
		checked(triple("dbr:Paris", "dbo:capital", "dbr:France"), "none"),
	}}}

	res, err := Partition(checks, model.MatchExact, "")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, model.OutcomeExists, res.Rows[0].Outcome)
}

func TestPartition_UnknownResult(t *testing.T) {
	checks := []model.SentenceCheck{{Triples: []model.CheckedTriple{checked(parisFrance, "maybe")}}}

	_, err := Partition(checks, model.MatchExact, "")
	assert.ErrorIs(t, err, ErrClassificationFailed)
}

func TestTriples(t *testing.T) {
	fc := &service.MockFactChecker{Response: []model.SentenceCheck{{Triples: []model.CheckedTriple{checked(parisFrance, "none")}}}}
	c := NewClassifier(fc)

	res, err := c.Triples(context.Background(), model.MatchNonExact, []model.Triple{parisFrance})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, model.MatchNonExact, fc.LastMode)
	assert.Equal(t, []string{"triples"}, fc.Calls)
}

func TestTriples_InvalidInput(t *testing.T) {
	fc := &service.MockFactChecker{}
	c := NewClassifier(fc)

	_, err := c.Triples(context.Background(), model.MatchExact, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = c.Triples(context.Background(), model.MatchExact, []model.Triple{{Subject: "a", Relation: "b"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, fc.Calls)
}

func TestTriples_ServiceFailure(t *testing.T) {
	cause := errors.New("connection refused")
	c := NewClassifier(&service.MockFactChecker{Err: cause})

	_, err := c.Triples(context.Background(), model.MatchExact, []model.Triple{parisFrance})
	assert.ErrorIs(t, err, ErrClassificationFailed)
	assert.ErrorIs(t, err, cause)
}

func TestSentences_SkipsAdded(t *testing.T) {
	fc := &service.MockFactChecker{Response: []model.SentenceCheck{{Sentence: "s1", Triples: []model.CheckedTriple{checked(rome, "none")}}}}
	c := NewClassifier(fc)

	sentences := []model.PendingSentence{
		{Sentence: "s1", Triples: []model.PendingTriple{{Triple: rome}, {Triple: parisFrance, Added: true}}},
		{Sentence: "s2", Triples: []model.PendingTriple{{Triple: berlin, Added: true}}},
	}
	res, err := c.Sentences(context.Background(), model.MatchExact, "http://news/1", sentences)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "http://news/1", res.Rows[0].Article)

	require.Len(t, fc.LastSentences, 1)
	assert.Equal(t, []model.PendingTriple{{Triple: rome}}, fc.LastSentences[0].Triples)
}

func TestSentences_NothingPending(t *testing.T) {
	fc := &service.MockFactChecker{}
	c := NewClassifier(fc)

	res, err := c.Sentences(context.Background(), model.MatchExact, "http://news/1", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, fc.Calls)
}

func TestTextAndURL(t *testing.T) {
	fc := &service.MockFactChecker{Response: []model.SentenceCheck{{Sentence: "Paris is the capital of France.", Triples: []model.CheckedTriple{checked(parisFrance, "none")}}}}
	c := NewClassifier(fc)
	ctx := context.Background()

	res, err := c.Text(ctx, model.MatchExact, "Paris is the capital of France.", model.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", res.Rows[0].Sentence)

	_, err = c.Text(ctx, model.MatchExact, "   ", model.ScopeAll)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = c.URL(ctx, model.MatchExact, "https://www.bbc.co.uk/news/1", model.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, "https://www.bbc.co.uk/news/1", fc.LastURL)

	_, err = c.URL(ctx, model.MatchExact, "bbc.co.uk/news", model.ScopeAll)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPresent(t *testing.T) {
	fc := &service.MockFactChecker{}
	fc.SetPresence(parisFrance, model.OutcomeExists)
	c := NewClassifier(fc)

	ok, err := c.Present(context.Background(), model.MatchExact, parisFrance)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Present(context.Background(), model.MatchExact, rome)
	require.NoError(t, err)
	assert.False(t, ok)

	fc.PresenceErr = errors.New("timeout")
	_, err = c.Present(context.Background(), model.MatchExact, parisFrance)
	assert.ErrorIs(t, err, ErrClassificationFailed)
}
