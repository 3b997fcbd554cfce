package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/logging"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

type reply struct {
	status int
	body   string
}

// newTestServer answers "METHOD escaped-path" keys from routes and records
// every request it sees.
func newTestServer(t *testing.T, routes map[string]reply) (*HTTPClient, *[]capturedRequest) {
	t.Helper()
	var seen []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, capturedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.Query(), Body: body})

		rep, ok := routes[r.Method+" "+r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no route"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(srv.Close)

	return NewHTTPClient(srv.URL, 5*time.Second, 0, logging.Discard()), &seen
}

var paris = model.Triple{Subject: "Paris", Relation: "capital", Objects: []string{"France"}}

func TestCheckTriples_FlatResponse(t *testing.T) {
	client, seen := newTestServer(t, map[string]reply{
		"POST /fc/non-exact/fact-check/triples/": {200, `{"triples":[{"triple":{"subject":"Paris","relation":"capital","objects":["France"]},"result":"exists"}]}`},
	})

	checks, err := client.CheckTriples(context.Background(), model.MatchNonExact, []model.Triple{paris})
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "", checks[0].Sentence)
	require.Len(t, checks[0].Triples, 1)
	assert.Equal(t, "exists", checks[0].Triples[0].Result)

	var sent []model.Triple
	require.NoError(t, json.Unmarshal((*seen)[0].Body, &sent))
	assert.Equal(t, []model.Triple{paris}, sent)
}

func TestCheckText_SentenceResponse(t *testing.T) {
	client, seen := newTestServer(t, map[string]reply{
		"POST /fc/exact/fact-check/": {200, `{"triples":[{"sentence":"Paris is the capital of France.","triples":[
			{"triple":{"subject":"Paris","relation":"capital","objects":["Germany"]},"result":"conflicts",
			 "other_triples":[{"subject":"Paris","relation":"capital","objects":["France"]}]}]}]}`},
	})

	checks, err := client.CheckText(context.Background(), model.MatchExact, "Paris is the capital of France.", model.ScopeAll)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "Paris is the capital of France.", checks[0].Sentence)
	require.Len(t, checks[0].Triples[0].OtherTriples, 1)
	assert.Equal(t, []string{"France"}, checks[0].Triples[0].OtherTriples[0].Objects)

	var sent map[string]string
	require.NoError(t, json.Unmarshal((*seen)[0].Body, &sent))
	assert.Equal(t, "all", sent["extraction_scope"])
}

func TestVerifyPresence_PathByMode(t *testing.T) {
	client, seen := newTestServer(t, map[string]reply{
		"POST /fc/exact/fact-check/triples/":            {200, `{"triples":[{"triple":{"subject":"Paris","relation":"capital","objects":["France"]},"result":"exists"}]}`},
		"POST /fc/exact/fact-check/triples/transitive/": {200, `{"triples":[{"triple":{"subject":"Paris","relation":"capital","objects":["France"]},"result":"none"}]}`},
	})

	exact, err := client.VerifyPresence(context.Background(), model.MatchExact, paris)
	require.NoError(t, err)
	assert.Equal(t, "exists", exact.Result)

	transitive, err := client.VerifyPresence(context.Background(), model.MatchNonExact, paris)
	require.NoError(t, err)
	assert.Equal(t, "none", transitive.Result)

	assert.Equal(t, "/fc/exact/fact-check/triples/transitive/", (*seen)[1].Path)
}

func TestInsert(t *testing.T) {
	t.Run("inserted", func(t *testing.T) {
		client, _ := newTestServer(t, map[string]reply{"POST /kgu/triples/": {200, `{"message":"ok"}`}})
		report, err := client.Insert(context.Background(), []model.Triple{paris})
		require.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("conflicts", func(t *testing.T) {
		client, _ := newTestServer(t, map[string]reply{"POST /kgu/triples/": {409, `{"message":"conflicts","conflicts":[
			{"toBeInserted":{"subject":"Paris","relation":"capital","objects":["Germany"]},
			 "inKnowledgeGraph":[{"subject":"Paris","relation":"capital","objects":["France"]}]}]}`}})
		report, err := client.Insert(context.Background(), []model.Triple{paris})
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.True(t, report.HasConflicts())
		assert.Equal(t, []model.Triple{paris}, report.Existing())
	})

	t.Run("refused without conflicts", func(t *testing.T) {
		for name, body := range map[string]string{
			"empty list":   `{"message":"There are some conflicts in the triple","conflicts":[[]]}`,
			"message only": `{"message":"There are some conflicts in the triple"}`,
			"no body":      ``,
		} {
			t.Run(name, func(t *testing.T) {
				client, _ := newTestServer(t, map[string]reply{"POST /kgu/triples/": {409, body}})
				report, err := client.Insert(context.Background(), []model.Triple{paris})
				require.NoError(t, err)
				require.NotNil(t, report)
				assert.False(t, report.HasConflicts())
				assert.Empty(t, report.Existing())
			})
		}
	})

	t.Run("server error", func(t *testing.T) {
		client, _ := newTestServer(t, map[string]reply{"POST /kgu/triples/": {500, `{"message":"graph down"}`}})
		_, err := client.Insert(context.Background(), []model.Triple{paris})

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 500, se.Status)
		assert.Equal(t, "graph down", se.Message)
	})
}

func TestDeleteAndEquate(t *testing.T) {
	client, seen := newTestServer(t, map[string]reply{
		"DELETE /kgu/triples/":      {200, `{}`},
		"POST /kgu/entity/equals/": {200, `{}`},
	})

	require.NoError(t, client.Delete(context.Background(), paris))
	require.NoError(t, client.Equate(context.Background(), "http://dbpedia.org/resource/A", "http://dbpedia.org/resource/B"))

	var eq map[string]string
	require.NoError(t, json.Unmarshal((*seen)[1].Body, &eq))
	assert.Equal(t, "http://dbpedia.org/resource/A", eq["entity_a"])
	assert.Equal(t, "http://dbpedia.org/resource/B", eq["entity_b"])
}

func TestPendingTriples_EscapesSource(t *testing.T) {
	source := "https://www.bbc.co.uk/news/world-1"
	client, seen := newTestServer(t, map[string]reply{
		"GET /kgu/article-triples/pending/" + url.PathEscape(source): {200, `{"triples":[{"sentence":"s1","triples":[{"subject":"A","relation":"r","objects":["B"],"added":false}]}]}`},
	})

	pending, err := client.PendingTriples(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "s1", pending[0].Sentence)
	assert.False(t, pending[0].Triples[0].Added)
	assert.Len(t, *seen, 1)

	none, err := client.PendingTriples(context.Background(), "https://unknown.example/")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestArticleMutations(t *testing.T) {
	client, seen := newTestServer(t, map[string]reply{
		"POST /kgu/article-triples/insert/":    {200, `{}`},
		"DELETE /kgu/article-triples/pending/": {200, `{}`},
		"POST /kgu/articles/":                  {200, `{}`},
	})
	ctx := context.Background()
	at := model.SingleArticleTriple("http://news/1", "s1", paris)

	require.NoError(t, client.MarkAdded(ctx, at))
	require.NoError(t, client.DiscardPending(ctx, at))
	require.NoError(t, client.SubmitArticle(ctx, "http://news/2", model.ScopeNamedEntities, true))

	var marked []model.ArticleTriples
	require.NoError(t, json.Unmarshal((*seen)[0].Body, &marked))
	require.Len(t, marked, 1)
	assert.Equal(t, "http://news/1", marked[0].Source)

	var submitted map[string]any
	require.NoError(t, json.Unmarshal((*seen)[2].Body, &submitted))
	assert.Equal(t, "http://news/2", submitted["url"])
	assert.Equal(t, true, submitted["kg_auto_update"])
}

func TestTriggerUpdate(t *testing.T) {
	client, seen := newTestServer(t, map[string]reply{"GET /kgu/updates": {202, `{"message":"started"}`}})
	require.NoError(t, client.TriggerUpdate(context.Background(), model.ScopeAll, true))
	assert.Equal(t, "true", (*seen)[0].Query.Get("auto_update"))
	assert.Equal(t, "all", (*seen)[0].Query.Get("extraction_scope"))

	busy, _ := newTestServer(t, map[string]reply{"GET /kgu/updates": {409, `{"message":"already running"}`}})
	err := busy.TriggerUpdate(context.Background(), model.ScopeAll, false)
	assert.True(t, errors.Is(err, ErrBusy))
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		status  int
		want    model.JobStatus
		wantErr bool
	}{
		{202, model.JobRunning, false},
		{200, model.JobDone, false},
		{500, "", true},
	}
	for _, tt := range tests {
		client, _ := newTestServer(t, map[string]reply{"GET /kgu/updates/status": {tt.status, `{}`}})
		got, err := client.UpdateStatus(context.Background())
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEntity_EscapesSubject(t *testing.T) {
	subject := "http://dbpedia.org/resource/Paris"
	client, _ := newTestServer(t, map[string]reply{
		"GET /kgu/entity/" + url.PathEscape(subject): {200, `{"triples":[{"subject":"http://dbpedia.org/resource/Paris","relation":"capital","objects":["http://dbpedia.org/resource/France"]}]}`},
	})

	triples, err := client.Entity(context.Background(), subject)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "capital", triples[0].Relation)
}

func TestDo_CancelledContext(t *testing.T) {
	client, _ := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ExtractedArticles(ctx)
	assert.Error(t, err)
}
