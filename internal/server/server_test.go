package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertus-andito/fake-news-detection/internal/core"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/logging"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

var (
	parisFrance  = model.Triple{Subject: "dbr:Paris", Relation: "dbo:capital", Objects: []string{"dbr:France"}}
	parisGermany = model.Triple{Subject: "dbr:Paris", Relation: "dbo:capital", Objects: []string{"dbr:Germany"}}
)

const sentence = "Paris is the capital of France."

type harness struct {
	router   *gin.Engine
	fc       *service.MockFactChecker
	graph    *service.MockGraph
	articles *service.MockArticles
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		fc:       &service.MockFactChecker{},
		graph:    &service.MockGraph{},
		articles: &service.MockArticles{},
	}
	svc := &service.Services{FactChecker: h.fc, Graph: h.graph, Articles: h.articles}
	v := core.NewVerifier(svc, core.Options{MatchMode: model.MatchExact, PollInterval: time.Millisecond, MaxPolls: 10}, logging.Discard())
	t.Cleanup(v.Close)

	h.router = NewServer(v, logging.Discard()).SetupRouter()
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (h *harness) checkText(t *testing.T, result string, tr model.Triple, others ...model.Triple) {
	t.Helper()
	ct := model.CheckedTriple{Triple: tr, Result: result}
	for _, o := range others {
		ct.OtherTriples = append(ct.OtherTriples, model.ExistingTriple{Triple: o})
	}
	h.fc.Response = []model.SentenceCheck{{Sentence: sentence, Triples: []model.CheckedTriple{ct}}}

	w, _ := h.do(t, http.MethodPost, "/check/text", gin.H{"text": sentence})
	require.Equal(t, http.StatusOK, w.Code)
}

func bucket(body map[string]any, outcome string) []any {
	buckets, _ := body["buckets"].(map[string]any)
	rows, _ := buckets[outcome].([]any)
	return rows
}

func TestCheckTextAndAdd(t *testing.T) {
	h := newHarness(t)
	h.checkText(t, "none", parisFrance)

	w, body := h.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := bucket(body, "none")
	require.Len(t, rows, 1)
	key := rows[0].(map[string]any)["key"].(string)
	assert.Equal(t, model.KeyFor(sentence, parisFrance), key)

	w, body = h.do(t, http.MethodPost, "/rows/"+key+"/add", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Added to Knowledge Graph", body["message"])
	assert.Empty(t, bucket(body["session"].(map[string]any), "none"))
}

func TestAdd_ConflictThenForced(t *testing.T) {
	h := newHarness(t)
	h.checkText(t, "none", parisGermany)
	h.graph.Conflicts = map[string][]model.Triple{model.KeyFor("", parisGermany): {parisFrance}}
	key := model.KeyFor(sentence, parisGermany)

	w, body := h.do(t, http.MethodPost, "/rows/"+key+"/add", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, body["conflicts"], 1)

	w, body = h.do(t, http.MethodPost, "/rows/"+key+"/add-forced", nil)
	require.Equal(t, http.StatusPreconditionRequired, w.Code)
	confirmation := body["confirmation"].(map[string]any)
	assert.Contains(t, confirmation["prompt"], "conflicts with 1 existing triple")

	w, _ = h.do(t, http.MethodPost, "/rows/"+key+"/add-forced", gin.H{"confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []model.Triple{parisGermany}, h.graph.Forced)
}

func TestRemoveExistingTriple(t *testing.T) {
	h := newHarness(t)
	h.checkText(t, "exists", parisFrance)
	h.fc.SetPresence(parisFrance, model.OutcomeExists)
	key := model.KeyFor(sentence, parisFrance)

	w, body := h.do(t, http.MethodGet, "/rows/"+key+"/presence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", body["presence"])

	w, body = h.do(t, http.MethodPost, "/rows/"+key+"/remove?confirm=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Removed from Knowledge Graph", body["message"])
	assert.Equal(t, []model.Triple{parisFrance}, h.graph.Deleted)
}

func TestRemoveConflictEvidence(t *testing.T) {
	h := newHarness(t)
	h.checkText(t, "conflicts", parisGermany, parisFrance)
	h.fc.SetPresence(parisFrance, model.OutcomeExists)
	key := model.KeyFor(sentence, parisGermany)
	evKey := model.KeyFor("", parisFrance)

	w, body := h.do(t, http.MethodPost, "/rows/"+key+"/evidence/"+evKey+"/remove", gin.H{"confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)

	rows := bucket(body["session"].(map[string]any), "conflicts")
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].(map[string]any)["evidence"])
}

func TestErrorMapping(t *testing.T) {
	h := newHarness(t)
	h.checkText(t, "none", parisFrance)
	key := model.KeyFor(sentence, parisFrance)

	w, _ := h.do(t, http.MethodPost, "/rows/unknown/add", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(t, http.MethodPost, "/rows/"+key+"/remove", gin.H{"confirmed": true})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	h.graph.InsertErr = &service.StatusError{Method: "POST", Path: "/kgu/triples/", Status: 500, Message: "graph down"}
	w, body := h.do(t, http.MethodPost, "/rows/"+key+"/add", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "graph down", body["message"])
	assert.Equal(t, "add", body["operation"])

	h.fc.Err = errors.New("fact checker down")
	w, _ = h.do(t, http.MethodPost, "/check/triples", gin.H{"triples": []model.Triple{parisFrance}})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w, _ = h.do(t, http.MethodPost, "/check/text", gin.H{"text": sentence, "extraction_scope": "verbs"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticlesFlow(t *testing.T) {
	h := newHarness(t)
	source := "https://www.bbc.co.uk/news/world-1"
	h.articles.Articles = []model.Article{{Source: source, Headlines: "Paris", Date: 1600000000}}
	h.articles.SetPending(source, []model.PendingSentence{{Sentence: sentence, Triples: []model.PendingTriple{{Triple: parisFrance}}}})
	h.fc.Response = []model.SentenceCheck{{Sentence: sentence, Triples: []model.CheckedTriple{{Triple: parisFrance, Result: "none"}}}}

	w, body := h.do(t, http.MethodGet, "/articles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["articles"], 1)

	w, body = h.do(t, http.MethodPost, "/articles/select", gin.H{"source": source})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "article", body["mode"])

	key := model.KeyFor(sentence, parisFrance)
	w, _ = h.do(t, http.MethodPost, "/rows/"+key+"/discard", nil)
	require.Equal(t, http.StatusPreconditionRequired, w.Code)

	w, body = h.do(t, http.MethodPost, "/rows/"+key+"/discard", gin.H{"confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Discarded", body["message"])
	assert.Len(t, h.articles.Discarded, 1)
}

func TestUpdates(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodGet, "/updates", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.articles.StatusReplies = []service.StatusReply{{Status: model.JobRunning}, {Status: model.JobDone}}
	w, body := h.do(t, http.MethodPost, "/updates", gin.H{"extraction_scope": "all"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "all", body["scope"])

	require.Eventually(t, func() bool {
		w, body := h.do(t, http.MethodGet, "/updates", nil)
		return w.Code == http.StatusOK && body["status"] == "done"
	}, time.Second, 5*time.Millisecond)
}

func TestOwnKnowledgeAndEntityExplorer(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodPost, "/triples", gin.H{"triples": []model.Triple{parisFrance}})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := h.do(t, http.MethodGet, "/entities?subject="+url.QueryEscape("dbr:Paris"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["triples"], 1)

	w, _ = h.do(t, http.MethodDelete, "/triples", gin.H{"triple": parisFrance, "confirmed": true})
	assert.Equal(t, http.StatusGone, w.Code)

	h.fc.SetPresence(parisFrance, model.OutcomeExists)
	w, _ = h.do(t, http.MethodDelete, "/triples", gin.H{"triple": parisFrance, "confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, h.graph.Contains(parisFrance))
}

func TestEquate(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodPost, "/entities/equate", gin.H{
		"entity_a": "http://dbpedia.org/resource/UK",
		"entity_b": "http://dbpedia.org/resource/United_Kingdom",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, h.graph.Equated, 1)

	w, _ = h.do(t, http.MethodPost, "/entities/equate", gin.H{"entity_a": "UK", "entity_b": "GB"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
