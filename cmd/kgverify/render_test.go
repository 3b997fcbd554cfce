package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/core/session"
)

func TestRenderView(t *testing.T) {
	paris := model.Triple{Subject: "Paris", Relation: "capitalOf", Objects: []string{"France"}}
	lyon := model.Triple{Subject: "Lyon", Relation: "capitalOf", Objects: []string{"France"}}

	v := session.View{
		Mode: session.ModeText,
		Buckets: map[model.Outcome][]session.Row{
			model.OutcomeExists:   {},
			model.OutcomePossible: {},
			model.OutcomeConflicts: {{
				Key:      "k1",
				Sentence: "Lyon is the capital of France.",
				Triple:   lyon,
				Outcome:  model.OutcomeConflicts,
				Evidence: []session.EvidenceRow{{ExistingTriple: model.ExistingTriple{Triple: paris}}},
			}},
			model.OutcomeNone: {},
		},
		Resolved: []session.Resolution{{
			Key:     "k0",
			Triple:  paris,
			Outcome: model.OutcomeNone,
			Action:  session.ActionAdd,
			State:   session.StateResolved,
			At:      time.Now(),
		}},
	}

	out := renderView(v)
	assert.Contains(t, out, "Conflicts with the knowledge graph (1)")
	assert.Contains(t, out, "Unknown to the knowledge graph (0)")
	assert.Contains(t, out, lyon.String())
	assert.Contains(t, out, "↳ "+paris.String())
	assert.Contains(t, out, "Added to Knowledge Graph")
}

func TestRenderJob(t *testing.T) {
	out := renderJob(model.UpdateJob{ID: "job-1", Status: model.JobTimedOut, Polls: 3, Error: "gave up"})
	assert.Contains(t, out, "job-1")
	assert.Contains(t, out, "timed_out")
	assert.Contains(t, out, "3 poll(s)")
	assert.Contains(t, out, "gave up")
}

func TestRenderArticles(t *testing.T) {
	out := renderArticles([]model.Article{
		{Source: "https://news.example.com/a", Date: 1600000000},
	})
	assert.Contains(t, out, "(no headline)")
	assert.Contains(t, out, "2020-09-13")
}
