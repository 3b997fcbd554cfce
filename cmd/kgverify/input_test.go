package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

func TestParseTriples(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		data := []byte(`
- subject: http://dbpedia.org/resource/Paris
  relation: http://dbpedia.org/ontology/capitalOf
  objects: [http://dbpedia.org/resource/France]
`)
		triples, err := parseTriples(data)
		require.NoError(t, err)
		require.Len(t, triples, 1)
		assert.Equal(t, "http://dbpedia.org/resource/Paris", triples[0].Subject)
		assert.Equal(t, []string{"http://dbpedia.org/resource/France"}, triples[0].Objects)
	})

	t.Run("mapping", func(t *testing.T) {
		data := []byte(`
triples:
  - subject: a
    relation: r
    objects: [b, c]
  - subject: d
    relation: r
    objects: [e]
`)
		triples, err := parseTriples(data)
		require.NoError(t, err)
		assert.Len(t, triples, 2)
		assert.Equal(t, []string{"b", "c"}, triples[0].Objects)
	})

	t.Run("invalid triple", func(t *testing.T) {
		_, err := parseTriples([]byte(`- {subject: a, relation: r, objects: []}`))
		assert.ErrorIs(t, err, model.ErrNoObjects)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseTriples([]byte(""))
		assert.Error(t, err)

		_, err = parseTriples([]byte("triples: []"))
		assert.Error(t, err)
	})

	t.Run("scalar", func(t *testing.T) {
		_, err := parseTriples([]byte("just text"))
		assert.Error(t, err)
	})
}

func TestTriplesFromArgs(t *testing.T) {
	triples, err := triplesFromArgs("", []string{"a", "r", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []model.Triple{{Subject: "a", Relation: "r", Objects: []string{"b", "c"}}}, triples)

	_, err = triplesFromArgs("", []string{"a", "r"})
	assert.Error(t, err)

	_, err = triplesFromArgs("triples.yaml", []string{"a", "r", "b"})
	assert.Error(t, err)
}

func TestReadAnswer(t *testing.T) {
	tests := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		" y ":   true,
		"n\n":   false,
		"\n":    false,
		"":      false,
		"yep\n": false,
	}
	for input, want := range tests {
		assert.Equal(t, want, readAnswer(strings.NewReader(input)), "input %q", input)
	}
}
