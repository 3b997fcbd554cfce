package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

type flatCheckResponse struct {
	Triples []model.CheckedTriple `json:"triples"`
}

type sentenceCheckResponse struct {
	Triples []model.SentenceCheck `json:"triples"`
}

type textCheckRequest struct {
	Text            string                `json:"text"`
	ExtractionScope model.ExtractionScope `json:"extraction_scope"`
}

type urlCheckRequest struct {
	URL             string                `json:"url"`
	ExtractionScope model.ExtractionScope `json:"extraction_scope"`
}

func factCheckPath(mode model.MatchMode, suffix string) string {
	return fmt.Sprintf("/fc/%s/fact-check/%s", mode, suffix)
}

func (c *HTTPClient) CheckTriples(ctx context.Context, mode model.MatchMode, triples []model.Triple) ([]model.SentenceCheck, error) {
	resp, err := fetchJSON[flatCheckResponse](ctx, c, http.MethodPost, factCheckPath(mode, "triples/"), nil, triples)
	if err != nil {
		return nil, err
	}
	return []model.SentenceCheck{{Triples: resp.Triples}}, nil
}

func (c *HTTPClient) CheckSentences(ctx context.Context, mode model.MatchMode, sentences []model.PendingSentence) ([]model.SentenceCheck, error) {
	resp, err := fetchJSON[sentenceCheckResponse](ctx, c, http.MethodPost, factCheckPath(mode, "triples-sentences/"), nil, sentences)
	if err != nil {
		return nil, err
	}
	return resp.Triples, nil
}

func (c *HTTPClient) CheckText(ctx context.Context, mode model.MatchMode, text string, scope model.ExtractionScope) ([]model.SentenceCheck, error) {
	req := textCheckRequest{Text: text, ExtractionScope: scope}
	resp, err := fetchJSON[sentenceCheckResponse](ctx, c, http.MethodPost, factCheckPath(mode, ""), nil, req)
	if err != nil {
		return nil, err
	}
	return resp.Triples, nil
}

func (c *HTTPClient) CheckURL(ctx context.Context, mode model.MatchMode, articleURL string, scope model.ExtractionScope) ([]model.SentenceCheck, error) {
	req := urlCheckRequest{URL: articleURL, ExtractionScope: scope}
	resp, err := fetchJSON[sentenceCheckResponse](ctx, c, http.MethodPost, factCheckPath(mode, "url/"), nil, req)
	if err != nil {
		return nil, err
	}
	return resp.Triples, nil
}

// VerifyPresence asks the exact-match checker whether the triple is in the
// graph, following equivalences when mode is non-exact.
func (c *HTTPClient) VerifyPresence(ctx context.Context, mode model.MatchMode, triple model.Triple) (model.CheckedTriple, error) {
	path := "/fc/exact/fact-check/triples/"
	if mode == model.MatchNonExact {
		path += "transitive/"
	}
	resp, err := fetchJSON[flatCheckResponse](ctx, c, http.MethodPost, path, nil, []model.Triple{triple})
	if err != nil {
		return model.CheckedTriple{}, err
	}
	if len(resp.Triples) == 0 {
		return model.CheckedTriple{}, fmt.Errorf("presence check for %s returned no result", triple)
	}
	return resp.Triples[0], nil
}
