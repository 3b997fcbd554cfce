package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/albertus-andito/fake-news-detection/internal/core/common"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

type articlesResponse struct {
	Articles []model.Article `json:"articles"`
}

type pendingResponse struct {
	Source  string                  `json:"source,omitempty"`
	Triples []model.PendingSentence `json:"triples"`
}

type newArticleRequest struct {
	URL             string                `json:"url"`
	ExtractionScope model.ExtractionScope `json:"extraction_scope"`
	AutoUpdate      bool                  `json:"kg_auto_update"`
}

func (c *HTTPClient) ExtractedArticles(ctx context.Context) ([]model.Article, error) {
	resp, err := fetchJSON[articlesResponse](ctx, c, http.MethodGet, "/kgu/articles/extracted/", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Articles, nil
}

// PendingTriples returns nil without error when the service has nothing
// pending for the article.
func (c *HTTPClient) PendingTriples(ctx context.Context, source string) ([]model.PendingSentence, error) {
	path := "/kgu/article-triples/pending/" + url.PathEscape(source)
	status, body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, nil
	case status < 200 || status >= 300:
		return nil, &StatusError{Method: http.MethodGet, Path: path, Status: status, Message: common.ErrorMessage(body)}
	}

	resp, err := common.ParseJSON[pendingResponse](body)
	if err != nil {
		return nil, err
	}
	return resp.Triples, nil
}

func (c *HTTPClient) MarkAdded(ctx context.Context, triples model.ArticleTriples) error {
	_, err := c.send(ctx, http.MethodPost, "/kgu/article-triples/insert/", nil, []model.ArticleTriples{triples})
	return err
}

func (c *HTTPClient) DiscardPending(ctx context.Context, triples model.ArticleTriples) error {
	_, err := c.send(ctx, http.MethodDelete, "/kgu/article-triples/pending/", nil, []model.ArticleTriples{triples})
	return err
}

func (c *HTTPClient) SubmitArticle(ctx context.Context, articleURL string, scope model.ExtractionScope, autoAdd bool) error {
	_, err := c.send(ctx, http.MethodPost, "/kgu/articles/", nil, newArticleRequest{
		URL:             articleURL,
		ExtractionScope: scope,
		AutoUpdate:      autoAdd,
	})
	return err
}

func (c *HTTPClient) TriggerUpdate(ctx context.Context, scope model.ExtractionScope, autoAdd bool) error {
	const path = "/kgu/updates"
	query := url.Values{}
	query.Set("auto_update", strconv.FormatBool(autoAdd))
	query.Set("extraction_scope", string(scope))

	status, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrBusy, common.ErrorMessage(body))
	case status < 200 || status >= 300:
		return &StatusError{Method: http.MethodGet, Path: path, Status: status, Message: common.ErrorMessage(body)}
	}
	return nil
}

// UpdateStatus maps 202 to running and 200 to done.
func (c *HTTPClient) UpdateStatus(ctx context.Context) (model.JobStatus, error) {
	const path = "/kgu/updates/status"
	status, body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusAccepted:
		return model.JobRunning, nil
	case http.StatusOK:
		return model.JobDone, nil
	default:
		return "", &StatusError{Method: http.MethodGet, Path: path, Status: status, Message: common.ErrorMessage(body)}
	}
}
