package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/albertus-andito/fake-news-detection/internal/core/common"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

type equalsRequest struct {
	EntityA string `json:"entity_a"`
	EntityB string `json:"entity_b"`
}

type entityResponse struct {
	Triples []model.Triple `json:"triples"`
}

func (c *HTTPClient) Insert(ctx context.Context, triples []model.Triple) (*model.ConflictReport, error) {
	const path = "/kgu/triples/"
	status, body, err := c.do(ctx, http.MethodPost, path, nil, triples)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusConflict:
		// Any 409 is a refusal, whether or not the body lists conflicts.
		report, err := common.ParseJSON[model.ConflictReport](body)
		if err != nil {
			c.logger.Warn("undecodable conflict report", "path", path, "err", err)
			report = model.ConflictReport{}
		}
		if report.Message == "" {
			report.Message = common.ErrorMessage(body)
		}
		return &report, nil
	case status < 200 || status >= 300:
		return nil, &StatusError{Method: http.MethodPost, Path: path, Status: status, Message: common.ErrorMessage(body)}
	}
	return nil, nil
}

func (c *HTTPClient) ForceInsert(ctx context.Context, triples []model.Triple) error {
	_, err := c.send(ctx, http.MethodPost, "/kgu/triples/force/", nil, triples)
	return err
}

func (c *HTTPClient) Delete(ctx context.Context, triple model.Triple) error {
	_, err := c.send(ctx, http.MethodDelete, "/kgu/triples/", nil, triple)
	return err
}

func (c *HTTPClient) Equate(ctx context.Context, entityA, entityB string) error {
	_, err := c.send(ctx, http.MethodPost, "/kgu/entity/equals/", nil, equalsRequest{EntityA: entityA, EntityB: entityB})
	return err
}

func (c *HTTPClient) Entity(ctx context.Context, subject string) ([]model.Triple, error) {
	resp, err := fetchJSON[entityResponse](ctx, c, http.MethodGet, "/kgu/entity/"+url.PathEscape(subject), nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Triples, nil
}
