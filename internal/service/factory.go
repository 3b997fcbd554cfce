package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/albertus-andito/fake-news-detection/internal/config"
	"github.com/albertus-andito/fake-news-detection/internal/driver"
)

// Services bundles the three collaborators the verifier talks to.
type Services struct {
	FactChecker FactChecker
	Graph       GraphUpdater
	Articles    ArticleService

	closers []func(context.Context) error
}

// NewServices wires the collaborators described by cfg. The fact checker and
// article service are always reached over HTTP; the graph updater is either
// the HTTP service or a direct Bolt connection.
func NewServices(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Services, error) {
	client := NewHTTPClient(cfg.Services.BaseURL, cfg.Services.Timeout.Duration, cfg.Services.RequestsPerSecond, logger)
	s := &Services{FactChecker: client, Articles: client}

	backend := strings.ToLower(cfg.Graph.Backend)
	switch backend {
	case "", config.BackendHTTP:
		s.Graph = client
	case config.BackendBolt:
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			return nil, err
		}
		if err := d.BuildIndices(ctx); err != nil {
			_ = d.Close(ctx)
			return nil, err
		}
		s.Graph = NewBoltGraph(d, logger)
		s.closers = append(s.closers, d.Close)
	default:
		return nil, fmt.Errorf("unsupported graph backend: %s", cfg.Graph.Backend)
	}

	logger.Info("Services ready", "base_url", client.BaseURL(), "graph", backend)
	return s, nil
}

func (s *Services) Close(ctx context.Context) error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}
