// Package quotes implements the retrieval service: similarity search over
// the stored corpus, corpus lifecycle, word comparison, and health.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/quotable-io/quotable/internal/config"
	"github.com/quotable-io/quotable/internal/corpus"
	"github.com/quotable-io/quotable/internal/embedding"
	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/store"
	"github.com/quotable-io/quotable/internal/vector"
	"github.com/quotable-io/quotable/pkg/utils"
)

// ErrNoQuotes is returned when an operation needs at least one stored quote.
var ErrNoQuotes = errors.New("no quotes stored")

// Service orchestrates the embedder, the store, and the corpus source.
type Service struct {
	store    store.Store
	embedder embedding.Embedder
	source   *corpus.Source
	config   *config.SearchConfig
	workers  int
	logger   *zap.Logger
}

// NewService creates a service with the given dependencies. workers bounds
// embedding concurrency during initialization.
func NewService(
	st store.Store,
	emb embedding.Embedder,
	src *corpus.Source,
	cfg *config.SearchConfig,
	workers int,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:    st,
		embedder: emb,
		source:   src,
		config:   cfg,
		workers:  workers,
		logger:   logger,
	}
}

// Search embeds the topic and returns the stored quotes ranked by descending
// cosine similarity. Backends with native ranking are used directly; others
// are ranked client-side over a full scan. Results below params.Threshold
// are dropped when it is set. An empty store yields an empty result.
func (s *Service) Search(ctx context.Context, params models.SearchParams) ([]*models.ScoredQuote, error) {
	start := time.Now()
	params.Normalize(s.config.DefaultK, s.config.MaxK)

	queryVec, err := s.embedder.Embed(ctx, params.Topic)
	if err != nil {
		return nil, err
	}

	var results []*models.ScoredQuote
	if ns, ok := s.store.(store.NearestSearcher); ok {
		results, err = ns.SearchNearest(ctx, queryVec, params.K)
	} else {
		results, err = s.scanAndRank(ctx, queryVec, params.K)
	}
	if err != nil {
		return nil, err
	}

	if params.Threshold != nil {
		kept := make([]*models.ScoredQuote, 0, len(results))
		for _, r := range results {
			if r.Similarity >= *params.Threshold {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	s.logger.Debug("search completed",
		zap.String("topic", utils.Truncate(params.Topic, 50)),
		zap.Int("k", params.K),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)),
	)
	return results, nil
}

// scanAndRank is the exact ranking path for stores without native search.
func (s *Service) scanAndRank(ctx context.Context, queryVec []float32, k int) ([]*models.ScoredQuote, error) {
	records, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]vector.Candidate, len(records))
	byID := make(map[string]*models.QuoteRecord, len(records))
	for i, rec := range records {
		candidates[i] = vector.Candidate{ID: rec.ID, Vector: rec.Embedding}
		byID[rec.ID] = rec
	}

	ranked, err := vector.TopK(queryVec, candidates, k)
	if err != nil {
		return nil, err
	}

	results := make([]*models.ScoredQuote, len(ranked))
	for i, r := range ranked {
		rec := byID[r.ID]
		results[i] = &models.ScoredQuote{
			Text:       rec.Text,
			Category:   rec.Category,
			Similarity: r.Score,
		}
	}
	return results, nil
}

// ListAll returns every stored quote in insertion order, without embeddings.
func (s *Service) ListAll(ctx context.Context) ([]*models.QuoteSummary, error) {
	quotes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if quotes == nil {
		quotes = []*models.QuoteSummary{}
	}
	return quotes, nil
}

// RandomQuote returns one stored quote chosen uniformly at random.
func (s *Service) RandomQuote(ctx context.Context) (*models.QuoteSummary, error) {
	quotes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, ErrNoQuotes
	}
	return quotes[rand.IntN(len(quotes))], nil
}

// Clean removes every stored quote.
func (s *Service) Clean(ctx context.Context) (*models.CleanResult, error) {
	removed, err := s.store.Clear(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("store cleaned", zap.Int("removed", removed))
	return &models.CleanResult{
		Status:  "success",
		Message: "Database cleaned",
		Removed: removed,
	}, nil
}

// Health probes the embedder and the store independently; one failing never
// masks the other. Status is "healthy" only when both probes pass.
func (s *Service) Health(ctx context.Context) *models.HealthReport {
	report := &models.HealthReport{
		Status:   "healthy",
		Services: make(map[string]string),
	}

	// Unique probe text defeats the embedding cache so the probe reaches
	// the provider every time.
	probe := fmt.Sprintf("health:%d", time.Now().UnixNano())
	if _, err := s.embedder.Embed(ctx, probe); err != nil {
		report.Services["embedding"] = "error: " + err.Error()
		report.Status = "unhealthy"
	} else {
		report.Services["embedding"] = "ok"
	}

	if err := s.store.Ping(ctx); err != nil {
		report.Services["store"] = "error: " + err.Error()
		report.Status = "unhealthy"
	} else {
		report.Services["store"] = "ok"
	}

	return report
}
