package quotes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/pkg/utils"
)

// Initialize loads the active corpus into the store. Without force it skips
// when the store already holds quotes. With force it appends the corpus
// again; duplicates are not detected, so callers wanting a fresh load should
// clean first.
func (s *Service) Initialize(ctx context.Context, force bool) (*models.InitResult, error) {
	existing, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if existing > 0 && !force {
		s.logger.Info("initialization skipped", zap.Int("existing", existing))
		return &models.InitResult{
			Status:  "skipped",
			Message: "Quotes already loaded",
			Count:   0,
		}, nil
	}

	inputs := s.source.Quotes()
	inserted, failures, err := s.insertAll(ctx, inputs)
	if err != nil {
		return nil, err
	}

	result := &models.InitResult{Count: inserted, Failures: failures}
	switch {
	case len(failures) == 0:
		result.Status = "success"
		result.Message = fmt.Sprintf("%d quotes loaded", inserted)
	case inserted > 0:
		result.Status = "partial"
		result.Message = fmt.Sprintf("%d quotes loaded, %d failed", inserted, len(failures))
	default:
		result.Status = "error"
		result.Message = fmt.Sprintf("0 quotes loaded, %d failed", len(failures))
	}

	s.logger.Info("corpus initialized",
		zap.Int("inserted", inserted),
		zap.Int("failed", len(failures)),
		zap.Bool("force", force),
	)
	return result, nil
}

// insertAll embeds inputs with bounded concurrency, then persists the
// successful ones sequentially in corpus order so store insertion order
// matches the corpus. A record that fails to embed is never inserted; each
// failure is reported with its corpus position.
func (s *Service) insertAll(ctx context.Context, inputs []models.QuoteInput) (int, []models.ItemFailure, error) {
	embeddings := make([][]float32, len(inputs))
	errs := make([]error, len(inputs))

	workers := s.workers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range inputs {
		select {
		case sem <- struct{}{}: // acquire
		case <-ctx.Done():
			wg.Wait()
			return 0, nil, ctx.Err()
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }() // release
			embeddings[idx], errs[idx] = s.embedder.Embed(ctx, inputs[idx].Text)
		}(i)
	}
	wg.Wait()

	var failures []models.ItemFailure
	inserted := 0
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return inserted, failures, err
		}
		if errs[i] != nil {
			failures = append(failures, itemFailure(i, in.Text, errs[i]))
			continue
		}
		rec := &models.QuoteRecord{
			ID:        uuid.NewString(),
			Text:      in.Text,
			Category:  in.Category,
			Embedding: embeddings[i],
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.Insert(ctx, rec); err != nil {
			failures = append(failures, itemFailure(i, in.Text, err))
			continue
		}
		inserted++
	}
	return inserted, failures, nil
}

func itemFailure(idx int, text string, err error) models.ItemFailure {
	return models.ItemFailure{
		Index:  idx,
		Text:   utils.Truncate(text, 60),
		Reason: err.Error(),
	}
}
