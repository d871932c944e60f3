package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
	"github.com/mlindqvist/school-pipeline/internal/core/ports"
)

// EnhanceBatchUseCase runs one finite enhancement batch: discover the
// rendered documents, skip the ones a prior run already finished, fan the
// rest out to the call executor under the concurrency cap, and persist
// every outcome. One document's failure never aborts the batch.
type EnhanceBatchUseCase struct {
	source   ports.DocumentSource
	store    ports.ArtifactStore
	enhancer ports.Enhancer
	observer ports.BatchObserver

	concurrency int
	limit       int
}

func NewEnhanceBatchUseCase(
	source ports.DocumentSource,
	store ports.ArtifactStore,
	enhancer ports.Enhancer,
	observer ports.BatchObserver,
	concurrency int,
	limit int,
) *EnhanceBatchUseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &EnhanceBatchUseCase{
		source:      source,
		store:       store,
		enhancer:    enhancer,
		observer:    observer,
		concurrency: concurrency,
		limit:       limit,
	}
}

// Run executes the batch to completion and returns the final statistics.
// It returns domain.ErrAllCallsFailed alongside the stats when every
// attempted document failed, which usually means configuration, not
// content.
func (uc *EnhanceBatchUseCase) Run(ctx context.Context) (domain.BatchStats, error) {
	runID := uuid.NewString()
	var stats domain.BatchStats

	docs, err := uc.source.ListDocuments(ctx)
	if err != nil {
		return stats, domain.WrapError(domain.ErrInvalidInput, "discover documents", err)
	}
	stats.Discovered = len(docs)
	if len(docs) == 0 {
		slog.Warn("no_input_documents", "run_id", runID)
		return stats, nil
	}

	pending := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if uc.store.HasSuccess(doc.Key) {
			stats.SkippedAlreadyDone++
			continue
		}
		pending = append(pending, doc)
	}
	if uc.limit > 0 && len(pending) > uc.limit {
		pending = pending[:uc.limit]
	}
	stats.Attempted = len(pending)

	slog.Info("batch_started",
		"run_id", runID,
		"discovered", stats.Discovered,
		"skipped_already_done", stats.SkippedAlreadyDone,
		"attempted", stats.Attempted,
		"concurrency", uc.concurrency,
	)
	if len(pending) == 0 {
		return stats, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(uc.concurrency)

	for _, doc := range pending {
		g.Go(func() error {
			uc.processDocument(ctx, runID, doc, &mu, &stats)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	slog.Info("batch_finished",
		"run_id", runID,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	if stats.Attempted > 0 && stats.Succeeded == 0 {
		return stats, domain.ErrAllCallsFailed
	}
	return stats, nil
}

func (uc *EnhanceBatchUseCase) processDocument(
	ctx context.Context,
	runID string,
	doc domain.Document,
	mu *sync.Mutex,
	stats *domain.BatchStats,
) {
	uc.observer.StartDocument()
	start := time.Now()

	out := uc.enhancer.Enhance(ctx, doc)

	if out.Success {
		if err := uc.store.SaveSuccess(ctx, doc.Key, out.Content); err != nil {
			// Persistence is best-effort: a full disk must not turn a
			// successful call into a batch abort.
			slog.Error("persist_success_failed", "run_id", runID, "key", doc.Key, "error", err)
		}
	}
	if len(out.RawResponse) > 0 {
		if err := uc.store.SaveRawResponse(ctx, doc.Key, out.RawResponse, !out.Success); err != nil {
			slog.Error("persist_raw_response_failed", "run_id", runID, "key", doc.Key, "error", err)
		}
	}

	status := string(domain.StatusSucceeded)
	mu.Lock()
	if out.Success {
		stats.Succeeded++
	} else {
		stats.Failed++
		status = string(domain.StatusFailed)
	}
	mu.Unlock()

	uc.observer.FinishDocument(status, time.Since(start))
	uc.observer.ObserveAttempts(out.Attempts)

	if out.Success {
		slog.Info("document_enhanced", "run_id", runID, "key", doc.Key, "attempts", out.Attempts)
	} else {
		slog.Warn("document_failed",
			"run_id", runID,
			"key", doc.Key,
			"attempts", out.Attempts,
			"error_kind", out.ErrorKind.String(),
			"error", out.Err,
		)
	}
}

type nopObserver struct{}

func (nopObserver) StartDocument()                       {}
func (nopObserver) FinishDocument(string, time.Duration) {}
func (nopObserver) ObserveAttempts(int)                  {}
