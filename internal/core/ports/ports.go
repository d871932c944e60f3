package ports

import (
	"context"
	"time"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

// DocumentSource discovers the rendered markdown documents for one batch.
type DocumentSource interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// ArtifactStore persists enhancement results and answers the idempotent
// skip check. HasSuccess and SaveSuccess must agree on naming so a prior
// run's artifact is always recognized on re-run.
type ArtifactStore interface {
	HasSuccess(key string) bool
	SaveSuccess(ctx context.Context, key, content string) error
	SaveRawResponse(ctx context.Context, key string, raw []byte, failed bool) error
}

// Enhancer performs one complete enhancement call for one document,
// including rate limiting, timeout and internal retry. It never returns an
// error: every failure mode is folded into the outcome.
type Enhancer interface {
	Enhance(ctx context.Context, doc domain.Document) domain.CallOutcome
}

// RowSource yields the tabular school records backing generation and site
// assembly.
type RowSource interface {
	Rows(ctx context.Context) ([]domain.Row, error)
}

// DocumentWriter writes one generated markdown document per school.
type DocumentWriter interface {
	Write(key, content string) error
}

// TemplateEngine renders the per-school markdown template.
type TemplateEngine interface {
	Placeholders() []string
	Render(ctx map[string]string) string
}

// SiteBuilder turns enhanced documents and school records into the final
// static page.
type SiteBuilder interface {
	DescriptionHTML(key string) string
	RenderIndex(entries []domain.SiteEntry) (string, error)
	RenderNoData() string
	WriteIndex(html string) error
}

// BatchObserver receives per-document lifecycle signals for metrics.
type BatchObserver interface {
	StartDocument()
	FinishDocument(status string, duration time.Duration)
	ObserveAttempts(attempts int)
}
