package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
	"github.com/mlindqvist/school-pipeline/internal/core/ports"
)

// GenerateSiteUseCase builds the final static page. Schools without a
// success artifact render with fallback text; the downstream page treats
// them as "no AI description available".
type GenerateSiteUseCase struct {
	rows    ports.RowSource
	builder ports.SiteBuilder
}

func NewGenerateSiteUseCase(rows ports.RowSource, builder ports.SiteBuilder) *GenerateSiteUseCase {
	return &GenerateSiteUseCase{rows: rows, builder: builder}
}

func (uc *GenerateSiteUseCase) Run(ctx context.Context) error {
	rows, err := uc.rows.Rows(ctx)
	if err != nil {
		return fmt.Errorf("load school rows: %w", err)
	}

	schools := domain.SchoolsFromRows(rows)
	if len(schools) == 0 {
		slog.Warn("no_school_data_for_site")
		return uc.builder.WriteIndex(uc.builder.RenderNoData())
	}

	entries := make([]domain.SiteEntry, 0, len(schools))
	for _, school := range schools {
		entries = append(entries, domain.SiteEntry{
			ID:              school.Code,
			Name:            school.Name,
			DescriptionHTML: uc.builder.DescriptionHTML(school.Code),
		})
	}

	html, err := uc.builder.RenderIndex(entries)
	if err != nil {
		return fmt.Errorf("render site: %w", err)
	}
	if err := uc.builder.WriteIndex(html); err != nil {
		return fmt.Errorf("write site: %w", err)
	}

	slog.Info("site_generated", "schools", len(entries))
	return nil
}
