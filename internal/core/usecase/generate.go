package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
	"github.com/mlindqvist/school-pipeline/internal/core/ports"
)

// GenerateMarkdownsUseCase renders one markdown document per school row.
// Rows without a school code are skipped; a write failure skips the row
// and the run continues.
type GenerateMarkdownsUseCase struct {
	rows     ports.RowSource
	template ports.TemplateEngine
	writer   ports.DocumentWriter
}

func NewGenerateMarkdownsUseCase(
	rows ports.RowSource,
	template ports.TemplateEngine,
	writer ports.DocumentWriter,
) *GenerateMarkdownsUseCase {
	return &GenerateMarkdownsUseCase{rows: rows, template: template, writer: writer}
}

// Run returns the number of documents written.
func (uc *GenerateMarkdownsUseCase) Run(ctx context.Context) (int, error) {
	rows, err := uc.rows.Rows(ctx)
	if err != nil {
		return 0, fmt.Errorf("load school rows: %w", err)
	}

	placeholders := uc.template.Placeholders()
	generated := 0
	for i, row := range rows {
		code := row.Value("SchoolCode")
		if code == domain.MissingDataPlaceholder {
			slog.Warn("row_missing_school_code", "row", i+2)
			continue
		}

		content := uc.template.Render(buildTemplateContext(row, placeholders))
		if err := uc.writer.Write(code, content); err != nil {
			slog.Error("write_markdown_failed", "school_code", code, "error", err)
			continue
		}
		generated++
	}

	slog.Info("markdowns_generated", "count", generated, "rows", len(rows))
	return generated, nil
}

// buildTemplateContext resolves every placeholder for one school row.
// Survey-category placeholders go through the year-preference lookup;
// everything else maps straight to a column.
func buildTemplateContext(row domain.Row, placeholders []string) map[string]string {
	ctx := make(map[string]string, len(placeholders)+2)
	ctx["SchoolCode"] = row.Value("SchoolCode")
	ctx["SurveySchoolYear"] = row.SurveyYear(placeholders)

	for _, placeholder := range placeholders {
		if _, ok := ctx[placeholder]; ok {
			continue
		}
		if domain.IsSurveyCategory(placeholder) {
			ctx[placeholder] = row.SurveyAnswer(placeholder)
		} else {
			ctx[placeholder] = row.Value(placeholder)
		}
	}
	return ctx
}
