// Package bootstrap wires configuration into the three pipeline stages.
package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mlindqvist/school-pipeline/internal/config"
	"github.com/mlindqvist/school-pipeline/internal/core/ports"
	"github.com/mlindqvist/school-pipeline/internal/core/usecase"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/dataset"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/llm/azureopenai"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/ratelimit"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/resilience"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/site"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/storage/localfs"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/template"
	"github.com/mlindqvist/school-pipeline/internal/observability/metrics"
)

// EnhanceApp carries everything the enhancement binary needs.
type EnhanceApp struct {
	Config  config.Config
	Batch   *usecase.EnhanceBatchUseCase
	Metrics *metrics.BatchMetrics
}

func NewEnhance(cfg config.Config) (*EnhanceApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := localfs.NewStore(cfg.InputMarkdownDir, cfg.EnhancedDir, cfg.RawResponsesDir)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}

	prompt, err := azureopenai.LoadPromptTemplate(cfg.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}

	gate := ratelimit.NewInterval(cfg.TargetRPM, time.Minute)
	executor := resilience.NewExecutor(resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		BackoffBase:    cfg.BackoffBase(),
		BackoffMax:     cfg.BackoffMax(),
		JitterFraction: 0.25,
		BreakerEnabled: cfg.BreakerEnabled,
	})

	client := azureopenai.New(azureopenai.Config{
		Endpoint:       cfg.Endpoint(),
		APIKey:         cfg.AzureAPIKey,
		MaxTokens:      cfg.MaxTokens,
		Temperature:    cfg.Temperature,
		RequestTimeout: cfg.RequestTimeout(),
		Retry429Sleep:  cfg.Retry429Sleep(),
		Gate:           gate,
		Executor:       executor,
		Prompt:         prompt,
	})

	batchMetrics := metrics.NewBatchMetrics("enhance")
	batch := usecase.NewEnhanceBatchUseCase(
		store, store, client, batchMetrics,
		cfg.MaxConcurrentRequests, cfg.EnhanceLimit,
	)

	return &EnhanceApp{Config: cfg, Batch: batch, Metrics: batchMetrics}, nil
}

// GenerateApp carries the markdown-generation stage.
type GenerateApp struct {
	Config   config.Config
	Generate *usecase.GenerateMarkdownsUseCase
}

func NewGenerate(cfg config.Config) (*GenerateApp, error) {
	tpl, err := template.Load(cfg.MarkdownTemplate)
	if err != nil {
		return nil, fmt.Errorf("load markdown template: %w", err)
	}
	writer, err := localfs.NewDirWriter(cfg.InputMarkdownDir)
	if err != nil {
		return nil, fmt.Errorf("init markdown writer: %w", err)
	}
	rows := newRowSource(cfg)
	return &GenerateApp{
		Config:   cfg,
		Generate: usecase.NewGenerateMarkdownsUseCase(rows, tpl, writer),
	}, nil
}

// SiteApp carries the site-generation stage.
type SiteApp struct {
	Config config.Config
	Site   *usecase.GenerateSiteUseCase
}

func NewSite(cfg config.Config) (*SiteApp, error) {
	rows := newRowSource(cfg)
	builder := site.NewBuilder(cfg.EnhancedDir, cfg.SiteTemplate, cfg.SiteOutputFile)
	return &SiteApp{
		Config: cfg,
		Site:   usecase.NewGenerateSiteUseCase(rows, builder),
	}, nil
}

// newRowSource picks the tabular reader by file extension; the CSV export
// is the canonical format, spreadsheets are accepted as-is.
func newRowSource(cfg config.Config) ports.RowSource {
	if strings.EqualFold(filepath.Ext(cfg.CSVPath), ".xlsx") {
		return dataset.NewXLSXSource(cfg.CSVPath, "")
	}
	return dataset.NewCSVSource(cfg.CSVPath)
}
