package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "pipeline.yaml"

type Config struct {
	LogLevel    string `yaml:"log_level"`
	MetricsPort string `yaml:"metrics_port"`

	AzureEndpointBase string `yaml:"azure_endpoint_base"`
	AzureAPIKey       string `yaml:"azure_api_key"`
	DeploymentName    string `yaml:"deployment_name"`
	APIVersion        string `yaml:"api_version"`

	MaxConcurrentRequests int     `yaml:"max_concurrent_requests"`
	TargetRPM             int     `yaml:"target_rpm"`
	MaxRetries            int     `yaml:"max_retries"`
	BackoffBaseSeconds    float64 `yaml:"backoff_base_seconds"`
	BackoffMaxSeconds     float64 `yaml:"backoff_max_seconds"`
	Retry429SleepSeconds  float64 `yaml:"retry_429_sleep_seconds"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	Temperature           float64 `yaml:"temperature"`
	MaxTokens             int     `yaml:"max_tokens"`
	BreakerEnabled        bool    `yaml:"breaker_enabled"`

	CSVPath          string `yaml:"csv_path"`
	MarkdownTemplate string `yaml:"markdown_template"`
	PromptTemplate   string `yaml:"prompt_template"`
	InputMarkdownDir string `yaml:"input_markdown_dir"`
	EnhancedDir      string `yaml:"enhanced_dir"`
	RawResponsesDir  string `yaml:"raw_responses_dir"`
	SiteTemplate     string `yaml:"site_template"`
	SiteOutputFile   string `yaml:"site_output_file"`
	EnhanceLimit     int    `yaml:"enhance_limit"`
}

func defaults() Config {
	return Config{
		LogLevel:    "info",
		MetricsPort: "9090",

		APIVersion: "2024-05-01-preview",

		MaxConcurrentRequests: 250,
		TargetRPM:             10000,
		MaxRetries:            3,
		BackoffBaseSeconds:    2.0,
		BackoffMaxSeconds:     60.0,
		Retry429SleepSeconds:  60.0,
		RequestTimeoutSeconds: 300,
		Temperature:           0.10,
		MaxTokens:             2048,

		CSVPath:          "./data/database_data/database_school_data.csv",
		MarkdownTemplate: "./data/templates/school_description_template.md",
		PromptTemplate:   "./data/templates/ai_prompt_template.txt",
		InputMarkdownDir: "./data/generated_markdown_from_csv",
		EnhancedDir:      "./data/ai_processed_markdown",
		RawResponsesDir:  "./data/ai_raw_responses",
		SiteTemplate:     "./data/templates/website_template.html",
		SiteOutputFile:   "./output/index.html",
	}
}

// Load resolves configuration from defaults, an optional YAML file
// (PIPELINE_CONFIG_FILE or ./pipeline.yaml), and finally the environment.
// Later layers win. Load does not validate: only the enhancement stage
// needs the provider credentials, so validation is the caller's call.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv("PIPELINE_CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsPort = envStr("METRICS_PORT", cfg.MetricsPort)

	cfg.AzureEndpointBase = envStr("AZURE_ENDPOINT_BASE", cfg.AzureEndpointBase)
	cfg.AzureAPIKey = envStr("AZURE_API_KEY", envStr("API_KEY", cfg.AzureAPIKey))
	cfg.DeploymentName = envStr("AZURE_DEPLOYMENT_NAME", cfg.DeploymentName)
	cfg.APIVersion = envStr("AZURE_API_VERSION", cfg.APIVersion)

	cfg.MaxConcurrentRequests = envInt("MAX_CONCURRENT_REQUESTS", cfg.MaxConcurrentRequests)
	cfg.TargetRPM = envInt("TARGET_RPM", cfg.TargetRPM)
	cfg.MaxRetries = envInt("MAX_RETRIES", cfg.MaxRetries)
	cfg.BackoffBaseSeconds = envFloat("BACKOFF_BASE_SECONDS", cfg.BackoffBaseSeconds)
	cfg.BackoffMaxSeconds = envFloat("BACKOFF_MAX_SECONDS", cfg.BackoffMaxSeconds)
	cfg.Retry429SleepSeconds = envFloat("RETRY_SLEEP_ON_429", cfg.Retry429SleepSeconds)
	cfg.RequestTimeoutSeconds = envInt("REQUEST_TIMEOUT", cfg.RequestTimeoutSeconds)
	cfg.Temperature = envFloat("TEMPERATURE", cfg.Temperature)
	cfg.MaxTokens = envInt("MAX_TOKENS", cfg.MaxTokens)
	cfg.BreakerEnabled = envBool("BREAKER_ENABLED", cfg.BreakerEnabled)

	cfg.CSVPath = envStr("CSV_PATH", cfg.CSVPath)
	cfg.MarkdownTemplate = envStr("MARKDOWN_TEMPLATE", cfg.MarkdownTemplate)
	cfg.PromptTemplate = envStr("PROMPT_TEMPLATE", cfg.PromptTemplate)
	cfg.InputMarkdownDir = envStr("INPUT_MARKDOWN_DIR", cfg.InputMarkdownDir)
	cfg.EnhancedDir = envStr("ENHANCED_DIR", cfg.EnhancedDir)
	cfg.RawResponsesDir = envStr("RAW_RESPONSES_DIR", cfg.RawResponsesDir)
	cfg.SiteTemplate = envStr("SITE_TEMPLATE", cfg.SiteTemplate)
	cfg.SiteOutputFile = envStr("SITE_OUTPUT_FILE", cfg.SiteOutputFile)
	cfg.EnhanceLimit = envInt("ENHANCE_LIMIT", cfg.EnhanceLimit)
}

// MissingError reports every absent required field at once so an operator
// fixes the environment in a single pass.
type MissingError struct {
	Missing []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Validate checks the fields the enhancement stage cannot run without.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.AzureEndpointBase) == "" {
		missing = append(missing, "AZURE_ENDPOINT_BASE")
	}
	if strings.TrimSpace(c.AzureAPIKey) == "" {
		missing = append(missing, "AZURE_API_KEY")
	}
	if strings.TrimSpace(c.DeploymentName) == "" {
		missing = append(missing, "AZURE_DEPLOYMENT_NAME")
	}
	if len(missing) > 0 {
		return &MissingError{Missing: missing}
	}
	return nil
}

// Endpoint builds the full chat-completions URL for the configured
// deployment.
func (c Config) Endpoint() string {
	return fmt.Sprintf(
		"%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.AzureEndpointBase, "/"), c.DeploymentName, c.APIVersion,
	)
}

func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseSeconds * float64(time.Second))
}

func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxSeconds * float64(time.Second))
}

func (c Config) Retry429Sleep() time.Duration {
	return time.Duration(c.Retry429SleepSeconds * float64(time.Second))
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func envStr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
