package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateListsEveryMissingField(t *testing.T) {
	cfg := defaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error for empty credentials")
	}
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %T", err)
	}
	if len(missing.Missing) != 3 {
		t.Fatalf("expected 3 missing fields, got %v", missing.Missing)
	}
	for _, field := range []string{"AZURE_ENDPOINT_BASE", "AZURE_API_KEY", "AZURE_DEPLOYMENT_NAME"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %s in error, got %v", field, err)
		}
	}
}

func TestValidatePassesWithCredentials(t *testing.T) {
	cfg := defaults()
	cfg.AzureEndpointBase = "https://example.openai.azure.com"
	cfg.AzureAPIKey = "key"
	cfg.DeploymentName = "gpt-4o"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestEndpointBuildsDeploymentURL(t *testing.T) {
	cfg := defaults()
	cfg.AzureEndpointBase = "https://example.openai.azure.com/"
	cfg.DeploymentName = "gpt-4o"
	cfg.APIVersion = "2024-05-01-preview"

	want := "https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-05-01-preview"
	if got := cfg.Endpoint(); got != want {
		t.Fatalf("Endpoint() = %s, want %s", got, want)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearPipelineEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxConcurrentRequests != 250 {
		t.Fatalf("expected default concurrency 250, got %d", cfg.MaxConcurrentRequests)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", cfg.MaxRetries)
	}
	if cfg.RequestTimeoutSeconds != 300 {
		t.Fatalf("expected default request timeout 300, got %d", cfg.RequestTimeoutSeconds)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearPipelineEnv(t)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := "max_retries: 7\ntarget_rpm: 120\nazure_api_key: from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG_FILE", path)
	t.Setenv("MAX_RETRIES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("expected env to win over file, got max retries %d", cfg.MaxRetries)
	}
	if cfg.TargetRPM != 120 {
		t.Fatalf("expected file value for target rpm, got %d", cfg.TargetRPM)
	}
	if cfg.AzureAPIKey != "from-file" {
		t.Fatalf("expected file value for api key, got %q", cfg.AzureAPIKey)
	}
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	clearPipelineEnv(t)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(": not yaml ["), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable config file")
	}
}

func clearPipelineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PIPELINE_CONFIG_FILE", "AZURE_ENDPOINT_BASE", "AZURE_API_KEY", "API_KEY",
		"AZURE_DEPLOYMENT_NAME", "MAX_RETRIES", "MAX_CONCURRENT_REQUESTS", "TARGET_RPM",
		"REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}
