package template

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func TestLoadExtractsPlaceholders(t *testing.T) {
	tpl, err := Load(writeTemplate(t, "# {SchoolName}\n\nKod: {SchoolCode}\nTrygghet: {SurveyAnswerCategoryTrygghet}\nKod igen: {SchoolCode}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"SchoolCode", "SchoolName", "SurveyAnswerCategoryTrygghet"}
	if !reflect.DeepEqual(tpl.Placeholders(), want) {
		t.Fatalf("Placeholders() = %v, want %v", tpl.Placeholders(), want)
	}
}

func TestLoadRejectsPlaceholderFreeTemplate(t *testing.T) {
	if _, err := Load(writeTemplate(t, "# Static report\n")); err == nil {
		t.Fatalf("expected error for a template without placeholders")
	}
}

func TestRenderSubstitutesAndFallsBack(t *testing.T) {
	tpl, err := Load(writeTemplate(t, "# {SchoolName}\nKommun: {Municipality}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	out := tpl.Render(map[string]string{"SchoolName": "Vasaskolan"})
	if !strings.Contains(out, "# Vasaskolan") {
		t.Fatalf("expected substituted name, got %q", out)
	}
	if !strings.Contains(out, "Kommun: [Data Saknas]") {
		t.Fatalf("expected missing-data placeholder, got %q", out)
	}
}

func TestRenderFormatsWholeNumbers(t *testing.T) {
	tpl, err := Load(writeTemplate(t, "Betyg: {Grade}\nAndel: {Share}\nNegativ: {Neg}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	out := tpl.Render(map[string]string{"Grade": "10.0", "Share": "87.5", "Neg": "-3.0"})
	if !strings.Contains(out, "Betyg: 10\n") {
		t.Fatalf("expected 10.0 rendered as 10, got %q", out)
	}
	if !strings.Contains(out, "Andel: 87.5") {
		t.Fatalf("fractional values must pass through, got %q", out)
	}
	if !strings.Contains(out, "Negativ: -3\n") {
		t.Fatalf("expected -3.0 rendered as -3, got %q", out)
	}
}
