package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

func newTestBuilder(t *testing.T) (*Builder, string, string) {
	t.Helper()
	root := t.TempDir()
	enhancedDir := filepath.Join(root, "enhanced")
	if err := os.MkdirAll(enhancedDir, 0o755); err != nil {
		t.Fatalf("mkdir enhanced: %v", err)
	}
	templatePath := filepath.Join(root, "template.html")
	outputPath := filepath.Join(root, "site", "index.html")
	return NewBuilder(enhancedDir, templatePath, outputPath), enhancedDir, templatePath
}

func TestDescriptionHTMLRendersMarkdown(t *testing.T) {
	builder, enhancedDir, _ := newTestBuilder(t)

	content := "## Om skolan\n\nEn **bra** skola.\n"
	if err := os.WriteFile(filepath.Join(enhancedDir, "1001"+successSuffix), []byte(content), 0o644); err != nil {
		t.Fatalf("write enhanced markdown: %v", err)
	}

	html := builder.DescriptionHTML("1001")
	if !strings.Contains(html, "<h2>Om skolan</h2>") {
		t.Fatalf("expected rendered heading, got %q", html)
	}
	if !strings.Contains(html, "<strong>bra</strong>") {
		t.Fatalf("expected rendered emphasis, got %q", html)
	}
}

func TestDescriptionHTMLFallbackWhenMissing(t *testing.T) {
	builder, _, _ := newTestBuilder(t)

	if got := builder.DescriptionHTML("9999"); got != fallbackDescriptionHTML {
		t.Fatalf("expected fallback HTML, got %q", got)
	}
}

func TestRenderIndexInjectsSchoolList(t *testing.T) {
	builder, _, templatePath := newTestBuilder(t)
	tpl := "<html><script>const schools = {school_list_json};</script></html>"
	if err := os.WriteFile(templatePath, []byte(tpl), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	entries := []domain.SiteEntry{
		{ID: "1001", Name: "Almskolan", DescriptionHTML: "<p>Fin skola.</p>"},
	}
	html, err := builder.RenderIndex(entries)
	if err != nil {
		t.Fatalf("RenderIndex() error = %v", err)
	}
	if strings.Contains(html, schoolListToken) {
		t.Fatalf("token must be replaced, got %q", html)
	}

	start := strings.Index(html, "const schools = ") + len("const schools = ")
	end := strings.Index(html, ";</script>")
	var decoded []domain.SiteEntry
	if err := json.Unmarshal([]byte(html[start:end]), &decoded); err != nil {
		t.Fatalf("injected payload is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "1001" || decoded[0].DescriptionHTML != "<p>Fin skola.</p>" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestWriteIndexCreatesOutputDir(t *testing.T) {
	builder, _, _ := newTestBuilder(t)

	if err := builder.WriteIndex("<html></html>"); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}
	data, err := os.ReadFile(builder.outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Fatalf("unexpected output: %q", data)
	}
}

func TestCleanHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty paragraph", "<p>text</p><p>  </p><p>more</p>", "<p>text</p><p>more</p>"},
		{"nbsp paragraph", "<p>&nbsp;</p><p>x</p>", "<p>x</p>"},
		{"break paragraph", "<p><br/></p><p>x</p>", "<p>x</p>"},
		{"heading then empty", "<h2>Rubrik</h2>\n<p> </p><p>x</p>", "<h2>Rubrik</h2><p>x</p>"},
		{"stacked breaks", "a<br><br><br>b", "a<br>b"},
		{"inter tag whitespace", "<p>a</p>\n  <p>b</p>", "<p>a</p><p>b</p>"},
	}
	for _, tc := range cases {
		if got := CleanHTML(tc.in); got != tc.want {
			t.Fatalf("%s: CleanHTML(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
