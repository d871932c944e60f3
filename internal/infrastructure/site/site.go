// Package site assembles the static browsable page from enhanced
// markdown documents and the school register.
package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

const (
	fallbackDescriptionHTML = "<p><em>Description not available for this school.</em></p>"
	errorDescriptionHTML    = "<p><em>Error loading description.</em></p>"

	noDataHTML = `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">` +
		`<title>School Information</title>` +
		`<style>body{font-family: sans-serif; text-align: center; padding: 50px;}</style></head>` +
		`<body><h1>School Information</h1><p>No school data is available to display.</p></body></html>`

	schoolListToken = "{school_list_json}"
	successSuffix   = "_ai_description.md"
)

// Builder renders per-school description HTML and the final index page.
type Builder struct {
	enhancedDir  string
	templatePath string
	outputPath   string
	markdown     goldmark.Markdown
}

func NewBuilder(enhancedDir, templatePath, outputPath string) *Builder {
	return &Builder{
		enhancedDir:  enhancedDir,
		templatePath: templatePath,
		outputPath:   outputPath,
		markdown:     goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// DescriptionHTML converts one school's enhanced markdown to cleaned
// HTML. Schools without a success artifact get the fallback text; a read
// or render failure degrades to the error text rather than aborting the
// site build.
func (b *Builder) DescriptionHTML(key string) string {
	path := filepath.Join(b.enhancedDir, key+successSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fallbackDescriptionHTML
		}
		slog.Warn("read_enhanced_markdown_failed", "key", key, "error", err)
		return errorDescriptionHTML
	}

	var buf bytes.Buffer
	if err := b.markdown.Convert(data, &buf); err != nil {
		slog.Warn("render_markdown_failed", "key", key, "error", err)
		return errorDescriptionHTML
	}
	return CleanHTML(buf.String())
}

// RenderIndex injects the school list JSON into the site template.
func (b *Builder) RenderIndex(entries []domain.SiteEntry) (string, error) {
	tpl, err := os.ReadFile(b.templatePath)
	if err != nil {
		return "", fmt.Errorf("read site template: %w", err)
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal school list: %w", err)
	}
	return strings.ReplaceAll(string(tpl), schoolListToken, string(payload)), nil
}

func (b *Builder) RenderNoData() string {
	return noDataHTML
}

func (b *Builder) WriteIndex(html string) error {
	if err := os.MkdirAll(filepath.Dir(b.outputPath), 0o755); err != nil {
		return fmt.Errorf("create site output dir: %w", err)
	}
	if err := os.WriteFile(b.outputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write site output: %w", err)
	}
	return nil
}

var (
	emptyParagraph      = regexp.MustCompile(`<p>\s*</p>`)
	nbspParagraph       = regexp.MustCompile(`<p>&nbsp;</p>`)
	breakParagraph      = regexp.MustCompile(`<p><br\s*/?>\s*</p>`)
	headingThenEmpty    = regexp.MustCompile(`(<h[1-6][^>]*>.*?</h[1-6]>)\s*<p>\s*</p>`)
	repeatedBreaks      = regexp.MustCompile(`(<br\s*/?>\s*){2,}`)
	repeatedBlankLines  = regexp.MustCompile(`\n\s*\n\s*\n+`)
	interTagWhitespace  = regexp.MustCompile(`>\s+<`)
)

// CleanHTML removes the empty paragraphs and stacked breaks the markdown
// renderer tends to emit around headings and tables.
func CleanHTML(html string) string {
	html = emptyParagraph.ReplaceAllString(html, "")
	html = nbspParagraph.ReplaceAllString(html, "")
	html = breakParagraph.ReplaceAllString(html, "")
	html = headingThenEmpty.ReplaceAllString(html, "$1")
	html = repeatedBreaks.ReplaceAllString(html, "<br>")
	html = repeatedBlankLines.ReplaceAllString(html, "\n\n")
	html = interTagWhitespace.ReplaceAllString(html, "><")
	return strings.TrimSpace(html)
}
