// Package template renders the per-school markdown template. The format
// is fixed by the existing template files: {Placeholder} tokens replaced
// by row values, nothing more.
package template

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

var (
	placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_/]+)\}`)
	wholeNumberPattern = regexp.MustCompile(`^-?\d+\.0$`)
)

// Template is one loaded markdown template with its placeholder set.
type Template struct {
	content      string
	placeholders []string
}

func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	placeholders := extractPlaceholders(string(data))
	if len(placeholders) == 0 {
		return nil, fmt.Errorf("template %s contains no placeholders", path)
	}
	return &Template{content: string(data), placeholders: placeholders}, nil
}

func (t *Template) Placeholders() []string {
	return t.placeholders
}

// Render substitutes every placeholder from the context; missing keys
// render the missing-data placeholder, and numeric strings with a zero
// fraction ("10.0") render as integers for readability.
func (t *Template) Render(ctx map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(t.content, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := ctx[name]
		if !ok {
			return domain.MissingDataPlaceholder
		}
		return formatNumberString(value)
	})
}

func extractPlaceholders(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	sort.Strings(names)
	return names
}

func formatNumberString(value string) string {
	if wholeNumberPattern.MatchString(value) {
		return value[:len(value)-2]
	}
	return value
}
