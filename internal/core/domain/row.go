package domain

import (
	"fmt"
	"sort"
	"strings"
)

// MissingDataPlaceholder is rendered wherever a school row has no usable
// value for a template placeholder. The literal matches the placeholder
// baked into the markdown templates.
const MissingDataPlaceholder = "[Data Saknas]"

// surveyYearSuffixes lists survey-year column suffixes in preference order;
// the newest survey wins when a school answered in more than one year.
var surveyYearSuffixes = []string{"_2023/2024", "_2022/2023"}

const surveyCategoryPrefix = "SurveyAnswerCategory"

// Row is one school record loaded from the tabular source.
type Row map[string]string

// Value returns the trimmed cell for a column, or MissingDataPlaceholder
// when the column is absent, empty, or explicitly marked N/A.
func (r Row) Value(column string) string {
	v, ok := r[column]
	if !ok {
		return MissingDataPlaceholder
	}
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "N/A") {
		return MissingDataPlaceholder
	}
	return v
}

// SurveyAnswer resolves a survey-category placeholder against the
// year-suffixed columns, preferring the most recent survey year.
func (r Row) SurveyAnswer(placeholder string) string {
	for _, suffix := range surveyYearSuffixes {
		if v := r.Value(placeholder + suffix); v != MissingDataPlaceholder {
			return v
		}
	}
	return MissingDataPlaceholder
}

// SurveyYear reports which survey year the rendered report draws from:
// the first preferred year for which any survey-category placeholder has
// data.
func (r Row) SurveyYear(placeholders []string) string {
	for _, suffix := range surveyYearSuffixes {
		for _, placeholder := range placeholders {
			if !strings.HasPrefix(placeholder, surveyCategoryPrefix) {
				continue
			}
			if r.Value(placeholder+suffix) != MissingDataPlaceholder {
				return strings.TrimPrefix(suffix, "_")
			}
		}
	}
	return MissingDataPlaceholder
}

// IsSurveyCategory reports whether a template placeholder must be resolved
// through the year-preference logic rather than as a direct column.
func IsSurveyCategory(placeholder string) bool {
	return strings.HasPrefix(placeholder, surveyCategoryPrefix)
}

// School is one unique entry on the generated site.
type School struct {
	Code string
	Name string
}

// SchoolsFromRows deduplicates rows by school code, fills a fallback name
// for unnamed schools, and sorts by display name.
func SchoolsFromRows(rows []Row) []School {
	seen := make(map[string]struct{}, len(rows))
	schools := make([]School, 0, len(rows))
	for _, row := range rows {
		code := strings.TrimSpace(row["SchoolCode"])
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}

		name := strings.TrimSpace(row["SchoolName"])
		if name == "" {
			name = fmt.Sprintf("School (Code: %s)", code)
		}
		schools = append(schools, School{Code: code, Name: name})
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools
}

// SiteEntry is the per-school payload embedded into the generated page.
type SiteEntry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DescriptionHTML string `json:"ai_description_html"`
}
