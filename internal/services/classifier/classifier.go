package classifier

import (
	"fmt"
	"strings"

	"vpatgen/internal/domain"
)

// WarningNoMappedIssues is attached to Supports suggestions derived from an
// empty relevant-issue set.
const WarningNoMappedIssues = "No mapped issues found; verify coverage."

const maxRemarkTitles = 3

// Suggest derives a conformance suggestion for one criterion from the issues
// scoped to its assessment. Only open issues mapped to the criterion's code
// count. The function is pure: identical inputs yield identical output, and it
// never references data absent from the supplied issues.
func Suggest(criterion domain.Criterion, issues []domain.IssueRecord) domain.ConformanceSuggestion {
	relevant := relevantIssues(criterion.Code, issues)

	label := strings.TrimSpace(criterion.Code + " " + criterion.Name)

	if len(relevant) == 0 {
		return domain.ConformanceSuggestion{
			Conformance: domain.Supports,
			Remarks:     fmt.Sprintf("No open issues are mapped to %s. Supports is suggested pending manual review.", label),
			Warning:     WarningNoMappedIssues,
		}
	}

	severe := false
	for _, is := range relevant {
		if is.Severity == domain.SeverityCritical || is.Severity == domain.SeverityHigh {
			severe = true
			break
		}
	}

	var sb strings.Builder
	if len(relevant) == 1 {
		fmt.Fprintf(&sb, "1 open issue is mapped to %s.", label)
	} else {
		fmt.Fprintf(&sb, "%d open issues are mapped to %s.", len(relevant), label)
	}

	conformance := domain.PartiallySupports
	if severe {
		conformance = domain.DoesNotSupport
		sb.WriteString(" At least one mapped issue is rated critical or high severity.")
	} else {
		sb.WriteString(" All mapped issues are medium or low severity.")
	}

	if titles := dedupe(titlesOf(relevant), maxRemarkTitles); len(titles) > 0 {
		fmt.Fprintf(&sb, " Notable issues: %s.", strings.Join(titles, "; "))
	}

	if severe {
		sb.WriteString(" Does Not Support is suggested until these issues are resolved.")
	} else {
		sb.WriteString(" Partially Supports is suggested.")
	}

	return domain.ConformanceSuggestion{
		Conformance:     conformance,
		Remarks:         sb.String(),
		RelatedIssueIDs: dedupe(idsOf(relevant), 0),
		RelatedURLs:     dedupe(urlsOf(relevant), 0),
	}
}

func relevantIssues(code string, issues []domain.IssueRecord) []domain.IssueRecord {
	var out []domain.IssueRecord
	for _, is := range issues {
		if is.Status != "open" {
			continue
		}
		for _, c := range is.Criteria {
			if c == code {
				out = append(out, is)
				break
			}
		}
	}
	return out
}

func titlesOf(issues []domain.IssueRecord) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		if is.Title != "" {
			out = append(out, is.Title)
		}
	}
	return out
}

func idsOf(issues []domain.IssueRecord) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		if is.ID != "" {
			out = append(out, is.ID)
		}
	}
	return out
}

func urlsOf(issues []domain.IssueRecord) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		if is.URL != "" {
			out = append(out, is.URL)
		}
	}
	return out
}

// dedupe keeps first occurrences in order; limit 0 means unlimited.
func dedupe(in []string, limit int) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
