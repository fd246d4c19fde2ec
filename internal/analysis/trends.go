package analysis

import (
	"regexp"
	"strings"
)

const noTrendCitations = "no specific citations for trends."

var DefaultTrendCitation = Citation{
	Title: "General Health Trends & Wellness",
	URL:   "https://www.who.int/health-topics",
}

var markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

func ExtractTrendSummary(raw string) TrendSummary {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	citationLine := -1
	for idx := len(lines) - 1; idx >= 0; idx-- {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == "" {
			continue
		}
		if hasFoldPrefix(trimmed, "citations:") {
			citationLine = idx
		}
		break
	}

	citations := make([]Citation, 0)
	body := lines
	if citationLine >= 0 {
		remainder := strings.TrimSpace(strings.TrimSpace(lines[citationLine])[len("citations:"):])
		body = lines[:citationLine]
		if !strings.EqualFold(remainder, noTrendCitations) {
			for _, match := range markdownLinkPattern.FindAllStringSubmatch(remainder, -1) {
				citations = append(citations, Citation{
					Title: strings.TrimSpace(match[1]),
					URL:   strings.TrimSpace(match[2]),
				})
			}
		}
	}
	if len(citations) == 0 {
		citations = append(citations, DefaultTrendCitation)
	}

	return TrendSummary{
		Summary:   strings.TrimSpace(strings.Join(body, "\n")),
		Citations: citations,
	}
}

func hasFoldPrefix(value, prefix string) bool {
	return len(value) >= len(prefix) && strings.EqualFold(value[:len(prefix)], prefix)
}
