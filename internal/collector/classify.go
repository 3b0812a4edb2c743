package collector

import (
	"strings"

	"github.com/jmyang-dev/ainews-harvester/internal/domain"
)

// maxFoundKeywords bounds the attribution list per article.
const maxFoundKeywords = 5

// IsRelevant reports whether at least one keyword occurs, case-insensitively,
// in the article's title, content or summary. Pure function, no side effects.
func IsRelevant(article domain.Article, keywords []string) bool {
	blob := strings.ToLower(article.Title + " " + article.Content + " " + article.Summary)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(blob, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// MatchKeywords returns the keywords found in the article's title and content
// (not summary), in discovery order, without duplicates, capped at
// maxFoundKeywords.
func MatchKeywords(article domain.Article, keywords []string) []string {
	blob := strings.ToLower(article.Title + " " + article.Content)

	var found []string
	seen := make(map[string]struct{}, maxFoundKeywords)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		if strings.Contains(blob, strings.ToLower(kw)) {
			seen[kw] = struct{}{}
			found = append(found, kw)
			if len(found) == maxFoundKeywords {
				break
			}
		}
	}
	return found
}
