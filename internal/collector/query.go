package collector

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// maxCoreKeywords bounds the number of keywords OR-ed into one query;
	// the rest of the active set is still used for relevance filtering.
	maxCoreKeywords = 5

	// maxEncodedQueryLen keeps the percent-encoded query inside the URL
	// length commonly accepted by the feed endpoint.
	maxEncodedQueryLen = 2048

	defaultRecencyDays = 1
)

// BuildQuery turns up to maxCoreKeywords keywords and a recency window into a
// single feed search query: `"kw1" OR "kw2" ... when:Nd`.
func BuildQuery(keywords []string, recencyDays int) (string, error) {
	core := make([]string, 0, maxCoreKeywords)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		core = append(core, fmt.Sprintf("%q", kw))
		if len(core) == maxCoreKeywords {
			break
		}
	}
	if len(core) == 0 {
		return "", ErrNoKeywords
	}

	if recencyDays <= 0 {
		recencyDays = defaultRecencyDays
	}

	query := strings.Join(core, " OR ") + fmt.Sprintf(" when:%dd", recencyDays)
	if len(url.QueryEscape(query)) > maxEncodedQueryLen {
		return "", ErrQueryTooLong
	}
	return query, nil
}
