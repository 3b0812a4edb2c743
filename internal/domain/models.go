// Package domain contains the core models flowing through the harvest
// pipeline.
package domain

import (
	"time"
	"unicode/utf8"
)

// Article is the unit of work: created by the feed search, enriched during
// crawling and finalized once it lands in the run output.
type Article struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Source        string    `json:"source"`
	Summary       string    `json:"summary"`
	PublishedAt   time.Time `json:"published_at"`
	Content       string    `json:"content"`
	ContentLength int       `json:"content_length"`
	FoundKeywords []string  `json:"found_keywords"`
}

// SetContent updates the body text and keeps ContentLength consistent.
// Length is counted in runes so Korean text is not measured in bytes.
func (a *Article) SetContent(content string) {
	a.Content = content
	a.ContentLength = utf8.RuneCountInString(content)
}

// RunStats accumulates counters for a single pipeline invocation. It is owned
// by the collector and never shared between concurrent runs.
type RunStats struct {
	Searched       int            `json:"searched"`
	Crawled        int            `json:"crawled"`
	Filtered       int            `json:"filtered"`
	FailedCrawls   int            `json:"failed_crawls"`
	KeywordMatches map[string]int `json:"keyword_matches"`
}

// NewRunStats returns zeroed counters with an initialized match map.
func NewRunStats() RunStats {
	return RunStats{KeywordMatches: make(map[string]int)}
}

// CountMatch increments the per-keyword match counter.
func (s *RunStats) CountMatch(keyword string) {
	if s.KeywordMatches == nil {
		s.KeywordMatches = make(map[string]int)
	}
	s.KeywordMatches[keyword]++
}
