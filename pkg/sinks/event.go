package sinks

import "time"

// Event is the run digest delivered to configured sinks after a harvest.
type Event struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Query       string         `json:"query,omitempty"`
	Articles    []EventArticle `json:"articles"`
	Stats       EventStats     `json:"stats"`
}

// EventArticle is the wire form of a collected article.
type EventArticle struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	Source        string    `json:"source"`
	PublishedAt   time.Time `json:"published_at"`
	ContentLength int       `json:"content_length"`
	FoundKeywords []string  `json:"found_keywords,omitempty"`
}

// EventStats mirrors the run statistics counters.
type EventStats struct {
	Searched     int            `json:"searched"`
	Crawled      int            `json:"crawled"`
	Filtered     int            `json:"filtered"`
	FailedCrawls int            `json:"failed_crawls"`
	Keywords     map[string]int `json:"keyword_matches,omitempty"`
}

// Logger is the minimal logging surface sinks need; it matches the
// harvester's internal logger so any implementation can be passed through.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
