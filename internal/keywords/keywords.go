// Package keywords supplies the active keyword list for the harvest pipeline
// and records per-keyword usage. The live source may be unreachable; callers
// wrap it with WithFallback so a run never blocks on its availability.
package keywords

import (
	"context"

	"github.com/jmyang-dev/ainews-harvester/internal/logger"
)

// Source is the keyword capability consumed by the collector.
type Source interface {
	// SearchKeywords returns active keywords at or above minPriority.
	SearchKeywords(ctx context.Context, minPriority int) ([]string, error)
	// UpdateUsage records that keyword matched matchedArticles articles.
	UpdateUsage(ctx context.Context, keyword string, matchedArticles int) error
}

// DefaultKeywords is the built-in AI keyword list used when no live source is
// configured or the live source fails.
var DefaultKeywords = []string{
	"인공지능", "AI", "생성형AI", "ChatGPT", "LLM", "머신러닝", "딥러닝",
	"GPT", "자율주행", "AI반도체", "네이버AI", "카카오AI", "삼성AI",
	"클로바", "바드", "Bard", "구글AI", "OpenAI", "Claude",
}

// StaticSource serves a fixed keyword list and discards usage updates.
type StaticSource struct {
	Keywords []string
}

// NewStaticSource returns a static source; an empty list selects
// DefaultKeywords.
func NewStaticSource(kws []string) *StaticSource {
	if len(kws) == 0 {
		kws = DefaultKeywords
	}
	return &StaticSource{Keywords: kws}
}

func (s *StaticSource) SearchKeywords(context.Context, int) ([]string, error) {
	out := make([]string, len(s.Keywords))
	copy(out, s.Keywords)
	return out, nil
}

func (s *StaticSource) UpdateUsage(context.Context, string, int) error { return nil }

// fallbackSource tries the primary source and silently substitutes the
// fallback list when the primary errors or returns nothing.
type fallbackSource struct {
	primary  Source
	fallback Source
	log      logger.Logger
}

// WithFallback decorates primary so keyword lookups degrade to the fallback
// source instead of failing the run. Usage updates still go to the primary;
// their failures are reported by the caller's error handling.
func WithFallback(primary, fallback Source, log logger.Logger) Source {
	if fallback == nil {
		fallback = NewStaticSource(nil)
	}
	if primary == nil {
		return fallback
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &fallbackSource{primary: primary, fallback: fallback, log: log}
}

func (s *fallbackSource) SearchKeywords(ctx context.Context, minPriority int) ([]string, error) {
	kws, err := s.primary.SearchKeywords(ctx, minPriority)
	if err == nil && len(kws) > 0 {
		return kws, nil
	}
	if err != nil {
		s.log.WarnObj("keyword source unavailable, using fallback list", "keyword_fallback", map[string]any{
			"error": err.Error(),
		})
	}
	return s.fallback.SearchKeywords(ctx, minPriority)
}

func (s *fallbackSource) UpdateUsage(ctx context.Context, keyword string, matchedArticles int) error {
	return s.primary.UpdateUsage(ctx, keyword, matchedArticles)
}
