package collector

import (
	"reflect"
	"testing"

	"github.com/jmyang-dev/ainews-harvester/internal/domain"
)

func TestIsRelevant(t *testing.T) {
	art := domain.Article{
		Title:   "Samsung unveils new chip",
		Content: "The accelerator targets LLM inference workloads.",
		Summary: "반도체 발표",
	}

	if !IsRelevant(art, []string{"llm"}) {
		t.Error("case-insensitive content match should be relevant")
	}
	if !IsRelevant(art, []string{"반도체"}) {
		t.Error("summary match should be relevant")
	}
	if IsRelevant(art, []string{"ChatGPT", "금리"}) {
		t.Error("article without any keyword should not be relevant")
	}
	if IsRelevant(art, nil) {
		t.Error("empty keyword list matches nothing")
	}
}

func TestIsRelevantMonotonic(t *testing.T) {
	art := domain.Article{Title: "AI news roundup"}
	base := []string{"AI"}
	if !IsRelevant(art, base) {
		t.Fatal("base keyword should match")
	}
	// Adding keywords can only widen the match.
	if !IsRelevant(art, append([]string{"금리", "부동산"}, base...)) {
		t.Error("superset of a matching keyword list must still match")
	}
}

func TestMatchKeywords(t *testing.T) {
	art := domain.Article{
		Title:   "ChatGPT와 Claude 비교",
		Content: "OpenAI의 ChatGPT 그리고 Anthropic의 Claude 모델에 대한 분석.",
		Summary: "여기에만 있는 키워드: 자율주행",
	}

	got := MatchKeywords(art, []string{"ChatGPT", "Claude", "자율주행", "금리"})
	want := []string{"ChatGPT", "Claude"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchKeywords = %v, want %v (summary excluded, discovery order)", got, want)
	}
}

func TestMatchKeywordsDedupAndCap(t *testing.T) {
	art := domain.Article{Content: "a b c d e f g"}
	kws := []string{"a", "a", "b", "c", "d", "e", "f", "g"}

	got := MatchKeywords(art, kws)
	if len(got) != maxFoundKeywords {
		t.Fatalf("got %d keywords, want cap %d", len(got), maxFoundKeywords)
	}
	seen := make(map[string]bool)
	for _, kw := range got {
		if seen[kw] {
			t.Errorf("duplicate keyword %q in result", kw)
		}
		seen[kw] = true
	}
}
