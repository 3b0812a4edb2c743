package collector

import "strings"

// SelectorProfile maps a publisher domain suffix to an ordered list of
// selectors that locate the main article body. Profiles are static and
// immutable during a run.
type SelectorProfile struct {
	Domain    string
	Selectors []string
}

// boilerplateSelectors are removed from a matched subtree before its text is
// extracted: navigation, ads, social widgets, comments and tag lists.
var boilerplateSelectors = []string{
	"script", "style", "nav", "header", "footer", "aside",
	".advertisement", ".ad", ".ads", ".social-share",
	".related-articles", ".comment", ".tag",
}

// selectorProfiles is the per-publisher allow-list, ordered; the first entry
// whose domain suffix matches wins. genericProfile serves unlisted domains.
var selectorProfiles = []SelectorProfile{
	{Domain: "aitimes.com", Selectors: []string{".article-content", ".news-content"}},
	{Domain: "zdnet.co.kr", Selectors: []string{".view_con", ".article_view"}},
	{Domain: "chosun.com", Selectors: []string{".news_text", ".article_view"}},
	{Domain: "dt.co.kr", Selectors: []string{".article-content", ".view-con"}},
	{Domain: "etnews.com", Selectors: []string{".article_txt", ".news-content"}},
	{Domain: "hankyung.com", Selectors: []string{".article-content"}},
	{Domain: "mk.co.kr", Selectors: []string{".news_detail_text"}},
}

var genericProfile = SelectorProfile{
	Selectors: []string{
		"article", ".article-content", ".news-content", ".post-content",
		".entry-content", ".article-body", ".content", ".main-content",
	},
}

// profileFor returns the selector profile for the given host, falling back to
// the generic profile for unlisted domains.
func profileFor(host string) SelectorProfile {
	host = strings.ToLower(host)
	for _, p := range selectorProfiles {
		if host == p.Domain || strings.HasSuffix(host, "."+p.Domain) || strings.Contains(host, p.Domain) {
			return p
		}
	}
	return genericProfile
}
