package domain

import "strings"

// CorrelationGroup is a shared-risk bucket a market can belong to.
type CorrelationGroup struct {
	Key      string
	Category string
}

// CorrelationRule maps a keyword set to a correlation group. Rules are data,
// not code: the matcher is built from a table so new groups need no changes here.
type CorrelationRule struct {
	Group    string
	Category string
	Keywords []string
}

// Correlation categories used by the default rule table and the stress scenarios.
const (
	CategoryPolitics  = "politics"
	CategoryCrypto    = "crypto"
	CategoryMacro     = "macro"
	CategorySports    = "sports"
	CategoryTech      = "tech"
	CategoryGeo       = "geopolitics"
	CategoryUmbrella  = "umbrella"
)

// DefaultCorrelationRules is the built-in keyword table: political figures,
// crypto assets, macro indicators, sports leagues, tech companies and
// geopolitical regions.
func DefaultCorrelationRules() []CorrelationRule {
	return []CorrelationRule{
		{Group: "trump", Category: CategoryPolitics, Keywords: []string{"trump", "donald trump", "maga"}},
		{Group: "biden", Category: CategoryPolitics, Keywords: []string{"biden", "joe biden"}},
		{Group: "us-election", Category: CategoryPolitics, Keywords: []string{"election", "presidential", "electoral college", "senate race", "house race"}},
		{Group: "bitcoin", Category: CategoryCrypto, Keywords: []string{"bitcoin", "btc"}},
		{Group: "ethereum", Category: CategoryCrypto, Keywords: []string{"ethereum", "eth "}},
		{Group: "solana", Category: CategoryCrypto, Keywords: []string{"solana", "sol "}},
		{Group: "crypto-market", Category: CategoryCrypto, Keywords: []string{"crypto", "altcoin", "memecoin"}},
		{Group: "fed-rates", Category: CategoryMacro, Keywords: []string{"fed ", "federal reserve", "rate cut", "rate hike", "fomc", "interest rate"}},
		{Group: "inflation", Category: CategoryMacro, Keywords: []string{"inflation", "cpi", "pce"}},
		{Group: "recession", Category: CategoryMacro, Keywords: []string{"recession", "gdp", "unemployment"}},
		{Group: "nfl", Category: CategorySports, Keywords: []string{"nfl", "super bowl"}},
		{Group: "nba", Category: CategorySports, Keywords: []string{"nba", "basketball"}},
		{Group: "soccer", Category: CategorySports, Keywords: []string{"premier league", "champions league", "world cup", "la liga"}},
		{Group: "ai-companies", Category: CategoryTech, Keywords: []string{"openai", "chatgpt", "anthropic", "gpt-5", "artificial intelligence"}},
		{Group: "big-tech", Category: CategoryTech, Keywords: []string{"apple", "microsoft", "google", "nvidia", "tesla", "amazon", "meta "}},
		{Group: "russia-ukraine", Category: CategoryGeo, Keywords: []string{"russia", "ukraine", "putin", "ceasefire"}},
		{Group: "middle-east", Category: CategoryGeo, Keywords: []string{"israel", "gaza", "iran", "hezbollah", "middle east"}},
		{Group: "china-taiwan", Category: CategoryGeo, Keywords: []string{"china", "taiwan", "xi jinping"}},
	}
}

// CorrelationMatcher resolves a market's text to the correlation groups it
// belongs to. A market may map to several groups at once; one with no match
// is uncorrelated and excluded from group exposure checks.
type CorrelationMatcher struct {
	rules []CorrelationRule
}

// NewCorrelationMatcher builds a matcher from a rule table.
func NewCorrelationMatcher(rules []CorrelationRule) *CorrelationMatcher {
	return &CorrelationMatcher{rules: rules}
}

// Groups returns every correlation group the market's question and slug hit,
// plus the generic slug-prefix umbrella group when the slug has at least two
// segments (markets under the same event share the prefix).
func (m *CorrelationMatcher) Groups(question, slug string) []CorrelationGroup {
	text := strings.ToLower(question + " " + slug)
	var groups []CorrelationGroup
	seen := make(map[string]bool)

	for _, rule := range m.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				if !seen[rule.Group] {
					seen[rule.Group] = true
					groups = append(groups, CorrelationGroup{Key: rule.Group, Category: rule.Category})
				}
				break
			}
		}
	}

	if umbrella := slugUmbrella(slug); umbrella != "" && !seen[umbrella] {
		groups = append(groups, CorrelationGroup{Key: umbrella, Category: CategoryUmbrella})
	}

	return groups
}

// PrimaryGroup returns the group used to correlate Monte Carlo shocks:
// the first keyword hit, falling back to the slug umbrella. Empty means
// the position draws independently.
func (m *CorrelationMatcher) PrimaryGroup(question, slug string) string {
	groups := m.Groups(question, slug)
	if len(groups) == 0 {
		return ""
	}
	return groups[0].Key
}

// slugUmbrella derives the generic group key from the first two slug segments.
func slugUmbrella(slug string) string {
	parts := strings.Split(strings.ToLower(slug), "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return "slug:" + parts[0] + "-" + parts[1]
}
