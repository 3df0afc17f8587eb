package sheet

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	"github.com/FACorreiaa/raiox-score/pkg/textnorm"
)

// ChainKeyword maps a folded keyword found in a store name to the chain display name.
type ChainKeyword struct {
	Keyword string
	Chain   string
}

// DefaultChainKeywords is the known chain list. Order is significant: when a
// name contains several keywords, the one listed first wins.
func DefaultChainKeywords() []ChainKeyword {
	return []ChainKeyword{
		{"bahamas", "Bahamas"},
		{"bernardao", "Bernardao"},
		{"coelho diniz", "Coelho Diniz"},
		{"epa", "EPA"},
		{"mart minas", "Mart Minas"},
		{"super nosso", "Super Nosso"},
		{"supernosso", "Super Nosso"},
		{"verdemar", "Verdemar"},
		{"villefort", "Villefort"},
		{"abc", "ABC"},
		{"atacadao", "Atacadao"},
		{"big mais", "Big Mais"},
		{"carrefour", "Carrefour"},
		{"rena", "Rena"},
		{"sendas", "Sendas"},
		{"super bh", "Super BH"},
		{"sbh", "Super BH"},
		{"assai", "Assai"},
		{"mineirao", "EPA"},
		{"pampulha", "Super Nosso"},
	}
}

// ChainEngine infers a chain from a display name using an Aho-Corasick
// matcher, so every keyword is tested in a single pass over the name.
type ChainEngine struct {
	matcher  *ahocorasick.Matcher
	keywords []ChainKeyword
	mu       sync.Mutex // Match keeps per-call state inside the matcher
}

// NewChainEngine builds the matcher; nil keywords means DefaultChainKeywords.
func NewChainEngine(keywords []ChainKeyword) *ChainEngine {
	if keywords == nil {
		keywords = DefaultChainKeywords()
	}

	e := &ChainEngine{keywords: make([]ChainKeyword, 0, len(keywords))}
	patterns := make([][]byte, 0, len(keywords))
	for _, k := range keywords {
		folded := textnorm.Fold(k.Keyword)
		if folded == "" {
			continue
		}
		e.keywords = append(e.keywords, ChainKeyword{Keyword: folded, Chain: k.Chain})
		patterns = append(patterns, []byte(folded))
	}
	if len(patterns) > 0 {
		e.matcher = ahocorasick.NewMatcher(patterns)
	}
	return e
}

// Infer returns the chain for name, or store.OtherChain when no keyword occurs in it.
func (e *ChainEngine) Infer(name string) string {
	folded := textnorm.Fold(name)
	if e.matcher == nil || folded == "" {
		return store.OtherChain
	}

	e.mu.Lock()
	hits := e.matcher.Match([]byte(folded))
	e.mu.Unlock()

	best := -1
	for _, idx := range hits {
		if idx >= 0 && idx < len(e.keywords) && (best == -1 || idx < best) {
			best = idx
		}
	}
	if best == -1 {
		return store.OtherChain
	}
	return e.keywords[best].Chain
}

// Resolve picks the chain for a record: the sheet value when present,
// otherwise the chain inferred from the display name.
func (e *ChainEngine) Resolve(sheetChain, displayName string) string {
	if c := strings.TrimSpace(sheetChain); c != "" {
		return c
	}
	return e.Infer(displayName)
}
