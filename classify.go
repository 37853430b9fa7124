package main

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	fuzzyMaxDistance  = 0.3
	fuzzyMatchWindow  = 50
	fuzzyMinMatchLen  = 4
	fuzzyWinThreshold = 0.5

	strategyDirect   = "direct"
	strategyFuzzy    = "fuzzy"
	strategyFragment = "fragment"
	strategyNone     = "none"
)

// KeywordPattern is one weighted keyword group owned by a category.
type KeywordPattern struct {
	Category string
	Weight   float64
	Keywords []string
}

type fragmentPattern struct {
	category  string
	weight    float64
	fragments []string
}

// defaultPatterns mirrors the vocabulary printed on Brazilian card
// receipts. Meal/food voucher brands score highest because their presence
// is near-conclusive; credito/debito words are weaker since OCR often
// garbles them; generic voucher words are weakest.
func defaultPatterns() []KeywordPattern {
	return []KeywordPattern{
		{
			Category: CategoryMeal,
			Weight:   3,
			Keywords: []string{
				"refeicao", "refeição", "refei cao", "refei",
				"vale refeicao", "vale refeição", "ben", "greencard",
				"alelo refeicao", "alelo refeição",
				"ticket refeicao", "ticket refeição",
				"sodexo refeicao", "sodexo refeição",
			},
		},
		{
			Category: CategoryFood,
			Weight:   3,
			Keywords: []string{
				"alimentacao", "alimentação", "alimenta cao", "alimenta",
				"meal", "aumentac",
				"vale alimentacao", "vale alimentação",
				"ticket alimentacao", "ticket alimentação",
				"sodexo alimentacao", "sodexo alimentação",
			},
		},
		{
			Category: CategoryCredit,
			Weight:   2,
			Keywords: []string{
				"credito", "crédito", "credit", "parcelado", "parcelas", "vezes",
				"mastercard credit", "visa credit", "elo credit", "amex",
				"american express", "cartao credito", "cartão crédito",
				"comprovante credito", "conprovante credito",
			},
		},
		{
			Category: CategoryDebit,
			Weight:   2,
			Keywords: []string{
				"debito", "débito", "debit", "conprovante debito",
				"mastercard debit", "visa debit", "elo debit",
				"cartao debito", "cartão débito", "senha digitada",
				"comprovante debito",
			},
		},
		{
			Category: CategoryVoucher,
			Weight:   1,
			Keywords: []string{
				"voucher", "vale", "gift card", "presente", "cupom",
				"desconto", "promocional", "cortesia",
				"venda a voucher", "venda à voucher",
			},
		},
	}
}

// defaultFragments are short stems checked by the last-resort strategy,
// tuned for OCR output with broken spacing ("cr dito", "refei cao").
func defaultFragments() []fragmentPattern {
	return []fragmentPattern{
		{category: CategoryMeal, weight: 3, fragments: []string{"refei", "refeica", "alelo", "ben"}},
		{category: CategoryFood, weight: 3, fragments: []string{"alimenta", "meal", "ticket", "sodexo"}},
		{category: CategoryCredit, weight: 1, fragments: []string{"credit", "credito", "parcel", "vezes", "cr dito"}},
		{category: CategoryVoucher, weight: 1, fragments: []string{"voucher", "vale", "cupom"}},
	}
}

// Classifier assigns a payment category to normalized receipt text by
// trying three strategies in order: direct keyword scoring, fuzzy keyword
// scoring, then fragment stems. The first strategy producing a positive
// winner decides.
type Classifier struct {
	patterns  []KeywordPattern
	fragments []fragmentPattern
}

func NewClassifier() *Classifier {
	c := &Classifier{
		patterns:  defaultPatterns(),
		fragments: defaultFragments(),
	}
	// Keywords are matched against normalized text, so normalize them up
	// front. Accented and plain variants collapse to the same form; the
	// resulting duplicates only boost their own category, never another.
	for i := range c.patterns {
		for j, kw := range c.patterns[i].Keywords {
			c.patterns[i].Keywords[j] = NormalizeText(kw)
		}
	}
	return c
}

// AddKeywords appends extra keywords to a category at the given weight.
// Unknown categories are ignored.
func (c *Classifier) AddKeywords(category string, weight float64, keywords ...string) {
	if !knownCategories[category] || len(keywords) == 0 {
		return
	}
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = NormalizeText(kw); kw != "" {
			normalized = append(normalized, kw)
		}
	}
	if len(normalized) == 0 {
		return
	}
	c.patterns = append(c.patterns, KeywordPattern{
		Category: category,
		Weight:   weight,
		Keywords: normalized,
	})
}

// Classify runs the strategy cascade on already-normalized text.
func (c *Classifier) Classify(normalized string) ClassificationResult {
	if cat, ok := c.directKeywordMatch(normalized); ok {
		return ClassificationResult{Category: cat, Strategy: strategyDirect}
	}
	if cat, ok := c.fuzzyMatch(normalized); ok {
		return ClassificationResult{Category: cat, Strategy: strategyFuzzy}
	}
	if cat, ok := c.fragmentMatch(normalized); ok {
		return ClassificationResult{Category: cat, Strategy: strategyFragment}
	}
	return ClassificationResult{Category: CategoryUnknown, Strategy: strategyNone}
}

// directKeywordMatch scores plain substring containment. Each keyword
// contributes its pattern weight once, no matter how often it occurs.
func (c *Classifier) directKeywordMatch(text string) (string, bool) {
	scores := make(map[string]float64)
	for _, p := range c.patterns {
		for _, kw := range p.Keywords {
			if kw != "" && strings.Contains(text, kw) {
				scores[p.Category] += p.Weight
			}
		}
	}
	return bestCategory(scores, 0)
}

// fuzzyMatch tolerates OCR misspellings: each keyword of at least
// fuzzyMinMatchLen characters is slid over the first fuzzyMatchWindow
// offsets of the text and its best normalized Levenshtein distance taken.
// Matches within fuzzyMaxDistance contribute (1-distance)*weight; a
// category wins only if its total clears fuzzyWinThreshold.
func (c *Classifier) fuzzyMatch(text string) (string, bool) {
	scores := make(map[string]float64)
	for _, p := range c.patterns {
		for _, kw := range p.Keywords {
			if len(kw) < fuzzyMinMatchLen {
				continue
			}
			dist := bestWindowDistance(text, kw, fuzzyMatchWindow)
			if dist <= fuzzyMaxDistance {
				scores[p.Category] += (1 - dist) * p.Weight
			}
		}
	}
	return bestCategory(scores, fuzzyWinThreshold)
}

func (c *Classifier) fragmentMatch(text string) (string, bool) {
	scores := make(map[string]float64)
	for _, f := range c.fragments {
		for _, frag := range f.fragments {
			if strings.Contains(text, frag) {
				scores[f.category] += f.weight
			}
		}
	}
	return bestCategory(scores, 0)
}

// bestWindowDistance returns the smallest normalized edit distance between
// kw and any same-length substring of text starting within the first
// window offsets. Returns 1 when text is shorter than kw.
func bestWindowDistance(text, kw string, window int) float64 {
	if len(text) < len(kw) {
		return 1
	}
	last := len(text) - len(kw)
	if last > window {
		last = window
	}
	best := 1.0
	for i := 0; i <= last; i++ {
		d := float64(levenshtein.ComputeDistance(text[i:i+len(kw)], kw)) / float64(len(kw))
		if d < best {
			best = d
		}
		if best == 0 {
			break
		}
	}
	return best
}

// bestCategory picks the highest-scoring category above threshold,
// resolving ties by the fixed categoryPriority order rather than map
// iteration order.
func bestCategory(scores map[string]float64, threshold float64) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, cat := range categoryPriority {
		if s := scores[cat]; s > bestScore {
			best = cat
			bestScore = s
		}
	}
	if best == "" || bestScore <= threshold {
		return CategoryUnknown, false
	}
	return best, true
}
