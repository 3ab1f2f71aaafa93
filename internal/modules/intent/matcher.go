package intent

import (
	"strings"
	"unicode"
)

// MatcherConfig holds the scoring weights for Matcher.
type MatcherConfig struct {
	ExactPoints   int
	PartialPoints int
	Divisor       float64
	Threshold     float64
}

func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		ExactPoints:   2,
		PartialPoints: 1,
		Divisor:       3,
		Threshold:     0.3,
	}
}

// Matcher scores free text against the keyword lists of a category table.
// A keyword that appears as a whole word (or its plural) earns ExactPoints,
// one that only appears inside another word earns PartialPoints. The raw sum
// is divided by Divisor and capped at 1.
type Matcher struct {
	categories []ServiceCategory
	cfg        MatcherConfig
}

func NewMatcher(categories []ServiceCategory, cfg MatcherConfig) *Matcher {
	if cfg.Divisor <= 0 {
		cfg.Divisor = DefaultMatcherConfig().Divisor
	}
	return &Matcher{categories: categories, cfg: cfg}
}

func (m *Matcher) Categories() []ServiceCategory {
	return m.categories
}

// Match returns the best category scoring strictly above the threshold, or nil.
// Ties keep the category seen first.
func (m *Matcher) Match(text string) *IntentMatch {
	t := newText(text)
	if t.lower == "" {
		return nil
	}
	var best *IntentMatch
	for _, c := range m.categories {
		conf := m.score(t, c.Keywords)
		if conf <= m.cfg.Threshold {
			continue
		}
		if best == nil || conf > best.Confidence {
			best = &IntentMatch{
				Category:      c.Category,
				Confidence:    conf,
				Subcategories: append([]string(nil), c.Subcategories...),
			}
		}
	}
	return best
}

// Score returns the normalized confidence of text for one category.
func (m *Matcher) Score(text string, c ServiceCategory) float64 {
	return m.score(newText(text), c.Keywords)
}

func (m *Matcher) score(t text, keywords []string) float64 {
	raw := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || !strings.Contains(t.lower, kw) {
			continue
		}
		if t.hasWord(kw) || t.hasWord(kw+"s") || t.hasWord(kw+"es") {
			raw += m.cfg.ExactPoints
		} else {
			raw += m.cfg.PartialPoints
		}
	}
	conf := float64(raw) / m.cfg.Divisor
	if conf > 1 {
		conf = 1
	}
	return conf
}

// text is a lower-cased utterance plus its word-normalized form, padded with
// spaces so word and word-prefix checks are plain substring tests.
type text struct {
	lower  string
	words  []string
	padded string
}

func newText(s string) text {
	lower := strings.ToLower(strings.TrimSpace(s))
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return text{
		lower:  lower,
		words:  words,
		padded: " " + strings.Join(words, " ") + " ",
	}
}

// hasWord reports whether w (possibly several words) occurs on word boundaries.
func (t text) hasWord(w string) bool {
	return strings.Contains(t.padded, " "+w+" ")
}

// hasStem reports whether any stem starts a word of the text.
func (t text) hasStem(stems ...string) bool {
	for _, s := range stems {
		if strings.Contains(t.padded, " "+s) {
			return true
		}
	}
	return false
}

func (t text) hasAnyWord(ws ...string) bool {
	for _, w := range ws {
		if t.hasWord(w) {
			return true
		}
	}
	return false
}

func (t text) contains(subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t.lower, s) {
			return true
		}
	}
	return false
}
