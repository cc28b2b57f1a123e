// Package parse turns raw notification and SMS text into parsed payment
// candidates with a heuristic confidence score.
package parse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paywatch/paywatch/internal/model"
)

// Confidence scoring weights. Additive from the base, clamped to [0,100].
const (
	baseConfidence      = 50
	upiMentionBoost     = 20
	successPhraseBoost  = 15
	creditedPhraseBoost = 15
	referenceBoost      = 10
	knownAppBoost       = 10
	bankMentionBoost    = 5
	decimalAmountBoost  = 5
)

type appPattern struct {
	regex *regexp.Regexp
	name  string
}

// Parser extracts payment candidates from raw message text. It is pure and
// stateless after construction; a single instance is safe for concurrent use.
type Parser struct {
	gate         []string
	amount       []*regexp.Regexp
	reference    []*regexp.Regexp
	counterparty []*regexp.Regexp
	apps         []appPattern
}

// NewParser compiles the pattern tables into a parser.
func NewParser(cfg Config) (*Parser, error) {
	p := &Parser{gate: cfg.GateKeywords}

	var err error
	if p.amount, err = compileAll(cfg.AmountPatterns); err != nil {
		return nil, fmt.Errorf("amount patterns: %w", err)
	}
	if p.reference, err = compileAll(cfg.ReferencePatterns); err != nil {
		return nil, fmt.Errorf("reference patterns: %w", err)
	}
	if p.counterparty, err = compileAll(cfg.CounterpartyPatterns); err != nil {
		return nil, fmt.Errorf("counterparty patterns: %w", err)
	}

	// Map iteration order is random; fix it so detection is deterministic.
	needles := make([]string, 0, len(cfg.KnownApps))
	for needle := range cfg.KnownApps {
		needles = append(needles, needle)
	}
	sort.Strings(needles)

	for _, needle := range needles {
		re, compileErr := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(needle) + `\b`)
		if compileErr != nil {
			return nil, fmt.Errorf("app needle %q: %w", needle, compileErr)
		}
		p.apps = append(p.apps, appPattern{regex: re, name: cfg.KnownApps[needle]})
	}

	return p, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", pat, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Parse extracts a payment candidate from raw text. A nil return means the
// text carries no usable payment signal; that is a normal outcome, not an
// error, and Parse never panics on arbitrary input.
func (p *Parser) Parse(rawText string, channel model.SourceChannel, observedAt time.Time) *model.ParsedCandidate {
	lower := strings.ToLower(rawText)

	if !p.passesGate(lower) {
		return nil
	}

	amount, amountStr, ok := p.extractAmount(rawText)
	if !ok {
		return nil
	}

	candidate := &model.ParsedCandidate{
		Amount:            amount,
		Reference:         p.extractReference(rawText),
		CounterpartyLabel: p.extractCounterparty(rawText),
		SourceApp:         p.detectApp(rawText),
		SourceChannel:     channel,
		ObservedAt:        observedAt,
		RawText:           rawText,
	}
	candidate.ContentConfidence = p.score(lower, amountStr, candidate.SourceApp)

	return candidate
}

func (p *Parser) passesGate(lower string) bool {
	for _, keyword := range p.gate {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// extractAmount tries the ordered amount patterns and returns the parsed
// value plus the raw matched string (the decimal-point confidence boost
// looks at the string, not the float).
func (p *Parser) extractAmount(text string) (float64, string, bool) {
	for _, re := range p.amount {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}

		raw := m[1]
		amount, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || amount <= 0 {
			continue
		}

		return amount, raw, true
	}
	return 0, "", false
}

func (p *Parser) extractReference(text string) string {
	for _, re := range p.reference {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		// Reference tokens always carry digits; a bare word is a false hit.
		if !strings.ContainsAny(m[1], "0123456789") {
			continue
		}
		return m[1]
	}
	return ""
}

func (p *Parser) extractCounterparty(text string) string {
	for _, re := range p.counterparty {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if label := trimCounterparty(m[1]); label != "" {
			return label
		}
	}
	return ""
}

// trimCounterparty cuts the captured words at the first stopword and
// rejects captures that are only plumbing.
func trimCounterparty(raw string) string {
	words := strings.Fields(raw)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if counterpartyStopwords[strings.ToLower(w)] {
			break
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func (p *Parser) detectApp(text string) string {
	for _, app := range p.apps {
		if app.regex.MatchString(text) {
			return app.name
		}
	}
	return ""
}

func (p *Parser) score(lower, amountStr, sourceApp string) int {
	score := baseConfidence

	if strings.Contains(lower, "upi") || strings.Contains(lower, "bhim") {
		score += upiMentionBoost
	}
	if strings.Contains(lower, "transaction successful") || strings.Contains(lower, "payment successful") {
		score += successPhraseBoost
	}
	if strings.Contains(lower, "credited to account") || strings.Contains(lower, "amount credited") {
		score += creditedPhraseBoost
	}
	if strings.Contains(lower, "reference") || strings.Contains(lower, "txn id") {
		score += referenceBoost
	}
	if sourceApp != "" {
		score += knownAppBoost
	}
	if strings.Contains(lower, "bank") || strings.Contains(lower, "account") {
		score += bankMentionBoost
	}
	if strings.Contains(amountStr, ".") {
		score += decimalAmountBoost
	}

	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
