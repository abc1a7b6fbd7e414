package repository

import "strings"

// Capability identifies one resolvable quantity.
type Capability string

const (
	CapabilityQuote      Capability = "quote"
	CapabilityHistorical Capability = "historical"
	CapabilityNews       Capability = "news"
	CapabilitySentiment  Capability = "sentiment"
)

// market suffixes stripped during symbol normalization
var marketSuffixes = []string{".NS", ".BO"}

// NormalizeSymbol uppercases a symbol and strips the market suffix so cache
// keys are stable regardless of how the caller spelled the symbol.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range marketSuffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	return s
}

// CacheKey builds the capability-scoped cache key for a symbol, with
// optional extra parameters appended in order.
func CacheKey(cap Capability, symbol string, params ...string) string {
	parts := append([]string{string(cap), NormalizeSymbol(symbol)}, params...)
	return strings.Join(parts, ":")
}
