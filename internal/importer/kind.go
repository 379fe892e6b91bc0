package importer

import "fmt"

// Kind identifies one of the four importable record kinds.
type Kind string

const (
	KindFactsheet Kind = "factsheet"
	KindHoldings  Kind = "holdings"
	KindReturns   Kind = "returns"
	KindNav       Kind = "nav"
)

// ParseKind converts a caller-supplied file type string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFactsheet, KindHoldings, KindReturns, KindNav:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown import kind: %q", s)
	}
}

// SkipReason labels why a row was rejected during validation.
type SkipReason string

const (
	SkipInvalidIsin SkipReason = "invalid_isin"
	SkipNoFund      SkipReason = "no_fund"
	SkipInvalidDate SkipReason = "invalid_date"
	SkipInvalidNav  SkipReason = "invalid_nav"
)
