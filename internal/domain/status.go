package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonical order-status labels shown to customers.
const (
	StatusPreparing = "상품 준비중"
	StatusDelivered = "배송완료"
)

// statusRule maps one recognized raw-status synonym to its canonical label.
// Synonyms are stored NFC-normalized and lowercased. When ignoreSpaces is set
// the rule also matches the input with all whitespace removed, so "배송 완료"
// and "배송완료" resolve the same way.
type statusRule struct {
	synonym      string
	label        string
	ignoreSpaces bool
}

var statusRules = []statusRule{
	{synonym: "pending", label: StatusPreparing},
	{synonym: "배송완료", label: StatusDelivered, ignoreSpaces: true},
	{synonym: "delivered", label: StatusDelivered, ignoreSpaces: true},
}

// NormalizeOrderStatus maps a raw backend order status to its display label.
// Unrecognized statuses are returned exactly as received.
func NormalizeOrderStatus(raw string) string {
	label, _ := ClassifyOrderStatus(raw)
	return label
}

// ClassifyOrderStatus is NormalizeOrderStatus that also reports whether the
// status matched a known synonym.
func ClassifyOrderStatus(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimFunc(norm.NFC.String(raw), isStatusSpace))
	compact := stripSpaces(normalized)

	for _, r := range statusRules {
		if normalized == r.synonym || (r.ignoreSpaces && compact == r.synonym) {
			return r.label, true
		}
	}
	return raw, false
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if isStatusSpace(r) {
			return -1
		}
		return r
	}, s)
}

// isStatusSpace reports whitespace as backend clients strip it: Unicode
// White_Space plus the byte order mark, which some exports prepend.
func isStatusSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}
