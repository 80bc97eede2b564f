// Package symbol translates canonical instrument identifiers into each
// data source's native ticker syntax.
//
// Canonical forms accepted:
//   - bare A-share codes: "600519", "000001"
//   - A-share codes with a Shanghai suffix: "600519.SH" / "600519.SS"
//   - Hong Kong codes with a market prefix: "hk00700"
//   - US equities with a market prefix: "usAAPL", or bare tickers: "AAPL"
//   - crypto pairs: "BTC-USD"
package symbol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Style selects a provider family's native ticker syntax.
type Style int

const (
	// StyleYahoo renders Yahoo Finance tickers: 600519.SS, 0700.HK, AAPL.
	StyleYahoo Style = iota
	// StyleTencent renders gtimg tickers: sh600519, sz000001, hk00700.
	StyleTencent
	// StyleSecID renders EastMoney secids: 1.600519, 0.000001.
	StyleSecID
)

// ErrFormat reports an identifier that cannot be rendered in the requested
// native syntax.
var ErrFormat = errors.New("unrecognized instrument identifier format")

var shanghaiPrefixes = []string{"600", "601", "603", "688"}
var shenzhenPrefixes = []string{"000", "002", "300"}

// Convert renders code in the given style. Conversion is pure and, for the
// Yahoo style, idempotent on its own domestic and Hong Kong output.
func Convert(style Style, code string) (string, error) {
	code = strings.TrimSpace(code)
	switch style {
	case StyleTencent:
		return toTencent(code)
	case StyleSecID:
		return toSecID(code)
	default:
		return toYahoo(code)
	}
}

// toYahoo applies the rules in priority order; the first match wins.
func toYahoo(code string) (string, error) {
	// 1. Explicit US market prefix: usAAPL -> AAPL.
	if strings.HasPrefix(strings.ToLower(code), "us") {
		return strings.ToUpper(code[2:]), nil
	}

	// 2. Bare tickers and crypto pairs pass through.
	if isAlpha(code) || strings.Contains(code, "-") {
		return strings.ToUpper(code), nil
	}

	// 3. Already carries a recognized suffix.
	upper := strings.ToUpper(code)
	if strings.Contains(upper, ".SS") || strings.Contains(upper, ".SZ") || strings.Contains(upper, ".HK") {
		return upper, nil
	}

	// 4. Hong Kong market prefix: hk00700 -> 0700.HK.
	if strings.HasPrefix(strings.ToLower(code), "hk") {
		n, err := strconv.Atoi(code[2:])
		if err != nil {
			return "", fmt.Errorf("%w: %q has a non-numeric Hong Kong code", ErrFormat, code)
		}
		return fmt.Sprintf("%04d.HK", n), nil
	}

	// 5. A-share classification by leading digits.
	bare := strings.TrimSuffix(strings.TrimSuffix(code, ".SH"), ".sh")
	if hasAnyPrefix(bare, shanghaiPrefixes) {
		return bare + ".SS", nil
	}
	if hasAnyPrefix(bare, shenzhenPrefixes) {
		return bare + ".SZ", nil
	}

	// 6. Unknown: pass through and let the fetch fail naturally.
	return code, nil
}

func toTencent(code string) (string, error) {
	lower := strings.ToLower(code)
	if strings.HasPrefix(lower, "sh") || strings.HasPrefix(lower, "sz") || strings.HasPrefix(lower, "hk") {
		return lower, nil
	}
	bare, exch := splitDomestic(code)
	switch exch {
	case "sh":
		return "sh" + bare, nil
	case "sz":
		return "sz" + bare, nil
	}
	return code, nil
}

func toSecID(code string) (string, error) {
	bare, exch := splitDomestic(code)
	switch exch {
	case "sh":
		return "1." + bare, nil
	case "sz":
		return "0." + bare, nil
	}
	return "", fmt.Errorf("%w: %q has no EastMoney secid", ErrFormat, code)
}

// splitDomestic strips any domestic-exchange suffix and classifies the bare
// code by its leading-digit group. exch is "" when the code is not a
// recognizable A-share identifier.
func splitDomestic(code string) (bare, exch string) {
	upper := strings.ToUpper(code)
	for _, suf := range []string{".SH", ".SS", ".SZ"} {
		upper = strings.TrimSuffix(upper, suf)
	}
	if !isDigits(upper) {
		return code, ""
	}
	if hasAnyPrefix(upper, shanghaiPrefixes) {
		return upper, "sh"
	}
	if hasAnyPrefix(upper, shenzhenPrefixes) {
		return upper, "sz"
	}
	return upper, ""
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
