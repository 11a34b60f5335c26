// Package textutils provides text cleanup and extraction helpers shared by
// the statement parsers and the recurring detector.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	tokenSplitRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	counterpartyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:payee|beneficiary|merchant|recipient)\s*:\s*([^,;|]+)`),
		// names stop at the first digit so trailing amounts and balances stay out
		regexp.MustCompile(`(?i)\b(?:paid to|payment to|transfer to|sent to)\s+([A-Za-z][A-Za-z&.' ]{1,40})`),
		regexp.MustCompile(`(?i)\b(?:received from|transfer from|from)\s+([A-Za-z][A-Za-z&.' ]{1,40})`),
		regexp.MustCompile(`(?i)\bUPI[/\-]([A-Za-z][A-Za-z0-9&.' ]{1,40}?)(?:[/\-@]|$)`),
	}
	counterpartyStop = regexp.MustCompile(`(?i)\s+(?:on|via|ref|for|at|txn|upi)\b.*$`)
)

// CleanDescription trims leading and trailing characters that are neither
// letters nor digits and collapses whitespace runs to a single space.
func CleanDescription(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Tokenize lowercases s and returns its words longer than minLen runes,
// in order of appearance and without duplicates.
func Tokenize(s string, minLen int) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range tokenSplitRe.Split(strings.ToLower(s), -1) {
		if len([]rune(tok)) <= minLen {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ExtractCounterparty tries to find the other party of a transaction in a
// free-text description ("Payee: X", "paid to X", "UPI/X/..."). The result
// is title-cased; an empty string means no counterparty was found.
func ExtractCounterparty(description string) string {
	for _, re := range counterpartyPatterns {
		m := re.FindStringSubmatch(description)
		if len(m) < 2 {
			continue
		}
		name := counterpartyStop.ReplaceAllString(m[1], "")
		name = CleanDescription(name)
		if len(name) < 2 {
			continue
		}
		return FormatName(name)
	}
	return ""
}

// FormatName title-cases a merchant or party name for display.
// A Caser is stateful, so one is built per call.
func FormatName(name string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(name)))
}
