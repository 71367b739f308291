package types

import "strings"

// stopWords are filtered out of keyword extraction. The list covers the
// high-frequency English function words that carry no search signal.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "if": true, "then": true, "else": true, "when": true,
	"at": true, "by": true, "for": true, "with": true, "about": true,
	"against": true, "between": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true,
	"below": true, "to": true, "from": true, "up": true, "down": true,
	"in": true, "out": true, "on": true, "off": true, "over": true,
	"under": true, "again": true, "further": true, "once": true,
	"here": true, "there": true, "all": true, "any": true, "both": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "no": true, "nor": true, "not": true,
	"only": true, "own": true, "same": true, "so": true, "than": true,
	"too": true, "very": true, "can": true, "will": true, "just": true,
	"should": true, "now": true, "i": true, "me": true, "my": true,
	"we": true, "our": true, "you": true, "your": true, "it": true,
	"its": true, "this": true, "that": true, "these": true, "those": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "what": true, "which": true,
	"who": true, "whom": true, "how": true, "why": true, "where": true,
	"of": true, "as": true, "didn't": true, "don't": true,
}

// ExtractKeywords returns the stop-word-filtered, lowercased keywords
// of a text, preserving first-occurrence order and dropping duplicates
// and single-character tokens.
func ExtractKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})

	seen := make(map[string]bool, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if len(f) < 2 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		keywords = append(keywords, f)
	}
	return keywords
}

// IsStopWord reports whether the lowercased word carries no search signal.
func IsStopWord(word string) bool {
	return stopWords[strings.ToLower(word)]
}
