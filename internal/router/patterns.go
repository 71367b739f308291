package router

import (
	"regexp"
	"strings"

	"github.com/normanking/synapse/pkg/types"
)

// memoryPatterns match temporal/recall phrasing that refers back to
// earlier conversation or stored facts.
var memoryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(what|when)\s+did\s+(we|i|you)\b`),
	regexp.MustCompile(`\b(remember|recall|remind)\b`),
	regexp.MustCompile(`\bwe\s+(discussed|talked|spoke|mentioned|covered)\b`),
	regexp.MustCompile(`\b(last\s+time|earlier|previously|before)\b`),
	regexp.MustCompile(`\b(yesterday|last\s+(week|month)|the\s+other\s+day)\b`),
	regexp.MustCompile(`\bdid\s+(we|i)\s+(talk|discuss|cover|mention)\b`),
	regexp.MustCompile(`\bwhat\s+(did|have)\s+(we|i)\s+(say|said|discussed?)\b`),
}

// knowledgePatterns match how/what/explain phrasing that seeks
// information.
var knowledgePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bhow\s+(do|does|can|should|would)\s+`),
	regexp.MustCompile(`\bhow\s+to\b`),
	regexp.MustCompile(`\bwhat\s+(is|are|does)\b`),
	regexp.MustCompile(`\b(explain|describe|define)\b`),
	regexp.MustCompile(`\btell\s+me\s+(about|more)\b`),
	regexp.MustCompile(`\b(best\s+(way|practice|approach))\b`),
	regexp.MustCompile(`\b(implement|build|create|design)\s+`),
	regexp.MustCompile(`\bwhy\s+(is|are|do|does|should)\b`),
}

// timeframeTriggers map keywords in the message to a search window.
var timeframeTriggers = []struct {
	pattern   *regexp.Regexp
	timeframe types.Timeframe
}{
	{regexp.MustCompile(`\b(today|yesterday|this\s+morning|last\s+night)\b`), types.TimeframeDay},
	{regexp.MustCompile(`\b(this\s+week|last\s+week|few\s+days)\b`), types.TimeframeWeek},
	{regexp.MustCompile(`\b(this\s+month|last\s+month|recently|a\s+while\s+ago)\b`), types.TimeframeMonth},
}

// categoryKeywords infer a knowledge category from domain vocabulary.
var categoryKeywords = map[string][]string{
	"programming": {
		"code", "coding", "program", "function", "bug", "compile",
		"typescript", "javascript", "golang", "python", "api",
		"cache", "caching", "test", "testing", "error", "async",
		"concurrency", "goroutine", "library", "framework",
	},
	"design": {
		"design", "architecture", "pattern", "interface", "structure",
		"module", "component", "pipeline", "dependency", "coupling",
	},
	"data": {
		"data", "database", "sql", "query", "index", "schema",
		"migration", "storage", "table", "retention",
	},
}

// commonVerbs are verbs whose presence makes a very short message
// non-ambiguous ("run tests" is an instruction, "Kubernetes" is not).
var commonVerbs = map[string]bool{
	"is": true, "are": true, "do": true, "does": true, "can": true,
	"run": true, "show": true, "tell": true, "give": true, "make": true,
	"help": true, "explain": true, "list": true, "find": true,
	"stop": true, "start": true, "go": true, "want": true, "need": true,
}

// pronouns used for pronoun-density ambiguity checks.
var pronouns = map[string]bool{
	"it": true, "this": true, "that": true, "they": true, "them": true,
	"he": true, "she": true, "those": true, "these": true, "one": true,
}

// bareReplies are short confirmations that carry no intent on their own.
var bareReplies = map[string]bool{
	"yes": true, "no": true, "ok": true, "okay": true, "sure": true,
	"maybe": true, "yep": true, "nope": true, "yeah": true,
}

// matchesAny reports whether any pattern matches the lowercased text.
func matchesAny(patterns []*regexp.Regexp, lower string) bool {
	for _, p := range patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// extractTimeframe returns the search window implied by the text, or
// empty when no temporal trigger is present.
func extractTimeframe(lower string) types.Timeframe {
	for _, t := range timeframeTriggers {
		if t.pattern.MatchString(lower) {
			return t.timeframe
		}
	}
	return ""
}

// inferCategory picks the knowledge category whose vocabulary overlaps
// the text the most. Empty when nothing matches (search all categories).
func inferCategory(lower string) string {
	best := ""
	bestHits := 0
	// Fixed iteration order keeps inference deterministic on ties.
	for _, category := range []string{"programming", "design", "data"} {
		hits := 0
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = category
		}
	}
	return best
}

// isAmbiguous applies the clarification heuristics: very short without
// a common verb, pronoun-dense with no prior history, or a bare short
// reply.
func isAmbiguous(lower string, historyLen int) bool {
	words := strings.Fields(lower)
	if len(words) == 0 {
		return true
	}

	if len(words) == 1 && bareReplies[strings.Trim(words[0], ".!?,")] {
		return true
	}

	if len(words) <= 3 {
		hasVerb := false
		for _, w := range words {
			if commonVerbs[strings.Trim(w, ".!?,")] {
				hasVerb = true
				break
			}
		}
		if !hasVerb {
			return true
		}
	}

	if historyLen == 0 {
		pronounCount := 0
		for _, w := range words {
			if pronouns[strings.Trim(w, ".!?,")] {
				pronounCount++
			}
		}
		if pronounCount > 0 && float64(pronounCount)/float64(len(words)) >= 0.5 {
			return true
		}
	}

	return false
}

// isSmallTalk reports whether a short message is a plain greeting,
// thanks or farewell that needs no clarification.
func isSmallTalk(lower string) bool {
	trimmed := strings.Trim(strings.TrimSpace(lower), ".!?,")
	smallTalk := []string{
		"hello", "hi", "hey", "good morning", "good afternoon",
		"good evening", "thanks", "thank you", "bye", "goodbye",
		"see you", "how are you",
	}
	for _, phrase := range smallTalk {
		if trimmed == phrase || strings.HasPrefix(trimmed, phrase+" ") {
			return true
		}
	}
	return false
}
