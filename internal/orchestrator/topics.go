package orchestrator

import "strings"

// maxTopics caps the tags attached to a promoted memory entry.
const maxTopics = 3

// topicVocabulary is the closed set of promotion tags, checked in
// order. Each topic lists the message substrings that trigger it.
var topicVocabulary = []struct {
	topic    string
	triggers []string
}{
	{"programming", []string{"code", "coding", "program", "typescript", "javascript", "golang", "python", "function", "implement", "cach", "test", "bug"}},
	{"design", []string{"design", "pattern", "architecture", "interface", "structure"}},
	{"data", []string{"data", "database", "sql", "query", "schema", "index"}},
	{"performance", []string{"performance", "fast", "slow", "optimiz", "latency", "benchmark"}},
	{"security", []string{"security", "auth", "encrypt", "vulnerab", "password"}},
	{"ai", []string{"ai", "machine learning", "model", "llm", "neural"}},
	{"architecture", []string{"architecture", "microservice", "pipeline", "distributed", "scalab"}},
}

// deriveTopics tags a message with up to maxTopics entries from the
// closed vocabulary.
func deriveTopics(text string) []string {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	var topics []string
	for _, entry := range topicVocabulary {
		for _, trigger := range entry.triggers {
			if matchTrigger(lower, words, trigger) {
				topics = append(topics, entry.topic)
				break
			}
		}
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}

// matchTrigger requires whole-word matches for short triggers so "ai"
// does not fire on "said" or "email".
func matchTrigger(lower string, words []string, trigger string) bool {
	if len(trigger) <= 3 {
		for _, w := range words {
			if w == trigger {
				return true
			}
		}
		return false
	}
	return strings.Contains(lower, trigger)
}
