package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"programming question", "How do I implement caching in TypeScript?", []string{"programming"}},
		{"multiple topics capped", "code design database performance security review", []string{"programming", "design", "data"}},
		{"security only", "How should I encrypt passwords?", []string{"security"}},
		{"short ai needs whole word", "she said the email arrived", nil},
		{"ai as word", "what can ai do for scheduling", []string{"ai"}},
		{"no topics", "I went hiking last weekend", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveTopics(tt.text))
		})
	}
}
