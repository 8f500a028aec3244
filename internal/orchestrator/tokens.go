package orchestrator

import (
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

var (
	tokenEncoder     *tiktoken.Tiktoken
	tokenEncoderOnce sync.Once
)

func encoder() *tiktoken.Tiktoken {
	tokenEncoderOnce.Do(func() {
		// Offline environments may lack the BPE cache; nil falls back to
		// the heuristic.
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			tokenEncoder = enc
		}
	})
	return tokenEncoder
}

// ContextTokens estimates the token footprint of the current conversation,
// shown in the REPL prompt line.
func (o *Orchestrator) ContextTokens() int {
	total := 0
	for _, msg := range o.messages {
		total += 4 // per-message wire overhead
		total += countText(msg.Content)
		for _, call := range msg.ToolCalls {
			total += countText(call.Function.Name)
			total += countText(call.Function.Arguments)
		}
	}
	return total
}

func countText(text string) int {
	if text == "" {
		return 0
	}
	if enc := encoder(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	// Rough average of 4 characters per token.
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
