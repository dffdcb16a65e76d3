// Package tokencount approximates token usage with tiktoken when the CLI
// does not report exact counts. The numbers are estimates, not guarantees.
package tokencount

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	encOnce sync.Once
	enc     tokenizer.Codec
	encErr  error
)

func codec() (tokenizer.Codec, error) {
	encOnce.Do(func() {
		enc, encErr = tokenizer.Get(tokenizer.O200kBase)
	})
	return enc, encErr
}

// Count returns the token count of text, falling back to a character/4
// estimate when the encoder is unavailable.
func Count(text string) int {
	e, err := codec()
	if err != nil {
		return len(text) / 4
	}
	n, err := e.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return n
}

// CountAll sums the token counts of all parts plus a small per-request
// formatting overhead.
func CountAll(parts ...string) int {
	total := 0
	for _, p := range parts {
		if p == "" {
			continue
		}
		total += Count(p)
	}
	// Overhead for the request framing.
	return total + 3
}
