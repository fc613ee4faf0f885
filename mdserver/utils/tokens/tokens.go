// Package tokens wraps tiktoken with a process-wide cached encoder.
// Encoding data is fetched lazily on first use; callers must tolerate
// the encoder being unavailable (offline hosts) and fall back to
// character-based estimates.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	mu      sync.Mutex
	encoder *tiktoken.Tiktoken
	loadErr error
	loaded  bool
)

func getEncoder() (*tiktoken.Tiktoken, error) {
	mu.Lock()
	defer mu.Unlock()
	if !loaded {
		encoder, loadErr = tiktoken.GetEncoding(encodingName)
		loaded = true
	}
	return encoder, loadErr
}

// Count returns the token count of text, or an estimate of one token
// per four characters when the encoder cannot be loaded.
func Count(text string) int {
	enc, err := getEncoder()
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate cuts text to at most n tokens. The second return is false
// when the text already fit, or when the encoder is unavailable and no
// exact cut could be made.
func Truncate(text string, n int) (string, bool) {
	if n <= 0 {
		return "", text != ""
	}
	enc, err := getEncoder()
	if err != nil {
		// estimate: four characters per token
		limit := n * 4
		runes := []rune(text)
		if len(runes) <= limit {
			return text, false
		}
		return string(runes[:limit]), true
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= n {
		return text, false
	}
	return enc.Decode(ids[:n]), true
}
