// Package tokenizer approximates token counts for transcript text.
package tokenizer

import (
	"log"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// encodingName is a general-purpose subword encoding that tracks the
// provider's real tokenizer to within roughly 10%.
const encodingName = "cl100k_base"

// fallbackCharsPerToken is the character-density heuristic used when
// the encoding cannot be loaded.
const fallbackCharsPerToken = 4

// Estimator counts tokens with a lazily-initialized tiktoken encoding,
// falling back to a characters/4 heuristic when the encoding is
// unavailable. The encoding is loaded once and reused; a load failure
// is remembered so it is not retried on every call.
type Estimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewEstimator returns an Estimator. The encoding is not loaded until
// the first Estimate call.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the approximate token count for text.
// Empty text yields 0.
func (e *Estimator) Estimate(text string) int {
	if text == "" {
		return 0
	}

	e.once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			log.Printf("jacques: tokenizer: loading %s encoding: %v (using chars/%d fallback)",
				encodingName, err, fallbackCharsPerToken)
			return
		}
		e.enc = enc
	})

	if e.enc != nil {
		return len(e.enc.Encode(text, nil, nil))
	}
	return len(text) / fallbackCharsPerToken
}
