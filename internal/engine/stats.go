package engine

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Stats reports the size effect of a reduction. Token counts use the
// ~4 chars per token rule of thumb; they are estimates for budgeting,
// not tokenizer-accurate counts.
type Stats struct {
	OriginalBytes  int     `json:"original_bytes"`
	ReducedBytes   int     `json:"reduced_bytes"`
	OriginalTokens int     `json:"original_tokens"`
	ReducedTokens  int     `json:"reduced_tokens"`
	SavedPercent   float64 `json:"saved_percent"`
}

// EstimateTokens estimates the LLM token count of text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// ComputeStats compares source against its reduced form.
func ComputeStats(source, reduced string) Stats {
	s := Stats{
		OriginalBytes:  len(source),
		ReducedBytes:   len(reduced),
		OriginalTokens: EstimateTokens(source),
		ReducedTokens:  EstimateTokens(reduced),
	}
	if s.OriginalBytes > 0 {
		s.SavedPercent = 100 * float64(s.OriginalBytes-s.ReducedBytes) / float64(s.OriginalBytes)
	}
	return s
}

// SourceHash returns the blake3 hex digest of content, used to key
// archived maps to the exact bytes they were built from.
func SourceHash(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}
