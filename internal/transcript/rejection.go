package transcript

import "strings"

// rejectionPhrases are spoken by the intake agent when declining a case.
// Matching is a plain substring test over the lower-cased transcript.
var rejectionPhrases = []string{
	"i'm sorry, we only handle",
	"i'm sorry, but we",
}

// ShouldCreateCase decides whether the conversation should produce a case
// record. The bias is conservative: with no transcript to analyze we accept,
// so a thin webhook still produces a lead for a human to review.
func ShouldCreateCase(transcript string) (bool, string) {
	if transcript == "" {
		return true, "no transcript to analyze"
	}

	lower := strings.ToLower(transcript)
	for _, phrase := range rejectionPhrases {
		if strings.Contains(lower, phrase) {
			return false, "case rejected by agent"
		}
	}

	return true, "case accepted"
}
