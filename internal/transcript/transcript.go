// Package transcript turns raw call transcripts into structured caller
// information. Transcripts are two-party dialogues where lines may carry a
// speaker tag ("Human:", "Caller:", "Bot:", "AI Agent:") in plain or
// markdown-bold form. Nothing here ever fails: missing fields come back empty.
package transcript

import (
	"regexp"
	"strings"
)

// CallerInfo is the identity extracted from a transcript. Every field is
// independently optional; absence is an empty string, never an error.
type CallerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

var (
	callerPrefixRe = regexp.MustCompile(`(?i)^\**\s*(caller|human):\**\s*`)
	agentPrefixRe  = regexp.MustCompile(`(?i)^\**\s*(bot|ai agent):\**\s*`)
	leadingStarsRe = regexp.MustCompile(`^\*+`)
)

// isCallerLine reports whether a line is spoken by the caller side. Tags show
// up as "human:", "caller:", "**Caller:**" and similar asterisk-wrapped forms.
func isCallerLine(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(l, "human:") ||
		strings.HasPrefix(l, "caller:") ||
		strings.HasPrefix(l, "**caller:") ||
		strings.Contains(l, "**caller:**") ||
		strings.Contains(l, "caller:**")
}

// isAgentAskingName reports whether an agent line is asking the caller for
// their name, which makes the following caller line a name candidate.
func isAgentAskingName(line string) bool {
	l := strings.ToLower(line)
	if !strings.Contains(l, "bot:") && !strings.Contains(l, "ai agent:") {
		return false
	}
	return strings.Contains(l, "name") || strings.Contains(l, "could i have")
}

// stripSpeakerTag removes any caller or agent tag plus markup asterisks from
// the front of a line.
func stripSpeakerTag(line string) string {
	s := strings.TrimSpace(line)
	s = callerPrefixRe.ReplaceAllString(s, "")
	s = agentPrefixRe.ReplaceAllString(s, "")
	s = leadingStarsRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SplitSpeakers separates a transcript into caller-side and agent-side lines
// with their speaker tags stripped. Untagged lines belong to neither bucket.
func SplitSpeakers(transcript string) (caller, agent []string) {
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case isCallerLine(trimmed):
			if clean := stripSpeakerTag(trimmed); clean != "" {
				caller = append(caller, clean)
			}
		case agentPrefixRe.MatchString(trimmed):
			if clean := stripSpeakerTag(trimmed); clean != "" {
				agent = append(agent, clean)
			}
		}
	}
	return caller, agent
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest, so "JANE DOE" and "jane doe" both come out as "Jane Doe".
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
