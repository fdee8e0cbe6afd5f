package transcript

import (
	"log/slog"
	"regexp"
	"strings"
)

// namePatterns are tried in order against each candidate line; the first
// match wins. Order matters: the explicit "my name is" form is the most
// reliable, the introduction forms progressively less so. The captured group
// runs until the first non-letter character, so it stops at sentence
// punctuation but not at unpunctuated trailing clauses.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is ([a-zA-Z][a-zA-Z ]*)`),
	regexp.MustCompile(`(?i)it'?s ([a-zA-Z][a-zA-Z ]*)`),
	regexp.MustCompile(`(?i)this is ([a-zA-Z][a-zA-Z ]*)`),
	regexp.MustCompile(`(?i)i'm ([a-zA-Z][a-zA-Z ]*)`),
	regexp.MustCompile(`(?i)call me ([a-zA-Z][a-zA-Z ]*)`),
}

// nameDenyList rejects captures that are conversational filler rather than a
// name. Matching is substring, case-insensitive.
var nameDenyList = []string{
	"not sure", "good", "fine", "okay", "ok",
	"yes", "yeah", "yep", "sure", "right", "correct",
	"that", "this", "here", "there", "help", "calling",
	"having trouble", "trouble with", "need help", "looking for",
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+?1?\s*\(?\d{3}\)?\s*[-.\s]?\d{3}\s*[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{3}\s+\d{3}\s+\d{4}`),
	regexp.MustCompile(`\d{10}`),
}

var emailPattern = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

var nonDigitRe = regexp.MustCompile(`\D`)

// Parse extracts caller name, phone and email from a raw transcript. It never
// fails: malformed or empty input yields an all-empty CallerInfo.
func Parse(raw string) CallerInfo {
	var info CallerInfo
	if raw == "" {
		return info
	}

	lines := strings.Split(raw, "\n")

	info.Name = extractName(lines, raw)
	info.Phone = extractPhone(raw)
	info.Email = extractEmail(raw)

	slog.Debug("transcript parsed",
		"name_found", info.Name != "",
		"phone_found", info.Phone != "",
		"email_found", info.Email != "",
	)
	return info
}

func extractName(lines []string, raw string) string {
	// Pass 1: caller-tagged lines in order.
	for _, line := range lines {
		if !isCallerLine(line) {
			continue
		}
		if name := matchName(stripSpeakerTag(line)); name != "" {
			return name
		}
	}

	// Pass 2: the line right after an agent line that asks for a name.
	for i, line := range lines {
		if !isAgentAskingName(line) || i+1 >= len(lines) {
			continue
		}
		next := strings.TrimSpace(lines[i+1])
		if !isCallerLine(next) {
			continue
		}
		if name := matchName(stripSpeakerTag(next)); name != "" {
			return name
		}
	}

	// Pass 3: the whole transcript, speaker tags and all.
	return matchName(raw)
}

// matchName runs the name templates against text and returns the first
// capture that survives the deny list, normalized to title case.
func matchName(text string) string {
	for _, pat := range namePatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if len(candidate) < 2 || isDenyListed(candidate) {
			continue
		}
		// Drop any trailing comma clause ("Jane Doe, and I need...").
		if idx := strings.Index(candidate, ","); idx >= 0 {
			candidate = strings.TrimSpace(candidate[:idx])
		}
		return titleCase(candidate)
	}
	return ""
}

func isDenyListed(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, filler := range nameDenyList {
		if strings.Contains(lower, filler) {
			return true
		}
	}
	return false
}

// extractPhone finds the first phone-shaped string, strips it to digits,
// drops a leading country code, and formats 10-digit numbers as
// (NNN) NNN-NNNN. Anything that does not reduce to exactly 10 digits is
// ignored.
func extractPhone(raw string) string {
	for _, pat := range phonePatterns {
		m := pat.FindString(raw)
		if m == "" {
			continue
		}
		digits := nonDigitRe.ReplaceAllString(m, "")
		if len(digits) == 11 && strings.HasPrefix(digits, "1") {
			digits = digits[1:]
		}
		if len(digits) != 10 {
			continue
		}
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	}
	return ""
}

func extractEmail(raw string) string {
	return emailPattern.FindString(strings.ToLower(raw))
}
