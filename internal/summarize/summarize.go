// Package summarize compresses long call transcripts into short descriptions
// that fit Clio's 255-character matter description field.
package summarize

import (
	"regexp"
	"strings"

	"github.com/casebridge/casebridge/internal/transcript"
)

// Fallback is used when nothing meaningful could be pulled out of the
// transcript.
const Fallback = "Legal consultation request from GoHighLevel"

// issuePatterns pull the caller's main legal issue out of their joined
// speech. Tried in order, first non-administrative match wins.
var issuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(I need help with .+?)[.!?]`),
	regexp.MustCompile(`(?i)(I want to .+?)[.!?]`),
	regexp.MustCompile(`(?i)(I was .+?)[.!?]`),
	regexp.MustCompile(`(?i)(I have been .+?)[.!?]`),
	regexp.MustCompile(`(?i)(My .+ and I .+?)[.!?]`),
	regexp.MustCompile(`(?i)(My .+?)[.!?]`),
	regexp.MustCompile(`(?i)(There was .+?)[.!?]`),
	regexp.MustCompile(`(?i)(Someone .+?)[.!?]`),
	regexp.MustCompile(`(?i)(I got .+?)[.!?]`),
	regexp.MustCompile(`(?i)(I am .+?)[.!?]`),
}

// adminFiller marks sentences about contact details rather than the case.
var adminFiller = []string{"name is", "phone number", "email", "address", "calling about", "contact"}

// issueFallbacks maps a keyword found in caller speech to a canned issue
// phrase when no issue sentence matched. Order matters: first hit wins.
var issueFallbacks = []struct {
	keyword string
	phrase  string
}{
	{"divorce", "seeking divorce assistance"},
	{"custody", "need help with child custody"},
	{"accident", "involved in an accident"},
	{"injured", "sustained injuries"},
	{"arrested", "facing criminal charges"},
	{"fired", "employment issue"},
	{"will", "estate planning matter"},
	{"sued", "involved in litigation"},
	{"bankruptcy", "bankruptcy consultation"},
	{"disability", "disability benefits matter"},
	{"immigration", "immigration issue"},
	{"tax", "tax matter"},
	{"contract", "contract dispute"},
	{"real estate", "real estate matter"},
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(last week|yesterday|today|last month|this week|recently|[A-Za-z]+ \d+)`),
	regexp.MustCompile(`(?i)(\d+ (?:days|weeks|months|years) ago)`),
}

// contextKeywords add an "involving X" detail to the summary. First hit wins.
var contextKeywords = []string{
	"accident", "injury", "divorce", "custody", "arrested", "fired",
	"sued", "died", "will", "estate", "contract", "property", "bankruptcy",
	"disability", "immigration", "tax",
}

// Summarize returns a summary of the transcript no longer than maxLength.
// Input already within the bound is returned unchanged.
func Summarize(raw string, maxLength int) string {
	if len(raw) <= maxLength {
		return raw
	}

	callerLines, _ := transcript.SplitSpeakers(raw)
	humanText := strings.Join(callerLines, " ")

	mainIssue := findMainIssue(humanText)
	if mainIssue == "" {
		mainIssue = firstSubstantialLine(callerLines)
	}

	details := findDetails(humanText)

	summary := compose(mainIssue, details)
	summary = truncate(summary, maxLength)

	if len(summary) < 10 {
		summary = Fallback
	}
	return truncate(summary, maxLength)
}

func findMainIssue(humanText string) string {
	for _, pat := range issuePatterns {
		m := pat.FindStringSubmatch(humanText)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if isAdminFiller(candidate) {
			continue
		}
		return candidate
	}

	lower := strings.ToLower(humanText)
	for _, fb := range issueFallbacks {
		if strings.Contains(lower, fb.keyword) {
			return fb.phrase
		}
	}
	return ""
}

func isAdminFiller(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, filler := range adminFiller {
		if strings.Contains(lower, filler) {
			return true
		}
	}
	return false
}

// firstSubstantialLine falls back to the caller's first non-administrative
// statement when no issue template matched.
func firstSubstantialLine(callerLines []string) string {
	for _, line := range callerLines {
		if len(line) <= 10 || isAdminFiller(line) {
			continue
		}
		if len(line) > 100 {
			line = line[:100]
		}
		return line
	}
	return ""
}

// findDetails collects at most one timeframe phrase and one topical keyword.
func findDetails(humanText string) []string {
	var details []string

	for _, pat := range timePatterns {
		if m := pat.FindStringSubmatch(humanText); m != nil {
			details = append(details, m[1])
			break
		}
	}

	lower := strings.ToLower(humanText)
	for _, kw := range contextKeywords {
		if strings.Contains(lower, kw) {
			details = append(details, "involving "+kw)
			break
		}
	}

	return details
}

// compose joins the main issue and parenthetical details, omitting absent
// parts so there are no empty parens or dangling separators.
func compose(mainIssue string, details []string) string {
	var parts []string
	if mainIssue != "" {
		parts = append(parts, mainIssue)
	}
	if len(details) > 0 {
		parts = append(parts, "("+strings.Join(details, ", ")+")")
	}
	return strings.Join(parts, " ")
}

// truncate enforces the length bound, preferring to drop the parenthetical
// detail before cutting into the main issue.
func truncate(summary string, maxLength int) string {
	if len(summary) <= maxLength {
		return summary
	}

	if idx := strings.Index(summary, "("); idx >= 0 {
		main := strings.TrimSpace(summary[:idx])
		if len(main) <= maxLength {
			return main
		}
		summary = main
	}

	if maxLength > 3 {
		return summary[:maxLength-3] + "..."
	}
	return summary[:maxLength]
}
