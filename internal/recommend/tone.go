package recommend

import "strings"

// prohibitedPhrases are shame-based or fear-based framings that must never
// reach a user. Matching is case-insensitive substring.
var prohibitedPhrases = []string{
	"you should be ashamed",
	"shame on you",
	"irresponsible",
	"reckless spending",
	"you are bad with money",
	"you're bad with money",
	"bad with money",
	"failure",
	"you failed",
	"foolish",
	"stupid",
	"lazy",
	"act now or",
	"before it's too late",
	"don't miss out",
	"last chance",
	"urgent action required",
	"your finances are doomed",
	"financial ruin",
	"disaster",
	"catastrophe",
	"you will never",
	"hopeless",
}

// ToneViolations scans text for prohibited phrases and returns the matches.
// An empty slice means the text passed. Violating content is flagged for
// operator review rather than published.
func ToneViolations(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, phrase := range prohibitedPhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}
