// Package signals derives structured facts from raw conversation text.
// Everything here is a pure function of its input: no state, no I/O.
package signals

import (
	"regexp"
	"strings"

	"roofchat_backend/internal/chat/domain"
)

// Name intro phrasings, tried in priority order; the first match in a message
// wins. Capture is limited to alphabetic tokens, no further validation.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is ([A-Za-z]+(?: [A-Za-z]+){0,2})`),
	regexp.MustCompile(`(?i)\bi'?m ([A-Za-z]+(?: [A-Za-z]+){0,2})`),
	regexp.MustCompile(`(?i)\bcall me ([A-Za-z]+(?: [A-Za-z]+){0,2})`),
	regexp.MustCompile(`(?i)\bthis is ([A-Za-z]+(?: [A-Za-z]+){0,2})`),
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Phone shapes tried in order: separator-delimited, parenthesized area code,
// bare ten digits.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.]?\d{4}`),
	regexp.MustCompile(`\b\d{10}\b`),
}

// projectKeywords maps each project type to its keyword set. The emergency set
// is tested first so that "emergency roof repair" classifies as an emergency
// rather than a plain repair; the remaining sets keep the canonical order.
var projectKeywords = []struct {
	projectType domain.ProjectType
	keywords    []string
}{
	{domain.ProjectEmergency, []string{"emergency", "urgent", "asap", "right away", "immediately"}},
	{domain.ProjectRepair, []string{"repair", "fix", "patch", "leak"}},
	{domain.ProjectReplacement, []string{"replace", "replacement", "new roof", "re-roof", "reroof"}},
	{domain.ProjectInspection, []string{"inspect", "inspection", "check", "assessment", "estimate only"}},
	{domain.ProjectCommercial, []string{"commercial", "business", "office", "warehouse", "flat roof"}},
}

// urgencyTiers maps keyword tiers to urgency levels; the highest matching tier
// wins regardless of keyword frequency.
var urgencyTiers = []struct {
	level    int
	keywords []string
}{
	{5, criticalKeywords},
	{4, highKeywords},
	{3, mediumKeywords},
	{2, []string{"soon", "this month", "next month", "planning"}},
}

// ExtractUserInfo runs the extraction rules over every user-authored message
// in order and merges the results, so early-conversation facts are kept and a
// later successful match updates its field. Absence of a match is the normal
// "not yet known" state, never an error.
func ExtractUserInfo(userMessages []string) domain.UserInfo {
	var info domain.UserInfo
	for _, text := range userMessages {
		info = info.Merge(extractFromMessage(text))
	}
	return info
}

func extractFromMessage(text string) domain.UserInfo {
	info := domain.UserInfo{
		Name:         extractName(text),
		Email:        extractEmail(text),
		Phone:        extractPhone(text),
		ProjectType:  classifyProjectType(text),
		UrgencyLevel: extractUrgency(text),
	}
	return info
}

func extractName(text string) string {
	for _, pattern := range namePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractEmail(text string) string {
	return emailPattern.FindString(text)
}

func extractPhone(text string) string {
	for _, pattern := range phonePatterns {
		if m := pattern.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func classifyProjectType(text string) domain.ProjectType {
	lowered := strings.ToLower(text)
	for _, entry := range projectKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.projectType
			}
		}
	}
	return ""
}

func extractUrgency(text string) int {
	lowered := strings.ToLower(text)
	for _, tier := range urgencyTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(lowered, kw) {
				return tier.level
			}
		}
	}
	return 0
}
